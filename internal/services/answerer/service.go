package answerer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/ternarybob/respondo/internal/services/chunker"
	"github.com/ternarybob/respondo/internal/services/index"
)

// failedAnswerMarker is returned as the answer for a question whose
// retrieval or generation failed. The batch itself still succeeds so
// the remaining questions keep their answers.
const failedAnswerMarker = "Error: failed to generate an answer for this question."

// Service orchestrates the batch pipeline: chunk the document text,
// build a request-scoped vector index, then answer every question
// against it with a bounded worker pool.
type Service struct {
	llmService   interfaces.LLMService
	chunker      *chunker.Chunker
	indexService *index.Service
	retriever    *Retriever
	synthesizer  *Synthesizer
	concurrency  int
	logger       arbor.ILogger
}

// Enforce interface compliance at compile time
var _ interfaces.AnswerService = (*Service)(nil)

// NewService wires the pipeline stages from configuration.
func NewService(llmService interfaces.LLMService, ragConfig *common.RAGConfig, logger arbor.ILogger) *Service {
	indexService := index.NewService(llmService, ragConfig.EmbedBatchSize, logger)

	concurrency := ragConfig.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Service{
		llmService:   llmService,
		chunker:      chunker.New(ragConfig.ChunkSize, ragConfig.ChunkOverlap),
		indexService: indexService,
		retriever:    NewRetriever(indexService, ragConfig.TopK, logger),
		synthesizer:  NewSynthesizer(llmService, ragConfig.MaxContextChars, logger),
		concurrency:  concurrency,
		logger:       logger,
	}
}

// GenerateAnswers runs the full pipeline for one reference document
// and a batch of questions.
//
// The indexing phase is all-or-nothing: a chunking or embedding
// failure aborts the request. Question answering is isolated per
// question; a failed question gets a fixed error-marker answer while
// the rest of the batch completes normally. Duplicate questions
// collapse to a single map entry.
func (s *Service) GenerateAnswers(ctx context.Context, questions []string, units []models.TextUnit) (map[string]string, error) {
	if len(questions) == 0 {
		return nil, models.ErrEmptyQuestionSet
	}

	startTime := time.Now()

	chunks, err := s.chunker.Split(units)
	if err != nil {
		return nil, err
	}

	idx, err := s.indexService.Build(ctx, chunks)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("questions", len(questions)).
		Int("text_units", len(units)).
		Int("chunks", idx.Len()).
		Int("concurrency", s.concurrency).
		Msg("Index built, answering questions")

	pool, err := ants.NewPool(s.concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		answers = make(map[string]string, len(questions))
		failed  int
	)

	for _, question := range questions {
		question := question
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			answer, answerErr := s.answerQuestion(ctx, idx, question)
			if answerErr != nil {
				s.logger.Warn().
					Err(answerErr).
					Str("question", question).
					Msg("Question failed, recording error marker")
				answer = failedAnswerMarker
			}

			mu.Lock()
			if answerErr != nil {
				failed++
			}
			answers[question] = answer
			mu.Unlock()
		})
		if submitErr != nil {
			// Pool rejected the task; record the marker directly
			wg.Done()
			mu.Lock()
			failed++
			answers[question] = failedAnswerMarker
			mu.Unlock()
		}
	}

	wg.Wait()

	s.logger.Info().
		Int("answered", len(answers)).
		Int("failed", failed).
		Dur("duration", time.Since(startTime)).
		Msg("Question batch completed")

	return answers, nil
}

// answerQuestion retrieves context for one question and synthesizes
// its answer.
func (s *Service) answerQuestion(ctx context.Context, idx *index.Index, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	chunks, err := s.retriever.Retrieve(ctx, idx, question)
	if err != nil {
		return "", err
	}

	return s.synthesizer.Synthesize(ctx, question, chunks)
}

// HealthCheck verifies the underlying LLM providers are reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.llmService.HealthCheck(ctx)
}
