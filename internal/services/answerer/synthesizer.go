package answerer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// answerSystemPrompt constrains the model to the retrieved context and
// instructs it to admit ignorance rather than guess.
const answerSystemPrompt = "You are an assistant for question-answering tasks. " +
	"Use the following pieces of retrieved context to answer " +
	"the question. If you don't know the answer, say that you " +
	"don't know. Use three sentences maximum and keep the " +
	"answer concise. Heavily use the context to generate the answer."

// Synthesizer turns a question plus its retrieved chunks into a
// grounded answer via the generation provider.
type Synthesizer struct {
	llmService      interfaces.LLMService
	maxContextChars int
	logger          arbor.ILogger
}

// NewSynthesizer creates a synthesizer. A non-positive maxContextChars
// falls back to 2000 characters per chunk in the prompt.
func NewSynthesizer(llmService interfaces.LLMService, maxContextChars int, logger arbor.ILogger) *Synthesizer {
	if maxContextChars <= 0 {
		maxContextChars = 2000
	}
	return &Synthesizer{
		llmService:      llmService,
		maxContextChars: maxContextChars,
		logger:          logger,
	}
}

// Synthesize generates an answer to the question grounded in the
// supplied chunks. An empty chunk list still produces a call; the
// system prompt steers the model toward "I don't know" when the
// context is insufficient.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []models.ScoredChunk) (string, error) {
	messages := s.buildMessages(question, s.buildContextText(chunks))

	answer, err := s.llmService.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationService, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer from generation provider", models.ErrGenerationService)
	}

	s.logger.Debug().
		Int("context_chunks", len(chunks)).
		Int("answer_length", len(answer)).
		Msg("Answer synthesized")

	return answer, nil
}

// buildContextText formats retrieved chunks into a numbered context
// block with source labels and per-chunk truncation.
func (s *Synthesizer) buildContextText(chunks []models.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var parts []string
	parts = append(parts, "RETRIEVED CONTEXT:")
	parts = append(parts, "")

	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("Passage %d:", i+1))
		parts = append(parts, fmt.Sprintf("Source: %s", chunk.Source.String()))
		parts = append(parts, fmt.Sprintf("Content: %s", truncateContent(chunk.Text, s.maxContextChars)))
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

// buildMessages constructs the message array for the generation call.
func (s *Synthesizer) buildMessages(question, contextText string) []interfaces.Message {
	systemPrompt := answerSystemPrompt
	if contextText != "" {
		systemPrompt = fmt.Sprintf("%s\n\n%s", systemPrompt, contextText)
	}

	return []interfaces.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: question},
	}
}

// truncateContent caps content at maxLen runes, appending an ellipsis
// marker when truncation occurred.
func truncateContent(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}
