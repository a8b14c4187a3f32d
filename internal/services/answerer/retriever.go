package answerer

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/ternarybob/respondo/internal/services/index"
)

// Retriever selects the chunks most relevant to a question from a
// built index. It is a thin composition over index search with the
// configured result count.
type Retriever struct {
	indexService *index.Service
	topK         int
	logger       arbor.ILogger
}

// NewRetriever creates a retriever. A non-positive topK falls back to
// the default of 4 results per question.
func NewRetriever(indexService *index.Service, topK int, logger arbor.ILogger) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{
		indexService: indexService,
		topK:         topK,
		logger:       logger,
	}
}

// Retrieve returns up to topK chunks ranked by relevance to the
// question. Safe for concurrent use once the index is built.
func (r *Retriever) Retrieve(ctx context.Context, idx *index.Index, question string) ([]models.ScoredChunk, error) {
	chunks, err := r.indexService.Search(ctx, idx, question, r.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	r.logger.Debug().
		Int("results", len(chunks)).
		Int("top_k", r.topK).
		Msg("Retrieved context chunks for question")

	return chunks, nil
}
