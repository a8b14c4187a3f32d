package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// Service builds and queries request-scoped vector indexes. Chunk and
// query embeddings come from the injected LLM service; similarity is
// cosine against every stored vector (the corpus for one reference
// document is small enough that brute force beats index structures).
type Service struct {
	llmService interfaces.LLMService
	batchSize  int
	logger     arbor.ILogger
}

// NewService creates a vector index service. batchSize bounds how many
// chunk texts go into one embedding call.
func NewService(llmService interfaces.LLMService, batchSize int, logger arbor.ILogger) *Service {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Service{
		llmService: llmService,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Index is an immutable collection of (chunk, vector) pairs built once
// per request. Search is read-only and safe for concurrent use.
type Index struct {
	chunks    []models.Chunk
	vectors   [][]float32
	dimension int
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Build embeds every chunk in batches and stores the resulting
// (chunk, vector) pairs. Malformed provider output (empty vector,
// inconsistent dimension) reports models.ErrEmbeddingService.
func (s *Service) Build(ctx context.Context, chunks []models.Chunk) (*Index, error) {
	idx := &Index{
		chunks:  chunks,
		vectors: make([][]float32, 0, len(chunks)),
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Text)
		}

		vectors, err := s.llmService.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: expected %d vectors, got %d", models.ErrEmbeddingService, len(texts), len(vectors))
		}

		for _, vector := range vectors {
			if len(vector) == 0 {
				return nil, fmt.Errorf("%w: provider returned empty vector", models.ErrEmbeddingService)
			}
			if idx.dimension == 0 {
				idx.dimension = len(vector)
			} else if len(vector) != idx.dimension {
				return nil, fmt.Errorf("%w: vector dimension mismatch: expected %d, got %d", models.ErrEmbeddingService, idx.dimension, len(vector))
			}
			idx.vectors = append(idx.vectors, vector)
		}
	}

	s.logger.Debug().
		Int("chunk_count", len(chunks)).
		Int("dimension", idx.dimension).
		Msg("Vector index built")

	return idx, nil
}

// Search embeds the query and returns the top-k chunks by descending
// cosine similarity. Ties are broken by the lower chunk sequence. When
// the index holds fewer than k chunks, all of them are returned.
func (s *Service) Search(ctx context.Context, idx *Index, query string, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVector, err := s.llmService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, err)
	}
	if idx.dimension > 0 && len(queryVector) != idx.dimension {
		return nil, fmt.Errorf("%w: query vector dimension mismatch: expected %d, got %d", models.ErrEmbeddingService, idx.dimension, len(queryVector))
	}

	scored := make([]models.ScoredChunk, len(idx.chunks))
	for i := range idx.chunks {
		scored[i] = models.ScoredChunk{
			Chunk: idx.chunks[i],
			Score: cosineSimilarity(idx.vectors[i], queryVector),
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.Sequence < scored[j].Chunk.Sequence
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
