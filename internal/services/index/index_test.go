package index

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// fakeLLMService returns deterministic embeddings from a lookup table
// keyed by substring, so similarity rankings are predictable.
type fakeLLMService struct {
	vectors    map[string][]float32
	defaultVec []float32
	embedErr   error
	batchCalls int
}

func (f *fakeLLMService) embedOne(text string) []float32 {
	for key, vec := range f.vectors {
		if strings.Contains(text, key) {
			return vec
		}
	}
	return f.defaultVec
}

func (f *fakeLLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embedOne(text), nil
}

func (f *fakeLLMService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.batchCalls++
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = f.embedOne(text)
	}
	return vectors, nil
}

func (f *fakeLLMService) Generate(ctx context.Context, messages []interfaces.Message) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (f *fakeLLMService) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLMService) Close() error                          { return nil }

func chunkAt(seq int, text string) models.Chunk {
	return models.Chunk{
		Text:     text,
		Source:   models.SourceLocator{Kind: models.LocatorPage, Value: 1},
		Sequence: seq,
	}
}

func TestBuildAndSearch_RanksBySimilarity(t *testing.T) {
	fake := &fakeLLMService{
		vectors: map[string][]float32{
			"sky":   {1, 0, 0},
			"water": {0, 1, 0},
			"rock":  {0, 0, 1},
		},
		defaultVec: []float32{0.5, 0.5, 0.5},
	}
	svc := NewService(fake, 100, arbor.NewLogger())

	chunks := []models.Chunk{
		chunkAt(0, "the sky is blue"),
		chunkAt(1, "water flows downhill"),
		chunkAt(2, "rock is hard"),
	}

	idx, err := svc.Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	results, err := svc.Search(context.Background(), idx, "what color is the sky", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "the sky is blue", results[0].Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_Deterministic(t *testing.T) {
	fake := &fakeLLMService{
		vectors: map[string][]float32{
			"sky":   {1, 0},
			"water": {0, 1},
		},
		defaultVec: []float32{1, 1},
	}
	svc := NewService(fake, 100, arbor.NewLogger())

	chunks := []models.Chunk{
		chunkAt(0, "sky one"),
		chunkAt(1, "water two"),
		chunkAt(2, "neither"),
	}

	idx, err := svc.Build(context.Background(), chunks)
	require.NoError(t, err)

	first, err := svc.Search(context.Background(), idx, "about the sky", 3)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), idx, "about the sky", 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearch_TieBrokenByLowerSequence(t *testing.T) {
	// All chunks share one embedding so every score ties
	fake := &fakeLLMService{defaultVec: []float32{1, 1}}
	svc := NewService(fake, 100, arbor.NewLogger())

	chunks := []models.Chunk{
		chunkAt(2, "third"),
		chunkAt(0, "first"),
		chunkAt(1, "second"),
	}

	idx, err := svc.Build(context.Background(), chunks)
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), idx, "query", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Sequence)
	assert.Equal(t, 1, results[1].Sequence)
	assert.Equal(t, 2, results[2].Sequence)
}

func TestSearch_FewerChunksThanK(t *testing.T) {
	fake := &fakeLLMService{defaultVec: []float32{1, 0}}
	svc := NewService(fake, 100, arbor.NewLogger())

	idx, err := svc.Build(context.Background(), []models.Chunk{
		chunkAt(0, "only one"),
		chunkAt(1, "and another"),
	})
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), idx, "query", 4)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_NonPositiveK(t *testing.T) {
	fake := &fakeLLMService{defaultVec: []float32{1, 0}}
	svc := NewService(fake, 100, arbor.NewLogger())

	idx, err := svc.Build(context.Background(), []models.Chunk{chunkAt(0, "content")})
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), idx, "query", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuild_BatchesEmbeddingCalls(t *testing.T) {
	fake := &fakeLLMService{defaultVec: []float32{1, 0}}
	svc := NewService(fake, 2, arbor.NewLogger())

	chunks := []models.Chunk{
		chunkAt(0, "a"), chunkAt(1, "b"), chunkAt(2, "c"),
		chunkAt(3, "d"), chunkAt(4, "e"),
	}

	idx, err := svc.Build(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, 3, fake.batchCalls)
}

func TestBuild_EmbeddingFailure(t *testing.T) {
	fake := &fakeLLMService{embedErr: fmt.Errorf("provider unavailable")}
	svc := NewService(fake, 100, arbor.NewLogger())

	_, err := svc.Build(context.Background(), []models.Chunk{chunkAt(0, "content")})
	assert.ErrorIs(t, err, models.ErrEmbeddingService)
}

func TestBuild_RejectsInconsistentDimensions(t *testing.T) {
	fake := &fakeLLMService{
		vectors: map[string][]float32{
			"wide": {1, 0, 0},
		},
		defaultVec: []float32{1, 0},
	}
	svc := NewService(fake, 100, arbor.NewLogger())

	_, err := svc.Build(context.Background(), []models.Chunk{
		chunkAt(0, "normal"),
		chunkAt(1, "wide vector"),
	})
	assert.ErrorIs(t, err, models.ErrEmbeddingService)
}

func TestBuild_RejectsEmptyVector(t *testing.T) {
	fake := &fakeLLMService{defaultVec: []float32{}}
	svc := NewService(fake, 100, arbor.NewLogger())

	_, err := svc.Build(context.Background(), []models.Chunk{chunkAt(0, "content")})
	assert.ErrorIs(t, err, models.ErrEmbeddingService)
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	fake := &fakeLLMService{defaultVec: []float32{1, 0}}
	svc := NewService(fake, 100, arbor.NewLogger())

	idx, err := svc.Build(context.Background(), []models.Chunk{chunkAt(0, "content")})
	require.NoError(t, err)

	fake.embedErr = fmt.Errorf("provider unavailable")
	_, err = svc.Search(context.Background(), idx, "query", 4)
	assert.ErrorIs(t, err, models.ErrEmbeddingService)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
