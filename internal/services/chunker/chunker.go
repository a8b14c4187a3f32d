package chunker

import (
	"fmt"

	"github.com/ternarybob/respondo/internal/models"
)

// Chunker splits text units into overlapping fixed-size chunks for
// embedding and retrieval.
type Chunker struct {
	maxSize int
	overlap int
}

// New creates a chunker. maxSize must be positive and overlap must be
// non-negative and strictly smaller than maxSize; Split reports
// models.ErrInvalidConfiguration otherwise.
func New(maxSize, overlap int) *Chunker {
	return &Chunker{
		maxSize: maxSize,
		overlap: overlap,
	}
}

// Split produces a sliding window over each unit's content. Windows
// are at most maxSize runes long and consecutive windows within one
// unit share exactly overlap runes (the final window may be shorter).
// Chunk order follows source order: unit order first, window order
// within the unit second, tracked by a global sequence index.
func (c *Chunker) Split(units []models.TextUnit) ([]models.Chunk, error) {
	if c.maxSize <= 0 {
		return nil, fmt.Errorf("%w: max size %d must be positive", models.ErrInvalidConfiguration, c.maxSize)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", models.ErrInvalidConfiguration, c.overlap)
	}
	if c.overlap >= c.maxSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than max size %d", models.ErrInvalidConfiguration, c.overlap, c.maxSize)
	}

	step := c.maxSize - c.overlap

	var chunks []models.Chunk
	sequence := 0
	for _, unit := range units {
		content := []rune(unit.Content)
		if len(content) == 0 {
			continue
		}

		for start := 0; start < len(content); start += step {
			end := start + c.maxSize
			if end > len(content) {
				end = len(content)
			}

			chunks = append(chunks, models.Chunk{
				Text:     string(content[start:end]),
				Source:   unit.Source,
				Sequence: sequence,
			})
			sequence++

			if end == len(content) {
				break
			}
		}
	}

	return chunks, nil
}
