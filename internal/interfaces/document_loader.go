package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// DocumentLoader converts a raw reference document into an ordered
// sequence of normalized text units.
type DocumentLoader interface {
	// Load parses data as the declared format. Returns
	// models.ErrUnsupportedFormat for formats outside pdf/json and
	// models.ErrMalformedInput when the data cannot be parsed as its
	// declared format or the extraction path yields nothing.
	Load(ctx context.Context, data []byte, format models.DocumentFormat) ([]models.TextUnit, error)
}
