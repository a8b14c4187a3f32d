package loader

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// Service implements interfaces.DocumentLoader. It routes a raw
// document to the extractor for its declared format and normalizes the
// result into ordered text units.
type Service struct {
	arrayPath string
	field     string
	logger    arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DocumentLoader = (*Service)(nil)

// NewService creates a document loader. arrayPath and field configure
// the JSON extraction path (e.g. "messages" / "content").
func NewService(arrayPath, field string, logger arbor.ILogger) *Service {
	if arrayPath == "" {
		arrayPath = "messages"
	}
	if field == "" {
		field = "content"
	}
	return &Service{
		arrayPath: arrayPath,
		field:     field,
		logger:    logger,
	}
}

// Load parses data as the declared format and returns one TextUnit per
// logical page or record.
func (s *Service) Load(ctx context.Context, data []byte, format models.DocumentFormat) ([]models.TextUnit, error) {
	switch format {
	case models.FormatPDF:
		return s.loadPDF(ctx, data)
	case models.FormatJSON:
		return s.loadJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}
}
