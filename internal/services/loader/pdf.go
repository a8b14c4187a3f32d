// -----------------------------------------------------------------------
// PDF loading - per-page text extraction using pdfcpu
// -----------------------------------------------------------------------

package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ternarybob/respondo/internal/models"
)

// loadPDF extracts text content by page. Each page becomes one
// TextUnit with its 1-based page number as the source locator.
//
// pdfcpu works on files, so the document bytes are staged in a private
// temp directory that is removed before returning.
func (s *Service) loadPDF(ctx context.Context, data []byte) ([]models.TextUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workDir := filepath.Join(os.TempDir(), "respondo-pdf", uuid.New().String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create PDF work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	tempFile := filepath.Join(workDir, "document.pdf")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read PDF: %v", models.ErrMalformedInput, err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create PDF extraction directory: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("%w: failed to extract PDF content: %v", models.ErrMalformedInput, err)
	}

	pageTexts := make(map[int]string)
	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	units := make([]models.TextUnit, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		units = append(units, models.TextUnit{
			Content: pageTexts[pageNum],
			Source:  models.SourceLocator{Kind: models.LocatorPage, Value: pageNum},
		})
	}

	s.logger.Debug().
		Int("page_count", pageCount).
		Int("pdf_size", len(data)).
		Msg("Extracted PDF pages")

	return units, nil
}
