package models

import "fmt"

// DocumentFormat identifies the declared format of an uploaded reference document.
type DocumentFormat string

const (
	// FormatPDF routes the document through the pdfcpu page extractor
	FormatPDF DocumentFormat = "pdf"
	// FormatJSON routes the document through the JSON record extractor
	FormatJSON DocumentFormat = "json"
)

// FormatFromContentType maps an HTTP content type to a document format.
// Returns false when the content type is not supported.
func FormatFromContentType(contentType string) (DocumentFormat, bool) {
	switch contentType {
	case "application/pdf":
		return FormatPDF, true
	case "application/json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// LocatorKind discriminates the source locator variants.
type LocatorKind string

const (
	// LocatorPage locates a text unit by PDF page number (1-based)
	LocatorPage LocatorKind = "page"
	// LocatorRecord locates a text unit by JSON array index (0-based)
	LocatorRecord LocatorKind = "record"
)

// SourceLocator identifies where in the source document a text unit
// came from. The meaning of Value depends on Kind: page number for PDF
// pages, array index for JSON records.
type SourceLocator struct {
	Kind  LocatorKind `json:"kind"`
	Value int         `json:"value"`
}

// String returns a human-readable locator label for context blocks and logs.
func (l SourceLocator) String() string {
	switch l.Kind {
	case LocatorPage:
		return fmt.Sprintf("page %d", l.Value)
	case LocatorRecord:
		return fmt.Sprintf("record %d", l.Value)
	default:
		return fmt.Sprintf("%s %d", l.Kind, l.Value)
	}
}

// TextUnit is one normalized unit of extracted document text: a PDF
// page or one extracted JSON record field. Immutable once produced by
// the loader.
type TextUnit struct {
	Content string        `json:"content"`
	Source  SourceLocator `json:"source"`
}

// Chunk is a bounded span of text derived from a sliding window over
// one TextUnit's content. Chunks are the atomic unit of retrieval.
type Chunk struct {
	Text string `json:"text"`

	// Source is inherited from the originating TextUnit
	Source SourceLocator `json:"source"`

	// Sequence is the global position of the chunk across the whole
	// document: ordered by TextUnit order, then by window order.
	// Search ties are broken in favor of the lower sequence.
	Sequence int `json:"sequence"`
}

// ScoredChunk pairs a chunk with its similarity score for one query.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}
