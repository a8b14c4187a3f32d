package models

import "errors"

// Pipeline errors. Format and configuration errors are detected before
// any embedding or generation call and surface to the caller as client
// errors; service errors surface as internal errors.
var (
	// ErrUnsupportedFormat indicates a declared document format outside pdf/json.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrMalformedInput indicates a document that cannot be parsed as
	// its declared format, or an extraction path that yields nothing.
	ErrMalformedInput = errors.New("malformed document input")

	// ErrInvalidConfiguration indicates inconsistent chunker parameters.
	ErrInvalidConfiguration = errors.New("invalid chunker configuration")

	// ErrEmbeddingService indicates the embedding provider failed or
	// returned malformed vectors.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrGenerationService indicates the generation provider failed.
	ErrGenerationService = errors.New("generation service error")

	// ErrEmptyQuestionSet indicates an empty question batch.
	ErrEmptyQuestionSet = errors.New("empty question set")
)
