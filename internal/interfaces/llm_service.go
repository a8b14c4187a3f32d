package interfaces

import (
	"context"
)

// Message represents a single message in a generation request
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for language model operations:
// embedding generation and grounded answer generation. Implementations
// call cloud APIs (Gemini, Claude) and carry their own per-call
// timeouts and rate limits.
type LLMService interface {
	// Embed generates an embedding vector for the given text.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - text: Input text to generate embedding for
	//
	// Returns:
	//   - []float32: embedding vector with the configured dimension
	//   - error: Error if embedding generation fails
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in as few
	// provider calls as the configured batch size allows. The result
	// slice is positionally aligned with the input slice.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Generate produces a completion for the given messages. The
	// messages slice should contain the full prompt including the
	// system instruction and the user question.
	Generate(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the provider is operational and can handle
	// requests. For cloud services this checks API connectivity and
	// authentication.
	HealthCheck(ctx context.Context) error

	// Close releases provider clients and performs cleanup.
	Close() error
}
