package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// AnswerService runs the batch question-answering pipeline over one
// loaded reference document.
type AnswerService interface {
	// GenerateAnswers chunks the text units, builds a request-scoped
	// vector index, and answers every question against it. The result
	// maps each distinct question verbatim to its answer text;
	// duplicate questions collapse to one entry (last result wins).
	//
	// Load/chunk/index failures abort the whole batch. A single
	// question's retrieval or generation failure is isolated: its
	// entry carries an error-marker answer and the other questions
	// still succeed.
	GenerateAnswers(ctx context.Context, questions []string, units []models.TextUnit) (map[string]string, error)

	// HealthCheck verifies the underlying providers are reachable.
	HealthCheck(ctx context.Context) error
}
