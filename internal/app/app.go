package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/handlers"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/services/answerer"
	"github.com/ternarybob/respondo/internal/services/llm"
	"github.com/ternarybob/respondo/internal/services/loader"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// LLM provider router (embeddings + generation)
	LLMService interfaces.LLMService

	// Document loading (pdf/json)
	LoaderService interfaces.DocumentLoader

	// Batch question-answering pipeline
	AnswerService interfaces.AnswerService

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	AnswerHandler *handlers.AnswerHandler
}

// New creates the application with all services and handlers wired.
// Services are constructed once at startup; the LLM provider clients
// are shared across all requests.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	if err := a.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.initHandlers()

	logger.Info().
		Str("environment", config.Environment).
		Str("provider", string(config.LLM.DefaultProvider)).
		Msg("Application initialized")

	return a, nil
}

// initServices constructs the service layer in dependency order.
func (a *App) initServices() error {
	llmService, err := llm.NewProvider(&a.Config.Gemini, &a.Config.Claude, &a.Config.LLM, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	a.LLMService = llmService

	a.LoaderService = loader.NewService(a.Config.RAG.JSONArrayPath, a.Config.RAG.JSONField, a.Logger)
	a.AnswerService = answerer.NewService(llmService, &a.Config.RAG, a.Logger)

	return nil
}

// initHandlers constructs the HTTP handlers over the service layer.
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.AnswerHandler = handlers.NewAnswerHandler(
		a.AnswerService,
		a.LoaderService,
		a.Config.Uploads.Dir,
		a.Logger,
	)
}

// Close releases application resources.
func (a *App) Close() error {
	a.Logger.Info().Msg("Closing application")

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
			return err
		}
	}

	return nil
}

// HealthCheck verifies the application's providers are reachable.
func (a *App) HealthCheck(ctx context.Context) error {
	return a.AnswerService.HealthCheck(ctx)
}
