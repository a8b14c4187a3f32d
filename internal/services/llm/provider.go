package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// Provider implements the LLMService interface by routing calls to the
// configured providers. Embeddings always go to Gemini since Claude has
// no embedding endpoint; answer generation goes to the provider named
// by llm.default_provider.
type Provider struct {
	gemini          *GeminiService
	claude          *ClaudeService
	defaultProvider common.LLMProvider
	logger          arbor.ILogger
}

// Enforce interface compliance at compile time
var _ interfaces.LLMService = (*Provider)(nil)

// NewProvider creates the provider router from configuration.
//
// The Gemini service is always constructed because it backs embedding
// generation. The Claude service is constructed only when the default
// provider is "claude"; in that case a missing Anthropic API key is a
// configuration error.
func NewProvider(geminiConfig *common.GeminiConfig, claudeConfig *common.ClaudeConfig, llmConfig *common.LLMConfig, logger arbor.ILogger) (*Provider, error) {
	defaultProvider := llmConfig.DefaultProvider
	if defaultProvider == "" {
		defaultProvider = common.LLMProviderGemini
	}

	switch defaultProvider {
	case common.LLMProviderGemini, common.LLMProviderClaude:
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q (expected \"gemini\" or \"claude\")", models.ErrInvalidConfiguration, defaultProvider)
	}

	gemini, err := NewGeminiService(geminiConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini service: %w", err)
	}

	var claude *ClaudeService
	if defaultProvider == common.LLMProviderClaude {
		claude, err = NewClaudeService(claudeConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Claude service: %w", err)
		}
	}

	logger.Info().
		Str("default_provider", string(defaultProvider)).
		Msg("LLM provider router initialized")

	return &Provider{
		gemini:          gemini,
		claude:          claude,
		defaultProvider: defaultProvider,
		logger:          logger,
	}, nil
}

// Embed generates an embedding vector for the given text. Always
// routed to Gemini.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.gemini.Embed(ctx, text)
}

// EmbedBatch generates embedding vectors for a batch of texts. Always
// routed to Gemini.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return p.gemini.EmbedBatch(ctx, texts)
}

// Generate produces a completion from the default generation provider.
func (p *Provider) Generate(ctx context.Context, messages []interfaces.Message) (string, error) {
	if p.defaultProvider == common.LLMProviderClaude {
		return p.claude.Generate(ctx, messages)
	}
	return p.gemini.Generate(ctx, messages)
}

// HealthCheck verifies every active provider is operational.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if err := p.gemini.HealthCheck(ctx); err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	if p.claude != nil {
		if err := p.claude.HealthCheck(ctx); err != nil {
			return fmt.Errorf("claude: %w", err)
		}
	}
	return nil
}

// Close releases resources held by all active providers.
func (p *Provider) Close() error {
	var firstErr error
	if p.claude != nil {
		if err := p.claude.Close(); err != nil {
			firstErr = err
		}
	}
	if p.gemini != nil {
		if err := p.gemini.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
