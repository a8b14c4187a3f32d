package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"golang.org/x/time/rate"
)

// ClaudeService provides chat completions using the Anthropic Claude
// API. Claude has no embedding endpoint, so this service only handles
// answer generation.
type ClaudeService struct {
	config      *common.ClaudeConfig
	logger      arbor.ILogger
	client      anthropic.Client
	timeout     time.Duration
	limiter     *rate.Limiter
	retryConfig *RetryConfig
	maxTokens   int
	closed      bool
}

// convertMessagesToClaude converts []interfaces.Message to Claude MessageParam format.
// Maps Role values to provider's expected values and maintains chronological ordering.
// Extracts system messages separately for use with the System parameter.
// Returns the user/assistant messages, the first system message content (if any), and an error.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	// Check that at least one message has role "user"
	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	// Convert messages to Claude format, excluding system messages
	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		switch msg.Role {
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a new Claude LLM service instance.
//
// The service initialization includes:
//  1. Validating the Anthropic API key from configuration
//  2. Setting default model name and max tokens if not specified
//  3. Parsing timeout and rate limit durations from configuration
//  4. Initializing the Claude client
func NewClaudeService(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key is required (set RESPONDO_CLAUDE_API_KEY or claude.api_key in config)", models.ErrInvalidConfiguration)
	}

	// Set default model name if not specified
	if config.Model == "" {
		config.Model = "claude-haiku-3-5-20241022"
	}

	// Parse timeout duration
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	// Parse rate limit interval
	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit duration '%s': %w", config.RateLimit, err)
	}

	// Set default max tokens
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	service := &ClaudeService{
		config:      config,
		logger:      logger,
		client:      anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		retryConfig: NewDefaultRetryConfig(),
		maxTokens:   maxTokens,
	}

	logger.Info().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Dur("rate_limit", interval).
		Float32("temperature", config.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized successfully")

	return service, nil
}

// Generate produces a completion response based on the conversation
// history using the configured Claude model.
func (s *ClaudeService) Generate(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("message_count", len(messages)).
		Msg("Starting Claude chat completion")

	response, err := s.generateWithRetry(timeoutCtx, messages)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Claude chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Claude chat completion completed successfully")

	return response, nil
}

// HealthCheck verifies the Claude service is operational with a minimal
// connectivity probe.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running Claude LLM service health check")

	if s.closed {
		return fmt.Errorf("Claude client is closed")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	testMessages := []interfaces.Message{
		{Role: "user", Content: "ping"},
	}

	response, err := s.generateCompletion(healthCheckCtx, testMessages)
	if err != nil {
		return fmt.Errorf("Claude probe failed: %w", err)
	}
	if len(strings.TrimSpace(response)) == 0 {
		return fmt.Errorf("Claude probe returned empty response")
	}

	s.logger.Debug().
		Str("model", s.config.Model).
		Msg("Claude LLM service health check passed")

	return nil
}

// Close marks the service as closed. The Claude client doesn't require
// explicit cleanup.
func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude LLM service")
	s.closed = true
	return nil
}

// generateWithRetry wraps generateCompletion with rate limiting and
// backoff on provider rate limit errors.
func (s *ClaudeService) generateWithRetry(ctx context.Context, messages []interfaces.Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		response, err := s.generateCompletion(ctx, messages)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !IsRateLimitError(err) || attempt == s.retryConfig.MaxRetries {
			return "", err
		}

		backoff := s.retryConfig.CalculateBackoff(attempt, ExtractRetryDelay(err))
		s.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Rate limit hit during Claude generation, backing off")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", lastErr
}

// generateCompletion encapsulates the Claude API chat completion call.
func (s *ClaudeService) generateCompletion(ctx context.Context, messages []interfaces.Message) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages:  claudeMessages,
	}

	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	// Extract text from response, skipping non-text blocks
	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}

	return response.String(), nil
}
