package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiService provides embeddings and chat completions using Gemini
// models via the Google genai client. It is the only embedding provider
// in the system regardless of which provider generates answers.
type GeminiService struct {
	config      *common.GeminiConfig
	logger      arbor.ILogger
	client      *genai.Client
	timeout     time.Duration
	limiter     *rate.Limiter
	retryConfig *RetryConfig
}

// convertMessagesToGemini converts []interfaces.Message to Gemini Content format.
// Maps Role values to provider's expected values and maintains chronological ordering.
// Extracts system messages separately for use with SystemInstruction.
// Returns the user/model messages, the first system message content (if any), and an error.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
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

	// Convert messages to Gemini format, excluding system messages
	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		// Handle system messages separately
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		part := genai.NewPartFromText(msg.Content)
		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{part},
		})
	}

	return contents, systemText, nil
}

// NewGeminiService creates a new Gemini LLM service instance.
//
// The service initialization includes:
//  1. Validating the Google API key from configuration
//  2. Setting default model names if not specified
//  3. Parsing timeout and rate limit durations from configuration
//  4. Initializing the genai client against the Gemini API backend
//
// Returns an error on a missing API key, invalid durations, or client
// initialization failure.
func NewGeminiService(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: Google API key is required (set RESPONDO_GEMINI_API_KEY or gemini.api_key in config)", models.ErrInvalidConfiguration)
	}

	// Set default model names if not specified
	if config.EmbedModel == "" {
		config.EmbedModel = "gemini-embedding-001"
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}
	if config.EmbedDimension <= 0 {
		config.EmbedDimension = 768
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

	// Initialize genai client
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:      config,
		logger:      logger,
		client:      client,
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		retryConfig: NewDefaultRetryConfig(),
	}

	logger.Info().
		Str("embed_model", config.EmbedModel).
		Str("chat_model", config.Model).
		Int("embed_dimension", config.EmbedDimension).
		Dur("timeout", timeout).
		Dur("rate_limit", interval).
		Msg("Gemini LLM service initialized successfully")

	return service, nil
}

// Embed generates an embedding vector for the given text using the
// configured embedding model and output dimensionality.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vectors[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts in a
// single API call. The returned slice is positionally aligned with the
// input slice.
func (s *GeminiService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty for embedding generation")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("text_count", len(texts)).
		Msg("Starting embedding generation")

	vectors, err := s.embedWithRetry(timeoutCtx, texts)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("text_count", len(texts)).
			Msg("Embedding generation failed")
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	s.logger.Debug().
		Int("text_count", len(texts)).
		Int("embedding_dim", len(vectors[0])).
		Dur("duration", time.Since(startTime)).
		Msg("Embedding generation completed successfully")

	return vectors, nil
}

// Generate produces a completion response based on the conversation
// history using the configured Gemini chat model.
func (s *GeminiService) Generate(ctx context.Context, messages []interfaces.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Debug().
		Int("message_count", len(messages)).
		Msg("Starting chat completion")

	response, err := s.generateWithRetry(timeoutCtx, messages)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("message_count", len(messages)).
			Msg("Chat completion failed")
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	s.logger.Debug().
		Int("message_count", len(messages)).
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Chat completion completed successfully")

	return response, nil
}

// HealthCheck verifies the Gemini service is operational. It exercises
// the embedding model with a lightweight probe and a short timeout.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	s.logger.Debug().Msg("Running Gemini LLM service health check")

	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}

	healthCheckCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	embedding, err := s.generateEmbeddings(healthCheckCtx, []string{"health check probe"})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Embedding model health check failed")
		return fmt.Errorf("embedding probe failed: %w", err)
	}
	if len(embedding) == 0 || len(embedding[0]) == 0 {
		return fmt.Errorf("embedding probe returned empty vector")
	}

	s.logger.Debug().
		Str("embed_model", s.config.EmbedModel).
		Str("chat_model", s.config.Model).
		Msg("Gemini LLM service health check passed")

	return nil
}

// Close releases resources. The genai client doesn't require explicit
// cleanup beyond clearing the reference.
func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini LLM service")
	s.client = nil
	return nil
}

// embedWithRetry wraps generateEmbeddings with rate limiting and
// backoff on provider rate limit errors.
func (s *GeminiService) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		vectors, err := s.generateEmbeddings(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if !IsRateLimitError(err) || attempt == s.retryConfig.MaxRetries {
			return nil, err
		}

		backoff := s.retryConfig.CalculateBackoff(attempt, ExtractRetryDelay(err))
		s.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Rate limit hit during embedding, backing off")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, lastErr
}

// generateWithRetry wraps generateCompletion with rate limiting and
// backoff on provider rate limit errors.
func (s *GeminiService) generateWithRetry(ctx context.Context, messages []interfaces.Message) (string, error) {
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
			Msg("Rate limit hit during generation, backing off")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", lastErr
}

// generateEmbeddings encapsulates the genai embedding call with the
// configured output dimensionality. Every returned vector is validated
// against the configured dimension.
func (s *GeminiService) generateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	outputDim := int32(s.config.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	result, err := s.client.Models.EmbedContent(ctx, s.config.EmbedModel, contents, embeddingConfig)
	if err != nil {
		return nil, err
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) != s.config.EmbedDimension {
			got := 0
			if emb != nil {
				got = len(emb.Values)
			}
			return nil, fmt.Errorf("embedding dimension mismatch at position %d: expected %d, got %d", i, s.config.EmbedDimension, got)
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

// generateCompletion encapsulates the genai chat completion call.
func (s *GeminiService) generateCompletion(ctx context.Context, messages []interfaces.Message) (string, error) {
	geminiContents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.Model, geminiContents, config)
	if err != nil {
		return "", err
	}

	// Iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	return response.String(), nil
}
