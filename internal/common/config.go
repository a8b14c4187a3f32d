package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Logging     LoggingConfig `toml:"logging"`
	Uploads     UploadsConfig `toml:"uploads"`
	Gemini      GeminiConfig  `toml:"gemini"`
	Claude      ClaudeConfig  `toml:"claude"`
	LLM         LLMConfig     `toml:"llm"`
	RAG         RAGConfig     `toml:"rag"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// UploadsConfig controls where uploaded reference documents are written
// before loading. Files are kept only as an audit trail; nothing in the
// pipeline reads them back after the request completes.
type UploadsConfig struct {
	Dir string `toml:"dir"`
}

// GeminiConfig contains Google Gemini API configuration. Gemini serves
// both embeddings and (by default) answer generation.
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Google Gemini API key
	Model          string  `toml:"model"`           // Generation model (default: "gemini-2.0-flash")
	EmbedModel     string  `toml:"embed_model"`     // Embedding model (default: "gemini-embedding-001")
	EmbedDimension int     `toml:"embed_dimension"` // Embedding vector dimension (default: 768)
	Timeout        string  `toml:"timeout"`         // Per-call timeout as duration string (default: "2m")
	RateLimit      string  `toml:"rate_limit"`      // Minimum interval between API calls (default: "4s" for 15 RPM)
	Temperature    float32 `toml:"temperature"`     // Generation temperature (default: 0.2)
}

// ClaudeConfig contains Anthropic Claude API configuration for the
// optional Claude generation provider.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Generation model (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1024)
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Minimum interval between API calls (default: "1s")
	Temperature float32 `toml:"temperature"` // Generation temperature (default: 0.2)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the default generation provider. Embeddings always
// come from Gemini regardless of this setting.
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// RAGConfig contains the retrieval pipeline parameters.
type RAGConfig struct {
	ChunkSize       int    `toml:"chunk_size"`        // Sliding window size in characters (default: 1000)
	ChunkOverlap    int    `toml:"chunk_overlap"`     // Overlap between consecutive windows (default: 200)
	TopK            int    `toml:"top_k"`             // Chunks retrieved per question (default: 4)
	MaxContextChars int    `toml:"max_context_chars"` // Per-chunk truncation in the prompt context block (default: 2000)
	Concurrency     int    `toml:"concurrency"`       // Concurrent question workers (default: 4)
	EmbedBatchSize  int    `toml:"embed_batch_size"`  // Chunk texts per embedding API call (default: 100)
	JSONArrayPath   string `toml:"json_array_path"`   // Array path for JSON documents (default: "messages")
	JSONField       string `toml:"json_field"`        // Field extracted from each array element (default: "content")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in respondo.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
		Uploads: UploadsConfig{
			Dir: "./uploads",
		},
		Gemini: GeminiConfig{
			APIKey:         "", // User must provide API key (RESPONDO_GEMINI_API_KEY or config)
			Model:          "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			Timeout:        "2m",
			RateLimit:      "4s", // Free tier: 15 RPM
			Temperature:    0.2,  // Grounded answers want low temperature
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (RESPONDO_CLAUDE_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1024,
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		RAG: RAGConfig{
			ChunkSize:       1000,
			ChunkOverlap:    200,
			TopK:            4,
			MaxContextChars: 2000,
			Concurrency:     4,
			EmbedBatchSize:  100,
			JSONArrayPath:   "messages",
			JSONField:       "content",
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files. Later files
// override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RESPONDO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("RESPONDO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONDO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("RESPONDO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if dir := os.Getenv("RESPONDO_UPLOADS_DIR"); dir != "" {
		config.Uploads.Dir = dir
	}

	if key := os.Getenv("RESPONDO_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("RESPONDO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if key := os.Getenv("RESPONDO_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("RESPONDO_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	if k := os.Getenv("RESPONDO_RAG_TOP_K"); k != "" {
		if n, err := strconv.Atoi(k); err == nil {
			config.RAG.TopK = n
		}
	}
	if c := os.Getenv("RESPONDO_RAG_CONCURRENCY"); c != "" {
		if n, err := strconv.Atoi(c); err == nil {
			config.RAG.Concurrency = n
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Flags have the highest priority, above files and environment.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
