package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "gemini-2.0-flash", config.Gemini.Model)
	assert.Equal(t, "gemini-embedding-001", config.Gemini.EmbedModel)
	assert.Equal(t, 768, config.Gemini.EmbedDimension)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)
	assert.Equal(t, 1000, config.RAG.ChunkSize)
	assert.Equal(t, 200, config.RAG.ChunkOverlap)
	assert.Equal(t, 4, config.RAG.TopK)
	assert.Equal(t, "messages", config.RAG.JSONArrayPath)
	assert.Equal(t, "content", config.RAG.JSONField)
}

func TestLoadFromFiles_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "respondo.toml")
	content := `
[server]
port = 9000

[rag]
chunk_size = 500
top_k = 6

[llm]
default_provider = "claude"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, 500, config.RAG.ChunkSize)
	assert.Equal(t, 6, config.RAG.TopK)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)

	// Untouched values keep their defaults
	assert.Equal(t, 200, config.RAG.ChunkOverlap)
	assert.Equal(t, "gemini-2.0-flash", config.Gemini.Model)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")

	require.NoError(t, os.WriteFile(first, []byte("[server]\nport = 9000\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[server]\nport = 9100\n"), 0644))

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 9100, config.Server.Port)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/respondo.toml")
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("RESPONDO_SERVER_PORT", "9200")
	t.Setenv("RESPONDO_GEMINI_API_KEY", "test-key")
	t.Setenv("RESPONDO_LLM_PROVIDER", "claude")
	t.Setenv("RESPONDO_RAG_TOP_K", "7")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "test-key", config.Gemini.APIKey)
	assert.Equal(t, LLMProviderClaude, config.LLM.DefaultProvider)
	assert.Equal(t, 7, config.RAG.TopK)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 9300, "0.0.0.0")
	assert.Equal(t, 9300, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	// Zero values leave the config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 9300, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}
