package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/respondo/internal/interfaces"
	"google.golang.org/genai"
)

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "be concise"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
		{Role: "user", Content: "a question"},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	require.NoError(t, err)

	assert.Equal(t, "be concise", systemText)
	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, genai.RoleUser, contents[2].Role)
}

func TestConvertMessagesToGemini_Errors(t *testing.T) {
	_, _, err := convertMessagesToGemini(nil)
	assert.Error(t, err)

	// At least one user message is required
	_, _, err = convertMessagesToGemini([]interfaces.Message{
		{Role: "system", Content: "only a system prompt"},
	})
	assert.Error(t, err)
}

func TestConvertMessagesToGemini_FirstSystemMessageWins(t *testing.T) {
	_, systemText, err := convertMessagesToGemini([]interfaces.Message{
		{Role: "system", Content: "first"},
		{Role: "system", Content: "second"},
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", systemText)
}

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "be concise"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	require.NoError(t, err)

	assert.Equal(t, "be concise", systemText)
	assert.Len(t, claudeMessages, 2)
}

func TestConvertMessagesToClaude_Errors(t *testing.T) {
	_, _, err := convertMessagesToClaude(nil)
	assert.Error(t, err)

	_, _, err = convertMessagesToClaude([]interfaces.Message{
		{Role: "assistant", Content: "no user message"},
	})
	assert.Error(t, err)
}
