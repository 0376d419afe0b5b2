package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-analyzer/internal/llm"
)

type result struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
}

func TestErrorKindsShareCategory(t *testing.T) {
	kinds := []error{llm.ErrConnection, llm.ErrRateLimit, llm.ErrAuthentication, llm.ErrResponseFormat}
	for _, kind := range kinds {
		err := llm.NewError(kind, "boom", errors.New("cause"))
		assert.ErrorIs(t, err, kind)
		assert.ErrorIs(t, err, llm.ErrLLM)
		assert.True(t, llm.IsLLMError(err))
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	err := llm.NewError(llm.ErrConnection, "down", nil)
	assert.NotErrorIs(t, err, llm.ErrRateLimit)
	assert.NotErrorIs(t, err, llm.ErrAuthentication)
	assert.NotErrorIs(t, err, llm.ErrResponseFormat)
	assert.Equal(t, "connection", llm.KindName(err))
}

func TestErrorKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := llm.NewError(llm.ErrConnection, "Failed to connect to OpenAI API.", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: refused")
}

func TestNewErrorDefaultsToGenericKind(t *testing.T) {
	err := llm.NewError(nil, "unclassified", nil)
	assert.ErrorIs(t, err, llm.ErrLLM)
	assert.Equal(t, "llm", llm.KindName(err))
}

func TestIsLLMErrorFalseForPlainErrors(t *testing.T) {
	assert.False(t, llm.IsLLMError(errors.New("plain")))
	assert.Equal(t, "internal", llm.KindName(errors.New("plain")))
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, llm.ErrAuthentication},
		{403, llm.ErrAuthentication},
		{429, llm.ErrRateLimit},
		{529, llm.ErrRateLimit},
		{400, llm.ErrResponseFormat},
		{500, llm.ErrResponseFormat},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, llm.KindForStatus(tt.status), "status %d", tt.status)
	}
}

func TestDecode(t *testing.T) {
	var out result
	require.NoError(t, llm.Decode("test", []byte(`{"summary":"S","action_items":["a","b"]}`), &out))
	assert.Equal(t, "S", out.Summary)
	assert.Equal(t, []string{"a", "b"}, out.ActionItems)
}

func TestDecodeStripsCodeFence(t *testing.T) {
	var out result
	raw := "```json\n{\"summary\":\"S\",\"action_items\":[]}\n```"
	require.NoError(t, llm.Decode("test", []byte(raw), &out))
	assert.Equal(t, "S", out.Summary)
}

func TestDecodeRejectsInvalidPayloads(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", `["array"]`} {
		var out result
		err := llm.Decode("test", []byte(raw), &out)
		require.Error(t, err, "payload %q", raw)
		assert.ErrorIs(t, err, llm.ErrResponseFormat)
	}
}

func TestSchemaJSONSchema(t *testing.T) {
	schema := llm.Schema{
		Name: "analysis",
		Properties: map[string]llm.Property{
			"summary":      {Type: "string"},
			"action_items": {Type: "array", Items: &llm.Property{Type: "string"}},
		},
		Required: []string{"summary", "action_items"},
	}
	got := schema.JSONSchema()
	assert.Equal(t, "object", got["type"])
	assert.Equal(t, false, got["additionalProperties"])
	props := got["properties"].(map[string]any)
	items := props["action_items"].(map[string]any)
	assert.Equal(t, "array", items["type"])
	assert.Equal(t, map[string]any{"type": "string"}, items["items"])
}

func TestOfflineClient(t *testing.T) {
	prompt := "Summarize.\n\nTranscript:\nTeam meeting: ship Friday. Then lunch.\nAction: Update docs\ntodo: book room\n"
	var out result
	err := llm.OfflineClient{}.Complete(context.Background(), llm.Request{UserPrompt: prompt}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Team meeting: ship Friday.", out.Summary)
	assert.Equal(t, []string{"Update docs", "book room"}, out.ActionItems)
}

func TestOfflineClientNoActionItems(t *testing.T) {
	var out result
	err := llm.OfflineClient{}.Complete(context.Background(), llm.Request{UserPrompt: "Transcript:\nhello"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Summary)
	assert.Empty(t, out.ActionItems)
	assert.NotNil(t, out.ActionItems)
}

func TestOfflineClientCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out result
	err := llm.OfflineClient{}.Complete(ctx, llm.Request{UserPrompt: "Transcript:\nhello"}, &out)
	assert.ErrorIs(t, err, llm.ErrConnection)
}
