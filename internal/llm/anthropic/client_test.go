package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/llm/anthropic"
)

type analysisResult struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
}

var testSchema = llm.Schema{
	Name: "transcript_analysis",
	Properties: map[string]llm.Property{
		"summary":      {Type: "string"},
		"action_items": {Type: "array", Items: &llm.Property{Type: "string"}},
	},
	Required: []string{"summary", "action_items"},
}

func TestNewClient_NoKeyError(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	c, err := anthropic.NewClient()
	assert.Nil(t, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestNewClient_FromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	c, err := anthropic.NewClient()
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5-20250929", c.Model())
}

func TestNewClient_CustomModel(t *testing.T) {
	c, err := anthropic.NewClient(anthropic.WithAPIKey("k"), anthropic.WithModel("claude-haiku-4-5"))
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", c.Model())
}

func TestComplete_DecodesForcedToolInput(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "tool_use", "id": "toolu_1", "name": "transcript_analysis",
				"input": {"summary": "Ship Friday", "action_items": ["Update docs"]}}],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	c, err := anthropic.NewClient(anthropic.WithAPIKey("k"), anthropic.WithBaseURL(server.URL))
	require.NoError(t, err)

	var out analysisResult
	err = c.Complete(context.Background(), llm.Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		Schema:       testSchema,
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Ship Friday", out.Summary)
	assert.Equal(t, []string{"Update docs"}, out.ActionItems)

	choice, _ := captured["tool_choice"].(map[string]any)
	assert.Equal(t, "tool", choice["type"])
	assert.Equal(t, "transcript_analysis", choice["name"])
	tools, _ := captured["tools"].([]any)
	require.Len(t, tools, 1)
}

func TestComplete_MissingToolOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "m",
			"content": [{"type": "text", "text": "no tool"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`))
	}))
	defer server.Close()

	c, err := anthropic.NewClient(anthropic.WithAPIKey("k"), anthropic.WithBaseURL(server.URL))
	require.NoError(t, err)

	var out analysisResult
	err = c.Complete(context.Background(), llm.Request{Schema: testSchema}, &out)
	assert.ErrorIs(t, err, llm.ErrResponseFormat)
}

func TestComplete_MapsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, llm.ErrAuthentication},
		{"rate limited", http.StatusTooManyRequests, llm.ErrRateLimit},
		{"overloaded", 529, llm.ErrRateLimit},
		{"bad request", http.StatusBadRequest, llm.ErrResponseFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"test_error","message":"nope"}}`))
			}))
			defer server.Close()

			c, err := anthropic.NewClient(
				anthropic.WithAPIKey("k"),
				anthropic.WithBaseURL(server.URL),
				anthropic.WithMaxRetries(0),
			)
			require.NoError(t, err)

			var out analysisResult
			err = c.Complete(context.Background(), llm.Request{Schema: testSchema}, &out)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComplete_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := anthropic.NewClient(anthropic.WithAPIKey("k"), anthropic.WithBaseURL(url), anthropic.WithMaxRetries(0))
	require.NoError(t, err)

	var out analysisResult
	err = c.Complete(context.Background(), llm.Request{Schema: testSchema}, &out)
	assert.ErrorIs(t, err, llm.ErrConnection)
}

func TestComplete_RetriesConfiguredTimes(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Should-Retry", "true")
		w.Header().Set("Retry-After-Ms", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	c, err := anthropic.NewClient(
		anthropic.WithAPIKey("k"),
		anthropic.WithBaseURL(server.URL),
		anthropic.WithMaxRetries(2),
	)
	require.NoError(t, err)

	var out analysisResult
	err = c.Complete(context.Background(), llm.Request{Schema: testSchema}, &out)
	assert.ErrorIs(t, err, llm.ErrRateLimit)
	assert.Equal(t, int32(3), hits.Load())
}
