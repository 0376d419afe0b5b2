package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second
	providerName   = "OpenAI"
)

// Client implements llm.Client using OpenAI Chat Completions with strict JSON schema output.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (used by tests and proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := defaultTimeout
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Refusal string `json:"refusal,omitempty"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the system and user prompts and decodes the structured reply into out.
func (c *Client) Complete(ctx context.Context, req llm.Request, out any) error {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   schemaName(req.Schema),
				Strict: true,
				Schema: req.Schema.JSONSchema(),
			},
		},
	}
	if !isGPT5(c.model) {
		temp := float32(0)
		reqBody.Temperature = &temp
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.NewError(llm.ErrLLM, "encode OpenAI request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return llm.NewError(llm.ErrConnection, "Failed to connect to OpenAI API.", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.NewError(llm.ErrConnection, "OpenAI request timed out.", err)
		}
		return llm.NewError(llm.ErrConnection, "Failed to connect to OpenAI API.", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.NewError(llm.ErrConnection, "Failed to read OpenAI response.", err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.NewError(llm.ErrResponseFormat, "OpenAI response parse", err)
	}
	if parsed.Error != nil {
		return llm.NewError(llm.ErrResponseFormat, fmt.Sprintf("OpenAI API error: %s (%s)", parsed.Error.Message, parsed.Error.Type), nil)
	}
	if len(parsed.Choices) == 0 {
		return llm.NewError(llm.ErrResponseFormat, "OpenAI response missing choices", nil)
	}
	logUsage(c.model, parsed)

	msg := parsed.Choices[0].Message
	if strings.TrimSpace(msg.Refusal) != "" {
		return llm.NewError(llm.ErrResponseFormat, "OpenAI refused the request: "+msg.Refusal, nil)
	}
	return llm.Decode(providerName, []byte(msg.Content), out)
}

func statusError(status int, body []byte) error {
	var parsed chatResponse
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		message = parsed.Error.Message
	}
	kind := llm.KindForStatus(status)
	switch kind {
	case llm.ErrAuthentication:
		return llm.NewError(kind, "OpenAI authentication failed. Check your API key.", fmt.Errorf("http status %d: %s", status, message))
	case llm.ErrRateLimit:
		return llm.NewError(kind, "OpenAI rate limit exceeded. Please retry later.", fmt.Errorf("http status %d: %s", status, message))
	default:
		return llm.NewError(kind, fmt.Sprintf("OpenAI API error: %s", message), fmt.Errorf("http status %d", status))
	}
}

func schemaName(s llm.Schema) string {
	if strings.TrimSpace(s.Name) == "" {
		return "result"
	}
	return s.Name
}

func logUsage(model string, resp chatResponse) {
	fields := map[string]any{
		"provider": "openai",
		"model":    model,
	}
	if resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Debug("llm.response", fields)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
