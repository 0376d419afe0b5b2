package anthropic

import (
	"context"
	"errors"
	"fmt"
	"os"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/shared/telemetry"
)

const (
	// defaultModel is the model used when no override is provided.
	defaultModel = "claude-sonnet-4-5-20250929"

	// defaultMaxTokens is the default maximum output tokens per request.
	defaultMaxTokens = 4096

	providerName = "Anthropic"
)

// Client implements llm.Client with the Anthropic Messages API. The expected
// result shape is offered as the only tool and the model is forced to call it,
// so the tool input is the structured result.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// Option configures a Client.
type Option func(*config)

type config struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	maxTokens  int64
}

// WithAPIKey sets the API key. If not provided, ANTHROPIC_API_KEY is read from the environment.
func WithAPIKey(key string) Option {
	return func(c *config) {
		c.apiKey = key
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *config) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the SDK at a different API root.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// WithMaxRetries sets how many times the SDK retries transient failures.
func WithMaxRetries(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithMaxTokens caps output tokens per request.
func WithMaxTokens(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// NewClient creates a new Anthropic-backed client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := config{
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, o := range opts {
		o(&cfg)
	}

	apiKey := cfg.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("llm: ANTHROPIC_API_KEY not set and no API key provided")
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Client{
		client:    sdk.NewClient(clientOpts...),
		model:     cfg.model,
		maxTokens: cfg.maxTokens,
	}, nil
}

// Model returns the configured model.
func (c *Client) Model() string {
	return c.model
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, req llm.Request, out any) error {
	toolName := req.Schema.Name
	if toolName == "" {
		toolName = "result"
	}
	schema := req.Schema.JSONSchema()

	tool := sdk.ToolParam{
		Name: toolName,
		InputSchema: sdk.ToolInputSchemaParam{
			Properties: schema["properties"],
			Required:   req.Schema.Required,
		},
	}
	if req.Schema.Description != "" {
		tool.Description = sdk.String(req.Schema.Description)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.UserPrompt)),
		},
		Tools:      []sdk.ToolUnionParam{{OfTool: &tool}},
		ToolChoice: sdk.ToolChoiceParamOfTool(toolName),
	}
	if req.SystemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return classify(err)
	}

	telemetry.Debug("llm.response", map[string]any{
		"provider":      "anthropic",
		"model":         string(msg.Model),
		"input_tokens":  msg.Usage.InputTokens,
		"output_tokens": msg.Usage.OutputTokens,
	})

	for _, block := range msg.Content {
		if use, ok := block.AsAny().(sdk.ToolUseBlock); ok && use.Name == toolName {
			return llm.Decode(providerName, []byte(use.Input), out)
		}
	}
	return llm.NewError(llm.ErrResponseFormat, "Anthropic response missing tool output", nil)
}

func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		kind := llm.KindForStatus(apiErr.StatusCode)
		switch kind {
		case llm.ErrAuthentication:
			return llm.NewError(kind, "Anthropic authentication failed. Check your API key.", err)
		case llm.ErrRateLimit:
			return llm.NewError(kind, "Anthropic rate limit exceeded. Please retry later.", err)
		default:
			return llm.NewError(kind, fmt.Sprintf("Anthropic API error: status %d", apiErr.StatusCode), err)
		}
	}
	return llm.NewError(llm.ErrConnection, "Failed to connect to Anthropic API.", err)
}

var _ llm.Client = (*Client)(nil)
