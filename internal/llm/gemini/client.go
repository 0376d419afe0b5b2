package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"transcript-analyzer/internal/llm"
	"transcript-analyzer/internal/shared/telemetry"
)

const (
	defaultModel = "gemini-2.5-flash"
	providerName = "Gemini"
)

// Client implements llm.Client using Google's Gemini API with JSON schema output.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed client. baseURL may be empty.
func NewClient(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Model returns the configured model.
func (c *Client) Model() string {
	return c.model
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, req llm.Request, out any) error {
	temp := float32(0)
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toSchema(req.Schema),
		Temperature:      &temp,
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), cfg)
	if err != nil {
		return classify(err)
	}
	if resp.UsageMetadata != nil {
		telemetry.Debug("llm.response", map[string]any{
			"provider":          "gemini",
			"model":             c.model,
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
		})
	}
	return llm.Decode(providerName, []byte(resp.Text()), out)
}

func classify(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return llm.NewError(llm.ErrConnection, "Failed to connect to Gemini API.", err)
	}
	kind := llm.KindForStatus(code)
	switch kind {
	case llm.ErrAuthentication:
		return llm.NewError(kind, "Gemini authentication failed. Check your API key.", err)
	case llm.ErrRateLimit:
		return llm.NewError(kind, "Gemini rate limit exceeded. Please retry later.", err)
	default:
		return llm.NewError(kind, fmt.Sprintf("Gemini API error: status %d", code), err)
	}
}

func toSchema(s llm.Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Properties))
	order := make([]string, 0, len(s.Properties))
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; ok {
			order = append(order, name)
		}
	}
	for name, p := range s.Properties {
		props[name] = toPropertySchema(p)
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Description:      s.Description,
		Properties:       props,
		Required:         s.Required,
		PropertyOrdering: order,
	}
}

func toPropertySchema(p llm.Property) *genai.Schema {
	out := &genai.Schema{
		Type:        toType(p.Type),
		Description: p.Description,
	}
	if p.Items != nil {
		out.Items = toPropertySchema(*p.Items)
	}
	return out
}

func toType(t string) genai.Type {
	switch strings.ToLower(t) {
	case "string":
		return genai.TypeString
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}

var _ llm.Client = (*Client)(nil)
