package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Client abstracts LLM providers that answer with a structured JSON object.
type Client interface {
	// Complete performs one exchange with the provider and decodes the structured
	// result into out. Failures are reported as *Error.
	Complete(ctx context.Context, req Request, out any) error
}

// Request captures the prompts and expected result shape for one completion.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Schema       Schema
}

// Schema describes the JSON object a completion must return.
type Schema struct {
	Name        string
	Description string
	Properties  map[string]Property
	Required    []string
}

// Property describes one field of a Schema. Items is set for arrays.
type Property struct {
	Type        string
	Description string
	Items       *Property
}

// JSONSchema renders the schema as a JSON Schema object with no additional properties.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = p.jsonSchema()
	}
	required := s.Required
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (p Property) jsonSchema() map[string]any {
	out := map[string]any{"type": p.Type}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Items != nil {
		out["items"] = p.Items.jsonSchema()
	}
	return out
}

// Decode unmarshals a provider payload into out. Anything that is not a JSON
// object matching out is reported as a response format error.
func Decode(provider string, raw []byte, out any) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return NewError(ErrResponseFormat, provider+" returned empty or unparseable response", nil)
	}
	trimmed = stripCodeFence(trimmed)
	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return NewError(ErrResponseFormat, fmt.Sprintf("%s returned invalid JSON", provider), err)
	}
	return nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
