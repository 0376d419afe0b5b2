package llm

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"
)

const offlineSummaryLimit = 280

// OfflineClient answers completions locally without a provider. It expects the
// user prompt to end with the transcript and produces a summary from its first
// sentence and action items from lines prefixed with "Action:" or "TODO:".
type OfflineClient struct{}

// Complete implements Client.
func (OfflineClient) Complete(ctx context.Context, req Request, out any) error {
	if err := ctx.Err(); err != nil {
		return NewError(ErrConnection, "offline completion cancelled", err)
	}
	text := req.UserPrompt
	if idx := strings.Index(text, transcriptMarker); idx >= 0 {
		text = text[idx+len(transcriptMarker):]
	}

	payload := struct {
		Summary     string   `json:"summary"`
		ActionItems []string `json:"action_items"`
	}{
		Summary:     firstSentence(text),
		ActionItems: actionLines(text),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return NewError(ErrResponseFormat, "offline encode", err)
	}
	return Decode("offline", raw, out)
}

// transcriptMarker is the heading that precedes the transcript in the user prompt.
const transcriptMarker = "Transcript:"

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	end := strings.IndexFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	if end >= 0 {
		text = text[:end+1]
	}
	text = strings.TrimRightFunc(strings.TrimSpace(text), unicode.IsSpace)
	runes := []rune(text)
	if len(runes) > offlineSummaryLimit {
		text = string(runes[:offlineSummaryLimit])
	}
	return text
}

func actionLines(text string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"Action:", "TODO:"} {
			if len(line) > len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
				if item := strings.TrimSpace(line[len(prefix):]); item != "" {
					items = append(items, item)
				}
				break
			}
		}
	}
	return items
}

var _ Client = OfflineClient{}
