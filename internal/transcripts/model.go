package transcripts

import "time"

// Analysis is the stored result of analyzing one transcript.
type Analysis struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	ActionItems []string  `json:"action_items"`
	CreatedAt   time.Time `json:"created_at"`
}

// CompletionResult is the structured payload the LLM returns.
type CompletionResult struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
}

// Lookup is the result of a non-blocking GetByID.
type Lookup struct {
	Analysis Analysis
	Found    bool
}

func cloneItems(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}
