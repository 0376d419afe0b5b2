package transcripts

import (
	"strings"

	"transcript-analyzer/internal/llm"
)

// SystemPrompt is sent with every analysis.
const SystemPrompt = `You are an assistant that reads meeting and call transcripts and produces concise, factual notes.

Rules:
- Base everything only on the transcript. Do not invent names, dates, numbers or decisions.
- The summary is 2-4 sentences covering the purpose of the conversation, the key points and any decisions.
- Action items are concrete next steps. Start each with a verb and include the owner when the transcript names one.
- Return an empty action_items list when the transcript has no next steps.
- Respond only with the JSON object described by the schema.`

const userPromptTemplate = `Analyze the following transcript and return a summary and a list of recommended action items.

Transcript:
{{TRANSCRIPT}}`

// BuildUserPrompt substitutes the transcript verbatim into the user prompt.
func BuildUserPrompt(transcript string) string {
	return strings.NewReplacer("{{TRANSCRIPT}}", transcript).Replace(userPromptTemplate)
}

var analysisSchema = llm.Schema{
	Name:        "transcript_analysis",
	Description: "Summary and action items extracted from a transcript",
	Properties: map[string]llm.Property{
		"summary": {
			Type:        "string",
			Description: "A brief, insightful summary of the transcript.",
		},
		"action_items": {
			Type:        "array",
			Description: "Recommended next actions based on the transcript.",
			Items:       &llm.Property{Type: "string"},
		},
	},
	Required: []string{"summary", "action_items"},
}
