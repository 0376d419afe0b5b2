package transcripts

const (
	maxTranscriptChars = 100000
	maxUploadBytes     = 10 << 20
)

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Transcript string `json:"transcript" binding:"required,min=1,max=100000"`
}

// AnalyzeQuery binds GET /analyze?transcript=...
type AnalyzeQuery struct {
	Transcript string `form:"transcript" binding:"required,min=1,max=100000"`
}

// BatchRequest is the body of POST /analyze/batch. Per-item checks happen in the handler.
type BatchRequest struct {
	Transcripts []string `json:"transcripts" binding:"required,min=1,max=10"`
}

// AnalysisResponse is the wire form of an Analysis.
type AnalysisResponse struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
}

// BatchResponse is the body returned by POST /analyze/batch.
type BatchResponse struct {
	Results []AnalysisResponse `json:"results"`
}

func toResponse(a Analysis) AnalysisResponse {
	items := a.ActionItems
	if items == nil {
		items = []string{}
	}
	return AnalysisResponse{ID: a.ID, Summary: a.Summary, ActionItems: items}
}
