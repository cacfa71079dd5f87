package dto

// AnalysisTrigger describes the upstream event that requested an analysis.
type AnalysisTrigger struct {
	Stage        string  `json:"stage"`
	Event        string  `json:"event"`
	InterviewID  *string `json:"interview_id,omitempty"`
	AssessmentID *string `json:"assessment_id,omitempty"`
}

// GenerateAnalysisRequest is the payload for the analysis endpoint.
type GenerateAnalysisRequest struct {
	AnalysisType string          `json:"analysis_type" validate:"required"`
	Trigger      AnalysisTrigger `json:"trigger"`
	Async        bool            `json:"async"`
}

// TabSummaryRequest asks for a short stateless summary for one UI tab.
type TabSummaryRequest struct {
	Tab string `json:"tab" validate:"required,oneof=overview interviews assessments timeline"`
}

// TabSummaryResponse carries the generated plain-text summary. Degraded is
// true when the provider failed and the text is a placeholder.
type TabSummaryResponse struct {
	Tab      string `json:"tab"`
	Summary  string `json:"summary"`
	Degraded bool   `json:"degraded"`
}

// AsyncAccepted acknowledges a queued generation request.
type AsyncAccepted struct {
	JobID string `json:"job_id"`
}
