package dto

// GenerateQuestionsRequest asks for AI-generated assessment questions.
type GenerateQuestionsRequest struct {
	JobID         string         `json:"job_id" validate:"required"`
	Type          string         `json:"type" validate:"required,oneof=technical behavioral cognitive role_specific"`
	Count         int            `json:"count" validate:"required,min=1,max=50"`
	DifficultyMix map[string]int `json:"difficulty_mix"`
}

// GeneratedQuestion is one structured question.
type GeneratedQuestion struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	Type             string   `json:"type"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Options          []string `json:"options,omitempty"`
	MaxScore         int      `json:"max_score"`
	TimeLimitSeconds *int     `json:"time_limit_seconds,omitempty"`
	Rubric           string   `json:"rubric,omitempty"`
}

// GenerateQuestionsResponse wraps generated questions. Available is false
// when the provider failed; an empty list then means "generation
// unavailable", not "zero legitimate questions".
type GenerateQuestionsResponse struct {
	Questions []GeneratedQuestion `json:"questions"`
	Available bool                `json:"available"`
}

// QuestionResponsePair couples a question with the candidate's answer.
type QuestionResponsePair struct {
	QuestionID string `json:"question_id" validate:"required"`
	Question   string `json:"question" validate:"required"`
	Response   string `json:"response"`
	MaxScore   int    `json:"max_score"`
}

// GradeResponsesRequest asks for per-question grading.
type GradeResponsesRequest struct {
	Pairs []QuestionResponsePair `json:"pairs" validate:"required,min=1,dive"`
}

// ResponseGrade is one graded answer. NeedsManualReview flags zero-scored
// placeholder grades produced when the provider failed.
type ResponseGrade struct {
	QuestionID        string   `json:"question_id"`
	Score             float64  `json:"score"`
	Feedback          string   `json:"feedback"`
	Strengths         []string `json:"strengths"`
	Improvements      []string `json:"improvements"`
	Confidence        float64  `json:"confidence"`
	NeedsManualReview bool     `json:"needs_manual_review"`
}

// GradeResponsesResponse wraps the grades.
type GradeResponsesResponse struct {
	Grades []ResponseGrade `json:"grades"`
}

// AssessmentAnalysis is the synthesized result written onto an assessment.
type AssessmentAnalysis struct {
	OverallScore      float64            `json:"overall_score"`
	DimensionScores   map[string]float64 `json:"dimension_scores"`
	Recommendation    string             `json:"recommendation"`
	Reasoning         string             `json:"reasoning"`
	FollowUpQuestions []string           `json:"follow_up_questions"`
	Confidence        float64            `json:"confidence"`
	Degraded          bool               `json:"degraded"`
}

// PerformancePrediction is the advisory estimate built from aggregated
// assessment and interview history. Never persisted by this module.
type PerformancePrediction struct {
	PredictedPerformance string   `json:"predicted_performance"`
	PredictedTenure      string   `json:"predicted_tenure"`
	RiskFactors          []string `json:"risk_factors"`
	SuccessFactors       []string `json:"success_factors"`
	Confidence           float64  `json:"confidence"`
	Degraded             bool     `json:"degraded"`
}

// TeamFitRequest supplies the existing team's profile for comparison.
type TeamFitRequest struct {
	TeamProfile map[string]float64 `json:"team_profile" validate:"required"`
}

// TeamFitAnalysis compares a candidate's personality assessment against
// the team profile. Only FitScore is written back.
type TeamFitAnalysis struct {
	FitScore            float64  `json:"fit_score"`
	ComplementaryTraits []string `json:"complementary_traits"`
	FrictionRisks       []string `json:"friction_risks"`
	Recommendations     []string `json:"recommendations"`
	Confidence          float64  `json:"confidence"`
	Degraded            bool     `json:"degraded"`
}
