package models

import "time"

// AnalysisType selects the evaluation angle for a generated version.
type AnalysisType string

const (
	AnalysisTypeApplicationReview AnalysisType = "APPLICATION_REVIEW"
	AnalysisTypeInterviewAnalysis AnalysisType = "INTERVIEW_ANALYSIS"
	AnalysisTypeAssessmentReview  AnalysisType = "ASSESSMENT_REVIEW"
	AnalysisTypeStageSummary      AnalysisType = "STAGE_SUMMARY"
	AnalysisTypeComprehensive     AnalysisType = "COMPREHENSIVE"
	AnalysisTypeSentimentChange   AnalysisType = "SENTIMENT_CHANGE"
)

// Valid reports whether the type is a known analysis type.
func (t AnalysisType) Valid() bool {
	switch t {
	case AnalysisTypeApplicationReview, AnalysisTypeInterviewAnalysis,
		AnalysisTypeAssessmentReview, AnalysisTypeStageSummary,
		AnalysisTypeComprehensive, AnalysisTypeSentimentChange:
		return true
	}
	return false
}

// RecommendationLevel is the hiring verdict scale.
type RecommendationLevel string

const (
	RecommendationStrongYes RecommendationLevel = "STRONG_YES"
	RecommendationYes       RecommendationLevel = "YES"
	RecommendationMaybe     RecommendationLevel = "MAYBE"
	RecommendationNo        RecommendationLevel = "NO"
	RecommendationStrongNo  RecommendationLevel = "STRONG_NO"
)

// Valid reports whether the level is part of the scale.
func (r RecommendationLevel) Valid() bool {
	switch r {
	case RecommendationStrongYes, RecommendationYes, RecommendationMaybe,
		RecommendationNo, RecommendationStrongNo:
		return true
	}
	return false
}

// AnalysisVersion is one immutable evaluation record in a candidate's
// append-only history. Rows are never updated after insert except the
// is_latest flip performed when a newer version supersedes them.
type AnalysisVersion struct {
	ID           string       `db:"id" json:"id"`
	CandidateID  string       `db:"candidate_id" json:"candidate_id"`
	Version      int          `db:"version" json:"version"`
	AnalysisType AnalysisType `db:"analysis_type" json:"analysis_type"`

	TriggerStage string  `db:"trigger_stage" json:"trigger_stage,omitempty"`
	TriggerEvent string  `db:"trigger_event" json:"trigger_event,omitempty"`
	InterviewID  *string `db:"interview_id" json:"interview_id,omitempty"`
	AssessmentID *string `db:"assessment_id" json:"assessment_id,omitempty"`

	Summary            string              `db:"summary" json:"summary"`
	Strengths          StringList          `db:"strengths" json:"strengths"`
	Concerns           StringList          `db:"concerns" json:"concerns"`
	Recommendations    StringList          `db:"recommendations" json:"recommendations"`
	OverallScore       int                 `db:"overall_score" json:"overall_score"`
	ScoreBreakdown     ScoreMap            `db:"score_breakdown" json:"score_breakdown"`
	SentimentScore     int                 `db:"sentiment_score" json:"sentiment_score"`
	SentimentChange    *int                `db:"sentiment_change" json:"sentiment_change,omitempty"`
	SentimentReason    *string             `db:"sentiment_reason" json:"sentiment_reason,omitempty"`
	ValuesAlignment    ScoreMap            `db:"values_alignment" json:"values_alignment"`
	Recommendation     RecommendationLevel `db:"recommendation" json:"recommendation"`
	Confidence         float64             `db:"confidence" json:"confidence"`
	MustValidatePoints StringList          `db:"must_validate_points" json:"must_validate_points"`
	NextStageQuestions StringList          `db:"next_stage_questions" json:"next_stage_questions"`

	ProviderName  string `db:"provider_name" json:"provider_name"`
	ProviderModel string `db:"provider_model" json:"provider_model"`

	IsLatest  bool      `db:"is_latest" json:"is_latest"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
