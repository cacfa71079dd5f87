package models

import "time"

// AssessmentStatus is the canonical status model every connector maps its
// platform-native vocabulary into.
type AssessmentStatus string

const (
	AssessmentStatusPending    AssessmentStatus = "PENDING"
	AssessmentStatusInProgress AssessmentStatus = "IN_PROGRESS"
	AssessmentStatusCompleted  AssessmentStatus = "COMPLETED"
	AssessmentStatusExpired    AssessmentStatus = "EXPIRED"
	AssessmentStatusCancelled  AssessmentStatus = "CANCELLED"
)

// Terminal reports whether no further transition is valid out of the status.
func (s AssessmentStatus) Terminal() bool {
	switch s {
	case AssessmentStatusCompleted, AssessmentStatusExpired, AssessmentStatusCancelled:
		return true
	}
	return false
}

// AssessmentType categorises what an external platform measures.
type AssessmentType string

const (
	AssessmentTypeCoding      AssessmentType = "CODING"
	AssessmentTypeCognitive   AssessmentType = "COGNITIVE"
	AssessmentTypePersonality AssessmentType = "PERSONALITY"
	AssessmentTypeBehavioral  AssessmentType = "BEHAVIORAL"
)

// ExternalAssessmentResult tracks one invitation sent to an external
// assessment platform. Created at invite time with status PENDING and
// advanced only by validated webhooks or explicit polling.
type ExternalAssessmentResult struct {
	ID               string           `db:"id" json:"id"`
	AssessmentID     string           `db:"assessment_id" json:"assessment_id"`
	ConnectorName    string           `db:"connector_name" json:"connector_name"`
	ExternalID       string           `db:"external_id" json:"external_id"`
	Status           AssessmentStatus `db:"status" json:"status"`
	Score            *float64         `db:"score" json:"score,omitempty"`
	MaxScore         *float64         `db:"max_score" json:"max_score,omitempty"`
	Percentile       *float64         `db:"percentile" json:"percentile,omitempty"`
	DimensionScores  ScoreMap         `db:"dimension_scores" json:"dimension_scores,omitempty"`
	CompletedAt      *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	TimeSpentSeconds *int             `db:"time_spent_seconds" json:"time_spent_seconds,omitempty"`
	ReportURL        *string          `db:"report_url" json:"report_url,omitempty"`
	RawResults       JSONMap          `db:"raw_results" json:"raw_results,omitempty"`
	InviteURL        *string          `db:"invite_url" json:"invite_url,omitempty"`
	ExpiresAt        *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// Assessment is the read model for an internally managed assessment
// (template, questions, candidate responses). The analysis column is the
// only field this service writes.
type Assessment struct {
	ID            string         `db:"id" json:"id"`
	CandidateID   string         `db:"candidate_id" json:"candidate_id"`
	JobID         string         `db:"job_id" json:"job_id"`
	Type          AssessmentType `db:"type" json:"type"`
	Title         string         `db:"title" json:"title"`
	Questions     JSONMap        `db:"questions" json:"questions,omitempty"`
	Responses     JSONMap        `db:"responses" json:"responses,omitempty"`
	Analysis      JSONMap        `db:"analysis" json:"analysis,omitempty"`
	TeamFitScore  *float64       `db:"team_fit_score" json:"team_fit_score,omitempty"`
	CompletedAt   *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// WebhookEvent is the dedupe ledger for at-least-once webhook delivery.
// The unique key (connector_name, external_id, event_type, occurred_at)
// makes a replayed delivery a no-op.
type WebhookEvent struct {
	ID            string    `db:"id" json:"id"`
	ConnectorName string    `db:"connector_name" json:"connector_name"`
	ExternalID    string    `db:"external_id" json:"external_id"`
	EventType     string    `db:"event_type" json:"event_type"`
	OccurredAt    time.Time `db:"occurred_at" json:"occurred_at"`
	ReceivedAt    time.Time `db:"received_at" json:"received_at"`
}
