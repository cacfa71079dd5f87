package models

import "time"

// Candidate is the read model consumed when building evaluation prompts.
// The candidate record itself is owned by the applicant-tracking subsystem.
type Candidate struct {
	ID           string     `db:"id" json:"id"`
	JobID        string     `db:"job_id" json:"job_id"`
	FullName     string     `db:"full_name" json:"full_name"`
	Email        string     `db:"email" json:"email"`
	CurrentStage string     `db:"current_stage" json:"current_stage"`
	ResumeText   string     `db:"resume_text" json:"resume_text"`
	CoverLetter  *string    `db:"cover_letter" json:"cover_letter,omitempty"`
	AppliedAt    time.Time  `db:"applied_at" json:"applied_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Job is the read model for the position a candidate applied to.
type Job struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Department   string     `db:"department" json:"department"`
	Description  string     `db:"description" json:"description"`
	Requirements StringList `db:"requirements" json:"requirements"`
	Values       StringList `db:"values" json:"values"`
}

// Interview is the read model for a finished interview folded into prompts.
type Interview struct {
	ID            string     `db:"id" json:"id"`
	CandidateID   string     `db:"candidate_id" json:"candidate_id"`
	Stage         string     `db:"stage" json:"stage"`
	InterviewerID string     `db:"interviewer_id" json:"interviewer_id"`
	Notes         string     `db:"notes" json:"notes"`
	Rating        *int       `db:"rating" json:"rating,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
