package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

// CandidateRepository reads the candidate/job/interview context consumed by
// prompt building. These records are owned by the applicant-tracking
// subsystem; this service never writes them.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository constructs the repository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// GetCandidate fetches one candidate.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	const query = `SELECT id, job_id, full_name, email, current_stage, resume_text, cover_letter, applied_at, updated_at
FROM candidates WHERE id = $1`
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return &candidate, nil
}

// GetJob fetches the position a candidate applied to.
func (r *CandidateRepository) GetJob(ctx context.Context, id string) (*models.Job, error) {
	const query = `SELECT id, title, department, description, requirements, values FROM jobs WHERE id = $1`
	var job models.Job
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// GetInterview fetches one interview for trigger context.
func (r *CandidateRepository) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	const query = `SELECT id, candidate_id, stage, interviewer_id, notes, rating, completed_at
FROM interviews WHERE id = $1`
	var interview models.Interview
	if err := r.db.GetContext(ctx, &interview, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "interview not found")
		}
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return &interview, nil
}

// ListInterviews returns all interviews for a candidate, oldest first.
func (r *CandidateRepository) ListInterviews(ctx context.Context, candidateID string) ([]models.Interview, error) {
	const query = `SELECT id, candidate_id, stage, interviewer_id, notes, rating, completed_at
FROM interviews WHERE candidate_id = $1 ORDER BY completed_at ASC NULLS LAST`
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, candidateID); err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return interviews, nil
}
