package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

// AssessmentResultRepository persists external assessment invitations and
// their webhook-driven state. Terminal statuses are enforced in the update
// statement itself: an update against a terminal row touches nothing.
type AssessmentResultRepository struct {
	db *sqlx.DB
}

// NewAssessmentResultRepository constructs the repository.
func NewAssessmentResultRepository(db *sqlx.DB) *AssessmentResultRepository {
	return &AssessmentResultRepository{db: db}
}

const assessmentResultColumns = `id, assessment_id, connector_name, external_id, status, score, max_score,
percentile, dimension_scores, completed_at, time_spent_seconds, report_url, raw_results,
invite_url, expires_at, created_at, updated_at`

// Create records a new invitation, status PENDING.
func (r *AssessmentResultRepository) Create(ctx context.Context, result *models.ExternalAssessmentResult) error {
	now := time.Now().UTC()
	result.CreatedAt = now
	result.UpdatedAt = now
	if result.Status == "" {
		result.Status = models.AssessmentStatusPending
	}
	const query = `INSERT INTO external_assessment_results (id, assessment_id, connector_name, external_id, status,
score, max_score, percentile, dimension_scores, completed_at, time_spent_seconds, report_url, raw_results,
invite_url, expires_at, created_at, updated_at)
VALUES (:id, :assessment_id, :connector_name, :external_id, :status,
:score, :max_score, :percentile, :dimension_scores, :completed_at, :time_spent_seconds, :report_url, :raw_results,
:invite_url, :expires_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("insert assessment result: %w", err)
	}
	return nil
}

// GetByExternalID fetches the invitation tracked for a platform id.
func (r *AssessmentResultRepository) GetByExternalID(ctx context.Context, connectorName, externalID string) (*models.ExternalAssessmentResult, error) {
	query := fmt.Sprintf(`SELECT %s FROM external_assessment_results WHERE connector_name = $1 AND external_id = $2`, assessmentResultColumns)
	var result models.ExternalAssessmentResult
	if err := r.db.GetContext(ctx, &result, query, connectorName, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown external assessment id")
		}
		return nil, fmt.Errorf("get assessment result: %w", err)
	}
	return &result, nil
}

// ApplyUpdate advances the tracked state from a validated webhook or a
// polled result. The WHERE clause excludes terminal rows, so a late or
// replayed delivery against COMPLETED/EXPIRED/CANCELLED changes nothing;
// the returned flag tells the caller whether a row actually moved.
func (r *AssessmentResultRepository) ApplyUpdate(ctx context.Context, update *models.ExternalAssessmentResult) (bool, error) {
	const query = `UPDATE external_assessment_results SET
status = :status,
score = COALESCE(:score, score),
max_score = COALESCE(:max_score, max_score),
percentile = COALESCE(:percentile, percentile),
dimension_scores = :dimension_scores,
completed_at = COALESCE(:completed_at, completed_at),
time_spent_seconds = COALESCE(:time_spent_seconds, time_spent_seconds),
report_url = COALESCE(:report_url, report_url),
raw_results = :raw_results,
updated_at = :updated_at
WHERE connector_name = :connector_name AND external_id = :external_id
AND status NOT IN ('COMPLETED', 'EXPIRED', 'CANCELLED')`
	update.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, query, update)
	if err != nil {
		return false, fmt.Errorf("apply assessment result update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("assessment result rows affected: %w", err)
	}
	return affected == 1, nil
}
