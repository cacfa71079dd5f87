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

// AnalysisVersionRepository persists the append-only analysis history. The
// latest-pointer transition lives entirely inside InsertNextVersion so the
// "exactly one is_latest row per candidate" invariant is enforced at the
// write boundary, not by convention.
type AnalysisVersionRepository struct {
	db *sqlx.DB
}

// NewAnalysisVersionRepository constructs the repository.
func NewAnalysisVersionRepository(db *sqlx.DB) *AnalysisVersionRepository {
	return &AnalysisVersionRepository{db: db}
}

const analysisVersionColumns = `id, candidate_id, version, analysis_type, trigger_stage, trigger_event,
interview_id, assessment_id, summary, strengths, concerns, recommendations, overall_score,
score_breakdown, sentiment_score, sentiment_change, sentiment_reason, values_alignment,
recommendation, confidence, must_validate_points, next_stage_questions,
provider_name, provider_model, is_latest, created_at`

// GetLatest returns the candidate's current version, or nil when the
// candidate has no analysis history yet.
func (r *AnalysisVersionRepository) GetLatest(ctx context.Context, candidateID string) (*models.AnalysisVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM analysis_versions WHERE candidate_id = $1 AND is_latest = TRUE`, analysisVersionColumns)
	var v models.AnalysisVersion
	if err := r.db.GetContext(ctx, &v, query, candidateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest analysis version: %w", err)
	}
	return &v, nil
}

// ListByCandidate returns the full history, newest first.
func (r *AnalysisVersionRepository) ListByCandidate(ctx context.Context, candidateID string) ([]models.AnalysisVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM analysis_versions WHERE candidate_id = $1 ORDER BY version DESC`, analysisVersionColumns)
	var versions []models.AnalysisVersion
	if err := r.db.SelectContext(ctx, &versions, query, candidateID); err != nil {
		return nil, fmt.Errorf("list analysis versions: %w", err)
	}
	return versions, nil
}

// InsertNextVersion atomically retires the candidate's current version and
// inserts v as the new latest. The version number is assigned inside the
// transaction from the locked current row, so concurrent writers for the
// same candidate serialize on the row lock and numbers stay strictly
// increasing. A reader never observes zero or two latest rows.
func (r *AnalysisVersionRepository) InsertNextVersion(ctx context.Context, v *models.AnalysisVersion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin version tx: %w", err)
	}

	next := 1
	var currentVersion int
	err = tx.GetContext(ctx, &currentVersion,
		`SELECT version FROM analysis_versions WHERE candidate_id = $1 AND is_latest = TRUE FOR UPDATE`,
		v.CandidateID)
	switch {
	case err == nil:
		next = currentVersion + 1
	case errors.Is(err, sql.ErrNoRows):
		// first version for this candidate
	default:
		_ = tx.Rollback()
		return fmt.Errorf("lock current analysis version: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE analysis_versions SET is_latest = FALSE WHERE candidate_id = $1 AND is_latest = TRUE`,
		v.CandidateID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("retire current analysis version: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 1 {
		_ = tx.Rollback()
		return appErrors.Clone(appErrors.ErrConcurrency, "multiple latest analysis versions detected")
	}

	v.Version = next
	v.IsLatest = true
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	const insert = `INSERT INTO analysis_versions (id, candidate_id, version, analysis_type, trigger_stage, trigger_event,
interview_id, assessment_id, summary, strengths, concerns, recommendations, overall_score,
score_breakdown, sentiment_score, sentiment_change, sentiment_reason, values_alignment,
recommendation, confidence, must_validate_points, next_stage_questions,
provider_name, provider_model, is_latest, created_at)
VALUES (:id, :candidate_id, :version, :analysis_type, :trigger_stage, :trigger_event,
:interview_id, :assessment_id, :summary, :strengths, :concerns, :recommendations, :overall_score,
:score_breakdown, :sentiment_score, :sentiment_change, :sentiment_reason, :values_alignment,
:recommendation, :confidence, :must_validate_points, :next_stage_questions,
:provider_name, :provider_model, :is_latest, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, v); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert analysis version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit version tx: %w", err)
	}
	return nil
}
