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

// AssessmentRepository reads internally managed assessments and writes the
// two fields this service owns on them: the results analysis and the
// team-fit score.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, candidate_id, job_id, type, title, questions, responses, analysis, team_fit_score, completed_at, created_at`

// Get fetches one assessment.
func (r *AssessmentRepository) Get(ctx context.Context, id string) (*models.Assessment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessments WHERE id = $1`, assessmentColumns)
	var assessment models.Assessment
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return &assessment, nil
}

// SaveAnalysis persists a successful results analysis onto the assessment.
func (r *AssessmentRepository) SaveAnalysis(ctx context.Context, id string, analysis models.JSONMap) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assessments SET analysis = $1 WHERE id = $2`,
		analysis, id)
	if err != nil {
		return fmt.Errorf("save assessment analysis: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	return nil
}

// SaveTeamFitScore writes back the single fit-score scalar produced by the
// team-fit analysis.
func (r *AssessmentRepository) SaveTeamFitScore(ctx context.Context, id string, score float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assessments SET team_fit_score = $1 WHERE id = $2`,
		score, id)
	if err != nil {
		return fmt.Errorf("save team fit score: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	return nil
}

// MarkCompleted stamps the completion time when a webhook reports it.
func (r *AssessmentRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE assessments SET completed_at = $1 WHERE id = $2 AND completed_at IS NULL`,
		completedAt, id); err != nil {
		return fmt.Errorf("mark assessment completed: %w", err)
	}
	return nil
}
