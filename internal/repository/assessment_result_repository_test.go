package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

func TestAssessmentResultRepositoryCreateDefaultsPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssessmentResultRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO external_assessment_results")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &models.ExternalAssessmentResult{
		ID:            "ext-row-1",
		AssessmentID:  "a-1",
		ConnectorName: "codepad",
		ExternalID:    "pad-9",
	}
	require.NoError(t, repo.Create(context.Background(), result))
	require.Equal(t, models.AssessmentStatusPending, result.Status)
	require.False(t, result.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentResultRepositoryGetByExternalIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssessmentResultRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM external_assessment_results")).
		WithArgs("codepad", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByExternalID(context.Background(), "codepad", "missing")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentResultRepositoryApplyUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssessmentResultRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE external_assessment_results SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	score := 91.0
	now := time.Now().UTC()
	moved, err := repo.ApplyUpdate(context.Background(), &models.ExternalAssessmentResult{
		ConnectorName: "codepad",
		ExternalID:    "pad-9",
		Status:        models.AssessmentStatusCompleted,
		Score:         &score,
		CompletedAt:   &now,
	})
	require.NoError(t, err)
	require.True(t, moved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentResultRepositoryApplyUpdateTerminalRowUntouched(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAssessmentResultRepository(db)
	// the WHERE clause excludes terminal rows, so zero rows move
	mock.ExpectExec(regexp.QuoteMeta("UPDATE external_assessment_results SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.ApplyUpdate(context.Background(), &models.ExternalAssessmentResult{
		ConnectorName: "codepad",
		ExternalID:    "pad-9",
		Status:        models.AssessmentStatusInProgress,
	})
	require.NoError(t, err)
	require.False(t, moved)
	require.NoError(t, mock.ExpectationsWereMet())
}
