package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

func TestWebhookEventRepositorySeen(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWebhookEventRepository(db)
	occurred := time.Now().UTC()
	ev := &models.WebhookEvent{
		ConnectorName: "codepad",
		ExternalID:    "pad-9",
		EventType:     "invitation.evaluated",
		OccurredAt:    occurred,
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("codepad", "pad-9", "invitation.evaluated", occurred).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	seen, err := repo.Seen(context.Background(), ev)
	require.NoError(t, err)
	require.False(t, seen)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("codepad", "pad-9", "invitation.evaluated", occurred).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	seen, err = repo.Seen(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, seen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepositoryRecordFirstDelivery(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWebhookEventRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO webhook_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ev := &models.WebhookEvent{
		ID:            "wh-1",
		ConnectorName: "codepad",
		ExternalID:    "pad-9",
		EventType:     "invitation.evaluated",
		OccurredAt:    time.Now().UTC(),
	}
	inserted, err := repo.Record(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, inserted)
	require.False(t, ev.ReceivedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepositoryRecordReplay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWebhookEventRepository(db)
	// ON CONFLICT DO NOTHING makes the replay a zero-row insert
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO webhook_events")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Record(context.Background(), &models.WebhookEvent{
		ID:            "wh-2",
		ConnectorName: "codepad",
		ExternalID:    "pad-9",
		EventType:     "invitation.evaluated",
		OccurredAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventRepositoryDeleteOlderThan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWebhookEventRepository(db)
	cutoff := time.Now().Add(-24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM webhook_events WHERE received_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	pruned, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(7), pruned)
	require.NoError(t, mock.ExpectationsWereMet())
}
