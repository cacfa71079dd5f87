package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

func newTestCodepadConnector(t *testing.T, baseURL string) *CodepadConnector {
	t.Helper()
	c := NewCodepadConnector(plaintextVault{}, nil, nil)
	require.NoError(t, c.Initialize(models.ConnectorConfig{
		ConnectorName:           "codepad",
		APIKeyCiphertext:        "api-key",
		WebhookSecretCiphertext: "pad-secret",
		BaseURL:                 baseURL,
		Enabled:                 true,
	}))
	return c
}

func TestCodepadConnectorSupportsCodingOnly(t *testing.T) {
	c := NewCodepadConnector(plaintextVault{}, nil, nil)
	require.Equal(t, []models.AssessmentType{models.AssessmentTypeCoding}, c.SupportedTypes())
	require.Equal(t, "codepad", c.Name())
}

func TestCodepadConnectorValidateWebhook(t *testing.T) {
	c := newTestCodepadConnector(t, "https://api.codepad.io")
	payload := []byte(`{"event":"invitation.evaluated","occurred_at":"2026-08-30T12:30:00Z","invitation_id":"pad-9","status":"evaluated"}`)

	headers := http.Header{}
	headers.Set("X-Codepad-Signature", computeSignature([]byte("pad-secret"), payload))
	headers.Set("X-Codepad-Event", "invitation.evaluated")

	event, err := c.ValidateWebhook(payload, headers)
	require.NoError(t, err)
	require.Equal(t, "invitation.evaluated", event.EventType)
	require.Equal(t, "pad-9", event.ExternalID)
	require.Equal(t, time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC), event.OccurredAt)

	headers.Set("X-Codepad-Signature", "sha256=0000")
	_, err = c.ValidateWebhook(payload, headers)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestCodepadConnectorParsePayload(t *testing.T) {
	c := newTestCodepadConnector(t, "https://api.codepad.io")
	payload := []byte(`{"event":"invitation.evaluated","invitation_id":"pad-9","status":"evaluated","score":72,"max_score":100,"metrics":{"correctness":80,"style":64},"duration_seconds":3600}`)

	result := c.ParseWebhookPayload(payload)
	require.NotNil(t, result)
	require.Equal(t, "pad-9", result.ExternalID)
	require.Equal(t, models.AssessmentStatusCompleted, result.Status)
	require.Equal(t, 80.0, result.DimensionScores["correctness"])
	require.NotNil(t, result.TimeSpentSeconds)
	require.Equal(t, 3600, *result.TimeSpentSeconds)

	require.Nil(t, c.ParseWebhookPayload([]byte(`{"event":"ping"}`)))
	require.Nil(t, c.ParseWebhookPayload([]byte(`garbage`)))
}

func TestMapCodepadStatus(t *testing.T) {
	cases := map[string]models.AssessmentStatus{
		"created":   models.AssessmentStatusPending,
		"invited":   models.AssessmentStatusPending,
		"opened":    models.AssessmentStatusInProgress,
		"coding":    models.AssessmentStatusInProgress,
		"submitted": models.AssessmentStatusInProgress,
		"evaluated": models.AssessmentStatusCompleted,
		"completed": models.AssessmentStatusCompleted,
		"expired":   models.AssessmentStatusExpired,
		"revoked":   models.AssessmentStatusCancelled,
		"novel":     models.AssessmentStatusPending,
	}
	for native, want := range cases {
		require.Equal(t, want, mapCodepadStatus(native), "native status %q", native)
	}
}

func TestCodepadConnectorCancel(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestCodepadConnector(t, server.URL)
	require.NoError(t, c.Cancel(context.Background(), "pad-9"))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/v2/invitations/pad-9", gotPath)

	// capability is discoverable through the interface
	var conn Connector = c
	_, ok := conn.(Canceler)
	require.True(t, ok)

	var generic Connector = NewGenericWebhookConnector(plaintextVault{}, nil, nil)
	_, ok = generic.(Canceler)
	require.False(t, ok)
}

func TestCodepadConnectorGetResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/invitations/pad-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"invitation_id":"pad-9","status":"submitted","score":55}`))
	}))
	defer server.Close()

	c := newTestCodepadConnector(t, server.URL)
	result, err := c.GetResults(context.Background(), "pad-9")
	require.NoError(t, err)
	require.Equal(t, models.AssessmentStatusInProgress, result.Status)
	require.NotNil(t, result.Score)
	require.Equal(t, 55.0, *result.Score)
}
