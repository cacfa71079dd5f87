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

type plaintextVault struct{}

func (plaintextVault) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

func newTestWebhookConnector(t *testing.T, baseURL string) *GenericWebhookConnector {
	t.Helper()
	c := NewGenericWebhookConnector(plaintextVault{}, nil, nil)
	require.NoError(t, c.Initialize(models.ConnectorConfig{
		ConnectorName:           "webhook",
		APIKeyCiphertext:        "api-key",
		WebhookSecretCiphertext: "hook-secret",
		BaseURL:                 baseURL,
		Enabled:                 true,
	}))
	return c
}

func TestWebhookConnectorInitialize(t *testing.T) {
	c := NewGenericWebhookConnector(plaintextVault{}, nil, nil)
	require.False(t, c.IsConfigured())

	err := c.Initialize(models.ConnectorConfig{APIKeyCiphertext: "k", WebhookSecretCiphertext: "s"})
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrConfiguration))

	require.NoError(t, c.Initialize(models.ConnectorConfig{
		APIKeyCiphertext:        "k",
		WebhookSecretCiphertext: "s",
		BaseURL:                 "https://assess.example.com",
		Enabled:                 true,
	}))
	require.True(t, c.IsConfigured())
}

func TestWebhookConnectorInitializeDisabledStaysUnconfigured(t *testing.T) {
	c := NewGenericWebhookConnector(plaintextVault{}, nil, nil)
	require.NoError(t, c.Initialize(models.ConnectorConfig{
		APIKeyCiphertext:        "k",
		WebhookSecretCiphertext: "s",
		BaseURL:                 "https://assess.example.com",
		Enabled:                 false,
	}))
	require.False(t, c.IsConfigured())
}

func TestWebhookConnectorValidateWebhook(t *testing.T) {
	c := newTestWebhookConnector(t, "https://assess.example.com")
	payload := []byte(`{"event":"assessment.completed","timestamp":"2026-08-30T10:00:00Z","assessment":{"id":"ext-42","status":"completed"}}`)

	headers := http.Header{}
	headers.Set("X-Webhook-Signature", computeSignature([]byte("hook-secret"), payload))

	event, err := c.ValidateWebhook(payload, headers)
	require.NoError(t, err)
	require.Equal(t, "assessment.completed", event.EventType)
	require.Equal(t, "ext-42", event.ExternalID)
	require.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), event.OccurredAt)
}

func TestWebhookConnectorValidateWebhookRejects(t *testing.T) {
	c := newTestWebhookConnector(t, "https://assess.example.com")
	payload := []byte(`{"event":"assessment.completed"}`)

	_, err := c.ValidateWebhook(payload, http.Header{})
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	headers := http.Header{}
	headers.Set("X-Webhook-Signature", "sha256=deadbeef")
	_, err = c.ValidateWebhook(payload, headers)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	headers.Set("X-Webhook-Signature", computeSignature([]byte("wrong-secret"), payload))
	_, err = c.ValidateWebhook(payload, headers)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestWebhookConnectorParsePayload(t *testing.T) {
	c := newTestWebhookConnector(t, "https://assess.example.com")
	payload := []byte(`{"event":"assessment.completed","assessment":{"id":"ext-42","status":"finished","score":88.5,"max_score":100,"dimensions":{"verbal":91}}}`)

	result := c.ParseWebhookPayload(payload)
	require.NotNil(t, result)
	require.Equal(t, "ext-42", result.ExternalID)
	require.Equal(t, models.AssessmentStatusCompleted, result.Status)
	require.NotNil(t, result.Score)
	require.Equal(t, 88.5, *result.Score)
	require.Equal(t, 91.0, result.DimensionScores["verbal"])
	require.NotEmpty(t, result.RawResults)
}

func TestWebhookConnectorParsePayloadNilCases(t *testing.T) {
	c := newTestWebhookConnector(t, "https://assess.example.com")

	require.Nil(t, c.ParseWebhookPayload([]byte(`not json`)))
	require.Nil(t, c.ParseWebhookPayload([]byte(`{"event":"ping"}`)))
	require.Nil(t, c.ParseWebhookPayload([]byte(`{"assessment":{"status":"completed"}}`)))
}

func TestMapGenericStatus(t *testing.T) {
	cases := map[string]models.AssessmentStatus{
		"pending":     models.AssessmentStatusPending,
		"invited":     models.AssessmentStatusPending,
		"STARTED":     models.AssessmentStatusInProgress,
		"in_progress": models.AssessmentStatusInProgress,
		"completed":   models.AssessmentStatusCompleted,
		"done":        models.AssessmentStatusCompleted,
		"expired":     models.AssessmentStatusExpired,
		"revoked":     models.AssessmentStatusCancelled,
		"canceled":    models.AssessmentStatusCancelled,
		"who_knows":   models.AssessmentStatusPending,
		"":            models.AssessmentStatusPending,
	}
	for native, want := range cases {
		require.Equal(t, want, mapGenericStatus(native), "native status %q", native)
	}
}

func TestWebhookConnectorSendInvite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/invitations", r.URL.Path)
		require.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"inv-7","url":"https://assess.example.com/take/inv-7"}`))
	}))
	defer server.Close()

	c := newTestWebhookConnector(t, server.URL)
	deadline := time.Now().Add(72 * time.Hour)
	invite, err := c.SendInvite(context.Background(), AssessmentContext{
		AssessmentID:   "a-1",
		CandidateName:  "Dana Smith",
		CandidateEmail: "dana@example.com",
		JobTitle:       "Backend Engineer",
		Type:           models.AssessmentTypeCognitive,
		Deadline:       &deadline,
	})
	require.NoError(t, err)
	require.Equal(t, "inv-7", invite.ExternalID)
	require.Equal(t, "https://assess.example.com/take/inv-7", invite.InviteURL)
}

func TestWebhookConnectorGetResultsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestWebhookConnector(t, server.URL)
	_, err := c.GetResults(context.Background(), "missing")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestWebhookConnectorTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestWebhookConnector(t, server.URL)
	status := c.TestConnection(context.Background())
	require.True(t, status.OK)

	unconfigured := NewGenericWebhookConnector(plaintextVault{}, nil, nil)
	status = unconfigured.TestConnection(context.Background())
	require.False(t, status.OK)
}
