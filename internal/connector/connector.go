// Package connector defines the capability contract every external
// assessment platform adapter implements, plus the registry used to look
// connectors up by name, configuration state and supported assessment type.
package connector

import (
	"context"
	"net/http"
	"time"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

// AssessmentContext carries what a platform needs to create an invitation.
type AssessmentContext struct {
	AssessmentID   string                `json:"assessment_id"`
	CandidateName  string                `json:"candidate_name"`
	CandidateEmail string                `json:"candidate_email"`
	JobTitle       string                `json:"job_title"`
	Type           models.AssessmentType `json:"type"`
	Deadline       *time.Time            `json:"deadline,omitempty"`
}

// InviteResult is the platform's answer to a sent invitation.
type InviteResult struct {
	ExternalID string     `json:"external_id"`
	InviteURL  string     `json:"invite_url,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// ConnectionStatus reports the outcome of a connectivity probe.
type ConnectionStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// WebhookEvent is the validated envelope of an incoming callback. Produced
// by ValidateWebhook before any payload parsing happens.
type WebhookEvent struct {
	EventType  string    `json:"event_type"`
	ExternalID string    `json:"external_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Connector is the contract an assessment platform adapter implements.
//
// ValidateWebhook must run before ParseWebhookPayload and must reject a
// missing or invalid signature using a constant-time HMAC comparison over
// the raw payload bytes. It is pure gatekeeping: no state changes even on
// success. ParseWebhookPayload is a pure function and returns nil for
// payloads lacking a recognizable identifier rather than erroring.
type Connector interface {
	Name() string
	SupportedTypes() []models.AssessmentType
	Initialize(cfg models.ConnectorConfig) error
	IsConfigured() bool
	TestConnection(ctx context.Context) ConnectionStatus
	SendInvite(ctx context.Context, actx AssessmentContext) (*InviteResult, error)
	GetResults(ctx context.Context, externalID string) (*models.ExternalAssessmentResult, error)
	ValidateWebhook(payload []byte, headers http.Header) (*WebhookEvent, error)
	ParseWebhookPayload(payload []byte) *models.ExternalAssessmentResult
}

// Canceler is an optional capability. Connectors that cannot cancel an
// invitation simply don't implement it; callers degrade to NOT_SUPPORTED.
type Canceler interface {
	Cancel(ctx context.Context, externalID string) error
}

// DeadlineExtender is an optional capability for pushing out an expiry.
type DeadlineExtender interface {
	ExtendDeadline(ctx context.Context, externalID string, until time.Time) error
}

// SecretDecrypter resolves stored credential ciphertexts.
type SecretDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}
