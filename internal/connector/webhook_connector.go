package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

const webhookSignatureHeader = "X-Webhook-Signature"

// GenericWebhookConnector integrates any assessment platform that follows
// the common signed-webhook envelope. Platform specifics live entirely in
// the base URL and credentials supplied via ConnectorConfig.
type GenericWebhookConnector struct {
	vault  SecretDecrypter
	client *http.Client
	logger *zap.Logger

	mu            sync.RWMutex
	cfg           models.ConnectorConfig
	apiKey        string
	webhookSecret []byte
	configured    bool
}

// NewGenericWebhookConnector builds the connector. Initialize must run
// before any platform call.
func NewGenericWebhookConnector(vault SecretDecrypter, httpClient *http.Client, logger *zap.Logger) *GenericWebhookConnector {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenericWebhookConnector{vault: vault, client: httpClient, logger: logger}
}

// Name implements Connector.
func (c *GenericWebhookConnector) Name() string { return "webhook" }

// SupportedTypes implements Connector.
func (c *GenericWebhookConnector) SupportedTypes() []models.AssessmentType {
	return []models.AssessmentType{
		models.AssessmentTypeCognitive,
		models.AssessmentTypePersonality,
		models.AssessmentTypeBehavioral,
	}
}

// Initialize decrypts the credential bundle and marks the connector ready.
func (c *GenericWebhookConnector) Initialize(cfg models.ConnectorConfig) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return appErrors.Clone(appErrors.ErrConfiguration, "webhook connector requires a base url")
	}
	apiKey, err := c.vault.Decrypt(cfg.APIKeyCiphertext)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "webhook connector api key cannot be decrypted")
	}
	secret, err := c.vault.Decrypt(cfg.WebhookSecretCiphertext)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "webhook connector signing secret cannot be decrypted")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.apiKey = apiKey
	c.webhookSecret = []byte(secret)
	c.configured = cfg.Enabled
	return nil
}

// IsConfigured implements Connector.
func (c *GenericWebhookConnector) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configured
}

// TestConnection probes the platform's ping endpoint.
func (c *GenericWebhookConnector) TestConnection(ctx context.Context) ConnectionStatus {
	if !c.IsConfigured() {
		return ConnectionStatus{OK: false, Message: "connector not configured"}
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/ping", nil)
	if err != nil {
		return ConnectionStatus{OK: false, Message: err.Error()}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return ConnectionStatus{OK: false, Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return ConnectionStatus{OK: false, Message: fmt.Sprintf("platform returned %d", resp.StatusCode)}
	}
	return ConnectionStatus{OK: true, Message: "connection ok"}
}

type webhookInviteRequest struct {
	AssessmentID   string `json:"assessment_id"`
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	JobTitle       string `json:"job_title"`
	Type           string `json:"type"`
	Deadline       string `json:"deadline,omitempty"`
}

type webhookInviteResponse struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// SendInvite creates an invitation on the platform.
func (c *GenericWebhookConnector) SendInvite(ctx context.Context, actx AssessmentContext) (*InviteResult, error) {
	if !c.IsConfigured() {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "webhook connector not configured")
	}
	payload := webhookInviteRequest{
		AssessmentID:   actx.AssessmentID,
		CandidateName:  actx.CandidateName,
		CandidateEmail: actx.CandidateEmail,
		JobTitle:       actx.JobTitle,
		Type:           string(actx.Type),
	}
	if actx.Deadline != nil {
		payload.Deadline = actx.Deadline.UTC().Format(time.RFC3339)
	}

	var out webhookInviteResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/invitations", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, fmt.Errorf("platform returned invitation without id")
	}
	return &InviteResult{ExternalID: out.ID, InviteURL: out.URL, ExpiresAt: out.ExpiresAt}, nil
}

// GetResults polls the platform's current state for one invitation.
func (c *GenericWebhookConnector) GetResults(ctx context.Context, externalID string) (*models.ExternalAssessmentResult, error) {
	if !c.IsConfigured() {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "webhook connector not configured")
	}
	var body webhookAssessmentPayload
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/assessments/"+externalID, nil, &body); err != nil {
		return nil, err
	}
	result := body.toResult(c.Name())
	if result == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "platform returned no assessment for id")
	}
	return result, nil
}

// ValidateWebhook verifies the HMAC signature over the raw payload bytes.
// It mutates nothing, even on success.
func (c *GenericWebhookConnector) ValidateWebhook(payload []byte, headers http.Header) (*WebhookEvent, error) {
	c.mu.RLock()
	secret := c.webhookSecret
	c.mu.RUnlock()

	header := headers.Get(webhookSignatureHeader)
	if header == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing webhook signature")
	}
	if !verifySignature(secret, payload, header) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid webhook signature")
	}

	var envelope webhookEnvelope
	_ = json.Unmarshal(payload, &envelope)
	event := &WebhookEvent{EventType: envelope.Event}
	if envelope.Assessment != nil {
		event.ExternalID = envelope.Assessment.ID
	}
	if ts, err := time.Parse(time.RFC3339, envelope.Timestamp); err == nil {
		event.OccurredAt = ts.UTC()
	}
	return event, nil
}

// ParseWebhookPayload normalizes the callback body. Pure; returns nil when
// the payload carries no recognizable identifier.
func (c *GenericWebhookConnector) ParseWebhookPayload(payload []byte) *models.ExternalAssessmentResult {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil
	}
	if envelope.Assessment == nil {
		return nil
	}
	return envelope.Assessment.toResult(c.Name())
}

type webhookEnvelope struct {
	Event      string                   `json:"event"`
	Timestamp  string                   `json:"timestamp"`
	Assessment *webhookAssessmentPayload `json:"assessment"`
}

type webhookAssessmentPayload struct {
	ID               string             `json:"id"`
	Status           string             `json:"status"`
	Score            *float64           `json:"score"`
	MaxScore         *float64           `json:"max_score"`
	Percentile       *float64           `json:"percentile"`
	Dimensions       map[string]float64 `json:"dimensions"`
	CompletedAt      *time.Time         `json:"completed_at"`
	TimeSpentSeconds *int               `json:"time_spent_seconds"`
	ReportURL        *string            `json:"report_url"`
}

func (p *webhookAssessmentPayload) toResult(connectorName string) *models.ExternalAssessmentResult {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return nil
	}
	raw := models.JSONMap{}
	if data, err := json.Marshal(p); err == nil {
		_ = json.Unmarshal(data, &raw)
	}
	return &models.ExternalAssessmentResult{
		ConnectorName:    connectorName,
		ExternalID:       p.ID,
		Status:           mapGenericStatus(p.Status),
		Score:            p.Score,
		MaxScore:         p.MaxScore,
		Percentile:       p.Percentile,
		DimensionScores:  models.ScoreMap(p.Dimensions),
		CompletedAt:      p.CompletedAt,
		TimeSpentSeconds: p.TimeSpentSeconds,
		ReportURL:        p.ReportURL,
		RawResults:       raw,
	}
}

// mapGenericStatus translates the platform vocabulary into the canonical
// status model. Unknown values map to PENDING so vocabulary drift never
// drops an otherwise valid webhook.
func mapGenericStatus(native string) models.AssessmentStatus {
	switch strings.ToLower(strings.TrimSpace(native)) {
	case "pending", "invited", "sent":
		return models.AssessmentStatusPending
	case "started", "in_progress", "opened":
		return models.AssessmentStatusInProgress
	case "completed", "finished", "done":
		return models.AssessmentStatusCompleted
	case "expired", "timed_out":
		return models.AssessmentStatusExpired
	case "cancelled", "canceled", "revoked":
		return models.AssessmentStatusCancelled
	default:
		return models.AssessmentStatusPending
	}
}

func (c *GenericWebhookConnector) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	c.mu.RLock()
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	apiKey := c.apiKey
	orgID := c.cfg.OrgID
	c.mu.RUnlock()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	if orgID != "" {
		req.Header.Set("X-Org-ID", orgID)
	}
	return req, nil
}

func (c *GenericWebhookConnector) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = data
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, "platform resource not found")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("platform returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode platform response: %w", err)
	}
	return nil
}
