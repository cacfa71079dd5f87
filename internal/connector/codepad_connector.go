package connector

import (
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

const (
	codepadSignatureHeader = "X-Codepad-Signature"
	codepadEventHeader     = "X-Codepad-Event"
)

// CodepadConnector integrates the Codepad coding-assessment platform. It is
// built on the same contract as the generic connector but speaks Codepad's
// invitation API and its richer status vocabulary, and supports cancelling
// outstanding invitations.
type CodepadConnector struct {
	vault  SecretDecrypter
	client *http.Client
	logger *zap.Logger

	mu            sync.RWMutex
	cfg           models.ConnectorConfig
	apiKey        string
	webhookSecret []byte
	configured    bool
}

// NewCodepadConnector builds the connector.
func NewCodepadConnector(vault SecretDecrypter, httpClient *http.Client, logger *zap.Logger) *CodepadConnector {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodepadConnector{vault: vault, client: httpClient, logger: logger}
}

// Name implements Connector.
func (c *CodepadConnector) Name() string { return "codepad" }

// SupportedTypes implements Connector.
func (c *CodepadConnector) SupportedTypes() []models.AssessmentType {
	return []models.AssessmentType{models.AssessmentTypeCoding}
}

// Initialize decrypts credentials and marks the connector ready.
func (c *CodepadConnector) Initialize(cfg models.ConnectorConfig) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.codepad.io"
	}
	apiKey, err := c.vault.Decrypt(cfg.APIKeyCiphertext)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "codepad api key cannot be decrypted")
	}
	secret, err := c.vault.Decrypt(cfg.WebhookSecretCiphertext)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "codepad signing secret cannot be decrypted")
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
func (c *CodepadConnector) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configured
}

// TestConnection probes the authenticated account endpoint.
func (c *CodepadConnector) TestConnection(ctx context.Context) ConnectionStatus {
	if !c.IsConfigured() {
		return ConnectionStatus{OK: false, Message: "connector not configured"}
	}
	var out struct {
		OrgName string `json:"org_name"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v2/account", nil, &out); err != nil {
		return ConnectionStatus{OK: false, Message: err.Error()}
	}
	return ConnectionStatus{OK: true, Message: fmt.Sprintf("authenticated as %s", out.OrgName)}
}

type codepadInviteRequest struct {
	TestID         string `json:"test_id"`
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	Callback       string `json:"callback,omitempty"`
}

type codepadInviteResponse struct {
	InvitationID string     `json:"invitation_id"`
	TakeURL      string     `json:"take_url"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// SendInvite creates a Codepad invitation.
func (c *CodepadConnector) SendInvite(ctx context.Context, actx AssessmentContext) (*InviteResult, error) {
	if !c.IsConfigured() {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "codepad connector not configured")
	}
	payload := codepadInviteRequest{
		TestID:         actx.AssessmentID,
		CandidateName:  actx.CandidateName,
		CandidateEmail: actx.CandidateEmail,
	}
	if actx.Deadline != nil {
		payload.ExpiresAt = actx.Deadline.UTC().Format(time.RFC3339)
	}

	var out codepadInviteResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/invitations", payload, &out); err != nil {
		return nil, err
	}
	if out.InvitationID == "" {
		return nil, fmt.Errorf("codepad returned invitation without id")
	}
	return &InviteResult{ExternalID: out.InvitationID, InviteURL: out.TakeURL, ExpiresAt: out.ExpiresAt}, nil
}

// GetResults polls an invitation's current state.
func (c *CodepadConnector) GetResults(ctx context.Context, externalID string) (*models.ExternalAssessmentResult, error) {
	if !c.IsConfigured() {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "codepad connector not configured")
	}
	var body codepadResultPayload
	if err := c.doJSON(ctx, http.MethodGet, "/v2/invitations/"+externalID, nil, &body); err != nil {
		return nil, err
	}
	result := body.toResult()
	if result == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "codepad returned no invitation for id")
	}
	return result, nil
}

// Cancel revokes an outstanding invitation. Optional capability.
func (c *CodepadConnector) Cancel(ctx context.Context, externalID string) error {
	if !c.IsConfigured() {
		return appErrors.Clone(appErrors.ErrConfiguration, "codepad connector not configured")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v2/invitations/"+externalID, nil, nil)
}

// ValidateWebhook verifies the Codepad signature over the raw payload.
func (c *CodepadConnector) ValidateWebhook(payload []byte, headers http.Header) (*WebhookEvent, error) {
	c.mu.RLock()
	secret := c.webhookSecret
	c.mu.RUnlock()

	header := headers.Get(codepadSignatureHeader)
	if header == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing codepad signature")
	}
	if !verifySignature(secret, payload, header) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid codepad signature")
	}

	var body codepadWebhookPayload
	_ = json.Unmarshal(payload, &body)

	event := &WebhookEvent{EventType: headers.Get(codepadEventHeader)}
	if event.EventType == "" {
		event.EventType = body.Event
	}
	event.ExternalID = body.InvitationID
	if ts, err := time.Parse(time.RFC3339, body.OccurredAt); err == nil {
		event.OccurredAt = ts.UTC()
	}
	return event, nil
}

// ParseWebhookPayload normalizes the Codepad callback body.
func (c *CodepadConnector) ParseWebhookPayload(payload []byte) *models.ExternalAssessmentResult {
	var body codepadWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	result := body.codepadResultPayload.toResult()
	if result == nil {
		return nil
	}
	return result
}

type codepadWebhookPayload struct {
	Event      string `json:"event"`
	OccurredAt string `json:"occurred_at"`
	codepadResultPayload
}

type codepadResultPayload struct {
	InvitationID    string             `json:"invitation_id"`
	Status          string             `json:"status"`
	Score           *float64           `json:"score"`
	MaxScore        *float64           `json:"max_score"`
	Percentile      *float64           `json:"percentile"`
	Metrics         map[string]float64 `json:"metrics"`
	CompletedAt     *time.Time         `json:"completed_at"`
	DurationSeconds *int               `json:"duration_seconds"`
	ReportURL       *string            `json:"report_url"`
}

func (p codepadResultPayload) toResult() *models.ExternalAssessmentResult {
	if strings.TrimSpace(p.InvitationID) == "" {
		return nil
	}
	raw := models.JSONMap{}
	if data, err := json.Marshal(p); err == nil {
		_ = json.Unmarshal(data, &raw)
	}
	return &models.ExternalAssessmentResult{
		ConnectorName:    "codepad",
		ExternalID:       p.InvitationID,
		Status:           mapCodepadStatus(p.Status),
		Score:            p.Score,
		MaxScore:         p.MaxScore,
		Percentile:       p.Percentile,
		DimensionScores:  models.ScoreMap(p.Metrics),
		CompletedAt:      p.CompletedAt,
		TimeSpentSeconds: p.DurationSeconds,
		ReportURL:        p.ReportURL,
		RawResults:       raw,
	}
}

// mapCodepadStatus translates Codepad's vocabulary into the canonical
// states. "submitted" means the candidate finished but evaluation is still
// running, so it stays IN_PROGRESS until "evaluated" arrives. Unknown
// values map to PENDING.
func mapCodepadStatus(native string) models.AssessmentStatus {
	switch strings.ToLower(strings.TrimSpace(native)) {
	case "created", "invited":
		return models.AssessmentStatusPending
	case "opened", "coding", "submitted":
		return models.AssessmentStatusInProgress
	case "evaluated", "completed":
		return models.AssessmentStatusCompleted
	case "expired":
		return models.AssessmentStatusExpired
	case "revoked", "cancelled", "canceled":
		return models.AssessmentStatusCancelled
	default:
		return models.AssessmentStatusPending
	}
}

func (c *CodepadConnector) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	c.mu.RLock()
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	apiKey := c.apiKey
	orgID := c.cfg.OrgID
	c.mu.RUnlock()

	var reader *strings.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	if orgID != "" {
		req.Header.Set("X-Codepad-Org", orgID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("codepad request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, "codepad resource not found")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("codepad returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode codepad response: %w", err)
	}
	return nil
}
