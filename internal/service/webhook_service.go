package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/talent-eval-api/internal/connector"
	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
	"github.com/noah-isme/talent-eval-api/pkg/jobs"
)

// Background job types dispatched through the shared queue.
const (
	// JobTypeResultsAnalysis triggers the post-completion results analysis.
	// Payload is the assessment id.
	JobTypeResultsAnalysis = "assessment.analyze_results"
	// JobTypeGenerateAnalysis runs an asynchronously requested candidate
	// analysis. Payload is an AnalysisJobPayload.
	JobTypeGenerateAnalysis = "candidate.generate_analysis"
)

// AnalysisJobPayload carries an async analysis request through the queue.
type AnalysisJobPayload struct {
	CandidateID  string
	AnalysisType models.AnalysisType
	Trigger      dto.AnalysisTrigger
}

// WebhookOutcome classifies what a processed delivery did.
type WebhookOutcome string

const (
	WebhookOutcomeApplied   WebhookOutcome = "applied"
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	WebhookOutcomeNoop      WebhookOutcome = "noop"
)

type webhookLedger interface {
	Seen(ctx context.Context, ev *models.WebhookEvent) (bool, error)
	Record(ctx context.Context, ev *models.WebhookEvent) (bool, error)
}

type resultStore interface {
	GetByExternalID(ctx context.Context, connectorName, externalID string) (*models.ExternalAssessmentResult, error)
	ApplyUpdate(ctx context.Context, update *models.ExternalAssessmentResult) (bool, error)
}

type assessmentCompleter interface {
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type webhookObserver interface {
	IncWebhookReceived(connectorName string)
	IncWebhookRejected(connectorName, reason string)
	IncWebhookOutcome(connectorName string, outcome string)
}

// WebhookService is the single entry point for inbound platform callbacks.
// Processing is strictly ordered: signature validation, then the dedupe
// lookup, then the state transition, then the dedupe marker. Validation
// happens before any parsing or persistence so a forged payload never
// touches state; the marker is written only after the apply commits so a
// failed apply stays replayable.
type WebhookService struct {
	registry    *connector.Registry
	ledger      webhookLedger
	results     resultStore
	assessments assessmentCompleter
	queue       jobEnqueuer
	logger      *zap.Logger
	observer    webhookObserver
}

// NewWebhookService constructs the service. queue and observer may be nil.
func NewWebhookService(registry *connector.Registry, ledger webhookLedger, results resultStore, assessments assessmentCompleter, queue jobEnqueuer, logger *zap.Logger, observer webhookObserver) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		registry:    registry,
		ledger:      ledger,
		results:     results,
		assessments: assessments,
		queue:       queue,
		logger:      logger,
		observer:    observer,
	}
}

// Process handles one raw delivery. The returned outcome is always paired
// with a nil error; any error means the delivery was rejected and the
// handler should surface the mapped status code.
func (s *WebhookService) Process(ctx context.Context, connectorName string, payload []byte, headers http.Header) (WebhookOutcome, error) {
	if s.observer != nil {
		s.observer.IncWebhookReceived(connectorName)
	}

	conn := s.registry.Get(connectorName)
	if conn == nil {
		s.reject(connectorName, "unknown_connector")
		return "", appErrors.Clone(appErrors.ErrNotFound, "unknown connector")
	}

	event, err := conn.ValidateWebhook(payload, headers)
	if err != nil {
		s.reject(connectorName, "invalid_signature")
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "webhook signature validation failed")
	}

	update := conn.ParseWebhookPayload(payload)
	if update == nil {
		s.reject(connectorName, "unparseable_payload")
		return "", appErrors.Clone(appErrors.ErrValidation, "webhook payload missing assessment identifier")
	}

	delivery := &models.WebhookEvent{
		ID:            uuid.NewString(),
		ConnectorName: connectorName,
		ExternalID:    event.ExternalID,
		EventType:     event.EventType,
		OccurredAt:    event.OccurredAt,
	}
	seen, err := s.ledger.Seen(ctx, delivery)
	if err != nil {
		return "", err
	}
	if seen {
		s.logger.Info("duplicate webhook delivery ignored",
			zap.String("connector", connectorName),
			zap.String("external_id", event.ExternalID),
			zap.String("event_type", event.EventType))
		s.outcome(connectorName, WebhookOutcomeDuplicate)
		return WebhookOutcomeDuplicate, nil
	}

	tracked, err := s.results.GetByExternalID(ctx, connectorName, event.ExternalID)
	if err != nil {
		return "", err
	}
	if tracked.Status.Terminal() {
		s.logger.Info("webhook for terminal assessment ignored",
			zap.String("connector", connectorName),
			zap.String("external_id", event.ExternalID),
			zap.String("status", string(tracked.Status)))
		s.outcome(connectorName, WebhookOutcomeNoop)
		return WebhookOutcomeNoop, nil
	}

	update.ConnectorName = connectorName
	update.ExternalID = event.ExternalID
	moved, err := s.results.ApplyUpdate(ctx, update)
	if err != nil {
		return "", err
	}
	if !moved {
		// Lost a race with a concurrent delivery that reached terminal first.
		s.outcome(connectorName, WebhookOutcomeNoop)
		return WebhookOutcomeNoop, nil
	}

	// Marker goes in only after the update is durable. A failed apply
	// returns before this point, leaving the key replayable so the
	// platform's retry can land the update.
	if _, err := s.ledger.Record(ctx, delivery); err != nil {
		return "", err
	}

	if update.Status == models.AssessmentStatusCompleted {
		s.onCompleted(ctx, tracked, update)
	}

	s.logger.Info("webhook applied",
		zap.String("connector", connectorName),
		zap.String("external_id", event.ExternalID),
		zap.String("status", string(update.Status)))
	s.outcome(connectorName, WebhookOutcomeApplied)
	return WebhookOutcomeApplied, nil
}

// onCompleted stamps the linked assessment and queues the follow-up results
// analysis. Failures here never fail the delivery; the webhook already
// advanced the tracked state.
func (s *WebhookService) onCompleted(ctx context.Context, tracked, update *models.ExternalAssessmentResult) {
	completedAt := time.Now().UTC()
	if update.CompletedAt != nil {
		completedAt = *update.CompletedAt
	}
	if err := s.assessments.MarkCompleted(ctx, tracked.AssessmentID, completedAt); err != nil {
		s.logger.Error("failed to mark assessment completed",
			zap.String("assessment_id", tracked.AssessmentID), zap.Error(err))
	}
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeResultsAnalysis,
		Payload: tracked.AssessmentID,
	})
	if err != nil {
		s.logger.Error("failed to enqueue results analysis",
			zap.String("assessment_id", tracked.AssessmentID), zap.Error(err))
	}
}

func (s *WebhookService) reject(connectorName, reason string) {
	if s.observer != nil {
		s.observer.IncWebhookRejected(connectorName, reason)
	}
}

func (s *WebhookService) outcome(connectorName string, outcome WebhookOutcome) {
	if s.observer != nil {
		s.observer.IncWebhookOutcome(connectorName, string(outcome))
	}
}
