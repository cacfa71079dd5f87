package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/talent-eval-api/internal/connector"
	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

type inviteStore interface {
	Create(ctx context.Context, result *models.ExternalAssessmentResult) error
	GetByExternalID(ctx context.Context, connectorName, externalID string) (*models.ExternalAssessmentResult, error)
	ApplyUpdate(ctx context.Context, update *models.ExternalAssessmentResult) (bool, error)
}

type inviteContextReader interface {
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
}

// ConnectorService fronts the registry for API consumers: listing,
// connectivity probes, sending invitations and pulling results on demand.
type ConnectorService struct {
	registry    *connector.Registry
	invites     inviteStore
	assessments assessmentStore
	candidates  inviteContextReader
	logger      *zap.Logger
}

// NewConnectorService constructs the service.
func NewConnectorService(registry *connector.Registry, invites inviteStore, assessments assessmentStore, candidates inviteContextReader, logger *zap.Logger) *ConnectorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorService{
		registry:    registry,
		invites:     invites,
		assessments: assessments,
		candidates:  candidates,
		logger:      logger,
	}
}

// List describes every registered connector, configured or not.
func (s *ConnectorService) List() []dto.ConnectorInfo {
	all := s.registry.All()
	infos := make([]dto.ConnectorInfo, 0, len(all))
	for _, c := range all {
		infos = append(infos, describeConnector(c))
	}
	return infos
}

// Get describes one connector by name.
func (s *ConnectorService) Get(name string) (*dto.ConnectorInfo, error) {
	c := s.registry.Get(name)
	if c == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown connector")
	}
	info := describeConnector(c)
	return &info, nil
}

// TestConnection probes the platform behind a configured connector.
func (s *ConnectorService) TestConnection(ctx context.Context, name string) (*connector.ConnectionStatus, error) {
	c := s.registry.Get(name)
	if c == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown connector")
	}
	if !c.IsConfigured() {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "connector is not configured")
	}
	status := c.TestConnection(ctx)
	return &status, nil
}

// SendInvite creates an invitation on the external platform and starts
// tracking it locally with status PENDING.
func (s *ConnectorService) SendInvite(ctx context.Context, name string, req dto.SendInviteRequest) (*dto.InviteResponse, error) {
	c := s.registry.Get(name)
	if c == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown connector")
	}
	if !c.IsConfigured() {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "connector is not configured")
	}

	assessment, err := s.assessments.Get(ctx, req.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !supportsType(c, assessment.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "connector does not support this assessment type")
	}
	candidate, err := s.candidates.GetCandidate(ctx, assessment.CandidateID)
	if err != nil {
		return nil, err
	}
	job, err := s.candidates.GetJob(ctx, assessment.JobID)
	if err != nil {
		return nil, err
	}

	invite, err := c.SendInvite(ctx, connector.AssessmentContext{
		AssessmentID:   assessment.ID,
		CandidateName:  candidate.FullName,
		CandidateEmail: candidate.Email,
		JobTitle:       job.Title,
		Type:           assessment.Type,
		Deadline:       req.Deadline,
	})
	if err != nil {
		return nil, err
	}

	tracked := &models.ExternalAssessmentResult{
		ID:            uuid.NewString(),
		AssessmentID:  assessment.ID,
		ConnectorName: c.Name(),
		ExternalID:    invite.ExternalID,
		Status:        models.AssessmentStatusPending,
		ExpiresAt:     invite.ExpiresAt,
	}
	if invite.InviteURL != "" {
		tracked.InviteURL = &invite.InviteURL
	}
	if err := s.invites.Create(ctx, tracked); err != nil {
		return nil, err
	}

	s.logger.Info("assessment invitation sent",
		zap.String("connector", c.Name()),
		zap.String("assessment_id", assessment.ID),
		zap.String("external_id", invite.ExternalID))

	return &dto.InviteResponse{
		ExternalID: invite.ExternalID,
		InviteURL:  invite.InviteURL,
		ExpiresAt:  invite.ExpiresAt,
		Status:     string(models.AssessmentStatusPending),
	}, nil
}

// PollResults pulls the current state from the platform and folds it into
// the tracked row, subject to the same terminal-status guard webhooks get.
func (s *ConnectorService) PollResults(ctx context.Context, name, externalID string) (*models.ExternalAssessmentResult, error) {
	c := s.registry.Get(name)
	if c == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown connector")
	}
	if !c.IsConfigured() {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "connector is not configured")
	}
	tracked, err := s.invites.GetByExternalID(ctx, name, externalID)
	if err != nil {
		return nil, err
	}

	polled, err := c.GetResults(ctx, externalID)
	if err != nil {
		return nil, err
	}
	polled.ConnectorName = name
	polled.ExternalID = externalID
	if !tracked.Status.Terminal() {
		if _, err := s.invites.ApplyUpdate(ctx, polled); err != nil {
			return nil, err
		}
	}
	return s.invites.GetByExternalID(ctx, name, externalID)
}

// CancelInvite revokes an invitation on platforms that support it.
func (s *ConnectorService) CancelInvite(ctx context.Context, name, externalID string) error {
	c := s.registry.Get(name)
	if c == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown connector")
	}
	canceler, ok := c.(connector.Canceler)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotSupported, "connector does not support cancellation")
	}
	tracked, err := s.invites.GetByExternalID(ctx, name, externalID)
	if err != nil {
		return err
	}
	if tracked.Status.Terminal() {
		return appErrors.Clone(appErrors.ErrConflict, "assessment already reached a terminal status")
	}
	if err := canceler.Cancel(ctx, externalID); err != nil {
		return err
	}
	tracked.Status = models.AssessmentStatusCancelled
	if _, err := s.invites.ApplyUpdate(ctx, tracked); err != nil {
		return err
	}
	s.logger.Info("assessment invitation cancelled",
		zap.String("connector", name), zap.String("external_id", externalID))
	return nil
}

func describeConnector(c connector.Connector) dto.ConnectorInfo {
	types := c.SupportedTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return dto.ConnectorInfo{
		Name:           c.Name(),
		Configured:     c.IsConfigured(),
		SupportedTypes: names,
	}
}

func supportsType(c connector.Connector, t models.AssessmentType) bool {
	for _, supported := range c.SupportedTypes() {
		if supported == t {
			return true
		}
	}
	return false
}
