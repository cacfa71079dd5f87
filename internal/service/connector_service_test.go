package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/talent-eval-api/internal/connector"
	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

type cancelableStub struct {
	connectorStub
	cancelled []string
}

func (c *cancelableStub) Cancel(ctx context.Context, externalID string) error {
	c.cancelled = append(c.cancelled, externalID)
	return nil
}

type inviteStoreStub struct {
	tracked *models.ExternalAssessmentResult
	created []models.ExternalAssessmentResult
	applied []models.ExternalAssessmentResult
}

func (s *inviteStoreStub) Create(ctx context.Context, result *models.ExternalAssessmentResult) error {
	s.created = append(s.created, *result)
	return nil
}

func (s *inviteStoreStub) GetByExternalID(ctx context.Context, connectorName, externalID string) (*models.ExternalAssessmentResult, error) {
	if s.tracked == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown external assessment id")
	}
	return s.tracked, nil
}

func (s *inviteStoreStub) ApplyUpdate(ctx context.Context, update *models.ExternalAssessmentResult) (bool, error) {
	s.applied = append(s.applied, *update)
	return true, nil
}

func connectorFixture(conns ...connector.Connector) *connector.Registry {
	registry := connector.NewRegistry()
	for _, c := range conns {
		_ = registry.Register(c)
	}
	return registry
}

func TestConnectorServiceList(t *testing.T) {
	registry := connectorFixture(
		&connectorStub{name: "codepad"},
		&connectorStub{name: "webhook", unconfigured: true, types: []models.AssessmentType{models.AssessmentTypeCognitive}},
	)
	svc := NewConnectorService(registry, &inviteStoreStub{}, &assessmentStoreStub{}, newHistoryStub(), nil)

	infos := svc.List()
	require.Len(t, infos, 2)
	byName := map[string]dto.ConnectorInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}
	require.True(t, byName["codepad"].Configured)
	require.False(t, byName["webhook"].Configured)
	require.Equal(t, []string{"COGNITIVE"}, byName["webhook"].SupportedTypes)
}

func TestConnectorServiceGetUnknown(t *testing.T) {
	svc := NewConnectorService(connectorFixture(), &inviteStoreStub{}, &assessmentStoreStub{}, newHistoryStub(), nil)
	_, err := svc.Get("nonexistent")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestConnectorServiceTestConnectionUnconfigured(t *testing.T) {
	registry := connectorFixture(&connectorStub{name: "codepad", unconfigured: true})
	svc := NewConnectorService(registry, &inviteStoreStub{}, &assessmentStoreStub{}, newHistoryStub(), nil)

	_, err := svc.TestConnection(context.Background(), "codepad")
	require.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestConnectorServiceSendInvite(t *testing.T) {
	url := "https://pad.example.com/i/ext-9"
	conn := &connectorStub{
		name:   "codepad",
		invite: &connector.InviteResult{ExternalID: "ext-9", InviteURL: url},
	}
	invites := &inviteStoreStub{}
	assessments := &assessmentStoreStub{assessment: &models.Assessment{
		ID:          "assess-1",
		JobID:       "job-1",
		CandidateID: "cand-1",
		Type:        models.AssessmentTypeCoding,
	}}
	svc := NewConnectorService(connectorFixture(conn), invites, assessments, newHistoryStub(), nil)

	out, err := svc.SendInvite(context.Background(), "codepad", dto.SendInviteRequest{AssessmentID: "assess-1"})
	require.NoError(t, err)
	require.Equal(t, "ext-9", out.ExternalID)
	require.Equal(t, url, out.InviteURL)
	require.Equal(t, "PENDING", out.Status)

	require.Len(t, conn.sentInvites, 1)
	require.Equal(t, "Dana Reyes", conn.sentInvites[0].CandidateName)
	require.Equal(t, "Staff Engineer", conn.sentInvites[0].JobTitle)

	require.Len(t, invites.created, 1)
	require.Equal(t, models.AssessmentStatusPending, invites.created[0].Status)
	require.Equal(t, "ext-9", invites.created[0].ExternalID)
	require.NotNil(t, invites.created[0].InviteURL)
	require.Equal(t, url, *invites.created[0].InviteURL)
}

func TestConnectorServiceSendInviteUnsupportedType(t *testing.T) {
	conn := &connectorStub{name: "codepad"}
	assessments := &assessmentStoreStub{assessment: &models.Assessment{
		ID: "assess-1", JobID: "job-1", CandidateID: "cand-1", Type: models.AssessmentTypePersonality,
	}}
	svc := NewConnectorService(connectorFixture(conn), &inviteStoreStub{}, assessments, newHistoryStub(), nil)

	_, err := svc.SendInvite(context.Background(), "codepad", dto.SendInviteRequest{AssessmentID: "assess-1"})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
	require.Empty(t, conn.sentInvites)
}

func TestConnectorServicePollResults(t *testing.T) {
	conn := &connectorStub{
		name:   "codepad",
		parsed: &models.ExternalAssessmentResult{Status: models.AssessmentStatusInProgress},
	}
	invites := &inviteStoreStub{
		tracked: &models.ExternalAssessmentResult{AssessmentID: "a-1", ExternalID: "ext-9", Status: models.AssessmentStatusPending},
	}
	svc := NewConnectorService(connectorFixture(conn), invites, &assessmentStoreStub{}, newHistoryStub(), nil)

	_, err := svc.PollResults(context.Background(), "codepad", "ext-9")
	require.NoError(t, err)
	require.Len(t, invites.applied, 1)
	require.Equal(t, models.AssessmentStatusInProgress, invites.applied[0].Status)
}

func TestConnectorServicePollResultsTerminalRowUntouched(t *testing.T) {
	conn := &connectorStub{
		name:   "codepad",
		parsed: &models.ExternalAssessmentResult{Status: models.AssessmentStatusInProgress},
	}
	invites := &inviteStoreStub{
		tracked: &models.ExternalAssessmentResult{AssessmentID: "a-1", ExternalID: "ext-9", Status: models.AssessmentStatusCompleted},
	}
	svc := NewConnectorService(connectorFixture(conn), invites, &assessmentStoreStub{}, newHistoryStub(), nil)

	out, err := svc.PollResults(context.Background(), "codepad", "ext-9")
	require.NoError(t, err)
	require.Empty(t, invites.applied)
	require.Equal(t, models.AssessmentStatusCompleted, out.Status)
}

func TestConnectorServiceCancelInvite(t *testing.T) {
	conn := &cancelableStub{connectorStub: connectorStub{name: "codepad"}}
	invites := &inviteStoreStub{
		tracked: &models.ExternalAssessmentResult{AssessmentID: "a-1", ExternalID: "ext-9", Status: models.AssessmentStatusPending},
	}
	svc := NewConnectorService(connectorFixture(conn), invites, &assessmentStoreStub{}, newHistoryStub(), nil)

	err := svc.CancelInvite(context.Background(), "codepad", "ext-9")
	require.NoError(t, err)
	require.Equal(t, []string{"ext-9"}, conn.cancelled)
	require.Len(t, invites.applied, 1)
	require.Equal(t, models.AssessmentStatusCancelled, invites.applied[0].Status)
}

func TestConnectorServiceCancelInviteNotSupported(t *testing.T) {
	conn := &connectorStub{name: "webhook"}
	svc := NewConnectorService(connectorFixture(conn), &inviteStoreStub{}, &assessmentStoreStub{}, newHistoryStub(), nil)

	err := svc.CancelInvite(context.Background(), "webhook", "ext-9")
	require.True(t, appErrors.Is(err, appErrors.ErrNotSupported))
}

func TestConnectorServiceCancelInviteTerminalConflict(t *testing.T) {
	conn := &cancelableStub{connectorStub: connectorStub{name: "codepad"}}
	invites := &inviteStoreStub{
		tracked: &models.ExternalAssessmentResult{AssessmentID: "a-1", ExternalID: "ext-9", Status: models.AssessmentStatusExpired},
	}
	svc := NewConnectorService(connectorFixture(conn), invites, &assessmentStoreStub{}, newHistoryStub(), nil)

	err := svc.CancelInvite(context.Background(), "codepad", "ext-9")
	require.True(t, appErrors.Is(err, appErrors.ErrConflict))
	require.Empty(t, conn.cancelled)
}
