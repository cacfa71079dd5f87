package connector

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

type fakeConnector struct {
	name       string
	types      []models.AssessmentType
	configured bool
}

func (f *fakeConnector) Name() string                           { return f.name }
func (f *fakeConnector) SupportedTypes() []models.AssessmentType { return f.types }
func (f *fakeConnector) Initialize(models.ConnectorConfig) error { return nil }
func (f *fakeConnector) IsConfigured() bool                      { return f.configured }
func (f *fakeConnector) TestConnection(context.Context) ConnectionStatus {
	return ConnectionStatus{OK: true}
}
func (f *fakeConnector) SendInvite(context.Context, AssessmentContext) (*InviteResult, error) {
	return &InviteResult{ExternalID: "ext-1"}, nil
}
func (f *fakeConnector) GetResults(context.Context, string) (*models.ExternalAssessmentResult, error) {
	return nil, nil
}
func (f *fakeConnector) ValidateWebhook([]byte, http.Header) (*WebhookEvent, error) {
	return &WebhookEvent{}, nil
}
func (f *fakeConnector) ParseWebhookPayload([]byte) *models.ExternalAssessmentResult {
	return nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeConnector{name: "alpha"}))
	require.NoError(t, registry.Register(&fakeConnector{name: "beta"}))

	require.NotNil(t, registry.Get("alpha"))
	require.Nil(t, registry.Get("missing"))
	require.Len(t, registry.All(), 2)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeConnector{name: "alpha"}))
	require.Error(t, registry.Register(&fakeConnector{name: "alpha"}))
	require.Error(t, registry.Register(&fakeConnector{name: ""}))
}

func TestRegistryConfiguredAndSupportingType(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeConnector{
		name:       "coding",
		types:      []models.AssessmentType{models.AssessmentTypeCoding},
		configured: true,
	}))
	require.NoError(t, registry.Register(&fakeConnector{
		name:  "dormant",
		types: []models.AssessmentType{models.AssessmentTypeCoding},
	}))
	require.NoError(t, registry.Register(&fakeConnector{
		name:       "psych",
		types:      []models.AssessmentType{models.AssessmentTypePersonality},
		configured: true,
	}))

	configured := registry.Configured()
	require.Len(t, configured, 2)

	coding := registry.SupportingType(models.AssessmentTypeCoding)
	require.Len(t, coding, 1)
	require.Equal(t, "coding", coding[0].Name())
}
