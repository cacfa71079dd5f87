package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

// Provider is one text-generation back-end. Implementations issue a single
// prompt and return the raw textual response.
type Provider interface {
	Name() models.ProviderName
	Model() string
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// apiError marks a failed provider call. StatusCode is zero for transport
// failures.
type apiError struct {
	provider   models.ProviderName
	statusCode int
	err        error
}

func (e *apiError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("%s http %d: %v", e.provider, e.statusCode, e.err)
	}
	return fmt.Sprintf("%s call: %v", e.provider, e.err)
}

func (e *apiError) Unwrap() error { return e.err }

// retryable reports whether the failure is transient: transport errors and
// 5xx responses. 4xx and validation failures are never retried.
func retryable(err error) bool {
	if e, ok := err.(*apiError); ok {
		return e.statusCode == 0 || e.statusCode >= 500
	}
	return false
}

// NewProvider selects the provider variant for the resolved settings.
// Selection happens here, once, at construction; call sites only see the
// Provider contract.
func NewProvider(ctx context.Context, settings models.ProviderSettings, apiKey string, httpClient *http.Client) (Provider, error) {
	switch settings.Provider {
	case models.ProviderOpenAI:
		return newOpenAIProvider(settings.Model, apiKey, settings.BaseURL, httpClient), nil
	case models.ProviderAnthropic:
		return newAnthropicProvider(settings.Model, apiKey, settings.BaseURL, httpClient), nil
	case models.ProviderGemini:
		return newGeminiProvider(ctx, settings.Model, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider %q", settings.Provider)
	}
}
