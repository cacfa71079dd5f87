package ai

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

// SettingsResolver returns the active provider settings. Implementations
// cache briefly; the gateway never reads global state (the resolved value is
// threaded through each call).
type SettingsResolver interface {
	ActiveSettings(ctx context.Context) (*models.ProviderSettings, error)
}

// SecretDecrypter is the capability exposed by the secrets vault.
type SecretDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// CallObserver receives provider call telemetry.
type CallObserver interface {
	ObserveProviderCall(provider string, duration time.Duration, success bool)
}

// GatewayConfig tunes retry and timeout behaviour.
type GatewayConfig struct {
	RequestTimeout   time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	DefaultMaxTokens int
}

// Gateway is the uniform call interface over heterogeneous text-generation
// back-ends. It resolves the single active provider per request, decrypts
// its credential, issues the call with bounded retries and parses the
// response into the caller's schema.
type Gateway struct {
	resolver SettingsResolver
	vault    SecretDecrypter
	client   *http.Client
	cfg      GatewayConfig
	logger   *zap.Logger
	observer CallObserver
}

// NewGateway builds a Gateway.
func NewGateway(resolver SettingsResolver, vault SecretDecrypter, cfg GatewayConfig, logger *zap.Logger, observer CallObserver) *Gateway {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 45 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.DefaultMaxTokens <= 0 {
		cfg.DefaultMaxTokens = 2048
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		resolver: resolver,
		vault:    vault,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		cfg:      cfg,
		logger:   logger,
		observer: observer,
	}
}

// Provenance identifies the provider and model that served a call.
type Provenance struct {
	Provider string
	Model    string
}

// GenerateInto issues the prompt and decodes the response into dest.
// Configuration problems surface as CONFIGURATION_ERROR and are never
// retried; call and parse failures surface as PROVIDER_ERROR, leaving the
// fallback decision to the caller.
func (g *Gateway) GenerateInto(ctx context.Context, prompt string, maxTokens int, dest interface{}) (Provenance, error) {
	provider, err := g.provider(ctx)
	if err != nil {
		return Provenance{}, err
	}
	prov := Provenance{Provider: string(provider.Name()), Model: provider.Model()}

	text, err := g.generate(ctx, provider, prompt, maxTokens)
	if err != nil {
		return prov, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "provider call failed")
	}
	if err := decodeStrict(text, dest); err != nil {
		g.logger.Warn("provider returned non-conforming output",
			zap.String("provider", prov.Provider),
			zap.Error(err))
		return prov, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "provider returned non-conforming output")
	}
	return prov, nil
}

// GenerateText issues the prompt and returns the raw textual response.
// Used by the tab-summary path where plain text is the contract.
func (g *Gateway) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, Provenance, error) {
	provider, err := g.provider(ctx)
	if err != nil {
		return "", Provenance{}, err
	}
	prov := Provenance{Provider: string(provider.Name()), Model: provider.Model()}

	text, err := g.generate(ctx, provider, prompt, maxTokens)
	if err != nil {
		return "", prov, appErrors.Wrap(err, appErrors.ErrProvider.Code, appErrors.ErrProvider.Status, "provider call failed")
	}
	return text, prov, nil
}

func (g *Gateway) provider(ctx context.Context) (Provider, error) {
	settings, err := g.resolver.ActiveSettings(ctx)
	if err != nil || settings == nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "no active ai provider configured")
	}
	if settings.APIKeyCiphertext == "" {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "active provider has no credential")
	}
	apiKey, err := g.vault.Decrypt(settings.APIKeyCiphertext)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "provider credential cannot be decrypted")
	}
	provider, err := NewProvider(ctx, *settings, apiKey, g.client)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "provider construction failed")
	}
	return provider, nil
}

func (g *Gateway) generate(ctx context.Context, provider Provider, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = g.cfg.DefaultMaxTokens
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		start := time.Now()
		text, err := provider.Generate(ctx, prompt, maxTokens)
		if g.observer != nil {
			g.observer.ObserveProviderCall(string(provider.Name()), time.Since(start), err == nil)
		}
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(err) || attempt >= g.cfg.MaxRetries {
			break
		}
		delay := g.cfg.RetryBaseDelay * time.Duration(1<<attempt)
		g.logger.Warn("provider call failed, retrying",
			zap.String("provider", string(provider.Name())),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}
