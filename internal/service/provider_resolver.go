package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

const providerSettingsCacheKey = "ai:provider:active"

type providerSettingsReader interface {
	GetActive(ctx context.Context) (*models.ProviderSettings, error)
}

type settingsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ProviderResolver resolves the active AI provider settings per request.
// The row is read-mostly, so it is cached briefly; the settings subsystem
// deletes the cache key on write.
type ProviderResolver struct {
	repo   providerSettingsReader
	cache  settingsCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewProviderResolver constructs the resolver.
func NewProviderResolver(repo providerSettingsReader, cache settingsCache, ttl time.Duration, logger *zap.Logger) *ProviderResolver {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderResolver{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ActiveSettings implements ai.SettingsResolver.
func (r *ProviderResolver) ActiveSettings(ctx context.Context) (*models.ProviderSettings, error) {
	if r.cache != nil {
		var cached models.ProviderSettings
		if err := r.cache.Get(ctx, providerSettingsCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			r.logger.Warn("provider settings cache read failed", zap.Error(err))
		}
	}

	settings, err := r.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, providerSettingsCacheKey, settings, r.ttl); err != nil {
			r.logger.Warn("provider settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}
