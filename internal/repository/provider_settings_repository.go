package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

// ProviderSettingsRepository reads the stored AI provider configuration.
// Writes belong to the settings subsystem, which invalidates the cache.
type ProviderSettingsRepository struct {
	db *sqlx.DB
}

// NewProviderSettingsRepository constructs the repository.
func NewProviderSettingsRepository(db *sqlx.DB) *ProviderSettingsRepository {
	return &ProviderSettingsRepository{db: db}
}

// GetActive returns the single active provider row.
func (r *ProviderSettingsRepository) GetActive(ctx context.Context) (*models.ProviderSettings, error) {
	const query = `SELECT provider, model, api_key_ciphertext, base_url, is_active, updated_at
FROM ai_provider_settings WHERE is_active = TRUE LIMIT 1`
	var settings models.ProviderSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, "no active ai provider configured")
		}
		return nil, fmt.Errorf("get active provider settings: %w", err)
	}
	return &settings, nil
}
