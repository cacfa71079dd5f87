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

// ConnectorConfigRepository reads per-connector credential bundles. Owned
// by the settings subsystem; this service only consumes them.
type ConnectorConfigRepository struct {
	db *sqlx.DB
}

// NewConnectorConfigRepository constructs the repository.
func NewConnectorConfigRepository(db *sqlx.DB) *ConnectorConfigRepository {
	return &ConnectorConfigRepository{db: db}
}

const connectorConfigColumns = `connector_name, api_key_ciphertext, webhook_secret_ciphertext, base_url, org_id, enabled, updated_at`

// Get fetches one connector's configuration.
func (r *ConnectorConfigRepository) Get(ctx context.Context, name string) (*models.ConnectorConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM connector_configs WHERE connector_name = $1`, connectorConfigColumns)
	var cfg models.ConnectorConfig
	if err := r.db.GetContext(ctx, &cfg, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "connector configuration not found")
		}
		return nil, fmt.Errorf("get connector config: %w", err)
	}
	return &cfg, nil
}

// List returns all stored connector configurations.
func (r *ConnectorConfigRepository) List(ctx context.Context) ([]models.ConnectorConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM connector_configs ORDER BY connector_name ASC`, connectorConfigColumns)
	var configs []models.ConnectorConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list connector configs: %w", err)
	}
	return configs, nil
}
