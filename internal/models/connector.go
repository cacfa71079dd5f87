package models

import "time"

// ConnectorConfig is the per-connector credential bundle. Owned by the
// settings subsystem; connectors consume it read-only. Secrets are stored
// encrypted and decrypted through the vault at initialize time.
type ConnectorConfig struct {
	ConnectorName           string    `db:"connector_name" json:"connector_name"`
	APIKeyCiphertext        string    `db:"api_key_ciphertext" json:"-"`
	WebhookSecretCiphertext string    `db:"webhook_secret_ciphertext" json:"-"`
	BaseURL                 string    `db:"base_url" json:"base_url"`
	OrgID                   string    `db:"org_id" json:"org_id"`
	Enabled                 bool      `db:"enabled" json:"enabled"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}
