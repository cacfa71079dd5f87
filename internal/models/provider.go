package models

import "time"

// ProviderName identifies a text-generation back-end.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGemini    ProviderName = "gemini"
)

// ProviderSettings is the stored configuration for an AI provider. Exactly
// one row has is_active = true; the gateway resolves it per request.
type ProviderSettings struct {
	Provider         ProviderName `db:"provider" json:"provider"`
	Model            string       `db:"model" json:"model"`
	APIKeyCiphertext string       `db:"api_key_ciphertext" json:"-"`
	BaseURL          string       `db:"base_url" json:"base_url,omitempty"`
	IsActive         bool         `db:"is_active" json:"is_active"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}
