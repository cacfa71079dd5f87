package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Vault    VaultConfig
	AI       AIConfig
	Webhook  WebhookConfig
	Jobs     JobsConfig
	Analysis AnalysisConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// VaultConfig locates the master key used to decrypt stored credentials.
// KeyFile takes precedence over Key when both are set.
type VaultConfig struct {
	Key     string
	KeyFile string
}

// AIConfig tunes provider gateway behaviour.
type AIConfig struct {
	RequestTimeout   time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	SettingsCacheTTL time.Duration
	DefaultMaxTokens int
}

// WebhookConfig tunes the ingestion path.
type WebhookConfig struct {
	MaxBodyBytes int64
	DedupeTTL    time.Duration
}

// JobsConfig sizes the background analysis queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// AnalysisConfig gates the versioning engine endpoints.
type AnalysisConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Vault = VaultConfig{
		Key:     v.GetString("VAULT_MASTER_KEY"),
		KeyFile: v.GetString("VAULT_MASTER_KEY_FILE"),
	}

	cfg.AI = AIConfig{
		RequestTimeout:   parseDuration(v.GetString("AI_REQUEST_TIMEOUT"), 45*time.Second),
		MaxRetries:       v.GetInt("AI_MAX_RETRIES"),
		RetryBaseDelay:   parseDuration(v.GetString("AI_RETRY_BASE_DELAY"), 500*time.Millisecond),
		SettingsCacheTTL: parseDuration(v.GetString("AI_SETTINGS_CACHE_TTL"), time.Minute),
		DefaultMaxTokens: v.GetInt("AI_DEFAULT_MAX_TOKENS"),
	}

	cfg.Webhook = WebhookConfig{
		MaxBodyBytes: v.GetInt64("WEBHOOK_MAX_BODY_BYTES"),
		DedupeTTL:    parseDuration(v.GetString("WEBHOOK_DEDUPE_TTL"), 24*time.Hour),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Analysis = AnalysisConfig{
		Enabled: v.GetBool("ENABLE_ANALYSIS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "talent_eval")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("VAULT_MASTER_KEY", "")
	v.SetDefault("VAULT_MASTER_KEY_FILE", "")

	v.SetDefault("AI_REQUEST_TIMEOUT", "45s")
	v.SetDefault("AI_MAX_RETRIES", 2)
	v.SetDefault("AI_RETRY_BASE_DELAY", "500ms")
	v.SetDefault("AI_SETTINGS_CACHE_TTL", "1m")
	v.SetDefault("AI_DEFAULT_MAX_TOKENS", 2048)

	v.SetDefault("WEBHOOK_MAX_BODY_BYTES", 1024*1024)
	v.SetDefault("WEBHOOK_DEDUPE_TTL", "24h")

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER_SIZE", 16)
	v.SetDefault("JOBS_MAX_RETRIES", 3)
	v.SetDefault("JOBS_RETRY_DELAY", "5s")

	v.SetDefault("ENABLE_ANALYSIS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
