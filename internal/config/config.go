package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth" validate:"required"`
	LLM          LLMConfig          `mapstructure:"llm" validate:"required"`
	Task         TaskConfig         `mapstructure:"task" validate:"required"`
	Analysis     AnalysisConfig     `mapstructure:"analysis" validate:"required"`
	Limits       LimitsConfig       `mapstructure:"limits" validate:"required"`
	Subscription SubscriptionConfig `mapstructure:"subscription" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"gt=0,gtfield=TokenLifetimeMinutes"`
}

// LLMConfig contains Gemini settings. An empty API key disables the
// text-completion and embedding oracles; heuristic fallbacks are used instead.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	EmbeddingModel    string `mapstructure:"embedding_model" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize           int `mapstructure:"queue_size" validate:"gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"gt=0"`
}

// StuckTaskAge returns the stuck task threshold as a duration.
func (c TaskConfig) StuckTaskAge() time.Duration {
	return time.Duration(c.StuckTaskAgeMinutes) * time.Minute
}

// AnalysisConfig contains analysis pipeline and maintenance settings.
type AnalysisConfig struct {
	HistoryLimit             int    `mapstructure:"history_limit" validate:"gt=0"`
	DefaultCulture           string `mapstructure:"default_culture" validate:"oneof=korean western eastern"`
	Concurrent               bool   `mapstructure:"concurrent"`
	MaintenanceIntervalHours int    `mapstructure:"maintenance_interval_hours" validate:"gt=0"`
	RetentionDays            int    `mapstructure:"retention_days" validate:"gt=0"`
}

// LimitsConfig contains per-user request throttling for analysis endpoints.
type LimitsConfig struct {
	AnalyzePerMinute float64 `mapstructure:"analyze_per_minute" validate:"gt=0"`
	AnalyzeBurst     int     `mapstructure:"analyze_burst" validate:"gt=0"`
}

// SubscriptionConfig contains plan quotas.
type SubscriptionConfig struct {
	FreeMonthlyAnalyses int `mapstructure:"free_monthly_analyses" validate:"gt=0"`
	PlusPriceKRW        int `mapstructure:"plus_price_krw" validate:"gte=0"`
}
