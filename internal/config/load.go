package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. DREAMTRACER_SERVER_PORT.
const EnvPrefix = "DREAMTRACER"

var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"auth.bcrypt_cost":                    10,
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"llm.model_name":                      "gemini-2.0-flash",
	"llm.embedding_model":                 "text-embedding-004",
	"llm.max_retries":                     3,
	"llm.retry_delay_seconds":             2,
	"task.worker_count":                   2,
	"task.queue_size":                     100,
	"task.stuck_task_age_minutes":         30,
	"analysis.history_limit":              50,
	"analysis.default_culture":            "korean",
	"analysis.concurrent":                 false,
	"analysis.maintenance_interval_hours": 24,
	"analysis.retention_days":             365,
	"limits.analyze_per_minute":           10.0,
	"limits.analyze_burst":                3,
	"subscription.free_monthly_analyses":  5,
	"subscription.plus_price_krw":         5900,
}

// Keys without defaults still need explicit env bindings for Unmarshal.
var envOnlyKeys = []string{"database.url", "auth.jwt_secret", "llm.gemini_api_key"}

// Load reads configuration from an optional config.yaml in the working
// directory and from DREAMTRACER_ environment variables, which take precedence.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory for config.yaml.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
