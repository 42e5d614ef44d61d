// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig holds settings for the TMDB catalog client.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the TMDB v3 API key.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// BaseURL overrides the TMDB API root (tests, proxies).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Language is the TMDB response language (default "ru-RU").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// RequestsPerSecond caps outbound catalog requests (default 20).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
}

// LLMProvider selects the language-model backend.
type LLMProvider string

const (
	ProviderOpenRouter LLMProvider = "openrouter"
	ProviderAnthropic  LLMProvider = "anthropic"
)

// LLMConfig holds settings for the language-model client.
type LLMConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the backend: openrouter or anthropic.
	Provider LLMProvider `json:"provider" yaml:"provider" mapstructure:"provider" validate:"oneof=openrouter anthropic"`

	// APIKey is the authentication key for the provider.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// Model is the model identifier (e.g. "mistralai/mistral-7b-instruct").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Temperature is the sampling temperature (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens bounds the generated explanation (default 600).
	MaxTokens int64 `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
}

// MatchConfig holds the matcher's ranking settings.
type MatchConfig struct {
	// Limit is the number of candidates returned per reply (default 5).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit" validate:"gte=0"`

	// MinScore drops candidates scoring below it (default 0.25).
	MinScore float64 `json:"min_score" yaml:"min_score" mapstructure:"min_score" validate:"gte=0,lte=1"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console"`
}

// Config groups the settings of every component.
type Config struct {
	// TelegramToken authenticates the chat transport.
	TelegramToken string `json:"-" yaml:"-" mapstructure:"telegram_token"`

	// DatabasePath is the SQLite file holding movies and user state.
	DatabasePath string `json:"database_path" yaml:"database_path" mapstructure:"database_path"`

	// MetricsAddr, when set, serves Prometheus metrics on that address.
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty" mapstructure:"metrics_addr"`

	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	LLM     LLMConfig     `json:"llm" yaml:"llm" mapstructure:"llm"`
	Match   MatchConfig   `json:"match" yaml:"match" mapstructure:"match"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
