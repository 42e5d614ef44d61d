// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds a types.Config from viper (environment variables,
// optional config file) with a fallback to the .secrets/ directory, and
// validates that the settings a command needs are present.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// EnvPrefix prefixes the optional settings (e.g. MOVIE_ASSISTANT_LLM_MODEL).
const EnvPrefix = "MOVIE_ASSISTANT"

// Requirement names a group of settings a command cannot run without.
type Requirement int

const (
	RequireDatabase Requirement = iota
	RequireCatalog
	RequireLLM
	RequireBot
)

// requiredKey describes one mandatory setting.
type requiredKey struct {
	key    string
	env    string
	secret string
	get    func(*types.Config) *string
}

var requiredKeys = map[Requirement]requiredKey{
	RequireBot: {
		key: "telegram_token", env: "TELEGRAM_TOKEN", secret: "telegram-token",
		get: func(c *types.Config) *string { return &c.TelegramToken },
	},
	RequireLLM: {
		key: "llm.api_key", env: "OPENROUTER_API_KEY", secret: "llm-api-key",
		get: func(c *types.Config) *string { return &c.LLM.APIKey },
	},
	RequireCatalog: {
		key: "catalog.api_key", env: "TMDB_API_KEY", secret: "tmdb-api-key",
		get: func(c *types.Config) *string { return &c.Catalog.APIKey },
	},
	RequireDatabase: {
		key: "database_path", env: "DATABASE_PATH",
		get: func(c *types.Config) *string { return &c.DatabasePath },
	},
}

// Everything lists the requirements of the chat bot.
var Everything = []Requirement{RequireBot, RequireLLM, RequireCatalog, RequireDatabase}

var validate = validator.New()

// Bind registers defaults and environment bindings on v. The four core
// settings use their conventional unprefixed variable names; every other key
// is read from EnvPrefix_<KEY> with dots replaced by underscores.
func Bind(v *viper.Viper) {
	v.SetDefault("metrics_addr", "")

	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("catalog.user_agent", "movie-assistant/0.1")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.language", "ru-RU")
	v.SetDefault("catalog.requests_per_second", 20.0)

	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.user_agent", "movie-assistant/0.1")
	v.SetDefault("llm.provider", string(types.ProviderOpenRouter))
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 600)

	v.SetDefault("match.limit", 5)
	v.SetDefault("match.min_score", 0.25)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// BindEnv only fails when called without a key.
	_ = v.BindEnv("telegram_token", "TELEGRAM_TOKEN")
	_ = v.BindEnv("database_path", "DATABASE_PATH")
	_ = v.BindEnv("catalog.api_key", "TMDB_API_KEY")
	_ = v.BindEnv("llm.api_key", "OPENROUTER_API_KEY", "LLM_API_KEY")
}

// Load unmarshals v into a Config, fills empty credentials from secrets and
// checks every requirement in need. Any problem is a *types.ConfigurationError.
// Load performs no network I/O.
func Load(v *viper.Viper, secrets map[string]string, need ...Requirement) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, &types.ConfigurationError{Key: "config", Reason: err.Error()}
	}

	for _, rk := range requiredKeys {
		if rk.secret == "" {
			continue
		}
		if p := rk.get(&cfg); strings.TrimSpace(*p) == "" {
			*p = secrets[rk.secret]
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return types.Config{}, fromValidation(err)
	}

	for _, req := range need {
		rk, ok := requiredKeys[req]
		if !ok {
			return types.Config{}, fmt.Errorf("unknown requirement %d", req)
		}
		if err := validate.Var(strings.TrimSpace(*rk.get(&cfg)), "required"); err != nil {
			return types.Config{}, &types.ConfigurationError{Key: rk.key, Env: rk.env, Reason: "is required"}
		}
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel(cfg.LLM.Provider)
	}
	return cfg, nil
}

func defaultModel(p types.LLMProvider) string {
	if p == types.ProviderAnthropic {
		return "claude-3-5-haiku-latest"
	}
	return "mistralai/mistral-7b-instruct"
}

func fromValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &types.ConfigurationError{Key: "config", Reason: err.Error()}
	}
	fe := verrs[0]
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	reason := fmt.Sprintf("fails %q validation", fe.Tag())
	if fe.Param() != "" {
		reason = fmt.Sprintf("fails %q validation (%s)", fe.Tag(), fe.Param())
	}
	return &types.ConfigurationError{Key: key, Reason: reason}
}
