package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"kb-assistant/internal/knowledge"
	"kb-assistant/internal/usecase"
)

// EnvAPIKey is the environment variable holding the provider credential.
const EnvAPIKey = "OPENAI_API_KEY"

// EnvConfigFile optionally names a YAML file layered under the environment.
const EnvConfigFile = "KB_ASSISTANT_CONFIG"

// Config is the process-wide startup configuration. It is built once in main
// and passed by value to constructors.
type Config struct {
	OpenAIAPIKey      string           `mapstructure:"openai_api_key"`
	OpenAIBaseURL     string           `mapstructure:"openai_base_url"`
	Model             string           `mapstructure:"model"`
	MaxTokens         int              `mapstructure:"max_tokens"`
	Temperature       float64          `mapstructure:"temperature"`
	KnowledgeBaseFile string           `mapstructure:"knowledge_base_file"`
	Language          usecase.Language `mapstructure:"language"`
	ListenAddress     string           `mapstructure:"listen_address"`
	ProviderTimeout   time.Duration    `mapstructure:"provider_timeout"`
	LogLevel          string           `mapstructure:"log_level"`
}

var envBindings = map[string]string{
	"openai_api_key":      EnvAPIKey,
	"openai_base_url":     "KB_ASSISTANT_OPENAI_BASE_URL",
	"model":               "KB_ASSISTANT_MODEL",
	"max_tokens":          "KB_ASSISTANT_MAX_TOKENS",
	"temperature":         "KB_ASSISTANT_TEMPERATURE",
	"knowledge_base_file": "KB_ASSISTANT_KNOWLEDGE_BASE_FILE",
	"language":            "KB_ASSISTANT_LANGUAGE",
	"listen_address":      "KB_ASSISTANT_LISTEN_ADDRESS",
	"provider_timeout":    "KB_ASSISTANT_PROVIDER_TIMEOUT",
	"log_level":           "KB_ASSISTANT_LOG_LEVEL",
}

// Load reads configuration from the environment, layered over configFile when
// it is non-empty. A missing or empty credential is an error.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if configFile = strings.TrimSpace(configFile); configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("model", usecase.DefaultModel)
	v.SetDefault("max_tokens", usecase.DefaultMaxTokens)
	v.SetDefault("temperature", usecase.DefaultTemperature)
	v.SetDefault("knowledge_base_file", knowledge.DefaultPath)
	v.SetDefault("language", string(usecase.DefaultLanguage))
	v.SetDefault("listen_address", ":8000")
	v.SetDefault("provider_timeout", "60s")
	v.SetDefault("log_level", "info")
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	if cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("config: the %s environment variable is not set", EnvAPIKey)
	}
	if cfg.MaxTokens <= 0 {
		return Config{}, errors.New("config: max_tokens must be positive")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return Config{}, errors.New("config: temperature must be between 0 and 2")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return Config{}, errors.New("config: model must not be empty")
	}
	if strings.TrimSpace(cfg.KnowledgeBaseFile) == "" {
		return Config{}, errors.New("config: knowledge_base_file must not be empty")
	}
	lang, err := usecase.ParseLanguage(string(cfg.Language))
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.Language = lang
	if cfg.ProviderTimeout <= 0 {
		return Config{}, errors.New("config: provider_timeout must be positive")
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLogLevel maps the configured level name onto slog.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q: %w", s, err)
	}
	return level, nil
}
