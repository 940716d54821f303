package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TwilioConfig holds the Conversations transport credentials.
type TwilioConfig struct {
	AccountSID             string `yaml:"account_sid" envconfig:"TWILIO_ACCOUNT_SID"`
	APIKey                 string `yaml:"api_key" envconfig:"TWILIO_API_KEY"`
	APISecret              string `yaml:"api_secret" envconfig:"TWILIO_API_SECRET"`
	ConversationServiceSID string `yaml:"conversation_service_sid" envconfig:"TWILIO_CONVERSATION_SERVICE_SID"`
	// SystemAuthor is the author identity used for outbound messages and
	// filtered from inbound polling.
	SystemAuthor string `yaml:"system_author" envconfig:"TWILIO_SYSTEM_AUTHOR"`
}

// BotConfig tunes the polling dispatcher and the quiz engine.
type BotConfig struct {
	PollIntervalSeconds    int    `yaml:"poll_interval_seconds" envconfig:"BOT_POLL_INTERVAL_SECONDS"`
	VocabularySize         int    `yaml:"vocabulary_size" envconfig:"BOT_VOCABULARY_SIZE"`
	RandomWordAttempts     int    `yaml:"random_word_attempts" envconfig:"BOT_RANDOM_WORD_ATTEMPTS"`
	UpstreamTimeoutSeconds int    `yaml:"upstream_timeout_seconds" envconfig:"BOT_UPSTREAM_TIMEOUT_SECONDS"`
	Workers                int    `yaml:"workers" envconfig:"BOT_WORKERS"`
	BaseLanguage           string `yaml:"base_language" envconfig:"BOT_BASE_LANGUAGE"`
}

// OpenAIConfig selects the word-generation model.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"OPENAI_BASE_URL"`
	Model   string `yaml:"model" envconfig:"OPENAI_MODEL"`
}

// DeepLConfig selects the translation endpoint.
type DeepLConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"DEEPL_API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"DEEPL_BASE_URL"`
}

// ProvidersConfig groups the content provider credentials.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	DeepL  DeepLConfig  `yaml:"deepl"`
}

// StoreConfig points the bot at the persistence API.
type StoreConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"STORE_BASE_URL"`
}

// APIConfig configures the persistence API listener.
type APIConfig struct {
	Listen string `yaml:"listen" envconfig:"API_LISTEN"`
	Port   int    `yaml:"port" envconfig:"API_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	File        string `yaml:"file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// Config aggregates the configuration shared by both binaries.
type Config struct {
	Twilio    TwilioConfig    `yaml:"twilio"`
	Bot       BotConfig       `yaml:"bot"`
	Providers ProvidersConfig `yaml:"providers"`
	Store     StoreConfig     `yaml:"store"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	Normalize(&cfg)
	return &cfg, nil
}

// Normalize fills defaults for optional fields.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.Twilio.SystemAuthor) == "" {
		cfg.Twilio.SystemAuthor = "memomate"
	}
	if cfg.Bot.PollIntervalSeconds <= 0 {
		cfg.Bot.PollIntervalSeconds = 3
	}
	if cfg.Bot.VocabularySize <= 0 {
		cfg.Bot.VocabularySize = 10
	}
	if cfg.Bot.RandomWordAttempts <= 0 {
		cfg.Bot.RandomWordAttempts = 10
	}
	if cfg.Bot.UpstreamTimeoutSeconds <= 0 {
		cfg.Bot.UpstreamTimeoutSeconds = 10
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if strings.TrimSpace(cfg.Bot.BaseLanguage) == "" {
		cfg.Bot.BaseLanguage = "DE"
	}
	if cfg.Providers.OpenAI.Model == "" {
		cfg.Providers.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = "0.0.0.0"
	}
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8000
	}
}

// ValidateBot checks the fields the bot binary cannot run without.
func (c *Config) ValidateBot() error {
	var missing []string
	if strings.TrimSpace(c.Twilio.AccountSID) == "" {
		missing = append(missing, "twilio.account_sid")
	}
	if strings.TrimSpace(c.Twilio.APIKey) == "" {
		missing = append(missing, "twilio.api_key")
	}
	if strings.TrimSpace(c.Twilio.APISecret) == "" {
		missing = append(missing, "twilio.api_secret")
	}
	if strings.TrimSpace(c.Twilio.ConversationServiceSID) == "" {
		missing = append(missing, "twilio.conversation_service_sid")
	}
	if strings.TrimSpace(c.Providers.OpenAI.APIKey) == "" {
		missing = append(missing, "providers.openai.api_key")
	}
	if strings.TrimSpace(c.Providers.DeepL.APIKey) == "" {
		missing = append(missing, "providers.deepl.api_key")
	}
	if strings.TrimSpace(c.Store.BaseURL) == "" {
		missing = append(missing, "store.base_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
