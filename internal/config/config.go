package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfigMissing is returned when a required setting is absent.
var ErrConfigMissing = errors.New("required configuration missing")

// Mail provider identifiers
const (
	MailProviderSES  = "ses"
	MailProviderSMTP = "smtp"
)

// Config holds all application configuration.
// It is built once at process entry and passed down explicitly.
type Config struct {
	// Generation API
	AnthropicAPIKey      string
	AnthropicBaseURL     string
	ModelID              string
	MaxTokens            int
	ThinkingBudgetTokens int
	WebSearchEnabled     bool
	WebSearchMaxUses     int

	// Content resources
	PromptFile           string
	NarrationPhrasesFile string // empty = embedded defaults

	// Addressing
	RecipientEmail string
	SenderEmail    string

	Mail MailConfig

	// Scheduling (serve mode)
	ScheduleCron     string
	ScheduleTimezone string
	RunTimeout       time.Duration

	Port           string
	TriggerAPIKey  string // optional X-API-Key for POST /api/briefing/run
	PushgatewayURL string
	Environment    string // "production" switches logging to JSON
}

// MailConfig selects and configures the outbound mail transport
type MailConfig struct {
	Provider string // "ses" or "smtp"

	AWSRegion          string
	SESEndpoint        string // optional endpoint override (e.g. localstack)
	SESAccessKeyID     string // optional, default credential chain otherwise
	SESSecretAccessKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// requiredKeys are validated before any client is constructed
var requiredKeys = []struct {
	key string
	get func(*Config) string
}{
	{"ANTHROPIC_API_KEY", func(c *Config) string { return c.AnthropicAPIKey }},
	{"RECIPIENT_EMAIL", func(c *Config) string { return c.RecipientEmail }},
	{"SENDER_EMAIL", func(c *Config) string { return c.SenderEmail }},
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("anthropic_base_url", "https://api.anthropic.com")
	v.SetDefault("model_id", "claude-sonnet-4-5-20250929")
	v.SetDefault("max_tokens", 16000)
	v.SetDefault("thinking_budget_tokens", 10000)
	v.SetDefault("web_search_enabled", true)
	v.SetDefault("web_search_max_uses", 5)
	v.SetDefault("prompt_file", "prompts/prompt.md")
	v.SetDefault("narration_phrases_file", "")
	v.SetDefault("mail_provider", MailProviderSES)
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("schedule_cron", "0 11 * * *") // 11:00 UTC = 5 AM Central (6 AM CDT)
	v.SetDefault("schedule_timezone", "UTC")
	v.SetDefault("run_timeout", 15*time.Minute)
	v.SetDefault("port", "3001")
	v.SetDefault("environment", "development")
}

// Read builds a Config from v without validating it.
// Keys are lower-case; with AutomaticEnv they resolve to the upper-case env vars.
func Read(v *viper.Viper) *Config {
	SetDefaults(v)

	return &Config{
		AnthropicAPIKey:      strings.TrimSpace(v.GetString("anthropic_api_key")),
		AnthropicBaseURL:     strings.TrimRight(v.GetString("anthropic_base_url"), "/"),
		ModelID:              v.GetString("model_id"),
		MaxTokens:            v.GetInt("max_tokens"),
		ThinkingBudgetTokens: v.GetInt("thinking_budget_tokens"),
		WebSearchEnabled:     v.GetBool("web_search_enabled"),
		WebSearchMaxUses:     v.GetInt("web_search_max_uses"),

		PromptFile:           v.GetString("prompt_file"),
		NarrationPhrasesFile: v.GetString("narration_phrases_file"),

		RecipientEmail: strings.TrimSpace(v.GetString("recipient_email")),
		SenderEmail:    strings.TrimSpace(v.GetString("sender_email")),

		Mail: MailConfig{
			Provider:           strings.ToLower(v.GetString("mail_provider")),
			AWSRegion:          v.GetString("aws_region"),
			SESEndpoint:        v.GetString("ses_endpoint"),
			SESAccessKeyID:     v.GetString("ses_access_key_id"),
			SESSecretAccessKey: v.GetString("ses_secret_access_key"),
			SMTPHost:           v.GetString("smtp_host"),
			SMTPPort:           v.GetInt("smtp_port"),
			SMTPUsername:       v.GetString("smtp_username"),
			SMTPPassword:       v.GetString("smtp_password"),
		},

		ScheduleCron:     v.GetString("schedule_cron"),
		ScheduleTimezone: v.GetString("schedule_timezone"),
		RunTimeout:       v.GetDuration("run_timeout"),

		Port:           v.GetString("port"),
		TriggerAPIKey:  v.GetString("trigger_api_key"),
		PushgatewayURL: v.GetString("pushgateway_url"),
		Environment:    strings.ToLower(v.GetString("environment")),
	}
}

// Load reads and validates configuration
func Load(v *viper.Viper) (*Config, error) {
	cfg := Read(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MissingKeys returns the names of required settings that are empty
func (c *Config) MissingKeys() []string {
	var missing []string
	for _, rk := range requiredKeys {
		if rk.get(c) == "" {
			missing = append(missing, rk.key)
		}
	}
	return missing
}

// Validate checks required settings and mail provider selection
func (c *Config) Validate() error {
	if missing := c.MissingKeys(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigMissing, strings.Join(missing, ", "))
	}

	switch c.Mail.Provider {
	case MailProviderSES:
	case MailProviderSMTP:
		if c.Mail.SMTPHost == "" {
			return fmt.Errorf("%w: SMTP_HOST (required when MAIL_PROVIDER=smtp)", ErrConfigMissing)
		}
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q (expected %q or %q)", c.Mail.Provider, MailProviderSES, MailProviderSMTP)
	}

	if c.MaxTokens <= c.ThinkingBudgetTokens {
		return fmt.Errorf("MAX_TOKENS (%d) must be greater than THINKING_BUDGET_TOKENS (%d)", c.MaxTokens, c.ThinkingBudgetTokens)
	}

	return nil
}

// IsProduction reports whether structured JSON logging should be used
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
