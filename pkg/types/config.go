// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Validate checks the HTTP settings.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// GenerationBackend identifies the text-generation API.
type GenerationBackend string

const (
	BackendOpenAI GenerationBackend = "openai"
	BackendClaude GenerationBackend = "claude"
)

// AIConfig holds settings for calling a Generative AI API.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the API: openai or claude.
	Backend GenerationBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the model identifier (e.g. "gpt-4.1-2025-04-14").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retries on rate-limited calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond bounds the call rate (default 1).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// Validate checks the AI settings.
func (c *AIConfig) Validate() error {
	if err := c.HTTPConfig.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendOpenAI, BackendClaude)),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
	)
}

// GenerationConfig holds settings for drafting sections.
type GenerationConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Concurrency is the number of sections drafted at once (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Delay is the pause between sequential drafts (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// Validate checks the generation settings.
func (c *GenerationConfig) Validate() error {
	if err := c.AIConfig.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Min(0)),
		validation.Field(&c.Delay, validation.Min(time.Duration(0))),
	)
}

// StalePolicy decides what happens to the References block once no markers
// remain in the document.
type StalePolicy string

const (
	StaleKeep   StalePolicy = "keep"
	StaleClear  StalePolicy = "clear"
	StaleRemove StalePolicy = "remove"
)

// ReferencesConfig holds settings for References block synchronisation.
type ReferencesConfig struct {
	// Title is the title of a newly created References block (default "References").
	Title string `json:"title" yaml:"title" mapstructure:"title"`

	// StalePolicy is keep, clear or remove (default keep).
	StalePolicy StalePolicy `json:"stale_policy" yaml:"stale_policy" mapstructure:"stale_policy"`
}

// Validate checks the references settings.
func (c *ReferencesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StalePolicy, validation.In(StaleKeep, StaleClear, StaleRemove)),
	)
}

// SessionConfig holds settings for the session store.
type SessionConfig struct {
	// Path is the SQLite database file (default "paper-drafter.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Validate checks the session settings.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Validate checks the log settings.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("", "debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.In("", "console", "json")),
	)
}

// Config groups all settings.
type Config struct {
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	References ReferencesConfig `json:"references" yaml:"references" mapstructure:"references"`
	Session    SessionConfig    `json:"session" yaml:"session" mapstructure:"session"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if err := c.References.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// DefaultConfig returns the configuration used when nothing is set.
// Generation defaults follow the values the drafting prompts were tuned for.
func DefaultConfig() Config {
	return Config{
		Generation: GenerationConfig{
			AIConfig: AIConfig{
				HTTPConfig: HTTPConfig{
					Timeout:   120 * time.Second,
					UserAgent: "paper-drafter/0.1",
				},
				Backend:           BackendOpenAI,
				Model:             "gpt-4.1-2025-04-14",
				MaxRetries:        3,
				RequestsPerSecond: 1,
			},
			Concurrency: 1,
			Delay:       time.Second,
		},
		References: ReferencesConfig{
			Title:       "References",
			StalePolicy: StaleKeep,
		},
		Session: SessionConfig{
			Path: "paper-drafter.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
