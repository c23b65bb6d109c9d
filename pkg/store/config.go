package store

import (
	"log/slog"
	"time"
)

// Config holds record store configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Credentials
	APIKey          string
	CredentialsJSON []byte

	// Location
	BaseURL string
	BaseID  string // Airtable base or Google spreadsheet ID
	Table   string // Airtable table or sheet tab name

	// Timeout bounds a single write.
	Timeout time.Duration

	// Typecast lets Airtable coerce string values into typed columns.
	Typecast bool

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring stores.
type Option func(*Config)

// WithAPIKey sets the API token.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithCredentialsJSON sets service account credentials (Sheets).
func WithCredentialsJSON(data []byte) Option {
	return func(c *Config) {
		c.CredentialsJSON = data
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithBase sets the Airtable base ID or spreadsheet ID.
func WithBase(id string) Option {
	return func(c *Config) {
		c.BaseID = id
	}
}

// WithTable sets the table or sheet name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// WithTimeout sets the write timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithTypecast toggles Airtable typecasting.
func WithTypecast(enabled bool) Option {
	return func(c *Config) {
		c.Typecast = enabled
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:  15 * time.Second,
		Typecast: true,
		Logger:   slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that the table location is present.
func (c *Config) Validate() error {
	if c.BaseID == "" {
		return ErrNoBase
	}
	if c.Table == "" {
		return ErrNoTable
	}
	return nil
}
