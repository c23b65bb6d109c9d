// Package config loads restaurantia settings from the environment.
// Values may come from .env.local / .env files (loaded with godotenv)
// and are read once at startup into an explicit Config.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendAirtable = "airtable"
	BackendSheets   = "sheets"
)

// Defaults.
const (
	DefaultPort            = "8080"
	DefaultAirtableBaseURL = "https://api.airtable.com"
	DefaultAirtableBaseID  = "app7SapLnw8VfBDjQ"
	DefaultAirtableTable   = "Order Summary"
	DefaultSheetName       = "Reservations"
	DefaultStoreTimeout    = 15 * time.Second
	DefaultWebhookTimeout  = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultEnvFileLocal    = ".env.local"
	DefaultEnvFile         = ".env"
)

// Config holds all process-wide settings.
// It is built once and handed to constructors; nothing else reads the environment.
type Config struct {
	Port       string
	LogLevel   string
	Production bool

	// StoreBackend selects the record store: "airtable" or "sheets".
	StoreBackend string
	StoreTimeout time.Duration

	// Airtable.
	AirtableToken   string
	AirtableBaseURL string
	AirtableBaseID  string
	AirtableTable   string

	// Google Sheets.
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsSheet           string

	// Downstream automation webhook (n8n).
	WebhookURL     string
	WebhookTimeout time.Duration

	// StrictEndCall refuses end_call until a booking has been confirmed.
	StrictEndCall bool
}

// Default returns a Config populated with defaults only.
func Default() Config {
	return Config{
		Port:            DefaultPort,
		LogLevel:        DefaultLogLevel,
		StoreBackend:    BackendAirtable,
		StoreTimeout:    DefaultStoreTimeout,
		AirtableBaseURL: DefaultAirtableBaseURL,
		AirtableBaseID:  DefaultAirtableBaseID,
		AirtableTable:   DefaultAirtableTable,
		SheetsSheet:     DefaultSheetName,
		WebhookTimeout:  DefaultWebhookTimeout,
	}
}

// Load reads env files (if present) and then the process environment.
// Files that do not exist are skipped; variables already set win over file values.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{DefaultEnvFileLocal, DefaultEnvFile}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	cfg := Default()
	cfg.LoadEnv(os.Getenv)
	return cfg
}

// LoadEnv applies values from getenv over the current config.
func (c *Config) LoadEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				*dst = d
			}
		}
	}

	str("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	c.Production = getenv("GO_ENV") == "production"

	str("STORE_BACKEND", &c.StoreBackend)
	c.StoreBackend = strings.ToLower(c.StoreBackend)
	dur("STORE_TIMEOUT", &c.StoreTimeout)

	str("AIRTABLE_API_TOKEN", &c.AirtableToken)
	str("AIRTABLE_BASE_URL", &c.AirtableBaseURL)
	str("AIRTABLE_BASE_ID", &c.AirtableBaseID)
	str("AIRTABLE_TABLE_NAME", &c.AirtableTable)

	str("GOOGLE_SHEETS_CREDENTIALS", &c.SheetsCredentialsFile)
	str("GOOGLE_SHEETS_SPREADSHEET_ID", &c.SheetsSpreadsheetID)
	str("GOOGLE_SHEETS_SHEET", &c.SheetsSheet)

	str("N8N_WEBHOOK_URL", &c.WebhookURL)
	dur("WEBHOOK_TIMEOUT", &c.WebhookTimeout)

	if v := getenv("STRICT_END_CALL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StrictEndCall = b
		}
	}
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendAirtable:
		if c.AirtableToken == "" {
			return &Error{Field: "AirtableToken", Message: "AIRTABLE_API_TOKEN environment variable is required"}
		}
		if c.AirtableBaseID == "" || c.AirtableTable == "" {
			return &Error{Field: "AirtableTable", Message: "AIRTABLE_BASE_ID and AIRTABLE_TABLE_NAME must not be empty"}
		}
	case BackendSheets:
		if c.SheetsCredentialsFile == "" {
			return &Error{Field: "SheetsCredentialsFile", Message: "GOOGLE_SHEETS_CREDENTIALS environment variable is required for the sheets backend"}
		}
		if c.SheetsSpreadsheetID == "" {
			return &Error{Field: "SheetsSpreadsheetID", Message: "GOOGLE_SHEETS_SPREADSHEET_ID environment variable is required for the sheets backend"}
		}
	default:
		return &Error{Field: "StoreBackend", Message: "unknown STORE_BACKEND: " + c.StoreBackend}
	}
	return nil
}

// Error represents a configuration validation error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
