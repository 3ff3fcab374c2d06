package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"billing/internal/logger"
	"github.com/caarlos0/env/v11"
)

var (
	ErrMissingDatabase  = errors.New("BILLING_DATABASE_PATH is required")
	ErrMissingServerKey = errors.New("MIDTRANS_SERVER_KEY is required")
	ErrMissingSheetURL  = errors.New("GOOGLE_SHEET_URL is required")
)

type Config struct {
	// Storage
	DatabasePath string `env:"BILLING_DATABASE_PATH" envDefault:"billing.db"`

	// HTTP server
	ListenAddr     string        `env:"BILLING_LISTEN_ADDR" envDefault:":8080"`
	RequestTimeout time.Duration `env:"BILLING_REQUEST_TIMEOUT" envDefault:"30s"`

	// Reporting
	Timezone   string `env:"BILLING_TIMEZONE" envDefault:"Asia/Jakarta"`
	AgencyName string `env:"BILLING_AGENCY_NAME" envDefault:"AKUSARA DIGITAL AGENCY"`

	// Payment method estimation strategies, see analytics.NewEstimator
	AnalyticsEstimator string `env:"BILLING_ANALYTICS_ESTIMATOR" envDefault:"fixed"`
	PaymentsEstimator  string `env:"BILLING_PAYMENTS_ESTIMATOR" envDefault:"amount-tier"`
	MethodSharesFile   string `env:"BILLING_METHOD_SHARES_FILE"`

	// Midtrans Snap checkout
	MidtransServerKey string `env:"MIDTRANS_SERVER_KEY"`
	MidtransBaseURL   string `env:"MIDTRANS_BASE_URL" envDefault:"https://app.sandbox.midtrans.com"`

	// Google Sheets export
	GoogleSheetURL       string `env:"GOOGLE_SHEET_URL"`
	GoogleSheetWorksheet string `env:"GOOGLE_SHEET_WORKSHEET" envDefault:"Analytics"`

	// Logging Configuration
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"console"`
	LogTimeFormat string `env:"LOG_TIME_FORMAT" envDefault:"2006-01-02T15:04:05Z07:00"`
	LogOutput     string `env:"LOG_OUTPUT" envDefault:"stderr"`

	location *time.Location
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return ErrMissingDatabase
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("BILLING_TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location is the time zone used for day and month boundaries.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// RequireCheckout checks the settings needed to open checkout sessions.
func (c *Config) RequireCheckout() error {
	if c.MidtransServerKey == "" {
		return ErrMissingServerKey
	}
	return nil
}

// RequireSheets checks the settings needed for the Sheets export.
func (c *Config) RequireSheets() error {
	if c.GoogleSheetURL == "" {
		return ErrMissingSheetURL
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}
