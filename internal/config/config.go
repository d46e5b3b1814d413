package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teemow/haircut-mcp/internal/availability"
	"github.com/teemow/haircut-mcp/internal/bokadirekt"
)

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// Default booking window, in epoch milliseconds.
const (
	DefaultWindowStart int64 = 1753056000000
	DefaultWindowEnd   int64 = 1753048800000
)

// Environment variable names.
const (
	EnvServiceID   = "BOKADIREKT_SERVICE_ID"
	EnvSalonID     = "BOKADIREKT_SALOON_ID"
	EnvStaffID     = "BOKADIREKT_PERSON_ID"
	EnvStaffName   = "BOKADIREKT_PERSON_NAME"
	EnvWindowStart = "BOKADIREKT_WINDOW_START"
	EnvWindowEnd   = "BOKADIREKT_WINDOW_END"
	EnvBaseURL     = "BOKADIREKT_BASE_URL"
	EnvTimeout     = "BOKADIREKT_TIMEOUT"
	EnvTimezone    = "BOKADIREKT_TIMEZONE"
	EnvCurrency    = "BOKADIREKT_CURRENCY"
)

// Config is the booking configuration of the server.
type Config struct {
	ServiceID string `mapstructure:"BOKADIREKT_SERVICE_ID"`
	SalonID   string `mapstructure:"BOKADIREKT_SALOON_ID"`
	StaffID   string `mapstructure:"BOKADIREKT_PERSON_ID"`
	StaffName string `mapstructure:"BOKADIREKT_PERSON_NAME"`

	WindowStart int64 `mapstructure:"BOKADIREKT_WINDOW_START"`
	WindowEnd   int64 `mapstructure:"BOKADIREKT_WINDOW_END"`

	BaseURL  string        `mapstructure:"BOKADIREKT_BASE_URL"`
	Timeout  time.Duration `mapstructure:"BOKADIREKT_TIMEOUT"`
	Timezone string        `mapstructure:"BOKADIREKT_TIMEZONE"`
	Currency string        `mapstructure:"BOKADIREKT_CURRENCY"`

	// Location is Timezone resolved by Load.
	Location *time.Location `mapstructure:"-"`
}

// Load reads the configuration from the environment and, if it exists,
// the dotenv file at envFile. Environment variables take precedence over
// the file. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault(EnvServiceID, "")
	v.SetDefault(EnvSalonID, "")
	v.SetDefault(EnvStaffID, "")
	v.SetDefault(EnvStaffName, "")
	v.SetDefault(EnvWindowStart, DefaultWindowStart)
	v.SetDefault(EnvWindowEnd, DefaultWindowEnd)
	v.SetDefault(EnvBaseURL, bokadirekt.DefaultBaseURL)
	v.SetDefault(EnvTimeout, bokadirekt.DefaultTimeout)
	v.SetDefault(EnvTimezone, "Local")
	v.SetDefault(EnvCurrency, availability.DefaultCurrency)

	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", EnvTimeout, c.Timeout)
	}

	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		tz = "Local"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", EnvTimezone, c.Timezone, err)
	}
	c.Location = loc

	if c.Currency == "" {
		c.Currency = availability.DefaultCurrency
	}
	if c.BaseURL == "" {
		c.BaseURL = bokadirekt.DefaultBaseURL
	}
	return nil
}

// ReporterConfig returns the settings the availability reporter needs.
func (c *Config) ReporterConfig() availability.Config {
	return availability.Config{
		ServiceID:   c.ServiceID,
		SalonID:     c.SalonID,
		StaffID:     c.StaffID,
		StaffName:   c.StaffName,
		WindowStart: c.WindowStart,
		WindowEnd:   c.WindowEnd,
		Location:    c.Location,
		Currency:    c.Currency,
	}
}

// ClientOptions returns the booking API client options for this configuration.
func (c *Config) ClientOptions() []bokadirekt.Option {
	return []bokadirekt.Option{
		bokadirekt.WithBaseURL(c.BaseURL),
		bokadirekt.WithTimeout(c.Timeout),
	}
}
