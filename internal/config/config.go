// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultWeekdayOpen  = "08:00"
	defaultWeekdayClose = "22:00"
	defaultWeekendOpen  = "09:00"
	defaultWeekendClose = "21:00"

	defaultRemindersCron  = "*/15 * * * *"
	defaultTokenPurgeCron = "0 * * * *"
	defaultEventsExchange = "court.reservations"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// Hours is a daily open/close pair in "HH:MM" form.
type Hours struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// OperatingHours holds the weekday and weekend windows for the facility.
type OperatingHours struct {
	Weekday Hours `yaml:"weekday"`
	Weekend Hours `yaml:"weekend"`
}

// For returns the hours that apply to the given date.
func (o OperatingHours) For(date time.Time) Hours {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return o.Weekend
	default:
		return o.Weekday
	}
}

type FacilityConfig struct {
	Name           string         `yaml:"name"`
	Timezone       string         `yaml:"timezone"`
	OperatingHours OperatingHours `yaml:"operating_hours"`

	location *time.Location
}

// Location returns the loaded facility timezone, or UTC before Validate runs.
func (f FacilityConfig) Location() *time.Location {
	if f.location == nil {
		return time.UTC
	}
	return f.location
}

type EmailConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

// Enabled reports whether SES credentials are present.
func (e EmailConfig) Enabled() bool {
	return e.AccessKeyID != "" && e.SecretAccessKey != "" && e.Region != "" && e.Sender != ""
}

type EventsConfig struct {
	Exchange string `yaml:"exchange"`
	URL      string `yaml:"-"` // Loaded from environment
}

type SchedulerConfig struct {
	RemindersCron  string `yaml:"reminders_cron"`
	TokenPurgeCron string `yaml:"token_purge_cron"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		TrustProxy  bool   `yaml:"trust_proxy"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Facility  FacilityConfig  `yaml:"facility"`
	Email     EmailConfig     `yaml:"email"`
	Events    EventsConfig    `yaml:"events"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Email.AccessKeyID = os.Getenv("SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("SES_SECRET_ACCESS_KEY")
	cfg.Events.URL = os.Getenv("AMQP_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.Facility.Timezone == "" {
		c.Facility.Timezone = "UTC"
	}
	hours := &c.Facility.OperatingHours
	if hours.Weekday.Open == "" && hours.Weekday.Close == "" {
		hours.Weekday = Hours{Open: defaultWeekdayOpen, Close: defaultWeekdayClose}
	}
	if hours.Weekend.Open == "" && hours.Weekend.Close == "" {
		hours.Weekend = Hours{Open: defaultWeekendOpen, Close: defaultWeekendClose}
	}
	if c.Events.Exchange == "" {
		c.Events.Exchange = defaultEventsExchange
	}
	if c.Scheduler.RemindersCron == "" {
		c.Scheduler.RemindersCron = defaultRemindersCron
	}
	if c.Scheduler.TokenPurgeCron == "" {
		c.Scheduler.TokenPurgeCron = defaultTokenPurgeCron
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	loc, err := time.LoadLocation(c.Facility.Timezone)
	if err != nil {
		return fmt.Errorf("invalid facility timezone %q: %w", c.Facility.Timezone, err)
	}
	c.Facility.location = loc

	if err := validateHours("weekday", c.Facility.OperatingHours.Weekday); err != nil {
		return err
	}
	if err := validateHours("weekend", c.Facility.OperatingHours.Weekend); err != nil {
		return err
	}

	for name, expr := range map[string]string{
		"reminders_cron":   c.Scheduler.RemindersCron,
		"token_purge_cron": c.Scheduler.TokenPurgeCron,
	} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid scheduler %s %q: %w", name, expr, err)
		}
	}

	return nil
}

func validateHours(label string, h Hours) error {
	open, err := parseClock(h.Open)
	if err != nil {
		return fmt.Errorf("%s open time: %w", label, err)
	}
	closeAt, err := parseClock(h.Close)
	if err != nil {
		return fmt.Errorf("%s close time: %w", label, err)
	}
	if closeAt <= open {
		return fmt.Errorf("%s close time must be after open time", label)
	}
	return nil
}

// parseClock accepts zero-padded "HH:MM" on a 30-minute boundary.
func parseClock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse("15:04", raw)
	if err != nil || len(raw) != 5 {
		return 0, fmt.Errorf("must be HH:MM, got %q", raw)
	}
	minutes := t.Hour()*60 + t.Minute()
	if minutes%30 != 0 {
		return 0, fmt.Errorf("must fall on a 30-minute boundary, got %q", raw)
	}
	return minutes, nil
}
