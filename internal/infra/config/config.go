package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	ChannelTelegram = "telegram"
	ChannelSMS      = "sms"
)

var knownPolicies = []string{"birthday", "debt", "subscription"}

// AppConfig holds all configuration for the application
type AppConfig struct {
	StoreDriver string
	DatabaseURL string

	TelegramToken   string
	AdminTelegramID int64

	NotifyChannel    string
	NotifyRatePerSec float64

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	LogLevel    string
	Environment string
	Location    *time.Location

	PollInterval time.Duration
	TickTimeout  time.Duration
	Policies     []string

	BirthdayHours    []int
	BirthdayWindow   time.Duration
	DebtStatuses     []string
	SubscriptionPlan string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres))
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	cfg.NotifyChannel = strings.ToLower(getEnv("NOTIFY_CHANNEL", ChannelTelegram))
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	switch cfg.NotifyChannel {
	case ChannelTelegram:
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
	case ChannelSMS:
		cfg.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
		cfg.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
		cfg.TwilioFromNumber = os.Getenv("TWILIO_FROM_NUMBER")
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
			return nil, fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER must be set for the sms channel")
		}
	default:
		return nil, fmt.Errorf("invalid NOTIFY_CHANNEL %q: want %s or %s", cfg.NotifyChannel, ChannelTelegram, ChannelSMS)
	}

	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.NotifyRatePerSec, err = strconv.ParseFloat(getEnv("NOTIFY_RATE_PER_SEC", "3"), 64)
	if err != nil || cfg.NotifyRatePerSec <= 0 {
		return nil, fmt.Errorf("invalid NOTIFY_RATE_PER_SEC %q", os.Getenv("NOTIFY_RATE_PER_SEC"))
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if cfg.PollInterval, err = parsePositiveDuration("REMINDER_POLL_INTERVAL", "60s"); err != nil {
		return nil, err
	}
	if cfg.TickTimeout, err = parsePositiveDuration("REMINDER_TICK_TIMEOUT", "50s"); err != nil {
		return nil, err
	}

	cfg.Policies = splitList(getEnv("REMINDER_POLICIES", strings.Join(knownPolicies, ",")))
	if len(cfg.Policies) == 0 {
		return nil, fmt.Errorf("REMINDER_POLICIES is empty")
	}
	for _, p := range cfg.Policies {
		if !contains(knownPolicies, p) {
			return nil, fmt.Errorf("invalid REMINDER_POLICIES entry %q", p)
		}
	}

	for _, h := range splitList(getEnv("BIRTHDAY_HOURS", "6,12,18")) {
		hour, err := strconv.Atoi(h)
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("invalid BIRTHDAY_HOURS entry %q", h)
		}
		cfg.BirthdayHours = append(cfg.BirthdayHours, hour)
	}

	minutes, err := strconv.Atoi(getEnv("BIRTHDAY_WINDOW_MINUTES", "5"))
	if err != nil || minutes <= 0 || minutes > 60 {
		return nil, fmt.Errorf("invalid BIRTHDAY_WINDOW_MINUTES %q", os.Getenv("BIRTHDAY_WINDOW_MINUTES"))
	}
	cfg.BirthdayWindow = time.Duration(minutes) * time.Minute

	cfg.DebtStatuses = splitList(getEnv("DEBT_STATUSES", "pending,overdue"))
	cfg.SubscriptionPlan = strings.ToLower(getEnv("SUBSCRIPTION_PLAN", "metered"))

	return cfg, nil
}

// PolicyEnabled reports whether name is listed in REMINDER_POLICIES.
func (c *AppConfig) PolicyEnabled(name string) bool {
	return contains(c.Policies, name)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
