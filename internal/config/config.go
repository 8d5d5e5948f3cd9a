// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage backends for the daily pick.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageBadger   = "badger"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds all configuration values for the trip browser binaries.
// Values are populated by Load from environment variables; the env tag names
// the variable and is what validation errors report.
type Config struct {
	// TripsAPIBase is the base URL of the remote trips API. Required.
	TripsAPIBase string `env:"TRIPS_API_BASE" validate:"required,url"`

	// Port is the TCP port the view API listens on. Defaults to "8080".
	Port string `env:"PORT" validate:"required,numeric"`

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"]. Set CORS_ORIGINS to a
	// comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS"`

	// PageSize is the number of trips per listing page. Fixed for the
	// lifetime of the process.
	PageSize int `env:"PAGE_SIZE" validate:"min=1,max=100"`

	// DailyPickSample is how many trips the daily pick is drawn from.
	DailyPickSample int `env:"DAILY_PICK_SAMPLE" validate:"min=1,max=100"`

	// HTTPTimeout bounds every request to the trips API.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" validate:"gt=0"`

	// UpstreamRPS limits requests per second to the trips API; 0 is unlimited.
	UpstreamRPS float64 `env:"UPSTREAM_RPS" validate:"gte=0"`

	// StorageBackend selects where the daily pick is persisted.
	StorageBackend string `env:"STORAGE_BACKEND" validate:"oneof=memory file badger redis postgres"`

	// StoragePath is the directory used by the file and badger backends.
	StoragePath string `env:"STORAGE_PATH" validate:"required_if=StorageBackend file,required_if=StorageBackend badger"`

	// RedisAddr is host:port of the redis backend.
	RedisAddr string `env:"REDIS_ADDR" validate:"required_if=StorageBackend redis"`

	// DatabaseURL is the Postgres connection string of the postgres backend.
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=StorageBackend postgres"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return v
}

// Load reads configuration from environment variables and validates it.
// The error names every offending variable.
func Load() (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without validating
// it, so callers can layer overrides (e.g. command-line flags) before
// calling Validate. Only unparsable values are reported.
func FromEnv() (Config, error) {
	cfg := Config{
		TripsAPIBase:   os.Getenv("TRIPS_API_BASE"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageFile),
		StoragePath:    getEnv("STORAGE_PATH", ".tripbrowser"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	var errs []error
	var err error
	if cfg.PageSize, err = strconv.Atoi(getEnv("PAGE_SIZE", "12")); err != nil {
		errs = append(errs, fmt.Errorf("PAGE_SIZE: %w", err))
	}
	if cfg.DailyPickSample, err = strconv.Atoi(getEnv("DAILY_PICK_SAMPLE", "50")); err != nil {
		errs = append(errs, fmt.Errorf("DAILY_PICK_SAMPLE: %w", err))
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "10s")); err != nil {
		errs = append(errs, fmt.Errorf("HTTP_TIMEOUT: %w", err))
	}
	if cfg.UpstreamRPS, err = strconv.ParseFloat(getEnv("UPSTREAM_RPS", "0"), 64); err != nil {
		errs = append(errs, fmt.Errorf("UPSTREAM_RPS: %w", err))
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Validate checks every field against its rules.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", fe.Field(), ruleText(fe)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
}

// SlogLevel parses LogLevel, falling back to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func ruleText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "required"
	case "oneof":
		return "one of " + fe.Param()
	case "url":
		return "must be a URL"
	default:
		if fe.Param() != "" {
			return fe.Tag() + "=" + fe.Param()
		}
		return fe.Tag()
	}
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
