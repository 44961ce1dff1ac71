// Package config reads server settings from the environment, with an optional .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults applied when a variable is unset.
const (
	DefaultAddr          = ":8080"
	DefaultDBDriver      = "sqlite"
	DefaultDBPath        = "brickyard.db"
	DefaultCalendarTZ    = "America/New_York"
	DefaultRateLimit     = 10
	DefaultSlowQueryMS   = 50
	DefaultSlowRequestMS = 200
)

// csrfKeyBytes is the key length gorilla/csrf expects.
const csrfKeyBytes = 32

// Config errors.
var (
	ErrUnknownDriver  = errors.New("BRICKYARD_DB_DRIVER must be sqlite or postgres")
	ErrMissingURL     = errors.New("BRICKYARD_DATABASE_URL is required for postgres")
	ErrBadCSRFKey     = errors.New("BRICKYARD_CSRF_KEY must be 64 hex characters")
	ErrMissingCSRFKey = errors.New("BRICKYARD_CSRF_KEY is required in production")
	ErrBadRateLimit   = errors.New("BRICKYARD_RATE_LIMIT must be positive")
)

// Config is the resolved server configuration.
type Config struct {
	Env            string
	Addr           string
	DBDriver       string
	DBPath         string
	DatabaseURL    string
	CalendarTZ     string
	StrictBookings bool
	SeedDemo       bool
	CORSOrigins    []string
	RateLimit      int
	CSRFKey        []byte
	SlowQuery      time.Duration
	SlowRequest    time.Duration
	LogLevel       slog.Level
}

// Load reads .env (if present) and then the process environment.
// Variables already set in the environment win over .env values.
// POST: returned Config has every default applied; call Validate before use
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Tests pass a map-backed getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Env:         get("BRICKYARD_ENV", EnvDevelopment),
		Addr:        get("BRICKYARD_ADDR", DefaultAddr),
		DBDriver:    strings.ToLower(get("BRICKYARD_DB_DRIVER", DefaultDBDriver)),
		DBPath:      get("BRICKYARD_DB_PATH", DefaultDBPath),
		DatabaseURL: get("BRICKYARD_DATABASE_URL", ""),
		CalendarTZ:  get("BRICKYARD_CALENDAR_TZ", DefaultCalendarTZ),
		CORSOrigins: splitList(get("BRICKYARD_CORS_ORIGINS", "")),
	}

	var err error
	if cfg.StrictBookings, err = parseBool(get("BRICKYARD_STRICT_BOOKINGS", "false")); err != nil {
		return Config{}, fmt.Errorf("BRICKYARD_STRICT_BOOKINGS: %w", err)
	}
	seedDefault := strconv.FormatBool(cfg.Env != EnvProduction)
	if cfg.SeedDemo, err = parseBool(get("BRICKYARD_SEED_DEMO", seedDefault)); err != nil {
		return Config{}, fmt.Errorf("BRICKYARD_SEED_DEMO: %w", err)
	}
	if cfg.RateLimit, err = strconv.Atoi(get("BRICKYARD_RATE_LIMIT", strconv.Itoa(DefaultRateLimit))); err != nil {
		return Config{}, fmt.Errorf("BRICKYARD_RATE_LIMIT: %w", err)
	}
	if cfg.SlowQuery, err = parseMillis(get("BRICKYARD_SLOW_QUERY_MS", strconv.Itoa(DefaultSlowQueryMS))); err != nil {
		return Config{}, fmt.Errorf("BRICKYARD_SLOW_QUERY_MS: %w", err)
	}
	if cfg.SlowRequest, err = parseMillis(get("BRICKYARD_SLOW_REQUEST_MS", strconv.Itoa(DefaultSlowRequestMS))); err != nil {
		return Config{}, fmt.Errorf("BRICKYARD_SLOW_REQUEST_MS: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("BRICKYARD_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("BRICKYARD_LOG_LEVEL: %w", err)
	}
	if key := get("BRICKYARD_CSRF_KEY", ""); key != "" {
		decoded, err := hex.DecodeString(key)
		if err != nil || len(decoded) != csrfKeyBytes {
			return Config{}, ErrBadCSRFKey
		}
		cfg.CSRFKey = decoded
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
// PRE: cfg came from Load or FromEnv
// POST: returns nil if the server can start with cfg
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return ErrMissingURL
		}
	default:
		return ErrUnknownDriver
	}
	if _, err := time.LoadLocation(c.CalendarTZ); err != nil {
		return fmt.Errorf("BRICKYARD_CALENDAR_TZ: %w", err)
	}
	if c.RateLimit <= 0 {
		return ErrBadRateLimit
	}
	if c.IsProduction() && len(c.CSRFKey) == 0 {
		return ErrMissingCSRFKey
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// TrustedOrigins returns the hosts of the CORS origins, for the CSRF origin check.
// Wildcards and entries without a host are skipped.
func (c Config) TrustedOrigins() []string {
	var hosts []string
	for _, origin := range c.CORSOrigins {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" || strings.Contains(u.Host, "*") {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

func parseBool(v string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(v))
}

func parseMillis(v string) (time.Duration, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return time.Duration(n) * time.Millisecond, nil
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
