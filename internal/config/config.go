// Package config loads portal settings from a .env file, an optional
// portal.yaml and PORTAL_* environment variables.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// EnvProduction is the only environment that disables dev seeding.
const EnvProduction = "production"

var (
	ErrUnknownStore    = errors.New("store must be one of: sqlite, firestore")
	ErrMissingProject  = errors.New("firestore store requires PORTAL_FIRESTORE_PROJECT")
	ErrBadCSRFKey      = errors.New("PORTAL_CSRF_KEY must be exactly 32 bytes")
	ErrMissingCSRFKey  = errors.New("PORTAL_CSRF_KEY is required in production")
	ErrInvalidLogLevel = errors.New("log level must be one of: debug, info, warn, error")
)

// Config holds every setting the server reads at startup.
type Config struct {
	Env                 string        `mapstructure:"env"`
	Addr                string        `mapstructure:"addr"`
	DBPath              string        `mapstructure:"db_path"`
	Store               string        `mapstructure:"store"`
	FirestoreProject    string        `mapstructure:"firestore_project"`
	FirebaseCredentials string        `mapstructure:"firebase_credentials"`
	RedisAddr           string        `mapstructure:"redis_addr"`
	RedisPassword       string        `mapstructure:"redis_password"`
	RedisDB             int           `mapstructure:"redis_db"`
	SummaryTTL          time.Duration `mapstructure:"summary_ttl"`
	ResendKey           string        `mapstructure:"resend_key"`
	EmailFrom           string        `mapstructure:"email_from"`
	NotifyTo            []string      `mapstructure:"notify_to"`
	CSRFKey             string        `mapstructure:"csrf_key"`
	SecureCookies       bool          `mapstructure:"secure_cookies"`
	TrustedOrigins      []string      `mapstructure:"trusted_origins"`
	RateLimit           float64       `mapstructure:"rate_limit"`
	RateBurst           int           `mapstructure:"rate_burst"`
	LogLevel            string        `mapstructure:"log_level"`
	SlowQueryMS         int           `mapstructure:"slow_query_ms"`
	SlowRequestMS       int           `mapstructure:"slow_request_ms"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "itgportal.db")
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("firestore_project", "")
	v.SetDefault("firebase_credentials", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("summary_ttl", "1h")
	v.SetDefault("resend_key", "")
	v.SetDefault("email_from", "ITG Coach Portal <noreply@itg.example>")
	v.SetDefault("notify_to", []string{})
	v.SetDefault("csrf_key", "")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("trusted_origins", []string{})
	v.SetDefault("rate_limit", 10.0)
	v.SetDefault("rate_burst", 20)
	v.SetDefault("log_level", "info")
	v.SetDefault("slow_query_ms", 50)
	v.SetDefault("slow_request_ms", 200)
}

// Load reads envFile (missing is fine), then portal.yaml from the working
// directory (missing is fine), then PORTAL_* variables, and validates the result.
// PRE: none
// POST: Returns a validated Config or the first problem found
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigName("portal")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read portal.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.NotifyTo = splitList(cfg.NotifyTo)
	cfg.TrustedOrigins = splitList(cfg.TrustedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitList flattens comma-separated entries, since env values arrive as one string.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
	case StoreFirestore:
		if c.FirestoreProject == "" {
			return ErrMissingProject
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
	if c.CSRFKey != "" && len(c.CSRFKey) != 32 {
		return ErrBadCSRFKey
	}
	if c.CSRFKey == "" && c.IsProduction() {
		return ErrMissingCSRFKey
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether the server runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return lvl, nil
}

// CSRFAuthKey returns the configured key, or a random one outside production.
// A random key invalidates tokens on every restart.
func (c Config) CSRFAuthKey() ([]byte, error) {
	if c.CSRFKey != "" {
		return []byte(c.CSRFKey), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	return key, nil
}

// SlowQuery is the TimedDB warning threshold.
func (c Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// SlowRequest is the request timing warning threshold.
func (c Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}
