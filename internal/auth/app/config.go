package app

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/bartab/pkg/httpx"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Notifier kinds.
const (
	NotifierLog      = "log"
	NotifierPostmark = "postmark"
)

// minSecretBytes matches the HS256 signer's minimum key size.
const minSecretBytes = 32

type Config struct {
	JWTSecret    string        // Required: HMAC key for session tokens (>= 32 bytes)
	Issuer       string        // Optional: issuer claim for tokens (default: bartab-auth)
	TokenTTL     time.Duration // Optional: session token lifetime (default: 10m)
	ChallengeTTL time.Duration // Optional: two-factor code lifetime (default: 10m)

	StoreDriver   string // Optional: memory, sqlite or redis (default: memory)
	DatabaseFile  string // Optional: path to SQLite database file (default: ./auth.db)
	RedisAddr     string // Optional: redis address (default: 127.0.0.1:6379)
	RedisPassword string // Optional
	RedisDB       int    // Optional (default: 0)
	PepperFile    string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Notifier        string // Optional: log or postmark (default: log)
	PostmarkBaseURL string // Optional (default: https://api.postmarkapp.com)
	PostmarkToken   string // Required when Notifier is postmark
	PostmarkSender  string // Required when Notifier is postmark
	CookieSecure    bool   // Optional: mark the session cookie Secure (default: false)
	Env             string // Environment (dev, staging, prod) (default: dev)
	LogLevel        string // Log level (debug, info, warn, error) (default: info)
	LogFormat       string // Log format (json, text) (default: json)
	Port            int    // HTTP server port (default: 8080)
	MetricsDisabled bool   // Optional: hide GET /metrics (default: false)
	TrustedProxies  string // Optional: comma-separated CIDRs whose X-Forwarded-For is honoured (default: none)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1m)
}

func LoadConfig() Config {
	return Config{
		JWTSecret:    os.Getenv("JWT_SECRET"),
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "bartab-auth"),
		TokenTTL:     getEnvDurationOrDefault("TOKEN_TTL", 10*time.Minute),
		ChallengeTTL: getEnvDurationOrDefault("CHALLENGE_TTL", 10*time.Minute),

		StoreDriver:   strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreMemory)),
		DatabaseFile:  getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),
		PepperFile:    getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Notifier:        strings.ToLower(getEnvOrDefault("NOTIFIER", NotifierLog)),
		PostmarkBaseURL: getEnvOrDefault("POSTMARK_BASE_URL", "https://api.postmarkapp.com"),
		PostmarkToken:   os.Getenv("POSTMARK_TOKEN"),
		PostmarkSender:  os.Getenv("POSTMARK_SENDER"),
		CookieSecure:    getEnvBoolOrDefault("COOKIE_SECURE", false),
		MetricsDisabled: getEnvBoolOrDefault("METRICS_DISABLED", false),
		TrustedProxies:  os.Getenv("TRUSTED_PROXIES"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < minSecretBytes {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretBytes))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.ChallengeTTL <= 0 {
		errs = append(errs, errors.New("CHALLENGE_TTL must be positive"))
	}

	switch c.StoreDriver {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.Notifier {
	case NotifierLog:
		if c.Env == "prod" {
			errs = append(errs, errors.New("NOTIFIER=log prints codes and is not allowed in prod"))
		}
	case NotifierPostmark:
		if u, err := url.Parse(c.PostmarkBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("POSTMARK_BASE_URL must be an absolute URL, got %q", c.PostmarkBaseURL))
		}
		if c.PostmarkToken == "" {
			errs = append(errs, errors.New("POSTMARK_TOKEN is required for NOTIFIER=postmark"))
		}
		if c.PostmarkSender == "" {
			errs = append(errs, errors.New("POSTMARK_SENDER is required for NOTIFIER=postmark"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFIER %q", c.Notifier))
	}

	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}

	return errors.Join(errs...)
}

// TrustedProxyPrefixes parses TrustedProxies.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	return httpx.ParseTrustedProxies(c.TrustedProxies)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
