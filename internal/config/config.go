package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Side identifies where a service call originates. Server-side calls use the
// internal (cluster-local) address; browser-side callers need the externally
// reachable one.
type Side int

const (
	ServerSide Side = iota
	BrowserSide
)

// Endpoint holds the two base URLs registered for a named service.
type Endpoint struct {
	Internal string
	Public   string
}

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	CORSAllowedOrigins []string
	Services           map[string]Endpoint
	SessionCookieName  string
	SessionTTL         time.Duration
	UpstreamTimeout    time.Duration
	CheckoutRateLimit  string
	MaxBodyBytes       int64
}

// ServiceNames lists the backends the storefront knows how to resolve.
var ServiceNames = []string{"products", "orders", "inventory"}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	services := make(map[string]Endpoint, len(ServiceNames))
	for _, name := range ServiceNames {
		upper := strings.ToUpper(name)
		services[name] = Endpoint{
			Internal: strings.TrimSpace(k.String("INTERNAL_" + upper + "_API_URL")),
			Public:   strings.TrimSpace(k.String("PUBLIC_" + upper + "_API_URL")),
		}
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "3000"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		Services:           services,
		SessionCookieName:  valueOrDefault(k.String("SESSION_COOKIE_NAME"), "storefront_session"),
		SessionTTL:         parseDuration(k.String("SESSION_TTL"), "24h"),
		UpstreamTimeout:    parseDuration(k.String("UPSTREAM_TIMEOUT"), "10s"),
		CheckoutRateLimit:  valueOrDefault(k.String("CHECKOUT_RATE_LIMIT"), "30-M"),
		MaxBodyBytes:       int64(parseInt(k.String("MAX_BODY_BYTES"), 1<<20)),
	}

	return cfg, nil
}

// BaseURL resolves the base URL for a named service on the given side.
// Unknown service names and missing configuration both yield an empty
// string; callers must treat that as "service unreachable".
func (c *Config) BaseURL(service string, side Side) string {
	if c == nil {
		return ""
	}
	ep, ok := c.Services[service]
	if !ok {
		return ""
	}
	if side == BrowserSide {
		return ep.Public
	}
	return ep.Internal
}

// PublicServiceMap returns the browser-side base URL per known service, for
// handing to frontend code that resolves services itself.
func (c *Config) PublicServiceMap() map[string]string {
	out := make(map[string]string, len(ServiceNames))
	for _, name := range ServiceNames {
		out[name] = c.BaseURL(name, BrowserSide)
	}
	return out
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "3000"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
