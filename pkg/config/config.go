// Package config holds the runtime configuration of the zzapi server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/nekok500/zzapi/pkg/logging"
)

// Cache-Control modes.
const (
	// CacheControlFrozen replays the directive stamped when the entry was stored.
	CacheControlFrozen = "frozen"

	// CacheControlRemaining caps max-age on hits by the entry's remaining lifespan.
	CacheControlRemaining = "remaining"
)

// MaxCanvasSize bounds the canvas edge, both configured and per request.
const MaxCanvasSize = 2048

// Config holds all server settings. Only Listen and BaseURL are read from
// the environment; everything else comes from flags.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `env:"ZZAPI_LISTEN" envDefault:"[::]:3319"`

	// BaseURL is the upstream site hosting event pages.
	BaseURL string `env:"ZZAPI_BASE_URL" envDefault:"https://zaiko.io"`

	// ImagePrefix is the only allowed prefix for /square.png sources.
	ImagePrefix string

	// AllowedOrigin is the single CORS origin.
	AllowedOrigin string

	// CanvasSize is the default edge of the square canvas.
	CanvasSize int

	// CacheTTL is the lifespan of every cached response.
	CacheTTL time.Duration

	// SuccessMaxAge and FailureMaxAge feed the Cache-Control directive.
	SuccessMaxAge time.Duration
	FailureMaxAge time.Duration

	// CacheControl is CacheControlFrozen or CacheControlRemaining.
	CacheControl string

	// RedisAddr selects the Redis store when set.
	RedisAddr string

	// UpstreamTimeout bounds each upstream request.
	UpstreamTimeout time.Duration

	// MaxImageBytes bounds upstream response bodies.
	MaxImageBytes int64

	// MaxImagePixels bounds the declared width*height of decoded images.
	MaxImagePixels int64

	// UserAgent is sent on upstream requests.
	UserAgent string

	// JanitorInterval is how often the memory store drops expired entries.
	JanitorInterval time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	LogLevel  string
	LogPretty bool
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Listen:          "[::]:3319",
		BaseURL:         "https://zaiko.io",
		ImagePrefix:     "https://media.zaiko.io/",
		AllowedOrigin:   "https://zaiko.io",
		CanvasSize:      400,
		CacheTTL:        time.Hour,
		SuccessMaxAge:   time.Hour,
		FailureMaxAge:   5 * time.Minute,
		CacheControl:    CacheControlFrozen,
		UpstreamTimeout: 30 * time.Second,
		MaxImageBytes:   20 << 20,
		MaxImagePixels:  50_000_000,
		UserAgent:       "zzapi/1.0",
		JanitorInterval: time.Minute,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        string(logging.LevelInfo),
	}
}

// Load returns Default with the environment applied.
// A .env file in the working directory is loaded first if present.
func Load() (Config, error) {
	// Load .env if available; ignore error if file does not exist
	_ = godotenv.Load()

	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if err := validateHTTPURL("base url", c.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateHTTPURL("image prefix", c.ImagePrefix); err != nil {
		errs = append(errs, err)
	}
	if c.AllowedOrigin == "" {
		errs = append(errs, errors.New("allowed origin is empty"))
	}
	if c.CanvasSize <= 0 || c.CanvasSize > MaxCanvasSize {
		errs = append(errs, fmt.Errorf("canvas size %d out of range (1..%d)", c.CanvasSize, MaxCanvasSize))
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"cache ttl", c.CacheTTL},
		{"success max-age", c.SuccessMaxAge},
		{"failure max-age", c.FailureMaxAge},
		{"upstream timeout", c.UpstreamTimeout},
		{"janitor interval", c.JanitorInterval},
		{"shutdown timeout", c.ShutdownTimeout},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.value))
		}
	}

	if c.CacheControl != CacheControlFrozen && c.CacheControl != CacheControlRemaining {
		errs = append(errs, fmt.Errorf("unknown cache-control mode %q (want %s or %s)",
			c.CacheControl, CacheControlFrozen, CacheControlRemaining))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, fmt.Errorf("max image bytes must be positive, got %d", c.MaxImageBytes))
	}
	if c.MaxImagePixels <= 0 {
		errs = append(errs, fmt.Errorf("max image pixels must be positive, got %d", c.MaxImagePixels))
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("user agent is empty"))
	}
	if _, err := logging.ParseLevel(logging.LogLevel(c.LogLevel)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q must be an absolute http(s) url", name, raw)
	}
	return nil
}
