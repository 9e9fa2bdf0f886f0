// Command zzapi serves zaiko event owner lookups and square image thumbnails.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nekok500/zzapi/pkg/api"
	"github.com/nekok500/zzapi/pkg/cache"
	"github.com/nekok500/zzapi/pkg/config"
	"github.com/nekok500/zzapi/pkg/freshness"
	"github.com/nekok500/zzapi/pkg/logging"
	"github.com/nekok500/zzapi/pkg/upstream"
	"github.com/nekok500/zzapi/pkg/zaiko"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, envErr := config.Load()
	if envErr != nil {
		cfg = config.Default()
	}

	cmd := &cobra.Command{
		Use:   "zzapi",
		Short: "Zaiko event owner lookups and square thumbnails",
		Long: `zzapi is an HTTP edge service in front of zaiko.

Routes:
  GET /zaiko/events/{event_id}   owner name of an event as JSON
  GET /square.png?u=<url>        image letterboxed onto a transparent square

The listen address and base URL may also be set with ZZAPI_LISTEN and
ZZAPI_BASE_URL (a .env file is read if present). Flags take precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Listen, "listen", "l", cfg.Listen, "HTTP listen address")
	f.StringVarP(&cfg.BaseURL, "base-url", "b", cfg.BaseURL, "Base URL of the event site")
	f.StringVar(&cfg.ImagePrefix, "image-prefix", cfg.ImagePrefix, "Only image URLs with this prefix are fetched")
	f.StringVar(&cfg.AllowedOrigin, "allowed-origin", cfg.AllowedOrigin, "CORS allowed origin")
	f.IntVar(&cfg.CanvasSize, "canvas-size", cfg.CanvasSize, "Default square edge in pixels")
	f.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Lifespan of cached responses")
	f.DurationVar(&cfg.SuccessMaxAge, "success-max-age", cfg.SuccessMaxAge, "Cache-Control max-age for 200 responses")
	f.DurationVar(&cfg.FailureMaxAge, "failure-max-age", cfg.FailureMaxAge, "Cache-Control max-age for other responses")
	f.StringVar(&cfg.CacheControl, "cache-control", cfg.CacheControl, "Cache-Control on cache hits: frozen or remaining")
	f.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Store cached responses in Redis at this address")
	f.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "Timeout of each upstream request")
	f.Int64Var(&cfg.MaxImageBytes, "max-image-bytes", cfg.MaxImageBytes, "Largest accepted upstream body")
	f.Int64Var(&cfg.MaxImagePixels, "max-image-pixels", cfg.MaxImagePixels, "Largest accepted source image area in pixels")
	f.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent sent upstream")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	f.BoolVar(&cfg.LogPretty, "log-pretty", cfg.LogPretty, "Human-readable console logs")

	return cmd
}

// run serves until ctx is cancelled or a termination signal arrives.
func run(ctx context.Context, cfg config.Config) error {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	handler, err := newHandler(cfg, store)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Listen, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      2*cfg.UpstreamTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", ln.Addr().String()).
			Str("base_url", cfg.BaseURL).
			Str("cache_control", cfg.CacheControl).
			Dur("cache_ttl", cfg.CacheTTL).
			Msg("Starting zzapi")
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}

// newStore returns the Redis store when an address is configured and the
// memory store otherwise. The memory store's janitor runs until ctx is done.
func newStore(ctx context.Context, cfg config.Config) (cache.Store, func(), error) {
	logger := logging.NewLogger("server")

	if cfg.RedisAddr == "" {
		store := cache.NewMemoryStore(nil)
		go store.RunJanitor(ctx, cfg.JanitorInterval)
		logger.Info().Msg("Using in-memory cache store")
		return store, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store := cache.NewRedisStore(client)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis cache store")
	return store, func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}, nil
}

// newHandler wires the upstream client, resolver, cache and freshness policy
// into the API handler.
func newHandler(cfg config.Config, store cache.Store) (http.Handler, error) {
	client, err := upstream.New(upstream.Config{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.UpstreamTimeout,
		MaxBodyBytes: cfg.MaxImageBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	resolver, err := zaiko.NewResolver(cfg.BaseURL, client)
	if err != nil {
		return nil, err
	}

	policy := freshness.Policy{Success: cfg.SuccessMaxAge, Failure: cfg.FailureMaxAge}
	opts := cache.Options{TTL: cfg.CacheTTL, OnError: policy.Annotate}
	if cfg.CacheControl == config.CacheControlRemaining {
		opts.OnHit = policy.Refresh
	}

	srv, err := api.NewServer(api.Options{
		Resolver:       resolver,
		Fetcher:        client,
		Images:         zaiko.ImagePolicy{Prefix: cfg.ImagePrefix},
		CanvasSize:     cfg.CanvasSize,
		MaxCanvasSize:  config.MaxCanvasSize,
		MaxImagePixels: cfg.MaxImagePixels,
		Cache:          cache.New(store, opts),
		Freshness:      policy,
		AllowedOrigin:  cfg.AllowedOrigin,
	})
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}
