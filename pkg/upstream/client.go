// Package upstream provides the HTTP client used to fetch upstream documents
// and images.
//
// Every failure is returned as a *FetchError carrying an ErrorClass. Requests
// are never retried: callers surface the failure for the current request.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for upstream fetches.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zzapi_upstream_requests_total",
		Help: "Total upstream requests by host and status",
	}, []string{"host", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zzapi_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by host",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"host"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zzapi_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a whole fetch including reading the body.
	Timeout time.Duration

	// MaxBodyBytes caps the response body size.
	MaxBodyBytes int64
}

// DefaultConfig returns a default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:    userAgent,
		Timeout:      30 * time.Second,
		MaxBodyBytes: 20 << 20,
	}
}

// Client fetches upstream resources.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("max_body_bytes must be positive (got %d)", cfg.MaxBodyBytes)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "upstream").Logger(),
	}, nil
}

// Fetch performs a GET request and returns the body of a 2xx response.
// Cancelling ctx abandons the request.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, ErrorClass: ErrorClassNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	host := req.URL.Host
	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(host).Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Debug().Str("url", url).Msg("Fetching upstream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(host, "network_error").Inc()
		return nil, c.fail(&FetchError{URL: url, ErrorClass: ErrorClassNetwork, Err: err})
	}
	defer resp.Body.Close()

	upstreamRequestsTotal.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, c.fail(statusError(url, resp.StatusCode))
	}

	body, err := readLimited(resp.Body, c.config.MaxBodyBytes)
	if err != nil {
		class := ErrorClassBody
		if ctx.Err() != nil {
			class = ErrorClassNetwork
		}
		return nil, c.fail(&FetchError{URL: url, StatusCode: 0, ErrorClass: class, Err: err})
	}

	c.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched upstream")

	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) fail(err *FetchError) error {
	upstreamErrorsTotal.WithLabelValues(string(err.ErrorClass)).Inc()

	event := c.logger.Warn()
	if errors.Is(err, context.Canceled) {
		event = c.logger.Debug()
	}
	event.Err(err).Str("url", err.URL).Str("error_class", string(err.ErrorClass)).Msg("Upstream fetch failed")

	return err
}

// readLimited reads at most limit bytes and fails with ErrBodyTooLarge beyond that.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, limit)
	}
	return body, nil
}
