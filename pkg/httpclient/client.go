// Package httpclient implements the JSON-over-HTTP transport used by the
// catalog API client. Every call is a single fresh round trip: no retries,
// no caching, no timeout beyond the configured http.Client timeout.
package httpclient

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/alper4283/intern-project-product-review/pkg/logger"
)

// Doer executes a single HTTP request. Satisfied by *http.Client and by the
// breaker wrapper in this package.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds transport configuration.
type Config struct {
	// BaseURL is the fixed backend base URL, e.g. "http://localhost:8080".
	BaseURL string

	// Timeout is the whole-request timeout of the underlying http.Client.
	Timeout time.Duration

	// MaxConnsPerHost bounds the connection pool.
	MaxConnsPerHost int

	// UserAgent is sent on every request when non-empty.
	UserAgent string
}

// DefaultConfig returns sensible transport defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		MaxConnsPerHost: 10,
		UserAgent:       "productreview-client/1.0",
	}
}

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_http_requests_total",
			Help: "Total number of backend HTTP requests by method and status",
		},
		[]string{"method", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_http_request_duration_seconds",
			Help:    "Backend HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
}

// Client issues JSON requests against a fixed base URL and normalizes
// failures into the apierrors taxonomy.
type Client struct {
	doer    Doer
	config  Config
	tokens  TokenSource
	log     *slog.Logger
	tracer  trace.Tracer
	baseURL string
}

// NewPooledDoer returns the default pooled http.Client used by New.
func NewPooledDoer(cfg Config) Doer {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}

// New creates a transport with a pooled http.Client. The token source may be
// nil, in which case all requests are sent unauthenticated.
func New(cfg Config, tokens TokenSource, log *slog.Logger) *Client {
	return NewWithDoer(cfg, NewPooledDoer(cfg), tokens, log)
}

// NewWithDoer creates a transport that executes requests through d. Used to
// engage the circuit breaker wrapper and to inject fakes in tests.
func NewWithDoer(cfg Config, d Doer, tokens TokenSource, log *slog.Logger) *Client {
	return &Client{
		doer:    d,
		config:  cfg,
		tokens:  tokens,
		log:     log,
		tracer:  otel.Tracer("httpclient"),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes one request with the standard headers attached and records
// metrics. Transport-level failures are returned as-is for the JSON layer
// to normalize.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, time.Duration, error) {
	requestID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, requestID)

	ctx, span := c.tracer.Start(ctx, "http "+req.Method)
	defer span.End()

	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	elapsed := time.Since(start)

	requestDuration.WithLabelValues(req.Method).Observe(elapsed.Seconds())

	log := logger.WithContext(ctx, c.log)
	if err != nil {
		requestsTotal.WithLabelValues(req.Method, "error").Inc()
		log.DebugContext(ctx, "request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return nil, elapsed, err
	}

	requestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	log.DebugContext(ctx, "request completed",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", elapsed),
	)
	return resp, elapsed, nil
}
