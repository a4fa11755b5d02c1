// Package engine is the JSON-over-HTTP client for the remote optimization
// engine. Calls pass through a shared token-bucket limiter and circuit
// breaker, and deterministic calls may be served from the response cache.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/scenariodesk/internal/clientdata"
	"github.com/aristath/scenariodesk/internal/domain"
	"github.com/aristath/scenariodesk/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Engine endpoints.
const (
	EndpointScenario   = "/recommendation/scenario"
	EndpointMonteCarlo = "/simulation/monte_carlo"
	EndpointBacktest   = "/simulation/backtest"
	EndpointStatus     = "/"
)

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// Options configures the client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RPS      float64
	Burst    int
	CacheTTL time.Duration
}

// Client calls the engine.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *clientdata.Repository // nil disables caching
	cacheTTL   time.Duration
	metrics    *metrics.Registry // nil disables instrumentation
	log        zerolog.Logger
}

// NewClient creates an engine client. cache and m are optional.
func NewClient(opts Options, cache *clientdata.Repository, m *metrics.Registry, log zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, opts.Burst),
		cache:      cache,
		cacheTTL:   opts.CacheTTL,
		metrics:    m,
		log:        log.With().Str("component", "engine_client").Logger(),
	}
	c.breaker = gobreaker.NewCircuitBreaker(c.breakerSettings())
	return c
}

func (c *Client) breakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:     "engine",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// The engine rejecting a request is not an outage.
		IsSuccessful: func(err error) bool {
			var se *domain.ServiceError
			if errors.As(err, &se) {
				return se.Status < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			if c.metrics != nil {
				c.metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	}
}

// BreakerState reports the circuit breaker's current state.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// post sends body to endpoint and decodes a 2xx answer into out.
func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
	}
	return c.do(ctx, http.MethodPost, endpoint, payload, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	start := time.Now()
	err := c.execute(ctx, method, endpoint, payload, out)
	c.observe(endpoint, start, err)
	return err
}

func (c *Client) execute(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.NetworkError{Endpoint: endpoint, Err: err}
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		return c.roundTrip(ctx, method, endpoint, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.NetworkError{Endpoint: endpoint, Err: err}
		}
		return err
	}

	if err := json.Unmarshal(raw.([]byte), out); err != nil {
		return domain.Malformed(endpoint, "cannot decode body: %v", err)
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			var mre *domain.MalformedResponseError
			if errors.As(err, &mre) {
				return domain.Malformed(endpoint, "%s", mre.Reason)
			}
			return err
		}
	}
	return nil
}

// validator is implemented by results with shape invariants. A result that
// fails it is never returned or cached.
type validator interface {
	Validate() error
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ServiceError{Endpoint: endpoint, Status: resp.StatusCode, Detail: extractDetail(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// extractDetail pulls the "detail" field out of a FastAPI error body,
// falling back to the trimmed body.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		return string(envelope.Detail)
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) observe(endpoint string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := outcomeOf(err)

	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("endpoint", endpoint).Str("outcome", outcome).Dur("duration", elapsed).Msg("Engine call finished")

	if c.metrics == nil {
		return
	}
	c.metrics.EngineRequests.WithLabelValues(endpoint, outcome).Inc()
	c.metrics.EngineDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if outcome == "malformed" {
		c.metrics.Malformed.WithLabelValues(endpoint).Inc()
	}
}

func outcomeOf(err error) string {
	var (
		se *domain.ServiceError
		ne *domain.NetworkError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		return "service_error"
	case errors.As(err, &ne):
		return "network_error"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}
