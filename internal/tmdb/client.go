// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package tmdb is the upstream metadata client for The Movie Database v3 API.

Every request carries the configured api_key, runs under a fixed timeout, and
returns the upstream status code with the raw JSON body so handlers can
forward both unchanged. Only transport failures (DNS, connect, timeout, body
read) become errors; they wrap ErrUpstreamUnavailable.

Resilience:
  - Circuit breaker (sony/gobreaker) fails fast after sustained transport failures
  - Outbound token bucket (x/time/rate) keeps bursts under the upstream quota
  - No retries and no caching: each call is a fresh request
*/
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// ErrUpstreamUnavailable wraps every failure to obtain an upstream response.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// errResponseTooLarge marks a body over the size cap. The upstream did
// answer, so it does not count against the breaker.
var errResponseTooLarge = errors.New("response body exceeds size limit")

const (
	// maxResponseSize caps how much of an upstream body is buffered.
	maxResponseSize = 8 << 20

	// maxErrorBodySize caps the body excerpt attached to logs.
	maxErrorBodySize = 64 * 1024

	breakerName = "tmdb-api"
)

// Response is an upstream reply: status code plus raw JSON body.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues GET requests against the TMDB API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*Response]
	maxBody    int64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The caller's client
// timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient builds a client from configuration.
//
// Circuit breaker configuration:
//   - Max 3 trial requests in half-open state
//   - 1 minute measurement window
//   - 30 second open period before probing again
//   - Opens after 60% transport failures with at least 10 requests
func NewClient(cfg *config.TMDBConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxBody: maxResponseSize,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	c.cb = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// A caller hanging up says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, errResponseTooLarge)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return c
}

// Fetch performs GET {baseURL}{path}?{params}&api_key=... and returns the
// upstream response whatever its status. params is not modified.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (*Response, error) {
	label := endpointLabel(path)
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.RecordUpstreamRequest(label, 0, time.Since(start))
			return nil, fmt.Errorf("%w: rate limiter: %w", ErrUpstreamUnavailable, err)
		}
	}

	resp, err := c.cb.Execute(func() (*Response, error) {
		return c.do(ctx, path, params)
	})
	if err != nil {
		metrics.RecordUpstreamRequest(label, 0, time.Since(start))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("endpoint", label).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("endpoint", label).Msg("Upstream request failed")
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.RecordUpstreamRequest(label, resp.StatusCode, time.Since(start))

	if !resp.OK() {
		logging.Ctx(ctx).Debug().
			Int("status", resp.StatusCode).
			Str("endpoint", label).
			Bytes("body", truncateForLog(resp.Body)).
			Msg("Upstream returned non-2xx status")
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values) (*Response, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = append([]string(nil), v...)
	}
	query.Set("api_key", c.apiKey)

	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, redactURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstreamUnavailable, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %w (%d bytes)", ErrUpstreamUnavailable, errResponseTooLarge, c.maxBody)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// redactURLError strips the request URL (which carries the api key) from
// *url.Error values so the key never reaches logs or clients.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func truncateForLog(body []byte) []byte {
	if len(body) > maxErrorBodySize {
		return body[:maxErrorBodySize]
	}
	return body
}

var numericSegment = regexp.MustCompile(`/\d+`)

// endpointLabel collapses ids so /movie/603/reviews becomes /movie/{id}/reviews.
func endpointLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/{id}")
}

// BreakerState returns the circuit breaker state name.
func (c *Client) BreakerState() string {
	return stateToString(c.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
