// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

/*
client.go - Core TMDB API Client

This file provides the low-level HTTP client for the two TMDB v3 endpoints
the pipeline consumes:

  - /discover/movie: paginated listings filtered by genre
  - /movie/{id}?append_to_response=credits: full detail record with
    economics, credits and production companies

Resilience mechanisms:
  - Retries: every request gets up to MaxRetries attempts; any non-200
    status or transport error triggers a fixed RetryDelay backoff before
    the next attempt (context-cancellable wait)
  - Rate limiting: a token-bucket limiter (golang.org/x/time/rate) paces
    requests below TMDB's server-side limits
  - Circuit breaker: consecutive failures open the circuit and fail calls
    fast until the open timeout elapses

Exhausted retries and open-circuit rejections surface as errors wrapping
ErrUnavailable. The Fetcher in fetcher.go converts those into best-effort
degradation; this client never decides policy.
*/
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/logging"
	"github.com/mfaucher/cinemetrics/internal/metrics"
	tmdbmodels "github.com/mfaucher/cinemetrics/internal/models/tmdb"
)

// ErrUnavailable marks a request that failed after exhausting every retry,
// or was rejected by an open circuit breaker. Callers treat it as "this
// item/page is unavailable right now", not as a batch-fatal condition.
var ErrUnavailable = errors.New("tmdb: unavailable after retries")

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024 // 64KB

// Client is the TMDB v3 API client.
//
// Thread safety: safe for concurrent use; every request builds its own
// http.Request and the limiter and breaker are concurrency-safe.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a TMDB client from configuration.
func NewClient(cfg *config.TMDBConfig) *Client {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "tmdb-api",
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker,
	}
}

// DiscoverByGenre fetches one page of movie listings for a TMDB genre ID.
// Pages are 1-based.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID, page int) (*tmdbmodels.DiscoverResponse, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("page", strconv.Itoa(page))

	reqURL := fmt.Sprintf("%s/discover/movie?%s", c.baseURL, params.Encode())

	var resp tmdbmodels.DiscoverResponse
	if err := c.getJSON(ctx, "discover", reqURL, &resp); err != nil {
		return nil, fmt.Errorf("discover genre %d page %d: %w", genreID, page, err)
	}
	return &resp, nil
}

// GetMovieDetails fetches the full detail record for one movie, with the
// credits block appended in the same response.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*tmdbmodels.MovieDetails, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "credits")

	reqURL := fmt.Sprintf("%s/movie/%d?%s", c.baseURL, movieID, params.Encode())

	var details tmdbmodels.MovieDetails
	if err := c.getJSON(ctx, "details", reqURL, &details); err != nil {
		return nil, fmt.Errorf("movie %d details: %w", movieID, err)
	}
	return &details, nil
}

// Ping verifies connectivity and credentials against the configuration
// endpoint. Unlike data fetches this is not best-effort: a failed ping
// aborts the run before any pages are requested.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("api_key", c.apiKey)

	reqURL := fmt.Sprintf("%s/configuration?%s", c.baseURL, params.Encode())
	var out map[string]interface{}
	if err := c.getJSON(ctx, "configuration", reqURL, &out); err != nil {
		return fmt.Errorf("tmdb ping failed: %w", err)
	}
	return nil
}

// getJSON runs one API request through the circuit breaker and decodes the
// JSON body into result.
func (c *Client) getJSON(ctx context.Context, endpoint, reqURL string, result interface{}) error {
	start := time.Now()
	defer func() {
		metrics.TMDBRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequestWithRetry(ctx, endpoint, reqURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: circuit open: %v", ErrUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRetry performs an HTTP GET with the fixed-backoff retry
// policy: up to maxRetries attempts, retryDelay between attempts, any
// non-200 status counts as a failure. Returns the response body on the
// first 200, or an error wrapping ErrUnavailable once attempts are
// exhausted. Backoff waits are cancellable through the context.
func (c *Client) doRequestWithRetry(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			metrics.TMDBRetriesTotal.WithLabelValues(endpoint).Inc()
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.doRequest(ctx, endpoint, reqURL)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		logging.Debug().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("tmdb request failed")
	}

	metrics.TMDBFetchExhaustedTotal.WithLabelValues(endpoint).Inc()
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// doRequest performs a single HTTP GET attempt, paced by the rate limiter.
func (c *Client) doRequest(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TMDBRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.TMDBRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%s request returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response body: %w", endpoint, err)
	}
	return body, nil
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
