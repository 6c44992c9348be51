// Package sources implements the tourism data sources: the analytics
// backend over HTTP, a direct OpenWeatherMap client and the synthetic
// generator used when the backend is unreachable.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errKeyRejected   = errors.New("api key rejected")
)

// newCircuitBreaker trips on transport and server failures only. Client
// errors such as 401 or 404 say nothing about the health of the upstream.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, tourism.ErrUnauthorized) || errors.Is(err, errUnexpected)
		},
	})
}

// keyRejected turns a 401 from a keyed third-party API into an ordinary
// failure. Only the tourism backend's 401 concerns the caller's session.
func keyRejected(provider string, err error) error {
	if errors.Is(err, tourism.ErrUnauthorized) {
		return fmt.Errorf("%s: %w", provider, errKeyRejected)
	}
	return err
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	return !errors.Is(err, tourism.ErrUnauthorized) &&
		!errors.Is(err, errUnexpected) &&
		!errors.Is(err, tourism.ErrMalformedPayload)
}

// doRequestWithResilience executes the HTTP request through a circuit
// breaker, retrying transient failures with exponential backoff, and
// returns the response body. Bodies that are not valid JSON are rejected
// with tourism.ErrMalformedPayload.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				return nil, tourism.ErrUnauthorized
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
			if readErr != nil {
				return nil, readErr
			}
			if !gjson.ValidBytes(body) {
				return nil, fmt.Errorf("%w from %s", tourism.ErrMalformedPayload, req.URL.Path)
			}
			return body, nil
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if !retryable(err) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
