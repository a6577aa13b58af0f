// Package vectorize is the HTTP client for the analysis service that turns
// text, songs and playlists into embeddings, sentiment and mood dimensions.
package vectorize

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors.
var (
	// ErrMissingBaseURL is returned when no service URL is configured.
	ErrMissingBaseURL = errors.New("missing analysis service base URL")

	// ErrCircuitOpen is returned without calling the service while the
	// circuit breaker is open.
	ErrCircuitOpen = errors.New("analysis service circuit open")

	// ErrUnexpectedStatus wraps non-2xx responses; see StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrEmptyResult is returned when the service answers without a result.
	ErrEmptyResult = errors.New("empty result")

	// ErrRateLimited is returned when the caller's deadline would pass
	// before the client-side rate limiter admits the request.
	ErrRateLimited = fmt.Errorf("rate limit wait exceeds deadline: %w", context.DeadlineExceeded)
)

// Config holds analysis service client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Retries for 429, 5xx and transport errors. Delays double from
	// RetryBaseDelay unless the service sends Retry-After.
	MaxRetries     int
	RetryBaseDelay time.Duration

	// Client-side rate limit in requests per second. Zero disables it.
	RateLimit float64
	Burst     int

	Breaker BreakerConfig

	// OAuth enables client-credentials auth when non-nil.
	OAuth *OAuthConfig
}

// BreakerConfig configures the circuit breaker around the service.
type BreakerConfig struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state count reset period
	Timeout      time.Duration // open duration before probing
	MinRequests  uint32        // requests needed before the breaker may trip
	FailureRatio float64       // trip at or above this failure ratio
}

// OAuthConfig holds client-credentials settings.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// DefaultConfig returns the default client configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		Timeout:        15 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 500 * time.Millisecond,
		RateLimit:      20,
		Burst:          10,
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
	}
}
