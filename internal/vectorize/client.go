package vectorize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/matching"
	"github.com/justestif/go-playlist-matcher/internal/metrics"
)

const userAgent = "playlist-matcher/1.0"

// Endpoint paths.
const (
	EndpointText           = "/vectorize/text"
	EndpointSong           = "/vectorize/song"
	EndpointPlaylist       = "/vectorize/playlist"
	EndpointSentiment      = "/analyze/sentiment"
	EndpointMoodDimensions = "/analyze/mood_dimensions"
)

// maxRetryAfter caps how long a Retry-After header can make us wait.
const maxRetryAfter = 30 * time.Second

var _ matching.AnalysisService = (*Client)(nil)

// StatusError is a non-2xx response from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// callerDoneError marks a failure caused by the caller's context ending.
type callerDoneError struct {
	err error
}

func (e *callerDoneError) Error() string { return e.err.Error() }

func (e *callerDoneError) Unwrap() error { return e.err }

// retryable reports whether the service may succeed on a later attempt.
func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client calls the analysis service. It retries transient failures, limits
// its request rate and stops calling the service while it keeps failing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]byte]
	maxRetries int
	baseDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. OAuth settings in Config are
// ignored when this is used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client from cfg.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: newHTTPClient(cfg),
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	c.cb = newBreaker(cfg.Breaker)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newHTTPClient(cfg Config) *http.Client {
	base := &http.Client{Timeout: cfg.Timeout}
	if cfg.OAuth == nil {
		return base
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		TokenURL:     cfg.OAuth.TokenURL,
		Scopes:       cfg.OAuth.Scopes,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := cc.Client(ctx)
	hc.Timeout = cfg.Timeout
	return hc
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "analysis-service",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", ratio).
					Msg("opening analysis service circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.Set(stateValue(to))
		},
		// Only retryable service failures count against the circuit.
		IsSuccessful: func(err error) bool {
			var done *callerDoneError
			if err == nil || errors.As(err, &done) || errors.Is(err, ErrRateLimited) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return !se.retryable()
			}
			return false
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

type songRequest struct {
	Analyses []analysis.Song `json:"analyses"`
}

type songResponse struct {
	Results []embeddingResponse `json:"results"`
}

type playlistRequest struct {
	Playlist analysis.Playlist `json:"playlist"`
}

// VectorizeText embeds free text.
func (c *Client) VectorizeText(ctx context.Context, text string) ([]float64, error) {
	var resp embeddingResponse
	if err := c.post(ctx, EndpointText, textRequest{Text: text}, &resp); err != nil {
		return nil, fmt.Errorf("vectorizing text: %w", err)
	}
	return resp.Embedding, nil
}

// VectorizeSong embeds a song's analysis.
func (c *Client) VectorizeSong(ctx context.Context, song analysis.Song) ([]float64, error) {
	var resp songResponse
	if err := c.post(ctx, EndpointSong, songRequest{Analyses: []analysis.Song{song}}, &resp); err != nil {
		return nil, fmt.Errorf("vectorizing song: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("vectorizing song: %w", ErrEmptyResult)
	}
	return resp.Results[0].Embedding, nil
}

// VectorizePlaylist embeds a playlist's analysis.
func (c *Client) VectorizePlaylist(ctx context.Context, playlist analysis.Playlist) ([]float64, error) {
	var resp embeddingResponse
	if err := c.post(ctx, EndpointPlaylist, playlistRequest{Playlist: playlist}, &resp); err != nil {
		return nil, fmt.Errorf("vectorizing playlist: %w", err)
	}
	return resp.Embedding, nil
}

// AnalyzeSentiment scores text as positive, negative and neutral.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (analysis.SentimentScore, error) {
	var resp analysis.SentimentScore
	if err := c.post(ctx, EndpointSentiment, textRequest{Text: text}, &resp); err != nil {
		return analysis.SentimentScore{}, fmt.Errorf("analyzing sentiment: %w", err)
	}
	return resp, nil
}

// AnalyzeMoodDimensions estimates valence, arousal and dominance for text.
func (c *Client) AnalyzeMoodDimensions(ctx context.Context, text string) (analysis.MoodDimensions, error) {
	var resp analysis.MoodDimensions
	if err := c.post(ctx, EndpointMoodDimensions, textRequest{Text: text}, &resp); err != nil {
		return analysis.MoodDimensions{}, fmt.Errorf("analyzing mood dimensions: %w", err)
	}
	return resp, nil
}

// post sends one logical call through the circuit breaker and decodes the
// response into out.
func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	start := time.Now()
	respBody, err := c.cb.Execute(func() ([]byte, error) {
		b, err := c.doRequest(ctx, endpoint, body)
		if err != nil && ctx.Err() != nil {
			return nil, &callerDoneError{err: err}
		}
		return b, err
	})
	metrics.AnalysisRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.AnalysisRequests.WithLabelValues(endpoint, "rejected").Inc()
			return ErrCircuitOpen
		}
		metrics.AnalysisRequests.WithLabelValues(endpoint, "error").Inc()
		return err
	}
	metrics.AnalysisRequests.WithLabelValues(endpoint, "success").Inc()

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", endpoint, err)
	}
	return nil
}

// doRequest performs a POST with retry on 429, 5xx and transport errors.
// Delays double from the base delay; a Retry-After header overrides the
// delay for the next attempt.
func (c *Client) doRequest(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	var lastErr error
	delay := c.baseDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logging.Ctx(ctx).Debug().
				Err(lastErr).
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying analysis request")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if _, ok := ctx.Deadline(); ok {
					return nil, ErrRateLimited
				}
				return nil, fmt.Errorf("waiting for rate limiter: %w", err)
			}
		}

		respBody, retryAfter, err := c.doSingleRequest(ctx, endpoint, body)
		if err == nil {
			return respBody, nil
		}
		if !c.shouldRetry(ctx, err) {
			return nil, err
		}
		lastErr = err
		if retryAfter > 0 {
			delay = retryAfter
		}
	}

	return nil, lastErr
}

func (c *Client) shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// doSingleRequest performs a single HTTP request and returns the body plus
// any Retry-After delay the service asked for.
func (c *Client) doSingleRequest(ctx context.Context, endpoint string, body []byte) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &StatusError{
			StatusCode: resp.StatusCode,
			Body:       msg,
		}
	}
	return respBody, 0, nil
}

// parseRetryAfter reads a delay in seconds. HTTP dates are not supported.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}
