// Package config loads layered configuration: struct defaults, an optional
// YAML file, then MATCHER_ environment variables.
package config

import (
	"time"

	"github.com/justestif/go-playlist-matcher/internal/clustering"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/vectorize"
)

// Config is the full application configuration.
type Config struct {
	Analysis AnalysisConfig `koanf:"analysis"`
	Matching MatchingConfig `koanf:"matching"`
	Cache    CacheConfig    `koanf:"cache"`
	Grouping GroupingConfig `koanf:"grouping"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// AnalysisConfig configures the analysis service client.
type AnalysisConfig struct {
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0,lte=10"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gte=0"`
	RateLimit      float64       `koanf:"rate_limit" validate:"gte=0"` // requests/second, 0 disables
	Burst          int           `koanf:"burst" validate:"gte=1"`
	Breaker        BreakerConfig `koanf:"breaker"`
	OAuth          OAuthConfig   `koanf:"oauth"`
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// OAuthConfig enables client-credentials auth when ClientID is set.
type OAuthConfig struct {
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret" validate:"required_with=ClientID"`
	TokenURL     string   `koanf:"token_url" validate:"required_with=ClientID"`
	Scopes       []string `koanf:"scopes"`
}

// MatchingConfig configures the engine.
type MatchingConfig struct {
	Concurrency     int                           `koanf:"concurrency" validate:"gte=1,lte=256"`
	SongTimeout     time.Duration                 `koanf:"song_timeout" validate:"gte=0"` // 0 disables
	OfflineFallback bool                          `koanf:"offline_fallback"`
	FeatureDims     int                           `koanf:"feature_dims" validate:"gte=0"` // 0 means len/5
	ProfileWeights  map[string]map[string]float64 `koanf:"profile_weights"`
}

// CacheConfig configures the text feature cache.
type CacheConfig struct {
	TTL          time.Duration `koanf:"ttl" validate:"gte=0"`
	MaxEntries   int           `koanf:"max_entries" validate:"gte=0"`
	EmbeddingTTL time.Duration `koanf:"embedding_ttl" validate:"gte=0"` // persistent store, 0 never expires
}

// GroupingConfig configures mood grouping of results.
type GroupingConfig struct {
	NumGroups    int `koanf:"num_groups" validate:"gte=1,lte=12"`
	MinGroupSize int `koanf:"min_group_size" validate:"gte=1"`
}

// DatabaseConfig configures PostgreSQL. An empty URL disables persistence.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxSongs        int           `koanf:"max_songs" validate:"gte=1"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	client := vectorize.DefaultConfig("http://localhost:8000")
	grouping := clustering.DefaultConfig()

	return &Config{
		Analysis: AnalysisConfig{
			BaseURL:        client.BaseURL,
			Timeout:        client.Timeout,
			MaxRetries:     client.MaxRetries,
			RetryBaseDelay: client.RetryBaseDelay,
			RateLimit:      client.RateLimit,
			Burst:          client.Burst,
			Breaker: BreakerConfig{
				MaxRequests:  client.Breaker.MaxRequests,
				Interval:     client.Breaker.Interval,
				Timeout:      client.Breaker.Timeout,
				MinRequests:  client.Breaker.MinRequests,
				FailureRatio: client.Breaker.FailureRatio,
			},
		},
		Matching: MatchingConfig{
			Concurrency: 8,
		},
		Cache: CacheConfig{
			TTL:          time.Hour,
			MaxEntries:   10000,
			EmbeddingTTL: 30 * 24 * time.Hour,
		},
		Grouping: GroupingConfig{
			NumGroups:    grouping.NumGroups,
			MinGroupSize: grouping.MinGroupSize,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxSongs:        2000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Client returns the analysis client configuration.
func (c AnalysisConfig) Client() vectorize.Config {
	cfg := vectorize.Config{
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		MaxRetries:     c.MaxRetries,
		RetryBaseDelay: c.RetryBaseDelay,
		RateLimit:      c.RateLimit,
		Burst:          c.Burst,
		Breaker: vectorize.BreakerConfig{
			MaxRequests:  c.Breaker.MaxRequests,
			Interval:     c.Breaker.Interval,
			Timeout:      c.Breaker.Timeout,
			MinRequests:  c.Breaker.MinRequests,
			FailureRatio: c.Breaker.FailureRatio,
		},
	}
	if c.OAuth.ClientID != "" {
		cfg.OAuth = &vectorize.OAuthConfig{
			ClientID:     c.OAuth.ClientID,
			ClientSecret: c.OAuth.ClientSecret,
			TokenURL:     c.OAuth.TokenURL,
			Scopes:       c.OAuth.Scopes,
		}
	}
	return cfg
}

// Clustering returns the mood grouping configuration.
func (c GroupingConfig) Clustering() clustering.Config {
	return clustering.Config{NumGroups: c.NumGroups, MinGroupSize: c.MinGroupSize}
}

// Logger returns the logging configuration.
func (c LoggingConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}
