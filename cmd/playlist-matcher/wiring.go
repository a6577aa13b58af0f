package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justestif/go-playlist-matcher/internal/config"
	"github.com/justestif/go-playlist-matcher/internal/db"
	"github.com/justestif/go-playlist-matcher/internal/matching"
	"github.com/justestif/go-playlist-matcher/internal/recommend"
	"github.com/justestif/go-playlist-matcher/internal/vectorize"
)

var errNoDatabase = errors.New("database.url is not configured")

// openDB connects to PostgreSQL, or returns nil when no URL is configured.
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}
	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return database, nil
}

// requireDB connects to PostgreSQL and fails when no URL is configured.
func requireDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if database == nil {
		return nil, errNoDatabase
	}
	return database, nil
}

// newEngine builds the analysis client, its cache and the matching engine.
// database may be nil.
func newEngine(cfg *config.Config, database *db.DB) (*matching.Engine, error) {
	client, err := vectorize.NewClient(cfg.Analysis.Client())
	if err != nil {
		return nil, fmt.Errorf("creating analysis client: %w", err)
	}

	cacheOpts := []vectorize.CacheOption{
		vectorize.WithTTL(cfg.Cache.TTL),
		vectorize.WithMaxEntries(cfg.Cache.MaxEntries),
		vectorize.WithFetchTimeout(cfg.Analysis.Timeout * time.Duration(cfg.Analysis.MaxRetries+1)),
	}
	if database != nil {
		cacheOpts = append(cacheOpts, vectorize.WithEmbeddingStore(database.Embeddings(cfg.Cache.EmbeddingTTL)))
	}
	svc := vectorize.NewCachedClient(client, cacheOpts...)

	tuning, err := matching.DefaultTuning().WithProfileOverrides(cfg.Matching.ProfileWeights)
	if err != nil {
		return nil, fmt.Errorf("applying profile weights: %w", err)
	}

	return matching.NewEngine(svc,
		matching.WithTuning(tuning),
		matching.WithConcurrency(cfg.Matching.Concurrency),
		matching.WithSongTimeout(cfg.Matching.SongTimeout),
		matching.WithOfflineFallback(cfg.Matching.OfflineFallback),
		matching.WithFeatureDims(cfg.Matching.FeatureDims),
	), nil
}

// newRecommender wires the recommendation service. database may be nil.
func newRecommender(cfg *config.Config, database *db.DB) (*recommend.Service, error) {
	engine, err := newEngine(cfg, database)
	if err != nil {
		return nil, err
	}

	opts := []recommend.Option{recommend.WithGroupConfig(cfg.Grouping.Clustering())}
	if database != nil {
		opts = append(opts, recommend.WithStore(recommend.NewDBStore(database)))
	}
	return recommend.New(engine, opts...), nil
}
