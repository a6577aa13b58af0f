package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-playlist-matcher/internal/vectorize"
)

var _ vectorize.EmbeddingStore = (*EmbeddingRepository)(nil)

// EmbeddingRepository stores text embeddings keyed by a hash of the text.
// Rows older than ttl are treated as missing and refreshed on the next put.
type EmbeddingRepository struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// stale reports whether a row fetched at the given time has expired.
func (r *EmbeddingRepository) stale(fetchedAt time.Time) bool {
	return r.ttl > 0 && r.now().Sub(fetchedAt) > r.ttl
}

// GetEmbedding returns the stored embedding for text. The boolean is false
// when no fresh row exists.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, text string) ([]float64, bool, error) {
	query := `
		SELECT embedding, fetched_at
		FROM text_embeddings
		WHERE text_hash = $1
	`
	var (
		embedding []float64
		fetchedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, hashText(text)).Scan(&embedding, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying text embedding: %w", err)
	}
	if r.stale(fetchedAt) {
		return nil, false, nil
	}
	return embedding, true, nil
}

// PutEmbedding creates or refreshes the embedding for text.
func (r *EmbeddingRepository) PutEmbedding(ctx context.Context, text string, embedding []float64) error {
	query := `
		INSERT INTO text_embeddings (text_hash, text, embedding, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (text_hash) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := r.pool.Exec(ctx, query, hashText(text), text, embedding, r.now()); err != nil {
		return fmt.Errorf("upserting text embedding: %w", err)
	}
	return nil
}

// DeleteStale removes embeddings fetched before olderThan and returns the
// number of rows removed.
func (r *EmbeddingRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM text_embeddings WHERE fetched_at < $1`
	result, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("deleting stale embeddings: %w", err)
	}
	return result.RowsAffected(), nil
}
