package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// PlaylistRepository handles playlist analysis database operations.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

// Upsert creates or replaces a playlist analysis.
func (r *PlaylistRepository) Upsert(ctx context.Context, userID string, p analysis.Playlist) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding playlist analysis: %w", err)
	}

	query := `
		INSERT INTO playlist_analyses (playlist_id, user_id, analysis, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (playlist_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			analysis = EXCLUDED.analysis,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, p.ID, userID, doc); err != nil {
		return fmt.Errorf("upserting playlist analysis: %w", err)
	}
	return nil
}

// Get retrieves a playlist analysis by playlist ID.
func (r *PlaylistRepository) Get(ctx context.Context, playlistID string) (*PlaylistAnalysis, error) {
	query := `
		SELECT user_id, analysis, updated_at
		FROM playlist_analyses
		WHERE playlist_id = $1
	`
	var (
		pa  PlaylistAnalysis
		doc []byte
	)
	err := r.pool.QueryRow(ctx, query, playlistID).Scan(&pa.UserID, &doc, &pa.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying playlist analysis: %w", err)
	}

	if err := json.Unmarshal(doc, &pa.Playlist); err != nil {
		return nil, fmt.Errorf("decoding playlist analysis: %w", err)
	}
	pa.Playlist.ID = playlistID
	return &pa, nil
}

// Delete removes a playlist analysis.
func (r *PlaylistRepository) Delete(ctx context.Context, playlistID string) error {
	query := `DELETE FROM playlist_analyses WHERE playlist_id = $1`
	result, err := r.pool.Exec(ctx, query, playlistID)
	if err != nil {
		return fmt.Errorf("deleting playlist analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
