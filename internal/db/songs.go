package db

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// SongRepository handles song analysis database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

// storedSong is the JSONB document kept per song.
type storedSong struct {
	Analysis  analysis.Analysis `json:"analysis"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// UpsertBatch inserts or updates multiple song analyses efficiently.
func (r *SongRepository) UpsertBatch(ctx context.Context, userID string, songs []analysis.Song) error {
	if len(songs) == 0 {
		return nil
	}

	query := `
		INSERT INTO song_analyses (user_id, track_id, artist, title, analysis, analyzed_at)
		SELECT $1, t, a, ti, doc::jsonb, $6
		FROM unnest($2::text[], $3::text[], $4::text[], $5::text[]) AS u(t, a, ti, doc)
		ON CONFLICT (user_id, track_id) DO UPDATE SET
			artist = EXCLUDED.artist,
			title = EXCLUDED.title,
			analysis = EXCLUDED.analysis,
			analyzed_at = EXCLUDED.analyzed_at
	`

	trackIDs := make([]string, len(songs))
	artists := make([]string, len(songs))
	titles := make([]string, len(songs))
	docs := make([]string, len(songs))

	for i, s := range songs {
		if s.Track.ID == "" {
			return fmt.Errorf("song %d (%s - %s): missing track ID", i, s.Track.Artist, s.Track.Title)
		}
		doc, err := json.Marshal(storedSong{Analysis: s.Analysis, Timestamp: s.Timestamp})
		if err != nil {
			return fmt.Errorf("encoding song analysis %s: %w", s.Track.ID, err)
		}
		trackIDs[i] = s.Track.ID
		artists[i] = s.Track.Artist
		titles[i] = s.Track.Title
		docs[i] = string(doc)
	}

	_, err := r.pool.Exec(ctx, query, userID, trackIDs, artists, titles, docs, time.Now())
	if err != nil {
		return fmt.Errorf("batch upserting song analyses: %w", err)
	}
	return nil
}

// ListForUser retrieves a user's analyzed songs, skipping the excluded
// track IDs, ordered by track ID.
func (r *SongRepository) ListForUser(ctx context.Context, userID string, exclude []string) ([]analysis.Song, error) {
	if exclude == nil {
		exclude = []string{}
	}

	query := `
		SELECT track_id, artist, title, analysis
		FROM song_analyses
		WHERE user_id = $1 AND NOT (track_id = ANY($2::text[]))
		ORDER BY track_id
	`
	rows, err := r.pool.Query(ctx, query, userID, exclude)
	if err != nil {
		return nil, fmt.Errorf("querying song analyses: %w", err)
	}
	defer rows.Close()

	var songs []analysis.Song
	for rows.Next() {
		var (
			song analysis.Song
			doc  []byte
		)
		if err := rows.Scan(
			&song.Track.ID,
			&song.Track.Artist,
			&song.Track.Title,
			&doc,
		); err != nil {
			return nil, fmt.Errorf("scanning song analysis: %w", err)
		}

		var stored storedSong
		if err := json.Unmarshal(doc, &stored); err != nil {
			return nil, fmt.Errorf("decoding song analysis %s: %w", song.Track.ID, err)
		}
		song.Analysis = stored.Analysis
		song.Timestamp = stored.Timestamp
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// CountForUser returns the number of analyzed songs for a user.
func (r *SongRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM song_analyses WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting song analyses: %w", err)
	}
	return count, nil
}
