package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-playlist-matcher/internal/matching"
)

// RunRepository handles match run database operations.
type RunRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a match run with its ranked results in one transaction.
// A nil run ID is replaced with a new one.
func (r *RunRepository) Create(ctx context.Context, run *MatchRun) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Insert run
	runQuery := `
		INSERT INTO match_runs (id, playlist_id, user_id, playlist_type, song_count, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	err = tx.QueryRow(ctx, runQuery,
		run.ID,
		run.PlaylistID,
		run.UserID,
		string(run.PlaylistType),
		run.SongCount,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting match run: %w", err)
	}

	// Insert results
	if len(run.Results) > 0 {
		cols, err := resultColumns(run.Results)
		if err != nil {
			return err
		}

		resultsQuery := `
			INSERT INTO match_results (run_id, rank, track_id, artist, title, similarity,
				scores, contradictions, veto_applied, veto_reason, explanation)
			SELECT $1, rk, t, a, ti, sim, sc::jsonb, con::jsonb, v, vr, ex
			FROM unnest($2::int[], $3::text[], $4::text[], $5::text[], $6::float8[],
				$7::text[], $8::text[], $9::bool[], $10::text[], $11::text[])
				AS u(rk, t, a, ti, sim, sc, con, v, vr, ex)
		`
		_, err = tx.Exec(ctx, resultsQuery, run.ID,
			cols.ranks, cols.trackIDs, cols.artists, cols.titles, cols.similarities,
			cols.scores, cols.contradictions, cols.vetoed, cols.reasons, cols.explanations,
		)
		if err != nil {
			return fmt.Errorf("inserting match results: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// resultRows holds match results split into per-column arrays for unnest.
type resultRows struct {
	ranks          []int
	trackIDs       []string
	artists        []string
	titles         []string
	similarities   []float64
	scores         []string
	contradictions []string
	vetoed         []bool
	reasons        []string
	explanations   []string
}

func resultColumns(results []matching.MatchResult) (resultRows, error) {
	n := len(results)
	cols := resultRows{
		ranks:          make([]int, n),
		trackIDs:       make([]string, n),
		artists:        make([]string, n),
		titles:         make([]string, n),
		similarities:   make([]float64, n),
		scores:         make([]string, n),
		contradictions: make([]string, n),
		vetoed:         make([]bool, n),
		reasons:        make([]string, n),
		explanations:   make([]string, n),
	}

	for i, res := range results {
		scores, err := json.Marshal(res.Scores)
		if err != nil {
			return resultRows{}, fmt.Errorf("encoding scores for %s: %w", res.Track.ID, err)
		}
		contradictions := res.Contradictions
		if contradictions == nil {
			contradictions = []string{}
		}
		con, err := json.Marshal(contradictions)
		if err != nil {
			return resultRows{}, fmt.Errorf("encoding contradictions for %s: %w", res.Track.ID, err)
		}

		cols.ranks[i] = i + 1
		cols.trackIDs[i] = res.Track.ID
		cols.artists[i] = res.Track.Artist
		cols.titles[i] = res.Track.Title
		cols.similarities[i] = res.Similarity
		cols.scores[i] = string(scores)
		cols.contradictions[i] = string(con)
		cols.vetoed[i] = res.VetoApplied
		cols.reasons[i] = res.VetoReason
		cols.explanations[i] = res.Explanation
	}
	return cols, nil
}

// Latest retrieves the most recent run for a playlist, with its results.
func (r *RunRepository) Latest(ctx context.Context, playlistID string) (*MatchRun, error) {
	query := `
		SELECT id, playlist_id, user_id, playlist_type, song_count, created_at
		FROM match_runs
		WHERE playlist_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		run MatchRun
		pt  string
	)
	err := r.pool.QueryRow(ctx, query, playlistID).Scan(
		&run.ID,
		&run.PlaylistID,
		&run.UserID,
		&pt,
		&run.SongCount,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying match run: %w", err)
	}
	run.PlaylistType = matching.PlaylistType(pt)

	results, err := r.results(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Results = results
	return &run, nil
}

// results retrieves the ranked results of a run.
func (r *RunRepository) results(ctx context.Context, runID uuid.UUID) ([]matching.MatchResult, error) {
	query := `
		SELECT track_id, artist, title, similarity, scores, contradictions,
			veto_applied, veto_reason, explanation
		FROM match_results
		WHERE run_id = $1
		ORDER BY rank
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying match results: %w", err)
	}
	defer rows.Close()

	var results []matching.MatchResult
	for rows.Next() {
		var (
			res      matching.MatchResult
			scores   []byte
			conflict []byte
		)
		if err := rows.Scan(
			&res.Track.ID,
			&res.Track.Artist,
			&res.Track.Title,
			&res.Similarity,
			&scores,
			&conflict,
			&res.VetoApplied,
			&res.VetoReason,
			&res.Explanation,
		); err != nil {
			return nil, fmt.Errorf("scanning match result: %w", err)
		}
		if err := json.Unmarshal(scores, &res.Scores); err != nil {
			return nil, fmt.Errorf("decoding scores for %s: %w", res.Track.ID, err)
		}
		if err := json.Unmarshal(conflict, &res.Contradictions); err != nil {
			return nil, fmt.Errorf("decoding contradictions for %s: %w", res.Track.ID, err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// DeleteForPlaylist removes all runs for a playlist.
func (r *RunRepository) DeleteForPlaylist(ctx context.Context, playlistID string) error {
	query := `DELETE FROM match_runs WHERE playlist_id = $1`
	if _, err := r.pool.Exec(ctx, query, playlistID); err != nil {
		return fmt.Errorf("deleting match runs: %w", err)
	}
	return nil
}
