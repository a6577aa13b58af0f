// Package recommend runs the matching pipeline for a playlist: load
// analyses, rank songs, explain, group by mood and persist the run.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/clustering"
	"github.com/justestif/go-playlist-matcher/internal/db"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/matching"
)

// Common errors.
var (
	ErrNoStore          = errors.New("no analysis store configured")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrNoRuns           = errors.New("no match runs for playlist")
)

// DefaultLimit caps the number of results returned when none is requested.
const DefaultLimit = 50

// Store loads analyses and persists match runs.
type Store interface {
	Playlist(ctx context.Context, playlistID string) (*db.PlaylistAnalysis, error)
	Songs(ctx context.Context, userID string, exclude []string) ([]analysis.Song, error)
	SaveRun(ctx context.Context, run *db.MatchRun) error
	LatestRun(ctx context.Context, playlistID string) (*db.MatchRun, error)
}

// Options controls the shape of a recommendation.
type Options struct {
	Limit   int  // 0 uses DefaultLimit, negative returns everything
	Explain bool // attach a human-readable explanation to each result
	Group   bool // cluster the returned results by mood
}

// Request asks for recommendations for a stored playlist.
type Request struct {
	PlaylistID string
	UserID     string // defaults to the playlist owner
	Options
}

// Result is a ranked, optionally grouped, set of matches.
type Result struct {
	RunID        uuid.UUID              `json:"run_id,omitempty"`
	PlaylistID   string                 `json:"playlist_id"`
	PlaylistType matching.PlaylistType  `json:"playlist_type"`
	SongCount    int                    `json:"song_count"`
	Results      []matching.MatchResult `json:"results"`
	Groups       []clustering.MoodGroup `json:"groups,omitempty"`
	Ungrouped    []matching.MatchResult `json:"ungrouped,omitempty"`
	CreatedAt    time.Time              `json:"created_at,omitempty"`
}

// Service produces recommendations.
type Service struct {
	engine   *matching.Engine
	store    Store
	groupCfg clustering.Config
}

// Option configures a Service.
type Option func(*Service)

// WithStore sets the store used by Recommend and LatestRun.
func WithStore(s Store) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithGroupConfig sets the mood grouping parameters.
func WithGroupConfig(cfg clustering.Config) Option {
	return func(svc *Service) {
		svc.groupCfg = cfg
	}
}

// New creates a recommendation service.
func New(engine *matching.Engine, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		groupCfg: clustering.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasStore reports whether stored playlists can be used.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// Recommend ranks the user's stored songs against a stored playlist and
// persists the run. Songs already on the playlist are excluded.
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}

	pa, err := s.store.Playlist(ctx, req.PlaylistID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading playlist: %w", err)
	}

	userID := req.UserID
	if userID == "" {
		userID = pa.UserID
	}

	songs, err := s.store.Songs(ctx, userID, pa.Playlist.TrackIDs)
	if err != nil {
		return nil, fmt.Errorf("loading songs: %w", err)
	}

	res, err := s.MatchInline(ctx, pa.Playlist, songs, req.Options)
	if err != nil {
		return nil, err
	}

	run := &db.MatchRun{
		PlaylistID:   req.PlaylistID,
		UserID:       userID,
		PlaylistType: res.PlaylistType,
		SongCount:    res.SongCount,
		Results:      res.Results,
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("saving match run: %w", err)
	}
	res.RunID = run.ID
	res.CreatedAt = run.CreatedAt

	logging.Ctx(ctx).Info().
		Str("run_id", run.ID.String()).
		Str("playlist_id", req.PlaylistID).
		Str("user_id", userID).
		Int("results", len(res.Results)).
		Msg("recommendation saved")

	return res, nil
}

// MatchInline ranks songs against a playlist without touching the store.
func (s *Service) MatchInline(ctx context.Context, playlist analysis.Playlist, songs []analysis.Song, opts Options) (*Result, error) {
	results, err := s.engine.Match(ctx, playlist, songs)
	if err != nil {
		return nil, fmt.Errorf("matching songs: %w", err)
	}

	pt := matching.DeterminePlaylistType(playlist)
	res := &Result{
		PlaylistID:   playlist.ID,
		PlaylistType: pt,
		SongCount:    len(songs),
		Results:      truncate(results, opts.Limit),
	}

	if opts.Explain {
		for i := range res.Results {
			res.Results[i].Explanation = matching.GenerateMatchExplanation(res.Results[i], pt)
		}
	}

	if opts.Group {
		dims := s.moodDimensions(ctx, res.Results, songs)
		res.Groups, res.Ungrouped = clustering.GroupByMood(res.Results, dims, s.groupCfg)
	}

	return res, nil
}

// LatestRun returns the most recent persisted run for a playlist.
func (s *Service) LatestRun(ctx context.Context, playlistID string) (*Result, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}

	run, err := s.store.LatestRun(ctx, playlistID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest run: %w", err)
	}

	return &Result{
		RunID:        run.ID,
		PlaylistID:   run.PlaylistID,
		PlaylistType: run.PlaylistType,
		SongCount:    run.SongCount,
		Results:      run.Results,
		CreatedAt:    run.CreatedAt,
	}, nil
}

// moodDimensions fetches VAD dimensions for each result's song mood text.
func (s *Service) moodDimensions(ctx context.Context, results []matching.MatchResult, songs []analysis.Song) []analysis.MoodDimensions {
	byTrack := make(map[analysis.Track]analysis.Song, len(songs))
	for _, song := range songs {
		byTrack[song.Track] = song
	}

	dims := make([]analysis.MoodDimensions, len(results))
	for i, r := range results {
		song, ok := byTrack[r.Track]
		if !ok {
			dims[i] = analysis.DefaultMoodDimensions
			continue
		}
		dims[i] = s.engine.MoodDimensions(ctx, matching.ExtractMoodText(song.Analysis))
	}
	return dims
}

func truncate(results []matching.MatchResult, limit int) []matching.MatchResult {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || len(results) <= limit {
		return results
	}
	return results[:limit]
}
