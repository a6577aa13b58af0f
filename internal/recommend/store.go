package recommend

import (
	"context"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/db"
)

// dbStore adapts db.DB to Store.
type dbStore struct {
	db *db.DB
}

// NewDBStore returns a Store backed by PostgreSQL.
func NewDBStore(database *db.DB) Store {
	return &dbStore{db: database}
}

func (s *dbStore) Playlist(ctx context.Context, playlistID string) (*db.PlaylistAnalysis, error) {
	return s.db.Playlists().Get(ctx, playlistID)
}

func (s *dbStore) Songs(ctx context.Context, userID string, exclude []string) ([]analysis.Song, error) {
	return s.db.Songs().ListForUser(ctx, userID, exclude)
}

func (s *dbStore) SaveRun(ctx context.Context, run *db.MatchRun) error {
	return s.db.Runs().Create(ctx, run)
}

func (s *dbStore) LatestRun(ctx context.Context, playlistID string) (*db.MatchRun, error) {
	return s.db.Runs().Latest(ctx, playlistID)
}
