package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/matching"
)

// PlaylistAnalysis is a stored playlist analysis owned by a user.
type PlaylistAnalysis struct {
	UserID    string
	Playlist  analysis.Playlist
	UpdatedAt time.Time
}

// SongAnalysis is a stored song analysis in a user's library.
type SongAnalysis struct {
	UserID     string
	Song       analysis.Song
	AnalyzedAt time.Time
}

// MatchRun is one persisted ranking of songs against a playlist.
type MatchRun struct {
	ID           uuid.UUID
	PlaylistID   string
	UserID       string
	PlaylistType matching.PlaylistType
	SongCount    int // songs evaluated, before any limit
	CreatedAt    time.Time
	Results      []matching.MatchResult // ordered by rank
}
