// Package clustering groups ranked matches by mood using k-means over
// valence, arousal and dominance.
package clustering

import (
	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/matching"
)

// Config holds mood grouping parameters.
type Config struct {
	NumGroups    int // Number of k-means clusters (default: 3)
	MinGroupSize int // Smaller clusters are returned as ungrouped
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumGroups:    3,
		MinGroupSize: 2,
	}
}

// MoodGroup is a set of matches with a similar mood.
type MoodGroup struct {
	Name        string                  `json:"name"`        // e.g. "Calm & Warm (Assertive)"
	Description string                  `json:"description"` // one-line summary of the quadrant
	Centroid    analysis.MoodDimensions `json:"centroid"`    // average mood of the group
	Results     []matching.MatchResult  `json:"results"`     // best match first
}
