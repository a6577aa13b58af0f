package matching

import (
	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// Component score names.
const (
	ThemeSimilarity        = "theme_similarity"
	MoodSimilarity         = "mood_similarity"
	MoodCompatibility      = "mood_compatibility"
	SentimentCompatibility = "sentiment_compatibility"
	IntensityMatch         = "intensity_match"
	ActivityMatch          = "activity_match"
	FitScoreSimilarity     = "fit_score_similarity"
	ThematicContradiction  = "thematic_contradiction"
)

// positiveComponents are the higher-is-better components, in display order.
var positiveComponents = []string{
	ThemeSimilarity,
	MoodSimilarity,
	MoodCompatibility,
	SentimentCompatibility,
	IntensityMatch,
	ActivityMatch,
	FitScoreSimilarity,
}

// componentOrder fixes the summation order over weights so scores are
// reproducible to the last bit.
var componentOrder = append(append([]string(nil), positiveComponents...), ThematicContradiction)

// MatchScores holds the eight component scores for one song. All are 0-1;
// ThematicContradiction is a penalty (0 none, 1 severe).
type MatchScores struct {
	ThemeSimilarity        float64 `json:"theme_similarity"`
	MoodSimilarity         float64 `json:"mood_similarity"`
	MoodCompatibility      float64 `json:"mood_compatibility"`
	SentimentCompatibility float64 `json:"sentiment_compatibility"`
	IntensityMatch         float64 `json:"intensity_match"`
	ActivityMatch          float64 `json:"activity_match"`
	FitScoreSimilarity     float64 `json:"fit_score_similarity"`
	ThematicContradiction  float64 `json:"thematic_contradiction"`
}

// Get returns the named component, or 0 for an unknown name.
func (s MatchScores) Get(name string) float64 {
	switch name {
	case ThemeSimilarity:
		return s.ThemeSimilarity
	case MoodSimilarity:
		return s.MoodSimilarity
	case MoodCompatibility:
		return s.MoodCompatibility
	case SentimentCompatibility:
		return s.SentimentCompatibility
	case IntensityMatch:
		return s.IntensityMatch
	case ActivityMatch:
		return s.ActivityMatch
	case FitScoreSimilarity:
		return s.FitScoreSimilarity
	case ThematicContradiction:
		return s.ThematicContradiction
	default:
		return 0
	}
}

// MatchResult is the ranked outcome for one song.
type MatchResult struct {
	Track          analysis.Track `json:"track"`
	Similarity     float64        `json:"similarity"`
	Scores         MatchScores    `json:"scores"`
	VetoApplied    bool           `json:"veto_applied"`
	VetoReason     string         `json:"veto_reason,omitempty"`
	Contradictions []string       `json:"contradictions,omitempty"`
	Explanation    string         `json:"explanation,omitempty"`
}

// PlaylistType is the heuristic classification of a playlist.
type PlaylistType string

// Playlist types.
const (
	PlaylistMood     PlaylistType = "mood"
	PlaylistActivity PlaylistType = "activity"
	PlaylistTheme    PlaylistType = "theme"
	PlaylistGeneral  PlaylistType = "general"
)

// Label returns a human-readable name for the playlist type.
func (t PlaylistType) Label() string {
	switch t {
	case PlaylistMood:
		return "mood-focused playlist"
	case PlaylistActivity:
		return "activity-focused playlist"
	case PlaylistTheme:
		return "theme-focused playlist"
	default:
		return "general playlist"
	}
}

// Weights maps component names to weights.
type Weights map[string]float64

// Sum returns the total weight, added in component order.
func (w Weights) Sum() float64 {
	var total float64
	for _, name := range componentOrder {
		total += w[name]
	}
	return total
}

// Clone returns a copy of w.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
