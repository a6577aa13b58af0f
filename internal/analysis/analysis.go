// Package analysis defines the AI-derived analysis records attached to songs
// and playlists, plus the score types returned by the analysis service.
package analysis

import "strings"

// DefaultConfidence is assumed for themes that carry no confidence value.
const DefaultConfidence = 0.5

// Track identifies a song. Supplied by the caller and never modified.
type Track struct {
	ID     string `json:"id,omitempty"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Theme is a single lyrical or conceptual theme.
type Theme struct {
	Name          string   `json:"name"`
	Confidence    *float64 `json:"confidence,omitempty"` // 0-1, nil if not scored
	Description   string   `json:"description"`
	RelatedThemes []string `json:"related_themes,omitempty"`
	Connection    string   `json:"connection,omitempty"`
}

// ConfidenceOr returns the theme confidence, or def when it is unset.
func (t Theme) ConfidenceOr(def float64) float64 {
	if t.Confidence == nil {
		return def
	}
	return *t.Confidence
}

// Interpretation is the nested form some analyses use for the main message.
type Interpretation struct {
	MainMessage string `json:"main_message"`
}

// Meaning holds the themes and the overall message.
type Meaning struct {
	Themes         []Theme         `json:"themes"`
	MainMessage    string          `json:"main_message,omitempty"`
	Interpretation *Interpretation `json:"interpretation,omitempty"`
}

// Message returns the main message from whichever field carries it.
func (m Meaning) Message() string {
	if strings.TrimSpace(m.MainMessage) != "" {
		return m.MainMessage
	}
	if m.Interpretation != nil {
		return m.Interpretation.MainMessage
	}
	return ""
}

// Mood is a mood label with a free-text description.
type Mood struct {
	Mood        string `json:"mood"`
	Description string `json:"description"`
}

// MoodSection is one step of a mood progression through a song.
type MoodSection struct {
	Section     string `json:"section"`
	Mood        string `json:"mood"`
	Description string `json:"description,omitempty"`
}

// Emotional holds the emotional profile.
type Emotional struct {
	DominantMood   *Mood         `json:"dominantMood,omitempty"`
	Progression    []MoodSection `json:"progression,omitempty"`
	IntensityScore *float64      `json:"intensity_score,omitempty"` // 0-1
}

// Mood returns the dominant mood, or nil if no mood label is present.
func (e Emotional) Mood() *Mood {
	if e.DominantMood == nil || strings.TrimSpace(e.DominantMood.Mood) == "" {
		return nil
	}
	return e.DominantMood
}

// Situations lists the listening situations an item suits.
type Situations struct {
	PerfectFor []string `json:"perfect_for"`
	Why        string   `json:"why,omitempty"`
}

// Context describes where and when an item fits.
type Context struct {
	PrimarySetting string             `json:"primary_setting"`
	Situations     Situations         `json:"situations"`
	FitScores      map[string]float64 `json:"fit_scores,omitempty"` // e.g. morning, working, relaxation
}

// Matchability carries optional precomputed matching hints.
type Matchability map[string]float64

// Analysis is the full analysis record for a song.
type Analysis struct {
	Meaning      Meaning      `json:"meaning"`
	Emotional    Emotional    `json:"emotional"`
	Context      Context      `json:"context"`
	Matchability Matchability `json:"matchability,omitempty"`
}

// Song is a track plus its analysis.
type Song struct {
	Track     Track    `json:"track"`
	Analysis  Analysis `json:"analysis"`
	Timestamp string   `json:"timestamp,omitempty"` // used to infer era, e.g. "1994-05-01"
}

// Profile returns the song's analysis.
func (s Song) Profile() Analysis {
	return s.Analysis
}

// Playlist is a playlist with its analysis fields flattened in.
type Playlist struct {
	ID           string       `json:"id"`
	TrackIDs     []string     `json:"track_ids"`
	Meaning      Meaning      `json:"meaning"`
	Emotional    Emotional    `json:"emotional"`
	Context      Context      `json:"context"`
	Matchability Matchability `json:"matchability,omitempty"`
}

// Profile returns the playlist's analysis in the same shape as a song's.
func (p Playlist) Profile() Analysis {
	return Analysis{
		Meaning:      p.Meaning,
		Emotional:    p.Emotional,
		Context:      p.Context,
		Matchability: p.Matchability,
	}
}

// SentimentScore is a three-class sentiment estimate. Values need not sum to 1.
type SentimentScore struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// Sentiment classes.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Dominant returns the class with the highest score. Ties resolve in the
// order positive, negative, neutral.
func (s SentimentScore) Dominant() string {
	switch {
	case s.Positive >= s.Negative && s.Positive >= s.Neutral:
		return SentimentPositive
	case s.Negative >= s.Neutral:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// DefaultSentiment is used when sentiment cannot be fetched.
var DefaultSentiment = SentimentScore{Positive: 0.33, Negative: 0.33, Neutral: 0.34}

// MoodDimensions is a Valence-Arousal-Dominance estimate, each 0-1.
type MoodDimensions struct {
	Valence   float64 `json:"valence"`
	Arousal   float64 `json:"arousal"`
	Dominance float64 `json:"dominance"`
}

// DefaultMoodDimensions is used when mood dimensions cannot be fetched.
var DefaultMoodDimensions = MoodDimensions{Valence: 0.5, Arousal: 0.5, Dominance: 0.5}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 {
	return &v
}
