package matching

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// ThematicResult is the aggregate theme contradiction for one song.
type ThematicResult struct {
	Score          float64  // 0 none .. 1 severe
	Contradictions []string // human-readable pair descriptions
}

// MoodContradiction is the outcome of comparing two dominant moods.
type MoodContradiction struct {
	Score       float64
	Explanation string
}

// themeFeatures holds the remote signals for one theme.
type themeFeatures struct {
	theme     analysis.Theme
	embedding []float64
	sentiment analysis.SentimentScore
}

// moodFeatures holds the remote signals for one dominant mood.
type moodFeatures struct {
	mood      *analysis.Mood
	embedding []float64
	sentiment analysis.SentimentScore
}

func themeEmbeddingText(t analysis.Theme) string {
	return fmt.Sprintf("Theme: %s. Description: %s", t.Name, t.Description)
}

func themeSentimentText(t analysis.Theme) string {
	return t.Name + ": " + t.Description
}

func moodEmbeddingText(m *analysis.Mood) string {
	return fmt.Sprintf("Mood: %s. Description: %s", m.Mood, m.Description)
}

// opposed reports a positive/negative split between two dominant classes.
func opposed(a, b string) bool {
	return (a == analysis.SentimentPositive && b == analysis.SentimentNegative) ||
		(a == analysis.SentimentNegative && b == analysis.SentimentPositive)
}

// differNonNeutral reports differing classes where neither side is neutral.
func differNonNeutral(a, b string) bool {
	return a != b && a != analysis.SentimentNeutral && b != analysis.SentimentNeutral
}

// themeFeatures fetches an embedding and a sentiment per theme. Identical
// theme texts within the list are fetched once.
func (e *Engine) themeFeatures(ctx context.Context, themes []analysis.Theme) []themeFeatures {
	out := make([]themeFeatures, 0, len(themes))
	seen := make(map[string]themeFeatures, len(themes))
	for _, t := range themes {
		key := themeEmbeddingText(t)
		if f, ok := seen[key]; ok {
			f.theme = t
			out = append(out, f)
			continue
		}
		f := themeFeatures{
			theme:     t,
			embedding: e.embedText(ctx, key),
			sentiment: analysis.DefaultSentiment,
		}
		if s := e.sentiment(ctx, themeSentimentText(t)); s != nil {
			f.sentiment = *s
		}
		seen[key] = f
		out = append(out, f)
	}
	return out
}

// moodFeatures returns nil when the mood is absent.
func (e *Engine) moodFeatures(ctx context.Context, mood *analysis.Mood) *moodFeatures {
	if mood == nil {
		return nil
	}
	f := &moodFeatures{
		mood:      mood,
		embedding: e.embedText(ctx, moodEmbeddingText(mood)),
		sentiment: analysis.DefaultSentiment,
	}
	if s := e.sentiment(ctx, mood.Mood); s != nil {
		f.sentiment = *s
	}
	return f
}

// DetectThematicContradictions compares every playlist theme with every
// song theme and returns the confidence-weighted contradiction score.
func (e *Engine) DetectThematicContradictions(ctx context.Context, playlistThemes, songThemes []analysis.Theme) ThematicResult {
	if len(playlistThemes) == 0 || len(songThemes) == 0 {
		return ThematicResult{}
	}
	return e.scoreThemePairs(e.themeFeatures(ctx, playlistThemes), e.themeFeatures(ctx, songThemes))
}

func (e *Engine) scoreThemePairs(playlist, song []themeFeatures) ThematicResult {
	if len(playlist) == 0 || len(song) == 0 {
		return ThematicResult{}
	}

	var total float64
	var found []string
	for _, p := range playlist {
		for _, s := range song {
			level, sim := e.classifyThemePair(p, s)
			if level == 0 {
				continue
			}
			total += level *
				p.theme.ConfidenceOr(analysis.DefaultConfidence) *
				s.theme.ConfidenceOr(analysis.DefaultConfidence)
			found = append(found, fmt.Sprintf("%q conflicts with %q (similarity %.2f, %s vs %s, level %.1f)",
				p.theme.Name, s.theme.Name, sim, p.sentiment.Dominant(), s.sentiment.Dominant(), level))
		}
	}

	avgThemes := float64(len(playlist)+len(song)) / 2
	score := math.Min(1, total/(avgThemes*e.tuning.ThemeNormalize))
	return ThematicResult{Score: clamp01(score), Contradictions: found}
}

// classifyThemePair returns the contradiction level for a pair (0 if none)
// and the similarity it was judged on.
func (e *Engine) classifyThemePair(p, s themeFeatures) (float64, float64) {
	t := e.tuning
	if e.offline && (len(p.embedding) == 0 || len(s.embedding) == 0) {
		if LexiconContradiction(p.theme.Name, s.theme.Name) {
			return t.OpposedTier.Level, 0
		}
		return 0, 0
	}

	sim := EnhancedSimilarity(p.embedding, s.embedding)
	dp, ds := p.sentiment.Dominant(), s.sentiment.Dominant()
	switch {
	case sim < t.OpposedTier.MaxSimilarity && opposed(dp, ds):
		return t.OpposedTier.Level, sim
	case sim < t.DifferingTier.MaxSimilarity && differNonNeutral(dp, ds):
		return t.DifferingTier.Level, sim
	case sim < t.DistanceTier.MaxSimilarity:
		return t.DistanceTier.Level, sim
	default:
		return 0, sim
	}
}

// DetectMoodContradictions compares two dominant moods by sentiment
// polarity and semantic distance. A missing mood on either side scores 0.
func (e *Engine) DetectMoodContradictions(ctx context.Context, playlistMood, songMood *analysis.Mood) MoodContradiction {
	if playlistMood == nil || songMood == nil {
		return MoodContradiction{Explanation: "mood data missing, no contradiction check"}
	}
	return compareMoods(e.moodFeatures(ctx, playlistMood), e.moodFeatures(ctx, songMood))
}

func compareMoods(p, s *moodFeatures) MoodContradiction {
	if p == nil || s == nil {
		return MoodContradiction{Explanation: "mood data missing, no contradiction check"}
	}

	dp, ds := p.sentiment.Dominant(), s.sentiment.Dominant()
	sim := EnhancedSimilarity(p.embedding, s.embedding)

	var strength float64
	var reasons []string
	isOpposed := opposed(dp, ds)
	if isOpposed {
		strength = 0.8
		reasons = append(reasons, fmt.Sprintf("opposite sentiment (%s vs %s)", dp, ds))
	}
	switch {
	case sim < 0.3:
		if isOpposed {
			strength = 0.9
		} else {
			strength = 0.7
		}
		reasons = append(reasons, fmt.Sprintf("semantically distant (similarity %.2f)", sim))
	case sim < 0.5 && differNonNeutral(dp, ds) && strength < 0.5:
		strength = 0.5
		reasons = append(reasons, fmt.Sprintf("weakly related with differing sentiment (similarity %.2f)", sim))
	}

	if strength == 0 {
		return MoodContradiction{
			Explanation: fmt.Sprintf("no contradiction between %q and %q", p.mood.Mood, s.mood.Mood),
		}
	}
	return MoodContradiction{
		Score: strength,
		Explanation: fmt.Sprintf("mood %q contradicts %q: %s",
			s.mood.Mood, p.mood.Mood, strings.Join(reasons, ", ")),
	}
}
