package matching

import (
	"context"
	"math"
	"strings"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// Scores used when only one side carries the data a scorer needs. When
// neither side has it the score is 0.
const (
	partialMood      = 0.3
	partialSentiment = 0.25
	partialIntensity = 0.3
	partialActivity  = 0.2
	partialFit       = 0.3
)

// partial returns fallback when exactly one side is present, else 0.
func partial(aPresent, bPresent bool, fallback float64) float64 {
	if aPresent != bPresent {
		return fallback
	}
	return 0
}

// CalculateMoodCompatibility scores two dominant moods. A detected mood
// contradiction caps the score; otherwise it follows vectorSimilarity.
func (e *Engine) CalculateMoodCompatibility(ctx context.Context, playlistMood, songMood *analysis.Mood, vectorSimilarity float64) float64 {
	if playlistMood == nil || songMood == nil {
		return partial(playlistMood != nil, songMood != nil, partialMood)
	}
	return moodCompatibility(e.DetectMoodContradictions(ctx, playlistMood, songMood), vectorSimilarity)
}

func moodCompatibility(c MoodContradiction, vectorSimilarity float64) float64 {
	switch {
	case c.Score > 0.7:
		return math.Max(0, 0.3-c.Score*0.3)
	case c.Score > 0:
		return math.Max(0, 0.55-c.Score*0.15)
	default:
		return clamp01(vectorSimilarity * 1.1)
	}
}

// CalculateSentimentCompatibility compares two sentiment estimates. The
// weighted class difference is scaled by a valence factor that rewards a
// shared dominant class and punishes opposite polarity.
func CalculateSentimentCompatibility(playlist, song *analysis.SentimentScore) float64 {
	if playlist == nil || song == nil {
		return partial(playlist != nil, song != nil, partialSentiment)
	}
	p, s := *playlist, *song

	diff := 0.4*math.Abs(p.Positive-s.Positive) +
		0.4*math.Abs(p.Negative-s.Negative) +
		0.2*math.Abs(p.Neutral-s.Neutral)
	base := 1 - diff

	dp, ds := p.Dominant(), s.Dominant()
	var factor float64
	switch {
	case dp == ds:
		factor = 1.25
	case opposed(dp, ds):
		factor = 0.3
	default:
		factor = 0.7
	}
	if (p.Positive > 0.4 && s.Negative > 0.4) || (p.Negative > 0.4 && s.Positive > 0.4) {
		factor *= 0.5
	}
	return clamp01(base * factor)
}

// CalculateIntensityMatch compares two 0-1 intensity scores with a step
// function on their distance.
func CalculateIntensityMatch(playlist, song *float64) float64 {
	if playlist == nil || song == nil {
		return partial(playlist != nil, song != nil, partialIntensity)
	}
	d := math.Abs(*playlist - *song)
	switch {
	case d < 0.1:
		return 0.95
	case d < 0.2:
		return 0.85
	case d < 0.3:
		return 0.7
	case d < 0.4:
		return 0.5
	case d < 0.5:
		return 0.3
	default:
		return math.Max(0, 1-2*d)
	}
}

// CalculateActivityMatch blends a lexical overlap of the activity lists
// (70%) with the similarity of the activity embedding slices (30%).
func CalculateActivityMatch(playlist, song []string, vectorSimilarity float64) float64 {
	if len(playlist) == 0 || len(song) == 0 {
		return partial(len(playlist) > 0, len(song) > 0, partialActivity)
	}
	return clamp01(0.7*activityOverlap(playlist, song) + 0.3*vectorSimilarity)
}

// activityOverlap weighs unigrams 1, bigrams 2 and whole phrases 3. The
// denominator counts every song token, matched or not, so the score asks
// how much of the song's activity vocabulary the playlist covers.
func activityOverlap(playlist, song []string) float64 {
	pt := activityTokens(playlist)
	st := activityTokens(song)

	var matched, total float64
	for tok, w := range st {
		total += w * w
		if pw, ok := pt[tok]; ok {
			matched += w * pw
		}
	}
	if total == 0 {
		return 0
	}
	return math.Pow(clamp01(matched/total), 0.7)
}

func activityTokens(items []string) map[string]float64 {
	out := make(map[string]float64)
	add := func(key string, w float64) {
		if w > out[key] {
			out[key] = w
		}
	}
	for _, item := range items {
		words := tokenize(item)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			add("u:"+w, 1)
			if i > 0 {
				add("b:"+words[i-1]+" "+w, 2)
			}
		}
		if len(words) > 1 {
			add("p:"+strings.Join(words, " "), 3)
		}
	}
	return out
}

// Fit score comparison constants.
const (
	fitMinRelevant     = 0.2
	fitHighPlaylist    = 0.7
	fitHighMultiplier  = 1.5
	fitSigmoidSlope    = 8
	fitSigmoidMidpoint = 0.5
)

// CalculateFitScoreSimilarity compares per-context fit scores. Contexts
// where both sides score at most 0.2 are ignored. Differences are weighted
// per context and weighted up where the playlist strongly fits, then the
// similarity is passed through a sigmoid.
func CalculateFitScoreSimilarity(playlist, song map[string]float64, contextWeights map[string]float64) float64 {
	if len(playlist) == 0 || len(song) == 0 {
		return partial(len(playlist) > 0, len(song) > 0, partialFit)
	}

	keys := make(map[string]struct{}, len(playlist)+len(song))
	for k := range playlist {
		keys[k] = struct{}{}
	}
	for k := range song {
		keys[k] = struct{}{}
	}

	var weighted, weights float64
	for k := range keys {
		p, s := playlist[k], song[k]
		if p <= fitMinRelevant && s <= fitMinRelevant {
			continue
		}
		w, ok := contextWeights[strings.ToLower(k)]
		if !ok {
			w = 1
		}
		if p > fitHighPlaylist {
			w *= fitHighMultiplier
		}
		weighted += math.Abs(p-s) * w
		weights += w
	}

	var avgDiff float64
	if weights > 0 {
		avgDiff = weighted / weights
	}
	sim := 1 - avgDiff
	return 1 / (1 + math.Exp(-fitSigmoidSlope*(sim-fitSigmoidMidpoint)))
}
