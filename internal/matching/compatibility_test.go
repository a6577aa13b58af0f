package matching

import (
	"math"
	"testing"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateIntensityMatch(t *testing.T) {
	tests := []struct {
		name     string
		pl, song *float64
		want     float64
	}{
		{"both missing", nil, nil, 0},
		{"playlist missing", nil, analysis.Float(0.5), 0.3},
		{"song missing", analysis.Float(0.5), nil, 0.3},
		{"equal", analysis.Float(0.5), analysis.Float(0.5), 0.95},
		{"close", analysis.Float(0.5), analysis.Float(0.65), 0.85},
		{"near", analysis.Float(0.5), analysis.Float(0.75), 0.7},
		{"apart", analysis.Float(0.5), analysis.Float(0.85), 0.5},
		{"far", analysis.Float(0.5), analysis.Float(0.95), 0.3},
		{"extreme", analysis.Float(0), analysis.Float(0.8), 0},
		{"beyond steps", analysis.Float(0.1), analysis.Float(0.7), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateIntensityMatch(tt.pl, tt.song); !approx(got, tt.want) {
				t.Errorf("CalculateIntensityMatch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateSentimentCompatibility(t *testing.T) {
	pos := &analysis.SentimentScore{Positive: 1}
	neg := &analysis.SentimentScore{Negative: 1}
	neutral := &analysis.SentimentScore{Positive: 0.2, Negative: 0.2, Neutral: 0.6}

	tests := []struct {
		name     string
		pl, song *analysis.SentimentScore
		want     float64
	}{
		{"both missing", nil, nil, 0},
		{"one missing", pos, nil, 0.25},
		{"identical", pos, pos, 1},
		// base 0.2, factor 0.3 * 0.5
		{"opposite polarity", pos, neg, 0.2 * 0.15},
		// base 1 - (0.4*0.8 + 0.4*0.2 + 0.2*0.6) = 0.48, factor 0.7
		{"neutral mismatch", pos, neutral, 0.48 * 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateSentimentCompatibility(tt.pl, tt.song); !approx(got, tt.want) {
				t.Errorf("CalculateSentimentCompatibility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateSentimentCompatibility_SevereMismatch(t *testing.T) {
	pl := &analysis.SentimentScore{Positive: 1}
	song := &analysis.SentimentScore{Negative: 1}
	base := 1 - (0.4*1 + 0.4*1)

	if got := CalculateSentimentCompatibility(pl, song); got > 0.3*base+1e-12 {
		t.Errorf("expected at most %v, got %v", 0.3*base, got)
	}
}

func TestMoodCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		c         MoodContradiction
		vectorSim float64
		want      float64
	}{
		{"no contradiction", MoodContradiction{}, 0.5, 0.55},
		{"no contradiction clamps", MoodContradiction{}, 0.95, 1},
		{"weak contradiction", MoodContradiction{Score: 0.5}, 0.9, 0.55 - 0.5*0.15},
		{"strong contradiction", MoodContradiction{Score: 0.8}, 0.9, 0.3 - 0.8*0.3},
		{"severe contradiction", MoodContradiction{Score: 0.9}, 0.9, 0.3 - 0.9*0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moodCompatibility(tt.c, tt.vectorSim); !approx(got, tt.want) {
				t.Errorf("moodCompatibility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateActivityMatch(t *testing.T) {
	tests := []struct {
		name      string
		pl, song  []string
		vectorSim float64
		want      float64
	}{
		{"both empty", nil, nil, 0.9, 0},
		{"playlist empty", nil, []string{"running"}, 0.9, 0.2},
		{"identical", []string{"late night drive"}, []string{"late night drive"}, 0.5, 0.7 + 0.15},
		{"disjoint", []string{"studying"}, []string{"party"}, 0.5, 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateActivityMatch(tt.pl, tt.song, tt.vectorSim); !approx(got, tt.want) {
				t.Errorf("CalculateActivityMatch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivityOverlap_Asymmetric(t *testing.T) {
	broad := []string{"running", "gym workout", "cycling"}
	narrow := []string{"running"}

	// every song token is covered by the playlist
	if got := activityOverlap(broad, narrow); !approx(got, 1) {
		t.Errorf("expected full overlap, got %v", got)
	}
	// most song tokens are not covered
	if got := activityOverlap(narrow, broad); got >= 0.5 {
		t.Errorf("expected low overlap, got %v", got)
	}
}

func TestActivityOverlap_PhraseOutweighsWords(t *testing.T) {
	pl := []string{"late night drive"}
	phrase := activityOverlap(pl, []string{"late night drive"})
	words := activityOverlap(pl, []string{"drive late night"})
	if phrase <= words {
		t.Errorf("expected exact phrase %v to beat shuffled words %v", phrase, words)
	}
}

func TestCalculateFitScoreSimilarity(t *testing.T) {
	weights := DefaultTuning().FitContextWeights
	sigmoid := func(sim float64) float64 { return 1 / (1 + math.Exp(-8*(sim-0.5))) }

	t.Run("missing", func(t *testing.T) {
		if got := CalculateFitScoreSimilarity(nil, nil, weights); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
		if got := CalculateFitScoreSimilarity(map[string]float64{"morning": 0.5}, nil, weights); got != 0.3 {
			t.Errorf("expected 0.3, got %v", got)
		}
	})

	t.Run("identical", func(t *testing.T) {
		fit := map[string]float64{"morning": 0.9, "relaxation": 0.4}
		if got := CalculateFitScoreSimilarity(fit, fit, weights); !approx(got, sigmoid(1)) {
			t.Errorf("expected %v, got %v", sigmoid(1), got)
		}
	})

	t.Run("weighted", func(t *testing.T) {
		pl := map[string]float64{"relaxation": 0.8, "party": 0.1}
		song := map[string]float64{"relaxation": 0.2, "party": 0.15}
		// party is ignored (both <= 0.2); relaxation weight 1.5 * 1.5
		want := sigmoid(1 - 0.6)
		if got := CalculateFitScoreSimilarity(pl, song, weights); !approx(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("unweighted contexts", func(t *testing.T) {
		pl := map[string]float64{"morning": 0.5, "evening": 0.3}
		song := map[string]float64{"morning": 0.3, "evening": 0.5}
		want := sigmoid(1 - 0.2)
		if got := CalculateFitScoreSimilarity(pl, song, weights); !approx(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}
