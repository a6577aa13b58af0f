package matching

import (
	"math"
	"testing"
	"time"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

func TestDeterminePlaylistType(t *testing.T) {
	tests := []struct {
		name     string
		playlist analysis.Playlist
		want     PlaylistType
	}{
		{
			name: "mood sections only",
			playlist: analysis.Playlist{
				Emotional: analysis.Emotional{
					DominantMood:   &analysis.Mood{Mood: "melancholic", Description: "quiet sadness"},
					IntensityScore: analysis.Float(0.4),
				},
			},
			want: PlaylistMood,
		},
		{
			name: "activity with one theme",
			playlist: analysis.Playlist{
				Meaning: analysis.Meaning{Themes: []analysis.Theme{{Name: "energy"}}},
				Context: analysis.Context{
					PrimarySetting: "gym",
					Situations:     analysis.Situations{PerfectFor: []string{"lifting", "running"}},
				},
			},
			want: PlaylistActivity,
		},
		{
			name: "theme keyword tips the balance",
			playlist: analysis.Playlist{
				Meaning: analysis.Meaning{
					Themes: []analysis.Theme{
						{Name: "love", Confidence: analysis.Float(0.9)},
						{Name: "home", Confidence: analysis.Float(0.5)},
						{Name: "memory", Confidence: analysis.Float(0.4)},
					},
					MainMessage: "the people we keep",
				},
				Emotional: analysis.Emotional{DominantMood: &analysis.Mood{Mood: "tender"}},
			},
			want: PlaylistTheme,
		},
		{
			name: "mood keyword on dominant theme",
			playlist: analysis.Playlist{
				Meaning:   analysis.Meaning{Themes: []analysis.Theme{{Name: "chill vibes"}}},
				Emotional: analysis.Emotional{DominantMood: &analysis.Mood{Mood: "relaxed"}},
			},
			want: PlaylistMood,
		},
		{
			name: "no clear leader",
			playlist: analysis.Playlist{
				Emotional: analysis.Emotional{DominantMood: &analysis.Mood{Mood: "upbeat"}},
				Context:   analysis.Context{Situations: analysis.Situations{PerfectFor: []string{"cooking"}}},
			},
			want: PlaylistGeneral,
		},
		{
			name:     "empty",
			playlist: analysis.Playlist{},
			want:     PlaylistGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeterminePlaylistType(tt.playlist); got != tt.want {
				t.Errorf("DeterminePlaylistType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextAwareWeights(t *testing.T) {
	tuning := DefaultTuning()
	base := tuning.Profiles[PlaylistGeneral]
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("old song", func(t *testing.T) {
		w := tuning.ContextAwareWeights(base, analysis.Song{Timestamp: "1990-04-12"}, now)
		if math.Abs(w.Sum()-base.Sum()) > 1e-9 {
			t.Errorf("expected total %v preserved, got %v", base.Sum(), w.Sum())
		}
		if w[ThemeSimilarity] <= base[ThemeSimilarity] {
			t.Errorf("expected theme weight raised, got %v", w[ThemeSimilarity])
		}
		if w[MoodCompatibility] >= base[MoodCompatibility] {
			t.Errorf("expected mood weight lowered, got %v", w[MoodCompatibility])
		}
		if w[ThematicContradiction] != 0 {
			t.Errorf("expected contradiction weight to stay 0, got %v", w[ThematicContradiction])
		}
	})

	t.Run("recent era", func(t *testing.T) {
		w := tuning.ContextAwareWeights(base, analysis.Song{Timestamp: "2015"}, now)
		old := tuning.ContextAwareWeights(base, analysis.Song{Timestamp: "1990"}, now)
		if w[ThemeSimilarity] <= base[ThemeSimilarity] || w[ThemeSimilarity] >= old[ThemeSimilarity] {
			t.Errorf("expected a milder theme boost, got %v (base %v, old %v)",
				w[ThemeSimilarity], base[ThemeSimilarity], old[ThemeSimilarity])
		}
	})

	t.Run("new or undated song", func(t *testing.T) {
		for _, ts := range []string{"2025-01-01", "", "May 1994"} {
			w := tuning.ContextAwareWeights(base, analysis.Song{Timestamp: ts}, now)
			for k, v := range base {
				if w[k] != v {
					t.Errorf("timestamp %q: expected %s unchanged, got %v", ts, k, w[k])
				}
			}
		}
	})

	t.Run("cultural theme", func(t *testing.T) {
		song := analysis.Song{Analysis: analysis.Analysis{Meaning: analysis.Meaning{
			Themes: []analysis.Theme{{Name: "Jazz standards", Description: "smoky club"}},
		}}}
		w := tuning.ContextAwareWeights(base, song, now)
		if w[ThemeSimilarity] <= base[ThemeSimilarity] {
			t.Errorf("expected theme weight raised, got %v", w[ThemeSimilarity])
		}
		if math.Abs(w.Sum()-base.Sum()) > 1e-9 {
			t.Errorf("expected total preserved, got %v", w.Sum())
		}
	})

	t.Run("base not modified", func(t *testing.T) {
		before := base[ThemeSimilarity]
		tuning.ContextAwareWeights(base, analysis.Song{Timestamp: "1970"}, now)
		if base[ThemeSimilarity] != before {
			t.Error("base weights were modified")
		}
	})
}

func TestFinalScore_Range(t *testing.T) {
	tuning := DefaultTuning()
	now := time.Now()
	values := []float64{0, 0.5, 1}
	old := &analysis.Song{Timestamp: "1970-01-01"}

	var scores MatchScores
	for _, a := range values {
		for _, b := range values {
			for _, c := range values {
				for _, d := range values {
					for _, x := range values {
						scores = MatchScores{
							ThemeSimilarity:        a,
							MoodSimilarity:         b,
							MoodCompatibility:      c,
							SentimentCompatibility: d,
							IntensityMatch:         x,
							ActivityMatch:          a,
							FitScoreSimilarity:     b,
							ThematicContradiction:  x,
						}
						for _, pt := range []PlaylistType{PlaylistMood, PlaylistActivity, PlaylistTheme, PlaylistGeneral} {
							for _, song := range []*analysis.Song{nil, old} {
								got, _ := tuning.FinalScore(scores, pt, song, now)
								if got < 0 || got > 1 {
									t.Fatalf("score %v out of range for %+v (%s)", got, scores, pt)
								}
							}
						}
					}
				}
			}
		}
	}
}

func TestFinalScore_Perfect(t *testing.T) {
	scores := MatchScores{
		ThemeSimilarity:        1,
		MoodSimilarity:         1,
		MoodCompatibility:      1,
		SentimentCompatibility: 1,
		IntensityMatch:         1,
		ActivityMatch:          1,
		FitScoreSimilarity:     1,
	}
	got, veto := DefaultTuning().FinalScore(scores, PlaylistTheme, nil, time.Now())
	if !approx(got, 1) {
		t.Errorf("expected 1, got %v", got)
	}
	if veto.Vetoed {
		t.Error("expected no veto")
	}
}

func TestFinalScore_CurvesLiftMidScores(t *testing.T) {
	tuning := DefaultTuning()
	scores := MatchScores{MoodCompatibility: 0.81, SentimentCompatibility: 0.81}
	flat := Tuning{Profiles: tuning.Profiles, MoodCurve: 1, SentimentCurve: 1, Veto: tuning.Veto}

	curved, _ := tuning.FinalScore(scores, PlaylistMood, nil, time.Now())
	linear, _ := flat.FinalScore(scores, PlaylistMood, nil, time.Now())
	if curved <= linear {
		t.Errorf("expected curved score %v above linear %v", curved, linear)
	}
}

func TestFinalScore_VetoReplacesWeightedSum(t *testing.T) {
	tuning := DefaultTuning()
	scores := MatchScores{
		ThemeSimilarity:        1,
		MoodSimilarity:         1,
		MoodCompatibility:      1,
		SentimentCompatibility: 1,
		IntensityMatch:         1,
		ActivityMatch:          1,
		FitScoreSimilarity:     1,
		ThematicContradiction:  0.4,
	}

	got, veto := tuning.FinalScore(scores, PlaylistGeneral, nil, time.Now())
	if !veto.Vetoed {
		t.Fatal("expected veto")
	}
	want := tuning.ApplyVetoLogic(scores).FinalScore
	if got != want {
		t.Errorf("expected veto score %v, got %v", want, got)
	}
}

func TestFinalScore_Reproducible(t *testing.T) {
	tuning := DefaultTuning()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	song := &analysis.Song{Timestamp: "1975-06-01"}
	scores := MatchScores{
		ThemeSimilarity:        0.137,
		MoodSimilarity:         0.291,
		MoodCompatibility:      0.733,
		SentimentCompatibility: 0.419,
		IntensityMatch:         0.887,
		ActivityMatch:          0.051,
		FitScoreSimilarity:     0.613,
	}

	for _, pt := range []PlaylistType{PlaylistMood, PlaylistActivity, PlaylistTheme, PlaylistGeneral} {
		first, _ := tuning.FinalScore(scores, pt, song, now)
		for i := 0; i < 200; i++ {
			got, _ := tuning.FinalScore(scores, pt, song, now)
			if math.Float64bits(got) != math.Float64bits(first) {
				t.Fatalf("%s: run %d gave %v, first run gave %v", pt, i, got, first)
			}
		}
	}
}

func TestWeightsSum_ComponentOrder(t *testing.T) {
	w := Weights{
		ThemeSimilarity:        0.1,
		MoodSimilarity:         0.2,
		MoodCompatibility:      0.3,
		SentimentCompatibility: 1e-17,
		IntensityMatch:         1e16,
		ActivityMatch:          -1e16,
		FitScoreSimilarity:     0.7,
	}

	var want float64
	for _, name := range componentOrder {
		want += w[name]
	}
	for i := 0; i < 50; i++ {
		if got := w.Sum(); math.Float64bits(got) != math.Float64bits(want) {
			t.Fatalf("Sum() = %v, want %v", got, want)
		}
	}
}

func TestWithProfileOverrides(t *testing.T) {
	base := DefaultTuning()

	t.Run("valid", func(t *testing.T) {
		tuned, err := base.WithProfileOverrides(map[string]map[string]float64{
			"activity": {ActivityMatch: 0.40, FitScoreSimilarity: 0.10},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tuned.Profiles[PlaylistActivity][ActivityMatch] != 0.40 {
			t.Errorf("expected override applied, got %v", tuned.Profiles[PlaylistActivity][ActivityMatch])
		}
		if base.Profiles[PlaylistActivity][ActivityMatch] != 0.35 {
			t.Error("expected original tuning untouched")
		}
		if tuned.Version != TuningVersion+"+custom" {
			t.Errorf("unexpected version %q", tuned.Version)
		}
	})

	tests := []struct {
		name      string
		overrides map[string]map[string]float64
	}{
		{"unknown type", map[string]map[string]float64{"party": {ThemeSimilarity: 0.2}}},
		{"unknown component", map[string]map[string]float64{"mood": {"tempo": 0.1}}},
		{"contradiction weighted", map[string]map[string]float64{"mood": {ThematicContradiction: 0.1, MoodSimilarity: 0.1}}},
		{"bad sum", map[string]map[string]float64{"theme": {ThemeSimilarity: 0.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := base.WithProfileOverrides(tt.overrides); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultProfilesSumToOne(t *testing.T) {
	for pt, w := range DefaultTuning().Profiles {
		if math.Abs(w.Sum()-1) > 1e-9 {
			t.Errorf("%s profile sums to %v", pt, w.Sum())
		}
		if w[ThematicContradiction] != 0 {
			t.Errorf("%s profile weights thematic contradiction", pt)
		}
	}
}
