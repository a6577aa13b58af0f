package clustering

import (
	"fmt"
	"strings"
	"testing"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/matching"
)

func result(id string, sim float64) matching.MatchResult {
	return matching.MatchResult{
		Track:      analysis.Track{ID: id, Artist: "Artist " + id, Title: "Song " + id},
		Similarity: sim,
	}
}

func TestGenerateMoodName(t *testing.T) {
	tests := []struct {
		name     string
		centroid analysis.MoodDimensions
		want     string
	}{
		{
			name:     "high arousal high valence",
			centroid: analysis.MoodDimensions{Valence: 0.8, Arousal: 0.7, Dominance: 0.5},
			want:     "Upbeat & Bright",
		},
		{
			name:     "high arousal low valence",
			centroid: analysis.MoodDimensions{Valence: 0.2, Arousal: 0.8, Dominance: 0.5},
			want:     "Intense & Dark",
		},
		{
			name:     "low arousal high valence",
			centroid: analysis.MoodDimensions{Valence: 0.7, Arousal: 0.3, Dominance: 0.5},
			want:     "Calm & Warm",
		},
		{
			name:     "low arousal low valence",
			centroid: analysis.MoodDimensions{Valence: 0.3, Arousal: 0.2, Dominance: 0.5},
			want:     "Reflective & Melancholy",
		},
		{
			name:     "high dominance adds modifier",
			centroid: analysis.MoodDimensions{Valence: 0.2, Arousal: 0.8, Dominance: 0.9},
			want:     "Intense & Dark (Assertive)",
		},
		{
			name:     "boundary exactly 0.5 is low",
			centroid: analysis.MoodDimensions{Valence: 0.5, Arousal: 0.5, Dominance: 0.65},
			want:     "Reflective & Melancholy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generateMoodName(tt.centroid); got != tt.want {
				t.Errorf("generateMoodName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeMood(t *testing.T) {
	got := describeMood(analysis.MoodDimensions{Valence: 0.9, Arousal: 0.1})
	if got != "Relaxed and uplifting" {
		t.Errorf("describeMood() = %q", got)
	}
}

func TestGroupByMood_Empty(t *testing.T) {
	groups, ungrouped := GroupByMood(nil, nil, DefaultConfig())
	if groups != nil || ungrouped != nil {
		t.Errorf("expected nil results, got %v, %v", groups, ungrouped)
	}
}

func TestGroupByMood_TooFewResults(t *testing.T) {
	results := []matching.MatchResult{result("a", 0.4), result("b", 0.9)}
	dims := []analysis.MoodDimensions{{Valence: 0.1}, {Valence: 0.9}}

	groups, ungrouped := GroupByMood(results, dims, Config{NumGroups: 3, MinGroupSize: 1})

	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
	if len(ungrouped) != 2 {
		t.Fatalf("expected 2 ungrouped, got %d", len(ungrouped))
	}
	if ungrouped[0].Track.ID != "b" {
		t.Errorf("expected ungrouped sorted by similarity, got %s first", ungrouped[0].Track.ID)
	}
}

func TestGroupByMood_SingleGroup(t *testing.T) {
	results := []matching.MatchResult{result("a", 0.5), result("b", 0.9), result("c", 0.7)}
	dims := []analysis.MoodDimensions{
		{Valence: 0.8, Arousal: 0.8, Dominance: 0.5},
		{Valence: 0.85, Arousal: 0.75, Dominance: 0.5},
		{Valence: 0.9, Arousal: 0.7, Dominance: 0.5},
	}

	groups, ungrouped := GroupByMood(results, dims, Config{NumGroups: 1, MinGroupSize: 2})

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(ungrouped) != 0 {
		t.Errorf("expected 0 ungrouped, got %d", len(ungrouped))
	}

	g := groups[0]
	if g.Name != "Upbeat & Bright" {
		t.Errorf("expected Upbeat & Bright, got %q", g.Name)
	}
	want := []string{"b", "c", "a"}
	for i, id := range want {
		if g.Results[i].Track.ID != id {
			t.Errorf("result %d: expected %s, got %s", i, id, g.Results[i].Track.ID)
		}
	}
}

func TestGroupByMood_MissingDimensionsAreUngrouped(t *testing.T) {
	results := []matching.MatchResult{result("a", 0.5), result("b", 0.6), result("c", 0.7)}
	dims := []analysis.MoodDimensions{
		{Valence: 0.2, Arousal: 0.2, Dominance: 0.5},
		{Valence: 0.25, Arousal: 0.2, Dominance: 0.5},
	}

	groups, ungrouped := GroupByMood(results, dims, Config{NumGroups: 1, MinGroupSize: 2})

	if len(groups) != 1 || len(groups[0].Results) != 2 {
		t.Fatalf("expected one group of 2, got %+v", groups)
	}
	if len(ungrouped) != 1 || ungrouped[0].Track.ID != "c" {
		t.Errorf("expected c ungrouped, got %+v", ungrouped)
	}
}

func TestGroupByMood_SmallGroupsAreUngrouped(t *testing.T) {
	results := []matching.MatchResult{result("a", 0.5), result("b", 0.6)}
	dims := []analysis.MoodDimensions{{Valence: 0.2}, {Valence: 0.3}}

	groups, ungrouped := GroupByMood(results, dims, Config{NumGroups: 1, MinGroupSize: 3})

	if len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
	if len(ungrouped) != 2 {
		t.Errorf("expected 2 ungrouped, got %d", len(ungrouped))
	}
}

func TestGroupByMood_ConservesResults(t *testing.T) {
	var results []matching.MatchResult
	var dims []analysis.MoodDimensions
	for i := 0; i < 4; i++ {
		results = append(results, result(fmt.Sprintf("bright%d", i), 0.9-float64(i)*0.01))
		dims = append(dims, analysis.MoodDimensions{Valence: 0.9, Arousal: 0.9, Dominance: 0.5})
		results = append(results, result(fmt.Sprintf("dark%d", i), 0.5-float64(i)*0.01))
		dims = append(dims, analysis.MoodDimensions{Valence: 0.1, Arousal: 0.1, Dominance: 0.5})
	}

	groups, ungrouped := GroupByMood(results, dims, Config{NumGroups: 2, MinGroupSize: 2})

	total := len(ungrouped)
	for _, g := range groups {
		total += len(g.Results)
	}
	if total != len(results) {
		t.Errorf("expected %d results across groups, got %d", len(results), total)
	}

	for i := 1; i < len(groups); i++ {
		if groups[i].Results[0].Similarity > groups[i-1].Results[0].Similarity {
			t.Errorf("groups not ordered by best match")
		}
	}

	if len(groups) == 2 {
		for _, g := range groups {
			prefix := strings.TrimRight(g.Results[0].Track.ID, "0123456789")
			for _, r := range g.Results {
				if !strings.HasPrefix(r.Track.ID, prefix) {
					t.Errorf("group %q mixes %s and %s", g.Name, prefix, r.Track.ID)
				}
			}
		}
	}
}

func TestGroupByMood_DefaultsNumGroups(t *testing.T) {
	results := []matching.MatchResult{result("a", 0.5), result("b", 0.6)}
	dims := []analysis.MoodDimensions{{Valence: 0.2}, {Valence: 0.3}}

	// Zero NumGroups falls back to 3, which is more than the results
	groups, ungrouped := GroupByMood(results, dims, Config{})
	if len(groups) != 0 || len(ungrouped) != 2 {
		t.Errorf("expected all ungrouped, got %d groups and %d ungrouped", len(groups), len(ungrouped))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NumGroups != 3 {
		t.Errorf("expected NumGroups 3, got %d", cfg.NumGroups)
	}
	if cfg.MinGroupSize != 2 {
		t.Errorf("expected MinGroupSize 2, got %d", cfg.MinGroupSize)
	}
}
