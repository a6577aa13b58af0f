package matching

import (
	"strings"
	"testing"
)

func TestGenerateMatchExplanation(t *testing.T) {
	tests := []struct {
		name   string
		result MatchResult
		pt     PlaylistType
		want   string
	}{
		{
			name: "strengths and mismatches",
			result: MatchResult{Scores: MatchScores{
				ThemeSimilarity:        0.9,
				MoodSimilarity:         0.8,
				MoodCompatibility:      0.7,
				SentimentCompatibility: 0.6,
				IntensityMatch:         0.55,
				ActivityMatch:          0.3,
				FitScoreSimilarity:     0.2,
			}},
			pt: PlaylistMood,
			want: "Good fit: shares the playlist's themes (90%), has a similar mood (80%), " +
				"fits the playlist's emotional tone (70%). " +
				"Mismatches: listening contexts (20%), activities (30%). " +
				"Scored as a mood-focused playlist.",
		},
		{
			name: "nothing stands out",
			result: MatchResult{Scores: MatchScores{
				ThemeSimilarity:        0.45,
				MoodSimilarity:         0.45,
				MoodCompatibility:      0.45,
				SentimentCompatibility: 0.45,
				IntensityMatch:         0.45,
				ActivityMatch:          0.45,
				FitScoreSimilarity:     0.45,
			}},
			pt:   PlaylistGeneral,
			want: "No strong similarities. Scored as a general playlist.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateMatchExplanation(tt.result, tt.pt); got != tt.want {
				t.Errorf("GenerateMatchExplanation() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestGenerateMatchExplanation_Veto(t *testing.T) {
	r := MatchResult{
		Scores: MatchScores{
			ThemeSimilarity:       0.95,
			MoodSimilarity:        0.9,
			ThematicContradiction: 0.8,
		},
		VetoApplied: true,
		VetoReason:  "Thematic contradiction (0.80)",
	}

	got := GenerateMatchExplanation(r, PlaylistTheme)
	if !strings.HasPrefix(got, "Not recommended: Thematic contradiction (0.80).") {
		t.Errorf("expected veto reason first, got %q", got)
	}
	if strings.Contains(got, "Good fit") {
		t.Errorf("expected no positive rationale for a veto, got %q", got)
	}
	if !strings.HasSuffix(got, "Scored as a theme-focused playlist.") {
		t.Errorf("expected playlist type last, got %q", got)
	}
}
