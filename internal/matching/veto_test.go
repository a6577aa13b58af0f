package matching

import (
	"reflect"
	"strings"
	"testing"
)

func cleanScores() MatchScores {
	return MatchScores{
		ThemeSimilarity:        1,
		MoodSimilarity:         1,
		MoodCompatibility:      1,
		SentimentCompatibility: 1,
		IntensityMatch:         1,
		ActivityMatch:          1,
		FitScoreSimilarity:     1,
	}
}

func TestApplyVetoLogic(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*MatchScores)
		wantScore  float64
		wantVetoed bool
		wantRules  []string
		wantReason string
	}{
		{
			name:      "clean",
			modify:    func(*MatchScores) {},
			wantScore: 1,
		},
		{
			name:       "thematic at threshold",
			modify:     func(s *MatchScores) { s.ThematicContradiction = 0.34 },
			wantScore:  1 - 0.34*1.5,
			wantVetoed: true,
			wantRules:  []string{VetoRuleThematic},
			wantReason: "Thematic contradiction (0.34)",
		},
		{
			name:      "thematic below threshold",
			modify:    func(s *MatchScores) { s.ThematicContradiction = 0.3 },
			wantScore: 1 - 0.3*1.5,
		},
		{
			name:       "severe thematic floors at zero",
			modify:     func(s *MatchScores) { s.ThematicContradiction = 1 },
			wantScore:  0,
			wantVetoed: true,
			wantRules:  []string{VetoRuleThematic},
			wantReason: "Thematic contradiction (1.00)",
		},
		{
			name:       "mood gap vetoes",
			modify:     func(s *MatchScores) { s.MoodCompatibility = 0.5 },
			wantScore:  1 - 0.5*1.2,
			wantVetoed: true,
			wantRules:  []string{VetoRuleMood},
			wantReason: "Mood incompatibility (0.50)",
		},
		{
			name:      "mood gap penalizes only",
			modify:    func(s *MatchScores) { s.MoodCompatibility = 0.65 },
			wantScore: 1 - 0.35*1.2,
		},
		{
			name:      "small mood gap ignored",
			modify:    func(s *MatchScores) { s.MoodCompatibility = 0.75 },
			wantScore: 1,
		},
		{
			name:       "sentiment gap vetoes",
			modify:     func(s *MatchScores) { s.SentimentCompatibility = 0.4 },
			wantScore:  1 - 0.6*0.8,
			wantVetoed: true,
			wantRules:  []string{VetoRuleSentiment},
			wantReason: "Sentiment mismatch (0.40)",
		},
		{
			name: "sentiment does not add to an existing veto",
			modify: func(s *MatchScores) {
				s.ThematicContradiction = 0.5
				s.SentimentCompatibility = 0.4
			},
			wantScore:  (1 - 0.75) * (1 - 0.6*0.8),
			wantVetoed: true,
			wantRules:  []string{VetoRuleThematic},
			wantReason: "Thematic contradiction (0.50)",
		},
		{
			name: "reasons joined",
			modify: func(s *MatchScores) {
				s.ThematicContradiction = 0.5
				s.MoodCompatibility = 0.5
			},
			wantScore:  (1 - 0.75) * (1 - 0.6),
			wantVetoed: true,
			wantRules:  []string{VetoRuleThematic, VetoRuleMood},
			wantReason: "Thematic contradiction (0.50) & Mood incompatibility (0.50)",
		},
	}

	tuning := DefaultTuning()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := cleanScores()
			tt.modify(&scores)

			got := tuning.ApplyVetoLogic(scores)
			if !approx(got.FinalScore, tt.wantScore) {
				t.Errorf("FinalScore = %v, want %v", got.FinalScore, tt.wantScore)
			}
			if got.Vetoed != tt.wantVetoed {
				t.Errorf("Vetoed = %v, want %v", got.Vetoed, tt.wantVetoed)
			}
			if !reflect.DeepEqual(got.Rules, tt.wantRules) {
				t.Errorf("Rules = %v, want %v", got.Rules, tt.wantRules)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestApplyVetoLogic_ThematicReason(t *testing.T) {
	scores := cleanScores()
	scores.ThematicContradiction = 0.9
	got := DefaultTuning().ApplyVetoLogic(scores)
	if !strings.Contains(got.Reason, "Thematic contradiction") {
		t.Errorf("expected thematic reason, got %q", got.Reason)
	}
}
