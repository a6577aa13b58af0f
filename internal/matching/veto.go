package matching

import (
	"fmt"
	"math"
	"strings"
)

// Veto rule names, used as metric labels.
const (
	VetoRuleThematic  = "thematic"
	VetoRuleMood      = "mood"
	VetoRuleSentiment = "sentiment"
)

// VetoResult is the outcome of the veto rules for one song.
type VetoResult struct {
	FinalScore float64
	Vetoed     bool
	Reason     string   // fired rule reasons joined with " & "
	Rules      []string // names of the rules that fired
}

// ApplyVetoLogic applies three proportional penalties starting from 1:
// thematic contradiction, mood gap and sentiment gap. Each penalty that
// crosses its threshold marks the song vetoed. The sentiment rule only
// vetoes when no other rule has.
func (t Tuning) ApplyVetoLogic(scores MatchScores) VetoResult {
	v := t.Veto
	final := 1.0
	var res VetoResult
	var reasons []string

	fire := func(rule, reason string) {
		res.Vetoed = true
		res.Rules = append(res.Rules, rule)
		reasons = append(reasons, reason)
	}

	if c := scores.ThematicContradiction; c > 0 {
		penalty := c * v.ContradictionFactor
		final *= math.Max(0, 1-penalty)
		if penalty > v.ContradictionVeto {
			fire(VetoRuleThematic, fmt.Sprintf("Thematic contradiction (%.2f)", c))
		}
	}

	if gap := 1 - scores.MoodCompatibility; gap > v.MoodGapMin {
		penalty := gap * v.MoodFactor
		final *= math.Max(0, 1-penalty)
		if penalty > v.MoodVeto {
			fire(VetoRuleMood, fmt.Sprintf("Mood incompatibility (%.2f)", scores.MoodCompatibility))
		}
	}

	if gap := 1 - scores.SentimentCompatibility; gap > v.SentGapMin {
		penalty := gap * v.SentFactor
		final *= math.Max(0, 1-penalty)
		if penalty > v.SentimentVeto && !res.Vetoed {
			fire(VetoRuleSentiment, fmt.Sprintf("Sentiment mismatch (%.2f)", scores.SentimentCompatibility))
		}
	}

	res.FinalScore = clamp01(final)
	res.Reason = strings.Join(reasons, " & ")
	return res
}
