package matching

import (
	"fmt"
	"sort"
	"strings"
)

const (
	strongScore   = 0.5
	weakScore     = 0.4
	maxStrengths  = 3
	maxMismatches = 2
)

// strengthClauses describe a high component score.
var strengthClauses = map[string]string{
	ThemeSimilarity:        "shares the playlist's themes",
	MoodSimilarity:         "has a similar mood",
	MoodCompatibility:      "fits the playlist's emotional tone",
	SentimentCompatibility: "matches its overall sentiment",
	IntensityMatch:         "has a comparable intensity",
	ActivityMatch:          "suits the same activities",
	FitScoreSimilarity:     "fits the same listening contexts",
}

// mismatchNouns name a component in a mismatch list.
var mismatchNouns = map[string]string{
	ThemeSimilarity:        "themes",
	MoodSimilarity:         "mood",
	MoodCompatibility:      "emotional tone",
	SentimentCompatibility: "sentiment",
	IntensityMatch:         "intensity",
	ActivityMatch:          "activities",
	FitScoreSimilarity:     "listening contexts",
}

type rankedScore struct {
	name  string
	value float64
}

// GenerateMatchExplanation describes a result in one or two sentences. A
// vetoed result leads with the veto reason; otherwise up to three strong
// components are named. Weak components and the playlist type follow.
func GenerateMatchExplanation(r MatchResult, pt PlaylistType) string {
	ranked := make([]rankedScore, 0, len(positiveComponents))
	for _, name := range positiveComponents {
		ranked = append(ranked, rankedScore{name: name, value: r.Scores.Get(name)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].value > ranked[j].value
	})

	var parts []string
	if r.VetoApplied {
		parts = append(parts, fmt.Sprintf("Not recommended: %s.", r.VetoReason))
	} else {
		var strengths []string
		for _, rs := range ranked {
			if rs.value <= strongScore || len(strengths) == maxStrengths {
				break
			}
			strengths = append(strengths, fmt.Sprintf("%s (%s)", strengthClauses[rs.name], percent(rs.value)))
		}
		if len(strengths) > 0 {
			parts = append(parts, "Good fit: "+strings.Join(strengths, ", ")+".")
		} else {
			parts = append(parts, "No strong similarities.")
		}
	}

	var weak []string
	for i := len(ranked) - 1; i >= 0 && len(weak) < maxMismatches; i-- {
		if ranked[i].value >= weakScore {
			break
		}
		weak = append(weak, fmt.Sprintf("%s (%s)", mismatchNouns[ranked[i].name], percent(ranked[i].value)))
	}
	if len(weak) > 0 {
		parts = append(parts, "Mismatches: "+strings.Join(weak, ", ")+".")
	}

	parts = append(parts, fmt.Sprintf("Scored as a %s.", pt.Label()))
	return strings.Join(parts, " ")
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
