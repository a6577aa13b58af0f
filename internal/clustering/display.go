package clustering

import (
	"fmt"
	"strings"

	"github.com/justestif/go-playlist-matcher/internal/matching"
)

const sampleResultCount = 3

// FormatGroupSummary returns a human-readable summary of mood groups.
// Shows the top 3 matches for each group. Ungrouped results are summarized
// by count only.
func FormatGroupSummary(groups []MoodGroup, ungrouped []matching.MatchResult) string {
	var sb strings.Builder

	total := len(ungrouped)
	for _, g := range groups {
		total += len(g.Results)
	}

	if len(groups) == 0 {
		sb.WriteString(fmt.Sprintf("No mood groups found from %d matches", total))
		if len(ungrouped) > 0 {
			sb.WriteString(fmt.Sprintf(" (%d ungrouped)", len(ungrouped)))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	groupWord := "group"
	if len(groups) > 1 {
		groupWord = "groups"
	}

	sb.WriteString(fmt.Sprintf("Found %d mood %s from %d matches", len(groups), groupWord, total))
	if len(ungrouped) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d ungrouped)", len(ungrouped)))
	}
	sb.WriteString("\n")

	for _, g := range groups {
		sb.WriteString("\n")
		sb.WriteString(formatGroup(g))
	}

	return sb.String()
}

// formatGroup formats a single group with its top matches.
func formatGroup(g MoodGroup) string {
	var sb strings.Builder

	matchWord := "match"
	if len(g.Results) > 1 {
		matchWord = "matches"
	}
	sb.WriteString(fmt.Sprintf("%s (%d %s): %s\n", g.Name, len(g.Results), matchWord, g.Description))

	sampleCount := min(sampleResultCount, len(g.Results))
	for i := 0; i < sampleCount; i++ {
		r := g.Results[i]
		sb.WriteString(fmt.Sprintf("  • \"%s\" - %s (%.0f%%)\n", r.Track.Title, r.Track.Artist, r.Similarity*100))
	}

	remaining := len(g.Results) - sampleResultCount
	if remaining > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", remaining))
	}

	return sb.String()
}
