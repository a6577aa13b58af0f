package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/justestif/go-playlist-matcher/internal/matching"
)

const explanationWidth = 60

// renderResults renders ranked matches as a table.
func renderResults(results []matching.MatchResult) string {
	if len(results) == 0 {
		return "No songs to rank."
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Artist", "Title", "Score", "Veto", "Explanation"})

	for i, r := range results {
		veto := ""
		if r.VetoApplied {
			veto = r.VetoReason
		}
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			r.Track.Artist,
			r.Track.Title,
			fmt.Sprintf("%.0f%%", r.Similarity*100),
			veto,
			r.Explanation,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, WidthMax: explanationWidth},
	})

	return tw.Render()
}
