package db

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/matching"
)

func TestHashText(t *testing.T) {
	a := hashText("hope")
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a != hashText("hope") {
		t.Error("expected stable hash")
	}
	if a == hashText("Hope") {
		t.Error("expected case-sensitive hash")
	}
}

func TestEmbeddingRepository_Stale(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		ttl       time.Duration
		fetchedAt time.Time
		want      bool
	}{
		{name: "zero ttl never expires", ttl: 0, fetchedAt: now.AddDate(-5, 0, 0), want: false},
		{name: "within ttl", ttl: time.Hour, fetchedAt: now.Add(-30 * time.Minute), want: false},
		{name: "past ttl", ttl: time.Hour, fetchedAt: now.Add(-2 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &EmbeddingRepository{ttl: tt.ttl, now: func() time.Time { return now }}
			if got := r.stale(tt.fetchedAt); got != tt.want {
				t.Errorf("stale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultColumns(t *testing.T) {
	results := []matching.MatchResult{
		{
			Track:       analysis.Track{ID: "a", Artist: "Artist A", Title: "Title A"},
			Similarity:  0.8,
			Scores:      matching.MatchScores{ThemeSimilarity: 0.9},
			Explanation: "Good fit",
		},
		{
			Track:          analysis.Track{ID: "b", Artist: "Artist B", Title: "Title B"},
			Similarity:     0.1,
			VetoApplied:    true,
			VetoReason:     "Mood incompatibility (0.12)",
			Contradictions: []string{"hope vs despair"},
		},
	}

	cols, err := resultColumns(results)
	if err != nil {
		t.Fatalf("resultColumns: %v", err)
	}

	if cols.ranks[0] != 1 || cols.ranks[1] != 2 {
		t.Errorf("expected ranks 1,2, got %v", cols.ranks)
	}
	if cols.contradictions[0] != "[]" {
		t.Errorf("expected empty JSON array, got %q", cols.contradictions[0])
	}
	if !strings.Contains(cols.contradictions[1], "hope vs despair") {
		t.Errorf("unexpected contradictions %q", cols.contradictions[1])
	}
	if !cols.vetoed[1] || cols.reasons[1] != "Mood incompatibility (0.12)" {
		t.Errorf("veto not carried: %v %q", cols.vetoed[1], cols.reasons[1])
	}

	var scores matching.MatchScores
	if err := json.Unmarshal([]byte(cols.scores[0]), &scores); err != nil {
		t.Fatalf("scores not valid JSON: %v", err)
	}
	if scores.ThemeSimilarity != 0.9 {
		t.Errorf("expected theme similarity 0.9, got %v", scores.ThemeSimilarity)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("statement is not idempotent: %s", stmt)
		}
	}
}
