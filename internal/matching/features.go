package matching

import (
	"math"
	"strings"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// FeatureKind selects a positional slice of a full embedding.
type FeatureKind string

// Feature slices.
const (
	FeatureTheme     FeatureKind = "theme"
	FeatureMood      FeatureKind = "mood"
	FeatureActivity  FeatureKind = "activity"
	FeatureIntensity FeatureKind = "intensity"
)

const (
	moodSliceOffset      = 0.4
	intensitySliceOffset = 0.7
)

// ExtractThemesText joins each theme's name and description, repeating
// high-confidence themes (round(confidence*3) times, at least once) so text
// signals lean toward them, then appends the main message.
func ExtractThemesText(a analysis.Analysis) string {
	var parts []string
	for _, theme := range a.Meaning.Themes {
		text := strings.TrimSpace(theme.Name + " " + theme.Description)
		if text == "" {
			continue
		}
		repeat := int(math.Round(theme.ConfidenceOr(analysis.DefaultConfidence) * 3))
		if repeat < 1 {
			repeat = 1
		}
		for i := 0; i < repeat; i++ {
			parts = append(parts, text)
		}
	}
	if msg := strings.TrimSpace(a.Meaning.Message()); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, " ")
}

// ExtractMoodText joins the mood label, its description and an intensity
// adjective.
func ExtractMoodText(a analysis.Analysis) string {
	var parts []string
	if mood := a.Emotional.DominantMood; mood != nil {
		if s := strings.TrimSpace(mood.Mood); s != "" {
			parts = append(parts, s)
		}
		if s := strings.TrimSpace(mood.Description); s != "" {
			parts = append(parts, s)
		}
	}
	if a.Emotional.IntensityScore != nil {
		parts = append(parts, intensityAdjective(*a.Emotional.IntensityScore))
	}
	return strings.Join(parts, " ")
}

func intensityAdjective(score float64) string {
	switch {
	case score > 0.8:
		return "very intense"
	case score > 0.6:
		return "intense"
	case score > 0.4:
		return "moderate"
	case score > 0.2:
		return "mild"
	default:
		return "subtle"
	}
}

// ExtractActivities returns the primary setting followed by the
// perfect-for situations, skipping blanks.
func ExtractActivities(c analysis.Context) []string {
	var out []string
	if s := strings.TrimSpace(c.PrimarySetting); s != "" {
		out = append(out, s)
	}
	for _, p := range c.Situations.PerfectFor {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ExtractFeatureVector slices one full embedding into an aspect sub-vector
// by position. dims <= 0 means len/5. The theme slice is the head, the mood
// slice starts at 40% of the length, the activity slice is the tail and the
// intensity slice is a short segment starting at 70%.
//
// This treats one embedding as four aspect embeddings and assumes the model
// groups aspects by position, which no general-purpose embedding model
// guarantees.
func ExtractFeatureVector(embedding []float64, kind FeatureKind, dims int) []float64 {
	n := len(embedding)
	if n == 0 {
		return nil
	}
	if dims <= 0 {
		dims = n / 5
	}
	if dims < 1 {
		dims = 1
	}
	if dims > n {
		dims = n
	}

	var start, length int
	switch kind {
	case FeatureTheme:
		start, length = 0, dims
	case FeatureMood:
		start, length = int(float64(n)*moodSliceOffset), dims
	case FeatureActivity:
		start, length = n-dims, dims
	case FeatureIntensity:
		length = dims / 4
		if length < 1 {
			length = 1
		}
		start = int(float64(n) * intensitySliceOffset)
	default:
		return nil
	}

	if start >= n {
		start = n - 1
	}
	end := start + length
	if end > n {
		end = n
	}
	out := make([]float64, end-start)
	copy(out, embedding[start:end])
	return out
}
