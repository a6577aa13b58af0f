package clustering

import "github.com/justestif/go-playlist-matcher/internal/analysis"

// generateMoodName names a group from its centroid using a 2x2
// arousal/valence quadrant system with a dominance modifier.
//
// Quadrants:
//   - High Arousal + High Valence = "Upbeat & Bright"
//   - High Arousal + Low Valence  = "Intense & Dark"
//   - Low Arousal  + High Valence = "Calm & Warm"
//   - Low Arousal  + Low Valence  = "Reflective & Melancholy"
//
// Dominance modifier: if > 0.65, appends "(Assertive)" to the name.
func generateMoodName(c analysis.MoodDimensions) string {
	highArousal := c.Arousal > 0.5
	highValence := c.Valence > 0.5

	var baseName string
	switch {
	case highArousal && highValence:
		baseName = "Upbeat & Bright"
	case highArousal && !highValence:
		baseName = "Intense & Dark"
	case !highArousal && highValence:
		baseName = "Calm & Warm"
	default:
		baseName = "Reflective & Melancholy"
	}

	if c.Dominance > 0.65 {
		return baseName + " (Assertive)"
	}
	return baseName
}

// describeMood returns a one-line description of the centroid's quadrant.
func describeMood(c analysis.MoodDimensions) string {
	switch {
	case c.Arousal > 0.5 && c.Valence > 0.5:
		return "Energetic and positive"
	case c.Arousal > 0.5:
		return "Driving energy with darker emotional tones"
	case c.Valence > 0.5:
		return "Relaxed and uplifting"
	default:
		return "Contemplative and introspective"
	}
}
