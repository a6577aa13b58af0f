package matching

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// dominanceRatio is how far the top playlist-type bucket must lead the
// runner-up before the playlist is classified as that type.
const dominanceRatio = 1.5

// Keywords matched against the dominant theme name.
var typeKeywords = map[PlaylistType][]string{
	PlaylistMood: {
		"mood", "feel", "emotion", "vibe", "chill", "sad", "happy",
		"melanchol", "nostalg", "calm", "angst", "bliss",
	},
	PlaylistActivity: {
		"workout", "gym", "running", "study", "focus", "work", "party",
		"sleep", "driving", "road trip", "dance", "cooking", "commute",
	},
	PlaylistTheme: {
		"love", "story", "journey", "life", "identity", "society", "social",
		"politic", "faith", "freedom", "heritage", "coming of age",
	},
}

// DeterminePlaylistType classifies a playlist by which analysis sections
// it fills in, plus keyword hits on its dominant theme. A bucket wins only
// when it scores more than 1.5 times the runner-up; otherwise the playlist
// is general.
func DeterminePlaylistType(p analysis.Playlist) PlaylistType {
	scores := map[PlaylistType]float64{}

	if mood := p.Emotional.DominantMood; mood != nil {
		if strings.TrimSpace(mood.Mood) != "" {
			scores[PlaylistMood] += 2
		}
		if strings.TrimSpace(mood.Description) != "" {
			scores[PlaylistMood]++
		}
	}
	if p.Emotional.IntensityScore != nil {
		scores[PlaylistMood]++
	}

	if len(p.Context.Situations.PerfectFor) > 0 {
		scores[PlaylistActivity] += 2
	}
	if strings.TrimSpace(p.Context.PrimarySetting) != "" {
		scores[PlaylistActivity]++
	}

	themes := p.Meaning.Themes
	if len(themes) > 0 {
		scores[PlaylistTheme]++
	}
	if len(themes) >= 3 {
		scores[PlaylistTheme]++
	}
	if strings.TrimSpace(p.Meaning.Message()) != "" {
		scores[PlaylistTheme]++
	}

	if name := dominantThemeName(themes); name != "" {
		for _, pt := range []PlaylistType{PlaylistMood, PlaylistActivity, PlaylistTheme} {
			if containsAny(name, typeKeywords[pt]) {
				scores[pt] += 2
			}
		}
	}

	best, runnerUp := PlaylistGeneral, 0.0
	var top float64
	for _, pt := range []PlaylistType{PlaylistMood, PlaylistActivity, PlaylistTheme} {
		v := scores[pt]
		switch {
		case v > top:
			runnerUp = top
			best, top = pt, v
		case v > runnerUp:
			runnerUp = v
		}
	}
	if top == 0 || top <= runnerUp*dominanceRatio {
		return PlaylistGeneral
	}
	return best
}

// dominantThemeName returns the lowercased name of the most confident
// theme, the first one on ties.
func dominantThemeName(themes []analysis.Theme) string {
	var name string
	best := -1.0
	for _, t := range themes {
		if c := t.ConfidenceOr(analysis.DefaultConfidence); c > best {
			best, name = c, t.Name
		}
	}
	return strings.ToLower(strings.TrimSpace(name))
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

var yearPrefix = regexp.MustCompile(`^\d{4}`)

// songAge returns the song's age in whole years from a timestamp that
// starts with a four-digit year.
func songAge(timestamp string, now time.Time) (int, bool) {
	m := yearPrefix.FindString(strings.TrimSpace(timestamp))
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return now.Year() - year, true
}

// ContextAwareWeights adjusts base weights for the song's era and for
// cultural themes, then rescales so the total matches the base total.
// base is not modified.
func (t Tuning) ContextAwareWeights(base Weights, song analysis.Song, now time.Time) Weights {
	w := base.Clone()
	adjusted := false

	if age, ok := songAge(song.Timestamp, now); ok {
		for _, era := range t.Eras {
			if age < era.MinAge {
				continue
			}
			w[MoodCompatibility] *= era.MoodCompatibility
			w[ThemeSimilarity] *= era.ThemeSimilarity
			w[SentimentCompatibility] *= era.SentimentCompatibility
			adjusted = true
			break
		}
	}

	if t.hasCulturalTheme(song.Analysis.Meaning.Themes) {
		w[ThemeSimilarity] *= t.CulturalTheme
		w[MoodCompatibility] *= t.CulturalMood
		adjusted = true
	}

	if !adjusted {
		return w
	}
	if total, want := w.Sum(), base.Sum(); total > 0 {
		scale := want / total
		for _, name := range componentOrder {
			if _, ok := w[name]; ok {
				w[name] *= scale
			}
		}
	}
	return w
}

func (t Tuning) hasCulturalTheme(themes []analysis.Theme) bool {
	for _, th := range themes {
		text := strings.ToLower(th.Name + " " + th.Description)
		if containsAny(text, t.CulturalKeywords) {
			return true
		}
	}
	return false
}

// FinalScore combines the component scores with the playlist type's weight
// profile. When song is non-nil the weights are adjusted for its era and
// themes. If the veto fires, the veto score replaces the weighted sum.
func (t Tuning) FinalScore(scores MatchScores, pt PlaylistType, song *analysis.Song, now time.Time) (float64, VetoResult) {
	weights, ok := t.Profiles[pt]
	if !ok {
		weights = t.Profiles[PlaylistGeneral]
	}
	if song != nil {
		weights = t.ContextAwareWeights(weights, *song, now)
	}

	var total float64
	for _, name := range componentOrder {
		w, ok := weights[name]
		if !ok {
			continue
		}
		v := clamp01(scores.Get(name))
		switch name {
		case MoodCompatibility:
			v = pow(v, t.MoodCurve)
		case SentimentCompatibility:
			v = pow(v, t.SentimentCurve)
		case ThematicContradiction:
			continue
		}
		total += w * v
	}

	veto := t.ApplyVetoLogic(scores)
	if veto.Vetoed {
		return veto.FinalScore, veto
	}
	return clamp01(total), veto
}
