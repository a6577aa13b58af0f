package matching

import (
	"fmt"
	"math"
)

// TuningVersion identifies the default weight and threshold tables.
const TuningVersion = "2024.1"

// ContradictionTier flags a theme pair when its similarity is below
// MaxSimilarity and the sentiment condition holds.
type ContradictionTier struct {
	MaxSimilarity float64
	Level         float64
}

// VetoThresholds configures the proportional veto penalties.
type VetoThresholds struct {
	ContradictionFactor float64 // penalty = contradiction * factor
	ContradictionVeto   float64 // veto when penalty exceeds this

	MoodGapMin    float64 // penalty applies when 1-mood_compatibility exceeds this
	MoodFactor    float64
	MoodVeto      float64
	SentGapMin    float64
	SentFactor    float64
	SentimentVeto float64
}

// EraAdjustment scales weights for songs older than MinAge years.
type EraAdjustment struct {
	MinAge                 int
	MoodCompatibility      float64
	ThemeSimilarity        float64
	SentimentCompatibility float64
}

// Tuning holds every magic number the scoring pipeline uses, so the tables
// can be versioned and overridden independently of the logic.
type Tuning struct {
	Version  string
	Profiles map[PlaylistType]Weights

	// Non-linear curves applied before the weighted sum.
	MoodCurve      float64
	SentimentCurve float64

	Veto VetoThresholds

	// Theme contradiction tiers, checked in order: opposed, differing, distance only.
	OpposedTier    ContradictionTier
	DifferingTier  ContradictionTier
	DistanceTier   ContradictionTier
	ThemeNormalize float64

	// Era adjustments, checked oldest first.
	Eras []EraAdjustment

	CulturalKeywords []string
	CulturalTheme    float64
	CulturalMood     float64

	// Per-context weights for fit score comparison; unlisted contexts weigh 1.
	FitContextWeights map[string]float64
}

// DefaultTuning returns the built-in tables.
func DefaultTuning() Tuning {
	return Tuning{
		Version: TuningVersion,
		Profiles: map[PlaylistType]Weights{
			PlaylistMood: {
				ThemeSimilarity:        0.10,
				MoodSimilarity:         0.20,
				MoodCompatibility:      0.25,
				SentimentCompatibility: 0.15,
				IntensityMatch:         0.15,
				ActivityMatch:          0.05,
				FitScoreSimilarity:     0.10,
				ThematicContradiction:  0,
			},
			PlaylistActivity: {
				ThemeSimilarity:        0.10,
				MoodSimilarity:         0.10,
				MoodCompatibility:      0.10,
				SentimentCompatibility: 0.05,
				IntensityMatch:         0.15,
				ActivityMatch:          0.35,
				FitScoreSimilarity:     0.15,
				ThematicContradiction:  0,
			},
			PlaylistTheme: {
				ThemeSimilarity:        0.35,
				MoodSimilarity:         0.10,
				MoodCompatibility:      0.15,
				SentimentCompatibility: 0.15,
				IntensityMatch:         0.05,
				ActivityMatch:          0.05,
				FitScoreSimilarity:     0.15,
				ThematicContradiction:  0,
			},
			PlaylistGeneral: {
				ThemeSimilarity:        0.20,
				MoodSimilarity:         0.15,
				MoodCompatibility:      0.15,
				SentimentCompatibility: 0.15,
				IntensityMatch:         0.10,
				ActivityMatch:          0.10,
				FitScoreSimilarity:     0.15,
				ThematicContradiction:  0,
			},
		},
		MoodCurve:      0.6,
		SentimentCurve: 0.8,
		Veto: VetoThresholds{
			ContradictionFactor: 1.5,
			ContradictionVeto:   0.5,
			MoodGapMin:          0.3,
			MoodFactor:          1.2,
			MoodVeto:            0.5,
			SentGapMin:          0.4,
			SentFactor:          0.8,
			SentimentVeto:       0.4,
		},
		OpposedTier:    ContradictionTier{MaxSimilarity: 0.3, Level: 0.9},
		DifferingTier:  ContradictionTier{MaxSimilarity: 0.4, Level: 0.7},
		DistanceTier:   ContradictionTier{MaxSimilarity: 0.25, Level: 0.5},
		ThemeNormalize: 0.7,
		Eras: []EraAdjustment{
			{MinAge: 21, MoodCompatibility: 0.85, ThemeSimilarity: 1.15, SentimentCompatibility: 0.9},
			{MinAge: 5, MoodCompatibility: 0.95, ThemeSimilarity: 1.05, SentimentCompatibility: 1},
		},
		CulturalKeywords: []string{
			"jazz", "blues", "classical", "folk", "traditional",
			"regional", "historical", "cultural", "heritage",
		},
		CulturalTheme: 1.1,
		CulturalMood:  0.9,
		FitContextWeights: map[string]float64{
			"relaxation": 1.5,
			"focus":      1.3,
			"working":    1.2,
			"workout":    1.3,
			"party":      1.2,
			"sleep":      1.4,
		},
	}
}

// WithProfileOverrides returns a copy of t with the given weights replacing
// the built-in ones. Unknown playlist types or components are rejected, and
// every resulting profile must still sum to 1.
func (t Tuning) WithProfileOverrides(overrides map[string]map[string]float64) (Tuning, error) {
	if len(overrides) == 0 {
		return t, nil
	}

	profiles := make(map[PlaylistType]Weights, len(t.Profiles))
	for k, w := range t.Profiles {
		profiles[k] = w.Clone()
	}

	for typeName, weights := range overrides {
		pt := PlaylistType(typeName)
		profile, ok := profiles[pt]
		if !ok {
			return t, fmt.Errorf("unknown playlist type %q", typeName)
		}
		for name, v := range weights {
			if _, known := profile[name]; !known {
				return t, fmt.Errorf("unknown component %q in %s profile", name, typeName)
			}
			if name == ThematicContradiction && v != 0 {
				return t, fmt.Errorf("%s weight must be 0: it acts only through the veto", ThematicContradiction)
			}
			profile[name] = v
		}
		if sum := profile.Sum(); math.Abs(sum-1) > 1e-6 {
			return t, fmt.Errorf("%s profile weights sum to %.4f, want 1", typeName, sum)
		}
	}

	t.Profiles = profiles
	t.Version = t.Version + "+custom"
	return t, nil
}
