package matching

import (
	"strings"
	"unicode"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
)

// Offline fallback: a small keyword lexicon used only when the engine is
// built WithOfflineFallback and the analysis service cannot be reached.

var positiveWords = map[string]bool{
	"love": true, "joy": true, "happy": true, "happiness": true, "hope": true,
	"hopeful": true, "peace": true, "peaceful": true, "calm": true, "celebration": true,
	"celebrate": true, "uplifting": true, "euphoric": true, "bright": true, "warm": true,
	"gratitude": true, "healing": true, "self-care": true, "freedom": true, "triumph": true,
	"romance": true, "romantic": true, "fun": true, "playful": true, "serene": true,
	"empowerment": true, "confident": true, "kindness": true, "friendship": true, "growth": true,
}

var negativeWords = map[string]bool{
	"hate": true, "anger": true, "angry": true, "rage": true, "violence": true,
	"violent": true, "death": true, "grief": true, "sad": true, "sadness": true,
	"despair": true, "loss": true, "lonely": true, "loneliness": true, "fear": true,
	"dark": true, "pain": true, "heartbreak": true, "betrayal": true, "revenge": true,
	"war": true, "destruction": true, "addiction": true, "abuse": true, "bitter": true,
	"melancholy": true, "anxiety": true, "depression": true, "regret": true, "aggressive": true,
}

// LexiconSentiment estimates sentiment by counting lexicon words.
// Text with no lexicon hits is neutral.
func LexiconSentiment(text string) analysis.SentimentScore {
	var pos, neg, total int
	for _, w := range tokenize(text) {
		total++
		switch {
		case positiveWords[w]:
			pos++
		case negativeWords[w]:
			neg++
		}
	}
	if pos+neg == 0 {
		return analysis.SentimentScore{Positive: 0.1, Negative: 0.1, Neutral: 0.8}
	}
	hits := float64(pos + neg)
	coverage := hits / float64(total)
	if coverage > 1 {
		coverage = 1
	}
	neutral := 0.2 + 0.6*(1-coverage)
	rest := 1 - neutral
	return analysis.SentimentScore{
		Positive: rest * float64(pos) / hits,
		Negative: rest * float64(neg) / hits,
		Neutral:  neutral,
	}
}

// opposingThemes lists theme keywords that contradict each other outright.
var opposingThemes = map[string][]string{
	"self-care":   {"violence", "self-destruction", "addiction", "abuse"},
	"peace":       {"war", "violence", "conflict", "rage"},
	"love":        {"hate", "betrayal", "revenge"},
	"hope":        {"despair", "hopelessness", "nihilism"},
	"celebration": {"grief", "mourning", "death"},
	"healing":     {"pain", "abuse", "self-destruction"},
	"faith":       {"nihilism", "doubt"},
	"sobriety":    {"addiction", "partying", "intoxication"},
	"calm":        {"rage", "chaos", "aggression"},
	"unity":       {"division", "isolation"},
}

// LexiconContradiction reports whether two theme names are a known opposed
// pair, checking both directions.
func LexiconContradiction(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return containsTheme(opposingThemes[a], b) || containsTheme(opposingThemes[b], a)
}

func containsTheme(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

// tokenize lowercases text and splits it on anything that is not a letter,
// digit, hyphen or apostrophe.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}
