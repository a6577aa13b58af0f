// Package matching scores songs against a playlist's analysis and ranks
// them. Scoring never fails: missing data and failed analysis calls
// degrade to conservative partial scores.
package matching

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/metrics"
)

// DefaultConcurrency is the number of songs evaluated at once.
const DefaultConcurrency = 8

// Engine matches songs to playlists. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	svc         AnalysisService
	tuning      Tuning
	offline     bool
	concurrency int
	songTimeout time.Duration
	featureDims int
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTuning replaces the default weight and threshold tables.
func WithTuning(t Tuning) Option {
	return func(e *Engine) {
		e.tuning = t
	}
}

// WithConcurrency sets the number of songs evaluated concurrently.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithOfflineFallback enables the keyword lexicon when the analysis
// service fails.
func WithOfflineFallback(enabled bool) Option {
	return func(e *Engine) {
		e.offline = enabled
	}
}

// WithSongTimeout bounds the time spent on each song. Zero means no limit
// beyond the caller's context.
func WithSongTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.songTimeout = d
		}
	}
}

// WithFeatureDims sets the length of the positional embedding slices.
// Zero derives it from the embedding length.
func WithFeatureDims(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.featureDims = n
		}
	}
}

// WithClock overrides the clock used to infer song age.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine backed by svc.
func NewEngine(svc AnalysisService, opts ...Option) *Engine {
	e := &Engine{
		svc:         svc,
		tuning:      DefaultTuning(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tuning returns the tables the engine scores with.
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// CalculateFinalScore combines component scores for the playlist type,
// adjusting weights for song when it is non-nil.
func (e *Engine) CalculateFinalScore(scores MatchScores, pt PlaylistType, song *analysis.Song) (float64, VetoResult) {
	return e.tuning.FinalScore(scores, pt, song, e.now())
}

// profileFeatures is everything derived from one side's analysis.
type profileFeatures struct {
	embedding  []float64
	theme      []float64
	mood       []float64
	activity   []float64
	activities []string
	sentiment  *analysis.SentimentScore
	themes     []themeFeatures
	moodInfo   *moodFeatures
	profile    analysis.Analysis
}

func (e *Engine) slice(f *profileFeatures) {
	f.theme = ExtractFeatureVector(f.embedding, FeatureTheme, e.featureDims)
	f.mood = ExtractFeatureVector(f.embedding, FeatureMood, e.featureDims)
	f.activity = ExtractFeatureVector(f.embedding, FeatureActivity, e.featureDims)
}

// textSentiment is the sentiment of the combined themes and mood text.
func (e *Engine) textSentiment(ctx context.Context, a analysis.Analysis) *analysis.SentimentScore {
	text := strings.TrimSpace(ExtractThemesText(a) + " " + ExtractMoodText(a))
	return e.sentiment(ctx, text)
}

func (e *Engine) playlistFeatures(ctx context.Context, p analysis.Playlist) *profileFeatures {
	a := p.Profile()
	f := &profileFeatures{
		embedding:  e.playlistEmbedding(ctx, p),
		activities: ExtractActivities(a.Context),
		sentiment:  e.textSentiment(ctx, a),
		themes:     e.themeFeatures(ctx, a.Meaning.Themes),
		moodInfo:   e.moodFeatures(ctx, a.Emotional.Mood()),
		profile:    a,
	}
	e.slice(f)
	return f
}

func (e *Engine) songFeatures(ctx context.Context, s analysis.Song) *profileFeatures {
	a := s.Profile()
	f := &profileFeatures{
		embedding:  e.songEmbedding(ctx, s),
		activities: ExtractActivities(a.Context),
		sentiment:  e.textSentiment(ctx, a),
		themes:     e.themeFeatures(ctx, a.Meaning.Themes),
		moodInfo:   e.moodFeatures(ctx, a.Emotional.Mood()),
		profile:    a,
	}
	e.slice(f)
	return f
}

// Match scores every song against the playlist and returns the results
// sorted by similarity, highest first, ties in input order. Every song gets
// a result. If ctx is cancelled, the remaining songs are scored from
// defaults and ctx.Err() is returned alongside the results.
func (e *Engine) Match(ctx context.Context, playlist analysis.Playlist, songs []analysis.Song) ([]MatchResult, error) {
	if len(songs) == 0 {
		return []MatchResult{}, nil
	}
	start := time.Now()

	pt := DeterminePlaylistType(playlist)
	pf := e.playlistFeatures(ctx, playlist)

	results := make([]MatchResult, len(songs))

	type workItem struct {
		index int
		song  analysis.Song
	}
	workCh := make(chan workItem, len(songs))
	for i, s := range songs {
		workCh <- workItem{index: i, song: s}
	}
	close(workCh)

	workers := e.concurrency
	if workers > len(songs) {
		workers = len(songs)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				results[work.index] = e.evaluate(ctx, pf, pt, work.song)
			}
		}()
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	var vetoed int
	for _, r := range results {
		if r.VetoApplied {
			vetoed++
		}
	}
	elapsed := time.Since(start)
	metrics.RunDuration.Observe(elapsed.Seconds())
	metrics.SongsEvaluated.Add(float64(len(songs)))
	logging.Ctx(ctx).Info().
		Str("playlist_id", playlist.ID).
		Str("playlist_type", string(pt)).
		Int("songs", len(songs)).
		Int("vetoed", vetoed).
		Dur("duration", elapsed).
		Msg("match run complete")

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// MatchSong scores a single song against the playlist.
func (e *Engine) MatchSong(ctx context.Context, playlist analysis.Playlist, song analysis.Song) MatchResult {
	return e.evaluate(ctx, e.playlistFeatures(ctx, playlist), DeterminePlaylistType(playlist), song)
}

func (e *Engine) evaluate(ctx context.Context, pf *profileFeatures, pt PlaylistType, song analysis.Song) MatchResult {
	if e.songTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.songTimeout)
		defer cancel()
	}

	sf := e.songFeatures(ctx, song)
	scores, contradictions := e.score(pf, sf)

	final, veto := e.CalculateFinalScore(scores, pt, &song)
	for _, rule := range veto.Rules {
		metrics.Vetoes.WithLabelValues(rule).Inc()
	}

	return MatchResult{
		Track:          song.Track,
		Similarity:     final,
		Scores:         scores,
		VetoApplied:    veto.Vetoed,
		VetoReason:     veto.Reason,
		Contradictions: contradictions,
	}
}

// score computes the eight components from prefetched features. It makes
// no remote calls.
func (e *Engine) score(pf, sf *profileFeatures) (MatchScores, []string) {
	moodSim := EnhancedSimilarity(pf.mood, sf.mood)

	var moodCompat float64
	if pf.moodInfo == nil || sf.moodInfo == nil {
		moodCompat = partial(pf.moodInfo != nil, sf.moodInfo != nil, partialMood)
	} else {
		moodCompat = moodCompatibility(compareMoods(pf.moodInfo, sf.moodInfo), moodSim)
	}

	thematic := e.scoreThemePairs(pf.themes, sf.themes)

	return MatchScores{
		ThemeSimilarity:        EnhancedSimilarity(pf.theme, sf.theme),
		MoodSimilarity:         moodSim,
		MoodCompatibility:      moodCompat,
		SentimentCompatibility: CalculateSentimentCompatibility(pf.sentiment, sf.sentiment),
		IntensityMatch: CalculateIntensityMatch(
			pf.profile.Emotional.IntensityScore,
			sf.profile.Emotional.IntensityScore,
		),
		ActivityMatch: CalculateActivityMatch(
			pf.activities, sf.activities,
			EnhancedSimilarity(pf.activity, sf.activity),
		),
		FitScoreSimilarity: CalculateFitScoreSimilarity(
			pf.profile.Context.FitScores,
			sf.profile.Context.FitScores,
			e.tuning.FitContextWeights,
		),
		ThematicContradiction: thematic.Score,
	}, thematic.Contradictions
}
