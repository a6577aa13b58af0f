package matching

import (
	"context"
	"strings"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/metrics"
)

// AnalysisService is the remote vectorization and sentiment service.
type AnalysisService interface {
	VectorizeText(ctx context.Context, text string) ([]float64, error)
	VectorizeSong(ctx context.Context, song analysis.Song) ([]float64, error)
	VectorizePlaylist(ctx context.Context, playlist analysis.Playlist) ([]float64, error)
	AnalyzeSentiment(ctx context.Context, text string) (analysis.SentimentScore, error)
	AnalyzeMoodDimensions(ctx context.Context, text string) (analysis.MoodDimensions, error)
}

// The helpers below never fail: a failed call is logged, counted and
// replaced by a conservative default.

func (e *Engine) embedText(ctx context.Context, text string) []float64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	vec, err := e.svc.VectorizeText(ctx, text)
	if err != nil {
		e.degraded(ctx, "embedding", "vectorize/text", err)
		return nil
	}
	return vec
}

func (e *Engine) songEmbedding(ctx context.Context, song analysis.Song) []float64 {
	vec, err := e.svc.VectorizeSong(ctx, song)
	if err != nil {
		e.degraded(ctx, "embedding", "vectorize/song", err)
		return nil
	}
	return vec
}

func (e *Engine) playlistEmbedding(ctx context.Context, playlist analysis.Playlist) []float64 {
	vec, err := e.svc.VectorizePlaylist(ctx, playlist)
	if err != nil {
		e.degraded(ctx, "embedding", "vectorize/playlist", err)
		return nil
	}
	return vec
}

// sentiment returns nil for blank text so callers can tell "absent" from
// "failed". On failure it uses the keyword lexicon when offline fallback is
// enabled, otherwise DefaultSentiment.
func (e *Engine) sentiment(ctx context.Context, text string) *analysis.SentimentScore {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	score, err := e.svc.AnalyzeSentiment(ctx, text)
	if err != nil {
		e.degraded(ctx, "sentiment", "analyze/sentiment", err)
		if e.offline {
			s := LexiconSentiment(text)
			return &s
		}
		s := analysis.DefaultSentiment
		return &s
	}
	return &score
}

// MoodDimensions fetches VAD dimensions for text, defaulting to the
// neutral midpoint on failure or blank text.
func (e *Engine) MoodDimensions(ctx context.Context, text string) analysis.MoodDimensions {
	if strings.TrimSpace(text) == "" {
		return analysis.DefaultMoodDimensions
	}
	dims, err := e.svc.AnalyzeMoodDimensions(ctx, text)
	if err != nil {
		e.degraded(ctx, "mood_dimensions", "analyze/mood_dimensions", err)
		return analysis.DefaultMoodDimensions
	}
	return dims
}

func (e *Engine) degraded(ctx context.Context, kind, endpoint string, err error) {
	metrics.Fallbacks.WithLabelValues(kind).Inc()
	ev := logging.Ctx(ctx).Warn()
	if ctx.Err() != nil {
		ev = logging.Ctx(ctx).Debug()
	}
	ev.
		Err(err).
		Str("endpoint", endpoint).
		Str("fallback", kind).
		Msg("analysis call failed, using default")
}
