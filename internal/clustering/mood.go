package clustering

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-playlist-matcher/internal/analysis"
	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/matching"
)

// resultObservation wraps a MatchResult to implement clusters.Observation.
type resultObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o resultObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o resultObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// GroupByMood clusters results by their mood dimensions; dims[i] belongs to
// results[i]. Results without dimensions, and clusters smaller than
// MinGroupSize, are returned as ungrouped. Groups are ordered by their best
// match, and results within each group by similarity.
func GroupByMood(results []matching.MatchResult, dims []analysis.MoodDimensions, cfg Config) ([]MoodGroup, []matching.MatchResult) {
	if len(results) == 0 {
		return nil, nil
	}

	if cfg.NumGroups <= 0 {
		cfg.NumGroups = DefaultConfig().NumGroups
	}

	n := min(len(results), len(dims))
	ungrouped := slices.Clone(results[n:])

	// Too few results to form the requested number of groups
	if n < cfg.NumGroups {
		return nil, sortBySimilarity(slices.Clone(results))
	}

	var obs clusters.Observations
	for i := 0; i < n; i++ {
		obs = append(obs, resultObservation{
			index:  i,
			coords: clusters.Coordinates{dims[i].Valence, dims[i].Arousal, dims[i].Dominance},
		})
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, cfg.NumGroups)
	if err != nil {
		logging.Warn().Err(err).Msg("k-means mood grouping failed")
		return nil, sortBySimilarity(slices.Clone(results))
	}

	var groups []MoodGroup
	seen := make(map[string]int)

	for _, cluster := range partition {
		var members []matching.MatchResult
		for _, o := range cluster.Observations {
			if ro, ok := o.(resultObservation); ok {
				members = append(members, results[ro.index])
			}
		}

		if len(members) == 0 {
			continue
		}
		if len(members) < cfg.MinGroupSize {
			ungrouped = append(ungrouped, members...)
			continue
		}

		centroid := centerOf(cluster.Center)
		name := generateMoodName(centroid)
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s %d", name, seen[name])
		}

		groups = append(groups, MoodGroup{
			Name:        name,
			Description: describeMood(centroid),
			Centroid:    centroid,
			Results:     sortBySimilarity(members),
		})
	}

	slices.SortStableFunc(groups, func(a, b MoodGroup) int {
		return cmp.Compare(b.Results[0].Similarity, a.Results[0].Similarity)
	})

	return groups, sortBySimilarity(ungrouped)
}

func centerOf(c clusters.Coordinates) analysis.MoodDimensions {
	if len(c) < 3 {
		return analysis.DefaultMoodDimensions
	}
	return analysis.MoodDimensions{Valence: c[0], Arousal: c[1], Dominance: c[2]}
}

func sortBySimilarity(rs []matching.MatchResult) []matching.MatchResult {
	slices.SortStableFunc(rs, func(a, b matching.MatchResult) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	return rs
}
