package scenes

import (
	"sort"

	"github.com/artryazanov/shorts-maker/internal/audio"
)

// RankedScene is a combined scene with its mean action score
type RankedScene struct {
	Scene       TimeRange
	ActionScore float64
}

// Shortlist is the final ranked, length-capped, duration-filtered list
// of candidate shorts, ordered by action score descending.
type Shortlist []RankedScene

// Ranker maps combined scenes to their mean action score and produces
// a deterministic, truncated shortlist.
type Ranker struct {
	minLength  float64
	maxLength  float64
	sceneLimit int
}

// NewRanker creates a ranker with the given duration bounds and cap
func NewRanker(minShortLength, maxShortLength float64, sceneLimit int) *Ranker {
	return &Ranker{
		minLength:  minShortLength,
		maxLength:  maxShortLength,
		sceneLimit: sceneLimit,
	}
}

// Rank scores each combined scene by the mean of action frame scores
// whose timestamp falls in [Start, End), discards scenes whose duration
// lies outside [minLength, maxLength], sorts by score descending with
// chronological tie-break, and truncates to the scene limit.
//
// Scenes and profile are both chronologically ordered, so scoring is a
// single linear sweep over the profile rather than a range scan per
// scene.
func (r *Ranker) Rank(profile audio.ActionProfile, combined []TimeRange) Shortlist {
	shortlist := make(Shortlist, 0, len(combined))

	i := 0
	for _, scene := range combined {
		d := scene.Duration()

		for i < len(profile) && profile[i].Timestamp < scene.Start {
			i++
		}
		var sum float64
		var count int
		for j := i; j < len(profile) && profile[j].Timestamp < scene.End; j++ {
			sum += profile[j].Score
			count++
		}
		i += count

		if d < r.minLength || d > r.maxLength {
			continue
		}

		var score float64
		if count > 0 {
			score = sum / float64(count)
		}

		shortlist = append(shortlist, RankedScene{Scene: scene, ActionScore: score})
	}

	sort.SliceStable(shortlist, func(a, b int) bool {
		if shortlist[a].ActionScore != shortlist[b].ActionScore {
			return shortlist[a].ActionScore > shortlist[b].ActionScore
		}
		return shortlist[a].Scene.Start < shortlist[b].Scene.Start
	})

	if len(shortlist) > r.sceneLimit {
		shortlist = shortlist[:r.sceneLimit]
	}

	return shortlist
}
