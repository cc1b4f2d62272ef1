package workout

import (
	"github.com/claude/pulselift/internal/models"
	"github.com/google/uuid"
)

// DefaultMinViable is the smallest candidate list that can still build a
// complete routine. A prioritized-author subset below this size degrades
// to the full filtered set rather than producing a degenerate workout.
const DefaultMinViable = 6

// SelectionInput configures one candidate selection pass.
type SelectionInput struct {
	Targets            []models.BodyPart
	PrioritizedAuthors []uuid.UUID
	RequireVideo       bool
	// MinViable is the inclusive threshold at which the prioritized
	// subset is considered usable on its own. Zero means DefaultMinViable.
	MinViable int
}

// SelectCandidates filters and prioritizes the catalog, producing the
// ordered, deduplicated list of exercise names embedded in the prompt.
// Original catalog order is preserved throughout.
func SelectCandidates(catalog []models.Exercise, in SelectionInput) []string {
	minViable := in.MinViable
	if minViable <= 0 {
		minViable = DefaultMinViable
	}

	matched := make([]models.Exercise, 0, len(catalog))
	for _, ex := range catalog {
		if !ex.TargetsAny(in.Targets) {
			continue
		}
		if in.RequireVideo && !ex.HasVideo() {
			continue
		}
		matched = append(matched, ex)
	}

	candidates := matched
	if len(in.PrioritizedAuthors) > 0 {
		prioritized := make([]models.Exercise, 0, len(matched))
		for _, ex := range matched {
			if hasPrioritizedVideo(ex, in.PrioritizedAuthors) {
				prioritized = append(prioritized, ex)
			}
		}
		// An under-populated prioritized set must not produce a too-short
		// routine: below the viability threshold fall back to the full
		// filtered set. Completeness beats personalization here.
		if countDistinctNames(prioritized) >= minViable {
			candidates = prioritized
		}
	}

	return distinctNames(candidates)
}

func hasPrioritizedVideo(ex models.Exercise, authors []uuid.UUID) bool {
	for _, v := range ex.Videos {
		for _, a := range authors {
			if v.AuthorID == a {
				return true
			}
		}
	}
	return false
}

func distinctNames(exercises []models.Exercise) []string {
	seen := make(map[string]bool, len(exercises))
	names := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		if !seen[ex.Name] {
			seen[ex.Name] = true
			names = append(names, ex.Name)
		}
	}
	return names
}

func countDistinctNames(exercises []models.Exercise) int {
	seen := make(map[string]bool, len(exercises))
	for _, ex := range exercises {
		seen[ex.Name] = true
	}
	return len(seen)
}
