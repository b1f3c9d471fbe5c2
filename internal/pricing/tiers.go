package pricing

import (
	"fmt"
)

// TierProblem describes why a tier list is not a valid partition.
type TierProblem struct {
	Index   int
	Field   string
	Message string
}

// ValidateTiers checks that tiers are sorted, contiguous and non-overlapping,
// that each closed tier has MinArea < MaxArea, and that only the last tier is
// open-ended. It returns every problem found.
func ValidateTiers(tiers []Tier) []TierProblem {
	var problems []TierProblem
	if len(tiers) == 0 {
		return []TierProblem{{Index: -1, Field: "tiers", Message: "at least one tier is required"}}
	}

	for i, t := range tiers {
		if t.MinArea.IsNegative() {
			problems = append(problems, TierProblem{Index: i, Field: "minArea", Message: "must not be negative"})
		}
		if t.PricePerSqm.IsNegative() {
			problems = append(problems, TierProblem{Index: i, Field: "pricePerSqm", Message: "must not be negative"})
		}

		last := i == len(tiers)-1
		if t.MaxArea == nil {
			if !last {
				problems = append(problems, TierProblem{Index: i, Field: "maxArea", Message: "only the last tier may be open-ended"})
			}
			continue
		}
		if !t.MaxArea.GreaterThan(t.MinArea) {
			problems = append(problems, TierProblem{Index: i, Field: "maxArea", Message: "must be greater than minArea"})
		}
		if !last && !tiers[i+1].MinArea.Equal(*t.MaxArea) {
			problems = append(problems, TierProblem{
				Index:   i + 1,
				Field:   "minArea",
				Message: fmt.Sprintf("must equal previous tier maxArea %s", t.MaxArea.String()),
			})
		}
	}
	return problems
}
