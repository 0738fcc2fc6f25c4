package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownProjectType is returned by Compute when the project type is not
// present in the table. Callers translate it to a 400.
var ErrUnknownProjectType = errors.New("pricing: unknown project type")

// SelectedFeature is one recognised add-on included in a Breakdown.
type SelectedFeature struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Breakdown is the computed price decomposition. All amounts are whole
// currency units. Invariant: FinalPrice == TimelineAdjustedPrice +
// FeatureAdditions, and FeatureAdditions is never negative.
type Breakdown struct {
	BasePrice             int64             `json:"basePrice"`
	TimelineAdjustedPrice int64             `json:"timelineAdjustedPrice"`
	FeatureAdditions      int64             `json:"featureAdditions"`
	FinalPrice            int64             `json:"finalPrice"`
	SelectedFeatures      []SelectedFeature `json:"selectedFeatures"`

	// UnknownFeatures lists feature IDs that were requested but not present
	// in the table. They are excluded from the price; callers log them so
	// drift between the frontend options and this table is detectable.
	UnknownFeatures []string `json:"-"`
}

// Compute derives a Breakdown from a submission's project type, timeline and
// feature set. It is pure and deterministic: identical inputs always yield
// identical output, and it is safe to call concurrently.
//
// Lookup semantics:
//   - unknown projectType → ErrUnknownProjectType
//   - unknown timeline    → neutral multiplier 1.0, no error
//   - unknown featureID   → skipped, reported in UnknownFeatures
func (t *Table) Compute(projectType, timeline string, features []string) (Breakdown, error) {
	pt, ok := t.ProjectTypes[projectType]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownProjectType, projectType)
	}

	multiplier, ok := t.TimelineMultipliers[timeline]
	if !ok {
		multiplier = 1.0
	}

	adjusted := roundHalfUp(float64(pt.BasePrice) * multiplier)

	var (
		selected  []SelectedFeature
		unknown   []string
		additions int64
	)
	seen := make(map[string]struct{}, len(features))
	for _, id := range features {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		f, ok := t.Features[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		selected = append(selected, SelectedFeature{ID: id, Name: f.Name, Price: f.Price})
		additions += f.Price
	}

	// Deterministic ordering regardless of request order.
	sort.Slice(selected, func(a, b int) bool { return selected[a].ID < selected[b].ID })
	sort.Strings(unknown)

	return Breakdown{
		BasePrice:             pt.BasePrice,
		TimelineAdjustedPrice: adjusted,
		FeatureAdditions:      additions,
		FinalPrice:            adjusted + additions,
		SelectedFeatures:      selected,
		UnknownFeatures:       unknown,
	}, nil
}

// roundHalfUp rounds to the nearest integer with ties going up. Base prices
// and multipliers are non-negative so Floor(x+0.5) is exact here.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
