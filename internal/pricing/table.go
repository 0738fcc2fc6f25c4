// Package pricing implements the server-side quote computation for the
// estimate and checkout flows. It is intentionally dependency-free: it
// imports nothing from internal/ and can be tested without any wiring.
package pricing

import "fmt"

// ProjectType holds the base price for one project category. Prices are
// whole currency units (dollars); conversion to cents happens only at the
// payment boundary.
type ProjectType struct {
	Name      string
	BasePrice int64
}

// Feature is one selectable add-on.
type Feature struct {
	Name  string
	Price int64
}

// BudgetTier is informational only — it never enters the final price. It is
// kept in the table so the frontend options and the server stay in one place.
type BudgetTier struct {
	Min     int64
	Max     int64 // 0 means open-ended
	Default int64
}

// Table is the static pricing configuration. Every projectType referenced by
// a submission must exist here; unknown timelines and features are handled
// with documented defaults (see Compute).
type Table struct {
	ProjectTypes        map[string]ProjectType
	TimelineMultipliers map[string]float64
	Features            map[string]Feature
	BudgetTiers         map[string]BudgetTier
}

// Default returns the production pricing table.
func Default() *Table {
	return &Table{
		ProjectTypes: map[string]ProjectType{
			"landing":   {Name: "Landing Page", BasePrice: 299},
			"corporate": {Name: "Corporate Website", BasePrice: 599},
			"ecommerce": {Name: "E-commerce Store", BasePrice: 1299},
			"webapp":    {Name: "Web Application", BasePrice: 2499},
		},
		TimelineMultipliers: map[string]float64{
			"asap":     1.5,
			"1week":    1.25,
			"2weeks":   1.0,
			"1month":   0.95,
			"flexible": 0.9,
		},
		Features: map[string]Feature{
			"seo":          {Name: "SEO Optimization", Price: 149},
			"cms":          {Name: "Content Management", Price: 199},
			"analytics":    {Name: "Analytics Setup", Price: 99},
			"booking":      {Name: "Booking System", Price: 249},
			"multilingual": {Name: "Multilingual Support", Price: 179},
			"payments":     {Name: "Payment Integration", Price: 299},
			"blog":         {Name: "Blog Section", Price: 129},
			"chat":         {Name: "Live Chat Widget", Price: 89},
		},
		BudgetTiers: map[string]BudgetTier{
			"under500":  {Min: 0, Max: 500, Default: 299},
			"500-1500":  {Min: 500, Max: 1500, Default: 899},
			"1500-3000": {Min: 1500, Max: 3000, Default: 2199},
			"3000plus":  {Min: 3000, Max: 0, Default: 3499},
		},
	}
}

// Validate checks internal consistency. Call once at startup, not per
// request.
func (t *Table) Validate() error {
	if len(t.ProjectTypes) == 0 {
		return fmt.Errorf("pricing table: project types must not be empty")
	}
	for id, pt := range t.ProjectTypes {
		if pt.BasePrice <= 0 {
			return fmt.Errorf("pricing table: project type %q has non-positive base price %d", id, pt.BasePrice)
		}
	}
	for id, m := range t.TimelineMultipliers {
		if m <= 0 {
			return fmt.Errorf("pricing table: timeline %q has non-positive multiplier %v", id, m)
		}
	}
	for id, f := range t.Features {
		if f.Price < 0 {
			return fmt.Errorf("pricing table: feature %q has negative price %d", id, f.Price)
		}
	}
	return nil
}
