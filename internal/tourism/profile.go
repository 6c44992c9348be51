package tourism

import (
	"github.com/i474232898/tourism-dashboard/internal/tourism/normalize"
)

// JoinMode controls how the analysis view reacts to a failed section.
type JoinMode string

const (
	// JoinAll fails the whole view when any section fails.
	JoinAll JoinMode = "all"
	// JoinPartial renders what succeeded and reports failed sections.
	JoinPartial JoinMode = "partial"
)

// Profile holds the presentation knobs of a deployment.
type Profile struct {
	Name              string               `toml:"name"`
	TrendOrder        normalize.TrendOrder `toml:"trend_order"`
	JoinMode          JoinMode             `toml:"join_mode"`
	ComparisonYears   []int                `toml:"comparison_years"`
	GrowthFrom        int                  `toml:"growth_from"`
	GrowthTo          int                  `toml:"growth_to"`
	FallbackInterests []string             `toml:"fallback_interests"`
}

// DefaultInterests is offered when no interest list can be fetched.
var DefaultInterests = []string{"Adventure", "Beach", "Heritage", "Hill Station", "Spiritual", "Wildlife"}

func DefaultProfile() Profile {
	p := normalize.DefaultPolicy()
	return Profile{
		Name:              "default",
		TrendOrder:        p.TrendOrder,
		JoinMode:          JoinAll,
		ComparisonYears:   p.ComparisonYears,
		GrowthFrom:        p.GrowthFrom,
		GrowthTo:          p.GrowthTo,
		FallbackInterests: DefaultInterests,
	}
}

// WithDefaults fills zero fields from DefaultProfile.
func (p Profile) WithDefaults() Profile {
	def := DefaultProfile()
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.TrendOrder == "" {
		p.TrendOrder = def.TrendOrder
	}
	if p.JoinMode == "" {
		p.JoinMode = def.JoinMode
	}
	if len(p.ComparisonYears) == 0 {
		p.ComparisonYears = def.ComparisonYears
	}
	if p.GrowthFrom == 0 || p.GrowthTo == 0 {
		p.GrowthFrom, p.GrowthTo = def.GrowthFrom, def.GrowthTo
	}
	if len(p.FallbackInterests) == 0 {
		p.FallbackInterests = def.FallbackInterests
	}
	return p
}

// Policy is the normalizer view of the profile.
func (p Profile) Policy() normalize.Policy {
	return normalize.Policy{
		TrendOrder:      p.TrendOrder,
		ComparisonYears: p.ComparisonYears,
		GrowthFrom:      p.GrowthFrom,
		GrowthTo:        p.GrowthTo,
	}
}
