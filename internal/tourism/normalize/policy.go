package normalize

// TrendOrder selects how flattened trend points are ordered.
type TrendOrder string

const (
	// TrendOrderInsertion keeps the backend's key order.
	TrendOrderInsertion TrendOrder = "insertion"
	// TrendOrderChronological sorts numeric periods ascending and keeps
	// insertion order when any period is not numeric.
	TrendOrderChronological TrendOrder = "chronological"
)

// Policy carries the knobs that used to differ between page variants.
type Policy struct {
	TrendOrder      TrendOrder
	ComparisonYears []int
	GrowthFrom      int
	GrowthTo        int
}

// DefaultPolicy returns the canonical dashboard behaviour.
func DefaultPolicy() Policy {
	return Policy{
		TrendOrder:      TrendOrderChronological,
		ComparisonYears: []int{2020, 2021, 2022, 2023, 2024, 2025},
		GrowthFrom:      2023,
		GrowthTo:        2024,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.TrendOrder == "" {
		p.TrendOrder = def.TrendOrder
	}
	if len(p.ComparisonYears) == 0 {
		p.ComparisonYears = def.ComparisonYears
	}
	if p.GrowthFrom == 0 || p.GrowthTo == 0 {
		p.GrowthFrom, p.GrowthTo = def.GrowthFrom, def.GrowthTo
	}
	return p
}
