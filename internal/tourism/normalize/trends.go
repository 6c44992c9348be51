package normalize

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// Trends flattens a {period: arrivals} mapping into chart points. The
// legacy {"trends": [{"year", "arrivals"}]} shape is accepted as well.
func Trends(raw []byte, order TrendOrder) []view.TrendPoint {
	r := root(raw)
	if nested := field(r, "trends"); nested.IsArray() || nested.IsObject() {
		r = nested
	}

	points := []view.TrendPoint{}
	switch {
	case r.IsArray():
		for _, item := range r.Array() {
			period := text(field(item, "year", "period", "month"))
			if period == "" {
				continue
			}
			points = append(points, view.TrendPoint{
				Period:   period,
				Arrivals: count(field(item, "arrivals", "visitors", "count")),
			})
		}
	case r.IsObject():
		r.ForEach(func(key, value gjson.Result) bool {
			if value.IsObject() || value.IsArray() {
				return true
			}
			if value.Type == gjson.String {
				if _, ok := number(value); !ok {
					return true
				}
			}
			points = append(points, view.TrendPoint{Period: key.String(), Arrivals: count(value)})
			return true
		})
	}

	if order == TrendOrderChronological {
		sortChronological(points)
	}
	return points
}

func sortChronological(points []view.TrendPoint) {
	keys := make([]float64, len(points))
	for i, p := range points {
		f, err := cast.ToFloat64E(p.Period)
		if err != nil {
			return
		}
		keys[i] = f
	}
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	sorted := make([]view.TrendPoint, len(points))
	for i, j := range idx {
		sorted[i] = points[j]
	}
	copy(points, sorted)
}

// GrowthRate is the percentage change from previous to latest, rounded to
// one decimal. It is 0 when there is no positive baseline.
func GrowthRate(previous, latest float64) float64 {
	if previous <= 0 {
		return 0
	}
	return round1((latest - previous) / previous * 100)
}

// FormatGrowth renders a growth rate the way the insight cards show it.
func FormatGrowth(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}
