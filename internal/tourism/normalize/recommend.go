package normalize

import (
	"sort"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// Recommendations normalizes a /recommend response and ranks it. The
// backend answers an empty search with {"message": ...} and no list, which
// yields an empty slice.
func Recommendations(raw []byte) []view.Recommendation {
	r := root(raw)
	list := r
	if !list.IsArray() {
		list = field(r, "recommendations", "results")
	}
	recs := []view.Recommendation{}
	if !list.IsArray() {
		return recs
	}
	for _, item := range list.Array() {
		if !item.IsObject() {
			continue
		}
		risk := numberOr(field(item, "risk_index"), 0)
		recs = append(recs, view.Recommendation{
			State:           text(field(item, "state", "state_name")),
			City:            text(field(item, "city", "city_name")),
			Category:        textOr(field(item, "category"), view.DefaultCategory),
			TouristRating:   numberOr(field(item, "tourist_rating", "rating"), 0),
			RiskIndex:       risk,
			RiskLevel:       RiskLevel(risk),
			BestTimeToVisit: firstOf(field(item, "best_time_to_visit", "best_month"), view.DefaultBestMonth),
			Description:     text(field(item, "description")),
		})
	}
	return RankRecommendations(recs)
}

// RankRecommendations sorts by rating, best first; ties keep source order.
func RankRecommendations(in []view.Recommendation) []view.Recommendation {
	out := make([]view.Recommendation, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TouristRating > out[j].TouristRating
	})
	return out
}
