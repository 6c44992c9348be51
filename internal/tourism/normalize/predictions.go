package normalize

import (
	"sort"

	"github.com/tidwall/gjson"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// Predictions normalizes the per-category forecast of a state.
func Predictions(raw []byte) view.Predictions {
	r := root(raw)
	out := view.Predictions{
		State:      text(field(r, "state")),
		Names:      []string{},
		Categories: []view.CategoryPrediction{},
		Ranked:     []view.CategoryPrediction{},
	}

	mapping := field(r, "category_predictions", "predictions")
	if !mapping.IsObject() {
		mapping = r
	}
	mapping.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		cp := view.CategoryPrediction{
			Category:                key.String(),
			AverageTouristRating:    numberOr(field(value, "average_tourist_rating", "tourist_rating", "rating"), 0),
			PredictedVisitorsByYear: yearCounts(field(value, "predicted_visitors_by_year", "predicted_visitors")),
		}
		out.Names = append(out.Names, cp.Category)
		out.Categories = append(out.Categories, cp)
		return true
	})
	out.Ranked = RankCategories(out.Categories)
	return out
}

// RankCategories orders categories by rating, best first. Ties keep their
// source order.
func RankCategories(in []view.CategoryPrediction) []view.CategoryPrediction {
	out := make([]view.CategoryPrediction, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageTouristRating > out[j].AverageTouristRating
	})
	return out
}

// CategoryForecast normalizes /predict_trend/{state}/{category}.
func CategoryForecast(raw []byte) view.CategoryForecast {
	r := root(raw)
	return view.CategoryForecast{
		State:         text(field(r, "state")),
		Category:      text(field(r, "category")),
		Historical:    yearCounts(field(r, "historical_data", "historical")),
		Future:        yearCounts(field(r, "future_predictions", "predictions")),
		ModelAccuracy: text(field(r, "model_accuracy")),
	}
}

// yearCounts reads either [{"year", "visitors"}] or {"year": count}.
func yearCounts(r gjson.Result) []view.YearCount {
	out := []view.YearCount{}
	switch {
	case r.IsArray():
		for _, item := range r.Array() {
			year := text(field(item, "year", "period"))
			if year == "" {
				continue
			}
			out = append(out, view.YearCount{Year: year, Count: count(field(item, "visitors", "count", "arrivals"))})
		}
	case r.IsObject():
		r.ForEach(func(key, value gjson.Result) bool {
			out = append(out, view.YearCount{Year: key.String(), Count: count(value)})
			return true
		})
	}
	return out
}
