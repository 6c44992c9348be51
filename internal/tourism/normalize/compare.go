package normalize

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// CompareStates builds the side-by-side comparison of two states from the
// backend's wide {metric: {state: value}} format. Records that already
// carry state1_data/state2_data are read as-is.
func CompareStates(raw []byte, state1, state2 string, p Policy) view.ComparisonPair {
	p = p.withDefaults()
	r := root(raw)

	if s1, s2 := field(r, "state1_data"), field(r, "state2_data"); s1.IsObject() || s2.IsObject() {
		return view.ComparisonPair{
			First:  shapedSide(s1, state1, p),
			Second: shapedSide(s2, state2, p),
		}
	}
	return view.ComparisonPair{
		First:  wideSide(r, state1, p),
		Second: wideSide(r, state2, p),
	}
}

func wideSide(r gjson.Result, state string, p Policy) view.ComparisonSide {
	metric := func(key string) gjson.Result {
		return fieldFold(field(r, key), state)
	}

	side := view.ComparisonSide{
		Name:         state,
		TopCategory:  firstOf(metric("famous_for"), view.DefaultCategory),
		TopCity:      text(metric("top_city")),
		BestMonth:    firstOf(metric("best_season"), view.DefaultBestMonth),
		Population:   numberOr(metric("population"), 0),
		LiteracyRate: numberOr(metric("literacy_rate"), 0),
		GDP:          numberOr(metric("gdp_inr_crore"), 0),
		Area:         numberOr(metric("area_km2"), 0),
		Visitors:     make([]view.YearCount, 0, len(p.ComparisonYears)),
	}
	for _, y := range p.ComparisonYears {
		side.Visitors = append(side.Visitors, view.YearCount{
			Year:  strconv.Itoa(y),
			Count: count(metric(fmt.Sprintf("visitors_%d", y))),
		})
	}

	prev := count(metric(fmt.Sprintf("visitors_%d", p.GrowthFrom)))
	latest := count(metric(fmt.Sprintf("visitors_%d", p.GrowthTo)))
	side.TourismGrowth = GrowthRate(float64(prev), float64(latest))
	side.VisitorCount = latest

	if si, ok := number(metric("safety_index")); ok {
		side.RiskIndex = round1(10 - si*10)
	}
	return side
}

func shapedSide(obj gjson.Result, fallbackName string, p Policy) view.ComparisonSide {
	visitors := field(obj, "visitors")
	side := view.ComparisonSide{
		Name:         textOr(field(obj, "name"), fallbackName),
		RiskIndex:    numberOr(field(obj, "risk_index"), 0),
		VisitorCount: count(field(obj, "visitor_count")),
		TopCategory:  firstOf(field(obj, "top_category"), view.DefaultCategory),
		TopCity:      text(field(obj, "top_city")),
		BestMonth:    firstOf(field(obj, "best_month"), view.DefaultBestMonth),
		Population:   numberOr(field(obj, "population"), 0),
		LiteracyRate: numberOr(field(obj, "literacy_rate"), 0),
		GDP:          numberOr(field(obj, "gdp"), 0),
		Area:         numberOr(field(obj, "area"), 0),
		Visitors:     make([]view.YearCount, 0, len(p.ComparisonYears)),
	}
	for _, y := range p.ComparisonYears {
		side.Visitors = append(side.Visitors, view.YearCount{
			Year:  strconv.Itoa(y),
			Count: count(field(visitors, strconv.Itoa(y))),
		})
	}
	if g, ok := number(field(obj, "tourism_growth")); ok {
		side.TourismGrowth = round1(g)
	} else {
		side.TourismGrowth = GrowthRate(
			float64(count(field(visitors, strconv.Itoa(p.GrowthFrom)))),
			float64(count(field(visitors, strconv.Itoa(p.GrowthTo)))),
		)
	}
	if side.VisitorCount == 0 {
		side.VisitorCount = count(field(visitors, strconv.Itoa(p.GrowthTo)))
	}
	return side
}

// CompareCities builds the side-by-side comparison of two cities. The
// backend keys each metric by "City, State".
func CompareCities(raw []byte, state1, city1, state2, city2 string) view.CityComparison {
	r := root(raw)
	if c1, c2 := field(r, "state1_data", "city1_data"), field(r, "state2_data", "city2_data"); c1.IsObject() || c2.IsObject() {
		return view.CityComparison{
			First:  shapedCity(c1, state1, city1),
			Second: shapedCity(c2, state2, city2),
		}
	}
	return view.CityComparison{
		First:  wideCity(r, state1, city1),
		Second: wideCity(r, state2, city2),
	}
}

func wideCity(r gjson.Result, state, city string) view.CityComparisonSide {
	label := fmt.Sprintf("%s, %s", city, state)
	metric := func(key string) gjson.Result {
		return fieldFold(field(r, key), label)
	}
	risk := numberOr(metric("risk_index"), 0)
	return view.CityComparisonSide{
		Name:            city,
		State:           state,
		TouristRating:   numberOr(metric("tourist_rating"), 0),
		RiskIndex:       risk,
		RiskLevel:       RiskLevel(risk),
		Category:        textOr(metric("category"), view.DefaultCategory),
		BestTimeToVisit: firstOf(metric("best_time_to_visit"), view.DefaultBestMonth),
	}
}

func shapedCity(obj gjson.Result, state, city string) view.CityComparisonSide {
	risk := numberOr(field(obj, "risk_index"), 0)
	return view.CityComparisonSide{
		Name:            textOr(field(obj, "name", "city"), city),
		State:           textOr(field(obj, "state"), state),
		TouristRating:   numberOr(field(obj, "tourist_rating", "rating"), 0),
		RiskIndex:       risk,
		RiskLevel:       RiskLevel(risk),
		Category:        textOr(field(obj, "category", "top_category"), view.DefaultCategory),
		BestTimeToVisit: firstOf(field(obj, "best_time_to_visit", "best_month"), view.DefaultBestMonth),
	}
}
