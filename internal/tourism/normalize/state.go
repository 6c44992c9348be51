package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// States returns the state names from a list, a {"states": [...]} wrapper
// or an object keyed by state.
func States(raw []byte) []string {
	r := root(raw)
	if nested := field(r, "states"); nested.IsArray() {
		r = nested
	}
	if r.IsObject() {
		names := []string{}
		r.ForEach(func(key, _ gjson.Result) bool {
			names = append(names, key.String())
			return true
		})
		return names
	}
	return stringList(r)
}

// Interests returns the interest tags offered by the recommendation form.
func Interests(raw []byte) []string {
	r := root(raw)
	if nested := field(r, "interests"); nested.IsArray() {
		r = nested
	}
	return stringList(r)
}

// StateSummary normalizes /states/{state}.
func StateSummary(raw []byte) view.StateSummary {
	r := root(raw)
	return view.StateSummary{
		Name:            textOr(field(r, "name", "state_name", "state"), view.NotAvailable),
		Capital:         textOr(field(r, "capital"), view.NotAvailable),
		Population:      optNumber(field(r, "population")),
		GDP:             optNumber(field(r, "gdp", "gdp_inr_crore")),
		LiteracyRate:    optNumber(field(r, "literacy_rate")),
		SafetyIndex:     optNumber(field(r, "safety_index")),
		BestTimeToVisit: firstOf(field(r, "best_time_to_visit", "best_month", "best_season"), view.NotAvailable),
		TopCategory:     firstOf(field(r, "top_category", "famous_for"), view.NotAvailable),
	}
}

// Cities normalizes /states/{state}/cities. Items may be city objects or
// bare names; objects without a name are dropped.
func Cities(raw []byte) []view.City {
	r := root(raw)
	if nested := field(r, "cities"); nested.IsArray() {
		r = nested
	}
	out := []view.City{}
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		switch {
		case item.IsObject():
			if c := cityOf(item); c.Name != "" {
				out = append(out, c)
			}
		case item.Type == gjson.String:
			if name := text(item); name != "" {
				out = append(out, view.City{
					Name:        name,
					RiskLevel:   view.DefaultRiskLevel,
					Attractions: view.AttractionList{Kind: view.ParseEmpty, Entries: []view.AttractionEntry{}},
				})
			}
		}
	}
	return out
}

// City normalizes /states/{state}/cities/{city}.
func City(raw []byte) view.City {
	return cityOf(root(raw))
}

func cityOf(obj gjson.Result) view.City {
	risk := numberOr(field(obj, "risk_index"), 0)
	return view.City{
		Name:            text(field(obj, "city_name", "city", "name")),
		State:           text(field(obj, "state_name", "state")),
		Category:        textOr(field(obj, "category"), view.DefaultCategory),
		TouristRating:   numberOr(field(obj, "tourist_rating", "rating"), 0),
		RiskIndex:       risk,
		RiskLevel:       RiskLevel(risk),
		BestTimeToVisit: firstOf(field(obj, "best_time_to_visit", "best_month"), view.DefaultBestMonth),
		PopularMonths:   text(field(obj, "popular_months")),
		Description:     text(field(obj, "description")),
		Attractions:     attractionsOf(field(obj, "top_attractions", "attractions")),
	}
}

// Weather normalizes /weather/city/{city} and /weather/state/{state}.
func Weather(raw []byte) view.WeatherSnapshot {
	r := root(raw)
	return view.WeatherSnapshot{
		City:               text(field(r, "city", "name", "state")),
		RepresentativeCity: text(field(r, "representative_city")),
		Temperature:        numberOr(field(r, "temperature", "temp"), 0),
		FeelsLike:          numberOr(field(r, "feels_like"), 0),
		Humidity:           numberOr(field(r, "humidity"), 0),
		Pressure:           numberOr(field(r, "pressure"), 0),
		WindSpeed:          numberOr(field(r, "wind_speed"), 0),
		Condition:          textOr(field(r, "condition", "description"), view.NotAvailable),
		Clouds:             optNumber(field(r, "clouds")),
		Visibility:         optNumber(field(r, "visibility")),
	}
}
