package view

// Placeholders rendered when the backend omits a text field.
const (
	NotAvailable      = "N/A"
	DefaultBestMonth  = "Year-round"
	DefaultCategory   = "General"
	DefaultRiskLevel  = "Low"
	NoRecommendations = "No destinations found matching your interests"
)

// Origin records which source produced a view-model.
type Origin string

const (
	OriginLive      Origin = "live"
	OriginSynthetic Origin = "synthetic"
	OriginDirect    Origin = "direct"
)

// StateSummary is the header card of the analysis view.
// Numeric fields are nil when the backend did not provide them.
type StateSummary struct {
	Name            string   `json:"name"`
	Capital         string   `json:"capital"`
	Population      *float64 `json:"population"`
	GDP             *float64 `json:"gdp"`
	LiteracyRate    *float64 `json:"literacy_rate"`
	SafetyIndex     *float64 `json:"safety_index"`
	BestTimeToVisit string   `json:"best_time_to_visit"`
	TopCategory     string   `json:"top_category"`
}

// TrendPoint is one bar/point of the historical arrivals chart.
type TrendPoint struct {
	Period   string `json:"period"`
	Arrivals int64  `json:"arrivals"`
}

// RiskEntry is one retained slice of the risk chart. Exactly one of
// Numeric or Text is set.
type RiskEntry struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Numeric    *float64 `json:"numeric,omitempty"`
	Text       string   `json:"text,omitempty"`
	ChartValue float64  `json:"chart_value"`
}

// RiskProfile holds the retained risk entries in source order and the
// free-text advisories that accompany them.
type RiskProfile struct {
	Entries            []RiskEntry `json:"entries"`
	HealthAlerts       string      `json:"health_alerts"`
	SafetySuggestions  string      `json:"safety_suggestions"`
	InsuranceAvailable string      `json:"insurance_available"`
	MajorDisasterYears string      `json:"major_disaster_years"`
	HotspotDistricts   string      `json:"hotspot_districts"`
}

// YearCount is a (year, visitors) pair.
type YearCount struct {
	Year  string `json:"year"`
	Count int64  `json:"count"`
}

// CategoryPrediction is the ML forecast for one tourism category.
type CategoryPrediction struct {
	Category                string      `json:"category"`
	AverageTouristRating    float64     `json:"average_tourist_rating"`
	PredictedVisitorsByYear []YearCount `json:"predicted_visitors_by_year"`
}

// Predictions groups per-category forecasts for a state. Categories keeps
// source order; Ranked is sorted by rating, best first.
type Predictions struct {
	State      string               `json:"state"`
	Names      []string             `json:"names"`
	Categories []CategoryPrediction `json:"categories"`
	Ranked     []CategoryPrediction `json:"ranked"`
}

// CategoryForecast is the detail chart for a single category.
type CategoryForecast struct {
	State         string      `json:"state"`
	Category      string      `json:"category"`
	Historical    []YearCount `json:"historical_data"`
	Future        []YearCount `json:"future_predictions"`
	ModelAccuracy string      `json:"model_accuracy"`
}

// ComparisonSide is one column of the state comparison table.
type ComparisonSide struct {
	Name          string      `json:"name"`
	TourismGrowth float64     `json:"tourism_growth"`
	RiskIndex     float64     `json:"risk_index"`
	VisitorCount  int64       `json:"visitor_count"`
	TopCategory   string      `json:"top_category"`
	TopCity       string      `json:"top_city"`
	BestMonth     string      `json:"best_month"`
	Population    float64     `json:"population"`
	LiteracyRate  float64     `json:"literacy_rate"`
	GDP           float64     `json:"gdp"`
	Area          float64     `json:"area"`
	Visitors      []YearCount `json:"visitors"`
}

// ComparisonPair is the side-by-side state comparison.
type ComparisonPair struct {
	First  ComparisonSide `json:"state1_data"`
	Second ComparisonSide `json:"state2_data"`
	Origin Origin         `json:"source"`
}

// CityComparisonSide is one column of the city comparison.
type CityComparisonSide struct {
	Name            string  `json:"name"`
	State           string  `json:"state"`
	TouristRating   float64 `json:"tourist_rating"`
	RiskIndex       float64 `json:"risk_index"`
	RiskLevel       string  `json:"risk_level"`
	Category        string  `json:"category"`
	BestTimeToVisit string  `json:"best_time_to_visit"`
}

// CityComparison is the side-by-side city comparison.
type CityComparison struct {
	First  CityComparisonSide `json:"city1_data"`
	Second CityComparisonSide `json:"city2_data"`
	Origin Origin             `json:"source"`
}

// AttractionEntry is one parsed attraction.
type AttractionEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ParseKind tags how a loosely structured field was understood.
type ParseKind string

const (
	ParseStructured ParseKind = "structured"
	ParseExtracted  ParseKind = "extracted"
	ParseEmpty      ParseKind = "empty"
)

// AttractionList is the tagged result of parsing an attractions field.
// When Kind is ParseEmpty the UI shows Raw verbatim.
type AttractionList struct {
	Kind    ParseKind         `json:"kind"`
	Entries []AttractionEntry `json:"entries"`
	Raw     string            `json:"raw,omitempty"`
}

// City is a destination inside a state.
type City struct {
	Name            string         `json:"city_name"`
	State           string         `json:"state_name"`
	Category        string         `json:"category"`
	TouristRating   float64        `json:"tourist_rating"`
	RiskIndex       float64        `json:"risk_index"`
	RiskLevel       string         `json:"risk_level"`
	BestTimeToVisit string         `json:"best_time_to_visit"`
	PopularMonths   string         `json:"popular_months"`
	Description     string         `json:"description"`
	Attractions     AttractionList `json:"attractions"`
}

// WeatherSnapshot is the weather card. Optional fields are nil when the
// source did not report them.
type WeatherSnapshot struct {
	City               string   `json:"city"`
	RepresentativeCity string   `json:"representative_city,omitempty"`
	Temperature        float64  `json:"temperature"`
	FeelsLike          float64  `json:"feels_like"`
	Humidity           float64  `json:"humidity"`
	Pressure           float64  `json:"pressure"`
	WindSpeed          float64  `json:"wind_speed"`
	Condition          string   `json:"condition"`
	Clouds             *float64 `json:"clouds,omitempty"`
	Visibility         *float64 `json:"visibility,omitempty"`
	Origin             Origin   `json:"source"`
}

// Recommendation is one row of the recommendation table.
type Recommendation struct {
	State           string  `json:"state"`
	City            string  `json:"city"`
	Category        string  `json:"category"`
	TouristRating   float64 `json:"tourist_rating"`
	RiskIndex       float64 `json:"risk_index"`
	RiskLevel       string  `json:"risk_level"`
	BestTimeToVisit string  `json:"best_time_to_visit"`
	Description     string  `json:"description,omitempty"`
}

// RecommendationResult is what the recommendation search renders. Message
// is informational, never an error.
type RecommendationResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message,omitempty"`
	Origin          Origin           `json:"source"`
}

// Profile is the user's saved preferences.
type Profile struct {
	Interests      []string `json:"interests"`
	PreferredMonth string   `json:"preferred_month"`
}

// AuthResult is the normalized /register or /login response.
type AuthResult struct {
	Token    string  `json:"-"`
	Username string  `json:"username"`
	Message  string  `json:"message"`
	Profile  Profile `json:"profile"`
}

// Analysis is the full analysis view for a state. Errors is only
// populated in partial join mode and maps section name to message.
type Analysis struct {
	State       StateSummary      `json:"state"`
	Risk        RiskProfile       `json:"risk"`
	Trends      []TrendPoint      `json:"trends"`
	Predictions Predictions       `json:"predictions"`
	Insights    []string          `json:"insights"`
	Errors      map[string]string `json:"errors,omitempty"`
	Origins     map[string]Origin `json:"sources"`
}
