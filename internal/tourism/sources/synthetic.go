package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

var (
	syntheticStates = []string{
		"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
		"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand",
		"Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra", "Manipur",
		"Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab",
		"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
		"Uttar Pradesh", "Uttarakhand", "West Bengal",
	}

	syntheticCities = map[string][]string{
		"Andhra Pradesh":    {"Tirupati", "Visakhapatnam", "Araku Valley", "Vijayawada", "Amaravati", "Srisailam", "Lepakshi", "Kurnool", "Horsley Hills", "Nellore"},
		"Arunachal Pradesh": {"Tawang", "Ziro Valley", "Itanagar", "Bomdila", "Namdapha National Park", "Roing", "Mechuka", "Pasighat", "Dirang", "Bhalukpong"},
		"Assam":             {"Guwahati", "Kaziranga National Park", "Majuli Island", "Sivasagar", "Tezpur", "Jorhat", "Manas National Park", "Haflong", "Hajo", "Dibrugarh"},
		"Bihar":             {"Patna", "Bodh Gaya", "Nalanda", "Rajgir", "Vaishali", "Vikramshila", "Pawapuri", "Kesaria Stupa", "Sasaram", "Gaya"},
		"Chhattisgarh":      {"Raipur", "Jagdalpur", "Chitrakote Falls", "Bastar", "Sirpur", "Kanger Valley National Park", "Mainpat", "Barnawapara Wildlife Sanctuary", "Tirathgarh Falls"},
		"Goa":               {"Panaji", "Calangute"},
		"Gujarat":           {"Ahmedabad", "Rann of Kutch"},
		"Haryana":           {"Kurukshetra"},
		"Himachal Pradesh":  {"Shimla", "Manali", "Dharamshala", "Dalhousie", "Kullu", "Spiti Valley", "Chamba", "Kasol", "McLeod Ganj", "Solang Valley"},
		"Jharkhand":         {"Ranchi", "Netarhat", "Betla National Park", "Hazaribagh", "Deoghar", "Patratu Valley", "Dassam Falls", "Hundru Falls", "Giridih", "Jamshedpur"},
		"Karnataka":         {"Bengaluru", "Mysuru", "Hampi", "Coorg", "Chikmagalur", "Gokarna", "Badami", "Udupi", "Jog Falls", "Bijapur"},
		"Kerala":            {"Kochi", "Munnar", "Alleppey", "Thekkady", "Wayanad", "Kovalam", "Varkala", "Thrissur", "Kumarakom", "Bekal Fort"},
		"Madhya Pradesh":    {"Bhopal", "Indore", "Khajuraho", "Gwalior", "Orchha", "Sanchi", "Pachmarhi", "Kanha National Park", "Ujjain", "Jabalpur"},
		"Maharashtra":       {"Mumbai", "Pune", "Aurangabad", "Lonavala", "Mahabaleshwar", "Nashik", "Shirdi", "Alibaug", "Kolhapur", "Nagpur"},
		"Manipur":           {"Imphal", "Loktak Lake", "Keibul Lamjao National Park", "Kangla Fort", "Moreh", "Thoubal", "Andro Village", "Bishnupur", "Ukhrul", "Sendra Island"},
		"Meghalaya":         {"Shillong", "Cherrapunji", "Dawki", "Mawlynnong", "Jowai", "Nongriat", "Tura", "Mawsynram", "Laitlum Canyons", "Balpakram National Park"},
		"Mizoram":           {"Aizawl", "Lunglei", "Champhai", "Reiek", "Phawngpui Peak", "Serchhip", "Tamdil Lake", "Murlen National Park", "Dampa Tiger Reserve", "Thenzawl"},
		"Nagaland":          {"Kohima", "Dimapur", "Mokokchung", "Mon", "Tuophema", "Wokha", "Khonoma Village", "Dzukou Valley", "Longleng", "Phek"},
		"Odisha":            {"Bhubaneswar", "Puri", "Konark", "Chilika Lake", "Cuttack", "Raghurajpur", "Simlipal National Park", "Daringbadi", "Berhampur", "Udayagiri"},
		"Punjab":            {"Amritsar", "Chandigarh", "Ludhiana", "Jalandhar", "Anandpur Sahib", "Patiala", "Kapurthala", "Wagah Border", "Tarn Taran Sahib"},
		"Rajasthan":         {"Jaipur", "Udaipur", "Jaisalmer", "Jodhpur", "Mount Abu", "Pushkar", "Ajmer", "Bikaner", "Chittorgarh", "Ranthambore"},
		"Sikkim":            {"Gangtok", "Pelling", "Lachung", "Yumthang Valley", "Zuluk", "Namchi", "Ravangla", "Tsomgo Lake", "Gurudongmar Lake", "Yuksom"},
		"Tamil Nadu":        {"Chennai", "Madurai", "Ooty", "Kodaikanal", "Rameswaram", "Kanchipuram", "Thanjavur", "Coimbatore", "Tiruchirappalli", "Yelagiri"},
		"Telangana":         {"Hyderabad", "Warangal", "Nagarjuna Sagar", "Khammam", "Adilabad", "Karimnagar", "Nizamabad", "Medak", "Mahbubnagar", "Suryapet"},
		"Tripura":           {"Agartala", "Udaipur", "Unakoti", "Jampui Hills", "Neermahal Palace", "Sepahijala Wildlife Sanctuary", "Pilak", "Deotamura", "Dumbur Lake", "Melaghar"},
		"Uttar Pradesh":     {"Agra", "Varanasi", "Lucknow", "Prayagraj", "Mathura", "Vrindavan", "Ayodhya", "Jhansi", "Sarnath", "Noida"},
		"Uttarakhand":       {"Dehradun", "Nainital", "Haridwar", "Rishikesh", "Mussoorie", "Auli", "Jim Corbett National Park", "Badrinath", "Kedarnath", "Almora"},
		"West Bengal":       {"Kolkata", "Darjeeling", "Sundarbans", "Kalimpong", "Digha", "Murshidabad", "Shantiniketan", "Bankura", "Mirik", "Cooch Behar"},
	}

	syntheticCategories  = []string{"Heritage", "Beach", "Hill Station", "Spiritual", "Adventure"}
	syntheticBestTimes   = []string{"October to March", "April to June", "July to September"}
	syntheticMonths      = []string{"January", "February", "March", "October", "November", "December"}
	syntheticConditions  = []string{"Clear Sky", "Few Clouds", "Scattered Clouds", "Haze", "Light Rain", "Overcast Clouds"}
	syntheticRiskTypes   = []string{"Flood", "Earthquake", "Cyclone", "Drought", "Landslide"}
	syntheticAttractions = "Historic sites, Scenic views, Local cuisine, Shopping areas"
)

// Synthetic generates randomized payloads shaped like the backend's
// responses. It never fails and needs no network.
type Synthetic struct {
	mu        sync.Mutex
	rng       *rand.Rand
	interests []string
}

// NewSynthetic seeds the generator. interests is served from Interests.
func NewSynthetic(seed uint64, interests []string) *Synthetic {
	return &Synthetic{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		interests: append([]string(nil), interests...),
	}
}

func (s *Synthetic) Name() string {
	return "synthetic"
}

func (s *Synthetic) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// between returns a value in [lo, hi).
func (s *Synthetic) between(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *Synthetic) pick(options []string) string {
	return options[s.intn(len(options))]
}

func (s *Synthetic) States(ctx context.Context) ([]byte, error) {
	return json.Marshal(syntheticStates)
}

func (s *Synthetic) StateDetails(ctx context.Context, state string) ([]byte, error) {
	return json.Marshal(struct {
		Name        string `json:"name"`
		Capital     string `json:"capital"`
		Population  int    `json:"population"`
		BestMonth   string `json:"best_month"`
		TopCategory string `json:"top_category"`
	}{
		Name:        state,
		Capital:     "Capital City",
		Population:  s.intn(50_000_000) + 10_000_000,
		BestMonth:   s.pick(syntheticMonths),
		TopCategory: s.pick(syntheticCategories),
	})
}

type syntheticCity struct {
	CityName        string `json:"city_name"`
	StateName       string `json:"state_name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	TouristRating   string `json:"tourist_rating"`
	RiskIndex       string `json:"risk_index"`
	BestTimeToVisit string `json:"best_time_to_visit"`
	TopAttractions  string `json:"top_attractions"`
}

func (s *Synthetic) city(city, state string) syntheticCity {
	return syntheticCity{
		CityName:        city,
		StateName:       state,
		Description:     fmt.Sprintf("A beautiful and popular tourist destination in %s, known for its rich history and scenic views.", state),
		Category:        s.pick(syntheticCategories),
		TouristRating:   strconv.FormatFloat(s.between(3.5, 5.0), 'f', 1, 64),
		RiskIndex:       strconv.FormatFloat(s.between(0, 0.8), 'f', 2, 64),
		BestTimeToVisit: s.pick(syntheticBestTimes),
		TopAttractions:  syntheticAttractions,
	}
}

// cityNames lists the cities of state, inventing five for unknown states.
func cityNames(state string) []string {
	if names, ok := syntheticCities[state]; ok {
		return names
	}
	names := make([]string, 5)
	for i := range names {
		names[i] = fmt.Sprintf("%s City %d", state, i+1)
	}
	return names
}

func (s *Synthetic) Cities(ctx context.Context, state string) ([]byte, error) {
	names := cityNames(state)
	out := make([]syntheticCity, 0, len(names))
	for _, name := range names {
		out = append(out, s.city(name, state))
	}
	return json.Marshal(out)
}

func (s *Synthetic) CityDetails(ctx context.Context, state, city string) ([]byte, error) {
	return json.Marshal(s.city(city, state))
}

func (s *Synthetic) Risk(ctx context.Context, state string) ([]byte, error) {
	type risk struct {
		Type  string `json:"type"`
		Level int    `json:"level"`
	}
	risks := make([]risk, 0, len(syntheticRiskTypes))
	for _, t := range syntheticRiskTypes {
		risks = append(risks, risk{Type: t, Level: s.intn(5) + 1})
	}
	return json.Marshal(map[string]any{"risks": risks})
}

func (s *Synthetic) Trends(ctx context.Context, state string) ([]byte, error) {
	type point struct {
		Year     string `json:"year"`
		Arrivals int    `json:"arrivals"`
	}
	bases := []struct{ spread, floor int }{
		{1_000_000, 500_000},
		{800_000, 300_000},
		{1_200_000, 600_000},
		{1_500_000, 800_000},
		{1_800_000, 1_000_000},
	}
	trends := make([]point, 0, len(bases))
	for i, b := range bases {
		trends = append(trends, point{Year: strconv.Itoa(2019 + i), Arrivals: s.intn(b.spread) + b.floor})
	}
	return json.Marshal(map[string]any{"trends": trends})
}

func (s *Synthetic) Predictions(ctx context.Context, state string) ([]byte, error) {
	type prediction struct {
		Rating   float64        `json:"average_tourist_rating"`
		Visitors map[string]int `json:"predicted_visitors_by_year"`
	}
	preds := make(map[string]prediction, len(syntheticCategories))
	for _, c := range syntheticCategories {
		base := s.intn(2_000_000) + 500_000
		visitors := make(map[string]int, 3)
		for i, year := range []int{2026, 2027, 2028} {
			visitors[strconv.Itoa(year)] = base + i*s.intn(200_000)
		}
		preds[c] = prediction{Rating: round2(s.between(3.5, 5.0)), Visitors: visitors}
	}
	return json.Marshal(map[string]any{"state": state, "category_predictions": preds})
}

func (s *Synthetic) CategoryPrediction(ctx context.Context, state, category string) ([]byte, error) {
	type yearVisitors struct {
		Year     int `json:"year"`
		Visitors int `json:"visitors"`
	}
	visitors := s.intn(1_000_000) + 500_000
	var historical, future []yearVisitors
	for year := 2020; year <= 2025; year++ {
		historical = append(historical, yearVisitors{Year: year, Visitors: visitors})
		visitors += visitors * (s.intn(15) + 5) / 100
	}
	for year := 2026; year <= 2028; year++ {
		future = append(future, yearVisitors{Year: year, Visitors: visitors})
		visitors += visitors * (s.intn(10) + 3) / 100
	}
	return json.Marshal(map[string]any{
		"state":              state,
		"category":           category,
		"historical_data":    historical,
		"future_predictions": future,
		"model_accuracy":     "Synthetic estimate",
	})
}

func (s *Synthetic) weather(city string) cityWeather {
	temp := round1(s.between(18, 36))
	return cityWeather{
		City:        city,
		Temperature: temp,
		FeelsLike:   round1(temp + s.between(-2, 4)),
		Humidity:    float64(s.intn(60) + 30),
		Pressure:    float64(s.intn(20) + 1000),
		Condition:   s.pick(syntheticConditions),
		WindSpeed:   round1(s.between(0.5, 8)),
	}
}

func (s *Synthetic) CityWeather(ctx context.Context, city string) ([]byte, error) {
	return json.Marshal(s.weather(city))
}

func (s *Synthetic) StateWeather(ctx context.Context, state string) ([]byte, error) {
	representative := cityNames(state)[0]
	w := s.weather(representative)
	return json.Marshal(struct {
		cityWeather
		State              string `json:"state"`
		RepresentativeCity string `json:"representative_city"`
	}{w, state, representative})
}

func (s *Synthetic) Interests(ctx context.Context) ([]byte, error) {
	interests := s.interests
	if len(interests) == 0 {
		interests = syntheticCategories
	}
	return json.Marshal(interests)
}

// Recommend serves a fixed shortlist regardless of the filters.
func (s *Synthetic) Recommend(ctx context.Context, req tourism.RecommendRequest) ([]byte, error) {
	type rec struct {
		State     string  `json:"state"`
		City      string  `json:"city"`
		Rating    float64 `json:"rating"`
		RiskIndex float64 `json:"risk_index"`
		BestMonth string  `json:"best_month"`
		Category  string  `json:"category"`
	}
	return json.Marshal(map[string]any{"recommendations": []rec{
		{State: "Kerala", City: "Kochi", Rating: 4.5, RiskIndex: 0.3, BestMonth: "December", Category: "Beach"},
		{State: "Himachal Pradesh", City: "Shimla", Rating: 4.3, RiskIndex: 0.2, BestMonth: "May", Category: "Hill Station"},
		{State: "Rajasthan", City: "Jaipur", Rating: 4.2, RiskIndex: 0.4, BestMonth: "October", Category: "Heritage"},
	}})
}

func (s *Synthetic) stateComparison(name string) map[string]any {
	growth := s.intn(20) + 5
	v2024 := s.intn(5_000_000) + 1_000_000
	shrink := func(v int) int { return int(float64(v) / (1 + s.between(0.05, 0.2))) }
	v2023 := shrink(v2024)
	v2022 := shrink(v2023)
	v2021 := shrink(v2022)
	v2020 := shrink(v2021)
	return map[string]any{
		"name":          name,
		"risk_index":    s.intn(10) + 1,
		"visitor_count": v2024,
		"top_category":  s.pick(syntheticCategories),
		"best_month":    s.pick(syntheticMonths),
		"visitors": map[string]int{
			"2020": v2020,
			"2021": v2021,
			"2022": v2022,
			"2023": v2023,
			"2024": v2024,
			"2025": v2024 * (100 + growth) / 100,
		},
	}
}

func (s *Synthetic) CompareStates(ctx context.Context, state1, state2 string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"state1_data": s.stateComparison(state1),
		"state2_data": s.stateComparison(state2),
	})
}

func (s *Synthetic) cityComparison(state, city string) map[string]any {
	return map[string]any{
		"name":               city,
		"state":              state,
		"tourist_rating":     round1(s.between(3.5, 5.0)),
		"risk_index":         round2(s.between(0, 0.8)),
		"category":           s.pick(syntheticCategories),
		"best_time_to_visit": s.pick(syntheticBestTimes),
	}
}

func (s *Synthetic) CompareCities(ctx context.Context, state1, city1, state2, city2 string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"state1_data": s.cityComparison(state1, city1),
		"state2_data": s.cityComparison(state2, city2),
	})
}

func round2(f float64) float64 {
	return round1(f*10) / 10
}

var _ tourism.Source = (*Synthetic)(nil)
