package tourism

import "context"

// Source produces raw tourism payloads. The live backend and the synthetic
// generator both implement it; the normalizer accepts either shape.
type Source interface {
	Name() string
	States(ctx context.Context) ([]byte, error)
	StateDetails(ctx context.Context, state string) ([]byte, error)
	Cities(ctx context.Context, state string) ([]byte, error)
	CityDetails(ctx context.Context, state, city string) ([]byte, error)
	Risk(ctx context.Context, state string) ([]byte, error)
	Trends(ctx context.Context, state string) ([]byte, error)
	Predictions(ctx context.Context, state string) ([]byte, error)
	CategoryPrediction(ctx context.Context, state, category string) ([]byte, error)
	CityWeather(ctx context.Context, city string) ([]byte, error)
	StateWeather(ctx context.Context, state string) ([]byte, error)
	Interests(ctx context.Context) ([]byte, error)
	Recommend(ctx context.Context, req RecommendRequest) ([]byte, error)
	CompareStates(ctx context.Context, state1, state2 string) ([]byte, error)
	CompareCities(ctx context.Context, state1, city1, state2, city2 string) ([]byte, error)
}

// AuthSource is implemented by sources that manage user accounts.
type AuthSource interface {
	Register(ctx context.Context, creds Credentials) ([]byte, error)
	Login(ctx context.Context, creds Credentials) ([]byte, error)
	UserInterests(ctx context.Context, username string) ([]byte, error)
	UpdateUserInterests(ctx context.Context, username string, interests []string) ([]byte, error)
}

// WeatherSource is a direct weather provider used when the backend's
// weather endpoint fails.
type WeatherSource interface {
	Name() string
	CityWeather(ctx context.Context, city string) ([]byte, error)
}

// RecommendRequest is the body of a recommendation search. Nil thresholds
// take the backend defaults.
type RecommendRequest struct {
	Interests []string `json:"interests"`
	Month     string   `json:"month,omitempty"`
	MaxRisk   *float64 `json:"max_risk,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
}

const (
	DefaultMaxRisk   = 1.0
	DefaultMinRating = 0.0
)

// WithDefaults fills unset thresholds.
func (r RecommendRequest) WithDefaults() RecommendRequest {
	if r.MaxRisk == nil {
		v := DefaultMaxRisk
		r.MaxRisk = &v
	}
	if r.MinRating == nil {
		v := DefaultMinRating
		r.MinRating = &v
	}
	if r.Interests == nil {
		r.Interests = []string{}
	}
	return r
}

// Credentials is the body of /register and /login.
type Credentials struct {
	Username       string   `json:"username"`
	Email          string   `json:"email,omitempty"`
	Password       string   `json:"password"`
	Interests      []string `json:"interests,omitempty"`
	PreferredMonth string   `json:"preferred_month,omitempty"`
}
