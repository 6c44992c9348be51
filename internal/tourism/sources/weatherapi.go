package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

// DefaultWeatherAPIURL is the current-conditions endpoint of WeatherAPI.com.
const DefaultWeatherAPIURL = "https://api.weatherapi.com/v1/current.json"

// WeatherAPI queries WeatherAPI.com directly and answers in the shape of
// the backend's /weather/city endpoint.
type WeatherAPI struct {
	name    string
	apiKey  string
	baseURL string
	country string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPI(client *http.Client, apiKey, baseURL string) *WeatherAPI {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIURL
	}
	return &WeatherAPI{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		country: "India",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     2 * time.Second,
			},
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPI) Name() string {
	return p.name
}

type weatherAPIPayload struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC      float64  `json:"temp_c"`
		FeelsLikeC float64  `json:"feelslike_c"`
		Humidity   float64  `json:"humidity"`
		WindKph    float64  `json:"wind_kph"`
		PressureMb float64  `json:"pressure_mb"`
		Cloud      *float64 `json:"cloud"`
		VisKm      *float64 `json:"vis_km"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (p *WeatherAPI) CityWeather(ctx context.Context, city string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location and accepts "city,country".
		q := strings.TrimSpace(city)
		if p.country != "" {
			q = fmt.Sprintf("%s,%s", q, p.country)
		}
		values.Set("q", q)

		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, keyRejected(p.name, err)
	}

	var payload weatherAPIPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", tourism.ErrMalformedPayload, err)
	}

	out := cityWeather{
		City:        payload.Location.Name,
		Temperature: round1(payload.Current.TempC),
		FeelsLike:   round1(payload.Current.FeelsLikeC),
		Humidity:    payload.Current.Humidity,
		Pressure:    payload.Current.PressureMb,
		Condition:   strings.TrimSpace(payload.Current.Condition.Text),
		// kph to m/s, the unit the backend reports.
		WindSpeed: round1(payload.Current.WindKph / 3.6),
		Clouds:    payload.Current.Cloud,
	}
	if out.City == "" {
		out.City = city
	}
	if payload.Current.VisKm != nil {
		meters := *payload.Current.VisKm * 1000
		out.Visibility = &meters
	}
	return json.Marshal(out)
}

var _ tourism.WeatherSource = (*WeatherAPI)(nil)
