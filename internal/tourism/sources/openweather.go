package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

// DefaultOpenWeatherURL is the current-weather endpoint of OpenWeatherMap.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeather queries OpenWeatherMap directly and answers in the shape
// of the backend's /weather/city endpoint.
type OpenWeather struct {
	name    string
	apiKey  string
	baseURL string
	country string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeather(client *http.Client, apiKey, baseURL string) *OpenWeather {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeather{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		country: "IN",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     2 * time.Second,
			},
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeather) Name() string {
	return p.name
}

type openWeatherPayload struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds *struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Visibility *float64 `json:"visibility"`
	Weather    []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

type cityWeather struct {
	City        string   `json:"city"`
	Temperature float64  `json:"temperature"`
	FeelsLike   float64  `json:"feels_like"`
	Humidity    float64  `json:"humidity"`
	Pressure    float64  `json:"pressure"`
	Condition   string   `json:"condition"`
	WindSpeed   float64  `json:"wind_speed"`
	Clouds      *float64 `json:"clouds,omitempty"`
	Visibility  *float64 `json:"visibility,omitempty"`
}

func (p *OpenWeather) CityWeather(ctx context.Context, city string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
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

	var payload openWeatherPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", tourism.ErrMalformedPayload, err)
	}

	out := cityWeather{
		City:        payload.Name,
		Temperature: round1(payload.Main.Temp),
		FeelsLike:   round1(payload.Main.FeelsLike),
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		Condition:   describeCondition(payload.Weather),
		WindSpeed:   payload.Wind.Speed,
		Visibility:  payload.Visibility,
	}
	if out.City == "" {
		out.City = city
	}
	if payload.Clouds != nil {
		out.Clouds = &payload.Clouds.All
	}
	return json.Marshal(out)
}

func describeCondition(items []struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}) string {
	if len(items) == 0 {
		return ""
	}
	d := items[0].Description
	if d == "" {
		d = items[0].Main
	}
	return cases.Title(language.English).String(d)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

var _ tourism.WeatherSource = (*OpenWeather)(nil)
