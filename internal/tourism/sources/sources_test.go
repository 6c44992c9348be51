package sources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
	"github.com/i474232898/tourism-dashboard/internal/tourism/normalize"
	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

func TestBackendEscapesPathAndSendsToken(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	b := NewBackend(srv.Client(), srv.URL, 0, nil)
	ctx := tourism.WithSession(context.Background(), tourism.Session{Token: "t0k"})

	_, err := b.CityDetails(ctx, "Tamil Nadu", "Ooty/Udhagamandalam")
	require.NoError(t, err)
	assert.Equal(t, "/states/Tamil%20Nadu/cities/Ooty%2FUdhagamandalam", gotPath)
	assert.Equal(t, "Bearer t0k", gotAuth)

	_, err = b.States(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestBackendCompareQuery(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{"path": r.URL.Path}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	b := NewBackend(srv.Client(), srv.URL, 0, nil)
	_, err := b.CompareCities(context.Background(), "Kerala", "Kochi", "Goa", "Panaji")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"path": "/compare/cities", "state1": "Kerala", "city1": "Kochi", "state2": "Goa", "city2": "Panaji",
	}, got)
}

func TestBackendRecommendAppliesDefaults(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"message": "No recommendations found matching your preferences."}`))
	}))
	defer srv.Close()

	b := NewBackend(srv.Client(), srv.URL, 0, nil)
	_, err := b.Recommend(context.Background(), tourism.RecommendRequest{Interests: []string{"Beach"}})
	require.NoError(t, err)

	assert.Equal(t, 1.0, gjson.GetBytes(body, "max_risk").Float())
	assert.True(t, gjson.GetBytes(body, "min_rating").Exists())
	assert.Equal(t, "Beach", gjson.GetBytes(body, "interests.0").String())
}

func TestBackendStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error": "Invalid credentials"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, tourism.ErrUnauthorized)
		}},
		{"not found", http.StatusNotFound, `{"error": "Not found"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, errUnexpected)
		}},
		{"server error", http.StatusInternalServerError, `oops`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, errServerError)
		}},
		{"malformed", http.StatusOK, `<html>maintenance</html>`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, tourism.ErrMalformedPayload)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewBackend(srv.Client(), srv.URL, 0, nil).Risk(context.Background(), "Kerala")
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestBackendDoesNotRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewBackend(srv.Client(), srv.URL, 0, nil).States(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResilienceRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`["Goa"]`))
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{
		Client:  srv.Client(),
		Backoff: BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
	}
	body, err := doRequestWithResilience(context.Background(), cfg, newCircuitBreaker("test"), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	require.NoError(t, err)
	assert.JSONEq(t, `["Goa"]`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestResilienceDoesNotRetryUnauthorized(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := HTTPClientConfig{
		Client:  srv.Client(),
		Backoff: BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond},
	}
	_, err := doRequestWithResilience(context.Background(), cfg, newCircuitBreaker("test"), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	})
	assert.ErrorIs(t, err, tourism.ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResilienceRejectsBadConfig(t *testing.T) {
	_, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, newCircuitBreaker("test"), nil)
	assert.True(t, errors.Is(err, errNoHTTPClient))

	cfg := HTTPClientConfig{Client: http.DefaultClient}
	_, err = doRequestWithResilience(context.Background(), cfg, newCircuitBreaker("test"), nil)
	assert.True(t, errors.Is(err, errInvalidConfig))
}

func TestOpenWeatherReshapesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Kochi,IN", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{
			"name": "Kochi",
			"main": {"temp": 29.46, "feels_like": 33.12, "humidity": 79, "pressure": 1008},
			"wind": {"speed": 3.6},
			"clouds": {"all": 75},
			"weather": [{"main": "Rain", "description": "light rain"}]
		}`))
	}))
	defer srv.Close()

	raw, err := NewOpenWeather(srv.Client(), "k", srv.URL).CityWeather(context.Background(), "Kochi")
	require.NoError(t, err)

	snap := normalize.Weather(raw)
	assert.Equal(t, "Kochi", snap.City)
	assert.Equal(t, 29.5, snap.Temperature)
	assert.Equal(t, 33.1, snap.FeelsLike)
	assert.Equal(t, "Light Rain", snap.Condition)
	require.NotNil(t, snap.Clouds)
	assert.Equal(t, 75.0, *snap.Clouds)
	assert.Nil(t, snap.Visibility)
}

func TestDirectWeatherKeyRejectionIsNotUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod": 401, "message": "Invalid API key"}`))
	}))
	defer srv.Close()

	providers := []tourism.WeatherSource{
		NewOpenWeather(srv.Client(), "bad", srv.URL),
		NewWeatherAPI(srv.Client(), "bad", srv.URL),
	}
	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			_, err := p.CityWeather(context.Background(), "Kochi")
			require.Error(t, err)
			assert.ErrorIs(t, err, errKeyRejected)
			assert.NotErrorIs(t, err, tourism.ErrUnauthorized)
		})
	}
}

func TestOpenWeatherRequiresKey(t *testing.T) {
	_, err := NewOpenWeather(http.DefaultClient, "", "").CityWeather(context.Background(), "Kochi")
	assert.Error(t, err)
}

func TestWeatherAPIReshapesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Shimla,India", r.URL.Query().Get("q"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{
			"location": {"name": "Shimla"},
			"current": {"temp_c": 12.04, "feelslike_c": 10.96, "humidity": 60, "wind_kph": 18,
				"pressure_mb": 1016, "cloud": 25, "vis_km": 10, "condition": {"text": "Partly cloudy"}}
		}`))
	}))
	defer srv.Close()

	raw, err := NewWeatherAPI(srv.Client(), "k", srv.URL).CityWeather(context.Background(), "Shimla")
	require.NoError(t, err)

	snap := normalize.Weather(raw)
	assert.Equal(t, "Shimla", snap.City)
	assert.Equal(t, 12.0, snap.Temperature)
	assert.Equal(t, 11.0, snap.FeelsLike)
	assert.Equal(t, 5.0, snap.WindSpeed)
	assert.Equal(t, "Partly cloudy", snap.Condition)
	require.NotNil(t, snap.Visibility)
	assert.Equal(t, 10000.0, *snap.Visibility)
}

func TestWeatherAPIRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>quota exceeded</html>`))
	}))
	defer srv.Close()

	_, err := NewWeatherAPI(srv.Client(), "k", srv.URL).CityWeather(context.Background(), "Shimla")
	assert.ErrorIs(t, err, tourism.ErrMalformedPayload)
}

func TestSyntheticPayloadsNormalize(t *testing.T) {
	s := NewSynthetic(42, []string{"Beach", "Heritage"})
	ctx := context.Background()

	raw, err := s.States(ctx)
	require.NoError(t, err)
	assert.Len(t, normalize.States(raw), 28)

	raw, err = s.Cities(ctx, "Kerala")
	require.NoError(t, err)
	cities := normalize.Cities(raw)
	require.Len(t, cities, 10)
	assert.Equal(t, "Kochi", cities[0].Name)
	assert.GreaterOrEqual(t, cities[0].TouristRating, 3.5)
	assert.Equal(t, "Historic sites, Scenic views, Local cuisine, Shopping areas", cities[0].Attractions.Raw)

	raw, err = s.Cities(ctx, "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, "Atlantis City 1", normalize.Cities(raw)[0].Name)

	raw, err = s.Risk(ctx, "Kerala")
	require.NoError(t, err)
	risk := normalize.Risk(raw)
	require.Len(t, risk.Entries, 5)
	assert.Equal(t, "Flood", risk.Entries[0].Label)

	raw, err = s.Trends(ctx, "Kerala")
	require.NoError(t, err)
	trends := normalize.Trends(raw, normalize.TrendOrderChronological)
	require.Len(t, trends, 5)
	assert.Equal(t, "2019", trends[0].Period)

	raw, err = s.Predictions(ctx, "Kerala")
	require.NoError(t, err)
	assert.Len(t, normalize.Predictions(raw).Ranked, 5)

	raw, err = s.CategoryPrediction(ctx, "Kerala", "Beach")
	require.NoError(t, err)
	fc := normalize.CategoryForecast(raw)
	assert.Len(t, fc.Historical, 6)
	assert.Len(t, fc.Future, 3)

	raw, err = s.Interests(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach", "Heritage"}, normalize.Interests(raw))

	raw, err = s.StateWeather(ctx, "Kerala")
	require.NoError(t, err)
	assert.Equal(t, "Kochi", normalize.Weather(raw).RepresentativeCity)

	raw, err = s.Recommend(ctx, tourism.RecommendRequest{})
	require.NoError(t, err)
	recs := normalize.Recommendations(raw)
	require.Len(t, recs, 3)
	assert.Equal(t, "Kochi", recs[0].City)

	raw, err = s.CompareStates(ctx, "Kerala", "Goa")
	require.NoError(t, err)
	pair := normalize.CompareStates(raw, "Kerala", "Goa", normalize.DefaultPolicy())
	assert.Equal(t, "Kerala", pair.First.Name)
	assert.Positive(t, pair.First.VisitorCount)
	for _, side := range []view.ComparisonSide{pair.First, pair.Second} {
		counts := map[string]int64{}
		for _, yc := range side.Visitors {
			counts[yc.Year] = yc.Count
		}
		assert.Equal(t, normalize.GrowthRate(float64(counts["2023"]), float64(counts["2024"])), side.TourismGrowth)
	}

	raw, err = s.CompareCities(ctx, "Kerala", "Kochi", "Goa", "Panaji")
	require.NoError(t, err)
	cmp := normalize.CompareCities(raw, "Kerala", "Kochi", "Goa", "Panaji")
	assert.Equal(t, "Panaji", cmp.Second.Name)
}

func TestSyntheticIsDeterministicPerSeed(t *testing.T) {
	a, _ := NewSynthetic(7, nil).StateDetails(context.Background(), "Goa")
	b, _ := NewSynthetic(7, nil).StateDetails(context.Background(), "Goa")
	assert.JSONEq(t, string(a), string(b))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(a, &decoded))
	assert.Equal(t, "Goa", decoded["name"])
}
