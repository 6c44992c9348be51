package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
)

// DefaultBackendURL is where the analytics backend listens by default.
const DefaultBackendURL = "http://127.0.0.1:5000"

// Backend is the live tourism analytics API.
type Backend struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBackend creates a backend client. maxRetries of 0 means exactly one
// attempt per call.
func NewBackend(client *http.Client, baseURL string, maxRetries int, logger *zap.Logger) *Backend {
	if baseURL == "" {
		baseURL = DefaultBackendURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     2 * time.Second,
			},
		},
		circuit: newCircuitBreaker("tourism-backend"),
		logger:  logger,
	}
}

func (b *Backend) Name() string {
	return "backend"
}

// endpoint joins escaped path segments onto the base URL.
func (b *Backend) endpoint(query url.Values, segments ...string) string {
	var sb strings.Builder
	sb.WriteString(b.baseURL)
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	if len(query) > 0 {
		sb.WriteByte('?')
		sb.WriteString(query.Encode())
	}
	return sb.String()
}

func (b *Backend) do(ctx context.Context, method, target string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}
	token := tourism.TokenFrom(ctx)

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(method, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	}

	start := time.Now()
	raw, err := doRequestWithResilience(ctx, b.httpCfg, b.circuit, buildRequest)
	b.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("url", target),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return raw, err
}

func (b *Backend) get(ctx context.Context, query url.Values, segments ...string) ([]byte, error) {
	return b.do(ctx, http.MethodGet, b.endpoint(query, segments...), nil)
}

func (b *Backend) post(ctx context.Context, body any, segments ...string) ([]byte, error) {
	return b.do(ctx, http.MethodPost, b.endpoint(nil, segments...), body)
}

func (b *Backend) States(ctx context.Context) ([]byte, error) {
	return b.get(ctx, nil, "states")
}

func (b *Backend) StateDetails(ctx context.Context, state string) ([]byte, error) {
	return b.get(ctx, nil, "states", state)
}

func (b *Backend) Cities(ctx context.Context, state string) ([]byte, error) {
	return b.get(ctx, nil, "states", state, "cities")
}

func (b *Backend) CityDetails(ctx context.Context, state, city string) ([]byte, error) {
	return b.get(ctx, nil, "states", state, "cities", city)
}

func (b *Backend) Risk(ctx context.Context, state string) ([]byte, error) {
	return b.get(ctx, nil, "states", state, "risk")
}

func (b *Backend) Trends(ctx context.Context, state string) ([]byte, error) {
	return b.get(ctx, nil, "states", state, "tourism_trends")
}

func (b *Backend) Predictions(ctx context.Context, state string) ([]byte, error) {
	return b.get(ctx, nil, "predict_trend", state)
}

func (b *Backend) CategoryPrediction(ctx context.Context, state, category string) ([]byte, error) {
	return b.get(ctx, nil, "predict_trend", state, category)
}

func (b *Backend) CityWeather(ctx context.Context, city string) ([]byte, error) {
	return b.get(ctx, nil, "weather", "city", city)
}

func (b *Backend) StateWeather(ctx context.Context, state string) ([]byte, error) {
	return b.get(ctx, nil, "weather", "state", state)
}

func (b *Backend) Interests(ctx context.Context) ([]byte, error) {
	return b.get(ctx, nil, "interests")
}

func (b *Backend) Recommend(ctx context.Context, req tourism.RecommendRequest) ([]byte, error) {
	return b.post(ctx, req.WithDefaults(), "recommend")
}

func (b *Backend) CompareStates(ctx context.Context, state1, state2 string) ([]byte, error) {
	q := url.Values{}
	q.Set("state1", state1)
	q.Set("state2", state2)
	return b.get(ctx, q, "compare", "states")
}

func (b *Backend) CompareCities(ctx context.Context, state1, city1, state2, city2 string) ([]byte, error) {
	q := url.Values{}
	q.Set("state1", state1)
	q.Set("city1", city1)
	q.Set("state2", state2)
	q.Set("city2", city2)
	return b.get(ctx, q, "compare", "cities")
}

func (b *Backend) Register(ctx context.Context, creds tourism.Credentials) ([]byte, error) {
	return b.post(ctx, creds, "register")
}

func (b *Backend) Login(ctx context.Context, creds tourism.Credentials) ([]byte, error) {
	return b.post(ctx, struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{creds.Username, creds.Password}, "login")
}

func (b *Backend) UserInterests(ctx context.Context, username string) ([]byte, error) {
	return b.get(ctx, nil, "user", username, "interests")
}

func (b *Backend) UpdateUserInterests(ctx context.Context, username string, interests []string) ([]byte, error) {
	if interests == nil {
		interests = []string{}
	}
	return b.post(ctx, map[string][]string{"interests": interests}, "user", username, "interests")
}

var (
	_ tourism.Source     = (*Backend)(nil)
	_ tourism.AuthSource = (*Backend)(nil)
)
