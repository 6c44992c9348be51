package tourism

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/tourism-dashboard/internal/tourism/normalize"
	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// Service orchestrates the live backend, its fallbacks and the normalizer.
// Every read goes to the live source first and falls back to the synthetic
// source when the live call fails for any reason other than cancellation
// or a 401.
type Service struct {
	live      Source
	synthetic Source
	direct    []WeatherSource
	sessions  *Sessions
	profile   Profile
	logger    *zap.Logger

	weatherTTL time.Duration
	weather    *cache.Cache

	mu    sync.RWMutex
	probe ProbeStatus
}

// Option configures a Service.
type Option func(*Service)

// WithDirectWeather inserts direct weather providers, tried in order,
// between the backend and the synthetic source for city weather.
func WithDirectWeather(ws ...WeatherSource) Option {
	return func(s *Service) {
		for _, w := range ws {
			if w != nil {
				s.direct = append(s.direct, w)
			}
		}
	}
}

func WithProfile(p Profile) Option {
	return func(s *Service) { s.profile = p.WithDefaults() }
}

// WithWeatherCacheTTL bounds how long recommendation weather is reused.
// Zero or negative keeps entries for the life of the process.
func WithWeatherCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.weatherTTL = ttl }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a new Service. synthetic may be nil, in which case
// live failures surface as ErrUnavailable.
func NewService(live, synthetic Source, sessions *Sessions, opts ...Option) *Service {
	s := &Service{
		live:      live,
		synthetic: synthetic,
		sessions:  sessions,
		profile:   DefaultProfile(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.weatherTTL > 0 {
		s.weather = cache.New(s.weatherTTL, 2*s.weatherTTL)
	} else {
		s.weather = cache.New(cache.NoExpiration, 0)
	}
	s.probe = ProbeStatus{Source: live.Name()}
	return s
}

func (s *Service) Sessions() *Sessions { return s.sessions }

func (s *Service) Profile() Profile { return s.profile }

type attempt struct {
	origin view.Origin
	name   string
	fetch  func(ctx context.Context) ([]byte, error)
}

// resolve runs attempts in order and returns the first payload produced.
func (s *Service) resolve(ctx context.Context, op string, attempts ...attempt) ([]byte, view.Origin, error) {
	var errs []error
	for i, a := range attempts {
		raw, err := a.fetch(ctx)
		if err == nil {
			return raw, a.origin, nil
		}
		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		// Only the live backend authenticates the caller; a 401 from any
		// other source is an ordinary failure.
		if a.origin == view.OriginLive && errors.Is(err, ErrUnauthorized) {
			s.dropSession(ctx)
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", a.name, err))
		if i < len(attempts)-1 {
			s.logger.Warn("source failed, falling back",
				zap.String("op", op),
				zap.String("source", a.name),
				zap.String("fallback", attempts[i+1].name),
				zap.Error(err))
		}
	}
	return nil, "", fmt.Errorf("%s: %w: %w", op, ErrUnavailable, errors.Join(errs...))
}

// chain builds live, extra..., synthetic attempts for call.
func (s *Service) chain(call func(context.Context, Source) ([]byte, error), extra ...attempt) []attempt {
	attempts := []attempt{{
		origin: view.OriginLive,
		name:   s.live.Name(),
		fetch:  func(ctx context.Context) ([]byte, error) { return call(ctx, s.live) },
	}}
	attempts = append(attempts, extra...)
	if s.synthetic != nil {
		attempts = append(attempts, attempt{
			origin: view.OriginSynthetic,
			name:   s.synthetic.Name(),
			fetch:  func(ctx context.Context) ([]byte, error) { return call(ctx, s.synthetic) },
		})
	}
	return attempts
}

func (s *Service) fetch(ctx context.Context, op string, call func(context.Context, Source) ([]byte, error)) ([]byte, view.Origin, error) {
	return s.resolve(ctx, op, s.chain(call)...)
}

// dropSession clears the session in ctx after the backend rejected its token.
func (s *Service) dropSession(ctx context.Context) {
	sess, ok := SessionFrom(ctx)
	if !ok || sess.ID == "" || s.sessions == nil {
		return
	}
	if err := s.sessions.Clear(context.WithoutCancel(ctx), sess.ID); err != nil {
		s.logger.Warn("failed to clear rejected session", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	s.logger.Info("session cleared after unauthorized response", zap.String("session", sess.ID), zap.String("username", sess.Username))
}

func (s *Service) States(ctx context.Context) ([]string, view.Origin, error) {
	raw, origin, err := s.fetch(ctx, "states", func(ctx context.Context, src Source) ([]byte, error) {
		return src.States(ctx)
	})
	if err != nil {
		return nil, "", err
	}
	return normalize.States(raw), origin, nil
}

func (s *Service) StateSummary(ctx context.Context, state string) (view.StateSummary, view.Origin, error) {
	raw, origin, err := s.fetch(ctx, "state "+state, func(ctx context.Context, src Source) ([]byte, error) {
		return src.StateDetails(ctx, state)
	})
	if err != nil {
		return view.StateSummary{}, "", err
	}
	return normalize.StateSummary(raw), origin, nil
}

func (s *Service) Cities(ctx context.Context, state string) ([]view.City, view.Origin, error) {
	raw, origin, err := s.fetch(ctx, "cities of "+state, func(ctx context.Context, src Source) ([]byte, error) {
		return src.Cities(ctx, state)
	})
	if err != nil {
		return nil, "", err
	}
	cities := normalize.Cities(raw)
	for i := range cities {
		if cities[i].State == "" {
			cities[i].State = state
		}
	}
	return cities, origin, nil
}

func (s *Service) City(ctx context.Context, state, city string) (view.City, view.Origin, error) {
	raw, origin, err := s.fetch(ctx, "city "+city, func(ctx context.Context, src Source) ([]byte, error) {
		return src.CityDetails(ctx, state, city)
	})
	if err != nil {
		return view.City{}, "", err
	}
	c := normalize.City(raw)
	if c.Name == "" {
		c.Name = city
	}
	if c.State == "" {
		c.State = state
	}
	return c, origin, nil
}

func (s *Service) CategoryForecast(ctx context.Context, state, category string) (view.CategoryForecast, view.Origin, error) {
	raw, origin, err := s.fetch(ctx, "forecast "+state+"/"+category, func(ctx context.Context, src Source) ([]byte, error) {
		return src.CategoryPrediction(ctx, state, category)
	})
	if err != nil {
		return view.CategoryForecast{}, "", err
	}
	fc := normalize.CategoryForecast(raw)
	if fc.State == "" {
		fc.State = state
	}
	if fc.Category == "" {
		fc.Category = category
	}
	return fc, origin, nil
}

// Interests returns the interest tags, falling back to the profile's list
// when every source comes back empty.
func (s *Service) Interests(ctx context.Context) ([]string, view.Origin, error) {
	raw, origin, err := s.fetch(ctx, "interests", func(ctx context.Context, src Source) ([]byte, error) {
		return src.Interests(ctx)
	})
	if err != nil {
		return nil, "", err
	}
	interests := normalize.Interests(raw)
	if len(interests) == 0 {
		return append([]string(nil), s.profile.FallbackInterests...), view.OriginSynthetic, nil
	}
	return interests, origin, nil
}

// Analyze assembles the analysis view of a state. State details, risk,
// trends and predictions are fetched concurrently; in JoinAll mode any
// failure fails the view, in JoinPartial mode failed sections are
// reported in Errors and rendered with defaults.
func (s *Service) Analyze(ctx context.Context, state string) (view.Analysis, error) {
	out := view.Analysis{
		State:       normalize.StateSummary(nil),
		Risk:        normalize.Risk(nil),
		Trends:      normalize.Trends(nil, s.profile.TrendOrder),
		Predictions: normalize.Predictions(nil),
		Errors:      map[string]string{},
		Origins:     map[string]view.Origin{},
	}
	partial := s.profile.JoinMode == JoinPartial

	var (
		mu   sync.Mutex
		g    *errgroup.Group
		gctx = ctx
	)
	if partial {
		g = new(errgroup.Group)
	} else {
		g, gctx = errgroup.WithContext(ctx)
	}

	section := func(name string, call func(context.Context, Source) ([]byte, error), apply func([]byte)) {
		g.Go(func() error {
			raw, origin, err := s.fetch(gctx, name+" of "+state, call)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if partial && !errors.Is(err, ErrUnauthorized) {
					out.Errors[name] = err.Error()
					return nil
				}
				return err
			}
			apply(raw)
			out.Origins[name] = origin
			return nil
		})
	}

	section("state", func(ctx context.Context, src Source) ([]byte, error) {
		return src.StateDetails(ctx, state)
	}, func(raw []byte) { out.State = normalize.StateSummary(raw) })

	section("risk", func(ctx context.Context, src Source) ([]byte, error) {
		return src.Risk(ctx, state)
	}, func(raw []byte) { out.Risk = normalize.Risk(raw) })

	section("trends", func(ctx context.Context, src Source) ([]byte, error) {
		return src.Trends(ctx, state)
	}, func(raw []byte) { out.Trends = normalize.Trends(raw, s.profile.TrendOrder) })

	section("predictions", func(ctx context.Context, src Source) ([]byte, error) {
		return src.Predictions(ctx, state)
	}, func(raw []byte) { out.Predictions = normalize.Predictions(raw) })

	if err := g.Wait(); err != nil {
		return view.Analysis{}, fmt.Errorf("analysis of %s: %w", state, err)
	}
	if err := ctx.Err(); err != nil {
		return view.Analysis{}, fmt.Errorf("analysis of %s: %w", state, err)
	}

	if out.State.Name == view.NotAvailable {
		out.State.Name = state
	}
	if out.Predictions.State == "" {
		out.Predictions.State = state
	}
	out.Insights = normalize.Insights(out.State, out.Risk, out.Trends)
	if len(out.Errors) == 0 {
		out.Errors = nil
	}
	return out, nil
}

// CityWeather walks backend, direct providers and synthetic source in turn.
func (s *Service) CityWeather(ctx context.Context, city string) (view.WeatherSnapshot, error) {
	extra := make([]attempt, 0, len(s.direct))
	for _, ws := range s.direct {
		extra = append(extra, attempt{
			origin: view.OriginDirect,
			name:   ws.Name(),
			fetch:  func(ctx context.Context) ([]byte, error) { return ws.CityWeather(ctx, city) },
		})
	}
	raw, origin, err := s.resolve(ctx, "weather of "+city, s.chain(func(ctx context.Context, src Source) ([]byte, error) {
		return src.CityWeather(ctx, city)
	}, extra...)...)
	if err != nil {
		return view.WeatherSnapshot{}, err
	}
	snap := normalize.Weather(raw)
	if snap.City == "" {
		snap.City = city
	}
	snap.Origin = origin
	return snap, nil
}

func (s *Service) StateWeather(ctx context.Context, state string) (view.WeatherSnapshot, error) {
	raw, origin, err := s.fetch(ctx, "weather of "+state, func(ctx context.Context, src Source) ([]byte, error) {
		return src.StateWeather(ctx, state)
	})
	if err != nil {
		return view.WeatherSnapshot{}, err
	}
	snap := normalize.Weather(raw)
	if snap.City == "" {
		snap.City = state
	}
	snap.Origin = origin
	return snap, nil
}

// RecommendationWeather is CityWeather memoized per normalized city name.
// Synthetic snapshots are never memoized so a recovered backend is used.
func (s *Service) RecommendationWeather(ctx context.Context, city string) (view.WeatherSnapshot, error) {
	key := weatherKey(city)
	if v, ok := s.weather.Get(key); ok {
		return v.(view.WeatherSnapshot), nil
	}
	snap, err := s.CityWeather(ctx, city)
	if err != nil {
		return view.WeatherSnapshot{}, err
	}
	if snap.Origin != view.OriginSynthetic {
		s.weather.SetDefault(key, snap)
	}
	return snap, nil
}

func weatherKey(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

// Recommend runs a recommendation search. A request without interests is
// filled from the profile of the session in ctx. An empty result returns
// ErrNoRecommendations together with a displayable result.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (view.RecommendationResult, error) {
	if len(req.Interests) == 0 {
		if sess, ok := SessionFrom(ctx); ok {
			req.Interests = append([]string(nil), sess.Profile.Interests...)
			if req.Month == "" {
				req.Month = sess.Profile.PreferredMonth
			}
		}
	}
	req = req.WithDefaults()

	raw, origin, err := s.fetch(ctx, "recommend", func(ctx context.Context, src Source) ([]byte, error) {
		return src.Recommend(ctx, req)
	})
	if err != nil {
		return view.RecommendationResult{}, err
	}
	recs := normalize.Recommendations(raw)
	res := view.RecommendationResult{Recommendations: recs, Origin: origin}
	if len(recs) == 0 {
		res.Message = view.NoRecommendations
		return res, ErrNoRecommendations
	}
	return res, nil
}

func (s *Service) CompareStates(ctx context.Context, state1, state2 string) (view.ComparisonPair, error) {
	raw, origin, err := s.fetch(ctx, "compare "+state1+" and "+state2, func(ctx context.Context, src Source) ([]byte, error) {
		return src.CompareStates(ctx, state1, state2)
	})
	if err != nil {
		return view.ComparisonPair{}, err
	}
	pair := normalize.CompareStates(raw, state1, state2, s.profile.Policy())
	pair.Origin = origin
	return pair, nil
}

func (s *Service) CompareCities(ctx context.Context, state1, city1, state2, city2 string) (view.CityComparison, error) {
	raw, origin, err := s.fetch(ctx, "compare "+city1+" and "+city2, func(ctx context.Context, src Source) ([]byte, error) {
		return src.CompareCities(ctx, state1, city1, state2, city2)
	})
	if err != nil {
		return view.CityComparison{}, err
	}
	cmp := normalize.CompareCities(raw, state1, city1, state2, city2)
	cmp.Origin = origin
	return cmp, nil
}

func (s *Service) authSource() (AuthSource, error) {
	a, ok := s.live.(AuthSource)
	if !ok {
		return nil, ErrAuthNotSupported
	}
	return a, nil
}

// account runs a single live-only account call.
func (s *Service) account(ctx context.Context, op string, fetch func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	raw, _, err := s.resolve(ctx, op, attempt{origin: view.OriginLive, name: s.live.Name(), fetch: fetch})
	return raw, err
}

// Register creates the account and opens a session seeded with the
// interests given at sign-up.
func (s *Service) Register(ctx context.Context, creds Credentials) (Session, view.AuthResult, error) {
	a, err := s.authSource()
	if err != nil {
		return Session{}, view.AuthResult{}, err
	}
	raw, err := s.account(ctx, "register "+creds.Username, func(ctx context.Context) ([]byte, error) {
		return a.Register(ctx, creds)
	})
	if err != nil {
		return Session{}, view.AuthResult{}, err
	}
	res := normalize.Auth(raw)
	if res.Username == "" {
		res.Username = creds.Username
	}
	if len(res.Profile.Interests) == 0 && len(creds.Interests) > 0 {
		res.Profile.Interests = append([]string(nil), creds.Interests...)
	}
	if res.Profile.PreferredMonth == "" {
		res.Profile.PreferredMonth = creds.PreferredMonth
	}
	sess, err := s.sessions.Save(ctx, Session{Token: res.Token, Username: res.Username, Profile: res.Profile})
	if err != nil {
		return Session{}, view.AuthResult{}, err
	}
	return sess, res, nil
}

// Login authenticates against the backend and opens a session. Saved
// interests are fetched when the login response does not carry them.
func (s *Service) Login(ctx context.Context, creds Credentials) (Session, view.AuthResult, error) {
	a, err := s.authSource()
	if err != nil {
		return Session{}, view.AuthResult{}, err
	}
	raw, err := s.account(ctx, "login "+creds.Username, func(ctx context.Context) ([]byte, error) {
		return a.Login(ctx, creds)
	})
	if err != nil {
		return Session{}, view.AuthResult{}, err
	}
	res := normalize.Auth(raw)
	if res.Username == "" {
		res.Username = creds.Username
	}
	if len(res.Profile.Interests) == 0 {
		authed := WithSession(ctx, Session{Token: res.Token, Username: res.Username})
		if raw, err := a.UserInterests(authed, res.Username); err == nil {
			res.Profile.Interests = normalize.UserInterests(raw)
		} else if ctx.Err() == nil {
			s.logger.Warn("could not load saved interests", zap.String("username", res.Username), zap.Error(err))
		}
	}
	sess, err := s.sessions.Save(ctx, Session{Token: res.Token, Username: res.Username, Profile: res.Profile})
	if err != nil {
		return Session{}, view.AuthResult{}, err
	}
	return sess, res, nil
}

func (s *Service) UserInterests(ctx context.Context, username string) ([]string, error) {
	a, err := s.authSource()
	if err != nil {
		return nil, err
	}
	raw, err := s.account(ctx, "interests of "+username, func(ctx context.Context) ([]byte, error) {
		return a.UserInterests(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	return normalize.UserInterests(raw), nil
}

// UpdateUserInterests saves interests for username and refreshes the
// profile of the matching session in ctx.
func (s *Service) UpdateUserInterests(ctx context.Context, username string, interests []string) ([]string, error) {
	a, err := s.authSource()
	if err != nil {
		return nil, err
	}
	raw, err := s.account(ctx, "update interests of "+username, func(ctx context.Context) ([]byte, error) {
		return a.UpdateUserInterests(ctx, username, interests)
	})
	if err != nil {
		return nil, err
	}
	saved := normalize.UserInterests(raw)
	if len(saved) == 0 {
		saved = append([]string{}, interests...)
	}
	if sess, ok := SessionFrom(ctx); ok && sess.ID != "" && sess.Username == username {
		sess.Profile.Interests = saved
		if _, err := s.sessions.Save(ctx, sess); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// ProbeStatus is the last known reachability of the live backend.
type ProbeStatus struct {
	Source    string     `json:"source"`
	Reachable bool       `json:"reachable"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Probe checks the live backend directly, without fallback.
func (s *Service) Probe(ctx context.Context) error {
	_, err := s.live.States(ctx)
	now := time.Now().UTC()
	status := ProbeStatus{Source: s.live.Name(), Reachable: err == nil, CheckedAt: &now}
	if err != nil {
		status.Error = err.Error()
	}
	s.mu.Lock()
	s.probe = status
	s.mu.Unlock()
	return err
}

func (s *Service) BackendStatus() ProbeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.probe
}
