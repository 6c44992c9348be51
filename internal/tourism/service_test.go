package tourism_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/i474232898/tourism-dashboard/internal/store"
	"github.com/i474232898/tourism-dashboard/internal/tourism"
	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

var errDown = errors.New("connection refused")

// fakeSource answers every call from fixtures keyed by method name.
type fakeSource struct {
	name string

	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
	lastReq   tourism.RecommendRequest
	tokens    []string
}

func newFake(name string, responses map[string]string) *fakeSource {
	return &fakeSource{name: name, responses: responses, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeSource) failAll(err error) *fakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs["*"] = err
	return f
}

func (f *fakeSource) heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, "*")
}

func (f *fakeSource) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeSource) reply(ctx context.Context, method string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	f.tokens = append(f.tokens, tourism.TokenFrom(ctx))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[method]; ok {
		return nil, err
	}
	if err, ok := f.errs["*"]; ok {
		return nil, err
	}
	body, ok := f.responses[method]
	if !ok {
		return nil, errors.New("no fixture for " + method)
	}
	return []byte(body), nil
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) States(ctx context.Context) ([]byte, error) {
	return f.reply(ctx, "States")
}
func (f *fakeSource) StateDetails(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "StateDetails")
}
func (f *fakeSource) Cities(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "Cities")
}
func (f *fakeSource) CityDetails(ctx context.Context, _, _ string) ([]byte, error) {
	return f.reply(ctx, "CityDetails")
}
func (f *fakeSource) Risk(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "Risk")
}
func (f *fakeSource) Trends(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "Trends")
}
func (f *fakeSource) Predictions(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "Predictions")
}
func (f *fakeSource) CategoryPrediction(ctx context.Context, _, _ string) ([]byte, error) {
	return f.reply(ctx, "CategoryPrediction")
}
func (f *fakeSource) CityWeather(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "CityWeather")
}
func (f *fakeSource) StateWeather(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "StateWeather")
}
func (f *fakeSource) Interests(ctx context.Context) ([]byte, error) {
	return f.reply(ctx, "Interests")
}
func (f *fakeSource) Recommend(ctx context.Context, req tourism.RecommendRequest) ([]byte, error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	return f.reply(ctx, "Recommend")
}
func (f *fakeSource) CompareStates(ctx context.Context, _, _ string) ([]byte, error) {
	return f.reply(ctx, "CompareStates")
}
func (f *fakeSource) CompareCities(ctx context.Context, _, _, _, _ string) ([]byte, error) {
	return f.reply(ctx, "CompareCities")
}

// fakeBackend adds account management.
type fakeBackend struct {
	*fakeSource
}

func (f fakeBackend) Register(ctx context.Context, _ tourism.Credentials) ([]byte, error) {
	return f.reply(ctx, "Register")
}
func (f fakeBackend) Login(ctx context.Context, _ tourism.Credentials) ([]byte, error) {
	return f.reply(ctx, "Login")
}
func (f fakeBackend) UserInterests(ctx context.Context, _ string) ([]byte, error) {
	return f.reply(ctx, "UserInterests")
}
func (f fakeBackend) UpdateUserInterests(ctx context.Context, _ string, _ []string) ([]byte, error) {
	return f.reply(ctx, "UpdateUserInterests")
}

var keralaFixtures = map[string]string{
	"StateDetails": `{"name": "Kerala", "capital": "Thiruvananthapuram", "best_month": "December", "top_category": "Beach"}`,
	"Risk":         `{"state": "Kerala", "flood_risk": 3, "earthquake_zone": "NaN"}`,
	"Trends":       `{"2022": 100000, "2023": 120000}`,
	"Predictions":  `{"state": "Kerala", "category_predictions": {"Beach": {"average_tourist_rating": 4.6}, "Heritage": {"average_tourist_rating": 4.8}}}`,
	"CityWeather":  `{"city": "Kochi", "temperature": 30.1, "condition": "Haze"}`,
}

func newService(t *testing.T, live, synthetic tourism.Source, opts ...tourism.Option) (*tourism.Service, *tourism.Sessions) {
	t.Helper()
	sessions := tourism.NewSessions(store.NewMemoryStore(0, 0))
	return tourism.NewService(live, synthetic, sessions, opts...), sessions
}

func TestAnalyzeKeralaEndToEnd(t *testing.T) {
	live := newFake("backend", keralaFixtures)
	svc, _ := newService(t, live, nil)

	a, err := svc.Analyze(context.Background(), "Kerala")
	require.NoError(t, err)

	require.NotEmpty(t, a.Insights)
	assert.Contains(t, a.Insights[0], "20.0%")
	require.Len(t, a.Risk.Entries, 1)
	assert.Equal(t, "Flood Risk", a.Risk.Entries[0].Label)
	assert.Equal(t, 3.0, a.Risk.Entries[0].ChartValue)
	assert.Equal(t, "Thiruvananthapuram", a.State.Capital)
	assert.Equal(t, "Heritage", a.Predictions.Ranked[0].Category)
	assert.Nil(t, a.Errors)
	for _, section := range []string{"state", "risk", "trends", "predictions"} {
		assert.Equal(t, view.OriginLive, a.Origins[section], section)
	}
}

func TestAnalyzeFallsBackWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	live := newFake("backend", nil).failAll(errDown)
	synthetic := newFake("synthetic", keralaFixtures)
	svc, _ := newService(t, live, synthetic, tourism.WithLogger(zap.New(core)))

	a, err := svc.Analyze(context.Background(), "Kerala")
	require.NoError(t, err)
	assert.Equal(t, view.OriginSynthetic, a.Origins["risk"])
	assert.Len(t, a.Risk.Entries, 1)
	assert.Equal(t, 4, logs.FilterMessage("source failed, falling back").Len())
}

func TestAnalyzeJoinModes(t *testing.T) {
	fixtures := map[string]string{}
	for k, v := range keralaFixtures {
		fixtures[k] = v
	}

	t.Run("all", func(t *testing.T) {
		live := newFake("backend", fixtures)
		live.errs["Risk"] = errDown
		svc, _ := newService(t, live, nil)

		_, err := svc.Analyze(context.Background(), "Kerala")
		assert.ErrorIs(t, err, tourism.ErrUnavailable)
	})

	t.Run("partial", func(t *testing.T) {
		live := newFake("backend", fixtures)
		live.errs["Risk"] = errDown
		svc, _ := newService(t, live, nil, tourism.WithProfile(tourism.Profile{JoinMode: tourism.JoinPartial}))

		a, err := svc.Analyze(context.Background(), "Kerala")
		require.NoError(t, err)
		assert.Contains(t, a.Errors, "risk")
		assert.NotContains(t, a.Origins, "risk")
		assert.Empty(t, a.Risk.Entries)
		assert.Len(t, a.Trends, 2)
		assert.Equal(t, "Kerala", a.State.Name)
		assert.Contains(t, a.Insights[0], "20.0%")
	})
}

func TestNoFallbackOnCancellation(t *testing.T) {
	live := newFake("backend", keralaFixtures)
	synthetic := newFake("synthetic", keralaFixtures)
	svc, _ := newService(t, live, synthetic)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.StateSummary(ctx, "Kerala")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, synthetic.count("StateDetails"))
}

func TestUnauthorizedClearsSessionWithoutFallback(t *testing.T) {
	live := newFake("backend", nil)
	live.errs["Recommend"] = tourism.ErrUnauthorized
	synthetic := newFake("synthetic", map[string]string{"Recommend": `{"recommendations": [{"city": "Kochi"}]}`})
	svc, sessions := newService(t, live, synthetic)

	ctx := context.Background()
	sess, err := sessions.Save(ctx, tourism.Session{Token: "expired", Username: "asha"})
	require.NoError(t, err)

	_, err = svc.Recommend(tourism.WithSession(ctx, sess), tourism.RecommendRequest{Interests: []string{"Beach"}})
	assert.ErrorIs(t, err, tourism.ErrUnauthorized)
	assert.Equal(t, 0, synthetic.count("Recommend"))

	_, err = sessions.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, tourism.ErrSessionNotFound)
}

func TestMalformedLiveResultsInFallback(t *testing.T) {
	live := newFake("backend", nil)
	live.errs["States"] = tourism.ErrMalformedPayload
	synthetic := newFake("synthetic", map[string]string{"States": `["Goa"]`})
	svc, _ := newService(t, live, synthetic)

	states, origin, err := svc.States(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Goa"}, states)
	assert.Equal(t, view.OriginSynthetic, origin)
}

func TestRecommendEmptyIsInformational(t *testing.T) {
	live := newFake("backend", map[string]string{
		"Recommend": `{"message": "No recommendations found matching your preferences."}`,
	})
	svc, _ := newService(t, live, nil)

	res, err := svc.Recommend(context.Background(), tourism.RecommendRequest{Interests: []string{"Desert"}})
	assert.ErrorIs(t, err, tourism.ErrNoRecommendations)
	assert.Equal(t, view.NoRecommendations, res.Message)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
}

func TestRecommendUsesSessionProfile(t *testing.T) {
	live := newFake("backend", map[string]string{
		"Recommend": `{"recommendations": [
			{"city": "Jaipur", "tourist_rating": 4.2},
			{"city": "Kochi", "tourist_rating": 4.5},
			{"city": "Shimla", "tourist_rating": 4.5}
		]}`,
	})
	svc, _ := newService(t, live, nil)

	sess := tourism.Session{ID: "s1", Profile: view.Profile{Interests: []string{"Beach"}, PreferredMonth: "May"}}
	res, err := svc.Recommend(tourism.WithSession(context.Background(), sess), tourism.RecommendRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Kochi", "Shimla", "Jaipur"},
		[]string{res.Recommendations[0].City, res.Recommendations[1].City, res.Recommendations[2].City})
	assert.Equal(t, []string{"Beach"}, live.lastReq.Interests)
	assert.Equal(t, "May", live.lastReq.Month)
	require.NotNil(t, live.lastReq.MaxRisk)
	assert.Equal(t, 1.0, *live.lastReq.MaxRisk)
	require.NotNil(t, live.lastReq.MinRating)
	assert.Equal(t, 0.0, *live.lastReq.MinRating)
}

func TestRecommendationWeatherIsCached(t *testing.T) {
	live := newFake("backend", keralaFixtures)
	svc, _ := newService(t, live, nil)
	ctx := context.Background()

	first, err := svc.RecommendationWeather(ctx, "Kochi")
	require.NoError(t, err)
	second, err := svc.RecommendationWeather(ctx, "  kochi ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, live.count("CityWeather"))

	_, err = svc.CityWeather(ctx, "Kochi")
	require.NoError(t, err)
	assert.Equal(t, 2, live.count("CityWeather"))
}

func TestRecommendationWeatherDoesNotKeepSyntheticSnapshots(t *testing.T) {
	live := newFake("backend", map[string]string{"CityWeather": `{"city": "Kochi", "temperature": 30}`}).failAll(errDown)
	synthetic := newFake("synthetic", map[string]string{"CityWeather": `{"city": "Kochi", "temperature": 99}`})
	svc, _ := newService(t, live, synthetic)
	ctx := context.Background()

	snap, err := svc.RecommendationWeather(ctx, "Kochi")
	require.NoError(t, err)
	assert.Equal(t, view.OriginSynthetic, snap.Origin)
	assert.Equal(t, 99.0, snap.Temperature)

	live.heal()
	snap, err = svc.RecommendationWeather(ctx, "Kochi")
	require.NoError(t, err)
	assert.Equal(t, view.OriginLive, snap.Origin)
	assert.Equal(t, 30.0, snap.Temperature)
	assert.Equal(t, 2, live.count("CityWeather"))

	_, err = svc.RecommendationWeather(ctx, "Kochi")
	require.NoError(t, err)
	assert.Equal(t, 2, live.count("CityWeather"))
}

func TestRejectedWeatherKeyFallsBackAndKeepsSession(t *testing.T) {
	live := newFake("backend", nil).failAll(errDown)
	direct := newFake("openweathermap", nil).failAll(tourism.ErrUnauthorized)
	synthetic := newFake("synthetic", keralaFixtures)
	svc, sessions := newService(t, live, synthetic, tourism.WithDirectWeather(direct))
	ctx := context.Background()

	sess, err := sessions.Save(ctx, tourism.Session{Token: "jwt", Username: "asha"})
	require.NoError(t, err)

	snap, err := svc.CityWeather(tourism.WithSession(ctx, sess), "Kochi")
	require.NoError(t, err)
	assert.Equal(t, view.OriginSynthetic, snap.Origin)
	assert.Equal(t, 1, synthetic.count("CityWeather"))

	_, err = sessions.Load(ctx, sess.ID)
	assert.NoError(t, err)
}

func TestCityWeatherChain(t *testing.T) {
	live := newFake("backend", nil).failAll(errDown)
	direct := newFake("openweathermap", map[string]string{"CityWeather": `{"city": "Kochi", "temperature": 28}`})
	synthetic := newFake("synthetic", keralaFixtures)
	svc, _ := newService(t, live, synthetic, tourism.WithDirectWeather(direct))

	snap, err := svc.CityWeather(context.Background(), "Kochi")
	require.NoError(t, err)
	assert.Equal(t, view.OriginDirect, snap.Origin)
	assert.Equal(t, 28.0, snap.Temperature)
	assert.Equal(t, 0, synthetic.count("CityWeather"))

	direct.failAll(errDown)
	snap, err = svc.CityWeather(context.Background(), "Kochi")
	require.NoError(t, err)
	assert.Equal(t, view.OriginSynthetic, snap.Origin)
}

func TestCityWeatherTriesDirectProvidersInOrder(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	live := newFake("backend", nil).failAll(errDown)
	first := newFake("openweathermap", nil).failAll(errDown)
	second := newFake("weatherapi", map[string]string{"CityWeather": `{"city": "Shimla", "temperature": 12}`})
	svc, _ := newService(t, live, nil, tourism.WithDirectWeather(first, second), tourism.WithLogger(zap.New(core)))

	snap, err := svc.CityWeather(context.Background(), "Shimla")
	require.NoError(t, err)
	assert.Equal(t, view.OriginDirect, snap.Origin)
	assert.Equal(t, 12.0, snap.Temperature)
	assert.Equal(t, 1, first.count("CityWeather"))

	fallbacks := logs.FilterMessage("source failed, falling back").All()
	require.Len(t, fallbacks, 2)
	assert.Equal(t, "weatherapi", fallbacks[1].ContextMap()["fallback"])
}

func TestCompareStatesUsesProfileYears(t *testing.T) {
	live := newFake("backend", map[string]string{
		"CompareStates": `{"visitors_2021": {"Goa": 100, "Assam": 50}, "visitors_2022": {"Goa": 150, "Assam": 50}}`,
	})
	svc, _ := newService(t, live, nil, tourism.WithProfile(tourism.Profile{
		ComparisonYears: []int{2021, 2022},
		GrowthFrom:      2021,
		GrowthTo:        2022,
	}))

	pair, err := svc.CompareStates(context.Background(), "Goa", "Assam")
	require.NoError(t, err)
	assert.Equal(t, 50.0, pair.First.TourismGrowth)
	assert.Equal(t, 0.0, pair.Second.TourismGrowth)
	assert.Len(t, pair.First.Visitors, 2)
	assert.Equal(t, view.OriginLive, pair.Origin)
}

func TestLoginLoadsSavedInterests(t *testing.T) {
	live := fakeBackend{newFake("backend", map[string]string{
		"Login":         `{"message": "Login successful", "username": "asha", "token": "jwt"}`,
		"UserInterests": `{"username": "asha", "interests": ["Beach", "Wildlife"]}`,
	})}
	svc, sessions := newService(t, live, nil)
	ctx := context.Background()

	sess, res, err := svc.Login(ctx, tourism.Credentials{Username: "asha", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", res.Message)
	assert.Equal(t, []string{"Beach", "Wildlife"}, sess.Profile.Interests)
	assert.Equal(t, "jwt", live.tokens[len(live.tokens)-1])

	stored, err := sessions.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "jwt", stored.Token)
}

func TestLoginRejected(t *testing.T) {
	live := fakeBackend{newFake("backend", nil)}
	live.errs["Login"] = tourism.ErrUnauthorized
	svc, _ := newService(t, live, nil)

	_, _, err := svc.Login(context.Background(), tourism.Credentials{Username: "asha", Password: "bad"})
	assert.ErrorIs(t, err, tourism.ErrUnauthorized)
}

func TestRegisterSeedsProfile(t *testing.T) {
	live := fakeBackend{newFake("backend", map[string]string{
		"Register": `{"message": "User registered successfully."}`,
	})}
	svc, _ := newService(t, live, nil)

	sess, res, err := svc.Register(context.Background(), tourism.Credentials{
		Username: "ravi", Password: "pw", Interests: []string{"Heritage"}, PreferredMonth: "October",
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully.", res.Message)
	assert.Equal(t, "ravi", sess.Username)
	assert.Equal(t, []string{"Heritage"}, sess.Profile.Interests)
	assert.Equal(t, "October", sess.Profile.PreferredMonth)
}

func TestUpdateUserInterestsRefreshesSession(t *testing.T) {
	live := fakeBackend{newFake("backend", map[string]string{
		"UpdateUserInterests": `{"message": "User interests updated successfully.", "username": "asha", "interests": ["Spiritual"]}`,
	})}
	svc, sessions := newService(t, live, nil)
	ctx := context.Background()

	sess, err := sessions.Save(ctx, tourism.Session{Username: "asha"})
	require.NoError(t, err)

	got, err := svc.UpdateUserInterests(tourism.WithSession(ctx, sess), "asha", []string{"Spiritual"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Spiritual"}, got)

	stored, err := sessions.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Spiritual"}, stored.Profile.Interests)
}

func TestAuthRequiresAccountSource(t *testing.T) {
	svc, _ := newService(t, newFake("backend", nil), nil)
	_, _, err := svc.Login(context.Background(), tourism.Credentials{Username: "x"})
	assert.ErrorIs(t, err, tourism.ErrAuthNotSupported)
}

func TestInterestsFallBackToProfile(t *testing.T) {
	live := newFake("backend", map[string]string{"Interests": `[]`})
	svc, _ := newService(t, live, nil, tourism.WithProfile(tourism.Profile{FallbackInterests: []string{"Beach"}}))

	interests, origin, err := svc.Interests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Beach"}, interests)
	assert.Equal(t, view.OriginSynthetic, origin)
}

func TestProbeRecordsStatus(t *testing.T) {
	live := newFake("backend", map[string]string{"States": `["Goa"]`})
	svc, _ := newService(t, live, nil)

	assert.Nil(t, svc.BackendStatus().CheckedAt)
	require.NoError(t, svc.Probe(context.Background()))
	status := svc.BackendStatus()
	assert.True(t, status.Reachable)
	assert.NotNil(t, status.CheckedAt)

	live.failAll(errDown)
	assert.Error(t, svc.Probe(context.Background()))
	assert.False(t, svc.BackendStatus().Reachable)
	assert.Contains(t, svc.BackendStatus().Error, "connection refused")
}
