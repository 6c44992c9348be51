package httpapi

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
	"github.com/i474232898/tourism-dashboard/internal/tourism/view"
)

// SessionHeader carries the session ID returned by /register and /login.
const SessionHeader = "X-Session-ID"

// SourceHeader reports which source produced the response body.
const SourceHeader = "X-Data-Source"

const sessionLocal = "session"

var validate = validator.New()

type handler struct {
	service *tourism.Service
	name    string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *tourism.Service, appName string) {
	h := &handler{service: service, name: appName}

	app.Get("/health", h.health)

	v1 := app.Group("/api/v1", h.attachSession)
	v1.Get("/health", h.health)

	v1.Get("/states", h.states)
	v1.Get("/states/:state", h.stateSummary)
	v1.Get("/states/:state/cities", h.cities)
	v1.Get("/states/:state/cities/:city", h.city)
	v1.Get("/states/:state/analysis", h.analysis)
	v1.Get("/states/:state/predictions/:category", h.categoryForecast)

	v1.Get("/weather/city/:city", h.cityWeather)
	v1.Get("/weather/state/:state", h.stateWeather)

	v1.Get("/interests", h.interests)
	v1.Post("/recommendations", h.recommend)
	v1.Get("/recommendations/weather/:city", h.recommendationWeather)

	v1.Get("/compare/states", h.compareStates)
	v1.Get("/compare/cities", h.compareCities)

	v1.Post("/register", h.register)
	v1.Post("/login", h.login)
	v1.Get("/session", h.session)
	v1.Delete("/session", h.clearSession)
	v1.Get("/users/:username/interests", h.userInterests)
	v1.Post("/users/:username/interests", h.updateUserInterests)
}

// attachSession loads the session named by SessionHeader and attaches it to
// the request context. Unknown IDs are served anonymously.
func (h *handler) attachSession(c *fiber.Ctx) error {
	id := c.Get(SessionHeader)
	if id == "" {
		return c.Next()
	}
	sess, err := h.service.Sessions().Load(c.UserContext(), id)
	switch {
	case err == nil:
		c.Locals(sessionLocal, sess)
		c.SetUserContext(tourism.WithSession(c.UserContext(), sess))
	case errors.Is(err, tourism.ErrSessionNotFound):
	default:
		return err
	}
	return c.Next()
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": h.name,
		"backend": h.service.BackendStatus(),
	})
}

// param returns the unescaped path parameter, which must be non-empty. The
// value is copied because fiber reuses its request buffers.
func param(c *fiber.Ctx, name string) (string, error) {
	v, err := url.PathUnescape(strings.Clone(c.Params(name)))
	if err != nil || v == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

func withOrigin(c *fiber.Ctx, origin view.Origin, body any) error {
	c.Set(SourceHeader, string(origin))
	return c.JSON(body)
}

func (h *handler) states(c *fiber.Ctx) error {
	states, origin, err := h.service.States(c.UserContext())
	if err != nil {
		return err
	}
	return withOrigin(c, origin, states)
}

func (h *handler) stateSummary(c *fiber.Ctx) error {
	state, err := param(c, "state")
	if err != nil {
		return err
	}
	summary, origin, err := h.service.StateSummary(c.UserContext(), state)
	if err != nil {
		return err
	}
	return withOrigin(c, origin, summary)
}

func (h *handler) cities(c *fiber.Ctx) error {
	state, err := param(c, "state")
	if err != nil {
		return err
	}
	cities, origin, err := h.service.Cities(c.UserContext(), state)
	if err != nil {
		return err
	}
	return withOrigin(c, origin, cities)
}

func (h *handler) city(c *fiber.Ctx) error {
	state, err := param(c, "state")
	if err != nil {
		return err
	}
	city, err := param(c, "city")
	if err != nil {
		return err
	}
	details, origin, err := h.service.City(c.UserContext(), state, city)
	if err != nil {
		return err
	}
	return withOrigin(c, origin, details)
}

func (h *handler) analysis(c *fiber.Ctx) error {
	state, err := param(c, "state")
	if err != nil {
		return err
	}
	a, err := h.service.Analyze(c.UserContext(), state)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (h *handler) categoryForecast(c *fiber.Ctx) error {
	state, err := param(c, "state")
	if err != nil {
		return err
	}
	category, err := param(c, "category")
	if err != nil {
		return err
	}
	fc, origin, err := h.service.CategoryForecast(c.UserContext(), state, category)
	if err != nil {
		return err
	}
	return withOrigin(c, origin, fc)
}

func (h *handler) cityWeather(c *fiber.Ctx) error {
	city, err := param(c, "city")
	if err != nil {
		return err
	}
	snap, err := h.service.CityWeather(c.UserContext(), city)
	if err != nil {
		return err
	}
	return withOrigin(c, snap.Origin, snap)
}

func (h *handler) stateWeather(c *fiber.Ctx) error {
	state, err := param(c, "state")
	if err != nil {
		return err
	}
	snap, err := h.service.StateWeather(c.UserContext(), state)
	if err != nil {
		return err
	}
	return withOrigin(c, snap.Origin, snap)
}

func (h *handler) interests(c *fiber.Ctx) error {
	interests, origin, err := h.service.Interests(c.UserContext())
	if err != nil {
		return err
	}
	return withOrigin(c, origin, interests)
}

// recommendBody is the recommendation search form.
type recommendBody struct {
	Interests []string `json:"interests" validate:"omitempty,dive,required"`
	Month     string   `json:"month" validate:"omitempty,oneof=January February March April May June July August September October November December"`
	MaxRisk   *float64 `json:"max_risk" validate:"omitempty,gte=0,lte=1"`
	MinRating *float64 `json:"min_rating" validate:"omitempty,gte=0,lte=5"`
}

func (h *handler) recommend(c *fiber.Ctx) error {
	var body recommendBody
	if err := bind(c, &body); err != nil {
		return err
	}
	res, err := h.service.Recommend(c.UserContext(), tourism.RecommendRequest{
		Interests: body.Interests,
		Month:     body.Month,
		MaxRisk:   body.MaxRisk,
		MinRating: body.MinRating,
	})
	if err != nil && !errors.Is(err, tourism.ErrNoRecommendations) {
		return err
	}
	return withOrigin(c, res.Origin, res)
}

func (h *handler) recommendationWeather(c *fiber.Ctx) error {
	city, err := param(c, "city")
	if err != nil {
		return err
	}
	snap, err := h.service.RecommendationWeather(c.UserContext(), city)
	if err != nil {
		return err
	}
	return withOrigin(c, snap.Origin, snap)
}

type compareStatesQuery struct {
	State1 string `query:"state1" validate:"required"`
	State2 string `query:"state2" validate:"required,nefield=State1"`
}

func (h *handler) compareStates(c *fiber.Ctx) error {
	var q compareStatesQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	pair, err := h.service.CompareStates(c.UserContext(), q.State1, q.State2)
	if err != nil {
		return err
	}
	return withOrigin(c, pair.Origin, pair)
}

type compareCitiesQuery struct {
	State1 string `query:"state1" validate:"required"`
	City1  string `query:"city1" validate:"required"`
	State2 string `query:"state2" validate:"required"`
	City2  string `query:"city2" validate:"required"`
}

func (h *handler) compareCities(c *fiber.Ctx) error {
	var q compareCitiesQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	cmp, err := h.service.CompareCities(c.UserContext(), q.State1, q.City1, q.State2, q.City2)
	if err != nil {
		return err
	}
	return withOrigin(c, cmp.Origin, cmp)
}

type registerBody struct {
	Username       string   `json:"username" validate:"required,min=3,max=64"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Password       string   `json:"password" validate:"required,min=6"`
	Interests      []string `json:"interests" validate:"omitempty,dive,required"`
	PreferredMonth string   `json:"preferred_month" validate:"omitempty,oneof=January February March April May June July August September October November December"`
}

type loginBody struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is returned by /register and /login.
type sessionResponse struct {
	Session tourism.Session `json:"session"`
	Message string          `json:"message,omitempty"`
}

func (h *handler) register(c *fiber.Ctx) error {
	var body registerBody
	if err := bind(c, &body); err != nil {
		return err
	}
	sess, res, err := h.service.Register(c.UserContext(), tourism.Credentials{
		Username:       body.Username,
		Email:          body.Email,
		Password:       body.Password,
		Interests:      body.Interests,
		PreferredMonth: body.PreferredMonth,
	})
	if err != nil {
		return err
	}
	c.Set(SessionHeader, sess.ID)
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{Session: sess, Message: res.Message})
}

func (h *handler) login(c *fiber.Ctx) error {
	var body loginBody
	if err := bind(c, &body); err != nil {
		return err
	}
	sess, res, err := h.service.Login(c.UserContext(), tourism.Credentials{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		return err
	}
	c.Set(SessionHeader, sess.ID)
	return c.JSON(sessionResponse{Session: sess, Message: res.Message})
}

func (h *handler) session(c *fiber.Ctx) error {
	sess, ok := c.Locals(sessionLocal).(tourism.Session)
	if !ok {
		return tourism.ErrSessionNotFound
	}
	return c.JSON(sess)
}

func (h *handler) clearSession(c *fiber.Ctx) error {
	if err := h.service.Sessions().Clear(c.UserContext(), c.Get(SessionHeader)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) userInterests(c *fiber.Ctx) error {
	username, err := param(c, "username")
	if err != nil {
		return err
	}
	interests, err := h.service.UserInterests(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"username": username, "interests": interests})
}

type interestsBody struct {
	Interests []string `json:"interests" validate:"required,min=1,dive,required"`
}

func (h *handler) updateUserInterests(c *fiber.Ctx) error {
	username, err := param(c, "username")
	if err != nil {
		return err
	}
	var body interestsBody
	if err := bind(c, &body); err != nil {
		return err
	}
	interests, err := h.service.UpdateUserInterests(c.UserContext(), username, body.Interests)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"username": username, "interests": interests})
}

// bind decodes and validates a JSON body.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// bindQuery decodes and validates query parameters.
func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
