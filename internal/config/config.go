package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/i474232898/tourism-dashboard/internal/tourism"
	"github.com/i474232898/tourism-dashboard/internal/tourism/normalize"
	"github.com/i474232898/tourism-dashboard/internal/tourism/sources"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	Port string

	BackendBaseURL    string
	HTTPTimeout       time.Duration
	BackendMaxRetries int

	// Direct weather fallbacks, each enabled when its key is set.
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// ProbeInterval controls how often backend reachability is checked.
	ProbeInterval time.Duration

	// WeatherCacheTTL bounds recommendation weather reuse (0 = never expire).
	WeatherCacheTTL time.Duration

	// Session retention.
	SessionStore  string
	SessionDBPath string
	SessionMax    int           // max number of in-memory sessions (0 = unlimited)
	SessionMaxAge time.Duration // max idle age of a session (0 = unlimited)

	// SyntheticSeed seeds the offline data generator (0 = time based).
	SyntheticSeed uint64

	Profile tourism.Profile
}

var errInvalidStore = errors.New("invalid SESSION_STORE")

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.BackendBaseURL = strings.TrimRight(getenvDefault("BACKEND_BASE_URL", sources.DefaultBackendURL), "/")
	cfg.BackendMaxRetries = getenvInt("BACKEND_MAX_RETRIES", 0)
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	if cfg.WeatherCacheTTL, err = getenvDuration("WEATHER_CACHE_TTL", "0"); err != nil {
		return nil, err
	}

	cfg.SessionStore = strings.ToLower(getenvDefault("SESSION_STORE", StoreMemory))
	if cfg.SessionStore != StoreMemory && cfg.SessionStore != StoreSQLite {
		return nil, fmt.Errorf("%w: %q", errInvalidStore, cfg.SessionStore)
	}
	cfg.SessionDBPath = getenvDefault("SESSION_DB_PATH", "data/sessions.db")
	cfg.SessionMax = getenvInt("SESSION_MAX", 10000)
	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if v := os.Getenv("SYNTHETIC_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNTHETIC_SEED: %w", err)
		}
		cfg.SyntheticSeed = seed
	}

	cfg.Profile = tourism.DefaultProfile()
	if path := os.Getenv("PROFILE_PATH"); path != "" {
		p, err := LoadProfile(path)
		if err != nil {
			return nil, err
		}
		cfg.Profile = p
	}

	return cfg, nil
}

// LoadProfile reads a TOML profile. Unset keys take their default values.
func LoadProfile(path string) (tourism.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return tourism.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	defer f.Close()

	var p tourism.Profile
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return tourism.Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	p = p.WithDefaults()
	if p.JoinMode != tourism.JoinAll && p.JoinMode != tourism.JoinPartial {
		return tourism.Profile{}, fmt.Errorf("profile %s: unknown join_mode %q", path, p.JoinMode)
	}
	if p.TrendOrder != normalize.TrendOrderChronological && p.TrendOrder != normalize.TrendOrderInsertion {
		return tourism.Profile{}, fmt.Errorf("profile %s: unknown trend_order %q", path, p.TrendOrder)
	}
	return p, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
