package config

import (
	"delivery-route-optimizer/internal/domain"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	CacheNone     = "none"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

type Config struct {
	Port        int
	Env         string
	LogLevel    string
	ORSAPIKey   string
	ORSBaseURL  string
	HTTPTimeout time.Duration

	CacheBackend string
	DBPath       string
	DatabaseURL  string
	RedisAddr    string
	CacheTTL     time.Duration

	DefaultTravelMode     domain.TravelMode
	DefaultServiceMinutes float64

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string

	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("HTTP_TIMEOUT", "10s")

	v.SetDefault("CACHE_BACKEND", CacheNone)
	v.SetDefault("DB_PATH", "data/app.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CACHE_TTL", "168h")

	v.SetDefault("DEFAULT_TRAVEL_MODE", string(domain.TravelModeDrivingHeavy))
	v.SetDefault("DEFAULT_SERVICE_MINUTES", 5)

	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("ALLOWED_ORIGINS", "*")

	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
}

// Load reads configuration from a .env file (if present), an optional
// config.yaml in ./data or the working directory, and the environment, with
// environment variables taking precedence.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./data")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	mode, err := domain.ParseTravelMode(v.GetString("DEFAULT_TRAVEL_MODE"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: DEFAULT_TRAVEL_MODE: %w", err)
	}

	cfg := Config{
		Port:        v.GetInt("PORT"),
		Env:         strings.ToLower(v.GetString("ENV")),
		LogLevel:    v.GetString("LOG_LEVEL"),
		ORSAPIKey:   strings.TrimSpace(v.GetString("ORS_API_KEY")),
		ORSBaseURL:  v.GetString("ORS_BASE_URL"),
		HTTPTimeout: v.GetDuration("HTTP_TIMEOUT"),

		CacheBackend: strings.ToLower(strings.TrimSpace(v.GetString("CACHE_BACKEND"))),
		DBPath:       v.GetString("DB_PATH"),
		DatabaseURL:  strings.TrimSpace(v.GetString("DATABASE_URL")),
		RedisAddr:    v.GetString("REDIS_ADDR"),
		CacheTTL:     v.GetDuration("CACHE_TTL"),

		DefaultTravelMode:     mode,
		DefaultServiceMinutes: clamp(v.GetFloat64("DEFAULT_SERVICE_MINUTES"), 0, 15),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),

		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}

	switch c.CacheBackend {
	case CacheNone, CacheSQLite, CacheRedis:
	case CachePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres cache backend")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	return nil
}

// ServiceTime is the default per-stop service time.
func (c Config) ServiceTime() time.Duration {
	return time.Duration(c.DefaultServiceMinutes * float64(time.Minute))
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
