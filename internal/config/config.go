package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventChannel           string
	JWTSecret              string
	JWTTTL                 time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	LoginRateLimit         int
	LoginRateWindow        time.Duration
	CORSAllowOrigins       string
	LogLevel               string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEARNHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LearnHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "learnhub:events")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("cloudinary.folder", "learnhub/lectures")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("login.rate_limit", 10)
	v.SetDefault("login.rate_window", "1m")
	v.SetDefault("log.level", "info")

	jwtTTL, err := parseDuration(v, "jwt.ttl", "24h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	dashboardTTL, err := parseDuration(v, "dashboard.cache_ttl", "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v, "login.rate_window", "1m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid login rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventChannel:           v.GetString("events.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 jwtTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      dashboardTTL,
		LoginRateLimit:         v.GetInt("login.rate_limit"),
		LoginRateWindow:        rateWindow,
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		LogLevel:               v.GetString("log.level"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, fallback string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		raw = fallback
	}
	return time.ParseDuration(raw)
}
