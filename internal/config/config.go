package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName               string
	AppEnv                string
	AppPort               string
	DatabaseURL           string
	RedisURL              string
	SessionTTL            time.Duration
	SessionCookieName     string
	CookieSecure          bool
	JWTSecret             string
	TokenTTL              time.Duration
	BcryptCost            int
	LoginMaxAttempts      int
	LoginWindow           time.Duration
	LoginLockout          time.Duration
	LoginRateLimit        int
	UniversityName        string
	UniversityEmailDomain string
	AcademicYear          string
	CORSOrigins           string
	AccessLog             bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INTERNSHIP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Baze Internship API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("database.url", "sqlite://database/baze_internship.db")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie", "internship_session")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("bcrypt.cost", bcrypt.DefaultCost)
	v.SetDefault("login.max_attempts", 5)
	v.SetDefault("login.window", "15m")
	v.SetDefault("login.lockout", "15m")
	v.SetDefault("login.rate_limit", 20)
	v.SetDefault("university.name", "Baze University")
	v.SetDefault("university.email_domain", "@baze.edu.ng")
	v.SetDefault("university.academic_year", "2024/2025")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("http.access_log", false)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	sessionTTL, err := parseDuration(v, "session.ttl")
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := parseDuration(v, "token.ttl")
	if err != nil {
		return Config{}, err
	}
	loginWindow, err := parseDuration(v, "login.window")
	if err != nil {
		return Config{}, err
	}
	loginLockout, err := parseDuration(v, "login.lockout")
	if err != nil {
		return Config{}, err
	}

	appEnv := strings.ToLower(strings.TrimSpace(v.GetString("app.env")))

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                appEnv,
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		SessionTTL:            sessionTTL,
		SessionCookieName:     v.GetString("session.cookie"),
		JWTSecret:             v.GetString("jwt.secret"),
		TokenTTL:              tokenTTL,
		BcryptCost:            v.GetInt("bcrypt.cost"),
		LoginMaxAttempts:      v.GetInt("login.max_attempts"),
		LoginWindow:           loginWindow,
		LoginLockout:          loginLockout,
		LoginRateLimit:        v.GetInt("login.rate_limit"),
		UniversityName:        v.GetString("university.name"),
		UniversityEmailDomain: v.GetString("university.email_domain"),
		AcademicYear:          v.GetString("university.academic_year"),
		CORSOrigins:           v.GetString("cors.origins"),
		AccessLog:             v.GetBool("http.access_log"),
	}

	if v.IsSet("cookie.secure") {
		cfg.CookieSecure = v.GetBool("cookie.secure")
	} else {
		cfg.CookieSecure = appEnv == "production"
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	if cfg.LoginMaxAttempts <= 0 {
		cfg.LoginMaxAttempts = 5
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("%s must not be empty", key)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
