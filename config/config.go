package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	TokenExpiry int    `mapstructure:"TOKEN_EXPIRY_MINUTES"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	EnhanceAPIKey  string `mapstructure:"ENHANCE_API_KEY"`
	EnhanceBaseURL string `mapstructure:"ENHANCE_BASE_URL"`
	EnhanceModel   string `mapstructure:"ENHANCE_MODEL"`

	SummaryAPIKey  string `mapstructure:"SUMMARY_API_KEY"`
	SummaryBaseURL string `mapstructure:"SUMMARY_BASE_URL"`
	SummaryModel   string `mapstructure:"SUMMARY_MODEL"`

	OAuthAuthorizeURL string `mapstructure:"OAUTH_AUTHORIZE_URL"`
	SiteURL           string `mapstructure:"SITE_URL"`
	SignInPath        string `mapstructure:"SIGN_IN_PATH"`
}

// LLMConfig describes one OpenAI-compatible chat-completions endpoint.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

var defaults = map[string]interface{}{
	"SERVER_PORT":          "8080",
	"LOG_LEVEL":            "info",
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "",
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_NAME":              "notewise",
	"DB_SSLMODE":           "require",
	"JWT_SECRET":           "",
	"TOKEN_EXPIRY_MINUTES": 1440,
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"ALLOWED_ORIGINS":      "http://localhost:3000",
	"ENHANCE_API_KEY":      "",
	"ENHANCE_BASE_URL":     "https://generativelanguage.googleapis.com/v1beta/openai/",
	"ENHANCE_MODEL":        "gemini-2.0-flash",
	"SUMMARY_API_KEY":      "",
	"SUMMARY_BASE_URL":     "https://api.deepseek.com/v1",
	"SUMMARY_MODEL":        "deepseek-chat",
	"OAUTH_AUTHORIZE_URL":  "",
	"SITE_URL":             "http://localhost:3000",
	"SIGN_IN_PATH":         "/sign-in",
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	// A missing .env is fine; the OS environment is used instead.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, ErrMissingSecret
	}
	return &cfg, nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(strings.TrimSpace(c.DBUser), strings.TrimSpace(c.DBPassword)),
		Host:     strings.TrimSpace(c.DBHost) + ":" + strings.TrimSpace(c.DBPort),
		Path:     "/" + strings.TrimSpace(c.DBName),
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpiry) * time.Minute
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) Enhance() LLMConfig {
	return LLMConfig{APIKey: c.EnhanceAPIKey, BaseURL: c.EnhanceBaseURL, Model: c.EnhanceModel}
}

// Summary falls back to the enhancement key when no summary key is set,
// so a single provider can serve both.
func (c *Config) Summary() LLMConfig {
	if c.SummaryAPIKey == "" {
		return c.Enhance()
	}
	return LLMConfig{APIKey: c.SummaryAPIKey, BaseURL: c.SummaryBaseURL, Model: c.SummaryModel}
}
