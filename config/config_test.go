package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 1440, cfg.TokenExpiry)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "gemini-2.0-flash", cfg.EnhanceModel)
	assert.Equal(t, "/sign-in", cfg.SignInPath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("TOKEN_EXPIRY_MINUTES", "30")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "  ")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "app", DBPassword: "p@ss", DBHost: "db", DBPort: "5432", DBName: "notes", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/notes?sslmode=disable", cfg.DSN())
}

func TestSummaryFallsBackToEnhance(t *testing.T) {
	cfg := &Config{EnhanceAPIKey: "k", EnhanceBaseURL: "https://e", EnhanceModel: "m1", SummaryBaseURL: "https://s", SummaryModel: "m2"}
	assert.Equal(t, cfg.Enhance(), cfg.Summary())

	cfg.SummaryAPIKey = "k2"
	assert.Equal(t, LLMConfig{APIKey: "k2", BaseURL: "https://s", Model: "m2"}, cfg.Summary())
}
