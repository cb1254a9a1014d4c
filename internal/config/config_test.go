package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SPOONACULAR_API_KEY", "spoon_key")
	t.Setenv("TMDB_API_KEY", "tmdb_key")
	t.Setenv("GROQ_API_KEY", "groq_key")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "")
	t.Setenv("TELEGRAM_ADMIN_ID", "")
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		setRequired(t)

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "spoon_key", cfg.SpoonacularAPIKey)
		assert.Equal(t, "tmdb_key", cfg.TMDBAPIKey)
		assert.Equal(t, "groq_key", cfg.GroqAPIKey)
		assert.Equal(t, ProviderGroq, cfg.LLMProvider)
		assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
		assert.NotEmpty(t, cfg.SessionSecret)
	})

	t.Run("MissingSpoonacularKey", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SPOONACULAR_API_KEY", "")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "SPOONACULAR_API_KEY environment variable not set", err.Error())
	})

	t.Run("MissingTMDBKey", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TMDB_API_KEY", "")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "TMDB_API_KEY environment variable not set", err.Error())
	})

	t.Run("GeminiProviderRequiresGeminiKey", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LLM_PROVIDER", "gemini")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GEMINI_API_KEY environment variable not set", err.Error())

		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("GROQ_API_KEY", "")
		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LLM_PROVIDER", "cohere")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})

	t.Run("Durations", func(t *testing.T) {
		setRequired(t)
		t.Setenv("HTTP_TIMEOUT", "5s")
		t.Setenv("SESSION_TTL", "30m")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)

		t.Setenv("HTTP_TIMEOUT", "soon")
		_, err = NewFromEnv()
		assert.Error(t, err)
	})

	t.Run("TelegramUsers", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		t.Setenv("TELEGRAM_ADMIN_ID", "12")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, []int64{12, 34}, cfg.TelegramAllowedUserIDs)
		assert.Equal(t, int64(12), cfg.AdminTelegramID)

		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")
		_, err = NewFromEnv()
		assert.Error(t, err)
	})
}
