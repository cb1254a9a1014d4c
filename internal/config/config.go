package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM providers understood by the application.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	SpoonacularAPIKey string
	TMDBAPIKey        string
	GroqAPIKey        string
	GeminiAPIKey      string
	LLMProvider       string

	// Sentiment classification (Hugging Face inference API)
	HFAPIToken       string
	HFSentimentModel string

	// Upstream HTTP behaviour
	HTTPTimeout time.Duration

	DatabasePath string

	// Sessions
	RedisAddr     string
	RedisPassword string
	SessionSecret string
	SessionTTL    time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	Port string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	spoonacularKey := os.Getenv("SPOONACULAR_API_KEY")
	if spoonacularKey == "" {
		return nil, fmt.Errorf("SPOONACULAR_API_KEY environment variable not set")
	}

	tmdbKey := os.Getenv("TMDB_API_KEY")
	if tmdbKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY environment variable not set")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGroq))
	groqAPIKey := os.Getenv("GROQ_API_KEY")
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	switch provider {
	case ProviderGroq:
		if groqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	httpTimeout, err := getDuration("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	sessionTTL, err := getDuration("SESSION_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		// Tokens issued with the fallback secret do not survive a restart.
		sessionSecret = "mealmate-dev-secret"
	}

	// Telegram Config (Optional for CLI, required for Bot)
	var allowed []int64
	for _, raw := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", raw, err)
		}
		allowed = append(allowed, id)
	}

	var adminID int64
	if v := os.Getenv("TELEGRAM_ADMIN_ID"); v != "" {
		adminID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
	}

	return &Config{
		SpoonacularAPIKey:      spoonacularKey,
		TMDBAPIKey:             tmdbKey,
		GroqAPIKey:             groqAPIKey,
		GeminiAPIKey:           geminiAPIKey,
		LLMProvider:            provider,
		HFAPIToken:             os.Getenv("HF_API_TOKEN"),
		HFSentimentModel:       getEnv("HF_SENTIMENT_MODEL", "distilbert/distilbert-base-uncased-finetuned-sst-2-english"),
		HTTPTimeout:            httpTimeout,
		DatabasePath:           getEnv("DATABASE_PATH", "data/mealmate.db"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		SessionSecret:          sessionSecret,
		SessionTTL:             sessionTTL,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "json"),
		Port:                   getEnv("PORT", "8080"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
