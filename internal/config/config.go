package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported completion providers.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

const (
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultLLMTimeout   = 60 * time.Second
	defaultDatabasePath = "data/calorina.db"
	defaultPort         = "8080"
	defaultLanguage     = "en"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	LLMProvider  string
	LLMTimeout   time.Duration

	// HistoryLimit caps the number of messages sent to the model per turn.
	// Zero means the whole conversation.
	HistoryLimit int

	DatabasePath    string
	Port            string
	DefaultLanguage string
	SessionSecret   []byte

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getenv("GEMINI_MODEL", defaultGeminiModel),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		LLMProvider:        strings.ToLower(getenv("LLM_PROVIDER", ProviderGemini)),
		DatabasePath:       getenv("DATABASE_PATH", defaultDatabasePath),
		Port:               getenv("PORT", defaultPort),
		DefaultLanguage:    strings.ToLower(getenv("DEFAULT_LANGUAGE", defaultLanguage)),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	// Completion keys are read by the clients at call time; a missing key
	// surfaces as the assistant's apology, not as a startup failure.
	if cfg.LLMProvider != ProviderGemini && cfg.LLMProvider != ProviderGroq {
		return nil, invalid("LLM_PROVIDER", fmt.Errorf("unknown provider %q", cfg.LLMProvider))
	}

	cfg.LLMTimeout = defaultLLMTimeout
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalid("LLM_TIMEOUT_SECONDS", err)
		}
		if secs <= 0 {
			return nil, invalid("LLM_TIMEOUT_SECONDS", fmt.Errorf("must be positive, got %d", secs))
		}
		cfg.LLMTimeout = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalid("HISTORY_LIMIT", err)
		}
		if n < 0 {
			return nil, invalid("HISTORY_LIMIT", fmt.Errorf("must not be negative, got %d", n))
		}
		cfg.HistoryLimit = n
	}

	if cfg.DefaultLanguage != "en" && cfg.DefaultLanguage != "ar" {
		return nil, invalid("DEFAULT_LANGUAGE", fmt.Errorf("unsupported language %q", cfg.DefaultLanguage))
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = []byte(secret)
	} else {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
	}

	ids, err := parseIDs(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, invalid("TELEGRAM_ALLOWED_USER_IDS", err)
	}
	cfg.TelegramAllowedUserIDs = ids

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, invalid("ADMIN_TELEGRAM_ID", err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// RequireTelegram reports an error when the bot settings are incomplete.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func invalid(key string, err error) error {
	return fmt.Errorf("%s environment variable is invalid: %w", key, err)
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func randomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return []byte(hex.EncodeToString(b)), nil
}
