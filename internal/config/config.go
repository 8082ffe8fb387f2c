package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the client-side configuration.
type Config struct {
	APIBaseURL string
	AuthToken  string
	CacheDir   string
	CacheDB    string

	// Optional integrations
	GeminiAPIKey     string
	TelegramBotToken string
	TelegramChatID   int64
}

// ServerConfig holds the backend configuration.
type ServerConfig struct {
	Port      string
	SecretKey string
	DBPath    string
}

// NewFromEnv creates a Config from environment variables. A local .env
// file is loaded first when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	apiBaseURL := os.Getenv("MEALSYNC_API_URL")
	if apiBaseURL == "" {
		return nil, fmt.Errorf("MEALSYNC_API_URL environment variable not set")
	}

	cacheDir := os.Getenv("MEALSYNC_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "data/cache"
	}

	var telegramChatID int64
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		parsed, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID is not a valid integer: %w", err)
		}
		telegramChatID = parsed
	}

	return &Config{
		APIBaseURL:       apiBaseURL,
		AuthToken:        os.Getenv("MEALSYNC_TOKEN"),
		CacheDir:         cacheDir,
		CacheDB:          os.Getenv("MEALSYNC_CACHE_DB"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   telegramChatID,
	}, nil
}

// NewServerFromEnv creates a ServerConfig from environment variables.
func NewServerFromEnv() (*ServerConfig, error) {
	_ = godotenv.Load()

	secretKey := os.Getenv("MEALSYNC_SECRET")
	if secretKey == "" {
		return nil, fmt.Errorf("MEALSYNC_SECRET environment variable not set")
	}

	port := os.Getenv("MEALSYNC_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MEALSYNC_DB")
	if dbPath == "" {
		dbPath = "data/mealsync.db"
	}

	return &ServerConfig{
		Port:      port,
		SecretKey: secretKey,
		DBPath:    dbPath,
	}, nil
}
