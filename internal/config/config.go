package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Redis (optional; enables multi-instance status fan-out)
	RedisURL string

	// Secrets
	SecretsFile   string
	WSTokenSecret string

	// Sessions
	SessionTTL time.Duration

	// Chat
	ChatRequestsPerMin   int
	GeminiConcurrentReqs int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		SecretsFile:          getEnvOrDefault("SECRETS_FILE", ".secrets/gemini.env"),
		WSTokenSecret:        getEnvOrDefault("WS_TOKEN_SECRET", randomSecret()),
		SessionTTL:           time.Duration(getEnvAsIntOrDefault("SESSION_TTL_MINUTES", 120)) * time.Minute,
		ChatRequestsPerMin:   getEnvAsIntOrDefault("CHAT_REQUESTS_PER_MINUTE", 20),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// randomSecret generates a per-process websocket token secret when none is
// configured. Tokens then only survive as long as the process, which matches
// the in-memory session lifetime.
func randomSecret() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
