package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Env         string
	MaxDuration time.Duration

	// Together AI
	TogetherAPIKey string
	TogetherModel  string
	TogetherAPIURL string

	// Relay validation
	MaxMessageLength int

	// Rate limiting
	RateLimitWindow     time.Duration
	RateLimitStore      string
	RateLimitMaxEntries int

	// Redis (only when RateLimitStore is "redis")
	RedisURL string

	// Google sign-in / sessions
	GoogleClientID     string
	SessionSecret      string
	SessionMaxAge      time.Duration
	ChatRequireSession bool

	// Frontend
	FrontendURL string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"

	DefaultTogetherAPIURL = "https://api.together.xyz/v1/chat/completions"
)

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		MaxDuration:         getEnvAsDurationOrDefault("MAX_DURATION", 30*time.Second),
		TogetherAPIKey:      os.Getenv("TOGETHER_API_KEY"),
		TogetherModel:       os.Getenv("TOGETHER_MODEL"),
		TogetherAPIURL:      getEnvOrDefault("TOGETHER_API_URL", DefaultTogetherAPIURL),
		MaxMessageLength:    getEnvAsIntOrDefault("MAX_MESSAGE_LENGTH", 500),
		RateLimitWindow:     getEnvAsDurationOrDefault("RATE_LIMIT_WINDOW", 2*time.Second),
		RateLimitStore:      strings.ToLower(getEnvOrDefault("RATE_LIMIT_STORE", RateLimitStoreMemory)),
		RateLimitMaxEntries: getEnvAsIntOrDefault("RATE_LIMIT_MAX_ENTRIES", 100000),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		SessionMaxAge:       getEnvAsDurationOrDefault("SESSION_MAX_AGE", 30*24*time.Hour),
		ChatRequireSession:  getEnvAsBoolOrDefault("CHAT_REQUIRE_SESSION", false),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:             os.Getenv("LOG_FILE"),
	}

	if cfg.RateLimitStore == RateLimitStoreRedis {
		cfg.RedisURL = mustGetEnv("REDIS_URL")
	}

	// Sessions are only signed when Google sign-in is enabled
	if cfg.GoogleClientID != "" || cfg.ChatRequireSession {
		cfg.SessionSecret = mustGetEnv("SESSION_SECRET")
	}

	return cfg
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
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

// getEnvAsDurationOrDefault accepts Go durations ("2s") or bare milliseconds ("2000").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
