package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal time.Duration
		expected   time.Duration
	}{
		{"parses go duration", "3s", time.Second, 3 * time.Second},
		{"parses bare milliseconds", "2000", time.Second, 2 * time.Second},
		{"uses default for empty", "", time.Second, time.Second},
		{"uses default for garbage", "soon", time.Second, time.Second},
		{"uses default for negative", "-5s", time.Second, time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tc.envValue)

			result := getEnvAsDurationOrDefault("TEST_DURATION", tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsBoolOrDefault(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !getEnvAsBoolOrDefault("TEST_BOOL", false) {
		t.Error("Expected true")
	}

	t.Setenv("TEST_BOOL", "nope")
	if getEnvAsBoolOrDefault("TEST_BOOL", false) {
		t.Error("Expected default false for unparsable value")
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "TOGETHER_API_KEY", "TOGETHER_MODEL", "TOGETHER_API_URL",
		"MAX_MESSAGE_LENGTH", "RATE_LIMIT_WINDOW", "RATE_LIMIT_STORE",
		"GOOGLE_CLIENT_ID", "CHAT_REQUIRE_SESSION", "MAX_DURATION",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", cfg.Port)
	}
	if cfg.TogetherAPIKey != "" {
		t.Errorf("Expected empty API key, got %q", cfg.TogetherAPIKey)
	}
	if cfg.TogetherAPIURL != DefaultTogetherAPIURL {
		t.Errorf("Expected default API URL, got %q", cfg.TogetherAPIURL)
	}
	if cfg.MaxMessageLength != 500 {
		t.Errorf("Expected max message length 500, got %d", cfg.MaxMessageLength)
	}
	if cfg.RateLimitWindow != 2*time.Second {
		t.Errorf("Expected 2s window, got %v", cfg.RateLimitWindow)
	}
	if cfg.MaxDuration != 30*time.Second {
		t.Errorf("Expected 30s max duration, got %v", cfg.MaxDuration)
	}
	if cfg.RateLimitStore != RateLimitStoreMemory {
		t.Errorf("Expected memory store, got %q", cfg.RateLimitStore)
	}
	if cfg.SessionSecret != "" {
		t.Errorf("Expected no session secret without Google sign-in, got %q", cfg.SessionSecret)
	}
}

func TestLoad_RedisStoreRequiresURL(t *testing.T) {
	t.Setenv("RATE_LIMIT_STORE", "redis")
	t.Setenv("REDIS_URL", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when REDIS_URL is missing for redis store")
		}
	}()

	Load()
}

func TestLoad_GoogleSignInRequiresSessionSecret(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client.apps.googleusercontent.com")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg := Load()
	if cfg.SessionSecret != "s3cret" {
		t.Errorf("Expected session secret to be loaded, got %q", cfg.SessionSecret)
	}
}
