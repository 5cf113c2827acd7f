// Package config loads the server's environment configuration and the
// per-deployment mission curriculum.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvConfig holds environment variables for the server process.
type EnvConfig struct {
	// Server
	Port     int
	LogLevel string

	// Reply upstream (in-character chat generation)
	ReplyProvider string // "edge" or "googleai"
	ReplyBaseURL  string
	ReplyAPIKey   string
	ReplyTimeout  time.Duration

	// Google AI (langchaingo provider)
	GoogleAPIKey string
	GoogleModel  string

	// Voice upstream (text-to-speech)
	VoiceURL     string
	VoiceAPIKey  string
	VoiceTimeout time.Duration
	DefaultVoice string

	// Translation upstream
	TranslateURL     string
	TranslateTimeout time.Duration

	// Mission curriculum
	CurriculumPath string

	// Dev-console log stream; 0 disables the WebSocket server
	WSLogPort int

	// Reply circuit breaker
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// LoadEnv loads environment variables, reading a .env file first when one
// exists.
func LoadEnv() (*EnvConfig, error) {
	// Try to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	cfg := &EnvConfig{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ReplyProvider: strings.ToLower(getEnv("REPLY_PROVIDER", "edge")),
		ReplyBaseURL:  getEnv("REPLY_BASE_URL", ""),
		ReplyAPIKey:   getEnv("REPLY_API_KEY", ""),

		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		GoogleModel:  getEnv("GOOGLE_MODEL", "gemini-1.5-flash"),

		VoiceURL:     getEnv("VOICE_URL", ""),
		VoiceAPIKey:  getEnv("VOICE_API_KEY", ""),
		DefaultVoice: getEnv("DEFAULT_VOICE", "jinwoo"),

		TranslateURL: getEnv("TRANSLATE_URL", "https://api.mymemory.translated.net/get"),

		CurriculumPath: getEnv("CURRICULUM_PATH", ""),
	}

	cfg.Port = getEnvInt("PORT", 3001)
	cfg.WSLogPort = getEnvInt("WS_LOG_PORT", 0)

	cfg.ReplyTimeout = getEnvDuration("REPLY_TIMEOUT", 12*time.Second)
	cfg.VoiceTimeout = getEnvDuration("VOICE_TIMEOUT", 20*time.Second)
	cfg.TranslateTimeout = getEnvDuration("TRANSLATE_TIMEOUT", 8*time.Second)

	cfg.BreakerThreshold = getEnvInt("REPLY_BREAKER_THRESHOLD", 5)
	cfg.BreakerCooldown = getEnvDuration("REPLY_BREAKER_COOLDOWN", 30*time.Second)

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func expandEnvVars(s string) string {
	// Replace ${VAR_NAME} with environment variable values
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
