package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port       string
	APIBaseURL string
	PrefsDSN   string
	Env        string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "3000")
	cfg.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:8000/api"), "/")
	cfg.PrefsDSN = getEnv("PREFS_DSN", "file:prefs.db")
	cfg.Env = getEnv("APP_ENV", "development")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
