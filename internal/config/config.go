package config

import "os"

type Config struct {
	Port          string
	APIBaseURL    string
	SessionSecret string
	UIOrigin      string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		APIBaseURL:    getEnv("CRM_API_BASE_URL", "http://localhost:5037/api"),
		SessionSecret: getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		UIOrigin:      getEnv("UI_ORIGIN", "http://localhost:5173"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
