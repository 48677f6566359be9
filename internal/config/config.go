package config

import (
	"os"
	"strings"
)

// Config collects every knob the server reads from the environment.
// Values come from the process environment; main loads a .env file first.
type Config struct {
	HTTPAddr     string
	MySQLDSN     string
	RedisAddr    string
	KafkaBrokers []string
	JWTSecret    string
	GeminiAPIKey string
	FrontendURL  string
}

func Load() Config {
	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:     getenv("DB_DSN", "root:meatshop@tcp(127.0.0.1:3306)/meatshop?parseTime=true"),
		RedisAddr:    getenv("REDIS_ADDR", "127.0.0.1:6379"),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "")),
		JWTSecret:    getenv("JWT_SECRET", ""),
		GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
		FrontendURL:  getenv("FRONTEND_URL", "http://localhost:5173"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
