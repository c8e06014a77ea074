package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        int
	NatsURL     string
	NatsToken   string
	DatabaseURL string
	LogLevel    string
	APIToken    string
	// KeyFindings overrides the catalog's default pivot phrases when set.
	KeyFindings []string
}

func Load() Config {
	return Config{
		Port:        envInt("PROTECH_PORT", 8760),
		NatsURL:     envStr("NATS_URL", "nats://nats:4222"),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		APIToken:    envStr("PROTECH_API_TOKEN", ""),
		KeyFindings: envList("PROTECH_KEY_FINDINGS"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envList parses a comma-separated env var; nil when unset or empty.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
