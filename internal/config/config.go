// Package config loads settings from the environment, after reading an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string        // APP_ENV, "development" enables debug logging
	APIBaseURL     string        // API_URL, base URL of the search service used by the client
	Port           string        // PORT, listen port of the search service
	RedisURL       string        // REDIS_URL
	RedisDB        int           // REDIS_DB
	RateLimitRPS   float64       // RATE_LIMIT_RPS, per client IP
	RateLimitBurst int           // RATE_LIMIT_BURST
	RequestTimeout time.Duration // REQUEST_TIMEOUT, client side HTTP timeout
	CatalogFile    string        // CATALOG_FILE, optional JSON seed for the service
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:            getEnv("APP_ENV", "production"),
		APIBaseURL:     getEnv("API_URL", "http://localhost:8000"),
		Port:           getEnv("PORT", "8000"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		CatalogFile:    getEnv("CATALOG_FILE", ""),
	}
}

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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		// bare seconds
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}
