package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURL        string
	MongoDB         string
	NatsURL         string
	RedisURL        string
	HTTPPort        string
	WorkerCount     int
	FetchTimeout    time.Duration
	FetchRatePerSec float64
	InsecureTLS     bool
	RefreshInterval time.Duration
	HTMLCacheTTL    time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURL:        getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "finanza"),
		NatsURL:         getEnv("NATS_URL", "nats://localhost:4222"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		WorkerCount:     getEnvInt("WORKER_COUNT", 4),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchRatePerSec: getEnvFloat("FETCH_RATE_PER_SEC", 1),
		InsecureTLS:     getEnvBool("FETCH_INSECURE_TLS", false),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 15*time.Minute),
		HTMLCacheTTL:    getEnvDuration("HTML_CACHE_TTL", 2*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
