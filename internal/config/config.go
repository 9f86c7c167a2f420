package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string
	LogLevel   string

	CatalogFile      string
	CatalogTimeout   time.Duration
	CompletedTTL     time.Duration
	IdleTTL          time.Duration
	SweepInterval    time.Duration
	AuditBuffer      int
	SubscriberBuffer int
}

// Load reads the environment, after a .env file in the working directory
// when one exists.
func Load() *Config {
	_ = godotenv.Load()

	driver := getEnv("DB_DRIVER", "postgres")
	port := "5432"
	if driver == "mysql" {
		port = "3306"
	}

	return &Config{
		DBDriver:   driver,
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", port),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "battleroyale"),
		JWTSecret:  getEnv("JWT_SECRET", "super-secret-key-change-me"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		CatalogFile:      getEnv("CATALOG_FILE", ""),
		CatalogTimeout:   getDuration("CATALOG_TIMEOUT", 5*time.Second),
		CompletedTTL:     getDuration("COMPLETED_SESSION_TTL", 10*time.Minute),
		IdleTTL:          getDuration("IDLE_SESSION_TTL", 30*time.Minute),
		SweepInterval:    getDuration("SWEEP_INTERVAL", time.Minute),
		AuditBuffer:      getInt("AUDIT_BUFFER", 256),
		SubscriberBuffer: getInt("SUBSCRIBER_BUFFER", 64),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
