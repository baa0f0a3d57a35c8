package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	MigrationsDir string
	RedisURL      string
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "harbor"),
		DBPassword:    getEnv("DB_PASSWORD", "harbor_dev_password"),
		DBName:        getEnv("DB_NAME", "harbor"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./db/migrations"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:     time.Duration(getEnvInt("ACCESS_TTL_SECONDS", 900)) * time.Second,
		RefreshTTL:    time.Duration(getEnvInt("REFRESH_TTL_SECONDS", 2592000)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
