package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	LoginGuard LoginGuardConfig
	Admin      AdminConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds the signing secret. Token lifetime is fixed (see util.AccessTokenTTL).
type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RedisConfig is optional; an empty Host disables the login guard.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	IdleTTL           time.Duration
	CleanupSpec       string // cron spec for pruning idle limiters
}

type LoginGuardConfig struct {
	MaxFailures int64
	Window      time.Duration
}

// AdminConfig describes the system administrator created on first start.
// Public registration only produces NORMAL_USER accounts.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
	Address  string
}

func (c *AdminConfig) Enabled() bool {
	return c.Email != "" && c.Password != ""
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "5000"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "store_rating"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: parseFloat(getEnv("AUTH_RATE_LIMIT_RPS", "2"), 2),
			Burst:             parseInt(getEnv("AUTH_RATE_LIMIT_BURST", "5"), 5),
			IdleTTL:           parseDuration(getEnv("AUTH_RATE_LIMIT_IDLE_TTL", "3m"), 3*time.Minute),
			CleanupSpec:       getEnv("AUTH_RATE_LIMIT_CLEANUP", "@every 1m"),
		},
		LoginGuard: LoginGuardConfig{
			MaxFailures: int64(parseInt(getEnv("LOGIN_MAX_FAILURES", "5"), 5)),
			Window:      parseDuration(getEnv("LOGIN_FAILURE_WINDOW", "15m"), 15*time.Minute),
		},
		Admin: AdminConfig{
			Name:     getEnv("ADMIN_NAME", "System Administrator Account"),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Address:  getEnv("ADMIN_ADDRESS", "Head Office"),
		},
	}

	if config.JWT.Secret == "" {
		if config.Server.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		config.JWT.Secret = "dev-secret-change-me"
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return f
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
