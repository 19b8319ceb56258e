package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Oracle   OracleConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port     string
	LogLevel string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret        string
	ResolverInterval time.Duration
	SeedDemoData     bool
}

// OracleConfig holds oracle simulation settings
type OracleConfig struct {
	FetchTimeout time.Duration
	Latency      time.Duration
	ConflictRate float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "omnioracle"),
		},
		Server: ServerConfig{
			Port:     getEnv("SERVER_PORT", "8080"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		App: AppConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			ResolverInterval: getEnvDuration("RESOLVER_INTERVAL", 2*time.Second),
			SeedDemoData:     getEnvBool("SEED_DEMO_DATA", true),
		},
		Oracle: OracleConfig{
			FetchTimeout: getEnvDuration("ORACLE_FETCH_TIMEOUT", 30*time.Second),
			Latency:      getEnvDuration("ORACLE_LATENCY", 1500*time.Millisecond),
			ConflictRate: getEnvFloat("ORACLE_CONFLICT_RATE", 0.05),
		},
	}

	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
