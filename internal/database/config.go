package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"centavo/internal/logger"
)

// Config carries the Postgres connection settings, filled from the
// environment with local-development defaults.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig loads .env when present and reads the DB_* variables.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// No .env is fine; the process environment still applies.
		logger.Get().Debug("no .env file found")
	}

	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "centavo"),
		Password: getEnv("DB_PASSWORD", "centavo"),
		DBName:   getEnv("DB_NAME", "centavo"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}, nil
}

// DSN returns the keyword/value connection string GORM's postgres driver
// expects.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// form of the same settings, which is what
// golang-migrate takes.
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
