package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppName  string
	Port     string
	Database DatabaseConfig
	Redis    RedisConfig
	Notifier NotifierConfig
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	URL      string // full DSN, takes precedence when set
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig holds session storage settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NotifierConfig holds the invoice delivery integration settings
type NotifierConfig struct {
	APIURL string
	Token  string
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	cfg := &Config{
		AppName: getEnv("APP_NAME", "Salon Manager API v1.0"),
		Port:    getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "salon"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Notifier: NotifierConfig{
			APIURL: os.Getenv("NOTIFY_API_URL"),
			Token:  os.Getenv("NOTIFY_TOKEN"),
		},
	}

	return cfg
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.DBName, d.Port,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
