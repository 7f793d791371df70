package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	AppAddr   string
	DBUrl     string
	DBNs      string
	DBDb      string
	DBUser    string
	DBPass    string
	JWTSecret string
	MediaDir  string
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		AppAddr:   os.Getenv("APP_ADDR"),
		DBUrl:     os.Getenv("SURREAL_URL"),
		DBUser:    os.Getenv("SURREAL_USER"),
		DBPass:    os.Getenv("SURREAL_PASS"),
		DBNs:      os.Getenv("SURREAL_NS"),
		DBDb:      os.Getenv("SURREAL_DB"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		MediaDir:  os.Getenv("MEDIA_DIR"),
	}

	if cfg.AppAddr == "" {
		cfg.AppAddr = ":8080"
	}
	if cfg.MediaDir == "" {
		cfg.MediaDir = "uploads"
	}

	if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
		slog.Error("Required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set.")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		slog.Error("Required environment variable JWT_SECRET is not set.")
		os.Exit(1)
	}

	return cfg
}
