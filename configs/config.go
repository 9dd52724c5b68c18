package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is built once at startup and handed to each constructor. Core
// logic never reads the environment directly.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`

	DefaultClassSpots      int `envconfig:"DEFAULT_CLASS_SPOTS" default:"5"`
	AvailabilityMaxAgeDays int `envconfig:"AVAILABILITY_MAX_AGE_DAYS" default:"30"`

	BrevoAPIKey     string `envconfig:"BREVO_API_KEY"`
	EmailSender     string `envconfig:"EMAIL_SENDER"`
	EmailSenderName string `envconfig:"EMAIL_SENDER_NAME"`
	OperatorEmail   string `envconfig:"OPERATOR_EMAIL"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.DefaultClassSpots < 1 {
		return nil, fmt.Errorf("DEFAULT_CLASS_SPOTS must be at least 1, got %d", cfg.DefaultClassSpots)
	}

	return &cfg, nil
}
