package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is parsed from DINE_-prefixed environment variables.
type Config struct {
	Port           int      `envconfig:"PORT" default:"8000"`
	MongoURI       string   `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB        string   `envconfig:"MONGO_DB" default:"dine_db"`
	RedisAddr      string   `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret      string   `envconfig:"JWT_SECRET"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("DINE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("DINE_JWT_SECRET is not set")
	}
	return &cfg, nil
}
