package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecretKey   string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ServerPort     int           `env:"SERVER_PORT" envDefault:"8080"`

	DefaultMission          string        `env:"DEFAULT_MISSION" envDefault:"TBA"`
	CompletionSweepInterval time.Duration `env:"COMPLETION_SWEEP_INTERVAL" envDefault:"1m"`
	CORSAllowedOrigins      []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// R2 is optional; either every field is set or none.
	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load() // .env не обязателен

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	switch strings.ToLower(c.DatabaseDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.CompletionSweepInterval <= 0 {
		return errors.New("COMPLETION_SWEEP_INTERVAL must be positive")
	}
	if strings.TrimSpace(c.DefaultMission) == "" {
		return errors.New("DEFAULT_MISSION must not be blank")
	}

	r2 := []string{c.R2AccountID, c.R2AccessKeyID, c.R2SecretAccessKey, c.R2BucketName, c.R2PublicBaseURL}
	set := 0
	for _, v := range r2 {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(r2) {
		return errors.New("R2 storage is partially configured: set all R2_* variables or none")
	}
	return nil
}

func (c *Config) R2Enabled() bool {
	return c.R2AccountID != ""
}
