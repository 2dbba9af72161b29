package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the process needs at startup. Secrets and the DB
// DSN are mandatory; LoadConfig fails so the process never starts half
// configured.
type Config struct {
	Port          string
	DBDSN         string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	SweepSchedule string
	LogLevel      string
}

// LoadConfig reads an optional local .env file, then the environment.
// Environment variables win over the file.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// a missing .env is fine, the environment alone is enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}
	v.AutomaticEnv()

	v.SetDefault("PORT", "3100")
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 365*24*time.Hour)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("SWEEP_SCHEDULE", "@hourly")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Port:          v.GetString("PORT"),
		DBDSN:         v.GetString("DB_DSN"),
		AccessSecret:  v.GetString("JWT_SECRET"),
		RefreshSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		AccessTTL:     v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTTL:    v.GetDuration("REFRESH_TOKEN_TTL"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		SweepSchedule: v.GetString("SWEEP_SCHEDULE"),
		LogLevel:      v.GetString("LOG_LEVEL"),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("REFRESH_TOKEN_SECRET is not set")
	}
	return cfg, nil
}
