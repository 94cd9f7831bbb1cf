package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Flarenzy/node-inventory/internal/search"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DSN          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	AuthEnabled  bool
	Issuer       string
	Audience     string
	JWKSURL      string
	RequiredRole string

	Threshold      uint32
	MigrateOnStart bool
}

// LoadConfig reads the process environment, seeded from .env when present.
// Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		DSN:          getenv("DB_CONN"),
		Port:         getenv("PORT"),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		Issuer:       getenv("AUTH_ISSUER"),
		Audience:     getenv("AUTH_AUDIENCE"),
		JWKSURL:      getenv("AUTH_JWKS_URL"),
		RequiredRole: getenv("AUTH_REQUIRED_ROLE"),
		Threshold:    search.DefaultThreshold,
	}

	if cfg.DSN == "" {
		return Config{}, errors.New("missing required environment variable: DB_CONN")
	}
	if cfg.Port == "" {
		cfg.Port = "4040"
	}

	var err error
	if cfg.AuthEnabled, err = boolEnv(getenv, "AUTH_ENABLED"); err != nil {
		return Config{}, err
	}
	if cfg.MigrateOnStart, err = boolEnv(getenv, "MIGRATE_ON_START"); err != nil {
		return Config{}, err
	}
	if raw := getenv("VID_SEARCH_THRESHOLD"); raw != "" {
		if cfg.Threshold, err = search.ParseThreshold(raw); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func boolEnv(getenv func(string) string, key string) (bool, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func (c Config) searchConfig() search.Config {
	cfg := search.DefaultConfig()
	cfg.Threshold = c.Threshold
	return cfg
}
