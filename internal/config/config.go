// Package config loads the environment configuration for the textbelt CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything the CLI reads from the environment.
type Config struct {
	Env      string
	LogLevel string
	// APIKey is the Textbelt API key used for every operation.
	APIKey string
	// BaseURL overrides the API endpoint. Empty means production.
	BaseURL string
	// Timeout bounds each outbound request.
	Timeout time.Duration
}

// Load reads environment variables (after an optional .env file), applies
// defaults, validates required values and returns a populated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ldr := &envLoader{}

	cfg := &Config{
		Env:      ldr.getString("APP_ENV", "development", false),
		LogLevel: ldr.getString("LOG_LEVEL", "info", false),
		APIKey:   ldr.getString("TEXTBELT_API_KEY", "", true),
		BaseURL:  ldr.getString("TEXTBELT_BASE_URL", "", false),
	}
	cfg.Timeout = time.Duration(ldr.getInt("TEXTBELT_TIMEOUT_SECONDS", 30, false)) * time.Second

	if err := ldr.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type envLoader struct {
	errs []string
}

func (l *envLoader) validate() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(l.errs, "; "))
}

func (l *envLoader) getString(key, def string, required bool) string {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val != "" {
			return val
		}
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) getInt(key string, def int, required bool) int {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.TrimSpace(val)
		if val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				l.addError(fmt.Sprintf("%s must be a valid integer", key))
				return def
			}
			return i
		}
	}
	if required {
		l.addError(fmt.Sprintf("%s is required", key))
	}
	return def
}

func (l *envLoader) addError(msg string) {
	l.errs = append(l.errs, msg)
}
