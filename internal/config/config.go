// Package config provides client configuration with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	API     APIConfig
	Cache   CacheConfig
	Metrics MetricsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// Locale drives name collation and generic error messages (BCP 47, default: ru).
	Locale string
	// HistoryLimit is how many mixes the history page requests (default: 20).
	HistoryLimit int
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// APIConfig holds backend API configuration.
type APIConfig struct {
	// BaseURL is prepended to every endpoint, e.g. https://mix.example.com/api.
	BaseURL string
	// RateLimit caps requests per second per resource group. Zero disables throttling.
	RateLimit float64
	RateBurst int
}

// CacheConfig holds snapshot cache configuration.
type CacheConfig struct {
	// Path is the badger directory for the last-known state. Empty keeps it in memory.
	Path string
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// args are the command-line arguments without the program name. Arguments
// that are not flags are returned for the caller to interpret.
func Load(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("mixctl", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	locale := fs.String("locale", "", "Locale for sorting and messages (default: ru)")
	historyLimit := fs.String("history-limit", "", "Mixes to load for history (default: 20)")
	apiURL := fs.String("api-url", "", "Backend API base URL")
	rateLimit := fs.String("rate-limit", "", "Requests per second per resource group (0 disables)")
	rateBurst := fs.String("rate-burst", "", "Request burst per resource group (default: 5)")
	cachePath := fs.String("cache-path", "", "Directory for the state snapshot cache")
	metricsAddr := fs.String("metrics-addr", "", "Listen address for Prometheus metrics")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists. Already-set environment variables win.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment:  getConfigValue(*env, "ENV", "development"),
			Locale:       getConfigValue(*locale, "LOCALE", "ru"),
			HistoryLimit: getIntConfigValue(*historyLimit, "HISTORY_LIMIT", 20),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:   strings.TrimRight(getConfigValue(*apiURL, "API_URL", "http://localhost:8000/api"), "/"),
			RateLimit: getFloatConfigValue(*rateLimit, "API_RATE_LIMIT", 0),
			RateBurst: getIntConfigValue(*rateBurst, "API_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			Path: getConfigValue(*cachePath, "CACHE_PATH", ""),
		},
		Metrics: MetricsConfig{
			Addr: getConfigValue(*metricsAddr, "METRICS_ADDR", ""),
		},
	}

	if err := cfg.expandCachePath(); err != nil {
		return nil, nil, fmt.Errorf("invalid cache path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if _, err := language.Parse(c.App.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.App.Locale, err)
	}

	if c.App.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.App.HistoryLimit)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API URL must be absolute http(s), got %q", c.API.BaseURL)
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got %v", c.API.RateLimit)
	}
	if c.API.RateLimit > 0 && c.API.RateBurst <= 0 {
		return errors.New("rate burst must be positive when rate limiting is enabled")
	}

	return nil
}

// Tag returns the configured locale as a language tag.
func (c *Config) Tag() language.Tag {
	tag, err := language.Parse(c.App.Locale)
	if err != nil {
		return language.Russian
	}
	return tag
}

// expandCachePath expands ~ and makes the cache path absolute. Empty stays empty.
func (c *Config) expandCachePath() error {
	path := c.Cache.Path
	if path == "" {
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	c.Cache.Path = filepath.Clean(absPath)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return defaultValue
	}
	return result
}
