package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/pick-portfolio/internal/platform/logging"
)

// Config stores runtime configuration for the game engine.
type Config struct {
	AppEnv            string
	ServiceName       string
	ServiceVersion    string
	LogLevel          logging.Level
	CacheEnabled      bool
	CacheTTL          time.Duration
	SettlementWorkers int
	// FixturePath optionally points at a JSON round fixture for the
	// simulator; empty means the built-in seed.
	FixturePath string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	settlementWorkers, err := getEnvAsInt("SETTLEMENT_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLEMENT_WORKERS: %w", err)
	}
	if settlementWorkers < 1 {
		return Config{}, fmt.Errorf("SETTLEMENT_WORKERS must be >= 1")
	}

	return Config{
		AppEnv:            appEnv,
		ServiceName:       getEnv("APP_SERVICE_NAME", "pick-portfolio"),
		ServiceVersion:    getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:          parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CacheEnabled:      cacheEnabled,
		CacheTTL:          cacheTTL,
		SettlementWorkers: settlementWorkers,
		FixturePath:       strings.TrimSpace(getEnv("FIXTURE_PATH", "")),
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
