package config

import (
	"fmt"
	"os"
	"time"

	"sc2-coach/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ParserURL    string
	ParserAPIKey string
	DBPath       string
	ServerPort   string
	LogLevel     string
	CacheTTL     time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ParserURL:    getEnv("SC2READER_URL", "http://localhost:8000"),
		ParserAPIKey: getEnv("SC2READER_API_KEY", ""),
		DBPath:       getEnv("DB_PATH", "sc2coach.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CacheTTL:     constants.TimeSeriesCacheTTL,
	}

	if cfg.ParserAPIKey == "" {
		return nil, fmt.Errorf("SC2READER_API_KEY is required")
	}

	if ttl := getEnv("CACHE_TTL", ""); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL %q: %w", ttl, err)
		}
		cfg.CacheTTL = parsed
	}

	logger.Info().
		Str("parser_url", cfg.ParserURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
