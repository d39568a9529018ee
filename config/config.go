package config

import (
	"os"
	"strconv"

	"github.com/kushalmehta2868/nifty-trading-bot/models"
)

// Load reads process configuration from the environment. Missing
// variables fall back to the defaults documented on models.Config;
// malformed numeric values keep the default rather than failing.
func Load() *models.Config {
	cfg := &models.Config{
		Instrument:     getEnv("INSTRUMENT", "NIFTY"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT", 30),

		SentimentURL: getEnv("SENTIMENT_URL", ""),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "trading"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnvInt64("TELEGRAM_CHAT_ID", 0),

		EnableBacktest: getEnvBool("ENABLE_BACKTEST", true),
		BacktestSeed:   getEnvInt64("BACKTEST_SEED", 0),

		MaxMatchGapMinutes: getEnvInt("MAX_MATCH_GAP_MINUTES", 0),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
