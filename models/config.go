package models

// Config holds process configuration. Values are loaded from the
// environment by config.Load; the env tags document the variable names.
type Config struct {
	Instrument     string `env:"INSTRUMENT" envDefault:"NIFTY"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds

	SentimentURL string `env:"SENTIMENT_URL" envDefault:""`

	DBHost     string `env:"DB_HOST" envDefault:""`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:"trading"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" envDefault:""`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`

	EnableBacktest bool  `env:"ENABLE_BACKTEST" envDefault:"true"`
	BacktestSeed   int64 `env:"BACKTEST_SEED" envDefault:"0"` // 0 = time-based

	// MaxMatchGapMinutes bounds snapshot-to-outcome matching during
	// training-target construction. 0 keeps the unbounded behavior.
	MaxMatchGapMinutes int `env:"MAX_MATCH_GAP_MINUTES" envDefault:"0"`
}
