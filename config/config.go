package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server struct {
		Port        string   `env:"SERVER_PORT" envDefault:"5250"`
		GinMode     string   `env:"GIN_MODE" envDefault:"release"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/estatewise.db"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of addresses accepted in one batch request
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent analysis workers per batch
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"4"`

		// Maximum number of retries when persisting batch results
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`

		// Number of batch jobs that may wait in the queue
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"32"`
	}

	Provider struct {
		// file reads fixtures from FixturesPath, http calls the data gateway
		Mode         string        `env:"PROVIDER_MODE" envDefault:"file"`
		FixturesPath string        `env:"PROVIDER_FIXTURES_PATH" envDefault:"data/fixtures.json"`
		BaseURL      string        `env:"PROVIDER_BASE_URL" envDefault:"http://localhost:8081"`
		APIKey       string        `env:"PROVIDER_API_KEY"`
		RateLimit    int           `env:"PROVIDER_RATE_LIMIT" envDefault:"5"`
		Timeout      time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`
		CacheDir     string        `env:"PROVIDER_CACHE_DIR"`
		CacheTTL     time.Duration `env:"PROVIDER_CACHE_TTL" envDefault:"24h"`
		Geocode      bool          `env:"PROVIDER_GEOCODE" envDefault:"false"`
	}

	Analysis struct {
		PolicyPath string `env:"ANALYSIS_POLICY_PATH"`

		// Fabricates a price-cut history when the original list price is unknown.
		// Demo use only.
		SimulateMissingPriceHistory bool  `env:"ANALYSIS_SIMULATE_PRICE_HISTORY" envDefault:"false"`
		SimulationSeed              int64 `env:"ANALYSIS_SIMULATION_SEED" envDefault:"1"`
	}

	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}

	Retention struct {
		Schedule   string `env:"RETENTION_SCHEDULE" envDefault:"@daily"`
		MaxAgeDays int    `env:"RETENTION_MAX_AGE_DAYS" envDefault:"90"`
	}
}

// LoadConfig reads an optional .env file and then parses the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BatchProcessing.ProcessorCount < 1 {
		return fmt.Errorf("BATCH_PROCESSOR_COUNT must be at least 1, got %d", c.BatchProcessing.ProcessorCount)
	}
	if c.BatchProcessing.MaxBatchSize < 1 {
		return fmt.Errorf("BATCH_MAX_SIZE must be at least 1, got %d", c.BatchProcessing.MaxBatchSize)
	}
	switch c.Provider.Mode {
	case "file", "http":
	default:
		return fmt.Errorf("PROVIDER_MODE must be file or http, got %q", c.Provider.Mode)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when TELEGRAM_ENABLED is set")
	}
	return nil
}
