package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// PathEnv names the environment variable holding the optional YAML config path
const PathEnv = "SWAP_CONFIG_PATH"

type Config struct {
	HTTP     HTTP    `yaml:"http"`
	Feed     Feed    `yaml:"feed"`
	History  History `yaml:"history"`
	Swap     Swap    `yaml:"swap"`
	Kafka    Kafka   `yaml:"kafka"`
	LogLevel string  `yaml:"log_level" env:"SWAP_LOG_LEVEL" env-default:"info"`
}

type HTTP struct {
	Addr string `yaml:"addr" env:"SWAP_HTTP_ADDR" env-default:":8080"`
}

type Feed struct {
	URL          string        `yaml:"url" env:"SWAP_FEED_URL" env-default:"https://interview.switcheo.com/prices.json"`
	Timeout      time.Duration `yaml:"timeout" env:"SWAP_FEED_TIMEOUT" env-default:"5s"`
	RefreshEvery time.Duration `yaml:"refresh_every" env:"SWAP_FEED_REFRESH_EVERY" env-default:"60s"`
	StaleAfter   time.Duration `yaml:"stale_after" env:"SWAP_FEED_STALE_AFTER" env-default:"30s"`
	MinInterval  time.Duration `yaml:"min_interval" env:"SWAP_FEED_MIN_INTERVAL" env-default:"1s"`
}

type History struct {
	// Path LevelDB directory; empty keeps history in memory
	Path string `yaml:"path" env:"SWAP_HISTORY_PATH" env-default:"data/history"`
}

type Swap struct {
	Delay              time.Duration `yaml:"delay" env:"SWAP_DELAY" env-default:"1s"`
	SuccessProbability float64       `yaml:"success_probability" env:"SWAP_SUCCESS_PROBABILITY" env-default:"0.7"`
	// Seed for the simulated settlement; zero seeds from the clock
	Seed int64 `yaml:"seed" env:"SWAP_SEED" env-default:"0"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"SWAP_KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"SWAP_KAFKA_TOPIC" env-default:"swap-events"`
}

// Load reads a .env file when one exists, then the YAML file at path when path
// is not empty, then the environment. Environment values win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config [%v]: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Swap.SuccessProbability < 0 || c.Swap.SuccessProbability > 1 {
		return fmt.Errorf("success probability %v not in [0, 1]", c.Swap.SuccessProbability)
	}
	if c.Feed.RefreshEvery <= 0 {
		return fmt.Errorf("feed refresh interval must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
