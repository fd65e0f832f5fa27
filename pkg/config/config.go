package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Bot struct {
		Symbol         string        `yaml:"symbol"`
		Timeframe      string        `yaml:"timeframe"`
		Interval       time.Duration `yaml:"interval"`
		WindowDays     int           `yaml:"window_days"`
		BandMultiplier float64       `yaml:"band_multiplier"`
		StopLossPct    float64       `yaml:"stop_loss_pct"`
		MinSigma       float64       `yaml:"min_sigma"`
		OrderQty       float64       `yaml:"order_qty"`
		TradeLogSize   int           `yaml:"trade_log_size"`
		Sessions       []string      `yaml:"sessions"` // phases in which new cycles evaluate
	} `yaml:"bot"`
	Alpaca struct {
		BaseURL         string        `yaml:"base_url"`
		DataURL         string        `yaml:"data_url"`
		StreamURL       string        `yaml:"stream_url"`
		KeyID           string        `yaml:"key_id"`
		SecretKey       string        `yaml:"secret_key"`
		Feed            string        `yaml:"feed"`
		Timeout         time.Duration `yaml:"timeout"`
		RateLimitPerMin float64       `yaml:"rate_limit_per_min"`
		StreamEnabled   bool          `yaml:"stream_enabled"`
		ReconnectDelay  time.Duration `yaml:"reconnect_delay"`
		PingInterval    time.Duration `yaml:"ping_interval"`
	} `yaml:"alpaca"`
	Cache struct {
		Backend string `yaml:"backend"` // memory or redis
		MaxSize int    `yaml:"max_size"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Events struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		Compression  string        `yaml:"compression"`
		RequiredAcks int           `yaml:"required_acks"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"events"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ALPACA_KEY_ID"); v != "" {
		c.Alpaca.KeyID = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		c.Alpaca.SecretKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Bot.Symbol = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Events.Topic = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.Timeframe == "" {
		c.Bot.Timeframe = "5Min"
	}
	if c.Bot.Interval <= 0 {
		c.Bot.Interval = time.Minute
	}
	if c.Bot.WindowDays <= 0 {
		c.Bot.WindowDays = 4
	}
	if c.Bot.BandMultiplier <= 0 {
		c.Bot.BandMultiplier = 2.5
	}
	if c.Bot.StopLossPct <= 0 {
		c.Bot.StopLossPct = 0.05
	}
	if c.Bot.MinSigma <= 0 {
		c.Bot.MinSigma = 0.001
	}
	if c.Bot.OrderQty <= 0 {
		c.Bot.OrderQty = 1
	}
	if c.Bot.TradeLogSize <= 0 {
		c.Bot.TradeLogSize = 100
	}
	if len(c.Bot.Sessions) == 0 {
		c.Bot.Sessions = []string{"regular"}
	}
	if c.Alpaca.Timeout <= 0 {
		c.Alpaca.Timeout = 15 * time.Second
	}
	if c.Alpaca.RateLimitPerMin <= 0 {
		c.Alpaca.RateLimitPerMin = 200
	}
	if c.Alpaca.Feed == "" {
		c.Alpaca.Feed = "iex"
	}
	if c.Alpaca.ReconnectDelay <= 0 {
		c.Alpaca.ReconnectDelay = 5 * time.Second
	}
	if c.Alpaca.PingInterval <= 0 {
		c.Alpaca.PingInterval = 30 * time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.MaxSize <= 0 {
		c.Cache.MaxSize = 1000
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Bot.Symbol == "" {
		return fmt.Errorf("bot.symbol is required")
	}
	if c.Bot.StopLossPct >= 1 {
		return fmt.Errorf("bot.stop_loss_pct must be a fraction below 1, got %v", c.Bot.StopLossPct)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Alpaca.BaseURL == "" {
		return fmt.Errorf("alpaca.base_url is required")
	}
	if c.Alpaca.DataURL == "" {
		return fmt.Errorf("alpaca.data_url is required")
	}
	if c.Alpaca.KeyID == "" || c.Alpaca.SecretKey == "" {
		return fmt.Errorf("alpaca credentials are required")
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers cannot be empty when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("events.topic is required when events are enabled")
		}
	}
	return nil
}
