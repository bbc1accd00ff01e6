package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"LeverageGauge/internal/cache"
	"LeverageGauge/internal/collector"
	"LeverageGauge/internal/scheduler"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Provider struct {
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		Timeout   time.Duration `yaml:"timeout"`
		CallDelay time.Duration `yaml:"call_delay"`
		Symbols   struct {
			Index      string `yaml:"index"`
			Volatility string `yaml:"volatility"`
			Breadth    string `yaml:"breadth"`
			Valuation  string `yaml:"valuation"`
		} `yaml:"symbols"`
	} `yaml:"provider"`
	Cache struct {
		Backend    string        `yaml:"backend"`
		Key        string        `yaml:"key"`
		Freshness  time.Duration `yaml:"freshness"`
		Dir        string        `yaml:"dir"`
		SQLitePath string        `yaml:"sqlite_path"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Enabled  bool   `yaml:"enabled"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Demo  bool   `yaml:"demo"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file, then the YAML file, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("MARKET_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
		c.Telegram.Enabled = true
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DEMO_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Demo = b
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) applyDefaults() {
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://www.alphavantage.co"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Provider.CallDelay == 0 {
		c.Provider.CallDelay = collector.DefaultCallDelay
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Key == "" {
		c.Cache.Key = cache.DefaultKey
	}
	if c.Cache.Freshness == 0 {
		c.Cache.Freshness = cache.DefaultFreshness
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "data/cache.db"
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = scheduler.DefaultRefreshCron
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/leverage_gauge.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks field consistency. A missing API key is valid; the
// dashboard then shows no data or demo data.
func (c *Config) Validate() error {
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must not be negative")
	}
	if c.Provider.CallDelay < 0 {
		return fmt.Errorf("provider.call_delay must not be negative")
	}
	if c.Cache.Freshness < 0 {
		return fmt.Errorf("cache.freshness must not be negative")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case cache.BackendFile, cache.BackendSQLite, cache.BackendRedis, cache.BackendMemory:
	default:
		return fmt.Errorf("cache.backend %q is not one of file, sqlite, redis, memory", c.Cache.Backend)
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	return nil
}

// HasCredential reports whether a provider API key is configured.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.Provider.APIKey) != ""
}

// CacheOptions maps the cache section onto cache.Open options.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:    c.Cache.Backend,
		Dir:        c.Cache.Dir,
		SQLitePath: c.Cache.SQLitePath,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
	}
}

// CollectorOptions maps the provider section onto collector options.
func (c *Config) CollectorOptions() collector.Options {
	return collector.Options{
		Symbols: collector.Symbols{
			Index:      c.Provider.Symbols.Index,
			Volatility: c.Provider.Symbols.Volatility,
			Breadth:    c.Provider.Symbols.Breadth,
			Valuation:  c.Provider.Symbols.Valuation,
		},
		CallDelay: c.Provider.CallDelay,
		Demo:      c.Demo,
	}
}
