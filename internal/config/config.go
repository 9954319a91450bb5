package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CAPMSentinel/internal/model"
)

// WatchItem is one stock/index pair analysed on schedule.
type WatchItem struct {
	Stock         string   `yaml:"stock"`
	Index         string   `yaml:"index"`
	LookbackYears int      `yaml:"lookback_years"`
	RiskFreeRate  *float64 `yaml:"risk_free_rate"` // nil inherits analysis.risk_free_rate
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo | alphavantage
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Analysis struct {
		RiskFreeRate  float64 `yaml:"risk_free_rate"`
		LookbackYears int     `yaml:"lookback_years"`
		DefaultIndex  string  `yaml:"default_index"`
		MinPeriods    int     `yaml:"min_periods_warning"`
		Concurrency   int     `yaml:"concurrency"`
	} `yaml:"analysis"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Watchlist []WatchItem `yaml:"watchlist"`
	Proxy     string      `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file over the defaults, then applies
// environment variable overrides. A missing file yields the default config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse RISK_FREE_RATE: %w", err)
		}
		cfg.Analysis.RiskFreeRate = rate
	}
	if v := os.Getenv("CRON_ANALYSIS"); v != "" {
		cfg.Schedule.AnalysisCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Watchlist entries inherit the analysis defaults.
	for i := range cfg.Watchlist {
		w := &cfg.Watchlist[i]
		if w.Index == "" {
			w.Index = cfg.Analysis.DefaultIndex
		}
		if w.LookbackYears == 0 {
			w.LookbackYears = cfg.Analysis.LookbackYears
		}
		if w.RiskFreeRate == nil {
			rate := cfg.Analysis.RiskFreeRate
			w.RiskFreeRate = &rate
		}
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.DataSource.Provider = "yahoo"
	cfg.Analysis.RiskFreeRate = 0.05
	cfg.Analysis.LookbackYears = 5
	cfg.Analysis.DefaultIndex = model.IndexNifty50.Code
	cfg.Analysis.MinPeriods = 12
	cfg.Analysis.Concurrency = 2
	cfg.Schedule.AnalysisCron = "0 0 9 1 * *"
	cfg.Database.SQLitePath = "data/capm_sentinel.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Validate checks settings shared by every entry point.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for alphavantage")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Analysis.RiskFreeRate < 0 || c.Analysis.RiskFreeRate > 1 {
		return fmt.Errorf("analysis.risk_free_rate must be within [0, 1]")
	}
	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("analysis.concurrency must be positive")
	}
	if c.Analysis.LookbackYears <= 0 {
		return fmt.Errorf("analysis.lookback_years must be positive")
	}
	if _, err := model.LookupIndex(c.Analysis.DefaultIndex); err != nil {
		return fmt.Errorf("analysis.default_index: %w", err)
	}
	for i, w := range c.Watchlist {
		if w.Stock == "" {
			return fmt.Errorf("watchlist[%d].stock is required", i)
		}
		if _, err := model.LookupIndex(w.Index); err != nil {
			return fmt.Errorf("watchlist[%d].index: %w", i, err)
		}
		if w.LookbackYears < 0 {
			return fmt.Errorf("watchlist[%d].lookback_years must be positive", i)
		}
		if w.RiskFreeRate != nil && (*w.RiskFreeRate < 0 || *w.RiskFreeRate > 1) {
			return fmt.Errorf("watchlist[%d].risk_free_rate must be within [0, 1]", i)
		}
	}
	return nil
}

// ValidateBot checks the extra settings the Telegram daemon needs.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
