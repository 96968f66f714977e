package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		Source            string `yaml:"source"` // yahoo, rest, alpaca or mock
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		RequestsPerSecond int    `yaml:"requests_per_second"`
	} `yaml:"data_source"`
	Alpaca struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"alpaca"`
	Dashboard struct {
		DefaultTicker string `yaml:"default_ticker"`
		ChartWidth    int    `yaml:"chart_width"`
		ChartHeight   int    `yaml:"chart_height"`
	} `yaml:"dashboard"`
	Schedule struct {
		WarmCron    string   `yaml:"warm_cron"`
		WarmTickers []string `yaml:"warm_tickers"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
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

	// Environment variable overrides
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Source = v
	}
	if v := os.Getenv("REST_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("DEFAULT_TICKER"); v != "" {
		cfg.Dashboard.DefaultTicker = v
	}
	if v := os.Getenv("CRON_WARM"); v != "" {
		cfg.Schedule.WarmCron = v
	}
	if v := os.Getenv("WARM_TICKERS"); v != "" {
		cfg.Schedule.WarmTickers = splitList(v)
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REQUESTS_PER_SECOND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DataSource.RequestsPerSecond = n
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.DataSource.Source == "" {
		cfg.DataSource.Source = "yahoo"
	}
	cfg.DataSource.Source = strings.ToLower(cfg.DataSource.Source)
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = 2
	}
	if cfg.Dashboard.DefaultTicker == "" {
		cfg.Dashboard.DefaultTicker = "RELIANCE.NS"
	}
	if cfg.Dashboard.ChartWidth == 0 {
		cfg.Dashboard.ChartWidth = 1300
	}
	if cfg.Dashboard.ChartHeight == 0 {
		cfg.Dashboard.ChartHeight = 500
	}
	if cfg.Schedule.WarmCron == "" {
		cfg.Schedule.WarmCron = "0 30 16 * * 1-5"
	}
	if len(cfg.Schedule.WarmTickers) == 0 {
		cfg.Schedule.WarmTickers = []string{cfg.Dashboard.DefaultTicker}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Source {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest source")
		}
	case "alpaca":
		if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
			return fmt.Errorf("alpaca.api_key and alpaca.api_secret are required for the alpaca source")
		}
	default:
		return fmt.Errorf("data_source.source %q is not supported", c.DataSource.Source)
	}
	if c.DataSource.RequestsPerSecond <= 0 {
		return fmt.Errorf("data_source.requests_per_second must be positive")
	}
	if c.Dashboard.ChartWidth <= 0 || c.Dashboard.ChartHeight <= 0 {
		return fmt.Errorf("dashboard.chart_width and dashboard.chart_height must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
