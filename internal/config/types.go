package config

import "strings"

// Config is the top-level configuration of the mirror daemon.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Provider ProviderConfig `yaml:"provider"`
	Filter   FilterConfig   `yaml:"filter"`
	Risk     RiskConfig     `yaml:"risk"`
	Trading  TradingConfig  `yaml:"trading"`
	Report   ReportConfig   `yaml:"report"`
	Cycle    CycleConfig    `yaml:"cycle"`
	Store    StoreConfig    `yaml:"store"`
	HTTP     HTTPConfig     `yaml:"http"`
}

type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	LogPath  string `yaml:"log_path"`
}

// ProviderConfig describes the insider-filings data provider.
type ProviderConfig struct {
	Name           string `yaml:"name"` // "finnhub" | "tradefeeds"
	APIKey         string `yaml:"api_key"`
	Endpoint       string `yaml:"endpoint"`
	Symbol         string `yaml:"symbol"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// FilterConfig carries the significance thresholds.
type FilterConfig struct {
	MinValue  float64 `yaml:"min_value"`
	MinShares float64 `yaml:"min_shares"`
}

// RiskConfig gates the trade executor. Fractions are of portfolio value.
type RiskConfig struct {
	MaxPositionSize  float64 `yaml:"max_position_size"`
	MaxDailyTrades   int     `yaml:"max_daily_trades"`
	MaxConcentration float64 `yaml:"max_concentration"`
}

type TradingConfig struct {
	InitialPortfolioValue float64 `yaml:"initial_portfolio_value"`
	ResetHour             int     `yaml:"reset_hour"` // wall-clock hour for daily counter reset
}

type ReportConfig struct {
	Dir      string   `yaml:"dir"`
	Formats  []string `yaml:"formats"` // "html", "csv"
	Charts   bool     `yaml:"charts"`
	Snapshot bool     `yaml:"snapshot"` // render the HTML report to PNG (needs headless chrome)
}

type CycleConfig struct {
	IntervalSeconds int  `yaml:"interval_seconds"`
	RunImmediately  bool `yaml:"run_immediately"`
}

type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// keySet tracks the key paths that were explicitly set in the config files,
// so intentional zero values are not overwritten by defaults.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes the default rule for a single field.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
