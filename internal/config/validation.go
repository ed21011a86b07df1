package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Provider.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Report.validate(); err != nil {
		return err
	}
	if err := c.Cycle.validate(); err != nil {
		return err
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required when store.enabled")
	}
	if c.HTTP.Enabled && strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required when http.enabled")
	}
	return nil
}

func (p *ProviderConfig) validate() error {
	switch p.Name {
	case "finnhub", "tradefeeds":
	default:
		return fmt.Errorf("provider.name must be finnhub or tradefeeds, got %q", p.Name)
	}
	if strings.TrimSpace(p.Endpoint) == "" {
		return fmt.Errorf("provider.endpoint is required")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return fmt.Errorf("provider.api_key is required")
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.MaxPositionSize <= 0 || r.MaxPositionSize > 1 {
		return fmt.Errorf("risk.max_position_size must be in (0,1]")
	}
	if r.MaxConcentration <= 0 || r.MaxConcentration > 1 {
		return fmt.Errorf("risk.max_concentration must be in (0,1]")
	}
	if r.MaxDailyTrades <= 0 {
		return fmt.Errorf("risk.max_daily_trades must be > 0")
	}
	return nil
}

func (r *ReportConfig) validate() error {
	hasHTML := false
	for _, f := range r.Formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "html":
			hasHTML = true
		case "csv":
		default:
			return fmt.Errorf("report.formats contains unsupported format %q", f)
		}
	}
	if r.Snapshot && !hasHTML {
		return fmt.Errorf("report.snapshot requires the html format")
	}
	return nil
}

func (c *CycleConfig) validate() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("cycle.interval_seconds must be > 0")
	}
	return nil
}
