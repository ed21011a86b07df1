package config

import "strings"

const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultProviderName      = "finnhub"
	defaultProviderTimeout   = 15
	defaultFilterMinValue    = 100000
	defaultFilterMinShares   = 1000
	defaultRiskPositionSize  = 0.05
	defaultRiskDailyTrades   = 10
	defaultRiskConcentration = 0.20
	defaultInitialPortfolio  = 100000
	defaultResetHour         = 16
	defaultReportDir         = "reports"
	defaultCycleInterval     = 3600
	defaultStorePath         = "data/mirror.db"
	defaultHTTPAddr          = ":9991"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Provider.applyDefaults(keys)
	c.Filter.applyDefaults(keys)
	c.Risk.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
	c.Report.applyDefaults(keys)
	c.Cycle.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.HTTP.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
	)
}

func (p *ProviderConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("provider.name", &p.Name, defaultProviderName),
		fieldDefault{
			key:   "provider.timeout_seconds",
			need:  func() bool { return p.TimeoutSeconds <= 0 },
			apply: func() { p.TimeoutSeconds = defaultProviderTimeout },
		},
	)
	p.Name = strings.ToLower(strings.TrimSpace(p.Name))
}

func (f *FilterConfig) applyDefaults(keys keySet) {
	if f == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "filter.min_value",
			need:  func() bool { return f.MinValue <= 0 },
			apply: func() { f.MinValue = defaultFilterMinValue },
		},
		fieldDefault{
			key:   "filter.min_shares",
			need:  func() bool { return f.MinShares <= 0 },
			apply: func() { f.MinShares = defaultFilterMinShares },
		},
	)
}

func (r *RiskConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "risk.max_position_size",
			need:  func() bool { return r.MaxPositionSize <= 0 || r.MaxPositionSize > 1 },
			apply: func() { r.MaxPositionSize = defaultRiskPositionSize },
		},
		fieldDefault{
			key:   "risk.max_daily_trades",
			need:  func() bool { return r.MaxDailyTrades <= 0 },
			apply: func() { r.MaxDailyTrades = defaultRiskDailyTrades },
		},
		fieldDefault{
			key:   "risk.max_concentration",
			need:  func() bool { return r.MaxConcentration <= 0 || r.MaxConcentration > 1 },
			apply: func() { r.MaxConcentration = defaultRiskConcentration },
		},
	)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "trading.initial_portfolio_value",
			need:  func() bool { return t.InitialPortfolioValue <= 0 },
			apply: func() { t.InitialPortfolioValue = defaultInitialPortfolio },
		},
		fieldDefault{
			key:   "trading.reset_hour",
			need:  func() bool { return t.ResetHour <= 0 || t.ResetHour > 23 },
			apply: func() { t.ResetHour = defaultResetHour },
		},
	)
}

func (r *ReportConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("report.dir", &r.Dir, defaultReportDir),
		fieldDefault{
			key:   "report.formats",
			need:  func() bool { return len(r.Formats) == 0 },
			apply: func() { r.Formats = []string{"html", "csv"} },
		},
		boolFieldDefault("report.charts", &r.Charts, true),
	)
}

func (c *CycleConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "cycle.interval_seconds",
			need:  func() bool { return c.IntervalSeconds <= 0 },
			apply: func() { c.IntervalSeconds = defaultCycleInterval },
		},
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("store.enabled", &s.Enabled, true),
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("http.enabled", &h.Enabled, true),
		stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
