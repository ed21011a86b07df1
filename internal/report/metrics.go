package report

import (
	"math"
	"sort"

	"mirror/internal/model"
)

// Metrics are the simplified performance indicators rendered into reports.
// SharpeRatio is annualized from day-over-day aggregate PnL and MaxDrawdown
// is the absolute worst single-trade loss, not a peak-to-trough calculation;
// both are documented approximations.
type Metrics struct {
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
}

const tradingDaysPerYear = 252

// CalculateMetrics derives Metrics from the day's executed trades. Empty
// input yields all zeros.
func CalculateMetrics(trades []model.ExecutedTrade) Metrics {
	if len(trades) == 0 {
		return Metrics{}
	}

	wins := 0
	gains, losses := 0.0, 0.0
	worst := math.Inf(1)
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
			gains += t.PnL
		} else if t.PnL < 0 {
			losses += -t.PnL
		}
		if t.PnL < worst {
			worst = t.PnL
		}
	}

	m := Metrics{
		WinRate:     float64(wins) / float64(len(trades)),
		MaxDrawdown: math.Abs(worst),
		SharpeRatio: sharpeRatio(trades),
	}
	if losses > 0 {
		m.ProfitFactor = gains / losses
	} else {
		m.ProfitFactor = math.Inf(1)
	}
	return m
}

// sharpeRatio annualizes the mean/stddev of day-over-day PnL ratios. Needs
// at least three distinct trading days to produce two return observations;
// otherwise 0.
func sharpeRatio(trades []model.ExecutedTrade) float64 {
	byDay := make(map[string]float64)
	for _, t := range trades {
		byDay[t.ExecutedAt.Format("2006-01-02")] += t.PnL
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	returns := make([]float64, 0, len(days))
	for i := 1; i < len(days); i++ {
		prev := byDay[days[i-1]]
		if prev == 0 {
			continue
		}
		returns = append(returns, byDay[days[i]]/prev-1)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return math.Sqrt(tradingDaysPerYear) * mean / std
}
