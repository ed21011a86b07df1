package analysis

import (
	"fmt"
	"math"
	"sort"

	talib "github.com/markcheno/go-talib"

	"mirror/internal/model"
)

const dateLayout = "2006-01-02"

// TimePatterns buckets aggregate trade value by calendar date and hour of
// day.
type TimePatterns struct {
	DailyVolume        map[string]float64 `json:"daily_volume"`
	HourlyDistribution map[int]float64    `json:"hourly_distribution"`
}

// SymbolPatterns aggregates per-symbol frequency and value.
type SymbolPatterns struct {
	Frequency     map[string]int     `json:"symbol_frequency"`
	ValueBySymbol map[string]float64 `json:"value_by_symbol"`
}

// RiskMetrics carries the lower-tail VaR indicators and per-symbol
// concentration. VaR here is a percentile of the trade-value distribution,
// not a rigorous statistical model.
type RiskMetrics struct {
	VaR95         float64            `json:"var_95"`
	VaR99         float64            `json:"var_99"`
	Concentration map[string]float64 `json:"symbol_concentration"`
}

// DailyPoint is one day's aggregate value and share volume.
type DailyPoint struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Shares float64 `json:"shares"`
}

// Trends tracks day-over-day aggregates and their moving averages.
type Trends struct {
	Daily          []DailyPoint         `json:"daily_trends"`
	MovingAverages map[string][]float64 `json:"moving_averages"`
}

// Report is the analyzer's full informational output. It never gates
// execution; the executor applies its own risk configuration.
type Report struct {
	Time    TimePatterns   `json:"time_patterns"`
	Symbols SymbolPatterns `json:"symbol_patterns"`
	Risk    RiskMetrics    `json:"risk_metrics"`
	Trends  Trends         `json:"trends"`
}

// Empty reports whether the analyzer saw no trades.
func (r Report) Empty() bool {
	return len(r.Time.DailyVolume) == 0 && len(r.Symbols.Frequency) == 0
}

var trendWindows = []int{3, 7, 14}

// Analyze computes descriptive statistics over filtered trades. Empty input
// yields an empty report, never an error.
func Analyze(trades []model.TradeRecord) Report {
	if len(trades) == 0 {
		return Report{}
	}

	timePatterns := TimePatterns{
		DailyVolume:        make(map[string]float64),
		HourlyDistribution: make(map[int]float64),
	}
	symbols := SymbolPatterns{
		Frequency:     make(map[string]int),
		ValueBySymbol: make(map[string]float64),
	}
	values := make([]float64, 0, len(trades))
	total := 0.0
	dailyShares := make(map[string]float64)

	for _, t := range trades {
		day := t.FilingDate.Format(dateLayout)
		timePatterns.DailyVolume[day] += t.Value
		timePatterns.HourlyDistribution[t.FilingDate.Hour()] += t.Value
		symbols.Frequency[t.Symbol]++
		symbols.ValueBySymbol[t.Symbol] += t.Value
		dailyShares[day] += t.Shares
		values = append(values, t.Value)
		total += t.Value
	}

	risk := RiskMetrics{
		VaR95:         Percentile(values, 5),
		VaR99:         Percentile(values, 1),
		Concentration: make(map[string]float64, len(symbols.ValueBySymbol)),
	}
	if total > 0 {
		for sym, v := range symbols.ValueBySymbol {
			risk.Concentration[sym] = v / total
		}
	}

	return Report{
		Time:    timePatterns,
		Symbols: symbols,
		Risk:    risk,
		Trends:  buildTrends(timePatterns.DailyVolume, dailyShares),
	}
}

func buildTrends(dailyValue, dailyShares map[string]float64) Trends {
	days := make([]string, 0, len(dailyValue))
	for day := range dailyValue {
		days = append(days, day)
	}
	sort.Strings(days)

	daily := make([]DailyPoint, 0, len(days))
	series := make([]float64, 0, len(days))
	for _, day := range days {
		daily = append(daily, DailyPoint{Date: day, Value: dailyValue[day], Shares: dailyShares[day]})
		series = append(series, dailyValue[day])
	}

	mas := make(map[string][]float64)
	for _, window := range trendWindows {
		if len(series) < window {
			continue
		}
		mas[fmt.Sprintf("%dd_ma", window)] = talib.Sma(series, window)
	}
	return Trends{Daily: daily, MovingAverages: mas}
}

// Percentile computes the p-th percentile (0..100) with linear interpolation
// between closest ranks. Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
