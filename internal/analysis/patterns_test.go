package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror/internal/model"
)

func tradeAt(symbol string, shares, price float64, filed time.Time) model.TradeRecord {
	return model.TradeRecord{
		Symbol:          symbol,
		TransactionType: model.TxPurchase,
		Shares:          shares,
		Price:           price,
		Value:           shares * price,
		FilingDate:      filed,
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	rep := Analyze(nil)
	assert.True(t, rep.Empty())
	assert.Empty(t, rep.Risk.Concentration)
	assert.Empty(t, rep.Trends.Daily)
}

func TestAnalyzeAggregates(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	jan16 := time.Date(2024, 1, 16, 14, 0, 0, 0, time.UTC)
	trades := []model.TradeRecord{
		tradeAt("AAPL", 1000, 100, jan15), // 100000
		tradeAt("AAPL", 1000, 200, jan16), // 200000
		tradeAt("MSFT", 1000, 100, jan16), // 100000
	}

	rep := Analyze(trades)
	require.False(t, rep.Empty())

	assert.Equal(t, 100000.0, rep.Time.DailyVolume["2024-01-15"])
	assert.Equal(t, 300000.0, rep.Time.DailyVolume["2024-01-16"])
	assert.Equal(t, 100000.0, rep.Time.HourlyDistribution[9])
	assert.Equal(t, 300000.0, rep.Time.HourlyDistribution[14])

	assert.Equal(t, 2, rep.Symbols.Frequency["AAPL"])
	assert.Equal(t, 1, rep.Symbols.Frequency["MSFT"])
	assert.Equal(t, 300000.0, rep.Symbols.ValueBySymbol["AAPL"])

	assert.InDelta(t, 0.75, rep.Risk.Concentration["AAPL"], 1e-12)
	assert.InDelta(t, 0.25, rep.Risk.Concentration["MSFT"], 1e-12)

	sum := 0.0
	for _, c := range rep.Risk.Concentration {
		sum += c
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	require.Len(t, rep.Trends.Daily, 2)
	assert.Equal(t, "2024-01-15", rep.Trends.Daily[0].Date)
	assert.Equal(t, 1000.0, rep.Trends.Daily[0].Shares)
	assert.Equal(t, 2000.0, rep.Trends.Daily[1].Shares)
	// Two days of data: no window fits.
	assert.Empty(t, rep.Trends.MovingAverages)
}

func TestAnalyzeMovingAverageWindows(t *testing.T) {
	trades := make([]model.TradeRecord, 0, 7)
	for i := 0; i < 7; i++ {
		filed := time.Date(2024, 1, 10+i, 10, 0, 0, 0, time.UTC)
		trades = append(trades, tradeAt("AAPL", 1000, float64(100+i), filed))
	}

	rep := Analyze(trades)
	require.Contains(t, rep.Trends.MovingAverages, "3d_ma")
	require.Contains(t, rep.Trends.MovingAverages, "7d_ma")
	assert.NotContains(t, rep.Trends.MovingAverages, "14d_ma")

	ma3 := rep.Trends.MovingAverages["3d_ma"]
	require.Len(t, ma3, 7)
	// Third slot is the first full window: mean of days 1..3.
	assert.InDelta(t, 101000.0, ma3[2], 1e-6)
	assert.InDelta(t, 105000.0, ma3[6], 1e-6)
}

func TestPercentileInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, Percentile(values, 50), 1e-12)
	assert.InDelta(t, 1.0, Percentile(values, 0), 1e-12)
	assert.InDelta(t, 4.0, Percentile(values, 100), 1e-12)

	fives := []float64{100, 200, 300, 400, 500}
	assert.InDelta(t, 120.0, Percentile(fives, 5), 1e-12)
	assert.InDelta(t, 104.0, Percentile(fives, 1), 1e-12)

	assert.Zero(t, Percentile(nil, 50))
	assert.Equal(t, 42.0, Percentile([]float64{42}, 95))
}

func TestAnalyzeVaRUsesLowerTail(t *testing.T) {
	trades := []model.TradeRecord{}
	for i, v := range []float64{100, 200, 300, 400, 500} {
		filed := time.Date(2024, 1, 10+i, 10, 0, 0, 0, time.UTC)
		trades = append(trades, tradeAt("AAPL", 1, v, filed))
	}
	rep := Analyze(trades)
	assert.InDelta(t, 120.0, rep.Risk.VaR95, 1e-12)
	assert.InDelta(t, 104.0, rep.Risk.VaR99, 1e-12)
	assert.Less(t, rep.Risk.VaR99, rep.Risk.VaR95)
}
