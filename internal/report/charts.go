package report

import (
	"bytes"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"mirror/internal/model"
)

// renderCharts builds the companion chart page: executed value per symbol
// and the current position breakdown.
func renderCharts(trades []model.ExecutedTrade, summary model.PortfolioSummary) ([]byte, error) {
	valueBySymbol := make(map[string]float64)
	for _, t := range trades {
		valueBySymbol[t.Symbol] += t.Value
	}
	symbols := make([]string, 0, len(valueBySymbol))
	for sym := range valueBySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Executed Value by Symbol"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	barData := make([]opts.BarData, 0, len(symbols))
	for _, sym := range symbols {
		barData = append(barData, opts.BarData{Value: valueBySymbol[sym]})
	}
	bar.SetXAxis(symbols).AddSeries("value", barData)

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Position Breakdown"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pieData := make([]opts.PieData, 0, len(summary.Positions))
	posSymbols := make([]string, 0, len(summary.Positions))
	for sym := range summary.Positions {
		posSymbols = append(posSymbols, sym)
	}
	sort.Strings(posSymbols)
	for _, sym := range posSymbols {
		pieData = append(pieData, opts.PieData{Name: sym, Value: summary.Positions[sym]})
	}
	pie.AddSeries("positions", pieData)

	page := components.NewPage()
	page.AddCharts(bar, pie)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
