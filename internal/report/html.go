package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"time"

	"mirror/internal/model"
)

const reportPage = `<!DOCTYPE html>
<html>
<head>
<title>Insider Trading Mirror Report - {{.Date}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
h1, h2 { color: #333; }
table { width: 100%; border-collapse: collapse; margin: 20px 0; }
th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; }
th { background-color: #f8f9fa; }
.metrics { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin: 20px 0; }
.metric-card { background-color: #f8f9fa; padding: 15px; border-radius: 5px; text-align: center; }
.metric-value { font-size: 24px; font-weight: bold; color: #007bff; }
</style>
</head>
<body>
<div class="container">
<h1>Insider Trading Mirror Report</h1>
<p>Generated: {{.Generated}} UTC</p>

<h2>Performance Metrics</h2>
<div class="metrics">
{{range .Cards}}<div class="metric-card"><div>{{.Name}}</div><div class="metric-value">{{.Value}}</div></div>
{{end}}</div>

<h2>Portfolio</h2>
<table>
<tr><th>Total Value</th><th>Positions</th><th>Daily Trades</th><th>Daily P&amp;L</th></tr>
<tr><td>${{printf "%.2f" .Summary.TotalValue}}</td><td>{{.Summary.PositionCount}}</td><td>{{.Summary.DailyTrades}}</td><td>${{printf "%.2f" .Summary.DailyPnL}}</td></tr>
</table>

<h2>Recent Trades</h2>
<table class="table">
<tr><th>Symbol</th><th>Type</th><th>Shares</th><th>Price</th><th>Value</th><th>PnL</th><th>Executed</th></tr>
{{range .Trades}}<tr><td>{{.Symbol}}</td><td>{{.TransactionType}}</td><td>{{printf "%.0f" .Shares}}</td><td>{{printf "%.2f" .Price}}</td><td>{{printf "%.2f" .Value}}</td><td>{{printf "%.2f" .PnL}}</td><td>{{.ExecutedAt.Format "2006-01-02 15:04:05"}}</td></tr>
{{end}}</table>
</div>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Parse(reportPage))

type metricCard struct {
	Name  string
	Value string
}

type htmlData struct {
	Date      string
	Generated string
	Cards     []metricCard
	Summary   model.PortfolioSummary
	Trades    []model.ExecutedTrade
}

func renderHTML(trades []model.ExecutedTrade, summary model.PortfolioSummary, metrics Metrics, now time.Time) ([]byte, error) {
	data := htmlData{
		Date:      now.Format("2006-01-02"),
		Generated: now.Format("2006-01-02 15:04:05"),
		Cards: []metricCard{
			{Name: "Win Rate", Value: fmt.Sprintf("%.2f%%", metrics.WinRate*100)},
			{Name: "Profit Factor", Value: formatRatio(metrics.ProfitFactor)},
			{Name: "Sharpe Ratio", Value: fmt.Sprintf("%.2f", metrics.SharpeRatio)},
			{Name: "Max Drawdown", Value: fmt.Sprintf("$%.2f", metrics.MaxDrawdown)},
		},
		Summary: summary,
		Trades:  trades,
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "Inf"
	}
	return fmt.Sprintf("%.2f", v)
}
