package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"mirror/internal/model"
)

// renderCSV writes a metrics block followed by the trade rows, matching the
// layout of the HTML report.
func renderCSV(trades []model.ExecutedTrade, metrics Metrics) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Report Type", "Metrics"},
		{"win_rate", "profit_factor", "sharpe_ratio", "max_drawdown"},
		{
			fmt.Sprintf("%.6f", metrics.WinRate),
			formatRatio(metrics.ProfitFactor),
			fmt.Sprintf("%.6f", metrics.SharpeRatio),
			fmt.Sprintf("%.2f", metrics.MaxDrawdown),
		},
		{"Report Type", "Trades"},
		{"symbol", "transaction_type", "shares", "price", "value", "pnl", "execution_time", "portfolio_value"},
	}
	for _, t := range trades {
		rows = append(rows, []string{
			t.Symbol,
			string(t.TransactionType),
			fmt.Sprintf("%.2f", t.Shares),
			fmt.Sprintf("%.2f", t.Price),
			fmt.Sprintf("%.2f", t.Value),
			fmt.Sprintf("%.2f", t.PnL),
			t.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			fmt.Sprintf("%.2f", t.PortfolioValue),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
