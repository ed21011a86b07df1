package analysis

import "mirror/internal/model"

// Thresholds narrow validated trades to significant ones. Both bounds are
// inclusive.
type Thresholds struct {
	MinValue  float64
	MinShares float64
}

// DefaultThresholds mirror the stock configuration.
var DefaultThresholds = Thresholds{MinValue: 100000, MinShares: 1000}

// FilterSignificant returns the subset of trades clearing both thresholds.
// Pure function: empty in, empty out; idempotent for fixed thresholds.
func FilterSignificant(trades []model.TradeRecord, th Thresholds) []model.TradeRecord {
	if len(trades) == 0 {
		return nil
	}
	out := make([]model.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if t.Value >= th.MinValue && t.Shares >= th.MinShares {
			out = append(out, t)
		}
	}
	return out
}
