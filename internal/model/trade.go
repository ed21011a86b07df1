package model

import (
	"strings"
	"time"
)

// TransactionType distinguishes insider purchases from sales.
type TransactionType string

const (
	TxPurchase TransactionType = "PURCHASE"
	TxSale     TransactionType = "SALE"
)

// ParseTransactionType normalizes a raw transaction type string.
// Returns ("", false) for anything that is not PURCHASE or SALE.
func ParseTransactionType(raw string) (TransactionType, bool) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(raw))) {
	case TxPurchase:
		return TxPurchase, true
	case TxSale:
		return TxSale, true
	default:
		return "", false
	}
}

// TradeRecord is a validated insider trade. Immutable after validation:
// Value == Shares*Price held exactly as reported by the provider.
type TradeRecord struct {
	Symbol          string          `json:"symbol"`
	TransactionType TransactionType `json:"transaction_type"`
	Shares          float64         `json:"shares"`
	Price           float64         `json:"price"`
	Value           float64         `json:"value"`
	FilingDate      time.Time       `json:"filing_date"`
}

// TradeValue is the notional of the trade at its reported price.
func (t TradeRecord) TradeValue() float64 {
	return t.Shares * t.Price
}

// ExecutedTrade is a trade the executor accepted, annotated with the
// execution context. PnL is realized PnL for sales (zero for purchases and
// for sales without a tracked average cost).
type ExecutedTrade struct {
	TradeRecord
	ExecutedAt     time.Time `json:"execution_time"`
	PortfolioValue float64   `json:"portfolio_value"`
	PnL            float64   `json:"pnl"`
}

// ExecutionStatus is the per-trade outcome of the executor.
type ExecutionStatus string

const (
	ExecExecuted ExecutionStatus = "executed"
	ExecRejected ExecutionStatus = "rejected"
	ExecError    ExecutionStatus = "error"
)

// ExecutionResult carries one trade's outcome. Rejection is expected control
// flow and is returned as data, never as an error.
type ExecutionResult struct {
	Status ExecutionStatus `json:"status"`
	Trade  *ExecutedTrade  `json:"trade,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// RiskLimits gates the executor. Fractions are of current portfolio value.
type RiskLimits struct {
	MaxPositionSize  float64 `json:"max_position_size"`
	MaxDailyTrades   int     `json:"max_daily_trades"`
	MaxConcentration float64 `json:"max_concentration"`
}

// PortfolioSummary is a derived snapshot of the executor's ledger.
// TotalValue is always recomputed from positions, never stored.
type PortfolioSummary struct {
	TotalValue    float64            `json:"total_value"`
	PositionCount int                `json:"position_count"`
	DailyTrades   int                `json:"daily_trades"`
	DailyPnL      float64            `json:"daily_pnl"`
	Positions     map[string]float64 `json:"positions"`
}

// CycleStatus marks a full orchestration tick as completed or failed.
type CycleStatus string

const (
	CycleSuccess CycleStatus = "success"
	CycleError   CycleStatus = "error"
)

// CycleResult summarizes one fetch -> analyze -> execute -> report pass.
type CycleResult struct {
	TraceID        string            `json:"trace_id"`
	Status         CycleStatus       `json:"status"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
	TradesFetched  int               `json:"trades_fetched"`
	TradesDropped  int               `json:"trades_dropped"`
	TradesAnalyzed int               `json:"trades_analyzed"`
	TradesExecuted int               `json:"trades_executed"`
	PortfolioValue float64           `json:"portfolio_value"`
	Reports        map[string]string `json:"reports,omitempty"`
	Error          string            `json:"error,omitempty"`
}
