package executor

import (
	"fmt"
	"sync"
	"time"

	"mirror/internal/logger"
	"mirror/internal/model"
)

// fullSaleEpsilon: a sale leaving fewer shares than this closes the position
// outright instead of keeping a near-zero residual.
const fullSaleEpsilon = 0.01

type position struct {
	shares  float64
	value   float64
	avgCost float64
}

// Executor is the risk-gated trade executor. It owns the position ledger and
// the daily counters; trades are processed strictly in input order because
// each trade's risk checks depend on the cumulative effect of the ones
// accepted before it. The mutex only protects the HTTP read path against the
// single writing cycle goroutine.
type Executor struct {
	limits model.RiskLimits

	mu          sync.Mutex
	positions   map[string]*position
	dailyTrades []model.ExecutedTrade
	dailyPnL    float64

	nowFn func() time.Time
}

func New(limits model.RiskLimits) *Executor {
	return &Executor{
		limits:    limits,
		positions: make(map[string]*position),
		nowFn:     time.Now,
	}
}

// BatchResult collects the per-trade outcomes of one batch. Status "success"
// means processing completed, not that every trade was accepted.
type BatchResult struct {
	Results   []model.ExecutionResult
	Executed  []model.ExecutedTrade
	Summary   model.PortfolioSummary
	Timestamp time.Time
}

// ExecuteBatch processes trades sequentially against the risk limits. A
// single trade's rejection or failure never aborts its siblings; the only
// error case is a contract violation on the whole batch.
func (e *Executor) ExecuteBatch(trades []model.TradeRecord, portfolioValue float64) (BatchResult, error) {
	if portfolioValue <= 0 {
		return BatchResult{}, fmt.Errorf("portfolio value must be positive, got %v", portfolioValue)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	results := make([]model.ExecutionResult, 0, len(trades))
	executed := make([]model.ExecutedTrade, 0, len(trades))
	for _, trade := range trades {
		res := e.executeTrade(trade, portfolioValue)
		if res.Status == model.ExecExecuted && res.Trade != nil {
			executed = append(executed, *res.Trade)
		}
		results = append(results, res)
	}

	return BatchResult{
		Results:   results,
		Executed:  executed,
		Summary:   e.summaryLocked(),
		Timestamp: e.nowFn().UTC(),
	}, nil
}

func (e *Executor) executeTrade(trade model.TradeRecord, portfolioValue float64) model.ExecutionResult {
	if trade.TransactionType != model.TxPurchase && trade.TransactionType != model.TxSale {
		logger.Errorf("executor: trade for %s has unknown transaction type %q", trade.Symbol, trade.TransactionType)
		return model.ExecutionResult{
			Status: model.ExecError,
			Reason: fmt.Sprintf("unknown transaction type %q", trade.TransactionType),
		}
	}

	if ok, reason := e.checkRiskLimits(trade, portfolioValue); !ok {
		logger.Warnf("executor: trade rejected for %s: %s", trade.Symbol, reason)
		return model.ExecutionResult{Status: model.ExecRejected, Reason: reason}
	}

	pnl := e.applyTrade(trade)
	record := model.ExecutedTrade{
		TradeRecord:    trade,
		ExecutedAt:     e.nowFn().UTC(),
		PortfolioValue: portfolioValue,
		PnL:            pnl,
	}
	e.dailyTrades = append(e.dailyTrades, record)
	e.dailyPnL += pnl

	return model.ExecutionResult{Status: model.ExecExecuted, Trade: &record}
}

// checkRiskLimits runs the gate sequence: daily count, concentration,
// position size. First failure wins.
func (e *Executor) checkRiskLimits(trade model.TradeRecord, portfolioValue float64) (bool, string) {
	if len(e.dailyTrades) >= e.limits.MaxDailyTrades {
		return false, "Daily trade limit reached"
	}

	tradeValue := trade.TradeValue()

	currentValue := 0.0
	if pos, ok := e.positions[trade.Symbol]; ok {
		currentValue = pos.value
	}
	concentration := (currentValue + tradeValue) / portfolioValue
	if concentration > e.limits.MaxConcentration {
		return false, fmt.Sprintf("Symbol concentration %.2f%% exceeds limit of %.2f%%",
			concentration*100, e.limits.MaxConcentration*100)
	}

	positionSize := tradeValue / portfolioValue
	if positionSize > e.limits.MaxPositionSize {
		return false, fmt.Sprintf("Position size %.2f%% exceeds limit of %.2f%%",
			positionSize*100, e.limits.MaxPositionSize*100)
	}

	return true, ""
}

// applyTrade mutates the ledger and returns realized PnL (sales only).
// Average cost tracking is approximate: without a tracked cost basis the
// sale price is used as fallback, so such sales realize zero PnL.
func (e *Executor) applyTrade(trade model.TradeRecord) float64 {
	pos := e.positions[trade.Symbol]

	if trade.TransactionType == model.TxSale {
		avgCost := trade.Price
		currentShares := 0.0
		if pos != nil {
			currentShares = pos.shares
			if pos.avgCost > 0 {
				avgCost = pos.avgCost
			}
		}
		pnl := (trade.Price - avgCost) * trade.Shares

		remaining := currentShares - trade.Shares
		if pos != nil && (remaining < fullSaleEpsilon && remaining > -fullSaleEpsilon) {
			delete(e.positions, trade.Symbol)
			return pnl
		}
		if pos == nil {
			pos = &position{}
			e.positions[trade.Symbol] = pos
		}
		pos.shares = remaining
		pos.value = remaining * trade.Price
		return pnl
	}

	// Purchase: add shares and revalue the whole position at the trade
	// price; cost basis is share-weighted.
	if pos == nil {
		pos = &position{}
		e.positions[trade.Symbol] = pos
	}
	newShares := pos.shares + trade.Shares
	if newShares > 0 {
		pos.avgCost = (pos.shares*pos.avgCost + trade.Shares*trade.Price) / newShares
	} else {
		pos.avgCost = trade.Price
	}
	pos.shares = newShares
	pos.value = newShares * trade.Price
	return 0
}

// Summary derives the portfolio snapshot on demand; total value is always
// the sum of position values.
func (e *Executor) Summary() model.PortfolioSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

func (e *Executor) summaryLocked() model.PortfolioSummary {
	total := 0.0
	positions := make(map[string]float64, len(e.positions))
	for sym, pos := range e.positions {
		total += pos.value
		positions[sym] = pos.value
	}
	return model.PortfolioSummary{
		TotalValue:    total,
		PositionCount: len(e.positions),
		DailyTrades:   len(e.dailyTrades),
		DailyPnL:      e.dailyPnL,
		Positions:     positions,
	}
}

// DailyTrades returns a copy of today's executed trades.
func (e *Executor) DailyTrades() []model.ExecutedTrade {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.ExecutedTrade, len(e.dailyTrades))
	copy(out, e.dailyTrades)
	return out
}

// ResetDaily clears the daily counters at the trading-day boundary.
// Positions survive the reset.
func (e *Executor) ResetDaily() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dailyTrades = nil
	e.dailyPnL = 0
	logger.Infof("executor: daily tracking reset")
}

// Cleanup clears all ledger state; called on explicit stop.
func (e *Executor) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dailyTrades = nil
	e.dailyPnL = 0
	e.positions = make(map[string]*position)
}
