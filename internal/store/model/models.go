package model

import "time"

// CycleModel journals one orchestration tick.
type CycleModel struct {
	ID             uint      `gorm:"primaryKey"`
	TraceID        string    `gorm:"index;size:64"`
	Status         string    `gorm:"size:16"`
	StartedAt      time.Time `gorm:"index"`
	FinishedAt     time.Time
	TradesFetched  int
	TradesDropped  int
	TradesAnalyzed int
	TradesExecuted int
	PortfolioValue float64
	Reports        string `gorm:"type:text"` // format -> path, JSON encoded
	Error          string `gorm:"type:text"`
}

func (CycleModel) TableName() string { return "cycles" }

// TradeModel journals one executed trade.
type TradeModel struct {
	ID              uint   `gorm:"primaryKey"`
	TraceID         string `gorm:"index;size:64"`
	Symbol          string `gorm:"index;size:16"`
	TransactionType string `gorm:"size:16"`
	Shares          float64
	Price           float64
	Value           float64
	PnL             float64
	ExecutedAt      time.Time `gorm:"index"`
	PortfolioValue  float64
}

func (TradeModel) TableName() string { return "trades" }
