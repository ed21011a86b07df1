package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mirror/internal/model"
	storemodel "mirror/internal/store/model"
)

// Store journals cycle results and executed trades in a local sqlite file.
// Journal writes are best-effort from the engine's perspective; the read
// side backs the HTTP API.
type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&storemodel.CycleModel{}, &storemodel.TradeModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

// SaveCycle persists the cycle row plus the trades executed during it.
func (s *Store) SaveCycle(ctx context.Context, res model.CycleResult, executed []model.ExecutedTrade) error {
	reports := ""
	if len(res.Reports) > 0 {
		if raw, err := json.Marshal(res.Reports); err == nil {
			reports = string(raw)
		}
	}
	row := storemodel.CycleModel{
		TraceID:        res.TraceID,
		Status:         string(res.Status),
		StartedAt:      res.StartedAt,
		FinishedAt:     res.FinishedAt,
		TradesFetched:  res.TradesFetched,
		TradesDropped:  res.TradesDropped,
		TradesAnalyzed: res.TradesAnalyzed,
		TradesExecuted: res.TradesExecuted,
		PortfolioValue: res.PortfolioValue,
		Reports:        reports,
		Error:          res.Error,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, t := range executed {
			trade := storemodel.TradeModel{
				TraceID:         res.TraceID,
				Symbol:          t.Symbol,
				TransactionType: string(t.TransactionType),
				Shares:          t.Shares,
				Price:           t.Price,
				Value:           t.Value,
				PnL:             t.PnL,
				ExecutedAt:      t.ExecutedAt,
				PortfolioValue:  t.PortfolioValue,
			}
			if err := tx.Create(&trade).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentCycles returns the newest cycle rows, newest first.
func (s *Store) RecentCycles(ctx context.Context, limit int) ([]model.CycleResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []storemodel.CycleModel
	if err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.CycleResult, 0, len(rows))
	for _, row := range rows {
		res := model.CycleResult{
			TraceID:        row.TraceID,
			Status:         model.CycleStatus(row.Status),
			StartedAt:      row.StartedAt,
			FinishedAt:     row.FinishedAt,
			TradesFetched:  row.TradesFetched,
			TradesDropped:  row.TradesDropped,
			TradesAnalyzed: row.TradesAnalyzed,
			TradesExecuted: row.TradesExecuted,
			PortfolioValue: row.PortfolioValue,
			Error:          row.Error,
		}
		if row.Reports != "" {
			var reports map[string]string
			if err := json.Unmarshal([]byte(row.Reports), &reports); err == nil {
				res.Reports = reports
			}
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
