package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror/internal/config"
	"mirror/internal/feed"
	"mirror/internal/model"
)

type staticSource struct {
	records []feed.RawRecord
}

func (s *staticSource) Fetch(ctx context.Context) ([]feed.RawRecord, error) {
	return s.records, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Provider: config.ProviderConfig{
			Name:     "finnhub",
			APIKey:   "test-key",
			Endpoint: "https://example.com",
		},
		Filter: config.FilterConfig{MinValue: 1000, MinShares: 10},
		Risk: config.RiskConfig{
			MaxPositionSize:  0.05,
			MaxDailyTrades:   10,
			MaxConcentration: 0.20,
		},
		Trading: config.TradingConfig{InitialPortfolioValue: 100000, ResetHour: 16},
		Report:  config.ReportConfig{Dir: filepath.Join(dir, "reports"), Formats: []string{"csv"}},
		Cycle:   config.CycleConfig{IntervalSeconds: 3600},
		Store:   config.StoreConfig{Enabled: true, Path: filepath.Join(dir, "mirror.db")},
	}
}

func TestNewWithSourceWiresComponents(t *testing.T) {
	cfg := testConfig(t)
	source := &staticSource{records: []feed.RawRecord{
		{
			"symbol":           "AAPL",
			"transaction_type": "PURCHASE",
			"shares":           40.0,
			"price":            100.0,
			"value":            4000.0,
			"filing_date":      "2024-01-15",
		},
	}}

	a, err := NewWithSource(cfg, source)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Engine)
	require.NotNil(t, a.Store)
	assert.Nil(t, a.Server) // http disabled

	res := a.Engine.RunCycle(context.Background())
	assert.Equal(t, model.CycleSuccess, res.Status)
	assert.Equal(t, 1, res.TradesExecuted)

	// The cycle landed in the journal.
	cycles, err := a.Store.RecentCycles(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, res.TraceID, cycles[0].TraceID)
}

func TestNewWithSourceHTTPEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Enabled = false
	cfg.HTTP = config.HTTPConfig{Enabled: true, Addr: "127.0.0.1:0"}

	a, err := NewWithSource(cfg, &staticSource{})
	require.NoError(t, err)
	defer a.Close()
	assert.NotNil(t, a.Server)
	assert.Nil(t, a.Store)
}

func TestCyclesEndpointFollowsStoreConfig(t *testing.T) {
	serve := func(t *testing.T, storeEnabled bool) int {
		t.Helper()
		cfg := testConfig(t)
		cfg.Store.Enabled = storeEnabled
		cfg.HTTP = config.HTTPConfig{Enabled: true, Addr: "127.0.0.1:0"}

		a, err := NewWithSource(cfg, &staticSource{})
		require.NoError(t, err)
		defer a.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/cycles", nil)
		rec := httptest.NewRecorder()
		a.Server.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	// Without a store there is no journal to read: the endpoint must be
	// absent, not a crashing stub behind a typed-nil reader.
	assert.Equal(t, http.StatusNotFound, serve(t, false))
	assert.Equal(t, http.StatusOK, serve(t, true))
}
