package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"mirror/internal/analysis"
	"mirror/internal/config"
	"mirror/internal/engine"
	"mirror/internal/executor"
	"mirror/internal/feed"
	"mirror/internal/gateway/finnhub"
	"mirror/internal/logger"
	"mirror/internal/model"
	"mirror/internal/registry"
	"mirror/internal/report"
	"mirror/internal/store/sqlite"
	httpapi "mirror/internal/transport/http"
)

// App wires the mirror daemon: provider source, validator, executor, report
// generator, cycle engine, journal store and HTTP API.
type App struct {
	cfg    *config.Config
	Source feed.Source
	Engine *engine.Engine
	Server *httpapi.Server
	Store  *sqlite.Store
	Tasks  *registry.Registry
}

func New(cfg *config.Config) (*App, error) {
	source, err := finnhub.New(finnhub.Config{
		Name:     cfg.Provider.Name,
		APIKey:   cfg.Provider.APIKey,
		Endpoint: cfg.Provider.Endpoint,
		Symbol:   cfg.Provider.Symbol,
		Timeout:  time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return build(cfg, source)
}

// NewWithSource is the test seam: same wiring, custom provider.
func NewWithSource(cfg *config.Config, source feed.Source) (*App, error) {
	return build(cfg, source)
}

func build(cfg *config.Config, source feed.Source) (*App, error) {
	validator, err := feed.NewValidator()
	if err != nil {
		return nil, err
	}

	exec := executor.New(model.RiskLimits{
		MaxPositionSize:  cfg.Risk.MaxPositionSize,
		MaxDailyTrades:   cfg.Risk.MaxDailyTrades,
		MaxConcentration: cfg.Risk.MaxConcentration,
	})

	reporter := report.NewGenerator(report.Options{
		Dir:      cfg.Report.Dir,
		Formats:  cfg.Report.Formats,
		Charts:   cfg.Report.Charts,
		Snapshot: cfg.Report.Snapshot,
	})

	var store *sqlite.Store
	var journal engine.Journal
	if cfg.Store.Enabled {
		store, err = sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		journal = store
	}

	eng := engine.New(engine.Config{
		Interval:              time.Duration(cfg.Cycle.IntervalSeconds) * time.Second,
		RunImmediately:        cfg.Cycle.RunImmediately,
		ResetHour:             cfg.Trading.ResetHour,
		InitialPortfolioValue: cfg.Trading.InitialPortfolioValue,
		Thresholds: analysis.Thresholds{
			MinValue:  cfg.Filter.MinValue,
			MinShares: cfg.Filter.MinShares,
		},
	}, source, validator, exec, reporter, journal)

	app := &App{
		cfg:    cfg,
		Source: source,
		Engine: eng,
		Store:  store,
		Tasks:  registry.New(),
	}

	if cfg.HTTP.Enabled {
		serverCfg := httpapi.ServerConfig{
			Addr:   cfg.HTTP.Addr,
			Engine: eng,
			Tasks:  app.Tasks,
		}
		// Assigning a nil *sqlite.Store directly would hand the server a
		// non-nil interface wrapping a typed nil.
		if store != nil {
			serverCfg.Cycles = store
		}
		server, err := httpapi.NewServer(serverCfg)
		if err != nil {
			return nil, err
		}
		app.Server = server
	}

	return app, nil
}

// Run starts the cycle loop and the HTTP API and blocks until the context
// is cancelled or a task fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Tasks.Run(gctx, "engine", a.Engine.Run)
	})
	if a.Server != nil {
		g.Go(func() error {
			return a.Tasks.Run(gctx, "http", a.Server.Run)
		})
	}

	err := g.Wait()
	a.Close()
	if err != nil && ctx.Err() != nil {
		// Cancellation is a clean stop, not a failure.
		return nil
	}
	return err
}

// Close releases held resources.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			logger.Warnf("app: closing store failed: %v", err)
		}
		a.Store = nil
	}
}
