package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mirror/internal/analysis"
	"mirror/internal/executor"
	"mirror/internal/feed"
	"mirror/internal/logger"
	"mirror/internal/model"
	"mirror/internal/report"
	"mirror/internal/scheduler"
)

// State is the orchestrator's current stage.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateAnalyzing State = "analyzing"
	StateExecuting State = "executing"
	StateReporting State = "reporting"
)

// Journal persists cycle outcomes. Failures are logged, never fatal.
type Journal interface {
	SaveCycle(ctx context.Context, res model.CycleResult, executed []model.ExecutedTrade) error
}

// Config holds the orchestrator's operational controls.
type Config struct {
	Interval              time.Duration
	RunImmediately        bool
	ResetHour             int // wall-clock hour at which daily counters reset
	InitialPortfolioValue float64
	Thresholds            analysis.Thresholds
}

// Engine sequences fetch -> validate -> filter/analyze -> execute -> report
// once per tick and loops on the configured interval. One cycle at a time;
// a stage failure short-circuits the remainder of that cycle only.
type Engine struct {
	cfg       Config
	source    feed.Source
	validator *feed.Validator
	exec      *executor.Executor
	reporter  *report.Generator
	journal   Journal

	mu             sync.Mutex
	state          State
	lastCycle      *model.CycleResult
	lastAnalysis   analysis.Report
	portfolioValue float64
	lastResetDay   string

	nowFn func() time.Time
}

func New(cfg Config, source feed.Source, validator *feed.Validator, exec *executor.Executor, reporter *report.Generator, journal Journal) *Engine {
	return &Engine{
		cfg:            cfg,
		source:         source,
		validator:      validator,
		exec:           exec,
		reporter:       reporter,
		journal:        journal,
		state:          StateIdle,
		portfolioValue: cfg.InitialPortfolioValue,
		nowFn:          time.Now,
	}
}

// Run loops cycles until the context is cancelled, then performs ledger
// cleanup. Stop is cooperative: checked between cycles, an in-flight cycle
// finishes.
func (e *Engine) Run(ctx context.Context) error {
	sched := scheduler.NewIntervalScheduler(ctx, e.cfg.Interval)
	sched.Name = "cycle"
	sched.RunImmediately = e.cfg.RunImmediately
	sched.Start(func() {
		res := e.RunCycle(ctx)
		if res.Status == model.CycleSuccess {
			logger.Infof("cycle completed trace=%s fetched=%d analyzed=%d executed=%d portfolio=%.2f",
				res.TraceID, res.TradesFetched, res.TradesAnalyzed, res.TradesExecuted, res.PortfolioValue)
		} else {
			logger.Errorf("cycle failed trace=%s err=%s", res.TraceID, res.Error)
		}
		e.maybeResetDaily(e.nowFn())
	})

	e.exec.Cleanup()
	logger.Infof("engine: stopped, ledger cleaned up")
	return ctx.Err()
}

// RunCycle performs one full pass. Any stage error is captured in the
// returned CycleResult; the loop never crashes on a failed cycle.
func (e *Engine) RunCycle(ctx context.Context) model.CycleResult {
	started := e.nowFn().UTC()
	res := model.CycleResult{
		TraceID:   uuid.NewString(),
		StartedAt: started,
	}

	executed, err := e.runStages(ctx, &res)
	res.FinishedAt = e.nowFn().UTC()
	if err != nil {
		res.Status = model.CycleError
		res.Error = err.Error()
	} else {
		res.Status = model.CycleSuccess
	}

	if e.journal != nil {
		if jerr := e.journal.SaveCycle(ctx, res, executed); jerr != nil {
			logger.Warnf("engine: journal write failed trace=%s err=%v", res.TraceID, jerr)
		}
	}

	e.mu.Lock()
	e.state = StateIdle
	e.lastCycle = &res
	e.mu.Unlock()
	return res
}

func (e *Engine) runStages(ctx context.Context, res *model.CycleResult) ([]model.ExecutedTrade, error) {
	e.setState(StateFetching)
	raw, err := e.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("data fetch failed: %w", err)
	}
	valid, dropped := e.validator.Validate(raw)
	res.TradesFetched = len(valid)
	res.TradesDropped = dropped

	e.setState(StateAnalyzing)
	filtered := analysis.FilterSignificant(valid, e.cfg.Thresholds)
	res.TradesAnalyzed = len(filtered)
	rep := analysis.Analyze(filtered)
	e.mu.Lock()
	e.lastAnalysis = rep
	e.mu.Unlock()

	e.setState(StateExecuting)
	var executed []model.ExecutedTrade
	if len(filtered) > 0 {
		batch, err := e.exec.ExecuteBatch(filtered, e.PortfolioValue())
		if err != nil {
			return nil, fmt.Errorf("trade execution failed: %w", err)
		}
		executed = batch.Executed
		// The ledger starts empty, so a batch with no surviving positions
		// must not zero out the working portfolio value.
		if batch.Summary.TotalValue > 0 {
			e.setPortfolioValue(batch.Summary.TotalValue)
		}
	}
	res.TradesExecuted = len(executed)
	res.PortfolioValue = e.PortfolioValue()

	e.setState(StateReporting)
	repRes, err := e.reporter.Generate(ctx, e.exec.DailyTrades(), e.exec.Summary())
	if err != nil {
		return executed, fmt.Errorf("reporting failed: %w", err)
	}
	res.Reports = repRes.Reports
	return executed, nil
}

// maybeResetDaily resets the executor's daily counters once per day when
// the wall clock crosses the configured hour (market close), independent of
// cycle success.
func (e *Engine) maybeResetDaily(now time.Time) {
	if now.Hour() < e.cfg.ResetHour {
		return
	}
	day := now.Format("2006-01-02")
	e.mu.Lock()
	if e.lastResetDay == day {
		e.mu.Unlock()
		return
	}
	e.lastResetDay = day
	e.mu.Unlock()
	e.exec.ResetDaily()
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Status reports the current stage and last cycle outcome.
func (e *Engine) Status() (State, *model.CycleResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastCycle == nil {
		return e.state, nil
	}
	cp := *e.lastCycle
	return e.state, &cp
}

// LastAnalysis returns the analyzer output of the most recent cycle.
func (e *Engine) LastAnalysis() analysis.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAnalysis
}

// PortfolioValue is the working portfolio value used for risk sizing.
func (e *Engine) PortfolioValue() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.portfolioValue
}

func (e *Engine) setPortfolioValue(v float64) {
	e.mu.Lock()
	e.portfolioValue = v
	e.mu.Unlock()
}

// Portfolio exposes the executor's derived summary.
func (e *Engine) Portfolio() model.PortfolioSummary {
	return e.exec.Summary()
}
