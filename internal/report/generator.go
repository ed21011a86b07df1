package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mirror/internal/logger"
	"mirror/internal/model"
)

// Options selects the artifacts one Generate call produces.
type Options struct {
	Dir      string
	Formats  []string // "html", "csv"
	Charts   bool
	Snapshot bool
}

// Generator renders executed trades plus the portfolio summary into
// timestamped report files. It holds no trading state; a failure here never
// affects the executor's committed ledger.
type Generator struct {
	opts  Options
	nowFn func() time.Time
}

func NewGenerator(opts Options) *Generator {
	if strings.TrimSpace(opts.Dir) == "" {
		opts.Dir = "reports"
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{"html", "csv"}
	}
	return &Generator{opts: opts, nowFn: time.Now}
}

// Result maps format name to the written file path.
type Result struct {
	Metrics Metrics           `json:"metrics"`
	Reports map[string]string `json:"reports"`
}

// Generate computes metrics and writes one artifact per configured format.
// Chart and snapshot artifacts are best-effort: their failure is logged and
// skipped, the core formats still count.
func (g *Generator) Generate(ctx context.Context, trades []model.ExecutedTrade, summary model.PortfolioSummary) (Result, error) {
	if err := os.MkdirAll(g.opts.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating report dir failed: %w", err)
	}

	now := g.nowFn().UTC()
	stamp := now.Format("20060102_150405")
	metrics := CalculateMetrics(trades)
	result := Result{Metrics: metrics, Reports: make(map[string]string)}

	var htmlContent []byte
	for _, format := range g.opts.Formats {
		var (
			content []byte
			err     error
		)
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "html":
			content, err = renderHTML(trades, summary, metrics, now)
			htmlContent = content
		case "csv":
			content, err = renderCSV(trades, metrics)
		default:
			continue
		}
		if err != nil {
			return result, fmt.Errorf("rendering %s report failed: %w", format, err)
		}
		path := filepath.Join(g.opts.Dir, fmt.Sprintf("report_%s.%s", stamp, format))
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return result, fmt.Errorf("writing %s report failed: %w", format, err)
		}
		result.Reports[format] = path
	}

	if g.opts.Charts {
		if path, err := g.writeCharts(stamp, trades, summary); err != nil {
			logger.Warnf("report: chart render failed: %v", err)
		} else {
			result.Reports["charts"] = path
		}
	}
	if g.opts.Snapshot {
		if htmlContent == nil {
			logger.Warnf("report: png snapshot skipped, html format not configured")
		} else if path, err := g.writeSnapshot(ctx, stamp, htmlContent); err != nil {
			logger.Warnf("report: png snapshot failed: %v", err)
		} else {
			result.Reports["png"] = path
		}
	}

	return result, nil
}

func (g *Generator) writeCharts(stamp string, trades []model.ExecutedTrade, summary model.PortfolioSummary) (string, error) {
	content, err := renderCharts(trades, summary)
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.opts.Dir, fmt.Sprintf("report_%s_charts.html", stamp))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (g *Generator) writeSnapshot(ctx context.Context, stamp string, html []byte) (string, error) {
	png, err := snapshotPNG(ctx, html)
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.opts.Dir, fmt.Sprintf("report_%s.png", stamp))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
