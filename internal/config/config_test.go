package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
provider:
  api_key: test-key
  endpoint: https://finnhub.io/api/v1/stock/insider-transactions
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", minimalConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "finnhub", cfg.Provider.Name)
	assert.Equal(t, 15, cfg.Provider.TimeoutSeconds)
	assert.Equal(t, 100000.0, cfg.Filter.MinValue)
	assert.Equal(t, 1000.0, cfg.Filter.MinShares)
	assert.Equal(t, 0.05, cfg.Risk.MaxPositionSize)
	assert.Equal(t, 10, cfg.Risk.MaxDailyTrades)
	assert.Equal(t, 0.20, cfg.Risk.MaxConcentration)
	assert.Equal(t, 100000.0, cfg.Trading.InitialPortfolioValue)
	assert.Equal(t, 16, cfg.Trading.ResetHour)
	assert.Equal(t, []string{"html", "csv"}, cfg.Report.Formats)
	assert.Equal(t, 3600, cfg.Cycle.IntervalSeconds)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "data/mirror.db", cfg.Store.Path)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, ":9991", cfg.HTTP.Addr)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, "config.yaml", minimalConfig+`
risk:
  max_position_size: 0.10
  max_daily_trades: 3
store:
  enabled: false
cycle:
  interval_seconds: 60
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.10, cfg.Risk.MaxPositionSize)
	assert.Equal(t, 3, cfg.Risk.MaxDailyTrades)
	assert.False(t, cfg.Store.Enabled)
	assert.Equal(t, 60, cfg.Cycle.IntervalSeconds)
}

func TestLoadMergesIncludes(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	require.NoError(t, os.WriteFile(base, []byte(`
provider:
  api_key: base-key
  endpoint: https://finnhub.io/api/v1/stock/insider-transactions
filter:
  min_value: 50000
`), 0o644))

	main := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(main, []byte(`
include:
  - base.yaml
filter:
  min_value: 75000
`), 0o644))

	cfg, err := Load(main)
	require.NoError(t, err)
	// Main file wins over the include; untouched include keys survive.
	assert.Equal(t, 75000.0, cfg.Filter.MinValue)
	assert.Equal(t, "base-key", cfg.Provider.APIKey)
}

func TestLoadRejectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte("include:\n  - b.yaml\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("include:\n  - a.yaml\n"), 0o644))

	_, err := Load(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "unknown provider",
			content: `
provider:
  name: quiver
  api_key: k
  endpoint: https://example.com
`,
			wantErr: "provider.name",
		},
		{
			name: "missing api key",
			content: `
provider:
  endpoint: https://example.com
`,
			wantErr: "provider.api_key",
		},
		{
			name: "position size out of range",
			content: minimalConfig + `
risk:
  max_position_size: 1.5
`,
			wantErr: "risk.max_position_size",
		},
		{
			name: "unsupported report format",
			content: minimalConfig + `
report:
  formats:
    - pdf
`,
			wantErr: "report.formats",
		},
		{
			name: "snapshot without html format",
			content: minimalConfig + `
report:
  formats:
    - csv
  snapshot: true
`,
			wantErr: "report.snapshot",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tc.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
