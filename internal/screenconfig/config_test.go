package screenconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "NIFTY500", cfg.Universe.Name)
	assert.Equal(t, 35.0, cfg.Valuation.MaxPE)
	require.NotNil(t, cfg.Valuation.MaxEVEBITDA)
	assert.Equal(t, 20.0, *cfg.Valuation.MaxEVEBITDA)
	assert.Equal(t, 800*time.Millisecond, cfg.Run.Pause)

	n, ok := cfg.Cap()
	assert.True(t, ok)
	assert.Equal(t, 150, n)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, data, err := Load(filepath.Join("..", "..", "config", "screener.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, 20*time.Second, cfg.Run.HTTPTimeout)
	assert.Nil(t, cfg.Promoter.MaxPledgePercent)
	assert.Equal(t, Default().Technical, cfg.Technical)
}

func TestParse_MergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
universe:
  name: nifty50
  limit: 10
valuation:
  max_pe: 25
  max_ev_ebitda: null
run:
  throttle: false
  fundamentals_max_symbols: null
`))
	require.NoError(t, err)

	assert.Equal(t, "NIFTY50", cfg.Universe.Name)
	assert.Equal(t, 10, cfg.Universe.Limit)
	assert.Equal(t, 25.0, cfg.Valuation.MaxPE)
	assert.Equal(t, 5.0, cfg.Valuation.MinPE, "absent keys keep defaults")
	assert.Nil(t, cfg.Valuation.MaxEVEBITDA)
	assert.False(t, cfg.Run.Throttle)

	_, ok := cfg.Cap()
	assert.False(t, ok)
}

func TestParse_EmptyDocumentIsDefault(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Universe, cfg.Universe)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("valuation:\n  max_p: 3\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidFileKeepsBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("universe:\n  name: SENSEX\n"), 0o644))

	_, data, err := Load(path)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "universe.name", verr.Field)
	assert.NotEmpty(t, data)
}

func TestValidate(t *testing.T) {
	negative := -1

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"unknown index", func(c *Config) { c.Universe.Name = "SENSEX" }, "universe.name"},
		{"negative limit", func(c *Config) { c.Universe.Limit = -1 }, "universe.limit"},
		{"pe band inverted", func(c *Config) { c.Valuation.MinPE = 40 }, "valuation"},
		{"rsi band inverted", func(c *Config) { c.Technical.RSIMin = 80 }, "technical"},
		{"rsi out of range", func(c *Config) { c.Technical.RSIMax = 120 }, "technical"},
		{"zero batch", func(c *Config) { c.Run.BatchSize = 0 }, "run.batch_size"},
		{"zero timeout", func(c *Config) { c.Run.HTTPTimeout = 0 }, "run.http_timeout"},
		{"negative pause", func(c *Config) { c.Run.Pause = -time.Second }, "run.pause"},
		{"negative cap", func(c *Config) { c.Run.FundamentalsCap = &negative }, "run.fundamentals_max_symbols"},
		{"zero lookback", func(c *Config) { c.Run.LookbackDays = 0 }, "run.lookback_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := Validate(cfg)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCheck_Warnings(t *testing.T) {
	codes := func(ws []Warning) []string {
		out := make([]string, 0, len(ws))
		for _, w := range ws {
			out = append(out, w.Code)
		}
		return out
	}

	assert.Equal(t, []string{"PLEDGE_UNAVAILABLE"}, codes(Check(Default())))

	cfg := Default()
	cfg.Run.LookbackDays = 100
	cfg.Promoter.MaxPledgePercent = nil
	cfg.Run.Pause = 0
	assert.ElementsMatch(t, []string{"SHORT_LOOKBACK", "SHORT_PAUSE"}, codes(Check(cfg)))
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	h3, err := Hash(Default().WithUniverse("NIFTY50", 5))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
