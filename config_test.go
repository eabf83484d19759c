package allocbench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "svg", cfg.Format)
}

func TestConfigValidate(t *testing.T) {
	for _, c := range []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"png upper case", func(c *Config) { c.Format = ".PNG" }, true},
		{"unknown format", func(c *Config) { c.Format = "bmp" }, false},
		{"same allocators", func(c *Config) { c.Candidate = c.Baseline }, false},
		{"empty allocator", func(c *Config) { c.Baseline = "" }, false},
		{"zero width", func(c *Config) { c.UnitWidth = 0 }, false},
		{"negative height", func(c *Config) { c.ProgramHeight = -1 }, false},
		{"no timeout", func(c *Config) { c.Timeout = 0 }, false},
	} {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.modify(&cfg)
			err := cfg.Validate()
			if c.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestConfigValidateNormalizesFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = ".PDF"
	require.NoError(t, cfg.Validate())
	require.Equal(t, "pdf", cfg.Format)
}

func TestRunIDAt(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 8, 9, 0, time.FixedZone("CET", 3600))
	require.Equal(t, "20240305T060809Z", RunIDAt(at))
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		logger, err := NewLogger(verbose)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}
