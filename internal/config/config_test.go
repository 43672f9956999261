package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3ddruck12/geosonde/pkg/sizing"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.005, s.LengthTolerance)
	assert.Equal(t, 20, s.MaxLengthIterations)
	assert.Equal(t, string(sizing.MinimizeCount), s.CountPolicy)
	assert.Equal(t, 2300.0, s.LaminarLimit)
	assert.Equal(t, 0.30, s.PricePerKWh)
	assert.Zero(t, s.ProviderTimeout)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)
	assert.Equal(t, 20, s.MaxCountAdjustments)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geosonde.ini")
	content := "[solver]\nMaxLengthIterations = 40\nCountPolicy = preserve-depth\nProviderTimeout = 2s\n\n[energy]\nPricePerKWh = 0.42\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 40, s.MaxLengthIterations)
	assert.Equal(t, string(sizing.PreserveDepth), s.CountPolicy)
	assert.Equal(t, 2*time.Second, s.ProviderTimeout)
	assert.Equal(t, 0.42, s.PricePerKWh)
	// Untouched sections keep their defaults.
	assert.Equal(t, 2500.0, s.TurbulentLimit)
}

func TestLoadUnknownPolicyFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geosonde.ini")
	require.NoError(t, os.WriteFile(path, []byte("[solver]\nCountPolicy = drill-baby-drill\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, string(sizing.MinimizeCount), s.CountPolicy)
}

func TestSettingsMapping(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	cfg := s.SizingConfig()
	assert.Equal(t, sizing.MinimizeCount, cfg.Policy)
	assert.Equal(t, 20, cfg.MaxLengthIterations)

	opts := s.HydraulicOptions()
	assert.Equal(t, 2300.0, opts.LaminarLimit)
	assert.Equal(t, 0.5, opts.PumpEfficiency)

	fo := s.ForecastOptions()
	assert.Equal(t, 1800.0, fo.OperatingHours)
	assert.Equal(t, 150.0, fo.RegulatedPremiumEUR)
}
