// Package config reads the solver settings file. Every key has a default,
// so a missing file or a partial file yields a complete configuration.
package config

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/3ddruck12/geosonde/pkg/hydraulics"
	"github.com/3ddruck12/geosonde/pkg/pump"
	"github.com/3ddruck12/geosonde/pkg/sizing"
)

// Settings is the tunable behaviour of the solvers, separate from the
// project data.
type Settings struct {
	LengthTolerance     float64
	MaxLengthIterations int
	MaxCountAdjustments int
	CountPolicy         string
	ProviderTimeout     time.Duration

	LaminarLimit     float64
	TurbulentLimit   float64
	HorizontalLength float64
	FittingsLossBar  float64
	PumpEfficiency   float64

	OperatingHours      float64
	PricePerKWh         float64
	RegulationFactor    float64
	RegulatedPremiumEUR float64
}

// Load reads settings from an ini file. A missing file is fine; every value
// falls back to its default. An empty path skips the file entirely.
func Load(path string) (Settings, error) {
	if path == "" {
		return loadFrom(ini.Empty()), nil
	}
	file, err := ini.LooseLoad(path)
	if err != nil {
		return Settings{}, err
	}
	return loadFrom(file), nil
}

func loadFrom(file *ini.File) Settings {
	s := Settings{
		LengthTolerance:     file.Section("solver").Key("LengthTolerance").MustFloat64(0.005),
		MaxLengthIterations: file.Section("solver").Key("MaxLengthIterations").MustInt(20),
		MaxCountAdjustments: file.Section("solver").Key("MaxCountAdjustments").MustInt(20),
		CountPolicy:         file.Section("solver").Key("CountPolicy").MustString(string(sizing.MinimizeCount)),
		ProviderTimeout:     file.Section("solver").Key("ProviderTimeout").MustDuration(0),

		LaminarLimit:     file.Section("hydraulics").Key("LaminarLimit").MustFloat64(2300),
		TurbulentLimit:   file.Section("hydraulics").Key("TurbulentLimit").MustFloat64(2500),
		HorizontalLength: file.Section("hydraulics").Key("HorizontalLength").MustFloat64(50),
		FittingsLossBar:  file.Section("hydraulics").Key("FittingsLossBar").MustFloat64(0.5),
		PumpEfficiency:   file.Section("hydraulics").Key("PumpEfficiency").MustFloat64(0.5),

		OperatingHours:      file.Section("energy").Key("OperatingHours").MustFloat64(1800),
		PricePerKWh:         file.Section("energy").Key("PricePerKWh").MustFloat64(0.30),
		RegulationFactor:    file.Section("energy").Key("RegulationFactor").MustFloat64(0.6),
		RegulatedPremiumEUR: file.Section("energy").Key("RegulatedPremiumEUR").MustFloat64(150),
	}

	switch sizing.CountPolicy(s.CountPolicy) {
	case sizing.MinimizeCount, sizing.PreserveDepth:
	default:
		log.WithFields(log.Fields{"policy": s.CountPolicy}).Warn("unknown count policy, using minimize-count")
		s.CountPolicy = string(sizing.MinimizeCount)
	}
	return s
}

// SizingConfig maps the settings onto the sizing solver.
func (s Settings) SizingConfig() sizing.Config {
	return sizing.Config{
		LengthTolerance:     s.LengthTolerance,
		MaxLengthIterations: s.MaxLengthIterations,
		MaxCountAdjustments: s.MaxCountAdjustments,
		Policy:              sizing.CountPolicy(s.CountPolicy),
		ProviderTimeout:     s.ProviderTimeout,
	}
}

// HydraulicOptions maps the settings onto the pressure-drop model.
func (s Settings) HydraulicOptions() hydraulics.Options {
	return hydraulics.Options{
		LaminarLimit:     s.LaminarLimit,
		TurbulentLimit:   s.TurbulentLimit,
		HorizontalLength: s.HorizontalLength,
		FittingsLossBar:  s.FittingsLossBar,
		PumpEfficiency:   s.PumpEfficiency,
	}
}

// ForecastOptions maps the settings onto the pump energy forecast.
func (s Settings) ForecastOptions() pump.ForecastOptions {
	return pump.ForecastOptions{
		OperatingHours:      s.OperatingHours,
		PricePerKWh:         s.PricePerKWh,
		RegulationFactor:    s.RegulationFactor,
		RegulatedPremiumEUR: s.RegulatedPremiumEUR,
	}
}
