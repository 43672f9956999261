package pump

import (
	"github.com/3ddruck12/geosonde/pkg/errs"
)

// CurveMode is how the circulator is driven over the season.
type CurveMode string

const (
	// Constant runs the pump flat out whenever the heat pump runs.
	Constant CurveMode = "constant"
	// Regulated follows the system curve with a variable-speed drive.
	Regulated CurveMode = "regulated"
)

// ProjectionYears is the horizon of the lifetime figures.
const ProjectionYears = 10

// ForecastOptions tune the energy projection. Zero values select the
// defaults below.
type ForecastOptions struct {
	// OperatingHours per year the circulator actually runs.
	OperatingHours float64
	// PricePerKWh of household electricity.
	PricePerKWh float64
	// RegulationFactor is the share of the full-power draw a
	// speed-regulated drive averages over the season.
	RegulationFactor float64
	// RegulatedPremiumEUR is the typical purchase premium of a regulated
	// model, the basis of the payback figure.
	RegulatedPremiumEUR float64
}

func (o ForecastOptions) withDefaults() ForecastOptions {
	if o.OperatingHours == 0 {
		o.OperatingHours = 1800
	}
	if o.PricePerKWh == 0 {
		o.PricePerKWh = 0.30
	}
	if o.RegulationFactor == 0 {
		o.RegulationFactor = 0.6
	}
	if o.RegulatedPremiumEUR == 0 {
		o.RegulatedPremiumEUR = 150
	}
	return o
}

// Comparison is the regulated-drive alternative inside a constant-mode
// forecast.
type Comparison struct {
	AnnualKWh        float64
	AnnualCostEUR    float64
	SavingsAnnualEUR float64
	// PaybackYears recovers the purchase premium from the savings.
	PaybackYears float64
}

// Forecast is the projected electricity use of one circulator.
type Forecast struct {
	Mode           CurveMode
	AnnualKWh      float64
	AnnualCostEUR  float64
	LifetimeKWh    float64
	LifetimeCost   float64
	// Regulated holds the variable-speed comparison; set only when the
	// forecast itself runs in constant mode.
	Regulated *Comparison
}

// EnergyForecast projects the draw of a circulator with the given electric
// power over the horizon. Constant mode includes the regulated alternative
// so a planner sees what the premium buys.
func EnergyForecast(powerW float64, mode CurveMode, opts ForecastOptions) (Forecast, error) {
	opts = opts.withDefaults()
	if powerW <= 0 {
		return Forecast{}, &errs.ValidationError{Field: "pump.power", Value: powerW, Reason: "must be positive"}
	}

	annual := powerW * opts.OperatingHours / 1000
	if mode == Regulated {
		annual *= opts.RegulationFactor
	}
	cost := annual * opts.PricePerKWh

	f := Forecast{
		Mode:          mode,
		AnnualKWh:     annual,
		AnnualCostEUR: cost,
		LifetimeKWh:   annual * ProjectionYears,
		LifetimeCost:  cost * ProjectionYears,
	}

	if mode == Constant {
		regKWh := annual * opts.RegulationFactor
		savings := (annual - regKWh) * opts.PricePerKWh
		cmp := &Comparison{
			AnnualKWh:        regKWh,
			AnnualCostEUR:    regKWh * opts.PricePerKWh,
			SavingsAnnualEUR: savings,
		}
		if savings > 0 {
			cmp.PaybackYears = opts.RegulatedPremiumEUR / savings
		}
		f.Regulated = cmp
	}

	return f, nil
}
