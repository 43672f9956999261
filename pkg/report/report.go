// Package report exports the results of a design run as CSV tables: a
// key/value summary, the 12-month fluid temperature series, and the ranked
// pump shortlist.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/3ddruck12/geosonde/pkg/hydraulics"
	"github.com/3ddruck12/geosonde/pkg/load"
	"github.com/3ddruck12/geosonde/pkg/pump"
	"github.com/3ddruck12/geosonde/pkg/sizing"
	"github.com/3ddruck12/geosonde/pkg/units"
)

// Summary bundles everything one run produced. Nil sections are skipped in
// the export.
type Summary struct {
	Project        string
	Load           load.Profile
	Sizing         *sizing.Result
	Hydraulics     *hydraulics.State
	OperatingPoint *hydraulics.OperatingPoint
	Pumps          []pump.Match
	Forecast       *pump.Forecast
}

type resultRow struct {
	Quantity string  `csv:"quantity"`
	Value    float64 `csv:"value"`
	Unit     string  `csv:"unit"`
}

type monthRow struct {
	Month         string  `csv:"month"`
	FluidTemp     float64 `csv:"fluid_temp_c"`
	HeatingLoadKW float64 `csv:"heating_ground_kw"`
	CoolingLoadKW float64 `csv:"cooling_ground_kw"`
}

type pumpRow struct {
	Rank     int     `csv:"rank"`
	Model    string  `csv:"model"`
	Score    float64 `csv:"score"`
	MaxFlow  float64 `csv:"max_flow_m3h"`
	MaxHead  float64 `csv:"max_head_m"`
	Price    float64 `csv:"price_eur"`
	PowerAvg float64 `csv:"power_avg_w"`
}

var monthNames = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// SummaryCSV renders the key/value table of the run.
func SummaryCSV(s Summary) (string, error) {
	var rows []resultRow
	add := func(quantity string, value float64, unit string) {
		rows = append(rows, resultRow{Quantity: quantity, Value: value, Unit: unit})
	}

	if r := s.Sizing; r != nil {
		add("total_length", r.TotalLength, "m")
		add("borehole_depth", r.Depth, "m")
		add("borehole_count", float64(r.Count), "")
		add("ground_temperature", r.GroundTemp, "degC")
		add("borehole_resistance", r.Resistances.Borehole(), "K*m/W")
		add("design_flow", r.FlowM3h, "m3/h")
		add("iterations", float64(r.Iterations), "")
		add("count_adjustments", float64(r.CountAdjustments), "")
		if r.Heating != nil {
			add("heating_required_length", r.Heating.RequiredLength, "m")
			add("heating_exit_temperature", r.Heating.ExitTemp, "degC")
		}
		if r.Cooling != nil {
			add("cooling_required_length", r.Cooling.RequiredLength, "m")
			add("cooling_exit_temperature", r.Cooling.ExitTemp, "degC")
		}
	}

	if st := s.Hydraulics; st != nil {
		add("circuit_flow", st.CircuitFlowM3h, "m3/h")
		add("flow_velocity", st.Velocity, "m/s")
		add("reynolds", st.Reynolds, "")
		add("pressure_drop", st.TotalBar(), "bar")
		add("pump_head", st.Head(), "m")
		add("hydraulic_power", st.HydraulicPower, "W")
		add("electric_power", st.ElectricPower, "W")
	}

	if op := s.OperatingPoint; op != nil {
		add("operating_flow", op.FlowM3h, "m3/h")
		add("operating_head", op.Head, "m")
		add("operating_electric_power", op.ElectricPower, "W")
	}

	if f := s.Forecast; f != nil {
		add("pump_energy_annual", f.AnnualKWh, "kWh")
		add("pump_cost_annual", f.AnnualCostEUR, "EUR")
		add("pump_energy_lifetime", f.LifetimeKWh, "kWh")
	}

	return gocsv.MarshalString(&rows)
}

// MonthlyCSV renders the fluid temperature and ground load per month.
func MonthlyCSV(res *sizing.Result, profile load.Profile) (string, error) {
	heating := hasSide(profile, load.Heating)
	cooling := hasSide(profile, load.Cooling)

	rows := make([]monthRow, 12)
	for m := 0; m < 12; m++ {
		row := monthRow{Month: monthNames[m], FluidTemp: res.MonthlyFluidTemp[m]}
		if heating {
			row.HeatingLoadKW = units.WToKW(profile.MonthlyGroundLoad(load.Heating, m))
		}
		if cooling {
			row.CoolingLoadKW = units.WToKW(profile.MonthlyGroundLoad(load.Cooling, m))
		}
		rows[m] = row
	}
	return gocsv.MarshalString(&rows)
}

// PumpsCSV renders the ranked shortlist.
func PumpsCSV(matches []pump.Match) (string, error) {
	rows := make([]pumpRow, len(matches))
	for i, m := range matches {
		rows[i] = pumpRow{
			Rank:     i + 1,
			Model:    m.Model.FullName(),
			Score:    m.Score,
			MaxFlow:  m.Model.MaxFlowM3h,
			MaxHead:  m.Model.MaxHeadM,
			Price:    m.Model.PriceEUR,
			PowerAvg: m.Model.PowerAvgW,
		}
	}
	return gocsv.MarshalString(&rows)
}

// WriteFiles exports the summary into a directory: summary.csv always,
// monthly.csv when sizing ran, pumps.csv when the shortlist is non-empty.
func WriteFiles(dir string, s Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	files := map[string]func() (string, error){
		"summary.csv": func() (string, error) { return SummaryCSV(s) },
	}
	if s.Sizing != nil {
		files["monthly.csv"] = func() (string, error) { return MonthlyCSV(s.Sizing, s.Load) }
	}
	if len(s.Pumps) > 0 {
		files["pumps.csv"] = func() (string, error) { return PumpsCSV(s.Pumps) }
	}

	for name, render := range files {
		content, err := render()
		if err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.WithFields(log.Fields{"path": path}).Debug("report written")
	}
	return nil
}

func hasSide(p load.Profile, side load.Side) bool {
	for _, s := range p.Active() {
		if s == side {
			return true
		}
	}
	return false
}
