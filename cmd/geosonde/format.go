package main

import (
	"fmt"
	"strings"

	"github.com/3ddruck12/geosonde/pkg/hydraulics"
	"github.com/3ddruck12/geosonde/pkg/pump"
	"github.com/3ddruck12/geosonde/pkg/sizing"
	"github.com/3ddruck12/geosonde/pkg/units"
	"github.com/3ddruck12/geosonde/pkg/validation"
)

func printReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.Field != "" {
				fmt.Printf("    -> %s = %v\n", e.Field, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			if e.ConflictWith != "" {
				fmt.Printf("    conflicts with: %s\n", e.ConflictWith)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.Field != "" {
				fmt.Printf("    -> %s = %v\n", w.Field, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func printSizing(name string, res *sizing.Result) {
	fmt.Printf("Borehole Field Sizing: %s\n", name)
	fmt.Println(strings.Repeat("=", 23+len(name)))
	fmt.Println()

	fmt.Printf("  Field:                %d x %.1f m = %.1f m total\n", res.Count, res.Depth, res.TotalLength)
	fmt.Printf("  Dominant side:        %s\n", res.DominantSide)
	fmt.Printf("  Ground temperature:   %.1f degC (mean over depth)\n", res.GroundTemp)
	fmt.Printf("  Borehole resistance:  %.3f mK/W\n", res.Resistances.Borehole())
	fmt.Printf("  Design flow:          %.2f m3/h\n", res.FlowM3h)
	fmt.Printf("  Iterations:           %d length, %d field adjustments\n", res.Iterations, res.CountAdjustments)
	fmt.Println()

	printSide(res.Heating)
	printSide(res.Cooling)

	fmt.Println("  Monthly mean fluid temperature (degC):")
	for m, label := range monthLabels {
		fmt.Printf("    %s %6.1f", label, res.MonthlyFluidTemp[m])
		if m%4 == 3 {
			fmt.Println()
		}
	}
}

func printSide(side *sizing.SideResult) {
	if side == nil {
		return
	}
	fmt.Printf("  Side: %s\n", side.Side)
	fmt.Printf("    Required length:    %.1f m\n", side.RequiredLength)
	fmt.Printf("    Reaction spread:    %.1f K\n", side.ReactionSpread)
	fmt.Printf("    Exit temperature:   %.1f degC\n", side.ExitTemp)
	fmt.Printf("    %-10s %8s %10s %10s %8s\n", "Scale", "g", "R [mK/W]", "Load [kW]", "dT [K]")
	for _, row := range []struct {
		label string
		c     sizing.Contribution
	}{
		{"base", side.Base},
		{"periodic", side.Periodic},
		{"peak", side.Peak},
	} {
		fmt.Printf("    %-10s %8.2f %10.3f %10.2f %8.2f\n",
			row.label, row.c.G, row.c.Resistance, units.WToKW(row.c.Load), row.c.DeltaT)
	}
	fmt.Println()
}

func printHydraulics(st *hydraulics.State) {
	fmt.Println("Hydraulics")
	fmt.Println("==========")
	fmt.Println()

	fmt.Printf("  Total flow:           %.2f m3/h over %d circuit(s)\n", st.FlowM3h, st.Circuits)
	fmt.Printf("  Circuit flow:         %.2f m3/h\n", st.CircuitFlowM3h)
	fmt.Printf("  Circuit length:       %.1f m\n", st.CircuitLength)
	fmt.Printf("  Velocity:             %.2f m/s\n", st.Velocity)
	fmt.Printf("  Reynolds:             %.0f (%s)\n", st.Reynolds, st.Regime)
	fmt.Println()

	fmt.Printf("  %-14s %12s %8s\n", "Component", "dp [mbar]", "share")
	for _, c := range st.Components {
		fmt.Printf("  %-14s %12.1f %7.0f%%\n", c.Name, units.PaToBar(c.Pressure)*1000, c.Share*100)
	}
	fmt.Printf("  %-14s %12.1f\n", "TOTAL", st.TotalBar()*1000)
	fmt.Println()

	fmt.Printf("  Pump head:            %.2f m\n", st.Head())
	fmt.Printf("  Hydraulic power:      %.1f W\n", st.HydraulicPower)
	fmt.Printf("  Electric power:       %.1f W\n", st.ElectricPower)

	for _, w := range st.Warnings {
		fmt.Printf("  ! %s\n", w)
	}
}

func printPumps(st *hydraulics.State, matches []pump.Match) {
	fmt.Printf("Pump Selection (%.2f m3/h at %.2f m head)\n", st.FlowM3h, st.Head())
	fmt.Println("==========================================")
	fmt.Println()

	fmt.Printf("  %-4s %-28s %6s %10s %9s %8s %9s\n",
		"Rank", "Model", "Score", "Envelope", "Power", "Drive", "Price")
	for i, m := range matches {
		drive := "fixed"
		if m.Model.Regulated {
			drive = "regulated"
		}
		fmt.Printf("  %-4d %-28s %6.1f %5.1fx%3.1fm %7.0f W %8s %7.0f EUR\n",
			i+1, m.Model.FullName(), m.Score, m.Model.MaxFlowM3h, m.Model.MaxHeadM,
			m.Model.PowerAvgW, drive, m.Model.PriceEUR)
	}
}

func printOperatingPoint(m pump.Model, op *hydraulics.OperatingPoint) {
	fmt.Printf("Operating point of %s\n", m.FullName())
	fmt.Printf("  Flow:                 %.2f m3/h\n", op.FlowM3h)
	fmt.Printf("  Head:                 %.2f m\n", op.Head)
	fmt.Printf("  Hydraulic power:      %.1f W\n", op.HydraulicPower)
	fmt.Printf("  Electric power:       %.1f W\n", op.ElectricPower)
}

func printForecast(f pump.Forecast) {
	fmt.Printf("Energy Forecast (%s drive, %d years)\n", f.Mode, pump.ProjectionYears)
	fmt.Printf("  Annual:               %.0f kWh, %.2f EUR\n", f.AnnualKWh, f.AnnualCostEUR)
	fmt.Printf("  Lifetime:             %.0f kWh, %.2f EUR\n", f.LifetimeKWh, f.LifetimeCost)

	if c := f.Regulated; c != nil {
		fmt.Println("  Regulated alternative:")
		fmt.Printf("    Annual:             %.0f kWh, %.2f EUR\n", c.AnnualKWh, c.AnnualCostEUR)
		fmt.Printf("    Savings:            %.2f EUR/year\n", c.SavingsAnnualEUR)
		if c.PaybackYears > 0 {
			fmt.Printf("    Premium payback:    %.1f years\n", c.PaybackYears)
		}
	}
}
