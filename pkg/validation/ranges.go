package validation

import "fmt"

// ParameterRange is the permitted interval of one input parameter, in the
// unit the parameter is usually entered in.
type ParameterRange struct {
	// Label is the display name.
	Label string
	Unit  string
	// Min and Max are inclusive bounds.
	Min, Max float64
	// Default is the value a blank field resolves to.
	Default float64
	// Note carries a hint about typical values.
	Note string
}

// Contains reports whether a value lies inside the inclusive interval.
func (p ParameterRange) Contains(v float64) bool {
	return v >= p.Min && v <= p.Max
}

// Interval renders the bounds for messages, e.g. "10-400 m".
func (p ParameterRange) Interval() string {
	return fmt.Sprintf("%g-%g %s", p.Min, p.Max, p.Unit)
}

// Ranges holds the permitted interval per parameter key. Geometry is keyed
// in millimetres and loads in the commercial units (MWh/a, kW) because that
// is how the values arrive from project files.
var Ranges = map[string]ParameterRange{
	"borehole_depth": {
		"borehole depth", "m", 10, 400, 100,
		"typically 50-250 m, 400 m only for deep installations"},
	"borehole_diameter": {
		"borehole diameter", "mm", 100, 300, 152,
		"152 mm (6 inch) is the common rig size"},
	"num_boreholes": {
		"borehole count", "", 1, 50, 1, ""},
	"borehole_spacing": {
		"borehole spacing", "m", 3, 30, 6,
		"VDI 4640 recommends at least 6 m"},

	"pipe_outer_diameter": {
		"pipe outer diameter", "mm", 20, 63, 32, ""},
	"pipe_thickness": {
		"pipe wall thickness", "mm", 1.5, 6.0, 2.9, ""},
	"shank_spacing": {
		"shank spacing", "mm", 20, 120, 52, ""},
	"pipe_thermal_conductivity": {
		"pipe conductivity", "W/(m*K)", 0.1, 2.0, 0.42,
		"PE-HD 0.42, PE-Xa 0.38, PP 0.22"},

	"ground_thermal_conductivity": {
		"ground conductivity", "W/(m*K)", 0.5, 6.0, 2.0,
		"sand 1.5-2.5, granite 2.5-4.0"},
	"ground_heat_capacity": {
		"volumetric heat capacity", "MJ/(m3*K)", 1.0, 4.5, 2.4, ""},
	"undisturbed_ground_temp": {
		"undisturbed ground temperature", "degC", 4, 25, 10,
		"8-12 degC across most of central Europe"},
	"geothermal_gradient": {
		"geothermal gradient", "K/m", 0.01, 0.06, 0.03, ""},
	"grout_thermal_conductivity": {
		"grout conductivity", "W/(m*K)", 0.4, 3.0, 1.3,
		"plain bentonite ~0.8, thermally enhanced ~2.0"},

	"heat_pump_cop": {
		"heat pump COP", "", 2.0, 8.0, 4.0,
		"brine-to-water units typically reach 3.5-5.0"},
	"heat_pump_eer": {
		"heat pump EER", "", 2.0, 8.0, 4.0, ""},
	"heat_pump_power": {
		"heat pump power", "kW", 1.0, 500.0, 8.0, ""},

	"annual_heating_demand": {
		"annual heating demand", "MWh/a", 0, 2000, 12, ""},
	"annual_cooling_demand": {
		"annual cooling demand", "MWh/a", 0, 2000, 0, ""},
	"peak_heating_load": {
		"peak heating load", "kW", 0, 500, 6, ""},
	"peak_cooling_load": {
		"peak cooling load", "kW", 0, 500, 0, ""},

	"min_fluid_temperature": {
		"minimum fluid temperature", "degC", -10, 10, -2,
		"mind the freeze limit of the brine"},
	"max_fluid_temperature": {
		"maximum fluid temperature", "degC", 10, 40, 30, ""},
	"delta_t_fluid": {
		"fluid temperature spread", "K", 1, 10, 3,
		"typically 3-5 K"},
	"antifreeze_concentration": {
		"antifreeze concentration", "vol%", 0, 40, 25, ""},
	"num_circuits": {
		"circuit count", "", 1, 50, 1, ""},
	"fluid_flow_rate": {
		"flow rate", "m3/h", 0.01, 50, 1, ""},
}

// Default returns the default value of a parameter key, zero for unknown
// keys.
func Default(key string) float64 {
	return Ranges[key].Default
}

// CheckValue validates one value against its parameter range and appends a
// range error to the report when it falls outside. Unknown keys pass.
func CheckValue(r *Report, key string, value float64) {
	p, ok := Ranges[key]
	if !ok || p.Contains(value) {
		return
	}
	r.AddError(Result{
		Level:       LevelRange,
		Message:     fmt.Sprintf("%s %g %s is outside the permitted range %s", p.Label, value, p.Unit, p.Interval()),
		Field:       key,
		ActualValue: value,
		Expected:    p.Interval(),
	})
}
