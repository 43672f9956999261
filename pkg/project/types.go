package project

// Spec is the top-level project file. Geometry the driller quotes in
// millimetres stays in millimetres here; the resolver converts to SI.
type Spec struct {
	SpecVersion string       `yaml:"spec_version" json:"spec_version"`
	Name        string       `yaml:"name" json:"name"`
	Site        SiteDef      `yaml:"site" json:"site"`
	Borefield   BorefieldDef `yaml:"borefield" json:"borefield"`
	Pipe        PipeDef      `yaml:"pipe" json:"pipe"`
	Fluid       FluidDef     `yaml:"fluid" json:"fluid"`
	Demand      DemandDef    `yaml:"demand" json:"demand"`
	Operation   OperationDef `yaml:"operation" json:"operation"`
	Pump        PumpDef      `yaml:"pump" json:"pump"`
}

// SiteDef describes the ground. Either a soil class from the catalogue or
// explicit thermal values; explicit values win over the class.
type SiteDef struct {
	SoilType string `yaml:"soil_type" json:"soil_type"`
	// Conductivity in W/(m*K), HeatCapacityMJ in MJ/(m3*K).
	Conductivity   float64 `yaml:"conductivity" json:"conductivity"`
	HeatCapacityMJ float64 `yaml:"heat_capacity_mj" json:"heat_capacity_mj"`
	SurfaceTemp    float64 `yaml:"surface_temp" json:"surface_temp"`
	Gradient       float64 `yaml:"gradient" json:"gradient"`
}

type BorefieldDef struct {
	DiameterMM float64 `yaml:"diameter_mm" json:"diameter_mm"`
	Depth      float64 `yaml:"depth" json:"depth"`
	// MaxDepth nil defaults to the 400 m drilling limit; an explicit 0
	// lifts the cap.
	MaxDepth          *float64 `yaml:"max_depth" json:"max_depth"`
	Count             int      `yaml:"count" json:"count"`
	Spacing           float64  `yaml:"spacing" json:"spacing"`
	Shape             string   `yaml:"shape" json:"shape"`
	GroutConductivity float64  `yaml:"grout_conductivity" json:"grout_conductivity"`
}

// PipeDef selects the probe pipework: a catalogue series by designation, or
// explicit dimensions when the series is blank.
type PipeDef struct {
	Series       string  `yaml:"series" json:"series"`
	Arrangement  string  `yaml:"arrangement" json:"arrangement"`
	OuterMM      float64 `yaml:"outer_mm" json:"outer_mm"`
	WallMM       float64 `yaml:"wall_mm" json:"wall_mm"`
	Conductivity float64 `yaml:"conductivity" json:"conductivity"`
	ShankMM      float64 `yaml:"shank_mm" json:"shank_mm"`
}

// FluidDef selects the brine. Pure water is family "water" with zero
// concentration; glycol families default to 25 vol%.
type FluidDef struct {
	Family        string  `yaml:"family" json:"family"`
	Concentration float64 `yaml:"concentration" json:"concentration"`
	Table         string  `yaml:"table" json:"table"`
}

type DemandDef struct {
	AnnualHeatingKWh float64 `yaml:"annual_heating_kwh" json:"annual_heating_kwh"`
	AnnualCoolingKWh float64 `yaml:"annual_cooling_kwh" json:"annual_cooling_kwh"`
	PeakHeatingKW    float64 `yaml:"peak_heating_kw" json:"peak_heating_kw"`
	PeakCoolingKW    float64 `yaml:"peak_cooling_kw" json:"peak_cooling_kw"`
	FullLoadHours    float64 `yaml:"full_load_hours" json:"full_load_hours"`
	COP              float64 `yaml:"cop" json:"cop"`
	EER              float64 `yaml:"eer" json:"eer"`
	// Occupants adds the VDI 2067 hot-water demand on top of the space
	// heating.
	Occupants int `yaml:"occupants" json:"occupants"`
	// Profile names a monthly distribution template; explicit factor lists
	// override it.
	Profile        string    `yaml:"profile" json:"profile"`
	MonthlyHeating []float64 `yaml:"monthly_heating" json:"monthly_heating"`
	MonthlyCooling []float64 `yaml:"monthly_cooling" json:"monthly_cooling"`
}

type OperationDef struct {
	// MinFluidTemp nil defaults to -2 degC.
	MinFluidTemp  *float64 `yaml:"min_fluid_temp" json:"min_fluid_temp"`
	MaxFluidTemp  float64  `yaml:"max_fluid_temp" json:"max_fluid_temp"`
	DeltaT        float64  `yaml:"delta_t" json:"delta_t"`
	MeanFluidTemp float64  `yaml:"mean_fluid_temp" json:"mean_fluid_temp"`
	FlowM3h       float64  `yaml:"flow_m3h" json:"flow_m3h"`
	Circuits      int      `yaml:"circuits" json:"circuits"`
}

type PumpDef struct {
	// Regulated nil accepts both speed-regulated and fixed-speed models.
	Regulated      *bool   `yaml:"regulated" json:"regulated"`
	OperatingHours float64 `yaml:"operating_hours" json:"operating_hours"`
	PricePerKWh    float64 `yaml:"price_per_kwh" json:"price_per_kwh"`
	MaxResults     int     `yaml:"max_results" json:"max_results"`
}
