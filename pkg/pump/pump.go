// Package pump carries the circulation pump catalogue and ranks models
// against a solved hydraulic design point. The catalogue is a flat table of
// wet-rotor circulators; ranking rewards pumps that run at 60 to 80 percent
// of their envelope, the band where the efficiency curves of these drives
// peak.
package pump

import (
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/3ddruck12/geosonde/pkg/hydraulics"
)

// safetyFactor is the margin a pump must hold above the design point.
const safetyFactor = 1.1

// Model is one catalogue circulator.
type Model struct {
	Manufacturer    string `csv:"manufacturer"`
	Name            string `csv:"model"`
	Series          string `csv:"series"`
	EfficiencyClass string `csv:"efficiency_class"`
	// Regulated marks a speed-controlled drive that follows the system
	// curve instead of running flat out.
	Regulated bool `csv:"regulated"`
	// MaxFlowM3h and MaxHeadM span the hydraulic envelope.
	MaxFlowM3h float64 `csv:"max_flow_m3h"`
	MaxHeadM   float64 `csv:"max_head_m"`
	// Electric draw: band ends and the typical average.
	PowerMinW float64 `csv:"power_min_w"`
	PowerMaxW float64 `csv:"power_max_w"`
	PowerAvgW float64 `csv:"power_avg_w"`
	// MinPowerKW and MaxPowerKW bound the heat pump sizes the manufacturer
	// lists the model for.
	MinPowerKW float64 `csv:"min_power_kw"`
	MaxPowerKW float64 `csv:"max_power_kw"`
	PriceEUR   float64 `csv:"price_eur"`
}

// FullName is manufacturer plus model.
func (m Model) FullName() string {
	return m.Manufacturer + " " + m.Name
}

// Curve approximates the model's characteristic as a parabola through the
// shutoff head and the maximum flow.
func (m Model) Curve() hydraulics.Curve {
	return hydraulics.Curve{MaxFlowM3h: m.MaxFlowM3h, MaxHead: m.MaxHeadM}
}

// SuitableForPower reports whether the heat pump size falls into the band
// the model is listed for.
func (m Model) SuitableForPower(heatPumpKW float64) bool {
	return m.MinPowerKW <= heatPumpKW && heatPumpKW <= m.MaxPowerKW
}

// CoversDesignPoint reports whether the envelope holds the design point with
// the safety margin on both axes.
func (m Model) CoversDesignPoint(flowM3h, headM float64) bool {
	return flowM3h*safetyFactor <= m.MaxFlowM3h && headM*safetyFactor <= m.MaxHeadM
}

// SuitabilityScore rates the model for a design point on a 0 to 100 scale.
// Flow and head utilisation score full marks between 60 and 80 percent and
// fall off linearly outside; the heat pump band contributes a flat pass or
// fail share, and class A models get a bonus.
func (m Model) SuitabilityScore(flowM3h, headM, heatPumpKW float64) float64 {
	if heatPumpKW <= 0 {
		heatPumpKW = 10
	}

	utilisation := func(value, max float64) float64 {
		if max <= 0 {
			return 0
		}
		return value / max
	}
	bandScore := func(u float64) float64 {
		if u >= 0.6 && u <= 0.8 {
			return 100
		}
		return math.Max(0, 100-math.Abs(u-0.7)*200)
	}

	flowScore := bandScore(utilisation(flowM3h, m.MaxFlowM3h))
	headScore := bandScore(utilisation(headM, m.MaxHeadM))

	powerScore := 50.0
	if m.SuitableForPower(heatPumpKW) {
		powerScore = 100
	}

	bonus := 0.0
	if m.EfficiencyClass == "A" {
		bonus = 10
	}

	return math.Min(100, flowScore*0.4+headScore*0.4+powerScore*0.2+bonus)
}

// Match is one ranked search result.
type Match struct {
	Model Model
	Score float64
}

// Filter narrows a catalogue search.
type Filter struct {
	// Regulated restricts to speed-regulated or fixed-speed models; nil
	// admits both.
	Regulated *bool
	// MaxResults caps the ranked list; zero means five.
	MaxResults int
}

//go:embed pumps.csv
var pumpsCSV string

// Catalogue is the read-only pump table, loaded once at start.
type Catalogue struct {
	models []Model
	byName map[string]Model
}

// LoadCatalogue parses the embedded pump table.
func LoadCatalogue() (*Catalogue, error) {
	var rows []Model
	if err := gocsv.UnmarshalString(pumpsCSV, &rows); err != nil {
		return nil, fmt.Errorf("parsing pump table: %w", err)
	}
	c := &Catalogue{models: rows, byName: make(map[string]Model, len(rows))}
	for _, m := range rows {
		c.byName[strings.ToLower(m.FullName())] = m
	}
	return c, nil
}

// All returns the catalogue in file order.
func (c *Catalogue) All() []Model {
	out := make([]Model, len(c.models))
	copy(out, c.models)
	return out
}

// Get resolves a model by its full name, case-insensitive.
func (c *Catalogue) Get(fullName string) (Model, error) {
	m, ok := c.byName[strings.ToLower(strings.TrimSpace(fullName))]
	if !ok {
		return Model{}, fmt.Errorf("unknown pump %q", fullName)
	}
	return m, nil
}

// Manufacturers lists the distinct makers, sorted.
func (c *Catalogue) Manufacturers() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range c.models {
		if !seen[m.Manufacturer] {
			seen[m.Manufacturer] = true
			out = append(out, m.Manufacturer)
		}
	}
	sort.Strings(out)
	return out
}

// Search ranks the models that cover the design point, best first. Ties are
// broken by full name so repeated runs list the same order.
func (c *Catalogue) Search(flowM3h, headM, heatPumpKW float64, f Filter) []Match {
	maxResults := f.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	var matches []Match
	for _, m := range c.models {
		if f.Regulated != nil && m.Regulated != *f.Regulated {
			continue
		}
		if !m.CoversDesignPoint(flowM3h, headM) {
			continue
		}
		matches = append(matches, Match{Model: m, Score: m.SuitabilityScore(flowM3h, headM, heatPumpKW)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Model.FullName() < matches[j].Model.FullName()
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	log.WithFields(log.Fields{
		"flow_m3h": flowM3h,
		"head_m":   headM,
		"matches":  len(matches),
	}).Debug("pump catalogue searched")

	return matches
}
