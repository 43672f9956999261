package pump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3ddruck12/geosonde/pkg/errs"
)

func mustCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	c, err := LoadCatalogue()
	require.NoError(t, err)
	return c
}

func TestCatalogueLoads(t *testing.T) {
	c := mustCatalogue(t)
	assert.GreaterOrEqual(t, len(c.All()), 10)
	assert.Contains(t, c.Manufacturers(), "Grundfos")
	assert.Contains(t, c.Manufacturers(), "Wilo")

	m, err := c.Get("grundfos alpha2 25-60")
	require.NoError(t, err)
	assert.True(t, m.Regulated)
	assert.Equal(t, 6.0, m.MaxHeadM)

	_, err = c.Get("Acme TurboFlow 9000")
	assert.Error(t, err)
}

func TestCoversDesignPointMargin(t *testing.T) {
	m := Model{MaxFlowM3h: 3.5, MaxHeadM: 6}
	assert.True(t, m.CoversDesignPoint(3.0, 5.0))
	// 3.2 m3/h needs 3.52 with the margin, just over the envelope.
	assert.False(t, m.CoversDesignPoint(3.2, 5.0))
	assert.False(t, m.CoversDesignPoint(3.0, 5.5))
}

func TestSuitabilityScoreBands(t *testing.T) {
	m := Model{MaxFlowM3h: 4, MaxHeadM: 8, MinPowerKW: 6, MaxPowerKW: 14, EfficiencyClass: "A"}

	// 0.8 and 0.6875 utilisation, power band hit, class bonus: capped.
	assert.InDelta(t, 100, m.SuitabilityScore(3.2, 5.5, 11), 1e-9)

	// Half empty on both axes: 60 points each band, no power-band hit.
	m2 := Model{MaxFlowM3h: 8, MaxHeadM: 11, MinPowerKW: 20, MaxPowerKW: 60, EfficiencyClass: "C"}
	want := 60*0.4 + 60*0.4 + 50*0.2
	assert.InDelta(t, want, m2.SuitabilityScore(4, 5.5, 11), 1e-9)

	// Grossly oversized envelope scores zero on flow.
	m3 := Model{MaxFlowM3h: 40, MaxHeadM: 8, MinPowerKW: 6, MaxPowerKW: 14}
	s := m3.SuitabilityScore(3.2, 5.5, 11)
	assert.Less(t, s, 70.0)
}

// The 11 kW reference search: 3.2 m3/h at 5.5 m. Several class A models sit
// right in their sweet spot and top the list.
func TestSearchRanking(t *testing.T) {
	c := mustCatalogue(t)

	matches := c.Search(3.2, 5.5, 11, Filter{})
	require.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), 5)

	assert.InDelta(t, 100, matches[0].Score, 1e-9)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	for _, m := range matches {
		assert.True(t, m.Model.CoversDesignPoint(3.2, 5.5))
	}
}

func TestSearchFixedSpeedOnly(t *testing.T) {
	c := mustCatalogue(t)

	fixed := false
	matches := c.Search(3.2, 5.5, 11, Filter{Regulated: &fixed})
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.False(t, m.Model.Regulated)
	}
	assert.Equal(t, "Grundfos UPS 25-80", matches[0].Model.FullName())
}

func TestSearchDeterministicOrder(t *testing.T) {
	c := mustCatalogue(t)
	a := c.Search(3.2, 5.5, 11, Filter{MaxResults: 10})
	b := c.Search(3.2, 5.5, 11, Filter{MaxResults: 10})
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Model.FullName(), b[i].Model.FullName())
	}
}

func TestEnergyForecastConstant(t *testing.T) {
	f, err := EnergyForecast(100, Constant, ForecastOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 180.0, f.AnnualKWh, 1e-9)
	assert.InDelta(t, 54.0, f.AnnualCostEUR, 1e-9)
	assert.InDelta(t, f.AnnualKWh*10, f.LifetimeKWh, 1e-9)
	assert.InDelta(t, f.AnnualCostEUR*10, f.LifetimeCost, 1e-9)

	require.NotNil(t, f.Regulated)
	assert.Less(t, f.Regulated.AnnualKWh, f.AnnualKWh)
	assert.Greater(t, f.Regulated.SavingsAnnualEUR, 0.0)
	assert.Greater(t, f.Regulated.PaybackYears, 0.0)
}

func TestEnergyForecastRegulated(t *testing.T) {
	constant, err := EnergyForecast(100, Constant, ForecastOptions{})
	require.NoError(t, err)
	regulated, err := EnergyForecast(100, Regulated, ForecastOptions{RegulationFactor: 0.55})
	require.NoError(t, err)

	assert.Less(t, regulated.AnnualKWh, constant.AnnualKWh)
	assert.InDelta(t, 180.0*0.55, regulated.AnnualKWh, 1e-9)
	assert.Nil(t, regulated.Regulated)
}

func TestEnergyForecastRejectsZeroPower(t *testing.T) {
	_, err := EnergyForecast(0, Constant, ForecastOptions{})
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)
}
