package gfunction

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3ddruck12/geosonde/pkg/errs"
)

func singleBorehole() Layout {
	return Layout{Positions: [][2]float64{{0, 0}}, BoreholeRadius: 0.076}
}

func TestExpIntE1ReferenceValues(t *testing.T) {
	// Abramowitz & Stegun tabulated values.
	assert.InDelta(t, 1.8229, expIntE1(0.1), 2e-4)
	assert.InDelta(t, 0.2194, expIntE1(1.0), 2e-4)
	assert.InDelta(t, 0.001148, expIntE1(5.0), 2e-5)
}

func TestLineSourceMonotonicInTime(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	layout := singleBorehole()
	p := LineSource{}

	times := make([]float64, 50)
	for i := range times {
		times[i] = math.Pow(10, rng.Float64()*8-2) // 1e-2 .. 1e6
	}
	sort.Float64s(times)

	prev := -1.0
	for _, fo := range times {
		g, err := p.Value(context.Background(), layout, fo)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, g, prev, "g must not decrease (Fo=%g)", fo)
		prev = g
	}
}

func TestNeighboursRaiseResponse(t *testing.T) {
	p := LineSource{}
	single := singleBorehole()
	field := Layout{
		Positions:      [][2]float64{{0, 0}, {6, 0}, {12, 0}},
		BoreholeRadius: 0.076,
	}

	fo := Fourier(1e-6, 0.076, 10*365.25*24*3600)
	gSingle, err := p.Value(context.Background(), single, fo)
	require.NoError(t, err)
	gField, err := p.Value(context.Background(), field, fo)
	require.NoError(t, err)

	assert.Greater(t, gField, gSingle)
}

func TestLineSourceRejectsNonPositiveTime(t *testing.T) {
	p := LineSource{}
	_, err := p.Value(context.Background(), singleBorehole(), 0)
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCharacteristicTimesOrdering(t *testing.T) {
	base, periodic, peak := CharacteristicTimes(1e-6, 0.076)
	assert.Greater(t, base, periodic)
	assert.Greater(t, periodic, peak)
	assert.Greater(t, peak, 0.0)
}

func TestTableInterpolation(t *testing.T) {
	tab, err := NewTable([]float64{1, 10, 100}, []float64{2, 4, 6})
	require.NoError(t, err)

	g, err := tab.Value(context.Background(), Layout{}, 5.5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, g, 1e-9)

	_, err = tab.Value(context.Background(), Layout{}, 0.5)
	var oor *errs.OutOfRangeError
	assert.ErrorAs(t, err, &oor)
}

type slowProvider struct{ delay time.Duration }

func (s slowProvider) Value(ctx context.Context, _ Layout, _ float64) (float64, error) {
	select {
	case <-time.After(s.delay):
		return 1, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func TestTimeoutWrapper(t *testing.T) {
	slow := WithTimeout(slowProvider{delay: 200 * time.Millisecond}, 10*time.Millisecond)
	_, err := slow.Value(context.Background(), singleBorehole(), 1)
	var te *errs.TimeoutError
	require.ErrorAs(t, err, &te)

	fast := WithTimeout(LineSource{}, time.Second)
	g, err := fast.Value(context.Background(), singleBorehole(), 100)
	require.NoError(t, err)
	assert.Greater(t, g, 0.0)
}
