package borehole

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/pipe"
)

func testField() Configuration {
	return Configuration{
		Diameter:          0.152,
		Depth:             100,
		Count:             2,
		Spacing:           6,
		Shape:             Line,
		GroutConductivity: 1.3,
		MaxDepth:          100,
	}
}

func TestTotalLength(t *testing.T) {
	assert.InDelta(t, 200, testField().TotalLength(), 1e-9)
}

func TestValidateDepthAboveMaximum(t *testing.T) {
	f := testField()
	f.Depth = 120
	var ve *errs.ValidationError
	assert.ErrorAs(t, f.Validate(), &ve)
}

func TestValidateMultiBoreholeNeedsSpacing(t *testing.T) {
	f := testField()
	f.Spacing = 0
	assert.Error(t, f.Validate())

	f.Count = 1
	assert.NoError(t, f.Validate())
}

func TestPipePositionsSingleU(t *testing.T) {
	f := testField()
	p := pipe.Configuration{Type: pipe.SingleU, OuterDiameter: 0.032, WallThickness: 0.003, Conductivity: 0.42, ShankSpacing: 0.052}

	pos, err := f.PipePositions(p)
	require.NoError(t, err)
	require.Len(t, pos, 2)
	assert.InDelta(t, -0.026, pos[0][0], 1e-12)
	assert.InDelta(t, 0.026, pos[1][0], 1e-12)
}

func TestPipePositionsDoubleU(t *testing.T) {
	f := testField()
	p := pipe.Configuration{Type: pipe.DoubleU, OuterDiameter: 0.032, WallThickness: 0.003, Conductivity: 0.42, ShankSpacing: 0.052}

	pos, err := f.PipePositions(p)
	require.NoError(t, err)
	assert.Len(t, pos, 4)
}

func TestPipePositionsShankBeyondBoreWall(t *testing.T) {
	f := testField()
	p := pipe.Configuration{Type: pipe.SingleU, OuterDiameter: 0.032, WallThickness: 0.003, Conductivity: 0.42, ShankSpacing: 0.140}

	_, err := f.PipePositions(p)
	var ge *errs.GeometryError
	assert.ErrorAs(t, err, &ge)
}

func TestFieldPositionsCounts(t *testing.T) {
	for _, shape := range []Shape{Line, LShape, UShape, Rectangle} {
		f := testField()
		f.Shape = shape
		f.Count = 5
		assert.Len(t, f.FieldPositions(), 5, "shape %s", shape)
	}
}

func TestFieldPositionsDistinct(t *testing.T) {
	for _, shape := range []Shape{Line, LShape, UShape, Rectangle} {
		for count := 1; count <= 9; count++ {
			f := testField()
			f.Shape = shape
			f.Count = count
			pos := f.FieldPositions()
			require.Len(t, pos, count, "shape %s count %d", shape, count)
			seen := map[[2]float64]bool{}
			for _, p := range pos {
				assert.False(t, seen[p], "shape %s count %d repeats %v", shape, count, p)
				seen[p] = true
			}
		}
	}
}

func TestFieldPositionsLineSpacing(t *testing.T) {
	f := testField()
	f.Count = 3
	pos := f.FieldPositions()
	assert.InDelta(t, 6, pos[1][0]-pos[0][0], 1e-9)
	assert.InDelta(t, 6, pos[2][0]-pos[1][0], 1e-9)
}
