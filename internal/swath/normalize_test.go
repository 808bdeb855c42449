package swath_test

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

// dense2 builds a 2-D array from row slices.
func dense2(t *testing.T, rows [][]float64) *sparse.DenseArray {
	t.Helper()
	out := sparse.ZerosDense(len(rows), len(rows[0]))
	for r, row := range rows {
		for c, v := range row {
			out.Set(v, r, c)
		}
	}
	return out
}

func TestNormalize_MaskingWithSentinel(t *testing.T) {
	// Elements within half a unit of the sentinel mask, outside is untouched.
	v := swath.SourceVariable{
		Name: "TSurf",
		Data: dense2(t, [][]float64{
			{-999.0, -999.4, -998.6},
			{-999.6, -998.4, 287.5},
		}),
		MissingValue: floatPtr(-999.0),
	}

	arr, err := swath.Normalize(v, nil, discardLogger())
	require.NoError(t, err)

	require.NotNil(t, arr.Mask)
	assert.Equal(t, []bool{true, true, true, false, false, false}, arr.Mask)
	// Masked elements hold the fill value; unmasked keep their data.
	assert.Equal(t, swath.DefaultFill, arr.Data.Get(0, 0))
	assert.Equal(t, swath.DefaultFill, arr.Data.Get(0, 2))
	assert.Equal(t, -999.6, arr.Data.Get(1, 0))
	assert.Equal(t, 287.5, arr.Data.Get(1, 2))
}

func TestNormalize_NoSentinelYieldsUnmaskedArray(t *testing.T) {
	v := swath.SourceVariable{
		Name: "Cmask",
		Data: dense2(t, [][]float64{{1, 2}, {3, 4}}),
	}

	arr, err := swath.Normalize(v, nil, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, arr.Mask)
	assert.Equal(t, 4.0, arr.Data.Get(1, 1))
}

func TestNormalize_DoesNotMutateSource(t *testing.T) {
	v := swath.SourceVariable{
		Name:         "TSurf",
		Data:         dense2(t, [][]float64{{-999.0, 280.0}}),
		MissingValue: floatPtr(-999.0),
	}

	_, err := swath.Normalize(v, nil, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, -999.0, v.Data.Get(0, 0), "source array must stay untouched")
}

func TestNormalize_RollsLayerAxisForPassthrough3D(t *testing.T) {
	// (layer, row, col) = (2, 3, 4) -> (row, col, layer) = (3, 4, 2).
	data := sparse.ZerosDense(2, 3, 4)
	for l := 0; l < 2; l++ {
		for r := 0; r < 3; r++ {
			for c := 0; c < 4; c++ {
				data.Set(float64(100*l+10*r+c), l, r, c)
			}
		}
	}
	v := swath.SourceVariable{Name: "RelHum", Data: data}

	arr, err := swath.Normalize(v, nil, discardLogger())
	require.NoError(t, err)

	require.Equal(t, []int{3, 4, 2}, arr.Data.Shape)
	assert.Equal(t, 0.0, arr.Data.Get(0, 0, 0))
	assert.Equal(t, 100.0, arr.Data.Get(0, 0, 1))
	assert.Equal(t, 23.0, arr.Data.Get(2, 3, 0))
	assert.Equal(t, 123.0, arr.Data.Get(2, 3, 1))
}

func TestNormalize_AppliesLayerTool(t *testing.T) {
	data := sparse.ZerosDense(3, 2, 2)
	for l := 0; l < 3; l++ {
		for r := 0; r < 2; r++ {
			for c := 0; c < 2; c++ {
				data.Set(float64(l), l, r, c)
			}
		}
	}
	v := swath.SourceVariable{Name: "TAir", Data: data}
	tool := swath.LayerAtPressure(swath.PressureProfile{1000, 500, 200}, 500)

	arr, err := swath.Normalize(v, tool, discardLogger())
	require.NoError(t, err)

	require.Equal(t, []int{2, 2}, arr.Data.Shape)
	assert.Equal(t, 1.0, arr.Data.Get(0, 0))
}

func TestConcatRows_JoinsInFileOrder(t *testing.T) {
	a := &swath.Array{Data: dense2(t, [][]float64{{1, 2}, {3, 4}}), Fill: swath.DefaultFill}
	b := &swath.Array{
		Data: dense2(t, [][]float64{{5, 6}}),
		Mask: []bool{false, true},
		Fill: swath.DefaultFill,
	}

	joined, err := swath.ConcatRows([]*swath.Array{a, b})
	require.NoError(t, err)

	require.Equal(t, []int{3, 2}, joined.Data.Shape)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, joined.Data.Elements)
	// One masked section masks the result; the unmasked section's rows are clear.
	require.NotNil(t, joined.Mask)
	assert.Equal(t, []bool{false, false, false, false, false, true}, joined.Mask)
}

func TestConcatRows_RejectsColumnMismatch(t *testing.T) {
	a := &swath.Array{Data: dense2(t, [][]float64{{1, 2}})}
	b := &swath.Array{Data: dense2(t, [][]float64{{1, 2, 3}})}

	_, err := swath.ConcatRows([]*swath.Array{a, b})
	assert.Error(t, err)
}

func TestExplode_DimensionsAndInterpolatedValues(t *testing.T) {
	arr := &swath.Array{Data: dense2(t, [][]float64{
		{0, 2},
		{4, 6},
	}), Fill: swath.DefaultFill}

	out, err := swath.Explode(arr, 2)
	require.NoError(t, err)

	require.Equal(t, []int{4, 4}, out.Data.Shape)
	assert.Nil(t, out.Mask, "exploded arrays are unmasked")

	// Corners reproduce the input bounds exactly.
	assert.InDelta(t, 0.0, out.Data.Get(0, 0), 1e-12)
	assert.InDelta(t, 2.0, out.Data.Get(0, 3), 1e-12)
	assert.InDelta(t, 4.0, out.Data.Get(3, 0), 1e-12)
	assert.InDelta(t, 6.0, out.Data.Get(3, 3), 1e-12)

	// Interior samples are bilinear between the corners. Sample positions
	// span [0, 1] in thirds along each axis.
	third := 1.0 / 3.0
	assert.InDelta(t, 2*third, out.Data.Get(0, 1), 1e-12)
	assert.InDelta(t, 4*third, out.Data.Get(1, 0), 1e-12)
	assert.InDelta(t, 4*third+2*third, out.Data.Get(1, 1), 1e-12)
}

func TestExplode_RejectsNon2D(t *testing.T) {
	arr := &swath.Array{Data: sparse.ZerosDense(2, 2, 2)}
	_, err := swath.Explode(arr, 2)
	assert.Error(t, err)
}

func TestMakeLongitudeMonotonic_ShiftsAcrossAntimeridian(t *testing.T) {
	arr := &swath.Array{Data: dense2(t, [][]float64{
		{178.0, 179.5, -179.5},
		{177.0, 178.5, -178.0},
	}), Fill: swath.DefaultFill}

	out := swath.MakeLongitudeMonotonic(arr)

	assert.Equal(t, 178.0, out.Data.Get(0, 0))
	assert.Equal(t, 180.5, out.Data.Get(0, 2))
	assert.Equal(t, 182.0, out.Data.Get(1, 2))
}

func TestMakeLongitudeMonotonic_NoJumpNoShift(t *testing.T) {
	arr := &swath.Array{Data: dense2(t, [][]float64{
		{-10.0, -5.0, 0.0, 5.0},
	}), Fill: swath.DefaultFill}

	out := swath.MakeLongitudeMonotonic(arr)

	assert.Equal(t, -10.0, out.Data.Get(0, 0))
	assert.Equal(t, -5.0, out.Data.Get(0, 1))
}

func TestMakeLongitudeMonotonic_IgnoresMaskedElements(t *testing.T) {
	// The fill value must neither trigger the jump detection nor be shifted.
	arr := &swath.Array{
		Data: dense2(t, [][]float64{{10.0, swath.DefaultFill, 11.0}}),
		Mask: []bool{false, true, false},
		Fill: swath.DefaultFill,
	}

	out := swath.MakeLongitudeMonotonic(arr)

	assert.Equal(t, swath.DefaultFill, out.Data.Get(0, 1))
	assert.Equal(t, 10.0, out.Data.Get(0, 0))
}

func TestExplode_LargerFactorKeepsRange(t *testing.T) {
	arr := &swath.Array{Data: dense2(t, [][]float64{
		{1, 2, 3},
		{2, 3, 4},
		{3, 4, 5},
	}), Fill: swath.DefaultFill}

	out, err := swath.Explode(arr, 4)
	require.NoError(t, err)

	require.Equal(t, []int{12, 12}, out.Data.Shape)
	for _, x := range out.Data.Elements {
		assert.False(t, math.IsNaN(x))
		assert.GreaterOrEqual(t, x, 1.0)
		assert.LessOrEqual(t, x, 5.0)
	}
}
