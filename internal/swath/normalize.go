package swath

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/interp"
)

// Normalize turns a source variable into a canonical swath array. A non-nil
// tool reduces 3-D data to the 2-D layer it selects; otherwise a 3-D array
// gets its layer axis rolled to the last position, (layer, row, col) ->
// (row, col, layer). When the source declares a missing-value sentinel,
// elements within the half-unit tolerance of it are masked and replaced by
// the fill value; without a sentinel the array comes back unmasked with a
// warning.
func Normalize(v SourceVariable, tool LayerTool, logger *slog.Logger) (*Array, error) {
	data := v.Data
	if tool != nil {
		var err error
		data, err = tool(data)
		if err != nil {
			return nil, fmt.Errorf("layer tool for %s: %w", v.Name, err)
		}
	} else if len(data.Shape) == 3 {
		logger.Debug("rolling layer axis to last position", "variable", v.Name)
		data = rollLayerAxis(data)
	} else {
		data = data.Copy()
	}

	arr := &Array{Data: data, Fill: DefaultFill}
	if v.MissingValue == nil {
		logger.Warn("no missing_value attribute, data is unmasked", "variable", v.Name)
		return arr, nil
	}

	mv := *v.MissingValue
	arr.Mask = make([]bool, len(data.Elements))
	for i, x := range data.Elements {
		if math.Abs(x-mv) < missingTolerance {
			arr.Mask[i] = true
			data.Elements[i] = DefaultFill
		}
	}
	return arr, nil
}

// rollLayerAxis reorders (layer, row, col) to (row, col, layer).
func rollLayerAxis(in *sparse.DenseArray) *sparse.DenseArray {
	layers, rows, cols := in.Shape[0], in.Shape[1], in.Shape[2]
	out := sparse.ZerosDense(rows, cols, layers)
	for l := 0; l < layers; l++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				out.Set(in.Get(l, r, c), r, c, l)
			}
		}
	}
	return out
}

// ConcatRows joins per-file 2-D slices along the row axis, in file order,
// assembling one continuous swath. Column counts must agree. If any section
// carries a mask the result does too.
func ConcatRows(sections []*Array) (*Array, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("nothing to concatenate")
	}
	cols := sections[0].Cols()
	rows := 0
	masked := false
	for _, s := range sections {
		if s.Rank() != 2 {
			return nil, fmt.Errorf("cannot concatenate rank-%d section", s.Rank())
		}
		if s.Cols() != cols {
			return nil, fmt.Errorf("column count mismatch: %d vs %d", s.Cols(), cols)
		}
		rows += s.Rows()
		masked = masked || s.Mask != nil
	}

	out := &Array{Data: sparse.ZerosDense(rows, cols), Fill: sections[0].Fill}
	if masked {
		out.Mask = make([]bool, rows*cols)
	}
	offset := 0
	for _, s := range sections {
		copy(out.Data.Elements[offset:], s.Data.Elements)
		if masked && s.Mask != nil {
			copy(out.Mask[offset:], s.Mask)
		}
		offset += len(s.Data.Elements)
	}
	return out, nil
}

// Explode upsamples a 2-D array by an integer magnification factor per axis
// using separable degree-1 interpolation: each row is interpolated across
// columns, then each resulting column across rows. The result is unmasked.
func Explode(a *Array, factor int) (*Array, error) {
	if a.Rank() != 2 {
		return nil, fmt.Errorf("explode needs a 2-D array, got rank %d", a.Rank())
	}
	if factor < 1 {
		return nil, fmt.Errorf("explode factor %d < 1", factor)
	}

	rows, cols := a.Rows(), a.Cols()
	outRows, outCols := rows*factor, cols*factor
	rr := sampleGrid(rows, outRows)
	cc := sampleGrid(cols, outCols)

	// Row pass: rows x outCols intermediate.
	mid := make([]float64, rows*outCols)
	for r := 0; r < rows; r++ {
		row := a.Data.Elements[r*cols : (r+1)*cols]
		interpolateLine(row, cc, mid[r*outCols:(r+1)*outCols])
	}

	// Column pass.
	out := sparse.ZerosDense(outRows, outCols)
	col := make([]float64, rows)
	dst := make([]float64, outRows)
	for c := 0; c < outCols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = mid[r*outCols+c]
		}
		interpolateLine(col, rr, dst)
		for r := 0; r < outRows; r++ {
			out.Elements[r*outCols+c] = dst[r]
		}
	}
	return &Array{Data: out, Fill: a.Fill}, nil
}

// sampleGrid returns m sample positions spanning [0, n-1] evenly.
func sampleGrid(n, m int) []float64 {
	pos := make([]float64, m)
	if m == 1 {
		return pos
	}
	step := float64(n-1) / float64(m-1)
	for i := range pos {
		pos[i] = float64(i) * step
	}
	return pos
}

// interpolateLine evaluates a piecewise-linear fit of vals (at positions
// 0..len-1) at each position in at, writing into dst. A single-sample line
// is constant.
func interpolateLine(vals, at, dst []float64) {
	if len(vals) == 1 {
		for i := range dst {
			dst[i] = vals[0]
		}
		return
	}
	xs := make([]float64, len(vals))
	for i := range xs {
		xs[i] = float64(i)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, vals); err != nil {
		// xs is strictly increasing and lengths match, so Fit cannot fail.
		panic(err)
	}
	for i, x := range at {
		dst[i] = pl.Predict(x)
	}
}

// MakeLongitudeMonotonic shifts a longitude swath crossing the antimeridian
// into a single monotonic range: if any row's consecutive-sample absolute
// difference exceeds 180 degrees, 360 is added to every negative element of
// the whole array. Explicit opt-in filter, never auto-applied. Modifies the
// array in place and returns it.
func MakeLongitudeMonotonic(a *Array) *Array {
	rows, cols := a.Rows(), a.Cols()
	shift := false
	for r := 0; r < rows && !shift; r++ {
		for c := 1; c < cols; c++ {
			i := r*cols + c
			if a.Mask != nil && (a.Mask[i] || a.Mask[i-1]) {
				continue
			}
			prev := a.Data.Elements[i-1]
			cur := a.Data.Elements[i]
			if math.Abs(cur-prev) > 180 {
				shift = true
				break
			}
		}
	}
	if shift {
		for i, x := range a.Data.Elements {
			if x < 0 && (a.Mask == nil || !a.Mask[i]) {
				a.Data.Elements[i] = x + 360
			}
		}
	}
	return a
}
