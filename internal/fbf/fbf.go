// Package fbf reads and writes flat-binary interchange files. An FBF file
// holds a raw row-major float array with no header; the dtype and the
// dimensions are encoded purely in the filename:
//
//	{name}.{dtype-suffix}.{cols}.{rows}
//	e.g. swath_latitude.real4.60.252
//
// The lowercase real4 suffix means 4-byte little-endian floats. These files
// are the sole handoff between swath extraction and the grid-determination,
// remap, and backend collaborators.
package fbf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

// ErrNotRank2 reports an array that is not two-dimensional. Only 2-D swaths
// are written; callers log and skip the band.
var ErrNotRank2 = errors.New("fbf: array is not rank 2")

// SuffixReal4 is the dtype suffix for 4-byte little-endian floats, the only
// type the interchange contract uses.
const SuffixReal4 = "real4"

// Info is the metadata parsed back out of an FBF filename.
type Info struct {
	Name string
	Type string
	Cols int
	Rows int
}

// Filename renders the interchange filename for a real4 array.
func Filename(name string, cols, rows int) string {
	return fmt.Sprintf("%s.%s.%d.%d", name, SuffixReal4, cols, rows)
}

// ParseName splits an FBF basename into its name, dtype suffix, and
// dimensions. The name part may itself contain dots, so fields are taken
// from the right.
func ParseName(base string) (Info, error) {
	parts := strings.Split(base, ".")
	if len(parts) < 4 {
		return Info{}, fmt.Errorf("fbf: %q does not follow name.type.cols.rows", base)
	}
	cols, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || cols <= 0 {
		return Info{}, fmt.Errorf("fbf: bad column count in %q", base)
	}
	rows, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || rows <= 0 {
		return Info{}, fmt.Errorf("fbf: bad row count in %q", base)
	}
	typ := parts[len(parts)-3]
	if typ != SuffixReal4 {
		return Info{}, fmt.Errorf("fbf: unsupported dtype suffix %q in %q", typ, base)
	}
	return Info{
		Name: strings.Join(parts[:len(parts)-3], "."),
		Type: typ,
		Cols: cols,
		Rows: rows,
	}, nil
}

// Write serializes a normalized 2-D array into dir. Masked elements are
// re-filled with the array's fill value and the data is coerced to float32.
// Returns the written file's path, or ErrNotRank2 for anything that is not
// a 2-D array.
func Write(dir, name string, a *swath.Array) (string, error) {
	if a.Rank() != 2 {
		return "", fmt.Errorf("%w: %s has shape %v", ErrNotRank2, name, a.Data.Shape)
	}

	buf := make([]byte, len(a.Data.Elements)*4)
	for i, x := range a.Data.Elements {
		if a.Mask != nil && a.Mask[i] {
			x = a.Fill
		}
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(x)))
	}

	path := filepath.Join(dir, Filename(name, a.Cols(), a.Rows()))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("fbf: write %s: %w", path, err)
	}
	return path, nil
}

// Read loads an FBF file back into a swath array, checking the byte size
// against the dimensions encoded in the filename. The result carries no
// mask; fill-valued elements stay fill-valued.
func Read(path string) (*swath.Array, error) {
	info, err := ParseName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fbf: read %s: %w", path, err)
	}
	want := info.Rows * info.Cols * 4
	if len(raw) != want {
		return nil, fmt.Errorf("fbf: %s holds %d bytes, filename implies %d", path, len(raw), want)
	}

	data := sparse.ZerosDense(info.Rows, info.Cols)
	for i := range data.Elements {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		data.Elements[i] = float64(math.Float32frombits(bits))
	}
	return &swath.Array{Data: data, Fill: swath.DefaultFill}, nil
}

// RemovablePatterns are the globs matching every file a prior swath
// extraction run may have left in the working directory.
var RemovablePatterns = []string{
	"CAPE.real4.*",
	"CO*.real4.*",
	"CT*.real4.*",
	"CldEmis.real4.*",
	"Cmask.real4.*",
	"Dewpnt_*.real4.*",
	"H2OMMR_*.real4.*",
	"Lifted_Index.real4.*",
	"O3VMR_*.real4.*",
	"RelHum_*.real4.*",
	"SurfPres.real4.*",
	"TAir_*.real4.*",
	"TSurf.real4.*",
	"tot*.real4.*",
	"swath_longitude.real4.*",
	"swath_latitude.real4.*",
}

// RemovePrevious deletes files in dir matching RemovablePatterns, so a new
// run cannot pick up a stale interchange file. Individual removal failures
// are reported but do not stop the sweep.
func RemovePrevious(dir string) []error {
	var errs []error
	for _, pat := range RemovablePatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pat))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil {
				errs = append(errs, fmt.Errorf("fbf: remove %s: %w", m, err))
			}
		}
	}
	return errs
}
