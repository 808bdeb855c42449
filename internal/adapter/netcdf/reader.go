// Package netcdf adapts NetCDF4/HDF5 instrument containers to the
// frontend's Container interface.
package netcdf

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
	"github.com/polarorbit/sounder-data-etl/internal/frontend"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

// Opener opens retrieval files as frontend containers.
type Opener struct{}

// Open opens the container at path. A file that is not a well-formed
// NetCDF4/HDF5 container fails here, which is how the frontend detects and
// drops invalid inputs.
func (Opener) Open(path string) (frontend.Container, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	return &container{group: g}, nil
}

type container struct {
	group api.Group
}

func (c *container) Close() error {
	c.group.Close()
	return nil
}

// Variable reads one variable and its missing_value attribute.
func (c *container) Variable(name string) (swath.SourceVariable, error) {
	v, err := c.group.GetVariable(name)
	if err != nil {
		return swath.SourceVariable{}, fmt.Errorf("variable %s: %w", name, err)
	}
	data, err := toDense(v.Values)
	if err != nil {
		return swath.SourceVariable{}, fmt.Errorf("variable %s: %w", name, err)
	}
	sv := swath.SourceVariable{Name: name, Data: data}
	if raw, ok := v.Attributes.Get("missing_value"); ok {
		if mv, ok := attrFloat(raw); ok {
			sv.MissingValue = &mv
		}
	}
	return sv, nil
}

// toDense converts the nested numeric slices the NetCDF reader produces
// into a dense float64 array, inferring the shape from slice lengths.
func toDense(values any) (*sparse.DenseArray, error) {
	shape, err := sliceShape(reflect.ValueOf(values), nil)
	if err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(shape...)
	i := 0
	if err := flatten(reflect.ValueOf(values), len(shape), out.Elements, &i); err != nil {
		return nil, err
	}
	if i != len(out.Elements) {
		return nil, fmt.Errorf("ragged array: filled %d of %d elements", i, len(out.Elements))
	}
	return out, nil
}

func sliceShape(v reflect.Value, shape []int) ([]int, error) {
	if v.Kind() != reflect.Slice {
		if isNumeric(v.Kind()) {
			return shape, nil
		}
		return nil, fmt.Errorf("unsupported element type %s", v.Kind())
	}
	if v.Len() == 0 {
		return nil, fmt.Errorf("empty dimension at depth %d", len(shape))
	}
	return sliceShape(v.Index(0), append(shape, v.Len()))
}

func flatten(v reflect.Value, depth int, dst []float64, i *int) error {
	if depth == 0 {
		if *i >= len(dst) {
			return fmt.Errorf("ragged array: more elements than shape implies")
		}
		dst[*i] = numericValue(v)
		*i++
		return nil
	}
	for j := 0; j < v.Len(); j++ {
		if err := flatten(v.Index(j), depth-1, dst, i); err != nil {
			return err
		}
	}
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return true
	}
	return false
}

func numericValue(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return float64(v.Uint())
	default:
		return float64(v.Int())
	}
}

// attrFloat coerces a missing_value attribute to float64. Sources declare
// it as a scalar or a one-element array of any numeric type.
func attrFloat(raw any) (float64, bool) {
	v := reflect.ValueOf(raw)
	if v.Kind() == reflect.Slice {
		if v.Len() == 0 {
			return 0, false
		}
		v = v.Index(0)
	}
	if !isNumeric(v.Kind()) {
		return 0, false
	}
	return numericValue(v), true
}
