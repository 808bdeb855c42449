// Package frontend coordinates swath extraction for one navigation group:
// it validates the group's input files, determines the shared swath
// geometry, builds the variable manifest, and normalizes and writes every
// band to a flat-binary file in the working directory.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/polarorbit/sounder-data-etl/internal/fbf"
	"github.com/polarorbit/sounder-data-etl/internal/observability"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

// ErrNoUsableInput reports a group in which no input file survived
// validation.
var ErrNoUsableInput = errors.New("no usable input files in group")

// Container is one opened instrument file.
type Container interface {
	// Variable reads a named variable with its missing-value sentinel.
	Variable(name string) (swath.SourceVariable, error)
	Close() error
}

// Opener opens instrument containers. The production implementation reads
// NetCDF4/HDF5 files; tests substitute fakes.
type Opener interface {
	Open(path string) (Container, error)
}

// Options selects the optional normalization filters.
type Options struct {
	WorkDir       string
	Explode       bool
	ExplodeFactor int
	LonMonotonic  bool
}

// Frontend extracts one navigation group's swaths.
type Frontend struct {
	guide   *swath.Guidebook
	opener  Opener
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Frontend. WorkDir defaults to the current directory and the
// explode factor to 64 when unset.
func New(guide *swath.Guidebook, opener Opener, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Frontend {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.ExplodeFactor < 1 {
		opts.ExplodeFactor = 64
	}
	return &Frontend{guide: guide, opener: opener, opts: opts, logger: logger, metrics: metrics}
}

// MakeSwaths runs the full extraction for one group's files and returns the
// aggregated metadata. Invalid files are dropped with a warning; a group
// with zero valid files fails with ErrNoUsableInput. Latitude and longitude
// are extracted unconditionally first and their failure fails the group;
// after that each manifest entry is extracted independently, and a
// per-variable failure only omits that band.
func (f *Frontend) MakeSwaths(ctx context.Context, paths []string) (*swath.Metadata, error) {
	containers, infos := f.openValid(paths)
	defer func() {
		for _, c := range containers {
			c.Close()
		}
	}()
	if len(containers) == 0 {
		return nil, ErrNoUsableInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols, err := f.swathShape(containers)
	if err != nil {
		return nil, fmt.Errorf("determine swath shape: %w", err)
	}

	first := infos[0]
	meta := &swath.Metadata{
		Satellite:   first.Satellite,
		Instrument:  first.Instrument,
		NavSet:      first.NavSet,
		StartTime:   first.StartTime,
		Rows:        rows,
		Cols:        cols,
		Scans:       rows / first.RowsPerScan,
		RowsPerScan: first.RowsPerScan,
		Bands:       make(map[swath.BandKey]swath.BandDescriptor),
	}

	profile, err := f.pressureProfile(containers[0])
	if err != nil {
		return nil, fmt.Errorf("read pressure profile: %w", err)
	}
	manifest := swath.BuildManifest(f.guide, profile)

	meta.LatPath, err = f.gobble("swath_latitude", f.guide.LatVar, nil, containers, false)
	if err != nil {
		return nil, fmt.Errorf("extract latitude: %w", err)
	}
	meta.LonPath, err = f.gobble("swath_longitude", f.guide.LonVar, nil, containers, f.opts.LonMonotonic)
	if err != nil {
		return nil, fmt.Errorf("extract longitude: %w", err)
	}

	if f.opts.Explode {
		meta.Rows *= f.opts.ExplodeFactor
		meta.Cols *= f.opts.ExplodeFactor
		meta.RowsPerScan *= f.opts.ExplodeFactor
	}

	// Deterministic extraction order keeps runs comparable.
	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := manifest[name]
		f.logger.Debug("extracting band", "output", name, "variable", entry.SourceVar)
		path, err := f.gobble(name, entry.SourceVar, entry.Tool, containers, false)
		if err != nil {
			f.logger.Warn("band extraction failed, omitting band",
				"output", name, "variable", entry.SourceVar, "error", err)
			f.metrics.BandsFailed.Inc()
			continue
		}
		f.metrics.BandsExtracted.Inc()
		meta.Bands[swath.BandKey{Kind: entry.BandKind, ID: entry.BandID}] = swath.BandDescriptor{
			Kind:        entry.BandKind,
			ID:          entry.BandID,
			DataKind:    entry.DataKind,
			RemapAs:     entry.DataKind,
			Path:        path,
			Rows:        meta.Rows,
			Cols:        meta.Cols,
			Scans:       meta.Scans,
			RowsPerScan: meta.RowsPerScan,
			Fill:        swath.DefaultFill,
			Grids:       swath.GridsAny,
		}
	}

	meta.ExtractedAt = swath.Now()
	return meta, nil
}

// openValid opens every path passing both the naming grammar and the
// container check, preserving input order. Failures are logged and skipped.
func (f *Frontend) openValid(paths []string) ([]Container, []swath.FileInfo) {
	var containers []Container
	var infos []swath.FileInfo
	for _, p := range paths {
		info, err := f.guide.FileInfo(p)
		if err != nil {
			f.logger.Warn("file does not match naming convention, ignoring", "path", p)
			f.metrics.FilesRejected.Inc()
			continue
		}
		c, err := f.opener.Open(p)
		if err != nil {
			f.logger.Warn("file is not a proper container, ignoring", "path", p, "error", err)
			f.metrics.FilesRejected.Inc()
			continue
		}
		f.metrics.FilesAccepted.Inc()
		containers = append(containers, c)
		infos = append(infos, info)
	}
	return containers, infos
}

// swathShape sums per-file row counts of the geometry reference variable.
// Layer and column counts are taken from the first file and trusted
// consistent across the group; mismatched inputs are an input-contract
// violation, not something this stage cross-validates.
func (f *Frontend) swathShape(containers []Container) (rows, cols int, err error) {
	for _, c := range containers {
		v, err := c.Variable(f.guide.GeometryVar)
		if err != nil {
			return 0, 0, err
		}
		shape := v.Data.Shape
		switch len(shape) {
		case 3:
			if cols == 0 {
				cols = shape[2]
			}
			rows += shape[1]
		case 2:
			if cols == 0 {
				cols = shape[1]
			}
			rows += shape[0]
		default:
			return 0, 0, fmt.Errorf("geometry variable %s has shape %v", f.guide.GeometryVar, shape)
		}
	}
	return rows, cols, nil
}

// pressureProfile reads the group's layer pressures from the first
// container, squeezed to 1-D.
func (f *Frontend) pressureProfile(c Container) (swath.PressureProfile, error) {
	v, err := c.Variable(f.guide.PressureVar)
	if err != nil {
		return nil, err
	}
	return swath.PressureProfile(v.Data.Elements), nil
}

// gobble extracts one output array: normalize each file's slice, concatenate
// along the row axis, optionally fix longitude monotonicity, optionally
// explode, and write the flat-binary file. Returns the written path.
func (f *Frontend) gobble(name, varName string, tool swath.LayerTool, containers []Container, lonFix bool) (string, error) {
	sections := make([]*swath.Array, 0, len(containers))
	for _, c := range containers {
		v, err := c.Variable(varName)
		if err != nil {
			return "", err
		}
		arr, err := swath.Normalize(v, tool, f.logger)
		if err != nil {
			return "", err
		}
		sections = append(sections, arr)
	}
	joined, err := swath.ConcatRows(sections)
	if err != nil {
		return "", fmt.Errorf("concatenate %s: %w", varName, err)
	}
	if lonFix {
		joined = swath.MakeLongitudeMonotonic(joined)
	}
	if f.opts.Explode {
		joined, err = swath.Explode(joined, f.opts.ExplodeFactor)
		if err != nil {
			return "", fmt.Errorf("explode %s: %w", varName, err)
		}
	}
	return fbf.Write(f.opts.WorkDir, name, joined)
}
