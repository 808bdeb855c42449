// Command mkswath generates a synthetic navigation group's interchange
// files for downstream collaborator development: deterministic latitude,
// longitude, and variable fields written as flat-binary files plus the
// matching metadata JSON. It uses the actual swath and fbf packages so the
// output matches real extraction behavior.
//
// Usage:
//
//	go run ./cmd/mkswath -out data/mock -rows 252 -cols 60
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ctessum/sparse"
	"github.com/jonboulle/clockwork"
	"github.com/polarorbit/sounder-data-etl/internal/fbf"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

// baseTime is the synthetic granule start; fixed so regenerated fixtures
// are byte-identical.
var baseTime = time.Date(2013, time.March, 10, 15, 26, 24, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for the FBF set and metadata JSON")
	rows := flag.Int("rows", 252, "swath rows")
	cols := flag.Int("cols", 60, "swath columns")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Fix the clock for a reproducible ExtractedAt stamp.
	swath.SetClock(clockwork.NewFakeClockAt(
		time.Date(2013, time.March, 10, 16, 0, 0, 0, time.UTC),
	))
	defer swath.SetClock(nil)

	guide := swath.DefaultGuidebook()
	info := guide.Instruments[swath.InstrumentKey{Satellite: "M02", Instrument: "IASI"}]

	meta := &swath.Metadata{
		Satellite:   info.Satellite,
		Instrument:  info.Instrument,
		NavSet:      info.NavSet,
		StartTime:   baseTime,
		Rows:        *rows,
		Cols:        *cols,
		Scans:       *rows / info.RowsPerScan,
		RowsPerScan: info.RowsPerScan,
		Bands:       make(map[swath.BandKey]swath.BandDescriptor),
	}

	var err error
	meta.LatPath, err = writeField(*outDir, "swath_latitude", *rows, *cols, latitudeAt)
	if err != nil {
		return err
	}
	meta.LonPath, err = writeField(*outDir, "swath_longitude", *rows, *cols, longitudeAt)
	if err != nil {
		return err
	}
	log.Printf("wrote geolocation: %s, %s", meta.LatPath, meta.LonPath)

	profile := swath.PressureProfile{1000, 850, 700, 500, 300, 200, 100}
	manifest := swath.BuildManifest(guide, profile)
	for name, entry := range manifest {
		path, err := writeField(*outDir, name, *rows, *cols, fieldFor(name))
		if err != nil {
			return err
		}
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
	log.Printf("wrote %d bands", len(meta.Bands))

	metaPath := filepath.Join(*outDir, "swath_metadata.json")
	if err := writeJSON(metaPath, meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	log.Printf("wrote metadata: %s", metaPath)
	return nil
}

// writeField synthesizes one 2-D field and writes it as an FBF file.
func writeField(dir, name string, rows, cols int, f func(r, c int) float64) (string, error) {
	data := sparse.ZerosDense(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data.Elements[r*cols+c] = f(r, c)
		}
	}
	path, err := fbf.Write(dir, name, &swath.Array{Data: data, Fill: swath.DefaultFill})
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// latitudeAt sweeps a descending-pass latitude track.
func latitudeAt(r, c int) float64 {
	return 55.0 - 0.1*float64(r) + 0.02*float64(c)
}

// longitudeAt crosses a ~20 degree swath width.
func longitudeAt(r, c int) float64 {
	return -12.0 + 0.3*float64(c) + 0.01*float64(r)
}

// fieldFor returns a smooth deterministic generator seeded by the band
// name, with a sprinkling of fill values so consumers see masked data.
func fieldFor(name string) func(r, c int) float64 {
	seed := 0
	for _, ch := range name {
		seed += int(ch)
	}
	return func(r, c int) float64 {
		if (r*31+c*17+seed)%97 == 0 {
			return swath.DefaultFill
		}
		return 250 + 40*math.Sin(float64(r+seed)/18) + 10*math.Cos(float64(c)/7)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
