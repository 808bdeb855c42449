package pipeline_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/polarorbit/sounder-data-etl/internal/frontend"
	"github.com/polarorbit/sounder-data-etl/internal/observability"
	"github.com/polarorbit/sounder-data-etl/internal/pipeline"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// granule is an in-memory instrument file with the full structural variable
// set plus TSurf.
type granule struct {
	rows int
	bad  bool
}

func (g *granule) Variable(name string) (swath.SourceVariable, error) {
	mv := swath.DefaultFill
	dims := map[string][]int{
		"Latitude":  {g.rows, 4},
		"Longitude": {g.rows, 4},
		"Plevs":     {2},
		"RelHum":    {2, g.rows, 4},
		"TSurf":     {g.rows, 4},
	}[name]
	if dims == nil {
		return swath.SourceVariable{}, fmt.Errorf("no such variable %q", name)
	}
	data := sparse.ZerosDense(dims...)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	return swath.SourceVariable{Name: name, Data: data, MissingValue: &mv}, nil
}

func (g *granule) Close() error { return nil }

type granuleOpener struct {
	files map[string]*granule
}

func (o *granuleOpener) Open(path string) (frontend.Container, error) {
	g, ok := o.files[path]
	if !ok || g.bad {
		return nil, fmt.Errorf("cannot open %q", path)
	}
	return g, nil
}

func e2eGuidebook() *swath.Guidebook {
	g := swath.DefaultGuidebook()
	g.Variables = map[string]swath.VariableInfo{
		"TSurf":  {DataKind: swath.KindTemperature, BandKind: "srf_t"},
		"RelHum": {DataKind: swath.KindPercent, BandKind: "rh", Pressures: []float64{500}},
	}
	return g
}

// TestBatch_EndToEnd drives a three-group batch through the real frontend and
// pipeline with the file layer faked out: one group's files fail to open, so
// the batch exits with exactly the frontend-fail bit while both healthy
// groups still produce their interchange files.
func TestBatch_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cris := filepath.Join(dir, "CrIS_d20130401_t001129.atm_prof_rtv.h5")
	iasi := filepath.Join(dir, "IASI_d20130401_t001129_M02.atm_prof_rtv.h5")
	airs := filepath.Join(dir, "AIRS_d20130401_t001129.atm_prof_rtv.h5")

	opener := &granuleOpener{files: map[string]*granule{
		cris: {rows: 3},
		iasi: {rows: 2, bad: true},
		airs: {rows: 2},
	}}

	work := t.TempDir()
	metrics := observability.NewMetricsForTesting()
	guide := e2eGuidebook()
	front := frontend.New(guide, opener, frontend.Options{WorkDir: work}, discardLogger(), metrics)
	pipe := pipeline.New(front, nil, nil, nil, nil, discardLogger())
	orch := pipeline.NewOrchestrator(pipe, guide, discardLogger(), metrics)

	status := orch.Run(context.Background(), []string{cris, iasi, airs}, false)
	assert.Equal(t, pipeline.FrontendFail, status)
	assert.Equal(t, 1, status.ExitCode())

	// Both healthy groups wrote their full band and geolocation sets.
	for _, f := range []string{
		"swath_latitude.real4.4.3",
		"swath_longitude.real4.4.3",
		"TSurf.real4.4.3",
		"RelHum_500mb.real4.4.3",
		"swath_latitude.real4.4.2",
		"TSurf.real4.4.2",
	} {
		_, err := os.Stat(filepath.Join(work, f))
		assert.NoError(t, err, "expected %s", f)
	}

	snap := orch.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "success", snap["cris_nav"])
	assert.Equal(t, "frontend-fail", snap["iasi_nav"])
	assert.Equal(t, "success", snap["airs_nav"])
}
