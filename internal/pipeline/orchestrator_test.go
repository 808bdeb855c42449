package pipeline_test

import (
	"context"
	"sync"
	"testing"

	"github.com/polarorbit/sounder-data-etl/internal/observability"
	"github.com/polarorbit/sounder-data-etl/internal/pipeline"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchFiles holds one file per navigation set so a batch classifies into
// three groups.
var batchFiles = []string{
	"CrIS_d20130401_t001129.atm_prof_rtv.h5",
	"IASI_d20130401_t001129_M02.atm_prof_rtv.h5",
	"AIRS_d20130401_t001129.atm_prof_rtv.h5",
}

// fakeProcessor returns a scripted status per group, panics for groups listed
// in panics, and records which groups it saw.
type fakeProcessor struct {
	statuses map[swath.NavID]pipeline.Status
	panics   map[swath.NavID]any

	mu     sync.Mutex
	groups []swath.NavID
}

func (f *fakeProcessor) ProcessGroup(_ context.Context, group swath.NavID, _ []string) pipeline.Status {
	f.mu.Lock()
	f.groups = append(f.groups, group)
	f.mu.Unlock()
	if r, ok := f.panics[group]; ok {
		panic(r)
	}
	return f.statuses[group]
}

func (f *fakeProcessor) seen() []swath.NavID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]swath.NavID(nil), f.groups...)
}

func newOrchestrator(proc pipeline.GroupProcessor) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(proc, swath.DefaultGuidebook(),
		discardLogger(), observability.NewMetricsForTesting())
}

func TestRun_AggregatesGroupStatuses(t *testing.T) {
	proc := &fakeProcessor{statuses: map[swath.NavID]pipeline.Status{
		swath.CrISNav: pipeline.FrontendFail,
		swath.IASINav: pipeline.Success,
		swath.AIRSNav: pipeline.BackendFail,
	}}
	orch := newOrchestrator(proc)

	status := orch.Run(context.Background(), batchFiles, false)

	assert.Equal(t, pipeline.FrontendFail|pipeline.BackendFail, status)
	assert.ElementsMatch(t, []swath.NavID{swath.CrISNav, swath.IASINav, swath.AIRSNav}, proc.seen())
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	statuses := map[swath.NavID]pipeline.Status{
		swath.CrISNav: pipeline.RemapFail,
		swath.IASINav: pipeline.GridDeterminationFail,
		swath.AIRSNav: pipeline.Success,
	}

	seq := newOrchestrator(&fakeProcessor{statuses: statuses}).
		Run(context.Background(), batchFiles, false)
	par := newOrchestrator(&fakeProcessor{statuses: statuses}).
		Run(context.Background(), batchFiles, true)

	assert.Equal(t, seq, par)
	assert.Equal(t, pipeline.RemapFail|pipeline.GridDeterminationFail, par)
}

func TestRun_NoRecognizableInputIsNotFatal(t *testing.T) {
	proc := &fakeProcessor{}
	orch := newOrchestrator(proc)

	status := orch.Run(context.Background(), []string{"notes.txt", "archive.tar"}, false)

	assert.Equal(t, pipeline.Success, status)
	assert.Empty(t, proc.seen())
}

func TestRun_PanickingWorkerDoesNotSinkSiblings(t *testing.T) {
	proc := &fakeProcessor{
		statuses: map[swath.NavID]pipeline.Status{
			swath.CrISNav: pipeline.Success,
			swath.AIRSNav: pipeline.Success,
		},
		panics: map[swath.NavID]any{swath.IASINav: "index out of range"},
	}
	orch := newOrchestrator(proc)

	status := orch.Run(context.Background(), batchFiles, true)

	assert.Equal(t, pipeline.UnknownFail, status)
	assert.ElementsMatch(t, []swath.NavID{swath.CrISNav, swath.IASINav, swath.AIRSNav}, proc.seen())
}

func TestRun_CancelledContextInterruptsCleanly(t *testing.T) {
	proc := &fakeProcessor{}
	orch := newOrchestrator(proc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	status := orch.Run(ctx, batchFiles, false)

	assert.Equal(t, pipeline.UnknownFail, status)
	assert.Empty(t, proc.seen(), "cancelled workers never reach the processor")
}

func TestSnapshot_ReflectsTerminalStates(t *testing.T) {
	proc := &fakeProcessor{statuses: map[swath.NavID]pipeline.Status{
		swath.CrISNav: pipeline.Success,
		swath.IASINav: pipeline.FrontendFail,
		swath.AIRSNav: pipeline.Success,
	}}
	orch := newOrchestrator(proc)

	require.Equal(t, pipeline.FrontendFail, orch.Run(context.Background(), batchFiles, false))

	snap := orch.Snapshot()
	assert.Equal(t, map[string]string{
		"cris_nav": "success",
		"iasi_nav": "frontend-fail",
		"airs_nav": "success",
	}, snap)
}
