package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/polarorbit/sounder-data-etl/internal/observability"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

// GroupProcessor runs one navigation group to completion. Pipeline is the
// production implementation; tests substitute fakes to inject failures.
type GroupProcessor interface {
	ProcessGroup(ctx context.Context, group swath.NavID, paths []string) Status
}

// Orchestrator fans a batch out into per-group workers and aggregates their
// terminal statuses. Workers share no mutable state: each one reports on its
// own result channel, and the orchestrator alone maintains the status board.
type Orchestrator struct {
	proc    GroupProcessor
	guide   *swath.Guidebook
	logger  *slog.Logger
	metrics *observability.Metrics

	mu    sync.Mutex
	board map[swath.NavID]string
}

// NewOrchestrator creates an Orchestrator classifying inputs with guide and
// dispatching groups to proc.
func NewOrchestrator(proc GroupProcessor, guide *swath.Guidebook, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		proc:    proc,
		guide:   guide,
		logger:  logger,
		metrics: metrics,
		board:   make(map[swath.NavID]string),
	}
}

// Run classifies the batch into navigation groups and processes each
// non-empty group: one concurrent worker per group in parallel mode, the
// same worker function inline in sequential mode. Either way every worker
// is waited on before aggregation, a failing group never cancels its
// siblings, and there is deliberately no timeout — a hung worker blocks the
// join. The returned status is the bitwise OR of all group statuses.
func (o *Orchestrator) Run(ctx context.Context, paths []string, parallel bool) Status {
	o.metrics.BatchRunning.Set(1)
	defer o.metrics.BatchRunning.Set(0)

	groups, rejected := o.guide.Classify(paths, o.logger)
	for range rejected {
		o.metrics.FilesRejected.Inc()
	}
	if len(groups) == 0 {
		// Nothing recognizable is reported, not fatal, matching the
		// per-file rejection policy.
		o.logger.Warn("no recognizable input files in batch")
		return Success
	}

	type handle struct {
		group   swath.NavID
		results chan GroupResult
		started time.Time
	}

	// Fixed dispatch order keeps sequential runs reproducible.
	order := make([]swath.NavID, 0, len(groups))
	for group := range groups {
		order = append(order, group)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var handles []handle
	for _, group := range order {
		files := groups[group]
		if len(files) == 0 {
			continue
		}
		o.setState(group, "running")
		h := handle{group: group, results: make(chan GroupResult, 1), started: time.Now()}
		o.logger.Debug("dispatching group", "nav_set", group, "files", len(files), "parallel", parallel)
		if parallel {
			go o.runWorker(ctx, group, files, h.results)
		} else {
			o.runWorker(ctx, group, files, h.results)
		}
		handles = append(handles, h)
	}

	// Join barrier: wait for all, collect all, then combine.
	o.logger.Debug("waiting for workers", "count", len(handles))
	batch := Success
	for _, h := range handles {
		res := <-h.results
		outcome := "success"
		if res.Status != Success {
			outcome = "failure"
		}
		o.metrics.GroupsProcessed.WithLabelValues(string(res.Group), outcome).Inc()
		o.metrics.GroupDuration.WithLabelValues(string(res.Group)).Observe(time.Since(h.started).Seconds())
		o.setState(res.Group, res.Status.String())
		o.logger.Info("group finished", "nav_set", res.Group, "status", res.Status.String())
		batch |= res.Status
	}
	return batch
}

func (o *Orchestrator) setState(group swath.NavID, state string) {
	o.mu.Lock()
	o.board[group] = state
	o.mu.Unlock()
}

// Snapshot returns a copy of the live per-group status board for the ops
// endpoint.
func (o *Orchestrator) Snapshot() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := make(map[string]string, len(o.board))
	for group, state := range o.board {
		snap[string(group)] = state
	}
	return snap
}
