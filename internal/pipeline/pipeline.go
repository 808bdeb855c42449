// Package pipeline runs the per-group processing chain and orchestrates the
// navigation groups of a batch, aggregating their terminal statuses into
// one OR-combined exit code.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

// Frontend extracts one group's swaths and writes the interchange files.
type Frontend interface {
	MakeSwaths(ctx context.Context, paths []string) (*swath.Metadata, error)
}

// GridDeterminer decides which grids the extracted swaths fit.
type GridDeterminer interface {
	DetermineGrids(ctx context.Context, meta *swath.Metadata) error
}

// Remapper resamples the swath bands onto the determined grids.
type Remapper interface {
	RemapBands(ctx context.Context, meta *swath.Metadata) error
}

// Backend encodes the remapped grids into the output product format.
type Backend interface {
	CreateProducts(ctx context.Context, meta *swath.Metadata) error
}

// Announcer publishes a swath-ready notification after extraction. Purely
// advisory; failures are logged, never fatal.
type Announcer interface {
	AnnounceSwath(ctx context.Context, meta *swath.Metadata) error
}

// Pipeline chains the stages for one navigation group. The grid, remap, and
// backend stages are external collaborators: any of them may be nil, which
// skips that stage, so the shipped extraction-only binary and a fully wired
// deployment share one code path.
type Pipeline struct {
	frontend  Frontend
	grids     GridDeterminer
	remapper  Remapper
	backend   Backend
	announcer Announcer
	logger    *slog.Logger
}

// New creates a Pipeline. Only frontend is mandatory; pass nil for any
// downstream stage that is not wired in, and nil announcer to disable
// announcements.
func New(frontend Frontend, grids GridDeterminer, remapper Remapper, backend Backend, announcer Announcer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		frontend:  frontend,
		grids:     grids,
		remapper:  remapper,
		backend:   backend,
		announcer: announcer,
		logger:    logger,
	}
}

// ProcessGroup runs one navigation group start to finish. The status
// accumulates the failing stage's bit and the chain stops at the first
// failed stage; a group that extracts zero bands reports UnknownFail.
func (p *Pipeline) ProcessGroup(ctx context.Context, group swath.NavID, paths []string) Status {
	status := Success
	logger := p.logger.With("nav_set", group)

	logger.Info("extracting swaths", "files", len(paths))
	meta, err := p.frontend.MakeSwaths(ctx, paths)
	if err != nil {
		logger.Error("swath creation failed", "error", err)
		return status | FrontendFail
	}

	if len(meta.Bands) == 0 {
		logger.Error("no bands to process, quitting")
		return status | UnknownFail
	}

	p.announce(ctx, meta, logger)

	if p.grids != nil {
		logger.Info("determining what grids the data fits in")
		if err := p.grids.DetermineGrids(ctx, meta); err != nil {
			logger.Error("grid determination failed", "error", err)
			return status | GridDeterminationFail
		}
	}

	if p.remapper != nil {
		logger.Info("remapping bands")
		if err := p.remapper.RemapBands(ctx, meta); err != nil {
			logger.Error("remapping failed", "error", err)
			return status | RemapFail
		}
	}

	if p.backend != nil {
		logger.Info("running backend", "bands", len(meta.Bands))
		if err := p.backend.CreateProducts(ctx, meta); err != nil {
			logger.Error("backend failed", "error", err)
			return status | BackendFail
		}
	}

	logger.Info("group processing complete", "bands", len(meta.Bands))
	return status
}

func (p *Pipeline) announce(ctx context.Context, meta *swath.Metadata, logger *slog.Logger) {
	if p.announcer == nil {
		return
	}
	if err := p.announcer.AnnounceSwath(ctx, meta); err != nil {
		logger.Warn("swath announcement failed", "error", err)
	}
}
