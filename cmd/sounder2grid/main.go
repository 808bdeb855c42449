// Command sounder2grid takes atmospheric-sounder retrieval files, extracts
// normalized swaths per navigation group, and hands the flat-binary
// interchange files to the downstream grid-determination, remap, and
// backend collaborators. Groups run one worker each; the process exit code
// is the bitwise OR of every group's status.
//
// Usage:
//
//	sounder2grid [-sp] [-d dir | file...]
//	sounder2grid -remove-prev
//	sounder2grid -print-metadata file...
//
// Configuration comes from environment variables (WORK_DIR, EXPLODE,
// LON_MONOTONIC, ANNOUNCE_BROKERS, METRICS_ADDR, LOG_*).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/polarorbit/sounder-data-etl/internal/adapter/httpops"
	kafkaadapter "github.com/polarorbit/sounder-data-etl/internal/adapter/kafka"
	"github.com/polarorbit/sounder-data-etl/internal/adapter/netcdf"
	"github.com/polarorbit/sounder-data-etl/internal/config"
	"github.com/polarorbit/sounder-data-etl/internal/fbf"
	"github.com/polarorbit/sounder-data-etl/internal/frontend"
	"github.com/polarorbit/sounder-data-etl/internal/observability"
	"github.com/polarorbit/sounder-data-etl/internal/pipeline"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

func main() {
	os.Exit(run())
}

func run() int {
	singleProcess := flag.Bool("sp", false, "process groups sequentially instead of one worker per navigation group")
	dataDir := flag.String("d", "", "directory to scan for input files")
	removePrev := flag.Bool("remove-prev", false, "delete files left by a previous run instead of processing")
	printMetadata := flag.Bool("print-metadata", false, "extract only and dump each group's metadata as JSON")
	logFile := flag.String("log", "", "log filename (overrides LOG_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	logger := observability.NewLogger(cfg)

	if *removePrev {
		logger.Info("removing any possible conflicting files", "dir", cfg.WorkDir)
		for _, err := range fbf.RemovePrevious(cfg.WorkDir) {
			logger.Error("cleanup failed", "error", err)
		}
		return 0
	}

	guide := swath.DefaultGuidebook()
	paths, err := gatherInputs(*dataDir, flag.Args(), guide)
	if err != nil {
		logger.Error("gathering input files failed", "error", err)
		return 1
	}
	if len(paths) == 0 {
		logger.Error("no input files given, try -h for usage")
		return 1
	}

	metrics := observability.NewMetrics()
	front := frontend.New(guide, netcdf.Opener{}, frontend.Options{
		WorkDir:       cfg.WorkDir,
		Explode:       cfg.Explode,
		ExplodeFactor: cfg.ExplodeFactor,
		LonMonotonic:  cfg.LonMonotonic,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *printMetadata {
		return dumpMetadata(ctx, front, guide, paths, logger)
	}

	var announcer pipeline.Announcer
	if cfg.AnnounceEnabled() {
		a := kafkaadapter.NewAnnouncer(cfg, logger, metrics)
		defer a.Close()
		announcer = a
		logger.Info("swath announcements enabled", "topic", cfg.AnnounceTopic)
	}

	// Grid determination, remapping, and the product backend are external
	// collaborators; the shipped binary stops after extraction.
	p := pipeline.New(front, nil, nil, nil, announcer, logger)
	orch := pipeline.NewOrchestrator(p, guide, logger, metrics)

	if cfg.MetricsAddr != "" {
		srv := httpops.NewServer(cfg.MetricsAddr, orch, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("ops server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("ops server shutdown error", "error", err)
			}
		}()
	}

	status := orch.Run(ctx, paths, !*singleProcess)
	logger.Info("batch complete", "status", status.String(), "exit_code", status.ExitCode())
	return status.ExitCode()
}

// gatherInputs merges explicit file arguments with a directory scan. The
// scan keeps only entries matching a known naming grammar.
func gatherInputs(dir string, args []string, guide *swath.Guidebook) ([]string, error) {
	paths := append([]string(nil), args...)
	if dir == "" {
		return paths, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if _, err := guide.FileInfo(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// dumpMetadata runs extraction only, printing each group's metadata to
// stdout. Returns the frontend failure bit if any group fails.
func dumpMetadata(ctx context.Context, front *frontend.Frontend, guide *swath.Guidebook, paths []string, logger *slog.Logger) int {
	groups, _ := guide.Classify(paths, logger)
	status := pipeline.Success
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for group, files := range groups {
		meta, err := front.MakeSwaths(ctx, files)
		if err != nil {
			logger.Error("swath creation failed", "nav_set", group, "error", err)
			status |= pipeline.FrontendFail
			continue
		}
		if err := enc.Encode(meta); err != nil {
			logger.Error("encoding metadata failed", "nav_set", group, "error", err)
			status |= pipeline.UnknownFail
		}
	}
	return status.ExitCode()
}
