package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"syscall"

	"github.com/polarorbit/sounder-data-etl/internal/swath"
)

// faultKind classifies a fault caught at the worker boundary. The
// enumeration is closed: everything a worker can throw lands in exactly one
// class, and each class has its own log message.
type faultKind int

const (
	faultMemory faultKind = iota
	faultOS
	faultInterrupt
	faultUnknown
)

func (k faultKind) String() string {
	switch k {
	case faultMemory:
		return "memory"
	case faultOS:
		return "os"
	case faultInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// faultStatus maps every fault class to its non-zero exit status. A fault is
// by definition not a stage failure, so all classes land on UnknownFail; the
// table keeps the mapping explicit and in one place.
var faultStatus = map[faultKind]Status{
	faultMemory:    UnknownFail,
	faultOS:        UnknownFail,
	faultInterrupt: UnknownFail,
	faultUnknown:   UnknownFail,
}

// classifyFault buckets a recovered panic value.
func classifyFault(r any) faultKind {
	err, ok := r.(error)
	if !ok {
		return faultUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return faultInterrupt
	}
	if errors.Is(err, syscall.ENOMEM) || strings.Contains(err.Error(), "out of memory") {
		return faultMemory
	}
	var pathErr *os.PathError
	var syscallErr *os.SyscallError
	var linkErr *os.LinkError
	if errors.As(err, &pathErr) || errors.As(err, &syscallErr) || errors.As(err, &linkErr) {
		return faultOS
	}
	return faultUnknown
}

// GroupResult is one worker's terminal report, delivered on the worker's
// result channel.
type GroupResult struct {
	Group  swath.NavID
	Status Status
}

// runWorker executes one group inside the fault boundary and always delivers
// exactly one result on the channel: any panic or operator interrupt is
// caught here, classified, logged by class, and converted to a non-zero
// status instead of crashing or hanging the batch.
func (o *Orchestrator) runWorker(ctx context.Context, group swath.NavID, paths []string, results chan<- GroupResult) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		kind := classifyFault(r)
		switch kind {
		case faultMemory:
			o.logger.Error("worker ran out of memory", "nav_set", group, "fault", r)
		case faultOS:
			o.logger.Error("worker had an OS error", "nav_set", group, "fault", r)
		case faultInterrupt:
			o.logger.Info("worker was cancelled by an interrupt", "nav_set", group)
		default:
			o.logger.Error("worker had an unexpected error", "nav_set", group, "fault", r)
		}
		o.metrics.WorkerFaults.WithLabelValues(kind.String()).Inc()
		results <- GroupResult{Group: group, Status: faultStatus[kind]}
	}()

	if err := ctx.Err(); err != nil {
		// Interrupt before the group even started still exits cleanly.
		o.logger.Info("worker was cancelled by an interrupt", "nav_set", group)
		o.metrics.WorkerFaults.WithLabelValues(faultInterrupt.String()).Inc()
		results <- GroupResult{Group: group, Status: faultStatus[faultInterrupt]}
		return
	}

	results <- GroupResult{Group: group, Status: o.proc.ProcessGroup(ctx, group, paths)}
}
