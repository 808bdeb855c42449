package pipeline

import "strings"

// Status is the OR-combinable bitmask of independent failure categories for
// one navigation group or a whole batch. Zero is success. Bits only
// accumulate; nothing ever clears one. The integer value doubles as the
// process exit code.
type Status int

// Success is the zero status.
const Success Status = 0

// Failure bits, one per pipeline stage plus a catch-all.
const (
	FrontendFail Status = 1 << iota
	GridDeterminationFail
	RemapFail
	BackendFail
	UnknownFail
)

var statusNames = []struct {
	bit  Status
	name string
}{
	{FrontendFail, "frontend-fail"},
	{GridDeterminationFail, "grid-determination-fail"},
	{RemapFail, "remap-fail"},
	{BackendFail, "backend-fail"},
	{UnknownFail, "unknown-fail"},
}

// Has reports whether every bit in s2 is set in s.
func (s Status) Has(s2 Status) bool { return s&s2 == s2 }

// ExitCode returns the integer value surfaced as the process exit code.
func (s Status) ExitCode() int { return int(s) }

// String renders the set failure flags, or "success".
func (s Status) String() string {
	if s == Success {
		return "success"
	}
	var names []string
	for _, sn := range statusNames {
		if s.Has(sn.bit) {
			names = append(names, sn.name)
		}
	}
	if len(names) == 0 {
		return "unrecognized-status"
	}
	return strings.Join(names, "|")
}
