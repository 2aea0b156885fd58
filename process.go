package hookinject

import (
	"strconv"

	"github.com/wippyai/hookinject/errors"
)

// Process is a handle to a target OS process.
//
// A Process built by FromPid referred to a live process when it was
// constructed. Nothing keeps that true afterwards: the process may exit at any
// time, and the engine reports that race as ProcessNotFound or Runtime.
type Process struct {
	pid int
}

// probe reports whether pid exists. Replaced in tests.
var probe = processExists

// FromPid creates a process handle after verifying the pid exists.
//
// Some platforms answer the probe with a permission failure instead of a
// definitive answer; that is surfaced as PermissionDenied, never as
// ProcessNotFound.
func FromPid(pid int) (Process, error) {
	if pid <= 0 {
		return Process{}, errors.InvalidInput(errors.PhaseValidate, "pid must be > 0")
	}

	exists, err := probe(pid)
	if err != nil {
		return Process{}, err
	}
	if !exists {
		return Process{}, errors.ProcessNotFound(errors.PhaseProbe, pid)
	}
	return Process{pid: pid}, nil
}

// FromPidUnchecked creates a process handle without probing.
// The caller must already know pid is valid, e.g. because a spawn call just
// returned it.
func FromPidUnchecked(pid int) Process {
	return Process{pid: pid}
}

// Pid returns the process id.
func (p Process) Pid() int {
	return p.pid
}

func (p Process) String() string {
	return "pid " + strconv.Itoa(p.pid)
}
