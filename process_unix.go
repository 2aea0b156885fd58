//go:build unix

package hookinject

import (
	stderrors "errors"

	"golang.org/x/sys/unix"

	"github.com/wippyai/hookinject/errors"
)

func processExists(pid int) (bool, error) {
	// Signal 0 runs the existence and permission checks without delivering anything.
	err := unix.Kill(pid, 0)
	if err == nil {
		return true, nil
	}

	switch {
	case stderrors.Is(err, unix.ESRCH):
		return false, nil
	case stderrors.Is(err, unix.EPERM):
		return false, errors.PermissionDenied(errors.PhaseProbe, pid,
			"permission denied while probing process (kill(pid, 0))")
	default:
		return false, errors.Io(errors.PhaseProbe, err)
	}
}
