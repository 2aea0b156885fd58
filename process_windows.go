//go:build windows

package hookinject

import (
	stderrors "errors"

	"golang.org/x/sys/windows"

	"github.com/wippyai/hookinject/errors"
)

func processExists(pid int) (bool, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err == nil {
		windows.CloseHandle(h)
		return true, nil
	}

	if stderrors.Is(err, windows.ERROR_ACCESS_DENIED) {
		// Access denied means the process most likely exists, but we cannot say for sure.
		return false, errors.PermissionDenied(errors.PhaseProbe, pid,
			"permission denied while probing process (OpenProcess)")
	}
	return false, nil
}
