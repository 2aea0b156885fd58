package engine

import (
	"github.com/wippyai/hookinject/errors"
)

// Error kind codes reported by the shim.
const (
	codeNone             int32 = 0
	codeInvalidArgument  int32 = 1
	codeNotSupported     int32 = 2
	codePermissionDenied int32 = 3
	codeProcessNotFound  int32 = 4
	codeRuntime          int32 = 5
)

const unknownError = "unknown error"

// translate maps a shim failure into the errors taxonomy.
// pid is 0 when the failing call had no target pid.
func translate(phase errors.Phase, code int32, msg string, pid int) *errors.Error {
	if msg == "" {
		msg = unknownError
	}

	switch code {
	case codeInvalidArgument:
		return errors.InvalidInput(phase, msg)
	case codeNotSupported:
		return errors.NotSupported(phase, msg)
	case codePermissionDenied:
		return errors.PermissionDenied(phase, pid, msg)
	case codeProcessNotFound:
		if pid > 0 {
			return errors.ProcessNotFound(phase, pid)
		}
		return errors.Runtime(phase, msg)
	default:
		return errors.Runtime(phase, msg)
	}
}
