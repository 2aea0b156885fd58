//go:build !cgo

package engine

import (
	"github.com/wippyai/hookinject/errors"
)

// Open always fails when cgo is disabled.
func Open(Config) (Engine, error) {
	return nil, errors.New(errors.PhaseInit, errors.KindRuntimeUnavailable).
		Detail("frida runtime unavailable (built without cgo)").
		Cause(errors.ErrNotSupported).
		Build()
}
