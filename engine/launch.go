package engine

import (
	"strings"

	"github.com/wippyai/hookinject/errors"
)

// LaunchParams is a program launch prepared for the native boundary.
type LaunchParams struct {
	Program string
	// Argv starts with Program.
	Argv []string
	// Env holds KEY=VALUE overrides merged over the inherited environment.
	// Empty means inherit unchanged.
	Env []string
	// Cwd is empty to inherit the working directory.
	Cwd string
	// Stdio is the stdio code: 0 inherit, 1 null, 2 pipe.
	Stdio int32
}

// Validate reports strings that cannot cross the native boundary.
func (p LaunchParams) Validate() error {
	if p.Program == "" {
		return errors.InvalidInput(errors.PhaseValidate, "program is empty")
	}
	if hasNUL(p.Program) {
		return errors.InvalidInput(errors.PhaseValidate, "program contains NUL")
	}
	for _, a := range p.Argv {
		if hasNUL(a) {
			return errors.InvalidInput(errors.PhaseValidate, "argument contains NUL")
		}
	}
	for _, kv := range p.Env {
		if hasNUL(kv) {
			return errors.InvalidInput(errors.PhaseValidate, "environment entry contains NUL")
		}
	}
	if hasNUL(p.Cwd) {
		return errors.InvalidInput(errors.PhaseValidate, "working directory contains NUL")
	}
	if p.Stdio < 0 || p.Stdio > 2 {
		return errors.InvalidInput(errors.PhaseValidate, "unknown stdio mode")
	}
	return nil
}

func hasNUL(s string) bool {
	return strings.IndexByte(s, 0) >= 0
}
