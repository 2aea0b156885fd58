package engine

import (
	"os"
	"strconv"
	"strings"
)

// Engine is the native call contract.
//
// Pids are positive. Injection ids are opaque and never 0 on success.
// Implementations must be safe for concurrent use.
type Engine interface {
	// InjectFile loads the library at path into pid and calls entrypoint(data).
	InjectFile(pid int, path, entrypoint, data string) (uint64, error)
	// InjectBlob loads an in-memory library image into pid.
	InjectBlob(pid int, blob []byte, entrypoint, data string) (uint64, error)
	// InjectLaunch spawns p suspended, injects the library file and resumes it.
	InjectLaunch(p LaunchParams, path, entrypoint, data string) (pid int, id uint64, err error)
	// Spawn launches p and leaves it suspended before its entrypoint runs.
	Spawn(p LaunchParams) (int, error)
	// Resume resumes a process left suspended by Spawn.
	Resume(pid int) error
	// Demonitor stops monitoring the injection id.
	Demonitor(id uint64) error
	// Close releases the native context. Later calls are no-ops.
	Close() error
}

// InjectorMode selects how libraries are loaded into the target.
type InjectorMode string

const (
	// InjectorHelper uses an out-of-process helper. Works on more macOS setups.
	InjectorHelper InjectorMode = "helper"
	// InjectorInProcess injects directly from the calling process.
	InjectorInProcess InjectorMode = "inprocess"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvInjector = "HOOKINJECT_INJECTOR"
	EnvDebug    = "HOOKINJECT_DEBUG"
)

// Config configures the native context.
type Config struct {
	Injector InjectorMode
	// Debug makes the shim trace its steps to stderr.
	Debug bool
}

// DefaultConfig returns the helper injector with tracing off.
func DefaultConfig() Config {
	return Config{Injector: InjectorHelper}
}

// ConfigFromEnv builds a Config from HOOKINJECT_INJECTOR and HOOKINJECT_DEBUG.
// Unknown injector values fall back to the helper.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if strings.EqualFold(os.Getenv(EnvInjector), string(InjectorInProcess)) {
		cfg.Injector = InjectorInProcess
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		// Any non-boolean value still enables tracing.
		cfg.Debug = err != nil || b
	}
	return cfg
}
