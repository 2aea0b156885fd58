//go:build cgo

package engine

/*
#cgo frida pkg-config: glib-2.0 gobject-2.0 json-glib-1.0
#include <stdlib.h>
#include "frida_shim.h"
*/
import "C"

import (
	"math"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/hookinject/errors"
)

// FridaEngine owns one native injector context.
//
// Primitives hold mu for reading across their native call, so they run
// concurrently with each other. Close takes it for writing and frees ctx
// only once no call is in flight; a nil ctx means closed.
type FridaEngine struct {
	mu  sync.RWMutex
	ctx *C.HookFridaCtx
}

var _ Engine = (*FridaEngine)(nil)

// Open creates a native context for the local device.
// Failure is reported as RuntimeUnavailable.
func Open(cfg Config) (Engine, error) {
	var ccfg C.HookFridaConfig
	ccfg.injector = C.HOOK_FRIDA_INJECTOR_HELPER
	if cfg.Injector == InjectorInProcess {
		ccfg.injector = C.HOOK_FRIDA_INJECTOR_INPROCESS
	}
	if cfg.Debug {
		ccfg.debug = 1
	}

	var kind C.int32_t
	var msg *C.char
	ctx := C.hook_frida_new(&ccfg, &kind, &msg)
	if ctx == nil {
		detail := takeString(msg)
		if detail == "" {
			detail = "frida runtime unavailable"
		}
		Logger().Debug("engine init failed",
			zap.Int32("kind", int32(kind)),
			zap.String("detail", detail))
		return nil, errors.RuntimeUnavailable(detail)
	}

	Logger().Debug("engine initialized", zap.String("injector", string(cfg.Injector)))
	return &FridaEngine{ctx: ctx}, nil
}

// InjectFile injects a library file into pid.
func (e *FridaEngine) InjectFile(pid int, path, entrypoint, data string) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ctx == nil {
		return 0, errClosed(errors.PhaseInject)
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	centry := C.CString(entrypoint)
	defer C.free(unsafe.Pointer(centry))
	cdata := C.CString(data)
	defer C.free(unsafe.Pointer(cdata))

	var id C.uint32_t
	var kind C.int32_t
	var msg *C.char
	rc := C.hook_frida_inject_process(e.ctx, C.int32_t(pid), cpath, centry, cdata, &id, &kind, &msg)
	if rc <= 0 {
		return 0, translate(errors.PhaseInject, int32(kind), takeString(msg), pid)
	}
	return uint64(id), nil
}

// InjectBlob injects an in-memory library image into pid.
func (e *FridaEngine) InjectBlob(pid int, blob []byte, entrypoint, data string) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ctx == nil {
		return 0, errClosed(errors.PhaseInject)
	}
	if len(blob) == 0 {
		return 0, errors.InvalidInput(errors.PhaseInject, "library blob is empty")
	}

	centry := C.CString(entrypoint)
	defer C.free(unsafe.Pointer(centry))
	cdata := C.CString(data)
	defer C.free(unsafe.Pointer(cdata))

	var id C.uint32_t
	var kind C.int32_t
	var msg *C.char
	// The shim copies the bytes before returning, so the Go slice is only
	// borrowed for the call.
	rc := C.hook_frida_inject_blob(e.ctx, C.int32_t(pid),
		(*C.uint8_t)(unsafe.Pointer(&blob[0])), C.size_t(len(blob)),
		centry, cdata, &id, &kind, &msg)
	if rc <= 0 {
		return 0, translate(errors.PhaseInject, int32(kind), takeString(msg), pid)
	}
	return uint64(id), nil
}

// InjectLaunch spawns p suspended, injects the library file and resumes it.
func (e *FridaEngine) InjectLaunch(p LaunchParams, path, entrypoint, data string) (int, uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ctx == nil {
		return 0, 0, errClosed(errors.PhaseSpawn)
	}

	l := newCLaunch(p)
	defer l.free()
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	centry := C.CString(entrypoint)
	defer C.free(unsafe.Pointer(centry))
	cdata := C.CString(data)
	defer C.free(unsafe.Pointer(cdata))

	var pid, id C.uint32_t
	var kind C.int32_t
	var msg *C.char
	rc := C.hook_frida_inject_launch(e.ctx, l.program, l.argv, l.envp, l.cwd, C.int32_t(p.Stdio),
		cpath, centry, cdata, &pid, &id, &kind, &msg)
	if rc <= 0 {
		return 0, 0, translate(errors.PhaseInject, int32(kind), takeString(msg), 0)
	}
	return int(pid), uint64(id), nil
}

// Spawn launches p suspended.
func (e *FridaEngine) Spawn(p LaunchParams) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ctx == nil {
		return 0, errClosed(errors.PhaseSpawn)
	}

	l := newCLaunch(p)
	defer l.free()

	var pid C.uint32_t
	var kind C.int32_t
	var msg *C.char
	rc := C.hook_frida_spawn(e.ctx, l.program, l.argv, l.envp, l.cwd, C.int32_t(p.Stdio), &pid, &kind, &msg)
	if rc <= 0 {
		return 0, translate(errors.PhaseSpawn, int32(kind), takeString(msg), 0)
	}
	return int(pid), nil
}

// Resume resumes a suspended process.
func (e *FridaEngine) Resume(pid int) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ctx == nil {
		return errClosed(errors.PhaseResume)
	}

	var kind C.int32_t
	var msg *C.char
	if rc := C.hook_frida_resume(e.ctx, C.uint32_t(pid), &kind, &msg); rc <= 0 {
		return translate(errors.PhaseResume, int32(kind), takeString(msg), pid)
	}
	return nil
}

// Demonitor stops monitoring an injection. Ids wider than the engine's
// 32-bit id space are rejected rather than truncated.
func (e *FridaEngine) Demonitor(id uint64) error {
	if id > math.MaxUint32 {
		return errors.InvalidInput(errors.PhaseUninject, "injection id out of range")
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ctx == nil {
		return errClosed(errors.PhaseUninject)
	}

	var kind C.int32_t
	var msg *C.char
	if rc := C.hook_frida_demonitor(e.ctx, C.uint32_t(id), &kind, &msg); rc <= 0 {
		return translate(errors.PhaseUninject, int32(kind), takeString(msg), 0)
	}
	return nil
}

// Close releases the native context exactly once.
func (e *FridaEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx == nil {
		return nil
	}
	C.hook_frida_free(e.ctx)
	e.ctx = nil
	Logger().Debug("engine closed")
	return nil
}

func errClosed(phase errors.Phase) *errors.Error {
	return errors.New(phase, errors.KindRuntimeUnavailable).Detail("engine is closed").Build()
}

// takeString copies a shim-owned string and releases it.
func takeString(s *C.char) string {
	if s == nil {
		return ""
	}
	defer C.hook_frida_string_free(s)
	return C.GoString(s)
}

// cLaunch holds the C copies of a LaunchParams for the duration of one call.
type cLaunch struct {
	program *C.char
	argv    **C.char
	envp    **C.char
	cwd     *C.char
	allocs  []unsafe.Pointer
}

func newCLaunch(p LaunchParams) *cLaunch {
	l := &cLaunch{}
	l.program = l.cstring(p.Program)
	l.argv = l.cstrings(p.Argv)
	if len(p.Env) > 0 {
		l.envp = l.cstrings(p.Env)
	}
	if p.Cwd != "" {
		l.cwd = l.cstring(p.Cwd)
	}
	return l
}

func (l *cLaunch) cstring(s string) *C.char {
	cs := C.CString(s)
	l.allocs = append(l.allocs, unsafe.Pointer(cs))
	return cs
}

// cstrings builds a NULL-terminated char* array.
func (l *cLaunch) cstrings(ss []string) **C.char {
	size := C.size_t(len(ss)+1) * C.size_t(unsafe.Sizeof((*C.char)(nil)))
	arr := (**C.char)(C.malloc(size))
	l.allocs = append(l.allocs, unsafe.Pointer(arr))

	slots := unsafe.Slice(arr, len(ss)+1)
	for i, s := range ss {
		slots[i] = l.cstring(s)
	}
	slots[len(ss)] = nil
	return arr
}

func (l *cLaunch) free() {
	for _, p := range l.allocs {
		C.free(p)
	}
	l.allocs = nil
}
