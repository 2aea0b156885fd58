package runtime

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/errors"
)

// Child is a launched program. It exposes no stdio endpoints; use
// Program.Cmd and InjectProcess when the output is needed.
type Child struct {
	pid   int
	stdio hookinject.Stdio
}

// Pid returns the child's process id.
func (c Child) Pid() int { return c.pid }

// Stdio returns the stdio mode the child was launched with.
func (c Child) Stdio() hookinject.Stdio { return c.stdio }

// Process returns a handle to the child.
func (c Child) Process() hookinject.Process { return hookinject.FromPidUnchecked(c.pid) }

// SuspendedProgram is a launched program held before its entrypoint.
// Exactly one of Inject or Resume may be called.
type SuspendedProgram struct {
	rt       *Runtime
	proc     hookinject.Process
	stdio    hookinject.Stdio
	consumed atomic.Bool
}

func newSuspended(rt *Runtime, proc hookinject.Process, stdio hookinject.Stdio) *SuspendedProgram {
	return &SuspendedProgram{rt: rt, proc: proc, stdio: stdio}
}

// Process returns the suspended process.
func (s *SuspendedProgram) Process() hookinject.Process { return s.proc }

// Inject injects lib and then resumes the program.
//
// If resuming fails the injection is uninjected once, a failure of that
// cleanup is logged, and the resume error is returned.
func (s *SuspendedProgram) Inject(ctx context.Context, lib hookinject.Library) (*InjectedProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	return s.inject(lib)
}

func (s *SuspendedProgram) inject(lib hookinject.Library) (*InjectedProgram, error) {
	if !s.consumed.CompareAndSwap(false, true) {
		return nil, errConsumed()
	}

	pid := s.proc.Pid()
	id, err := s.rt.injectInto(pid, lib)
	if err != nil {
		return nil, err
	}

	if err := s.rt.resume(pid); err != nil {
		if uerr := s.rt.uninject(id); uerr != nil {
			s.rt.log.Warn("uninject after failed resume",
				zap.Int("pid", pid),
				zap.Uint64("id", id),
				zap.Error(uerr))
		}
		return nil, err
	}

	return newInjectedProgram(s.rt, id, s.proc, Child{pid: pid, stdio: s.stdio}), nil
}

// Resume resumes the program without injecting anything.
func (s *SuspendedProgram) Resume(ctx context.Context) (*Child, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.consumed.CompareAndSwap(false, true) {
		return nil, errConsumed()
	}
	if err := s.rt.resume(s.proc.Pid()); err != nil {
		return nil, err
	}
	return &Child{pid: s.proc.Pid(), stdio: s.stdio}, nil
}

func errConsumed() *errors.Error {
	return errors.InvalidInput(errors.PhaseValidate, "suspended program already consumed")
}

// injection is the shared part of injected handles.
type injection struct {
	rt       *Runtime
	id       uint64
	proc     hookinject.Process
	consumed atomic.Bool
}

// Process returns the injected process.
func (i *injection) Process() hookinject.Process { return i.proc }

// ID returns the engine's injection id.
func (i *injection) ID() uint64 { return i.id }

// Uninject stops monitoring the injection. It may be called once; the
// handle is spent even when the engine reports an error.
func (i *injection) Uninject(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !i.consumed.CompareAndSwap(false, true) {
		return errors.InvalidInput(errors.PhaseValidate, "injection already uninjected")
	}
	if i.id == 0 {
		return nil
	}
	return i.rt.uninject(i.id)
}

// InjectedProcess is a library injected into a running process.
type InjectedProcess struct {
	injection
}

func newInjectedProcess(rt *Runtime, id uint64, proc hookinject.Process) *InjectedProcess {
	return &InjectedProcess{injection: injection{rt: rt, id: id, proc: proc}}
}

// InjectedProgram is a launched program with a library injected.
type InjectedProgram struct {
	child Child
	injection
}

func newInjectedProgram(rt *Runtime, id uint64, proc hookinject.Process, child Child) *InjectedProgram {
	return &InjectedProgram{injection: injection{rt: rt, id: id, proc: proc}, child: child}
}

// Child returns the launched program.
func (p *InjectedProgram) Child() Child { return p.child }
