package runtime

import (
	"context"
	"sync"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/engine"
)

// lazyRuntime builds a Runtime on first use and remembers the outcome.
type lazyRuntime struct {
	open func() (engine.Engine, error)
	rt   *Runtime
	err  error
	once sync.Once
}

func (l *lazyRuntime) get() (*Runtime, error) {
	l.once.Do(func() {
		eng, err := l.open()
		if err != nil {
			l.err = err
			return
		}
		l.rt = New(eng)
	})
	return l.rt, l.err
}

var defaultRuntime = &lazyRuntime{
	open: func() (engine.Engine, error) {
		return engine.Open(engine.ConfigFromEnv())
	},
}

// Default returns the process-wide runtime. The first caller opens the
// engine; everyone, including goroutines racing that first call, gets the
// same runtime or the same RuntimeUnavailable error. It is never closed.
func Default() (*Runtime, error) {
	return defaultRuntime.get()
}

// InjectProcess injects lib into proc using the default runtime.
func InjectProcess(ctx context.Context, proc hookinject.Process, lib hookinject.Library) (*InjectedProcess, error) {
	rt, err := Default()
	if err != nil {
		return nil, err
	}
	return rt.InjectProcess(ctx, proc, lib)
}

// InjectProgram launches p with lib using the default runtime.
func InjectProgram(ctx context.Context, p *hookinject.Program, lib hookinject.Library) (*InjectedProgram, error) {
	rt, err := Default()
	if err != nil {
		return nil, err
	}
	return rt.InjectProgram(ctx, p, lib)
}

// Spawn launches p suspended using the default runtime.
func Spawn(ctx context.Context, p *hookinject.Program) (*SuspendedProgram, error) {
	rt, err := Default()
	if err != nil {
		return nil, err
	}
	return rt.Spawn(ctx, p)
}
