package runtime

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/engine"
	"github.com/wippyai/hookinject/errors"
	"github.com/wippyai/hookinject/resource"
)

// Runtime drives an Engine through the injection lifecycle.
// It is safe for concurrent use and adds no locking around engine calls.
type Runtime struct {
	engine  engine.Engine
	table   *resource.Table
	log     *zap.Logger
	metrics *Metrics
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Defaults to the package Logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics records engine calls on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// New creates a runtime over eng. The runtime owns eng.
func New(eng engine.Engine, opts ...Option) *Runtime {
	r := &Runtime{
		engine: eng,
		table:  resource.NewTable(),
		log:    Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases the engine. Live injections are not uninjected.
func (r *Runtime) Close() error {
	if n := r.table.Len(); n > 0 {
		r.log.Debug("closing runtime with live injections", zap.Int("count", n))
	}
	r.table.Close()
	return r.engine.Close()
}

// Injections returns the registry of live injections.
func (r *Runtime) Injections() *resource.Table {
	return r.table
}

// Active returns the number of live injections.
func (r *Runtime) Active() int {
	return r.table.Len()
}

// Spawn launches p suspended before its entrypoint runs.
func (r *Runtime) Spawn(ctx context.Context, p *hookinject.Program) (*SuspendedProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params, err := launchParams(p)
	if err != nil {
		return nil, err
	}

	pid, err := r.spawn(params)
	if err != nil {
		return nil, err
	}
	return newSuspended(r, hookinject.FromPidUnchecked(pid), p.StdioMode()), nil
}

// InjectProgram launches p with lib loaded before it runs.
//
// A file library goes through a single combined launch call. A blob is
// spawned, injected and then resumed; resume only happens once the
// injection succeeded.
func (r *Runtime) InjectProgram(ctx context.Context, p *hookinject.Program, lib hookinject.Library) (*InjectedProgram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	params, err := launchParams(p)
	if err != nil {
		return nil, err
	}

	if lib.Kind() == hookinject.SourceBlob {
		pid, err := r.spawn(params)
		if err != nil {
			return nil, err
		}
		suspended := newSuspended(r, hookinject.FromPidUnchecked(pid), p.StdioMode())
		return suspended.inject(lib)
	}

	pid, id, err := r.injectLaunch(params, lib)
	if err != nil {
		return nil, err
	}
	proc := hookinject.FromPidUnchecked(pid)
	return newInjectedProgram(r, id, proc, Child{pid: pid, stdio: p.StdioMode()}), nil
}

// InjectProcess injects lib into a running process.
func (r *Runtime) InjectProcess(ctx context.Context, proc hookinject.Process, lib hookinject.Library) (*InjectedProcess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	if proc.Pid() <= 0 {
		return nil, errors.InvalidInput(errors.PhaseValidate, "pid must be > 0")
	}

	id, err := r.injectInto(proc.Pid(), lib)
	if err != nil {
		return nil, err
	}
	return newInjectedProcess(r, id, proc), nil
}

// Resume resumes a process left suspended by Spawn.
func (r *Runtime) Resume(ctx context.Context, proc hookinject.Process) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.resume(proc.Pid())
}

// Uninject stops monitoring injection id. Id 0 is a no-op. Engine ids are
// 32-bit; larger values are rejected without an engine call.
func (r *Runtime) Uninject(ctx context.Context, id uint64) error {
	if id == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if id > math.MaxUint32 {
		return errors.InvalidInput(errors.PhaseValidate, "injection id out of range")
	}
	return r.uninject(id)
}

// Engine calls. Each one is timed, counted and logged.

func (r *Runtime) spawn(params engine.LaunchParams) (int, error) {
	start := time.Now()
	pid, err := r.engine.Spawn(params)
	r.metrics.observe(opSpawn, time.Since(start), err)
	if err != nil {
		r.log.Debug("spawn failed", zap.String("program", params.Program), zap.Error(err))
		return 0, err
	}
	r.log.Debug("spawned suspended", zap.String("program", params.Program), zap.Int("pid", pid))
	return pid, nil
}

func (r *Runtime) injectInto(pid int, lib hookinject.Library) (uint64, error) {
	var (
		id     uint64
		err    error
		op     string
		source resource.Source
	)

	start := time.Now()
	switch lib.Kind() {
	case hookinject.SourceBlob:
		op, source = opInjectBlob, resource.SourceBlob
		id, err = r.engine.InjectBlob(pid, lib.Blob(), lib.Entrypoint(), lib.Data())
	default:
		op, source = opInjectFile, resource.SourceFile
		id, err = r.engine.InjectFile(pid, lib.Path(), lib.Entrypoint(), lib.Data())
	}
	r.metrics.observe(op, time.Since(start), err)
	if err != nil {
		r.log.Debug("inject failed", zap.Int("pid", pid), zap.String("source", string(source)), zap.Error(err))
		return 0, err
	}

	r.track(id, pid, source)
	return id, nil
}

func (r *Runtime) injectLaunch(params engine.LaunchParams, lib hookinject.Library) (int, uint64, error) {
	if lib.Kind() != hookinject.SourcePath {
		return 0, 0, errors.InvalidInput(errors.PhaseValidate, "library must be a file path for launch")
	}

	start := time.Now()
	pid, id, err := r.engine.InjectLaunch(params, lib.Path(), lib.Entrypoint(), lib.Data())
	r.metrics.observe(opInjectLaunch, time.Since(start), err)
	if err != nil {
		r.log.Debug("launch inject failed", zap.String("program", params.Program), zap.Error(err))
		return 0, 0, err
	}

	r.track(id, pid, resource.SourceLaunch)
	return pid, id, nil
}

func (r *Runtime) resume(pid int) error {
	start := time.Now()
	err := r.engine.Resume(pid)
	r.metrics.observe(opResume, time.Since(start), err)
	if err != nil {
		r.log.Debug("resume failed", zap.Int("pid", pid), zap.Error(err))
		return err
	}
	r.log.Debug("resumed", zap.Int("pid", pid))
	return nil
}

func (r *Runtime) uninject(id uint64) error {
	start := time.Now()
	err := r.engine.Demonitor(id)
	r.metrics.observe(opDemonitor, time.Since(start), err)
	if err != nil {
		r.log.Debug("uninject failed", zap.Uint64("id", id), zap.Error(err))
		return err
	}

	r.table.Remove(resource.ID(id))
	r.metrics.setActive(r.table.Len())
	r.log.Debug("uninjected", zap.Uint64("id", id))
	return nil
}

func (r *Runtime) track(id uint64, pid int, source resource.Source) {
	if _, err := r.table.Insert(resource.ID(id), pid, source); err != nil {
		r.log.Warn("injection not tracked", zap.Uint64("id", id), zap.Int("pid", pid), zap.Error(err))
	}
	r.metrics.setActive(r.table.Len())
	r.log.Debug("injected", zap.Uint64("id", id), zap.Int("pid", pid), zap.String("source", string(source)))
}

// launchParams prepares p for the engine.
func launchParams(p *hookinject.Program) (engine.LaunchParams, error) {
	if p == nil {
		return engine.LaunchParams{}, errors.InvalidInput(errors.PhaseValidate, "program is nil")
	}
	params := engine.LaunchParams{
		Program: p.Path(),
		Argv:    p.Argv(),
		Env:     p.Envp(),
		Cwd:     p.WorkingDir(),
		Stdio:   int32(p.StdioMode()),
	}
	if err := params.Validate(); err != nil {
		return engine.LaunchParams{}, err
	}
	return params, nil
}
