// Package runtime coordinates the injection lifecycle.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	// Inject into a running process through the process-wide runtime
//	proc, err := hookinject.FromPid(pid)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	injected, err := runtime.InjectProcess(ctx, proc, lib)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer injected.Uninject(ctx)
//
// # Lifecycle
//
// A launched program moves through these states:
//
//	Spawn                     -> SuspendedProgram (not yet at its entrypoint)
//	SuspendedProgram.Inject   -> InjectedProgram  (injected, then resumed)
//	SuspendedProgram.Resume   -> Child            (resumed, nothing injected)
//
// InjectProgram does all of it in one step. A running process goes straight
// from Process to InjectedProcess with InjectProcess.
//
// Handles are single use. A second Inject or Resume on a SuspendedProgram,
// or a second Uninject on an injected handle, fails with InvalidInput and
// never reaches the engine.
//
// If resuming fails after a successful injection, the injection is
// uninjected once on a best-effort basis and the resume error is returned.
//
// # Default Runtime
//
// Default returns a runtime shared by the whole process. Its engine is
// opened on first use with engine.ConfigFromEnv and is never closed. An
// initialization failure is remembered and returned to every later caller.
//
// Runtimes built with New own their engine; call Close when done.
//
// # Contexts
//
// Every operation checks its context once before entering the engine. A
// native call that has started is never interrupted.
//
// # Metrics
//
// Pass WithMetrics to count engine calls by outcome:
//
//	m, err := runtime.NewMetrics(prometheus.DefaultRegisterer)
//	rt := runtime.New(eng, runtime.WithMetrics(m))
package runtime
