package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/agent"
	"github.com/wippyai/hookinject/engine"
	"github.com/wippyai/hookinject/runtime"
)

type options struct {
	pid         int
	launch      string
	lib         string
	module      string
	entry       string
	data        string
	argv        string
	env         string
	cwd         string
	stdio       string
	metrics     string
	spawnOnly   bool
	wait        bool
	interactive bool
	verbose     bool
}

func main() {
	var o options
	flag.IntVar(&o.pid, "pid", 0, "Inject into running process with this pid")
	flag.StringVar(&o.launch, "launch", "", "Program to launch")
	flag.StringVar(&o.lib, "lib", "", "Path to shared library to inject")
	flag.StringVar(&o.module, "module", "", "Go agent module directory (built on demand)")
	flag.StringVar(&o.entry, "entry", "", "Entrypoint symbol (default "+hookinject.DefaultEntrypoint+")")
	flag.StringVar(&o.data, "data", "", "Data string passed to the entrypoint")
	flag.StringVar(&o.argv, "argv", "", "Program arguments (comma-separated)")
	flag.StringVar(&o.env, "env", "", "Environment overrides (KEY=VAL,KEY2=VAL2)")
	flag.StringVar(&o.cwd, "cwd", "", "Working directory for the launched program")
	flag.StringVar(&o.stdio, "stdio", "inherit", "Child stdio: inherit, null or pipe")
	flag.StringVar(&o.metrics, "metrics", "", "Serve Prometheus metrics on this address while waiting")
	flag.BoolVar(&o.spawnOnly, "spawn-only", false, "Launch suspended and resume without injecting")
	flag.BoolVar(&o.wait, "wait", false, "Hold the injection until interrupted, then uninject")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI (requires -launch)")
	flag.BoolVar(&o.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if err := o.check(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		usage()
		os.Exit(2)
	}

	log := setupLogging(o.verbose)
	defer log.Sync()

	if err := run(o, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: hookinject -pid <pid> (-lib <file> | -module <dir>) [-entry sym] [-data str]")
	fmt.Fprintln(os.Stderr, "       hookinject -launch <prog> [-argv a,b] [-env K=V,...] [-cwd dir] [-stdio mode] (-lib <file> | -module <dir>)")
	fmt.Fprintln(os.Stderr, "       hookinject -launch <prog> -spawn-only")
	fmt.Fprintln(os.Stderr, "       hookinject -launch <prog> -lib <file> -i  (interactive mode)")
}

func (o options) check() error {
	switch {
	case o.pid == 0 && o.launch == "":
		return errors.New("one of -pid or -launch is required")
	case o.pid != 0 && o.launch != "":
		return errors.New("-pid and -launch are mutually exclusive")
	case o.lib != "" && o.module != "":
		return errors.New("-lib and -module are mutually exclusive")
	case o.interactive && o.launch == "":
		return errors.New("-i requires -launch")
	case o.spawnOnly && o.launch == "":
		return errors.New("-spawn-only requires -launch")
	case !o.spawnOnly && o.lib == "" && o.module == "":
		return errors.New("one of -lib or -module is required")
	}
	if _, ok := hookinject.ParseStdio(o.stdio); !ok {
		return fmt.Errorf("invalid -stdio %q", o.stdio)
	}
	return nil
}

// setupLogging builds the CLI logger and hands it to the library packages.
func setupLogging(verbose bool) *zap.Logger {
	log := zap.NewNop()
	if verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}
	runtime.SetLogger(log)
	engine.SetLogger(log)
	agent.SetLogger(log)
	return log
}

func run(o options, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics, err := runtime.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	eng, err := engine.Open(engine.ConfigFromEnv())
	if err != nil {
		return err
	}
	rt := runtime.New(eng, runtime.WithLogger(log), runtime.WithMetrics(metrics))
	defer rt.Close()

	if o.verbose {
		defer func() {
			families, _ := reg.Gather()
			log.Debug("engine calls", zap.Float64("total", counterTotal(families, "hookinject_operations_total")))
			writeMetrics(os.Stderr, reg)
		}()
	}

	if o.metrics != "" {
		srv := &http.Server{Addr: o.metrics, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	var lib hookinject.Library
	if !o.spawnOnly {
		lib, err = loadLibrary(ctx, o)
		if err != nil {
			return err
		}
	}

	if o.pid != 0 {
		return injectProcess(ctx, rt, o, lib)
	}

	prog := buildProgram(o)
	switch {
	case o.interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("-i needs a terminal on stdout")
		}
		return runInteractive(ctx, log, rt, prog, lib)
	case o.spawnOnly:
		return spawnOnly(ctx, rt, o, prog)
	default:
		return injectProgram(ctx, rt, o, prog, lib)
	}
}

func loadLibrary(ctx context.Context, o options) (hookinject.Library, error) {
	var (
		lib hookinject.Library
		err error
	)
	if o.module != "" {
		lib, err = hookinject.LibraryFromModule(ctx, o.module)
	} else {
		lib, err = hookinject.LibraryFromPath(o.lib)
	}
	if err != nil {
		return hookinject.Library{}, err
	}
	if o.entry != "" {
		lib = lib.WithEntrypoint(o.entry)
	}
	if o.data != "" {
		lib = lib.WithData(o.data)
	}
	return lib, lib.Validate()
}

func buildProgram(o options) *hookinject.Program {
	prog := hookinject.NewProgram(o.launch)
	if o.argv != "" {
		prog.Args(strings.Split(o.argv, ",")...)
	}
	if o.env != "" {
		for _, kv := range strings.Split(o.env, ",") {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				prog.Env(parts[0], parts[1])
			}
		}
	}
	if o.cwd != "" {
		prog.Dir(o.cwd)
	}
	stdio, _ := hookinject.ParseStdio(o.stdio)
	return prog.SetStdio(stdio)
}

func injectProcess(ctx context.Context, rt *runtime.Runtime, o options, lib hookinject.Library) error {
	proc, err := hookinject.FromPid(o.pid)
	if err != nil {
		return err
	}
	injected, err := rt.InjectProcess(ctx, proc, lib)
	if err != nil {
		return err
	}
	fmt.Printf("Injected %s into %s (id %d)\n", lib.Entrypoint(), proc, injected.ID())
	return hold(ctx, o, injected.Uninject)
}

func injectProgram(ctx context.Context, rt *runtime.Runtime, o options, prog *hookinject.Program, lib hookinject.Library) error {
	out, err := rt.InjectProgram(ctx, prog, lib)
	if err != nil {
		return err
	}
	fmt.Printf("Launched %s as %s with %s (id %d)\n", prog.Path(), out.Process(), lib.Entrypoint(), out.ID())
	return hold(ctx, o, out.Uninject)
}

func spawnOnly(ctx context.Context, rt *runtime.Runtime, o options, prog *hookinject.Program) error {
	suspended, err := rt.Spawn(ctx, prog)
	if err != nil {
		return err
	}
	fmt.Printf("Spawned %s suspended as %s\n", prog.Path(), suspended.Process())
	if o.wait {
		fmt.Println("Press Ctrl+C to resume")
		<-ctx.Done()
	}
	child, err := suspended.Resume(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Resumed pid %d\n", child.Pid())
	return nil
}

// hold waits for an interrupt when -wait is set, then uninjects.
func hold(ctx context.Context, o options, uninject func(context.Context) error) error {
	if !o.wait {
		return nil
	}
	fmt.Println("Press Ctrl+C to uninject")
	<-ctx.Done()
	if err := uninject(context.Background()); err != nil {
		return err
	}
	fmt.Println("Uninjected")
	return nil
}
