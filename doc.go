// Package hookinject injects dynamically loaded code into OS processes.
//
// A client describes what to inject with a Library and where with either a
// Process (an already running pid) or a Program (launched suspended, injected,
// then resumed). The runtime package coordinates the lifecycle on top of the
// native engine binding and hands back typed handles.
//
// # Architecture Overview
//
//	hookinject/           Process, Library and Program values
//	├── runtime/          Lifecycle coordinator and handles
//	├── engine/           cgo binding over the frida-core shim
//	├── resource/         Registry of live injections
//	├── errors/           Structured error taxonomy
//	├── agent/            Go agent module to c-shared artifact resolution
//	├── devkit/           frida-core devkit acquisition (build time)
//	└── cmd/              hookinject and hookinject-devkit commands
//
// # Quick Start
//
// Inject into a running process:
//
//	proc, err := hookinject.FromPid(1234)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lib, err := hookinject.LibraryFromPath("/path/to/libagent.so")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	injected, err := runtime.InjectProcess(ctx, proc, lib)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer injected.Uninject(ctx)
//
// Launch a program with the library already loaded:
//
//	prog := hookinject.NewProgram("/usr/bin/sleep").Arg("10")
//	out, err := runtime.InjectProgram(ctx, prog, lib)
//
// Or take control of the resume step yourself:
//
//	suspended, err := runtime.Spawn(ctx, prog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := suspended.Inject(ctx, lib) // injects, then resumes
//
// # Building
//
// The real engine is compiled with the frida build tag and needs a frida-core
// devkit. hookinject-devkit fetches one and prints the cgo flags:
//
//	eval "$(hookinject-devkit flags --export)"
//	go build -tags frida ./...
//
// Without the tag a stub engine is linked and every operation reports
// RuntimeUnavailable.
//
// # Error Handling
//
// Every failure is an *errors.Error carrying a Phase and a Kind:
//
//	if errors.Is(err, hookerrors.ErrPermissionDenied) {
//	    // rerun with ptrace rights
//	}
package hookinject
