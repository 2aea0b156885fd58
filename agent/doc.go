// Package agent turns a Go agent module into an injectable shared object.
//
// An agent module is a directory holding a go.mod and a hookinject.yaml:
//
//	buildmode: c-shared
//	name: myagent            # optional, defaults to the last module path element
//	entrypoint: agent_main   # optional
//	data: "hello"            # optional
//
// Resolve looks for an existing artifact (libmyagent.so, libmyagent.dylib or
// myagent.dll) in the target directory and in the build/ directory of the
// module and its parents. When nothing is found it runs one
// `go build -buildmode=c-shared` and looks again.
//
// The target directory defaults to <module>/build and can be overridden with
// HOOKINJECT_TARGET_DIR.
package agent
