package main

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/runtime"
)

func TestOptionsCheck(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr string
	}{
		{"nothing", options{stdio: "inherit"}, "one of -pid or -launch"},
		{"both targets", options{pid: 1, launch: "/bin/true", lib: "x", stdio: "inherit"}, "mutually exclusive"},
		{"both libs", options{pid: 1, lib: "x", module: "y", stdio: "inherit"}, "mutually exclusive"},
		{"no lib", options{pid: 1, stdio: "inherit"}, "-lib or -module"},
		{"interactive pid", options{pid: 1, lib: "x", interactive: true, stdio: "inherit"}, "-i requires -launch"},
		{"spawn-only pid", options{pid: 1, spawnOnly: true, stdio: "inherit"}, "-spawn-only requires -launch"},
		{"bad stdio", options{pid: 1, lib: "x", stdio: "tty"}, "invalid -stdio"},
		{"pid", options{pid: 1, lib: "x", stdio: "inherit"}, ""},
		{"spawn-only", options{launch: "/bin/true", spawnOnly: true, stdio: "null"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.check()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("check() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildProgram(t *testing.T) {
	prog := buildProgram(options{
		launch: "/bin/echo",
		argv:   "a,b",
		env:    "A=1,B=x=y,broken",
		cwd:    "/tmp",
		stdio:  "pipe",
	})

	if !slices.Equal(prog.Argv(), []string{"/bin/echo", "a", "b"}) {
		t.Errorf("Argv = %v", prog.Argv())
	}
	if !slices.Equal(prog.Envp(), []string{"A=1", "B=x=y"}) {
		t.Errorf("Envp = %v", prog.Envp())
	}
	if prog.WorkingDir() != "/tmp" || prog.StdioMode() != hookinject.StdioPipe {
		t.Errorf("unexpected program %+v", prog)
	}
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := runtime.NewMetrics(reg); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeMetrics(&buf, reg); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "hookinject_active_injections 0") {
		t.Errorf("unexpected metrics output:\n%s", buf.String())
	}

	families, _ := reg.Gather()
	if got := counterTotal(families, "hookinject_operations_total"); got != 0 {
		t.Errorf("counterTotal = %v", got)
	}
}
