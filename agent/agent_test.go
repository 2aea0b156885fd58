package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/hookinject/errors"
)

func writeModule(t *testing.T, dir, module, settings string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	gomod := "module " + module + "\n\ngo 1.25\n"
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644); err != nil {
		t.Fatal(err)
	}
	if settings != "" {
		if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(settings), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// countingBuilder writes an empty artifact and counts invocations.
type countingBuilder struct {
	calls int
	write bool
}

func (b *countingBuilder) Build(_ context.Context, _ *Manifest, output string) error {
	b.calls++
	if !b.write {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(output, []byte("so"), 0o644)
}

func TestReadManifest(t *testing.T) {
	t.Setenv(TargetDirEnv, "")
	dir := t.TempDir()
	writeModule(t, dir, "example.com/agents/my-agent", "buildmode: c-shared\nentrypoint: agent_main\ndata: hello\n")

	m, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Name != "my_agent" {
		t.Errorf("Name = %q, want my_agent", m.Name)
	}
	if m.Entrypoint != "agent_main" || m.Data != "hello" {
		t.Errorf("settings not read: %+v", m)
	}
	if m.TargetDir != filepath.Join(dir, "build") {
		t.Errorf("TargetDir = %q", m.TargetDir)
	}

	viaFile, err := ReadManifest(filepath.Join(dir, "go.mod"))
	if err != nil {
		t.Fatalf("ReadManifest(go.mod): %v", err)
	}
	if viaFile.Dir != m.Dir {
		t.Errorf("Dir = %q, want %q", viaFile.Dir, m.Dir)
	}
}

func TestReadManifest_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(dir string)
		contains string
	}{
		{"missing go.mod", func(string) {}, "missing go.mod"},
		{"no settings", func(dir string) { writeModule(t, dir, "example.com/a", "") }, "not configured as c-shared"},
		{"wrong mode", func(dir string) { writeModule(t, dir, "example.com/a", "buildmode: exe\n") }, "not configured as c-shared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(dir)
			_, err := ReadManifest(dir)
			if !errors.IsInvalidInput(err) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if got := err.Error(); !strings.Contains(got, tt.contains) {
				t.Errorf("error %q does not mention %q", got, tt.contains)
			}
		})
	}
}

func TestReadManifest_NameOverride(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "example.com/a", "buildmode: c-shared\nname: probe\n")
	m, err := ReadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Filename != LibraryFilename("probe") {
		t.Errorf("Filename = %q", m.Filename)
	}
}

func TestLibraryFilename(t *testing.T) {
	tests := []struct{ goos, want string }{
		{"linux", "libagent.so"},
		{"darwin", "libagent.dylib"},
		{"windows", "agent.dll"},
		{"freebsd", "libagent.so"},
	}
	for _, tt := range tests {
		if got := libraryFilename(tt.goos, "agent"); got != tt.want {
			t.Errorf("libraryFilename(%s) = %q, want %q", tt.goos, got, tt.want)
		}
	}
}

func TestResolve_ExistingArtifact(t *testing.T) {
	t.Setenv(TargetDirEnv, "")
	root := t.TempDir()
	dir := filepath.Join(root, "agents", "a")
	writeModule(t, dir, "example.com/a", "buildmode: c-shared\n")

	// Artifact in an ancestor's build dir.
	art := filepath.Join(root, "build", LibraryFilename("a"))
	if err := os.MkdirAll(filepath.Dir(art), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(art, []byte("so"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &countingBuilder{}
	got, err := (&Resolver{Builder: b}).Resolve(context.Background(), dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != art {
		t.Errorf("Path = %q, want %q", got.Path, art)
	}
	if b.calls != 0 {
		t.Errorf("builder called %d times, want 0", b.calls)
	}
}

func TestResolve_BuildsOnce(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")
	t.Setenv(TargetDirEnv, target)
	writeModule(t, dir, "example.com/agent", "buildmode: c-shared\nentrypoint: go_main\n")

	b := &countingBuilder{write: true}
	got, err := (&Resolver{Builder: b}).Resolve(context.Background(), dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if b.calls != 1 {
		t.Errorf("builder called %d times, want 1", b.calls)
	}
	if got.Path != filepath.Join(target, LibraryFilename("agent")) {
		t.Errorf("Path = %q", got.Path)
	}
	if got.Entrypoint != "go_main" {
		t.Errorf("Entrypoint = %q", got.Entrypoint)
	}
}

func TestResolve_NotFoundAfterBuild(t *testing.T) {
	t.Setenv(TargetDirEnv, "")
	dir := t.TempDir()
	writeModule(t, dir, "example.com/agent", "buildmode: c-shared\n")

	b := &countingBuilder{}
	_, err := (&Resolver{Builder: b}).Resolve(context.Background(), dir)
	if err == nil || !strings.Contains(err.Error(), "artifact not found after build") {
		t.Fatalf("unexpected error %v", err)
	}
	if b.calls != 1 {
		t.Errorf("builder called %d times, want exactly 1", b.calls)
	}
}
