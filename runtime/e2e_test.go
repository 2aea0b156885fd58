package runtime

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"testing"
	"time"

	"github.com/wippyai/hookinject"
)

func requireEngine(t *testing.T) *Runtime {
	t.Helper()
	if testing.Short() {
		t.Skip("short mode")
	}
	rt, err := Default()
	if err != nil {
		t.Skipf("engine unavailable: %v", err)
	}
	return rt
}

func TestE2E_SpawnResume(t *testing.T) {
	if goruntime.GOOS != "linux" {
		t.Skip("linux only")
	}
	rt := requireEngine(t)
	ctx := context.Background()

	suspended, err := rt.Spawn(ctx, hookinject.NewProgram("/usr/bin/true"))
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if _, err := suspended.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
}

func TestE2E_InjectAgentModule(t *testing.T) {
	if goruntime.GOOS == "windows" {
		t.Skip("unix only")
	}
	rt := requireEngine(t)
	ctx := context.Background()

	t.Setenv("HOOKINJECT_TARGET_DIR", t.TempDir())
	lib, err := hookinject.LibraryFromModule(ctx, filepath.Join("testdata", "agent"))
	if err != nil {
		t.Skipf("cannot build agent fixture: %v", err)
	}

	target := exec.Command("sleep", "30")
	if err := target.Start(); err != nil {
		t.Skipf("cannot start target: %v", err)
	}
	defer func() {
		_ = target.Process.Kill()
		_ = target.Wait()
	}()

	proc, err := hookinject.FromPid(target.Process.Pid)
	if err != nil {
		t.Fatalf("FromPid: %v", err)
	}

	stamp := filepath.Join(t.TempDir(), "stamp")
	injected, err := rt.InjectProcess(ctx, proc, lib.WithData(stamp))
	if err != nil {
		t.Fatalf("InjectProcess: %v", err)
	}
	defer injected.Uninject(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(stamp); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	content, err := os.ReadFile(stamp)
	if err != nil {
		t.Fatalf("agent did not write stamp: %v", err)
	}
	if string(content) != "ok" {
		t.Fatalf("stamp = %q, want ok", content)
	}
}
