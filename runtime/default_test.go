package runtime

import (
	"context"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/engine"
	"github.com/wippyai/hookinject/errors"
)

func TestLazyRuntime_ConcurrentInit(t *testing.T) {
	var opens atomic.Int32
	lazy := &lazyRuntime{
		open: func() (engine.Engine, error) {
			opens.Add(1)
			return newFakeEngine(), nil
		},
	}

	const n = 32
	results := make([]*Runtime, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			rt, err := lazy.get()
			results[i] = rt
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("get: %v", err)
	}

	if opens.Load() != 1 {
		t.Fatalf("engine opened %d times, want 1", opens.Load())
	}
	for i, rt := range results {
		if rt == nil || rt != results[0] {
			t.Fatalf("caller %d saw a different runtime", i)
		}
	}
}

func TestLazyRuntime_CachesFailure(t *testing.T) {
	var opens atomic.Int32
	lazy := &lazyRuntime{
		open: func() (engine.Engine, error) {
			opens.Add(1)
			return nil, errors.RuntimeUnavailable("frida runtime unavailable (stub)")
		},
	}

	var g errgroup.Group
	errs := make([]error, 16)
	for i := range errs {
		g.Go(func() error {
			_, errs[i] = lazy.get()
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if !errors.IsRuntimeUnavailable(err) {
			t.Fatalf("caller %d: expected RuntimeUnavailable, got %v", i, err)
		}
		if err != errs[0] {
			t.Fatalf("caller %d saw a different error value", i)
		}
	}
	if opens.Load() != 1 {
		t.Fatalf("init attempted %d times, want 1", opens.Load())
	}
}

func TestDefault_UnavailableEngine(t *testing.T) {
	rt, err := Default()
	if err == nil {
		if rt == nil {
			t.Fatal("nil runtime without error")
		}
		t.Skip("engine available")
	}
	if !errors.IsRuntimeUnavailable(err) {
		t.Fatalf("expected RuntimeUnavailable, got %v", err)
	}

	// Every helper reports the cached failure without touching a process.
	lib, _ := hookinject.LibraryFromBytes([]byte{1})
	if _, err := InjectProcess(context.Background(), hookinject.FromPidUnchecked(1234), lib); !errors.IsRuntimeUnavailable(err) {
		t.Errorf("InjectProcess = %v", err)
	}
	if _, err := InjectProgram(context.Background(), hookinject.NewProgram("/bin/true"), lib); !errors.IsRuntimeUnavailable(err) {
		t.Errorf("InjectProgram = %v", err)
	}
	if _, err := Spawn(context.Background(), hookinject.NewProgram("/bin/true")); !errors.IsRuntimeUnavailable(err) {
		t.Errorf("Spawn = %v", err)
	}
}
