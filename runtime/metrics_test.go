package runtime

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wippyai/hookinject"
	"github.com/wippyai/hookinject/errors"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	m := newTestMetrics(t)
	eng := newFakeEngine()
	rt := New(eng, WithMetrics(m))

	inj, err := rt.InjectProcess(ctx, hookinject.FromPidUnchecked(10), blobLib(t))
	if err != nil {
		t.Fatal(err)
	}
	if v := testutil.ToFloat64(m.ActiveInjections); v != 1 {
		t.Errorf("active_injections = %f, want 1", v)
	}

	eng.injectErr = errors.PermissionDenied(errors.PhaseInject, 10, "denied")
	rt.InjectProcess(ctx, hookinject.FromPidUnchecked(10), blobLib(t))
	inj.Uninject(ctx)

	if v := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("inject_blob", "ok")); v != 1 {
		t.Errorf("operations_total[inject_blob,ok] = %f, want 1", v)
	}
	if v := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("inject_blob", "permission_denied")); v != 1 {
		t.Errorf("operations_total[inject_blob,permission_denied] = %f, want 1", v)
	}
	if v := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("demonitor", "ok")); v != 1 {
		t.Errorf("operations_total[demonitor,ok] = %f, want 1", v)
	}
	if v := testutil.ToFloat64(m.ActiveInjections); v != 0 {
		t.Errorf("active_injections = %f, want 0", v)
	}
	if n := testutil.CollectAndCount(m.OperationDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.observe(opResume, 0, nil)
	m.setActive(3)

	unregistered, err := NewMetrics(nil)
	if err != nil || unregistered == nil {
		t.Fatalf("NewMetrics(nil) = %v, %v", unregistered, err)
	}
}
