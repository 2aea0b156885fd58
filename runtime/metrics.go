package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/hookinject/errors"
)

const metricsNamespace = "hookinject"

// Engine call names used as the op label.
const (
	opSpawn        = "spawn"
	opInjectFile   = "inject_file"
	opInjectBlob   = "inject_blob"
	opInjectLaunch = "inject_launch"
	opResume       = "resume"
	opDemonitor    = "demonitor"
)

const resultOK = "ok"

// Metrics counts engine calls made by a Runtime.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// OperationsTotal counts engine calls.
	// Labels: op, result (ok or the error kind)
	OperationsTotal *prometheus.CounterVec

	// OperationDuration measures engine call latency.
	// Labels: op
	OperationDuration *prometheus.HistogramVec

	// ActiveInjections tracks live injections.
	ActiveInjections prometheus.Gauge
}

// NewMetrics creates the runtime metrics and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total engine calls by operation and result",
			},
			[]string{"op", "result"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Engine call duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"op"},
		),
		ActiveInjections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "active_injections",
				Help:      "Injections not yet uninjected",
			},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.OperationsTotal, m.OperationDuration, m.ActiveInjections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = string(errors.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	m.OperationsTotal.WithLabelValues(op, result).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) setActive(n int) {
	if m == nil {
		return
	}
	m.ActiveInjections.Set(float64(n))
}
