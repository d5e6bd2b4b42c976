package syncer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts sync engine activity.
type Metrics struct {
	PullTotal      prometheus.Counter
	PullErrors     prometheus.Counter
	PullApplied    prometheus.Counter
	PushTotal      prometheus.Counter
	PushErrors     prometheus.Counter
	PushSuppressed prometheus.Counter
	FullPushTotal  prometheus.Counter
	FullPushSkips  prometheus.Counter
}

// NewMetrics registers the engine counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PullTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_pull_total",
			Help: "Number of pull cycles started.",
		}),
		PullErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_pull_errors_total",
			Help: "Number of pull cycles that failed.",
		}),
		PullApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_pull_applied_total",
			Help: "Number of remote records applied locally by pulls.",
		}),
		PushTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_push_total",
			Help: "Number of record pushes attempted.",
		}),
		PushErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_push_errors_total",
			Help: "Number of record pushes that failed.",
		}),
		PushSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_push_suppressed_total",
			Help: "Number of pushes skipped because the record was already in flight.",
		}),
		FullPushTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_full_push_total",
			Help: "Number of full pushes executed.",
		}),
		FullPushSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sync_full_push_skipped_total",
			Help: "Number of full pushes skipped because one was already running.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PullTotal, m.PullErrors, m.PullApplied,
			m.PushTotal, m.PushErrors, m.PushSuppressed,
			m.FullPushTotal, m.FullPushSkips,
		)
	}
	return m
}
