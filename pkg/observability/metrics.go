/*
Package observability provides Prometheus instrumentation for the engine.

It implements the domain lifecycle hooks so that session starts, step
transitions, dropped dangling references and search jumps show up as
counters without the state machine knowing about metrics at all.
*/
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/callguide/roteiro/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	sessionsStarted  prometheus.Counter
	sessionsEnded    prometheus.Counter
	stepsEntered     *prometheus.CounterVec
	danglingDropped  *prometheus.CounterVec
	searchJumps      prometheus.Counter
	historyDepthEnds prometheus.Histogram
}

// NewMetrics creates and registers the collectors with the given registerer.
// Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roteiro_sessions_started_total",
			Help: "Number of navigation sessions started.",
		}),
		sessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roteiro_sessions_ended_total",
			Help: "Number of navigation sessions ended or reset.",
		}),
		stepsEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roteiro_steps_entered_total",
			Help: "Number of step entries, by product.",
		}, []string{"product"}),
		danglingDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roteiro_dangling_transitions_dropped_total",
			Help: "Number of transitions dropped because the target step did not resolve.",
		}, []string{"product"}),
		searchJumps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roteiro_search_jumps_total",
			Help: "Number of title-search jumps performed by operators.",
		}),
		historyDepthEnds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roteiro_session_history_depth",
			Help:    "History depth of sessions at end time.",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
	}

	reg.MustRegister(
		m.sessionsStarted,
		m.sessionsEnded,
		m.stepsEntered,
		m.danglingDropped,
		m.searchJumps,
		m.historyDepthEnds,
	)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors. The returned
// hooks may be combined with others via Merge before being installed.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(_ context.Context, _ *domain.SessionEvent) {
			m.sessionsStarted.Inc()
		},
		OnSessionEnd: func(_ context.Context, ev *domain.SessionEvent) {
			m.sessionsEnded.Inc()
			m.historyDepthEnds.Observe(float64(ev.HistoryDepth))
		},
		OnStepEnter: func(_ context.Context, ev *domain.StepEvent) {
			m.stepsEntered.WithLabelValues(ev.ProductID).Inc()
		},
		OnDanglingRef: func(_ context.Context, ev *domain.DanglingRefEvent) {
			m.danglingDropped.WithLabelValues(ev.ProductID).Inc()
		},
		OnSearchJump: func(_ context.Context, _ *domain.StepEvent) {
			m.searchJumps.Inc()
		},
	}
}

// Merge combines hook sets; every non-nil callback of each set runs.
func Merge(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		h := h
		out = domain.LifecycleHooks{
			OnSessionStart: chainSession(out.OnSessionStart, h.OnSessionStart),
			OnSessionEnd:   chainSession(out.OnSessionEnd, h.OnSessionEnd),
			OnStepEnter:    chainStep(out.OnStepEnter, h.OnStepEnter),
			OnStepLeave:    chainStep(out.OnStepLeave, h.OnStepLeave),
			OnDanglingRef:  chainDangling(out.OnDanglingRef, h.OnDanglingRef),
			OnSearchJump:   chainStep(out.OnSearchJump, h.OnSearchJump),
		}
	}
	return out
}

func chainSession(a, b func(context.Context, *domain.SessionEvent)) func(context.Context, *domain.SessionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *domain.SessionEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainStep(a, b func(context.Context, *domain.StepEvent)) func(context.Context, *domain.StepEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *domain.StepEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}

func chainDangling(a, b func(context.Context, *domain.DanglingRefEvent)) func(context.Context, *domain.DanglingRefEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, ev *domain.DanglingRefEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
