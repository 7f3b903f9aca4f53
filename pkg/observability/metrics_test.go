package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/callguide/roteiro/pkg/domain"
	"github.com/callguide/roteiro/pkg/observability"
)

func sessionEvent(depth int) *domain.SessionEvent {
	return &domain.SessionEvent{
		EventBase:    domain.EventBase{Timestamp: time.Now()},
		HistoryDepth: depth,
	}
}

func stepEvent(stepID, productID string) *domain.StepEvent {
	return &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now()},
		StepID:    stepID,
		ProductID: productID,
	}
}

func TestMetrics_HooksFeedCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := metrics.Hooks()
	ctx := context.Background()

	hooks.OnSessionStart(ctx, sessionEvent(1))
	hooks.OnStepEnter(ctx, stepEvent("hab_abordagem", "prod-habitacional"))
	hooks.OnStepEnter(ctx, stepEvent("hab_identificacao", "prod-habitacional"))
	hooks.OnSearchJump(ctx, stepEvent("hab_oferta", "prod-habitacional"))
	hooks.OnDanglingRef(ctx, &domain.DanglingRefEvent{
		EventBase: domain.EventBase{Timestamp: time.Now()},
		ProductID: "prod-habitacional",
		TargetID:  "hab_missing",
	})
	hooks.OnSessionEnd(ctx, sessionEvent(3))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)

	assert.Equal(t, 1.0, counterValue(t, reg, "roteiro_sessions_started_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "roteiro_sessions_ended_total"))
	assert.Equal(t, 2.0, counterValue(t, reg, "roteiro_steps_entered_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "roteiro_dangling_transitions_dropped_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "roteiro_search_jumps_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestMerge_ChainsAllCallbacks(t *testing.T) {
	ctx := context.Background()
	var order []string

	a := domain.LifecycleHooks{
		OnSessionStart: func(context.Context, *domain.SessionEvent) { order = append(order, "a-start") },
		OnStepEnter:    func(context.Context, *domain.StepEvent) { order = append(order, "a-enter") },
	}
	b := domain.LifecycleHooks{
		OnSessionStart: func(context.Context, *domain.SessionEvent) { order = append(order, "b-start") },
		OnDanglingRef:  func(context.Context, *domain.DanglingRefEvent) { order = append(order, "b-dangling") },
	}

	merged := observability.Merge(a, b)

	merged.OnSessionStart(ctx, sessionEvent(1))
	merged.OnStepEnter(ctx, stepEvent("s", "p"))
	merged.OnDanglingRef(ctx, &domain.DanglingRefEvent{})

	assert.Equal(t, []string{"a-start", "b-start", "a-enter", "b-dangling"}, order)
	assert.Nil(t, merged.OnStepLeave, "unset callbacks stay nil after merge")
}
