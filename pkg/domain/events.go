package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_end"
	EventStepEnter    EventType = "step_enter"
	EventStepLeave    EventType = "step_leave"
	EventDanglingRef  EventType = "dangling_reference"
	EventSearchJump   EventType = "search_jump"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent represents entry to or exit from a step.
type StepEvent struct {
	EventBase
	StepID    string `json:"step_id"`
	ProductID string `json:"product_id,omitempty"`
}

// SessionEvent represents a session lifecycle change.
type SessionEvent struct {
	EventBase
	Config       AttendanceConfig `json:"config"`
	HistoryDepth int              `json:"history_depth"`
}

// DanglingRefEvent reports a button target that failed to resolve. The
// transition was dropped; this event exists for administrative visibility.
type DanglingRefEvent struct {
	EventBase
	FromStepID string `json:"from_step_id"`
	TargetID   string `json:"target_id"`
	ProductID  string `json:"product_id,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Any hook may
// be nil. Hooks run synchronously on the session's calling goroutine and
// must not call back into the session.
type LifecycleHooks struct {
	OnSessionStart func(context.Context, *SessionEvent)
	OnSessionEnd   func(context.Context, *SessionEvent)
	OnStepEnter    func(context.Context, *StepEvent)
	OnStepLeave    func(context.Context, *StepEvent)
	OnDanglingRef  func(context.Context, *DanglingRefEvent)
	OnSearchJump   func(context.Context, *StepEvent)
}
