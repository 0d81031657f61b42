package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventCapability EventType = "capability"
	EventReset      EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Token     string    `json:"token"`
}

// TransitionEvent is emitted once per completed turn.
type TransitionEvent struct {
	EventBase
	From   State  `json:"from"`
	To     State  `json:"to"`
	Branch Branch `json:"branch"`
	Intent string `json:"intent"`
}

// CapabilityEvent is emitted after every classifier, generator or extractor call.
type CapabilityEvent struct {
	EventBase
	Capability string        `json:"capability"` // classify_slots, classify_alignment, generate, extract
	Kind       string        `json:"kind,omitempty"`
	Duration   time.Duration `json:"duration"`
	IsError    bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnCapability func(context.Context, *CapabilityEvent)
	OnReset      func(context.Context, *EventBase)
}
