package engine

import (
	"github.com/talgya/populace/internal/ecs"
)

// EventKind names a notification.
type EventKind string

const (
	EventBorn                EventKind = "born"
	EventDied                EventKind = "died"
	EventMarried             EventKind = "married"
	EventShortage            EventKind = "shortage"
	EventPolicyActivated     EventKind = "policy_activated"
	EventPolicyDeactivated   EventKind = "policy_deactivated"
	EventPolicyExpired       EventKind = "policy_expired"
	EventAchievementUnlocked EventKind = "achievement_unlocked"
	EventWorldEvent          EventKind = "world_event"
	EventRunEnded            EventKind = "run_ended"
)

// Category groups kinds for reporting.
func (k EventKind) Category() string {
	switch k {
	case EventBorn:
		return "birth"
	case EventDied:
		return "death"
	case EventMarried:
		return "social"
	case EventShortage:
		return "economy"
	case EventPolicyActivated, EventPolicyDeactivated, EventPolicyExpired:
		return "policy"
	case EventAchievementUnlocked:
		return "achievement"
	case EventWorldEvent:
		return "world"
	case EventRunEnded:
		return "ending"
	}
	return "other"
}

// Event is a notable occurrence, returned from Tick and fanned out to sinks.
type Event struct {
	Tick        int64          `json:"tick"`
	Kind        EventKind      `json:"kind"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Entity      ecs.EntityID   `json:"entity,omitempty"`
	Other       ecs.EntityID   `json:"other,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Sink receives events as they are produced.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Publish calls f(e).
func (f SinkFunc) Publish(e Event) { f(e) }

// MultiSink fans every event out to each sink in order.
type MultiSink []Sink

// Publish forwards e to every sink.
func (m MultiSink) Publish(e Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(e)
		}
	}
}

// emit records an event for the current tick.
func (s *Simulation) emit(e Event) {
	if e.Tick == 0 {
		e.Tick = s.tick
	}
	e.Category = e.Kind.Category()
	s.batch = append(s.batch, e)
}
