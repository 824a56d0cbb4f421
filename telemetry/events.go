// Package telemetry tracks windowed population/action statistics and
// health alerts over the simulation's tick stream (spec.md §4.11, §6).
package telemetry

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/traits"
)

// EventType identifies telemetry events (spec.md §6: event taxonomy
// exposed to external collaborators).
type EventType uint8

const (
	EventEntityDied EventType = iota
	EventActionCompleted
	EventPathCompleted
	EventStatCritical
)

// Event represents a single telemetry event raised during a tick.
type Event struct {
	Type    EventType
	Tick    uint64
	Entity  ecs.Entity
	Species traits.Species

	Action components.ActionKind // ActionCompleted
	Stat   string                // StatCritical: "hunger" | "thirst" | "energy" | "health"
	Reason string                // EntityDied / PathCompleted failure reason, if any
}
