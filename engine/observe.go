package engine

import (
	"github.com/briarlock/ecotick/telemetry"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

// EntitySnapshot is one entity's read-only observation row (spec.md §6
// Observation interface: "entity enumeration: (id, species, tile,
// current action label, stat summary)").
type EntitySnapshot struct {
	ID       uint32
	Species  traits.Species
	Tile     worldmap.Tile
	Action   string
	Hunger   float32
	Thirst   float32
	Energy   float32
	Health   float32
	Fear     float32
	Fearful  bool
}

// SchedulerSnapshot is the scheduler's read-only status (spec.md §6:
// "current tick, speed, paused, TPS/durations").
type SchedulerSnapshot struct {
	Tick   uint64
	Speed  float64
	Paused bool
	Perf   telemetry.PerfStats
}

// SchedulerStatus returns the current tick/speed/pause state plus the
// rolling performance window.
func (w *World) SchedulerStatus() SchedulerSnapshot {
	return SchedulerSnapshot{
		Tick:   w.tick,
		Speed:  w.speed,
		Paused: w.paused,
		Perf:   w.perf.Stats(),
	}
}

// Entities enumerates every live entity's observation row, in the same
// stable sorted order every internal system iterates the population
// (spec.md §8 Determinism).
func (w *World) Entities() []EntitySnapshot {
	entities := w.liveEntities()
	out := make([]EntitySnapshot, len(entities))
	for i, e := range entities {
		spec := w.specMap.Get(e)
		stats := w.statsMap.Get(e)
		fear := w.fearMap.Get(e)
		act := w.actMap.Get(e)
		out[i] = EntitySnapshot{
			ID:      e.ID(),
			Species: spec.Species,
			Tile:    w.posMap.Get(e).Tile,
			Action:  act.Current.String(),
			Hunger:  stats.Hunger,
			Thirst:  stats.Thirst,
			Energy:  stats.Energy,
			Health:  stats.Health,
			Fear:    fear.Level,
			Fearful: fear.Fearful,
		}
	}
	return out
}

// Population returns the current live entity count.
func (w *World) Population() int {
	return len(w.liveEntities())
}

// ChunksInRadius enumerates generated chunk coordinates within radius
// tiles of center (spec.md §6: "chunk enumeration for a given radius").
func (w *World) ChunksInRadius(center worldmap.Tile, radius int32) []worldmap.ChunkCoord {
	return w.terrain.ChunksInRadius(center, radius)
}

// Alerts returns the health checker's current alert ring buffer
// contents (spec.md §6: "alert buffer").
func (w *World) Alerts() []telemetry.Alert {
	return w.health.Alerts()
}

// HealthSummary returns the JSON-shaped alert summary (spec.md §4.11).
func (w *World) HealthSummary() telemetry.Summary {
	return w.health.Summary()
}
