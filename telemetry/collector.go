package telemetry

import (
	"github.com/briarlock/ecotick/traits"
)

// Collector accumulates events within a tick window and produces
// WindowStats snapshots (spec.md §4.11, §6).
type Collector struct {
	windowTicks     uint64
	windowStartTick uint64

	deaths         int
	deathsBySpecies map[traits.Species]int

	actionsCompleted int
	actionCounts     map[string]int

	pathsCompleted int
	pathsFailed    int
}

// NewCollector creates a collector windowed every windowTicks ticks
// (config.TelemetryConfig.WindowTicks).
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 100
	}
	return &Collector{
		windowTicks:     uint64(windowTicks),
		deathsBySpecies: make(map[traits.Species]int),
		actionCounts:    make(map[string]int),
	}
}

// RecordEvent folds a single telemetry event into the current window.
func (c *Collector) RecordEvent(e Event) {
	switch e.Type {
	case EventEntityDied:
		c.deaths++
		c.deathsBySpecies[e.Species]++
	case EventActionCompleted:
		c.actionsCompleted++
		c.actionCounts[e.Action.String()]++
	case EventPathCompleted:
		if e.Reason == "" {
			c.pathsCompleted++
		} else {
			c.pathsFailed++
		}
	}
}

// ShouldFlush reports whether the window has elapsed as of currentTick.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// PopulationSnapshot carries the counts the caller must supply at flush
// time, since population membership lives in the ECS world, not the
// collector.
type PopulationSnapshot struct {
	TotalAlive     int
	BySpecies      map[traits.Species]int
	PerfStats      PerfStats
	QueueDepths    map[string]int // pathqueue/think queue depths, by name
}

// Flush produces a WindowStats snapshot and resets counters for the
// next window.
func (c *Collector) Flush(currentTick uint64, pop PopulationSnapshot) WindowStats {
	stats := WindowStats{
		WindowStartTick:  c.windowStartTick,
		WindowEndTick:    currentTick,
		PopulationTotal:  pop.TotalAlive,
		PopulationBy:     pop.BySpecies,
		Deaths:           c.deaths,
		DeathsBySpecies:  c.deathsBySpecies,
		ActionsCompleted: c.actionsCompleted,
		ActionCounts:     c.actionCounts,
		PathsCompleted:   c.pathsCompleted,
		PathsFailed:      c.pathsFailed,
		AvgTickUS:        pop.PerfStats.AvgTickDuration.Microseconds(),
		TicksPerSecond:   pop.PerfStats.TicksPerSecond,
		QueueDepths:      pop.QueueDepths,
	}

	c.windowStartTick = currentTick
	c.deaths = 0
	c.deathsBySpecies = make(map[traits.Species]int)
	c.actionsCompleted = 0
	c.actionCounts = make(map[string]int)
	c.pathsCompleted = 0
	c.pathsFailed = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() uint64 {
	return c.windowTicks
}
