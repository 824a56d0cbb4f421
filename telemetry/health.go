package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/config"
	"github.com/briarlock/ecotick/worldmap"
)

// AlertType identifies the kind of health alert raised (spec.md §4.11).
type AlertType string

const (
	AlertTpsBelow10     AlertType = "tps_below_10"
	AlertEntitiesStuck  AlertType = "entities_stuck"
	AlertPopulationCrash AlertType = "population_crash"
	AlertAiLoops        AlertType = "ai_loops"
)

// Alert is a single health event stored in the ring buffer.
type Alert struct {
	Type        AlertType
	Tick        uint64
	Description string
}

// LogAlert logs the alert via slog.
func (a Alert) LogAlert() {
	slog.Warn("health_alert",
		"type", string(a.Type),
		"tick", a.Tick,
		"description", a.Description,
	)
}

// stationaryActions are actions legitimately performed without tile
// movement; an entity stuck in one of these is not "stuck" (spec.md
// §4.11: "while not in a legitimate stationary action").
var stationaryActions = map[components.ActionKind]bool{
	components.DrinkWater: true,
	components.Graze:      true,
	components.Hunt:       true,
	components.Mate:       true,
	components.Rest:       true,
}

// EntitySample is the per-entity snapshot the caller supplies to Check
// each sampling tick.
type EntitySample struct {
	Entity ecs.Entity
	Tile   worldmap.Tile
	Action components.ActionKind
}

type entityTrack struct {
	tile      worldmap.Tile
	sinceTick uint64
}

type actionTrack struct {
	action components.ActionKind
	streak int
}

type popSample struct {
	tick  uint64
	count int
}

// HealthChecker samples scheduler/population/entity state every
// CheckInterval ticks and raises alerts into a fixed-capacity ring
// buffer (spec.md §4.11).
type HealthChecker struct {
	cfg config.HealthConfig

	ring     []Alert
	ringNext int
	ringFull bool

	entities map[ecs.Entity]entityTrack
	actions  map[ecs.Entity]actionTrack

	popHistory []popSample
}

// NewHealthChecker builds a checker from the loaded health config.
func NewHealthChecker(cfg config.HealthConfig) *HealthChecker {
	capacity := cfg.AlertBufferCapacity
	if capacity < 1 {
		capacity = 100
	}
	return &HealthChecker{
		cfg:      cfg,
		ring:     make([]Alert, capacity),
		entities: make(map[ecs.Entity]entityTrack),
		actions:  make(map[ecs.Entity]actionTrack),
	}
}

func (h *HealthChecker) record(a Alert) {
	h.ring[h.ringNext] = a
	h.ringNext = (h.ringNext + 1) % len(h.ring)
	if h.ringNext == 0 {
		h.ringFull = true
	}
}

// Alerts returns all alerts currently held in the ring buffer, oldest
// first.
func (h *HealthChecker) Alerts() []Alert {
	if !h.ringFull {
		out := make([]Alert, h.ringNext)
		copy(out, h.ring[:h.ringNext])
		return out
	}
	out := make([]Alert, len(h.ring))
	copy(out, h.ring[h.ringNext:])
	copy(out[len(h.ring)-h.ringNext:], h.ring[:h.ringNext])
	return out
}

// TrackAction updates the consecutive-same-action streak used for
// AiLoops detection. Called once per entity per completed plan, not
// gated by CheckInterval.
func (h *HealthChecker) TrackAction(e ecs.Entity, tick uint64, action components.ActionKind) []Alert {
	var alerts []Alert
	t, ok := h.actions[e]
	if ok && t.action == action {
		t.streak++
	} else {
		t = actionTrack{action: action, streak: 1}
	}
	h.actions[e] = t

	if h.cfg.AiLoopRepeats > 0 && t.streak >= h.cfg.AiLoopRepeats {
		a := Alert{
			Type:        AlertAiLoops,
			Tick:        tick,
			Description: fmt.Sprintf("entity %s repeated action %s %d times", e.String(), action.String(), t.streak),
		}
		h.record(a)
		alerts = append(alerts, a)
		t.streak = 0
		h.actions[e] = t
	}
	return alerts
}

// Check runs the tick/stuck/crash checks. Callers should only invoke
// this every CheckInterval ticks; it performs no internal gating so
// the scheduler's run-condition predicates stay the single source of
// cadence control (spec.md §4.1).
func (h *HealthChecker) Check(tick uint64, tps float64, population int, samples []EntitySample) []Alert {
	var alerts []Alert

	if tps > 0 && tps < 10 {
		a := Alert{
			Type:        AlertTpsBelow10,
			Tick:        tick,
			Description: fmt.Sprintf("observed TPS %.2f below 10", tps),
		}
		h.record(a)
		alerts = append(alerts, a)
	}

	stuckTicks := uint64(h.cfg.StuckTicks)
	if stuckTicks == 0 {
		stuckTicks = 50
	}
	seen := make(map[ecs.Entity]bool, len(samples))
	for _, s := range samples {
		seen[s.Entity] = true
		tr, ok := h.entities[s.Entity]
		if !ok || tr.tile != s.Tile {
			h.entities[s.Entity] = entityTrack{tile: s.Tile, sinceTick: tick}
			continue
		}
		if stationaryActions[s.Action] {
			continue
		}
		if tick-tr.sinceTick >= stuckTicks {
			a := Alert{
				Type:        AlertEntitiesStuck,
				Tick:        tick,
				Description: fmt.Sprintf("entity %s stationary for %d ticks in action %s", s.Entity.String(), tick-tr.sinceTick, s.Action.String()),
			}
			h.record(a)
			alerts = append(alerts, a)
		}
	}
	for e := range h.entities {
		if !seen[e] {
			delete(h.entities, e)
		}
	}

	h.popHistory = append(h.popHistory, popSample{tick: tick, count: population})
	crashTicks := uint64(h.cfg.PopulationCrashTicks)
	if crashTicks == 0 {
		crashTicks = 100
	}
	var cutoff uint64
	if tick > crashTicks {
		cutoff = tick - crashTicks
	}
	trimmed := h.popHistory[:0]
	for _, p := range h.popHistory {
		if p.tick >= cutoff {
			trimmed = append(trimmed, p)
		}
	}
	h.popHistory = trimmed

	crashPct := h.cfg.PopulationCrashPct
	if crashPct <= 0 {
		crashPct = 0.5
	}
	if len(h.popHistory) > 0 {
		peak := h.popHistory[0].count
		for _, p := range h.popHistory {
			if p.count > peak {
				peak = p.count
			}
		}
		if peak > 0 && float64(peak-population)/float64(peak) >= crashPct {
			a := Alert{
				Type:        AlertPopulationCrash,
				Tick:        tick,
				Description: fmt.Sprintf("population dropped from %d to %d within %d ticks", peak, population, crashTicks),
			}
			h.record(a)
			alerts = append(alerts, a)
		}
	}

	return alerts
}

// Summary is a JSON-shaped document consumable by external
// observability tooling (spec.md §4.11: "summary accessor").
type Summary struct {
	Alerts      []Alert `json:"alerts"`
	AlertCount  int     `json:"alert_count"`
	RingCapacity int    `json:"ring_capacity"`
}

// Summary builds the external-facing summary of current alert state.
func (h *HealthChecker) Summary() Summary {
	alerts := h.Alerts()
	return Summary{
		Alerts:       alerts,
		AlertCount:   len(alerts),
		RingCapacity: len(h.ring),
	}
}
