package engine

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/telemetry"
	"github.com/briarlock/ecotick/traits"
)

// Tick returns the number of simulation ticks advanced so far.
func (w *World) Tick() uint64 { return w.tick }

// Speed returns the current tick-rate multiplier.
func (w *World) Speed() float64 { return w.speed }

// SetSpeed changes the tick-rate multiplier (spec.md §6 Control
// inputs: 0.5x/1x/2x/3x). Non-positive values are ignored.
func (w *World) SetSpeed(s float64) {
	if s > 0 {
		w.speed = s
	}
}

// Paused reports whether the scheduler is currently halted.
func (w *World) Paused() bool { return w.paused }

// SetPaused toggles the scheduler (spec.md §6 Control inputs).
func (w *World) SetPaused(p bool) { w.paused = p }

// Step advances the simulation by one scheduler invocation: zero, one,
// or several logical ticks depending on the accumulated speed
// multiplier (spec.md §4.1). Mirrors the teacher's Update(), which
// runs simulationStep in a for-loop keyed on an integer speed; here the
// loop count is the integer part of a running fractional accumulator
// so fractional speeds like 0.5x advance one tick every other call.
func (w *World) Step() {
	if w.paused {
		return
	}
	w.speedAccum += w.speed
	for w.speedAccum >= 1.0 {
		w.speedAccum -= 1.0
		w.advanceTick()
	}
}

// advanceTick runs the fixed seven-phase order of one logical tick
// (spec.md §4.1): trigger emitters, think-queue processing,
// pathfinding-queue processing, action execution, vegetation event
// processing, relationship/spatial maintenance, and the metrics/health
// snapshot. Grounded on the teacher's simulationStep, which brackets
// each numbered phase with perfCollector.StartPhase calls
// (game/game.go).
func (w *World) advanceTick() {
	w.perf.StartTick()
	tick := w.tick + 1

	w.perf.StartPhase(telemetry.PhaseTriggers)
	w.runTriggers(tick)

	w.perf.StartPhase(telemetry.PhaseThink)
	entries := w.thinkQueue.Drain(w.cfg.Think.Budget)
	w.brain.Process(entries, tick)

	w.perf.StartPhase(telemetry.PhasePathQueue)
	w.pathProc.Run(tick)

	w.perf.StartPhase(telemetry.PhaseActions)
	followingPath := w.runActions(tick)

	w.perf.StartPhase(telemetry.PhaseVegetation)
	w.veg.ProcessRegrowth(tick)

	w.perf.StartPhase(telemetry.PhaseRelations)
	w.runRelations(tick, followingPath)

	w.perf.StartPhase(telemetry.PhaseMetrics)
	w.runMetrics(tick)

	w.perf.EndTick()
	w.tick = tick
}

// liveEntities returns every entity carrying the seven core components,
// in a stable sorted order so every phase that iterates the population
// processes it identically regardless of ark's internal archetype
// layout (spec.md §8 Determinism).
func (w *World) liveEntities() []ecs.Entity {
	query := w.filter.Query()
	var out []ecs.Entity
	for query.Next() {
		out = append(out, query.Entity())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// runTriggers updates the fear subsystem and emits the tick's think
// requests, including ActionCompleted triggers deferred from the
// previous tick's action phase (spec.md §4.6, §4.10).
func (w *World) runTriggers(tick uint64) {
	entities := w.liveEntities()

	w.fearSys.Run(entities)

	for _, e := range entities {
		fear := *w.fearMap.Get(e)
		w.triggers.CheckFear(w.thinkQueue, e, fear, tick)

		stats := *w.statsMap.Get(e)
		w.triggers.CheckStats(w.thinkQueue, e, stats, tick)

		tile := w.posMap.Get(e).Tile
		w.triggers.CheckIdle(w.thinkQueue, e, [2]int32{tile.X, tile.Y}, tick)
	}

	for _, e := range w.pendingDone {
		if !w.ecsWorld.Alive(e) {
			continue
		}
		w.triggers.CheckActionCompleted(w.thinkQueue, e, tick)
	}
	w.pendingDone = nil
}

// deathRecord names a dead entity and the cause attributed to it.
type deathRecord struct {
	entity ecs.Entity
	cause  deathCause
}

// runActions applies one tick of stat drift, steps every entity's
// current action, advances path-following movement, and resolves
// deaths and mate-success births, matching the teacher's spawn /
// cleanupDead / updateReproduction split of collect-then-mutate passes
// (game/game.go). It returns the entities that were following a path
// this tick, for the relationship/spatial phase's Reparent sweep.
func (w *World) runActions(tick uint64) []ecs.Entity {
	entities := w.liveEntities()

	preStrikeHealth := make(map[ecs.Entity]float32, len(entities))
	matePartner := make(map[ecs.Entity]components.ActiveMate)
	var dead []deathRecord
	deadSet := make(map[ecs.Entity]bool)

	for _, e := range entities {
		spec := w.specMap.Get(e).Species
		sc := w.cfg.ForSpecies(spec.String())
		stats := w.statsMap.Get(e)

		died, cause := driftStats(stats, sc.HungerDrift, sc.ThirstDrift, sc.EnergyDrift, sc.HealthDrift)
		if died {
			dead = append(dead, deathRecord{entity: e, cause: cause})
			deadSet[e] = true
			continue
		}
		preStrikeHealth[e] = stats.Health

		as := w.actMap.Get(e)
		if as.Current == components.Mate {
			if info, ok := w.mating.PartnerOf(e); ok {
				matePartner[e] = info
			}
		}
	}

	var pendingDone []ecs.Entity
	for _, e := range entities {
		if deadSet[e] {
			continue
		}
		as := w.actMap.Get(e)
		if as.Current == components.NoAction {
			continue
		}
		if !w.executor.Step(e, tick) {
			continue
		}
		pendingDone = append(pendingDone, e)
		w.health.TrackAction(e, tick, as.Current)

		if as.Current == components.Mate && as.Phase == components.PhaseSuccess {
			w.tryBirth(e, matePartner[e], tick)
		}
	}

	var followingPath []ecs.Entity
	for _, e := range entities {
		if deadSet[e] {
			continue
		}
		if w.movMap.Get(e).Kind == components.FollowingPath {
			followingPath = append(followingPath, e)
		}
	}
	outcomes := w.moveExec.Run(followingPath)
	for _, o := range outcomes {
		reason := ""
		if !o.Success {
			reason = "stuck"
		}
		w.collector.RecordEvent(telemetry.Event{Type: telemetry.EventPathCompleted, Tick: tick, Entity: o.Entity, Reason: reason})
	}

	// Predation attribution: any survivor whose health reached zero
	// during the Step pass lost it to a hunt strike rather than drift
	// (stepHunt only damages prey directly; it never kills outright).
	// Comparing against the pre-Step snapshot distinguishes a hunted
	// death from one this tick simply never touched.
	for _, e := range entities {
		if deadSet[e] || !w.ecsWorld.Alive(e) {
			continue
		}
		stats := w.statsMap.Get(e)
		if stats.Health > 0 {
			continue
		}
		cause := causeUnknown
		if pre, ok := preStrikeHealth[e]; ok && stats.Health < pre {
			cause = causePredation
		}
		dead = append(dead, deathRecord{entity: e, cause: cause})
		deadSet[e] = true
	}

	for _, d := range dead {
		spec := w.specMap.Get(d.entity).Species
		w.collector.RecordEvent(telemetry.Event{Type: telemetry.EventEntityDied, Tick: tick, Entity: d.entity, Species: spec, Reason: string(d.cause)})
		w.maint.Remove(d.entity)
		w.triggers.Forget(d.entity)
		w.ecsWorld.RemoveEntity(d.entity)
	}

	for _, e := range pendingDone {
		if deadSet[e] {
			continue
		}
		w.collector.RecordEvent(telemetry.Event{Type: telemetry.EventActionCompleted, Tick: tick, Entity: e, Action: w.actMap.Get(e).Current})
	}

	w.pendingDone = pendingDone

	live := followingPath[:0:0]
	for _, e := range followingPath {
		if !deadSet[e] {
			live = append(live, e)
		}
	}
	return live
}

// tryBirth records a birth for both parents once a Mate action
// succeeds, spawning the child at the parent's current tile. The
// partner's ActiveMate must be captured before Executor.Step runs,
// since a successful stepMate clears the mating relationship before
// setting PhaseSuccess.
func (w *World) tryBirth(parent ecs.Entity, partner components.ActiveMate, tick uint64) {
	if partner.Partner == (ecs.Entity{}) || !w.ecsWorld.Alive(partner.Partner) {
		return
	}
	spec := w.specMap.Get(parent).Species
	tile := w.posMap.Get(parent).Tile
	child, err := w.Spawn(SpawnRequest{Species: spec, Tile: tile})
	if err != nil {
		return
	}
	w.lineage.RecordBirth(parent, child, tick)
	w.lineage.RecordBirth(partner.Partner, child, tick)
}

// runRelations cleans up stale hunting/mating/lineage links, sweeps
// group formation and cohesion for every configured (group type,
// class) pair, and runs the spatial index's periodic removal and
// reparenting passes (spec.md §4.2, §4.9).
func (w *World) runRelations(tick uint64, followingPath []ecs.Entity) {
	entities := w.liveEntities()

	w.hunting.CleanupStale(w.ecsWorld, entities)
	w.mating.CleanupStale(w.ecsWorld, entities, tick)
	w.lineage.CleanupStale(w.ecsWorld, entities)

	for _, sw := range w.sweeps {
		class := sw.class
		w.groups.FormGroups(tick, sw.groupType, &class, entities)
	}
	w.groups.Cohesion(w.ecsWorld, entities)

	w.maint.RemoveStale(w.ecsWorld, tick)
	// followingPath approximates "entities whose tile changed this
	// tick": every member was advancing a path, though a few may not
	// have reached their per-tile countdown this exact tick. The
	// movement executor exposes outcomes only for concluded paths, not
	// a precise per-tick moved-tile diff, so this over-approximation is
	// the closest available signal (spec.md §4.2 Reparent).
	w.maint.Reparent(followingPath)
}

// runMetrics periodically samples health/TPS/population state and
// flushes the windowed telemetry collector, gated by the configured
// check interval and window size respectively (spec.md §4.11, §6).
func (w *World) runMetrics(tick uint64) {
	entities := w.liveEntities()
	perfStats := w.perf.Stats()

	interval := w.cfg.Health.CheckInterval
	if interval <= 0 {
		interval = 50
	}
	if tick%uint64(interval) == 0 {
		samples := make([]telemetry.EntitySample, len(entities))
		for i, e := range entities {
			samples[i] = telemetry.EntitySample{
				Entity: e,
				Tile:   w.posMap.Get(e).Tile,
				Action: w.actMap.Get(e).Current,
			}
		}
		alerts := w.health.Check(tick, perfStats.TicksPerSecond, len(entities), samples)
		for _, a := range alerts {
			a.LogAlert()
			_ = w.out.WriteAlert(a)
		}
	}

	if w.collector.ShouldFlush(tick) {
		bySpecies := make(map[traits.Species]int)
		for _, e := range entities {
			bySpecies[w.specMap.Get(e).Species]++
		}
		queueDepths := make(map[string]int)
		pu, pn, pl := w.pathQueue.Depths()
		queueDepths["path_urgent"], queueDepths["path_normal"], queueDepths["path_lazy"] = pu, pn, pl
		tu, tn, tlo := w.thinkQueue.Depths()
		queueDepths["think_urgent"], queueDepths["think_normal"], queueDepths["think_low"] = tu, tn, tlo

		stats := w.collector.Flush(tick, telemetry.PopulationSnapshot{
			TotalAlive:  len(entities),
			BySpecies:   bySpecies,
			PerfStats:   perfStats,
			QueueDepths: queueDepths,
		})
		stats.LogStats()
		_ = w.out.WriteTelemetry(stats)
		_ = w.out.WritePerf(perfStats, tick)
	}
}
