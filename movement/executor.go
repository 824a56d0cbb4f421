// Package movement implements the per-tick discrete tile-step
// advancement of entities following a resolved path (spec.md §4.7).
package movement

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/worldmap"
)

// Outcome reports what happened to one entity's path this tick, for
// the caller to fold into ActionCompleted/Stuck event emission
// (spec.md §4.7, §6).
type Outcome struct {
	Entity        ecs.Entity
	PathCompleted bool
	Success       bool
	Stuck         bool
}

// Executor advances every FollowingPath entity by one tick countdown,
// stepping a tile when the countdown reaches zero (spec.md §4.7).
type Executor struct {
	posMap  *ecs.Map1[components.TilePosition]
	movMap  *ecs.Map1[components.Movement]
	profMap *ecs.Map1[components.MovementProfile]
	specMap *ecs.Map1[components.SpeciesInfo]

	world *worldmap.Map
	maint *spatial.Maintenance

	maxStuckAttempts int
}

// NewExecutor builds the movement executor over an ark world, the
// read-only terrain map, and the spatial-index maintenance system it
// reports tile changes to.
func NewExecutor(w *ecs.World, world *worldmap.Map, maint *spatial.Maintenance, maxStuckAttempts int) *Executor {
	return &Executor{
		posMap:           ecs.NewMap1[components.TilePosition](w),
		movMap:           ecs.NewMap1[components.Movement](w),
		profMap:          ecs.NewMap1[components.MovementProfile](w),
		specMap:          ecs.NewMap1[components.SpeciesInfo](w),
		world:            world,
		maint:            maint,
		maxStuckAttempts: maxStuckAttempts,
	}
}

// Run advances every FollowingPath entity in entities by one tick,
// processed in a stable sorted order for determinism (spec.md §4.1
// Determinism). It returns the outcomes for entities whose path
// concluded (success, failure, or newly stuck) this tick.
func (ex *Executor) Run(entities []ecs.Entity) []Outcome {
	ordered := make([]ecs.Entity, len(entities))
	copy(ordered, entities)
	sort.Slice(ordered, func(i, j int) bool {
		return entityOrdinal(ordered[i]) < entityOrdinal(ordered[j])
	})

	var outcomes []Outcome
	for _, e := range ordered {
		mov := ex.movMap.Get(e)
		if mov.Kind != components.FollowingPath {
			continue
		}
		if outcome, changed := ex.step(e, mov); changed {
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}

func (ex *Executor) step(e ecs.Entity, mov *components.Movement) (Outcome, bool) {
	mov.TicksRemaining--
	if mov.TicksRemaining > 0 {
		return Outcome{}, false
	}

	next := mov.Path[mov.PathIndex]
	if !ex.world.Passable(next) {
		mov.Kind = components.Stuck
		mov.StuckAttempts++
		stuck := mov.StuckAttempts >= ex.maxStuckAttempts
		if stuck {
			mov.Kind = components.Idle
			mov.Path = nil
			mov.PathIndex = 0
		}
		return Outcome{Entity: e, PathCompleted: true, Success: false, Stuck: true}, true
	}

	pos := ex.posMap.Get(e)
	pos.Tile = next
	class := ex.specMap.Get(e).Class
	ex.maint.Move(e, next, class)

	mov.PathIndex++
	if mov.PathIndex >= len(mov.Path) {
		mov.Kind = components.Idle
		mov.Path = nil
		mov.PathIndex = 0
		mov.StuckAttempts = 0
		return Outcome{Entity: e, PathCompleted: true, Success: true}, true
	}

	profile := ex.profMap.Get(e)
	mov.TicksRemaining = profile.EffectiveTicksPerTile()
	return Outcome{}, false
}

// entityOrdinal derives a stable sort key from an entity's string
// form, matching the teacher's sorted-snapshot iteration pattern
// (game/parallel.go processes entities in a fixed snapshot order).
func entityOrdinal(e ecs.Entity) string {
	return e.String()
}
