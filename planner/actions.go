package planner

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/pathqueue"
	"github.com/briarlock/ecotick/relations"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/vegetation"
	"github.com/briarlock/ecotick/worldmap"
)

// Tunables holds the action state-machine constants (spec.md §9
// defaults). One value serves as the shared default; WithSpecies
// overlays the per-species subset listed in SpeciesOverrides.
type Tunables struct {
	MaxRetries int

	WanderRadius int32

	DrinkActingTicks int
	GrazeActingTicks int
	GrazeAmount      float32
	DrinkAmount      float32

	RestEnergyIncrement float32
	RestTargetEnergy    float32

	HuntRange         int32
	HuntDamage        float32
	HuntBaseSuccess   float32
	HuntChaseDistance int32
	HuntHungerRelief  float32

	MateActingTicks int
	MateDeadline    uint64

	FleeDistance int32
}

// SpeciesOverrides holds the subset of Tunables that spec.md §3 scopes
// per species rather than globally (graze/drink amounts, rest rate,
// hunt damage, wander radius, strike range, mate deadline). Zero
// fields leave the shared default in place.
type SpeciesOverrides struct {
	WanderRadius     int32
	GrazeAmount      float32
	DrinkAmount      float32
	RestIncrement    float32
	HuntRange        int32
	HuntDamage       float32
	MateDeadline     uint64
}

// WithSpecies overlays non-zero species overrides onto a copy of the
// shared tunables, matching the teacher's per-species stat-rate overlay
// pattern (components/traits.go speed/metabolism scaling).
func (t Tunables) WithSpecies(o SpeciesOverrides) Tunables {
	out := t
	if o.WanderRadius > 0 {
		out.WanderRadius = o.WanderRadius
	}
	if o.GrazeAmount > 0 {
		out.GrazeAmount = o.GrazeAmount
	}
	if o.DrinkAmount > 0 {
		out.DrinkAmount = o.DrinkAmount
	}
	if o.RestIncrement > 0 {
		out.RestEnergyIncrement = o.RestIncrement
	}
	if o.HuntRange > 0 {
		out.HuntRange = o.HuntRange
	}
	if o.HuntDamage > 0 {
		out.HuntDamage = o.HuntDamage
	}
	if o.MateDeadline > 0 {
		out.MateDeadline = o.MateDeadline
	}
	return out
}

// DefaultTunables returns the action constants used when config does
// not override them.
func DefaultTunables() Tunables {
	return Tunables{
		MaxRetries:          3,
		WanderRadius:        8,
		DrinkActingTicks:    5,
		GrazeActingTicks:    5,
		GrazeAmount:         0.2,
		DrinkAmount:         1.0,
		RestEnergyIncrement: 0.02,
		RestTargetEnergy:    0.9,
		HuntRange:           1,
		HuntDamage:          0.5,
		HuntBaseSuccess:     0.6,
		HuntChaseDistance:   20,
		HuntHungerRelief:    0.4,
		MateActingTicks:     10,
		MateDeadline:        300,
		FleeDistance:        10,
	}
}

// Executor runs the per-entity action state machines (spec.md §4.5),
// issuing pathfinding requests and mutating ActionState/Movement.
// Placement and resource decisions reach into spatial, vegetation, and
// the world map directly, matching the teacher's system structs that
// hold every component map and collaborator they need (game/game.go).
type Executor struct {
	ecsWorld *ecs.World

	posMap   *ecs.Map1[components.TilePosition]
	statsMap *ecs.Map1[components.Stats]
	movMap   *ecs.Map1[components.Movement]
	profMap  *ecs.Map1[components.MovementProfile]
	actMap   *ecs.Map1[components.ActionState]
	specMap  *ecs.Map1[components.SpeciesInfo]

	pathQueue *pathqueue.Queue
	hunting   *relations.Hunting
	mating    *relations.Mating
	index     *spatial.Index
	veg       *vegetation.Grid
	terrain   *worldmap.Map

	tunables   Tunables
	perSpecies map[traits.Species]Tunables
	rng        *rand.Rand
}

// NewExecutor builds the action executor over an ark world and its
// collaborating subsystems. perSpecies supplies the pre-overlaid
// per-species tunables (see WithSpecies); a species absent from the
// map falls back to the shared defaults.
func NewExecutor(w *ecs.World, pathQueue *pathqueue.Queue, hunting *relations.Hunting, mating *relations.Mating, index *spatial.Index, veg *vegetation.Grid, world *worldmap.Map, tunables Tunables, perSpecies map[traits.Species]Tunables, seed int64) *Executor {
	return &Executor{
		ecsWorld:   w,
		posMap:     ecs.NewMap1[components.TilePosition](w),
		statsMap:   ecs.NewMap1[components.Stats](w),
		movMap:     ecs.NewMap1[components.Movement](w),
		profMap:    ecs.NewMap1[components.MovementProfile](w),
		actMap:     ecs.NewMap1[components.ActionState](w),
		specMap:    ecs.NewMap1[components.SpeciesInfo](w),
		pathQueue:  pathQueue,
		hunting:    hunting,
		mating:     mating,
		index:      index,
		veg:        veg,
		terrain:    world,
		tunables:   tunables,
		perSpecies: perSpecies,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// tunablesFor resolves the effective tunables for e's species, falling
// back to the shared defaults when no per-species overlay was given.
func (ex *Executor) tunablesFor(e ecs.Entity) Tunables {
	if ex.perSpecies == nil {
		return ex.tunables
	}
	spec := ex.specMap.Get(e)
	if t, ok := ex.perSpecies[spec.Species]; ok {
		return t
	}
	return ex.tunables
}

// Begin switches an entity onto a newly selected action, resetting its
// retry and phase tracking (spec.md §4.6: preemption when the planner's
// selection differs from the current action).
func (ex *Executor) Begin(e ecs.Entity, kind components.ActionKind) {
	as := ex.actMap.Get(e)
	as.Current = kind
	as.RetryCount = 0
	as.TicksInAction = 0
	as.ActingTicksLeft = 0
	as.Phase = initialPhase(kind)
}

func initialPhase(kind components.ActionKind) components.ActionPhase {
	switch kind {
	case components.Wander:
		return components.PhaseNeedsTarget
	case components.DrinkWater, components.Graze:
		return components.PhaseLocateResource
	case components.Hunt:
		return components.PhaseAcquireTarget
	case components.Mate:
		return components.PhaseFindPartner
	case components.Flee:
		return components.PhaseNeedsTarget
	case components.Rest:
		return components.PhaseActing
	default:
		return components.PhaseNone
	}
}

// Step advances one entity's current action by one tick (spec.md
// §4.5). It returns true when the action reached Success or Failure
// this tick, signaling the caller to emit ActionCompleted.
func (ex *Executor) Step(e ecs.Entity, tick uint64) bool {
	as := ex.actMap.Get(e)
	as.TicksInAction++

	switch as.Current {
	case components.Wander:
		return ex.stepWander(e, as, tick)
	case components.DrinkWater:
		return ex.stepForage(e, as, tick, true)
	case components.Graze:
		return ex.stepForage(e, as, tick, false)
	case components.Hunt:
		return ex.stepHunt(e, as, tick)
	case components.Mate:
		return ex.stepMate(e, as, tick)
	case components.Rest:
		return ex.stepRest(e, as, tick)
	case components.Flee:
		return ex.stepFlee(e, as, tick)
	default:
		return true
	}
}

// requestMove issues a path request from the entity's current tile to
// dest, parks it in AwaitingPath, and records the request id in its
// Movement component.
func (ex *Executor) requestMove(e ecs.Entity, as *components.ActionState, dest worldmap.Tile, priority pathqueue.Priority, reason pathqueue.Reason, tick uint64) {
	from := ex.posMap.Get(e).Tile
	id := ex.pathQueue.Request(e, from, dest, priority, reason, tick)
	mov := ex.movMap.Get(e)
	mov.Kind = components.AwaitingPath
	mov.PendingRequestID = uint64(id)
	mov.Destination = dest
}

// pollPath checks whether the entity's pending path request resolved.
// It returns (resolved, ok): resolved is false while still waiting.
func (ex *Executor) pollPath(e ecs.Entity) (resolved, ok bool) {
	mov := ex.movMap.Get(e)
	if mov.Kind != components.AwaitingPath {
		return true, mov.Kind == components.FollowingPath
	}
	result, found := ex.pathQueue.GetResult(pathqueue.RequestID(mov.PendingRequestID))
	if !found {
		return false, false
	}
	if !result.Ok() {
		mov.Kind = components.Idle
		return true, false
	}
	mov.Kind = components.FollowingPath
	mov.Path = result.Path
	mov.PathIndex = 0
	profile := ex.profMap.Get(e)
	mov.TicksRemaining = profile.EffectiveTicksPerTile()
	return true, true
}

// arrived reports whether the movement executor finished the current
// path (Idle with no pending request, after having been set moving).
func (ex *Executor) arrived(e ecs.Entity) bool {
	return ex.movMap.Get(e).Kind == components.Idle
}

func (ex *Executor) retryOrFail(e ecs.Entity, as *components.ActionState) bool {
	as.RetryCount++
	if as.RetryCount > ex.tunablesFor(e).MaxRetries {
		as.Phase = components.PhaseFailure
		return true
	}
	return false
}

// stepWander picks a random reachable tile within WanderRadius and
// walks to it (spec.md §4.5 WanderAction).
func (ex *Executor) stepWander(e ecs.Entity, as *components.ActionState, tick uint64) bool {
	switch as.Phase {
	case components.PhaseNeedsTarget:
		tile := ex.posMap.Get(e).Tile
		dest := ex.randomWalkableTile(tile, ex.tunablesFor(e).WanderRadius)
		ex.requestMove(e, as, dest, pathqueue.Lazy, pathqueue.ReasonWander, tick)
		as.Phase = components.PhaseAwaitingPath
		return false
	case components.PhaseAwaitingPath:
		resolved, ok := ex.pollPath(e)
		if !resolved {
			return false
		}
		if !ok {
			if ex.retryOrFail(e, as) {
				return true
			}
			as.Phase = components.PhaseNeedsTarget
			return false
		}
		as.Phase = components.PhaseMoving
		return false
	case components.PhaseMoving:
		if ex.arrived(e) {
			as.Phase = components.PhaseSuccess
			return true
		}
		return false
	default:
		return true
	}
}

// stepForage drives DrinkWaterAction/GrazeAction: locate a resource
// tile, travel to it, then act for a fixed number of ticks before
// applying the stat/biomass change (spec.md §4.5).
func (ex *Executor) stepForage(e ecs.Entity, as *components.ActionState, tick uint64, drinking bool) bool {
	t := ex.tunablesFor(e)
	switch as.Phase {
	case components.PhaseLocateResource:
		tile := ex.posMap.Get(e).Tile
		var dest worldmap.Tile
		var found bool
		var reason pathqueue.Reason
		if drinking {
			dest, found = ex.nearestWater(tile, t.WanderRadius*2)
			reason = pathqueue.ReasonMovingToWater
		} else {
			dest, _, found = ex.veg.FindBestCell(tile, t.WanderRadius*2)
			reason = pathqueue.ReasonMovingToFood
		}
		if !found {
			as.Phase = components.PhaseFailure
			return true
		}
		ex.requestMove(e, as, dest, pathqueue.Normal, reason, tick)
		as.Phase = components.PhaseAwaitingPath
		return false
	case components.PhaseAwaitingPath:
		resolved, ok := ex.pollPath(e)
		if !resolved {
			return false
		}
		if !ok {
			if ex.retryOrFail(e, as) {
				return true
			}
			as.Phase = components.PhaseLocateResource
			return false
		}
		as.Phase = components.PhaseMoving
		return false
	case components.PhaseMoving:
		if ex.arrived(e) {
			as.Phase = components.PhaseActing
			if drinking {
				as.ActingTicksLeft = t.DrinkActingTicks
			} else {
				as.ActingTicksLeft = t.GrazeActingTicks
			}
		}
		return false
	case components.PhaseActing:
		as.ActingTicksLeft--
		if as.ActingTicksLeft > 0 {
			return false
		}
		stats := ex.statsMap.Get(e)
		if drinking {
			stats.Thirst -= t.DrinkAmount
		} else {
			tile := ex.posMap.Get(e).Tile
			ex.veg.Graze(tile, t.GrazeAmount, tick)
			stats.Hunger -= t.GrazeAmount
		}
		stats.Clamp()
		as.Phase = components.PhaseSuccess
		return true
	default:
		return true
	}
}

// stepHunt drives HuntAction: acquire prey, chase it, then strike once
// within HuntRange (spec.md §4.5). While chasing, a new path is
// requested whenever movement is Idle or the prey's tile differs from
// the current destination; no minimum prey displacement is applied
// before re-requesting.
func (ex *Executor) stepHunt(e ecs.Entity, as *components.ActionState, tick uint64) bool {
	t := ex.tunablesFor(e)
	switch as.Phase {
	case components.PhaseAcquireTarget:
		tile := ex.posMap.Get(e).Tile
		herbivore := traits.Herbivore
		candidates := ex.index.EntitiesInRadius(tile, t.HuntChaseDistance, &herbivore)
		if len(candidates) == 0 {
			as.Phase = components.PhaseFailure
			return true
		}
		prey := candidates[0].Entity
		ex.hunting.Establish(e, prey, tick)
		as.Phase = components.PhaseChasing
		return false
	case components.PhaseChasing:
		prey, ok := ex.hunting.PreyOf(e)
		if !ok {
			as.Phase = components.PhaseFailure
			return true
		}
		preyTile, tracked := ex.index.TileOf(prey)
		if !tracked {
			ex.hunting.Clear(e, prey)
			as.Phase = components.PhaseFailure
			return true
		}
		myTile := ex.posMap.Get(e).Tile
		if myTile.ChebyshevDistance(preyTile) <= t.HuntRange {
			as.Phase = components.PhaseStrike
			return false
		}
		mov := ex.movMap.Get(e)
		if mov.Kind == components.AwaitingPath {
			resolved, ok := ex.pollPath(e)
			if resolved && !ok && ex.retryOrFail(e, as) {
				ex.hunting.Clear(e, prey)
				return true
			}
		}
		if mov.Kind == components.Idle || mov.Destination != preyTile {
			ex.requestMove(e, as, preyTile, pathqueue.Urgent, pathqueue.ReasonHuntChase, tick)
		}
		return false
	case components.PhaseStrike:
		prey, ok := ex.hunting.PreyOf(e)
		if !ok {
			as.Phase = components.PhaseFailure
			return true
		}
		success := ex.rng.Float32() < t.HuntBaseSuccess
		ex.hunting.Clear(e, prey)
		if !success {
			as.Phase = components.PhaseFailure
			return true
		}
		if ex.ecsWorld.Alive(prey) {
			preyStats := ex.statsMap.Get(prey)
			preyStats.Health -= t.HuntDamage
			preyStats.Clamp()
		}
		stats := ex.statsMap.Get(e)
		stats.Hunger -= t.HuntHungerRelief
		stats.Clamp()
		as.Phase = components.PhaseSuccess
		return true
	default:
		return true
	}
}

// stepMate drives MateAction: find an eligible partner, travel to the
// midpoint meeting tile, then succeed once the partner has also stood on
// that tile for MateActingTicks ticks (spec.md §4.5). Only the initiator
// is moved by this action; the partner is not sent to the meeting tile.
// Passing the deadline before success ends the action in failure.
func (ex *Executor) stepMate(e ecs.Entity, as *components.ActionState, tick uint64) bool {
	t := ex.tunablesFor(e)
	switch as.Phase {
	case components.PhaseFindPartner:
		spec := ex.specMap.Get(e)
		myClass := spec.Class
		tile := ex.posMap.Get(e).Tile
		candidates := ex.index.EntitiesInRadius(tile, t.WanderRadius, &myClass)
		var partner ecs.Entity
		found := false
		for _, occ := range candidates {
			if occ.Entity == e {
				continue
			}
			if _, busy := ex.mating.PartnerOf(occ.Entity); busy {
				continue
			}
			if _, busy := ex.mating.CourtedBy(occ.Entity); busy {
				continue
			}
			partner = occ.Entity
			found = true
			break
		}
		if !found {
			as.Phase = components.PhaseFailure
			return true
		}
		partnerTile, _ := ex.index.TileOf(partner)
		meet := relations.MidpointTile(tile, partnerTile)
		ex.mating.Establish(e, partner, meet, tick, tick+t.MateDeadline)
		as.Phase = components.PhaseCourtship
		return false
	case components.PhaseCourtship:
		mate, ok := ex.mating.PartnerOf(e)
		if !ok {
			as.Phase = components.PhaseFailure
			return true
		}
		if tick > mate.DeadlineTick {
			ex.mating.Clear(e, mate.Partner)
			as.Phase = components.PhaseFailure
			return true
		}
		mov := ex.movMap.Get(e)
		if mov.Kind == components.AwaitingPath {
			ex.pollPath(e)
		}
		if mov.Kind == components.Idle && mov.Destination != mate.MeetingTile {
			ex.requestMove(e, as, mate.MeetingTile, pathqueue.Normal, pathqueue.ReasonMateMeeting, tick)
		}
		tile := ex.posMap.Get(e).Tile
		if tile == mate.MeetingTile {
			as.Phase = components.PhaseMeeting
			as.ActingTicksLeft = t.MateActingTicks
		}
		return false
	case components.PhaseMeeting:
		mate, ok := ex.mating.PartnerOf(e)
		if !ok {
			as.Phase = components.PhaseFailure
			return true
		}
		partnerTile, tracked := ex.index.TileOf(mate.Partner)
		if !tracked || partnerTile != mate.MeetingTile {
			if tick > mate.DeadlineTick {
				ex.mating.Clear(e, mate.Partner)
				as.Phase = components.PhaseFailure
				return true
			}
			return false
		}
		as.ActingTicksLeft--
		if as.ActingTicksLeft > 0 {
			return false
		}
		ex.mating.Clear(e, mate.Partner)
		as.Phase = components.PhaseSuccess
		return true
	default:
		return true
	}
}

// stepRest drives RestAction: stay put, regenerating energy each tick
// until the target is reached (spec.md §4.5).
func (ex *Executor) stepRest(e ecs.Entity, as *components.ActionState, tick uint64) bool {
	t := ex.tunablesFor(e)
	stats := ex.statsMap.Get(e)
	stats.Energy += t.RestEnergyIncrement
	stats.Clamp()
	if stats.Energy >= t.RestTargetEnergy {
		as.Phase = components.PhaseSuccess
		return true
	}
	return false
}

// stepFlee drives FleeAction: compute an escape tile away from the
// nearest predator centroid and move there urgently (spec.md §4.5,
// §4.10).
func (ex *Executor) stepFlee(e ecs.Entity, as *components.ActionState, tick uint64) bool {
	t := ex.tunablesFor(e)
	switch as.Phase {
	case components.PhaseNeedsTarget:
		tile := ex.posMap.Get(e).Tile
		predator := traits.Predator
		nearby := ex.index.EntitiesInRadius(tile, t.FleeDistance*2, &predator)
		dest, ok := ex.escapeTile(tile, nearby, t.FleeDistance)
		if !ok {
			ex.Begin(e, components.Rest)
			return false
		}
		ex.requestMove(e, as, dest, pathqueue.Urgent, pathqueue.ReasonFlee, tick)
		as.Phase = components.PhaseAwaitingPath
		return false
	case components.PhaseAwaitingPath:
		resolved, ok := ex.pollPath(e)
		if !resolved {
			return false
		}
		if !ok {
			if ex.retryOrFail(e, as) {
				return true
			}
			as.Phase = components.PhaseNeedsTarget
			return false
		}
		as.Phase = components.PhaseMoving
		return false
	case components.PhaseMoving:
		if ex.arrived(e) {
			as.Phase = components.PhaseSuccess
			return true
		}
		return false
	default:
		return true
	}
}

// escapeTile picks a passable tile FleeDistance away from the centroid
// of nearby predators, falling back to false (caller defaults to Rest)
// if none is passable.
func (ex *Executor) escapeTile(from worldmap.Tile, predators []spatial.Occupant, fleeDistance int32) (worldmap.Tile, bool) {
	if len(predators) == 0 {
		return worldmap.Tile{}, false
	}
	var sumX, sumY int64
	for _, occ := range predators {
		t, ok := ex.index.TileOf(occ.Entity)
		if !ok {
			continue
		}
		sumX += int64(t.X)
		sumY += int64(t.Y)
	}
	n := int64(len(predators))
	centroidX := float64(sumX) / float64(n)
	centroidY := float64(sumY) / float64(n)

	dx := float64(from.X) - centroidX
	dy := float64(from.Y) - centroidY
	mag := dx*dx + dy*dy
	if mag == 0 {
		dx, dy = 1, 0
		mag = 1
	}
	scale := float64(fleeDistance) / sqrt(mag)
	dest := worldmap.Tile{
		X: from.X + int32(dx*scale),
		Y: from.Y + int32(dy*scale),
	}
	if ex.terrain.Passable(dest) {
		return dest, true
	}
	return worldmap.Tile{}, false
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 20; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// randomWalkableTile samples a passable tile within radius of center,
// retrying a bounded number of times before falling back to center
// itself.
func (ex *Executor) randomWalkableTile(center worldmap.Tile, radius int32) worldmap.Tile {
	for attempt := 0; attempt < 10; attempt++ {
		dx := int32(ex.rng.Intn(int(2*radius+1))) - radius
		dy := int32(ex.rng.Intn(int(2*radius+1))) - radius
		t := center.Add(dx, dy)
		if ex.terrain.Passable(t) {
			return t
		}
	}
	return center
}

// nearestWater scans a bounded radius for the closest passable
// shallow-water tile (spec.md §4.5 DrinkWaterAction).
func (ex *Executor) nearestWater(center worldmap.Tile, radius int32) (worldmap.Tile, bool) {
	best := worldmap.Tile{}
	bestDist := int32(1 << 30)
	found := false
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			t := center.Add(dx, dy)
			kind := ex.terrain.TerrainAt(t)
			if kind != worldmap.ShallowWater {
				continue
			}
			d := t.ManhattanDistance(center)
			if !found || d < bestDist {
				bestDist = d
				best = t
				found = true
			}
		}
	}
	return best, found
}
