// Package components defines ECS components for the simulation core
// (spec.md §3 Entity).
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

// TilePosition is an entity's discrete tile location.
type TilePosition struct {
	Tile worldmap.Tile
}

// SpeciesInfo records an entity's fixed species and the class derived
// from it at spawn time.
type SpeciesInfo struct {
	Species traits.Species
	Class   traits.Class
}

// Stats holds the four normalized drive stats, each in [0, MaxStat].
type Stats struct {
	Hunger float32
	Thirst float32
	Energy float32
	Health float32
}

// MaxStat is the upper bound for every Stats field (spec.md §8: "each
// stat is in [0, max_stat]").
const MaxStat float32 = 1.0

// Clamp restricts all four stats to [0, MaxStat].
func (s *Stats) Clamp() {
	s.Hunger = clampStat(s.Hunger)
	s.Thirst = clampStat(s.Thirst)
	s.Energy = clampStat(s.Energy)
	s.Health = clampStat(s.Health)
}

func clampStat(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > MaxStat {
		return MaxStat
	}
	return v
}

// HungerCritical reports whether hunger has crossed the critical
// threshold (spec.md §4.6: "≥ 0.8 normalized").
func (s Stats) HungerCritical(critical float32) bool { return s.Hunger >= critical }

// FearState tracks a prey entity's accumulated fear level.
type FearState struct {
	Level     float32
	Fearful   bool
	Predators int
}

// MovementKind is the closed set of movement states (spec.md §4.7).
type MovementKind uint8

const (
	Idle MovementKind = iota
	AwaitingPath
	FollowingPath
	Stuck
)

// Movement is the tagged-variant movement component. Fields outside
// the active Kind are ignored by systems, mirroring a closed sum type
// in a component-oriented ECS (spec.md §9 Design Note).
type Movement struct {
	Kind             MovementKind
	PendingRequestID uint64
	Path             []worldmap.Tile
	PathIndex        int
	Destination      worldmap.Tile
	TicksRemaining   int
	StuckAttempts    int
}

// MovementProfile holds an entity's base movement cadence and an
// optional temporary speed-boost overlay (spec.md §4.7).
type MovementProfile struct {
	TicksPerTile      int
	BoostTicksPerTile int // 0 means no active boost
}

// EffectiveTicksPerTile returns the boost cadence when active, else the
// base cadence.
func (m MovementProfile) EffectiveTicksPerTile() int {
	if m.BoostTicksPerTile > 0 {
		return m.BoostTicksPerTile
	}
	return m.TicksPerTile
}

// ActionKind is the closed action enum (spec.md §4.5).
type ActionKind uint8

const (
	NoAction ActionKind = iota
	Wander
	DrinkWater
	Graze
	Hunt
	Mate
	Rest
	Flee
	MovePath
)

func (k ActionKind) String() string {
	switch k {
	case Wander:
		return "wander"
	case DrinkWater:
		return "drink_water"
	case Graze:
		return "graze"
	case Hunt:
		return "hunt"
	case Mate:
		return "mate"
	case Rest:
		return "rest"
	case Flee:
		return "flee"
	case MovePath:
		return "move_path"
	default:
		return "none"
	}
}

// ActionPhase is the closed set of per-action state-machine phases
// referenced across the action kinds in spec.md §4.5. Not every phase
// applies to every kind; each action's system interprets only the
// phases it declares transitions for.
type ActionPhase uint8

const (
	PhaseNone ActionPhase = iota
	PhaseNeedsTarget
	PhaseLocateResource
	PhaseAwaitingPath
	PhaseMoving
	PhaseActing
	PhaseAcquireTarget
	PhaseChasing
	PhaseStrike
	PhaseFindPartner
	PhaseCourtship
	PhaseMeeting
	PhaseSuccess
	PhaseFailure
)

// ActionState is an entity's current and queued action.
type ActionState struct {
	Current        ActionKind
	Phase          ActionPhase
	RetryCount     int
	TicksInAction  int
	ActingTicksLeft int
	Queued         ActionKind // not set or read; the planner preempts by calling the executor's Begin directly
}

// CoreEntity bundles the seven always-present components into one
// mapper/filter pair, mirroring the teacher's seven-component
// entityMapper/entityFilter split between a fixed core bundle and
// ad-hoc optional components (game/game.go).
type CoreMapper = ecs.Map7[
	TilePosition,
	SpeciesInfo,
	Stats,
	FearState,
	Movement,
	MovementProfile,
	ActionState,
]

type CoreFilter = ecs.Filter7[
	TilePosition,
	SpeciesInfo,
	Stats,
	FearState,
	Movement,
	MovementProfile,
	ActionState,
]

// NewCoreMapper builds the mapper over the seven core components.
func NewCoreMapper(w *ecs.World) *CoreMapper {
	return ecs.NewMap7[
		TilePosition,
		SpeciesInfo,
		Stats,
		FearState,
		Movement,
		MovementProfile,
		ActionState,
	](w)
}

// NewCoreFilter builds the filter over the seven core components.
func NewCoreFilter(w *ecs.World) *CoreFilter {
	return ecs.NewFilter7[
		TilePosition,
		SpeciesInfo,
		Stats,
		FearState,
		Movement,
		MovementProfile,
		ActionState,
	](w)
}
