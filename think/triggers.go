package think

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
)

// Thresholds holds the stat cutoffs used by the trigger emitters
// (spec.md §4.6, §9 defaults).
type Thresholds struct {
	HungerCritical float32
	HungerModerate float32
	ThirstCritical float32
	ThirstModerate float32
	EnergyCritical float32
	EnergyLow      float32
	IdleTicks      int
	IdleCheckPeriod int
}

// priorState tracks an entity's previously observed stat band so
// emitters fire only on a threshold crossing, not every tick that the
// entity remains above it (spec.md §4.6: "emitted with change
// detection").
type priorState struct {
	wasFearful       bool
	hungerBand       int // 0=normal,1=moderate,2=critical
	thirstBand       int
	energyBand       int
	lastMoveTick     uint64
	lastTilePosition [2]int32
	idleChecked      uint64
	idleInit         bool
}

// Emitter tracks per-entity prior state and pushes Queue entries when a
// threshold is crossed.
type Emitter struct {
	thresholds Thresholds
	prior      map[ecs.Entity]*priorState
}

// NewEmitter builds a trigger emitter with the given thresholds.
func NewEmitter(t Thresholds) *Emitter {
	return &Emitter{thresholds: t, prior: make(map[ecs.Entity]*priorState)}
}

func (em *Emitter) stateFor(e ecs.Entity) *priorState {
	s, ok := em.prior[e]
	if !ok {
		s = &priorState{}
		em.prior[e] = s
	}
	return s
}

// Forget drops tracked state for a despawned entity.
func (em *Emitter) Forget(e ecs.Entity) {
	delete(em.prior, e)
}

// CheckFear emits Urgent(FearTriggered) the tick fear transitions from
// not-fearful to fearful (spec.md §4.6).
func (em *Emitter) CheckFear(q *Queue, e ecs.Entity, fear components.FearState, tick uint64) {
	s := em.stateFor(e)
	if fear.Fearful && !s.wasFearful {
		q.Push(e, ReasonFearTriggered, Urgent, tick)
	}
	s.wasFearful = fear.Fearful
}

func band(value, moderate, critical float32) int {
	switch {
	case value >= critical:
		return 2
	case value >= moderate:
		return 1
	default:
		return 0
	}
}

// CheckStats emits hunger/thirst/energy triggers on band transitions
// (spec.md §4.6).
func (em *Emitter) CheckStats(q *Queue, e ecs.Entity, stats components.Stats, tick uint64) {
	s := em.stateFor(e)
	t := em.thresholds

	hungerBand := band(stats.Hunger, t.HungerModerate, t.HungerCritical)
	if hungerBand != s.hungerBand && hungerBand > 0 {
		if hungerBand == 2 {
			q.Push(e, ReasonHungerCritical, Urgent, tick)
		} else {
			q.Push(e, ReasonHungerModerate, Normal, tick)
		}
	}
	s.hungerBand = hungerBand

	thirstBand := band(stats.Thirst, t.ThirstModerate, t.ThirstCritical)
	if thirstBand != s.thirstBand && thirstBand > 0 {
		if thirstBand == 2 {
			q.Push(e, ReasonThirstCritical, Urgent, tick)
		} else {
			q.Push(e, ReasonThirstModerate, Normal, tick)
		}
	}
	s.thirstBand = thirstBand

	// Energy is inverted: low values are the concern (spec.md §4.6:
	// "Energy below critical (≤ 0.1) → Urgent; low (≤ 0.3) → Normal").
	energyBand := 0
	switch {
	case stats.Energy <= t.EnergyCritical:
		energyBand = 2
	case stats.Energy <= t.EnergyLow:
		energyBand = 1
	}
	if energyBand != s.energyBand && energyBand > 0 {
		if energyBand == 2 {
			q.Push(e, ReasonEnergyCritical, Urgent, tick)
		} else {
			q.Push(e, ReasonEnergyLow, Normal, tick)
		}
	}
	s.energyBand = energyBand
}

// CheckActionCompleted emits Normal(ActionCompleted) whenever the
// planner is informed an action finished.
func (em *Emitter) CheckActionCompleted(q *Queue, e ecs.Entity, tick uint64) {
	q.Push(e, ReasonActionCompleted, Normal, tick)
}

// CheckIdle emits Low(Idle) when an entity's tile has not changed for
// at least IdleTicks, checked only every IdleCheckPeriod ticks (spec.md
// §4.6).
func (em *Emitter) CheckIdle(q *Queue, e ecs.Entity, tile [2]int32, tick uint64) {
	s := em.stateFor(e)
	if s.idleInit && tick-s.idleChecked < uint64(em.thresholds.IdleCheckPeriod) {
		return
	}
	s.idleChecked = tick
	if !s.idleInit {
		s.idleInit = true
		s.lastTilePosition = tile
		s.lastMoveTick = tick
		return
	}
	if tile != s.lastTilePosition {
		s.lastTilePosition = tile
		s.lastMoveTick = tick
		return
	}
	if tick-s.lastMoveTick >= uint64(em.thresholds.IdleTicks) {
		q.Push(e, ReasonIdle, Low, tick)
	}
}
