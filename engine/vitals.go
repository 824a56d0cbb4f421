package engine

import "github.com/briarlock/ecotick/components"

// deathCause is the closed set of EntityDied causes (spec.md §6 Event
// outputs).
type deathCause string

const (
	causeStarvation  deathCause = "starvation"
	causeDehydration deathCause = "dehydration"
	causePredation   deathCause = "predation"
	causeUnknown     deathCause = "unknown"
)

// starvation/dehydration penalties apply on top of a species' baseline
// HealthDrift once a stat has pegged at its maximum, so a starving or
// dehydrated entity's health falls meaningfully faster than one simply
// aging (spec.md §3: "a per-tick drift"; no species sets a nonzero
// health_drift in the shipped defaults, so without this an entity could
// sit at max hunger indefinitely without dying).
const (
	starvationPenalty  float32 = 0.01
	dehydrationPenalty float32 = 0.01
)

// driftStats applies one tick of species-scoped stat decay, grounded on
// the teacher's systems/energy.go UpdateEnergy (metabolic cost, then a
// death check). Returns the death cause if health reached zero from
// drift alone; hunt-strike deaths are attributed separately by the
// caller (see runActions' pre/post health comparison).
func driftStats(stats *components.Stats, hungerDrift, thirstDrift, energyDrift, healthDrift float32) (dead bool, cause deathCause) {
	stats.Hunger += hungerDrift
	stats.Thirst += thirstDrift
	stats.Energy -= energyDrift
	stats.Health -= healthDrift

	starving := stats.Hunger >= components.MaxStat
	dehydrated := stats.Thirst >= components.MaxStat
	if starving {
		stats.Health -= starvationPenalty
	}
	if dehydrated {
		stats.Health -= dehydrationPenalty
	}
	stats.Clamp()

	if stats.Health > 0 {
		return false, ""
	}
	switch {
	case starving:
		return true, causeStarvation
	case dehydrated:
		return true, causeDehydration
	default:
		return true, causeUnknown
	}
}
