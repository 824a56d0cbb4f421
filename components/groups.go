package components

import "github.com/briarlock/ecotick/traits"

// GroupFormationConfig is the per-species group-behavior tunable
// attached at spawn time so formation/cohesion systems never need to
// look up config by species on every entity (spec.md §4.9).
type GroupFormationConfig struct {
	GroupType       traits.GroupType
	MinSize         int
	MaxSize         int
	FormationRadius int
	CohesionRadius  int
	HuntBonus       float32
	GrazeRestBonus  float32
	FleeBonus       float32
}
