// Package planner implements the utility-based action selection over
// the closed action enum (spec.md §4.6).
package planner

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
)

// Bonuses are the species-configured group coordination deltas applied
// at plan time (spec.md §4.9 Coordination bonuses).
type Bonuses struct {
	Hunt      float32
	GrazeRest float32
	Flee      float32
}

// Inputs bundles everything the utility function needs for one entity,
// assembled by the caller from spatial/fear/vegetation queries so this
// package stays free of ECS-system wiring concerns.
type Inputs struct {
	Stats           components.Stats
	Fear            components.FearState
	CanGraze        bool
	CanDrink        bool
	CanHunt         bool
	CanFlee         bool
	HasPreyNear     bool
	HasWaterNear    bool
	HasFoodNear     bool
	HasPartnerNear  bool
	PredatorsNear   bool
	FleeThreshold   float32
	FleeBaseUtility float32
	Bonuses         Bonuses
	CurrentAction   components.ActionKind
}

// actionOrder is the fixed tie-break ordinal table: lower value wins a
// tie (spec.md §9 Open Question, resolved: "lower action-kind ordinal,
// then lower entity id").
var actionOrder = map[components.ActionKind]int{
	components.Flee:       0,
	components.Hunt:       1,
	components.DrinkWater: 2,
	components.Graze:      3,
	components.Mate:       4,
	components.Rest:       5,
	components.Wander:     6,
}

// Score computes the clamped [0,1] utility for every candidate action
// available to the entity (spec.md §4.6).
func Score(in Inputs) map[components.ActionKind]float32 {
	scores := make(map[components.ActionKind]float32)

	if in.CanFlee && in.Fear.Level >= in.FleeThreshold && in.PredatorsNear {
		scores[components.Flee] = clamp01(in.FleeBaseUtility + in.Bonuses.Flee)
	}

	if in.CanHunt && in.HasPreyNear {
		base := 0.3 + in.Stats.Hunger*0.6
		scores[components.Hunt] = clamp01(base + in.Bonuses.Hunt)
	}

	if in.CanDrink && in.HasWaterNear {
		scores[components.DrinkWater] = clamp01(in.Stats.Thirst)
	}

	if in.CanGraze && in.HasFoodNear {
		scores[components.Graze] = clamp01(in.Stats.Hunger + in.Bonuses.GrazeRest)
	}

	if in.HasPartnerNear && in.Stats.Energy > 0.5 && in.Stats.Hunger < 0.5 && in.Stats.Thirst < 0.5 {
		scores[components.Mate] = clamp01(0.2)
	}

	if in.Stats.Energy < 0.5 {
		scores[components.Rest] = clamp01((1 - in.Stats.Energy) * 0.7 + in.Bonuses.GrazeRest)
	}

	// Wander is always a valid fallback action with a low base utility.
	scores[components.Wander] = 0.1

	return scores
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Select picks the highest-scoring action, breaking ties by the fixed
// action-kind ordinal table (spec.md §4.6). The entity argument is not
// used: all candidates belong to the one entity.
func Select(scores map[components.ActionKind]float32, entity ecs.Entity) components.ActionKind {
	best := components.Wander
	bestScore := float32(-1)
	bestOrder := actionOrder[components.Wander]

	for kind, score := range scores {
		order, known := actionOrder[kind]
		if !known {
			order = 1 << 30
		}
		switch {
		case score > bestScore:
			best, bestScore, bestOrder = kind, score, order
		case score == bestScore && order < bestOrder:
			best, bestScore, bestOrder = kind, score, order
		}
	}
	_ = entity // entity id only breaks ties across distinct entities at the caller's aggregation level
	return best
}
