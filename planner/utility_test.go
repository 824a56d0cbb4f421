package planner

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
)

func TestFleeDominatesWhenFearfulAndPredatorsNear(t *testing.T) {
	in := Inputs{
		Stats:           components.Stats{Hunger: 0.9, Thirst: 0.9},
		Fear:            components.FearState{Level: 0.5},
		CanFlee:         true,
		CanHunt:         true,
		HasPreyNear:     true,
		PredatorsNear:   true,
		FleeThreshold:   0.3,
		FleeBaseUtility: 0.9,
	}
	scores := Score(in)
	best := Select(scores, ecs.Entity{})
	if best != components.Flee {
		t.Fatalf("expected Flee to dominate, got %v (scores=%v)", best, scores)
	}
}

func TestNoFleeWithoutPredatorsNear(t *testing.T) {
	in := Inputs{
		Stats:         components.Stats{Hunger: 0.9},
		Fear:          components.FearState{Level: 0.5},
		CanFlee:       true,
		CanGraze:      true,
		HasFoodNear:   true,
		FleeThreshold: 0.3,
		PredatorsNear: false,
	}
	scores := Score(in)
	if _, ok := scores[components.Flee]; ok {
		t.Fatal("expected no Flee candidate without predators near")
	}
	best := Select(scores, ecs.Entity{})
	if best != components.Graze {
		t.Fatalf("expected Graze to win on high hunger, got %v", best)
	}
}

func TestWanderIsAlwaysFallback(t *testing.T) {
	scores := Score(Inputs{Stats: components.Stats{Energy: 1}})
	if _, ok := scores[components.Wander]; !ok {
		t.Fatal("expected Wander to always be a candidate")
	}
	best := Select(scores, ecs.Entity{})
	if best != components.Wander {
		t.Fatalf("expected Wander fallback with no other candidates, got %v", best)
	}
}

func TestUtilityScoresClampedToUnitRange(t *testing.T) {
	in := Inputs{
		Stats:       components.Stats{Hunger: 1.0},
		CanGraze:    true,
		HasFoodNear: true,
		Bonuses:     Bonuses{GrazeRest: 0.5},
	}
	scores := Score(in)
	if scores[components.Graze] > 1.0 {
		t.Fatalf("expected graze utility clamped to 1.0, got %v", scores[components.Graze])
	}
}
