package fear

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

func newFearEntity(w *ecs.World, tile worldmap.Tile) ecs.Entity {
	mapper := components.NewCoreMapper(w)
	return mapper.NewEntity(
		&components.TilePosition{Tile: tile},
		&components.SpeciesInfo{Class: traits.Herbivore},
		&components.Stats{},
		&components.FearState{},
		&components.Movement{},
		&components.MovementProfile{},
		&components.ActionState{},
	)
}

func testConfig() Config {
	return Config{
		DetectionRadius: 10,
		StimulusPerPred: 0.25,
		DecayPerTick:    0.05,
		FleeThreshold:   0.3,
	}
}

func TestRunRaisesFearWhenPredatorNear(t *testing.T) {
	w := ecs.NewWorld()
	index := spatial.NewIndex()
	prey := newFearEntity(w, worldmap.Tile{X: 0, Y: 0})
	predator := newFearEntity(w, worldmap.Tile{X: 2, Y: 0})

	index.Insert(prey, worldmap.Tile{X: 0, Y: 0}, traits.Herbivore)
	index.Insert(predator, worldmap.Tile{X: 2, Y: 0}, traits.Predator)

	sys := New(w, index, testConfig())
	sys.Run([]ecs.Entity{prey})

	fearMap := ecs.NewMap1[components.FearState](w)
	fs := fearMap.Get(prey)
	if fs.Predators != 1 {
		t.Fatalf("expected 1 predator detected, got %d", fs.Predators)
	}
	if fs.Level != 0.25 {
		t.Fatalf("expected level 0.25 after one tick, got %v", fs.Level)
	}
	if fs.Fearful {
		t.Fatal("expected not yet fearful below threshold")
	}
}

func TestRunDecaysFearWithoutPredators(t *testing.T) {
	w := ecs.NewWorld()
	index := spatial.NewIndex()
	prey := newFearEntity(w, worldmap.Tile{X: 0, Y: 0})
	index.Insert(prey, worldmap.Tile{X: 0, Y: 0}, traits.Herbivore)

	fearMap := ecs.NewMap1[components.FearState](w)
	fearMap.Get(prey).Level = 0.4
	fearMap.Get(prey).Fearful = true

	sys := New(w, index, testConfig())
	sys.Run([]ecs.Entity{prey})

	fs := fearMap.Get(prey)
	if fs.Level != 0.35 {
		t.Fatalf("expected decayed level 0.35, got %v", fs.Level)
	}
}

func TestRunSetsFearfulAtThreshold(t *testing.T) {
	w := ecs.NewWorld()
	index := spatial.NewIndex()
	prey := newFearEntity(w, worldmap.Tile{X: 0, Y: 0})
	predator := newFearEntity(w, worldmap.Tile{X: 1, Y: 0})

	index.Insert(prey, worldmap.Tile{X: 0, Y: 0}, traits.Herbivore)
	index.Insert(predator, worldmap.Tile{X: 1, Y: 0}, traits.Predator)

	cfg := testConfig()
	cfg.StimulusPerPred = 0.5
	sys := New(w, index, cfg)
	sys.Run([]ecs.Entity{prey})

	fearMap := ecs.NewMap1[components.FearState](w)
	if !fearMap.Get(prey).Fearful {
		t.Fatal("expected fearful once level crosses threshold")
	}
}
