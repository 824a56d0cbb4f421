package engine

import (
	"fmt"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

// Spawner is the external entity-creation interface (spec.md §6:
// "External spawner inserts entities with a complete, validated
// component set").
type Spawner interface {
	Spawn(req SpawnRequest) (ecs.Entity, error)
}

// SpawnRequest names the species and tile for a new entity. Stats and
// behavior config are filled in from the species' loaded configuration.
type SpawnRequest struct {
	Species traits.Species
	Tile    worldmap.Tile
}

// initialStats is the stat set every freshly spawned entity starts
// with: comfortably fed/hydrated/rested so triggers do not fire on the
// entity's very first tick (spec.md §9 Open Question, resolved).
var initialStats = components.Stats{Hunger: 0.2, Thirst: 0.2, Energy: 0.8, Health: 1.0}

// Spawn inserts a fully-componented entity at the requested tile,
// rejecting impassable tiles (spec.md §6: "core may reject ... [an
// invalid initial tile position]").
func (w *World) Spawn(req SpawnRequest) (ecs.Entity, error) {
	if !w.terrain.Passable(req.Tile) {
		return ecs.Entity{}, fmt.Errorf("engine: spawn tile %v is not passable", req.Tile)
	}

	sc := w.cfg.ForSpecies(req.Species.String())
	class := traits.ClassOf(req.Species)

	e := w.core.NewEntity(
		&components.TilePosition{Tile: req.Tile},
		&components.SpeciesInfo{Species: req.Species, Class: class},
		copyStats(initialStats),
		&components.FearState{},
		&components.Movement{Kind: components.Idle},
		&components.MovementProfile{TicksPerTile: maxInt(sc.MovementSpeed, 1)},
		&components.ActionState{Current: components.NoAction, Phase: components.PhaseNone},
	)

	w.maint.Insert(e, req.Tile, class)

	if sc.Group.Enabled {
		gt := traits.ParseGroupType(sc.Group.GroupType)
		w.groups.SetConfig(e, components.GroupFormationConfig{
			GroupType:       gt,
			MinSize:         sc.Group.MinSize,
			MaxSize:         sc.Group.MaxSize,
			FormationRadius: sc.Group.FormationRadius,
			CohesionRadius:  sc.Group.CohesionRadius,
			HuntBonus:       sc.Group.HuntBonus,
			GrazeRestBonus:  sc.Group.GrazeRestBonus,
			FleeBonus:       sc.Group.FleeBonus,
		})
	}

	return e, nil
}

// SpawnRandomPopulation spawns count entities of species at random
// passable tiles drawn from the world's generated chunks. Tile sampling
// iterates a sorted snapshot of chunk coordinates so the sequence of
// spawned positions is reproducible for a given seed (spec.md §8
// Determinism).
func (w *World) SpawnRandomPopulation(species traits.Species, count int) ([]ecs.Entity, error) {
	coords := w.terrain.Chunks()
	if len(coords) == 0 {
		return nil, fmt.Errorf("engine: cannot spawn, world has no generated chunks")
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Y < coords[j].Y
	})

	spawned := make([]ecs.Entity, 0, count)
	const maxAttemptsPerEntity = 64
	for i := 0; i < count; i++ {
		var placed bool
		for attempt := 0; attempt < maxAttemptsPerEntity; attempt++ {
			coord := coords[w.rng.Intn(len(coords))]
			local := worldmap.Tile{X: coord.X*worldmap.ChunkSize + int32(w.rng.Intn(worldmap.ChunkSize)), Y: coord.Y*worldmap.ChunkSize + int32(w.rng.Intn(worldmap.ChunkSize))}
			if !w.terrain.Passable(local) {
				continue
			}
			e, err := w.Spawn(SpawnRequest{Species: species, Tile: local})
			if err != nil {
				continue
			}
			spawned = append(spawned, e)
			placed = true
			break
		}
		if !placed {
			return spawned, fmt.Errorf("engine: could not find a passable tile for entity %d of %d", i, count)
		}
	}
	return spawned, nil
}

func copyStats(s components.Stats) *components.Stats { return &s }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
