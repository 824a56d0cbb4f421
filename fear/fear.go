// Package fear implements the per-tick fear accumulation and decay that
// feeds FleeAction selection (spec.md §4.10).
package fear

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/traits"
)

// Config holds the fear subsystem's tunables (spec.md §9 defaults:
// detection_radius, stimulus_per_predator, decay_per_tick,
// flee_threshold).
type Config struct {
	DetectionRadius int32
	StimulusPerPred float32
	DecayPerTick    float32
	FleeThreshold   float32
}

// System scans the spatial index for nearby predators and updates each
// entity's FearState: rising while predators are in range, decaying
// toward zero otherwise (spec.md §4.10).
type System struct {
	index   *spatial.Index
	posMap  *ecs.Map1[components.TilePosition]
	fearMap *ecs.Map1[components.FearState]
	cfg     Config
}

// New builds the fear system over an ark world and the shared spatial
// index.
func New(w *ecs.World, index *spatial.Index, cfg Config) *System {
	return &System{
		index:   index,
		posMap:  ecs.NewMap1[components.TilePosition](w),
		fearMap: ecs.NewMap1[components.FearState](w),
		cfg:     cfg,
	}
}

// Run updates the FearState of every entity in entities. Order does not
// affect the result: each update reads only the entity's own tile and
// the (already-settled) spatial index, so no determinism sort is
// required here (spec.md §8).
func (s *System) Run(entities []ecs.Entity) {
	predator := traits.Predator
	for _, e := range entities {
		tile := s.posMap.Get(e).Tile
		nearby := s.index.EntitiesInRadius(tile, s.cfg.DetectionRadius, &predator)

		count := 0
		for _, occ := range nearby {
			if occ.Entity == e {
				continue
			}
			count++
		}

		fs := s.fearMap.Get(e)
		fs.Predators = count
		if count > 0 {
			fs.Level += float32(count) * s.cfg.StimulusPerPred
		} else {
			fs.Level -= s.cfg.DecayPerTick
		}
		switch {
		case fs.Level < 0:
			fs.Level = 0
		case fs.Level > 1:
			fs.Level = 1
		}
		fs.Fearful = fs.Level >= s.cfg.FleeThreshold
	}
}
