// Package relations implements the hunting, mating, parent-child, and
// group relationship registries and their cleanup/formation systems
// (spec.md §4.9).
package relations

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
)

// Hunting manages the symmetric ActiveHunter/HuntingTarget pair.
type Hunting struct {
	hunterMap *ecs.Map[components.ActiveHunter]
	targetMap *ecs.Map[components.HuntingTarget]
}

// NewHunting builds the hunting relationship registry.
func NewHunting(w *ecs.World) *Hunting {
	return &Hunting{
		hunterMap: ecs.NewMap[components.ActiveHunter](w),
		targetMap: ecs.NewMap[components.HuntingTarget](w),
	}
}

// Establish inserts ActiveHunter on predator and HuntingTarget on prey
// (spec.md §4.9).
func (h *Hunting) Establish(predator, prey ecs.Entity, tick uint64) {
	h.hunterMap.Add(predator, &components.ActiveHunter{Prey: prey, SinceTick: tick})
	h.targetMap.Add(prey, &components.HuntingTarget{Hunter: predator, SinceTick: tick})
}

// Clear removes both sides of the relationship.
func (h *Hunting) Clear(predator, prey ecs.Entity) {
	if h.hunterMap.Has(predator) {
		h.hunterMap.Remove(predator)
	}
	if h.targetMap.Has(prey) {
		h.targetMap.Remove(prey)
	}
}

// PreyOf returns the prey a predator is actively hunting, if any.
func (h *Hunting) PreyOf(predator ecs.Entity) (ecs.Entity, bool) {
	if !h.hunterMap.Has(predator) {
		return ecs.Entity{}, false
	}
	return h.hunterMap.Get(predator).Prey, true
}

// HunterOf returns the predator hunting prey, if any.
func (h *Hunting) HunterOf(prey ecs.Entity) (ecs.Entity, bool) {
	if !h.targetMap.Has(prey) {
		return ecs.Entity{}, false
	}
	return h.targetMap.Get(prey).Hunter, true
}

// CleanupStale scans active hunters: a hunter whose prey has despawned
// has its pair cleared, and a live prey missing its matching
// HuntingTarget gets it restored. Prey are not scanned, so a prey whose
// hunter despawned keeps its HuntingTarget. Run every tick in the cleanup
// phase (spec.md §4.9: "cleanup_stale scans leaders for references to
// despawned entities every tick").
func (h *Hunting) CleanupStale(w *ecs.World, predators []ecs.Entity) {
	for _, predator := range predators {
		if !h.hunterMap.Has(predator) {
			continue
		}
		prey := h.hunterMap.Get(predator).Prey
		if !w.Alive(prey) {
			h.hunterMap.Remove(predator)
			continue
		}
		if !h.targetMap.Has(prey) || h.targetMap.Get(prey).Hunter != predator {
			h.targetMap.Add(prey, &components.HuntingTarget{Hunter: predator})
		}
	}
}
