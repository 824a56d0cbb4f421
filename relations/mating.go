package relations

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/worldmap"
)

// Mating manages the symmetric ActiveMate/MatingTarget pair: the
// initiator carries ActiveMate, the courted partner carries
// MatingTarget, mirroring the ActiveHunter/HuntingTarget split.
type Mating struct {
	initiatorMap *ecs.Map[components.ActiveMate]
	targetMap    *ecs.Map[components.MatingTarget]
}

// NewMating builds the mating relationship registry.
func NewMating(w *ecs.World) *Mating {
	return &Mating{
		initiatorMap: ecs.NewMap[components.ActiveMate](w),
		targetMap:    ecs.NewMap[components.MatingTarget](w),
	}
}

// Establish pairs two entities at the midpoint meeting tile with a
// tick deadline (spec.md §4.9: courtship fails if the pair does not
// reach the meeting tile before the deadline).
func (m *Mating) Establish(initiator, partner ecs.Entity, meetingTile worldmap.Tile, tick, deadline uint64) {
	m.initiatorMap.Add(initiator, &components.ActiveMate{Partner: partner, MeetingTile: meetingTile, SinceTick: tick, DeadlineTick: deadline})
	m.targetMap.Add(partner, &components.MatingTarget{Partner: initiator, MeetingTile: meetingTile, SinceTick: tick, DeadlineTick: deadline})
}

// Clear removes the relationship from both partners.
func (m *Mating) Clear(initiator, partner ecs.Entity) {
	if m.initiatorMap.Has(initiator) {
		m.initiatorMap.Remove(initiator)
	}
	if m.targetMap.Has(partner) {
		m.targetMap.Remove(partner)
	}
}

// PartnerOf returns the mating partner and shared state for an
// initiator, if any.
func (m *Mating) PartnerOf(e ecs.Entity) (components.ActiveMate, bool) {
	if !m.initiatorMap.Has(e) {
		return components.ActiveMate{}, false
	}
	return *m.initiatorMap.Get(e), true
}

// CourtedBy returns the initiator courting e, if any.
func (m *Mating) CourtedBy(e ecs.Entity) (components.MatingTarget, bool) {
	if !m.targetMap.Has(e) {
		return components.MatingTarget{}, false
	}
	return *m.targetMap.Get(e), true
}

// CleanupStale drops mating pairs referencing a despawned partner or
// past their deadline tick.
func (m *Mating) CleanupStale(w *ecs.World, initiators []ecs.Entity, tick uint64) {
	for _, e := range initiators {
		if !m.initiatorMap.Has(e) {
			continue
		}
		mate := m.initiatorMap.Get(e)
		if !w.Alive(mate.Partner) || tick > mate.DeadlineTick {
			m.initiatorMap.Remove(e)
			if m.targetMap.Has(mate.Partner) {
				m.targetMap.Remove(mate.Partner)
			}
		}
	}
}

// MidpointTile picks the meeting tile between two positions, biased
// toward integer coordinates via truncation (spec.md §4.5 MateAction).
func MidpointTile(a, b worldmap.Tile) worldmap.Tile {
	return worldmap.Tile{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
