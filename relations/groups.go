package relations

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/traits"
)

// Groups runs periodic greedy-proximity formation and per-tick cohesion
// checks over a species' GroupFormationConfig (spec.md §4.9).
type Groups struct {
	index        *spatial.Index
	posMap       *ecs.Map1[components.TilePosition]
	cfgMap       *ecs.Map[components.GroupFormationConfig]
	leaderMap    *ecs.Map[components.GroupLeader]
	memberMap    *ecs.Map[components.GroupMember]
	checkPeriod  int
	lastFormedAt uint64
}

// NewGroups builds the group relationship registry. checkPeriod is the
// number of ticks between formation sweeps (spec.md §4.9:
// "check_interval_ticks").
func NewGroups(w *ecs.World, index *spatial.Index, checkPeriod int) *Groups {
	return &Groups{
		index:       index,
		posMap:      ecs.NewMap1[components.TilePosition](w),
		cfgMap:      ecs.NewMap[components.GroupFormationConfig](w),
		leaderMap:   ecs.NewMap[components.GroupLeader](w),
		memberMap:   ecs.NewMap[components.GroupMember](w),
		checkPeriod: checkPeriod,
	}
}

// SetConfig attaches (or replaces) the group-formation tunable for a
// species, typically done once at spawn time.
func (g *Groups) SetConfig(e ecs.Entity, cfg components.GroupFormationConfig) {
	g.cfgMap.Add(e, &cfg)
}

// Unaffiliated reports whether e is neither a leader nor a member of
// any group.
func (g *Groups) Unaffiliated(e ecs.Entity) bool {
	return !g.leaderMap.Has(e) && !g.memberMap.Has(e)
}

// FormGroups runs one greedy-clustering sweep over candidates sharing
// groupType: each unaffiliated candidate with at least MinSize-1
// unaffiliated neighbors within FormationRadius becomes a leader and
// claims those neighbors as members, up to MaxSize (spec.md §4.9).
// Candidates already claimed this sweep are skipped.
func (g *Groups) FormGroups(tick uint64, groupType traits.GroupType, classFilter *traits.Class, candidates []ecs.Entity) {
	if g.lastFormedAt != 0 && tick != g.lastFormedAt && tick-g.lastFormedAt < uint64(g.checkPeriod) {
		return
	}
	g.lastFormedAt = tick

	claimed := make(map[ecs.Entity]bool)
	for _, e := range candidates {
		if claimed[e] || !g.Unaffiliated(e) {
			continue
		}
		if !g.cfgMap.Has(e) {
			continue
		}
		cfg := *g.cfgMap.Get(e)
		if cfg.GroupType != groupType {
			continue
		}
		tile, ok := g.index.TileOf(e)
		if !ok {
			continue
		}
		nearby := g.index.EntitiesInRadius(tile, int32(cfg.FormationRadius), classFilter)
		var members []ecs.Entity
		for _, occ := range nearby {
			if occ.Entity == e || claimed[occ.Entity] || !g.Unaffiliated(occ.Entity) {
				continue
			}
			if !g.cfgMap.Has(occ.Entity) || g.cfgMap.Get(occ.Entity).GroupType != groupType {
				continue
			}
			members = append(members, occ.Entity)
			if len(members)+1 >= cfg.MaxSize {
				break
			}
		}
		if len(members)+1 < cfg.MinSize {
			continue
		}
		g.leaderMap.Add(e, &components.GroupLeader{GroupType: groupType, Members: members, FormedTick: tick})
		claimed[e] = true
		for _, m := range members {
			g.memberMap.Add(m, &components.GroupMember{Leader: e, GroupType: groupType})
			claimed[m] = true
		}
	}
}

// Cohesion drops members that have wandered beyond CohesionRadius of
// their leader or despawned, and dissolves groups that fall below
// MinSize-1 remaining members (spec.md §4.9).
func (g *Groups) Cohesion(w *ecs.World, leaders []ecs.Entity) {
	for _, leader := range leaders {
		if !g.leaderMap.Has(leader) {
			continue
		}
		gl := g.leaderMap.Get(leader)
		if !w.Alive(leader) {
			g.dissolve(gl.Members)
			g.leaderMap.Remove(leader)
			continue
		}
		if !g.cfgMap.Has(leader) {
			continue
		}
		cfg := *g.cfgMap.Get(leader)
		leaderTile := g.posMap.Get(leader).Tile
		var kept []ecs.Entity
		for _, m := range gl.Members {
			if !w.Alive(m) {
				continue
			}
			memberTile := g.posMap.Get(m).Tile
			if leaderTile.ChebyshevDistance(memberTile) > int32(cfg.CohesionRadius) {
				g.memberMap.Remove(m)
				continue
			}
			kept = append(kept, m)
		}
		if len(kept)+1 < cfg.MinSize {
			g.dissolve(kept)
			g.leaderMap.Remove(leader)
			continue
		}
		gl.Members = kept
	}
}

func (g *Groups) dissolve(members []ecs.Entity) {
	for _, m := range members {
		if g.memberMap.Has(m) {
			g.memberMap.Remove(m)
		}
	}
}

// BonusesFor returns the hunt/graze-rest/flee coordination bonuses for
// a group member or leader, zero if unaffiliated (spec.md §4.9: pack
// +0.15 Hunt, herd +0.10 Graze/Rest, warren +0.20 flee-related).
func (g *Groups) BonusesFor(e ecs.Entity) (hunt, grazeRest, flee float32) {
	if g.leaderMap.Has(e) {
		if !g.cfgMap.Has(e) {
			return 0, 0, 0
		}
		cfg := g.cfgMap.Get(e)
		return cfg.HuntBonus, cfg.GrazeRestBonus, cfg.FleeBonus
	}
	if g.memberMap.Has(e) {
		leader := g.memberMap.Get(e).Leader
		if !g.cfgMap.Has(leader) {
			return 0, 0, 0
		}
		cfg := g.cfgMap.Get(leader)
		return cfg.HuntBonus, cfg.GrazeRestBonus, cfg.FleeBonus
	}
	return 0, 0, 0
}
