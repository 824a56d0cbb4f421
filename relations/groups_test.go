package relations

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

func newEntityAt(w *ecs.World, tile worldmap.Tile) ecs.Entity {
	mapper := components.NewCoreMapper(w)
	return mapper.NewEntity(
		&components.TilePosition{Tile: tile},
		&components.SpeciesInfo{},
		&components.Stats{},
		&components.FearState{},
		&components.Movement{},
		&components.MovementProfile{},
		&components.ActionState{},
	)
}

func herdConfig() components.GroupFormationConfig {
	return components.GroupFormationConfig{
		GroupType: traits.Herd, MinSize: 3, MaxSize: 6,
		FormationRadius: 5, CohesionRadius: 10, GrazeRestBonus: 0.1,
	}
}

func TestFormGroupsClustersNearbyCandidates(t *testing.T) {
	w := ecs.NewWorld()
	idx := spatial.NewIndex()
	g := NewGroups(w, idx, 100)

	var members []ecs.Entity
	for i := 0; i < 4; i++ {
		e := newEntityAt(w, worldmap.Tile{X: int32(i), Y: 0})
		idx.Insert(e, worldmap.Tile{X: int32(i), Y: 0}, traits.Herbivore)
		g.SetConfig(e, herdConfig())
		members = append(members, e)
	}

	g.FormGroups(0, traits.Herd, nil, members)

	leaderCount, memberCount := 0, 0
	for _, e := range members {
		if !g.Unaffiliated(e) {
			if g.leaderMap.Has(e) {
				leaderCount++
			} else {
				memberCount++
			}
		}
	}
	if leaderCount != 1 || memberCount != 3 {
		t.Fatalf("expected one leader and 3 members, got leader=%d member=%d", leaderCount, memberCount)
	}
}

func TestFormGroupsSkipsBelowMinSize(t *testing.T) {
	w := ecs.NewWorld()
	idx := spatial.NewIndex()
	g := NewGroups(w, idx, 100)

	e1 := newEntityAt(w, worldmap.Tile{X: 0, Y: 0})
	e2 := newEntityAt(w, worldmap.Tile{X: 1, Y: 0})
	idx.Insert(e1, worldmap.Tile{X: 0, Y: 0}, traits.Herbivore)
	idx.Insert(e2, worldmap.Tile{X: 1, Y: 0}, traits.Herbivore)
	g.SetConfig(e1, herdConfig())
	g.SetConfig(e2, herdConfig())

	g.FormGroups(0, traits.Herd, nil, []ecs.Entity{e1, e2})

	if !g.Unaffiliated(e1) || !g.Unaffiliated(e2) {
		t.Fatal("expected no group formed below MinSize")
	}
}

func TestCohesionDropsFarMember(t *testing.T) {
	w := ecs.NewWorld()
	idx := spatial.NewIndex()
	g := NewGroups(w, idx, 100)

	leader := newEntityAt(w, worldmap.Tile{X: 0, Y: 0})
	m1 := newEntityAt(w, worldmap.Tile{X: 1, Y: 0})
	m2 := newEntityAt(w, worldmap.Tile{X: 2, Y: 0})
	idx.Insert(leader, worldmap.Tile{X: 0, Y: 0}, traits.Herbivore)
	idx.Insert(m1, worldmap.Tile{X: 1, Y: 0}, traits.Herbivore)
	idx.Insert(m2, worldmap.Tile{X: 2, Y: 0}, traits.Herbivore)
	cfg := herdConfig()
	cfg.CohesionRadius = 3
	cfg.MinSize = 2
	g.SetConfig(leader, cfg)
	g.leaderMap.Add(leader, &components.GroupLeader{GroupType: traits.Herd, Members: []ecs.Entity{m1, m2}})
	g.memberMap.Add(m1, &components.GroupMember{Leader: leader, GroupType: traits.Herd})
	g.memberMap.Add(m2, &components.GroupMember{Leader: leader, GroupType: traits.Herd})

	// Move m2 far away by updating its TilePosition component directly.
	posMap := ecs.NewMap1[components.TilePosition](w)
	posMap.Get(m2).Tile = worldmap.Tile{X: 50, Y: 0}

	g.Cohesion(w, []ecs.Entity{leader})

	if g.memberMap.Has(m2) {
		t.Fatal("expected far member dropped from group")
	}
	if !g.memberMap.Has(m1) {
		t.Fatal("expected near member retained")
	}
}

func TestBonusesForMemberInheritsLeaderConfig(t *testing.T) {
	w := ecs.NewWorld()
	idx := spatial.NewIndex()
	g := NewGroups(w, idx, 100)

	leader := newEntityAt(w, worldmap.Tile{})
	member := newEntityAt(w, worldmap.Tile{})
	g.SetConfig(leader, herdConfig())
	g.leaderMap.Add(leader, &components.GroupLeader{GroupType: traits.Herd})
	g.memberMap.Add(member, &components.GroupMember{Leader: leader, GroupType: traits.Herd})

	_, grazeRest, _ := g.BonusesFor(member)
	if grazeRest != 0.1 {
		t.Fatalf("expected member to inherit leader's graze-rest bonus, got %v", grazeRest)
	}
}
