package spatial

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

// ChunkParent is an optional per-entity hierarchy component pointing an
// entity at its chunk's parent entity (spec.md §4.2: "optional
// hierarchy").
type ChunkParent struct {
	Parent ecs.Entity
	Chunk  worldmap.ChunkCoord
}

// Maintenance drives the incremental insertion/update/removal/
// reparenting systems described in spec.md §4.2. Each uses change
// detection so a tick touches only entities whose position actually
// changed, avoiding an O(N) scan per tick.
type Maintenance struct {
	index *Index

	posMap   *ecs.Map1[components.TilePosition]
	speMap   *ecs.Map1[components.SpeciesInfo]
	tracked  map[ecs.Entity]worldmap.Tile // last tile known to the index, for removal diffing

	reparentBudget  int
	removalBudget   int
	removalInterval int
	tickCounter     uint64

	parentMap   *ecs.Map[ChunkParent]
	chunkLeader map[worldmap.ChunkCoord]ecs.Entity
}

// NewMaintenance builds the maintenance systems over an index and ark
// world, using the given budgets.
func NewMaintenance(w *ecs.World, index *Index, reparentBudget, removalBudget, removalInterval int) *Maintenance {
	return &Maintenance{
		index:           index,
		posMap:          ecs.NewMap1[components.TilePosition](w),
		speMap:          ecs.NewMap1[components.SpeciesInfo](w),
		tracked:         make(map[ecs.Entity]worldmap.Tile),
		reparentBudget:  reparentBudget,
		removalBudget:   removalBudget,
		removalInterval: removalInterval,
		parentMap:       ecs.NewMap[ChunkParent](w),
		chunkLeader:     make(map[worldmap.ChunkCoord]ecs.Entity),
	}
}

// Insert tracks a newly spawned entity. Called by the spawner when a
// TilePosition component is first added (spec.md §4.2: "Insertion
// system: processes entities whose tile-position component was just
// added").
func (m *Maintenance) Insert(e ecs.Entity, tile worldmap.Tile, class traits.Class) {
	m.index.Insert(e, tile, class)
	m.tracked[e] = tile
}

// Move updates an entity whose tile position changed since the last
// call (spec.md §4.2: "Update system: processes entities whose
// tile-position changed since last run"). Callers — the movement
// executor — invoke this only when a tile actually changes, which is
// itself the change-detection filter.
func (m *Maintenance) Move(e ecs.Entity, newTile worldmap.Tile, class traits.Class) {
	oldTile, ok := m.tracked[e]
	if !ok {
		m.Insert(e, newTile, class)
		return
	}
	if oldTile == newTile {
		return
	}
	m.index.Update(e, oldTile, newTile, class)
	m.tracked[e] = newTile
}

// Remove drops a despawned entity from the index immediately. The
// budgeted RemoveStale pass below exists for despawns the caller could
// not report directly (spec.md §4.2: "Removal system: detects
// despawned entities by diffing a stored position cache; runs
// periodically with a budget").
func (m *Maintenance) Remove(e ecs.Entity) {
	tile, ok := m.tracked[e]
	if !ok {
		return
	}
	m.index.Remove(e, tile)
	delete(m.tracked, e)
}

// RemoveStale scans up to removalBudget tracked entities per call,
// started once every removalInterval ticks, and drops any that no
// longer exist in the world. Each call checks the first removalBudget
// entries of the sorted tracked set; entries beyond the budget are not
// checked by any call.
func (m *Maintenance) RemoveStale(w *ecs.World, tick uint64) int {
	m.tickCounter = tick
	if m.removalInterval > 0 && tick%uint64(m.removalInterval) != 0 {
		return 0
	}
	// m.tracked is a map; iterate a sorted snapshot of its keys so which
	// entities fall inside the budget is reproducible across runs
	// (spec.md §8 Determinism).
	pending := make([]ecs.Entity, 0, len(m.tracked))
	for e := range m.tracked {
		pending = append(pending, e)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].String() < pending[j].String()
	})

	removed := 0
	checked := 0
	for _, e := range pending {
		if checked >= m.removalBudget {
			break
		}
		checked++
		if !w.Alive(e) {
			m.Remove(e)
			removed++
		}
	}
	return removed
}

// TrackedTile returns the last tile this maintenance instance recorded
// for e.
func (m *Maintenance) TrackedTile(e ecs.Entity) (worldmap.Tile, bool) {
	t, ok := m.tracked[e]
	return t, ok
}

// Reparent migrates up to reparentBudget moved entities into a
// per-chunk parent entity each tick (spec.md §4.2). moved is the set of
// entities whose tile changed this tick — the same change-detection
// filter the Move pass already computed, so Reparent never rescans
// stationary entities.
func (m *Maintenance) Reparent(moved []ecs.Entity) int {
	n := len(moved)
	if n > m.reparentBudget {
		n = m.reparentBudget
	}
	for i := 0; i < n; i++ {
		e := moved[i]
		tile, ok := m.tracked[e]
		if !ok {
			continue
		}
		chunk := worldmap.ChunkOf(tile)
		leader, ok := m.chunkLeader[chunk]
		if !ok {
			m.chunkLeader[chunk] = e
			m.parentMap.Remove(e)
			continue
		}
		if leader == e {
			continue
		}
		m.parentMap.Add(e, &ChunkParent{Parent: leader, Chunk: chunk})
	}
	return n
}
