// Package pathing implements the A* search over the terrain-derived
// movement grid and a path-result cache (spec.md §4.3).
package pathing

import "github.com/briarlock/ecotick/worldmap"

// Grid is a read-only view over a worldmap.Map for pathfinding purposes.
// Per spec.md §5, the pathfinding grid is read-only during a tick and is
// never rebuilt mid-simulation.
type Grid struct {
	m          *worldmap.Map
	connect8   bool
}

// NewGrid wraps a world map for A* queries. connect8 selects 8-connected
// movement with an octile heuristic instead of the 4-connected default.
func NewGrid(m *worldmap.Map, connect8 bool) *Grid {
	return &Grid{m: m, connect8: connect8}
}

// Passable reports whether a tile may be entered.
func (g *Grid) Passable(t worldmap.Tile) bool { return g.m.Passable(t) }

// Cost returns the per-tile entry cost of t.
func (g *Grid) Cost(t worldmap.Tile) int { return g.m.MovementCost(t) }

// neighbors4 are the 4-connected offsets, declared in a fixed order so
// tie-breaking among equal-f nodes is deterministic across runs.
var neighbors4 = [4][2]int32{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// neighbors8 adds the four diagonals, ordered after the cardinal four.
var neighbors8 = [8][2]int32{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

// Neighbors returns the passable neighbor tiles of t in declared order.
// A diagonal move is excluded when either of the two orthogonal tiles
// it passes between is impassable.
func (g *Grid) Neighbors(t worldmap.Tile) []worldmap.Tile {
	var offsets [][2]int32
	if g.connect8 {
		offsets = neighbors8[:]
	} else {
		offsets = neighbors4[:]
	}
	out := make([]worldmap.Tile, 0, len(offsets))
	for _, o := range offsets {
		n := t.Add(o[0], o[1])
		if !g.m.Passable(n) {
			continue
		}
		if g.connect8 && o[0] != 0 && o[1] != 0 {
			corner1 := t.Add(o[0], 0)
			corner2 := t.Add(0, o[1])
			if !g.m.Passable(corner1) || !g.m.Passable(corner2) {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// StepCost returns the cost of moving from a to its neighbor b (the
// entry cost of b).
func (g *Grid) StepCost(a, b worldmap.Tile) int {
	_ = a
	return g.Cost(b)
}
