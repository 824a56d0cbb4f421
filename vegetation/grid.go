// Package vegetation implements the sparse grazing-cell resource grid
// and its event-scheduled regrowth (spec.md §4.8).
package vegetation

import (
	"math"
	"sort"

	"github.com/briarlock/ecotick/worldmap"
)

// Cell is the per-tile grazing state. Cells are created lazily on first
// access rather than pre-allocated for the whole map (spec.md §4.8:
// "Sparse cell map per tile").
type Cell struct {
	Biomass   float32
	Depleted  bool
	LastTick  uint64
}

// Grid is the sparse, chunk-indexed vegetation resource grid.
type Grid struct {
	capacity           float32
	depletionThreshold float32
	regrowthIncrement  float32
	regrowthDelay      int

	cells     map[worldmap.Tile]*Cell
	byChunk   map[worldmap.ChunkCoord]map[worldmap.Tile]*Cell
	scheduler *EventScheduler
}

// NewGrid builds an empty vegetation grid with the given tunables
// (spec.md §9 defaults: capacity, depletion_threshold,
// regrowth_increment, regrowth_delay_ticks).
func NewGrid(capacity, depletionThreshold, regrowthIncrement float32, regrowthDelay int) *Grid {
	return &Grid{
		capacity:           capacity,
		depletionThreshold: depletionThreshold,
		regrowthIncrement:  regrowthIncrement,
		regrowthDelay:      regrowthDelay,
		cells:              make(map[worldmap.Tile]*Cell),
		byChunk:            make(map[worldmap.ChunkCoord]map[worldmap.Tile]*Cell),
		scheduler:          NewEventScheduler(),
	}
}

// cellAt returns the cell at t, creating one at full capacity if it
// does not yet exist.
func (g *Grid) cellAt(t worldmap.Tile) *Cell {
	if c, ok := g.cells[t]; ok {
		return c
	}
	c := &Cell{Biomass: g.capacity}
	g.cells[t] = c
	chunk := worldmap.ChunkOf(t)
	bucket, ok := g.byChunk[chunk]
	if !ok {
		bucket = make(map[worldmap.Tile]*Cell)
		g.byChunk[chunk] = bucket
	}
	bucket[t] = c
	return c
}

// Biomass returns the current biomass at t without creating a cell
// (unallocated tiles read as full capacity, matching the lazily-created
// default).
func (g *Grid) Biomass(t worldmap.Tile) float32 {
	if c, ok := g.cells[t]; ok {
		return c.Biomass
	}
	return g.capacity
}

// Capacity returns the grid's per-cell biomass ceiling.
func (g *Grid) Capacity() float32 { return g.capacity }

// Graze reduces biomass at t by amount, creating the cell if needed. If
// biomass falls below the depletion threshold, the cell is marked
// depleted and a regrowth event is scheduled at now + regrowth_delay
// (spec.md §4.8).
func (g *Grid) Graze(t worldmap.Tile, amount float32, now uint64) float32 {
	c := g.cellAt(t)
	c.Biomass -= amount
	if c.Biomass < 0 {
		c.Biomass = 0
	}
	c.LastTick = now
	if !c.Depleted && c.Biomass < g.depletionThreshold {
		c.Depleted = true
		g.scheduler.Schedule(now+uint64(g.regrowthDelay), t)
	}
	return c.Biomass
}

// ProcessRegrowth fires every event due at or before now, advancing
// each cell's biomass by regrowth_increment; cells still below
// capacity are rescheduled, cells at capacity are marked inert
// (spec.md §4.8). Running this twice in the same tick is a no-op the
// second time, since due events are consumed on firing (spec.md §8
// Regrowth idempotence).
func (g *Grid) ProcessRegrowth(now uint64) int {
	due := g.scheduler.PopDue(now)
	fired := 0
	for _, t := range due {
		c, ok := g.cells[t]
		if !ok {
			continue
		}
		c.Biomass += g.regrowthIncrement
		if c.Biomass >= g.capacity {
			c.Biomass = g.capacity
			c.Depleted = false
			// at capacity: inert, no reschedule
			continue
		}
		g.scheduler.Schedule(now+uint64(g.regrowthDelay), t)
		fired++
	}
	return fired
}

// Utility is the find_best_cell scoring function: biomass minus a
// distance penalty (spec.md §4.8).
func Utility(biomass float32, distance float64) float32 {
	return biomass - float32(distance)
}

// FindBestCell returns the tile with the highest utility within radius
// of center, or ok=false if no allocated cell qualifies. Candidate
// tiles are scanned in ascending X, then Y order, and among equal
// utilities the first one scanned wins.
func (g *Grid) FindBestCell(center worldmap.Tile, radius int32) (worldmap.Tile, float32, bool) {
	best := worldmap.Tile{}
	bestUtil := float32(-1 << 30)
	found := false

	for _, t := range g.cellsInRadius(center, radius) {
		c := g.cells[t]
		d := distance(center, t)
		u := Utility(c.Biomass, d)
		if !found || u > bestUtil {
			bestUtil = u
			best = t
			found = true
		}
	}
	return best, bestUtil, found
}

// SampleBiomass returns all allocated cells within radius whose biomass
// is at least minBiomass (spec.md §4.8).
func (g *Grid) SampleBiomass(center worldmap.Tile, radius int32, minBiomass float32) []worldmap.Tile {
	var out []worldmap.Tile
	for _, t := range g.cellsInRadius(center, radius) {
		if g.cells[t].Biomass >= minBiomass {
			out = append(out, t)
		}
	}
	return out
}

// cellsInRadius enumerates allocated-cell tiles within radius of
// center, iterating only chunks that intersect the bounding box
// (spec.md §4.2's chunk-radius bound, applied here to vegetation).
func (g *Grid) cellsInRadius(center worldmap.Tile, radius int32) []worldmap.Tile {
	centerChunk := worldmap.ChunkOf(center)
	chunkRadius := (radius + worldmap.ChunkSize - 1) / worldmap.ChunkSize
	radiusSq := int64(radius) * int64(radius)

	var out []worldmap.Tile
	for dy := -chunkRadius; dy <= chunkRadius; dy++ {
		for dx := -chunkRadius; dx <= chunkRadius; dx++ {
			cc := worldmap.ChunkCoord{X: centerChunk.X + dx, Y: centerChunk.Y + dy}
			bucket, ok := g.byChunk[cc]
			if !ok {
				continue
			}
			for t := range bucket {
				ddx := int64(t.X - center.X)
				ddy := int64(t.Y - center.Y)
				if ddx*ddx+ddy*ddy <= radiusSq {
					out = append(out, t)
				}
			}
		}
	}
	// Map iteration order is randomized; sort by tile coordinate so
	// tie-breaking in FindBestCell/SampleBiomass is reproducible across
	// runs (spec.md §4.8 Behavioral parity, §8 Determinism).
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

func distance(a, b worldmap.Tile) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
