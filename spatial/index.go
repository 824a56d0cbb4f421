// Package spatial implements the chunk-bucketed entity index and its
// incremental maintenance systems (spec.md §4.2).
package spatial

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

// Occupant pairs an entity with its class, the value stored in each
// chunk bucket.
type Occupant struct {
	Entity ecs.Entity
	Class  traits.Class
}

// Index is a chunk-bucketed mapping from chunk coordinate to the list
// of entities whose tile position lies in that chunk (spec.md §4.2).
type Index struct {
	buckets map[worldmap.ChunkCoord][]Occupant
	tileOf  map[ecs.Entity]worldmap.Tile
}

// NewIndex builds an empty spatial index.
func NewIndex() *Index {
	return &Index{
		buckets: make(map[worldmap.ChunkCoord][]Occupant),
		tileOf:  make(map[ecs.Entity]worldmap.Tile),
	}
}

// Insert appends an entity to its tile's chunk bucket. O(1) amortized.
func (idx *Index) Insert(e ecs.Entity, tile worldmap.Tile, class traits.Class) {
	c := worldmap.ChunkOf(tile)
	idx.buckets[c] = append(idx.buckets[c], Occupant{Entity: e, Class: class})
	idx.tileOf[e] = tile
}

// Remove drops an entity from the bucket holding tile. O(bucket size).
// Empty buckets are dropped from the map entirely.
func (idx *Index) Remove(e ecs.Entity, tile worldmap.Tile) {
	c := worldmap.ChunkOf(tile)
	bucket := idx.buckets[c]
	for i, occ := range bucket {
		if occ.Entity == e {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(idx.buckets, c)
	} else {
		idx.buckets[c] = bucket
	}
	delete(idx.tileOf, e)
}

// Update migrates an entity from oldTile's bucket to newTile's bucket
// when the chunk changes; a same-chunk move is a no-op write of the
// cached tile.
func (idx *Index) Update(e ecs.Entity, oldTile, newTile worldmap.Tile, class traits.Class) {
	if worldmap.ChunkOf(oldTile) == worldmap.ChunkOf(newTile) {
		idx.tileOf[e] = newTile
		return
	}
	idx.Remove(e, oldTile)
	idx.Insert(e, newTile, class)
}

// TileOf returns the last-known tile of e, if tracked.
func (idx *Index) TileOf(e ecs.Entity) (worldmap.Tile, bool) {
	t, ok := idx.tileOf[e]
	return t, ok
}

// Count returns the number of tracked entities.
func (idx *Index) Count() int { return len(idx.tileOf) }

// EntitiesInRadius returns (entity, class) pairs within Euclidean
// radius of center, optionally filtered to a single class. It iterates
// the chunk bounding box of radius (radius+15)/16 in integer division,
// i.e. ⌈radius/16⌉ chunks, and filters by
// exact squared distance (spec.md §4.2).
func (idx *Index) EntitiesInRadius(center worldmap.Tile, radius int32, classFilter *traits.Class) []Occupant {
	centerChunk := worldmap.ChunkOf(center)
	chunkRadius := (radius + worldmap.ChunkSize - 1) / worldmap.ChunkSize
	radiusSq := int64(radius) * int64(radius)

	var out []Occupant
	for dy := -chunkRadius; dy <= chunkRadius; dy++ {
		for dx := -chunkRadius; dx <= chunkRadius; dx++ {
			cc := worldmap.ChunkCoord{X: centerChunk.X + dx, Y: centerChunk.Y + dy}
			bucket, ok := idx.buckets[cc]
			if !ok {
				continue
			}
			for _, occ := range bucket {
				if classFilter != nil && occ.Class != *classFilter {
					continue
				}
				t := idx.tileOf[occ.Entity]
				ddx := int64(t.X - center.X)
				ddy := int64(t.Y - center.Y)
				if ddx*ddx+ddy*ddy <= radiusSq {
					out = append(out, occ)
				}
			}
		}
	}
	return out
}

// Bucket returns the occupants of a single chunk, for consistency
// checks and tests.
func (idx *Index) Bucket(c worldmap.ChunkCoord) []Occupant {
	return idx.buckets[c]
}
