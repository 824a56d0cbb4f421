package worldmap

// Map is the read-only handle the core consumes (spec.md §6 World
// input): a chunk store keyed by chunk coordinate, plus a recorded
// world seed. Terrain generation happens externally; Map never mutates
// a tile on the core's behalf.
type Map struct {
	chunks map[ChunkCoord]*Chunk
	seed   int64
}

// NewMap builds an empty map with the given world seed.
func NewMap(seed int64) *Map {
	return &Map{chunks: make(map[ChunkCoord]*Chunk), seed: seed}
}

// Seed returns the recorded world generation seed.
func (m *Map) Seed() int64 { return m.seed }

// PutChunk installs a chunk, indexed by its own coordinate. Used by the
// external world-generation collaborator to populate the map; the core
// never calls this during simulation.
func (m *Map) PutChunk(c *Chunk) {
	m.chunks[c.Coord] = c
}

// Chunk returns the chunk at coord, or nil if it has not been generated.
func (m *Map) Chunk(coord ChunkCoord) *Chunk {
	return m.chunks[coord]
}

// ChunkCount returns the number of generated chunks.
func (m *Map) ChunkCount() int { return len(m.chunks) }

// Chunks enumerates all generated chunk coordinates. Order is
// unspecified; callers requiring determinism must sort.
func (m *Map) Chunks() []ChunkCoord {
	coords := make([]ChunkCoord, 0, len(m.chunks))
	for c := range m.chunks {
		coords = append(coords, c)
	}
	return coords
}

// ChunksInRadius enumerates chunk coordinates intersecting the square
// bounding box of radius (in tiles) around center, using a chunk radius
// of (radius+15)/16 in integer division, i.e. ⌈radius/16⌉.
func (m *Map) ChunksInRadius(center Tile, radius int32) []ChunkCoord {
	cc := ChunkOf(center)
	chunkRadius := (radius + ChunkSize - 1) / ChunkSize
	var out []ChunkCoord
	for dy := -chunkRadius; dy <= chunkRadius; dy++ {
		for dx := -chunkRadius; dx <= chunkRadius; dx++ {
			coord := ChunkCoord{X: cc.X + dx, Y: cc.Y + dy}
			if _, ok := m.chunks[coord]; ok {
				out = append(out, coord)
			}
		}
	}
	return out
}

// TerrainAt returns the terrain kind at t. ungenerated tiles resolve to
// DeepWater (impassable), so missing chunks never open a shortcut.
func (m *Map) TerrainAt(t Tile) TerrainKind {
	c := m.chunks[ChunkOf(t)]
	if c == nil {
		return DeepWater
	}
	return c.At(t)
}

// Passable reports whether t may be entered.
func (m *Map) Passable(t Tile) bool {
	return m.TerrainAt(t).Passable()
}

// MovementCost returns the integer movement cost of entering t, or
// Impassable.
func (m *Map) MovementCost(t Tile) int {
	return m.TerrainAt(t).MovementCost()
}
