package worldmap

// Chunk is a fixed 16x16 block of terrain, the unit of spatial bucketing
// (spec.md §3, §GLOSSARY).
type Chunk struct {
	Coord   ChunkCoord
	Terrain [ChunkSize * ChunkSize]TerrainKind
	Seed    int64
	dirty   bool
}

// NewChunk builds a chunk filled with a single terrain kind, as a
// reasonable default for generated or test chunks.
func NewChunk(coord ChunkCoord, fill TerrainKind, seed int64) *Chunk {
	c := &Chunk{Coord: coord, Seed: seed}
	for i := range c.Terrain {
		c.Terrain[i] = fill
	}
	return c
}

func localIdx(lx, ly int32) int { return int(ly)*ChunkSize + int(lx) }

// At returns the terrain kind at the given tile, which must lie within
// this chunk.
func (c *Chunk) At(t Tile) TerrainKind {
	lx, ly := t.LocalIndex()
	return c.Terrain[localIdx(lx, ly)]
}

// Set writes the terrain kind at the given tile and marks the chunk
// dirty. Simulation does not call this; it exists for world-editing
// extensions (spec.md §3: "Immutable during simulation unless world
// editing is introduced").
func (c *Chunk) Set(t Tile, kind TerrainKind) {
	lx, ly := t.LocalIndex()
	c.Terrain[localIdx(lx, ly)] = kind
	c.dirty = true
}

// Dirty reports whether Set has been called since the last ClearDirty.
func (c *Chunk) Dirty() bool { return c.dirty }

// ClearDirty resets the dirtiness flag.
func (c *Chunk) ClearDirty() { c.dirty = false }

// origin returns the tile coordinate of the chunk's (0,0) corner.
func (c ChunkCoord) origin() Tile {
	return Tile{X: c.X * ChunkSize, Y: c.Y * ChunkSize}
}
