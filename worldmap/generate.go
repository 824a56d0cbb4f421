package worldmap

import "math"

// perlinNoise generates coherent 2D/3D noise, ported from the teacher's
// systems/noise.go (the same permutation-table Perlin implementation the
// teacher used to carve its sea floor and floating islands), adapted here
// to drive elevation and moisture bands instead of rendering geometry.
type perlinNoise struct {
	perm [512]int
}

func newPerlinNoise(rng prng) *perlinNoise {
	p := &perlinNoise{}

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}
	return p
}

func (p *perlinNoise) noise3D(x, y, z float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)

	u := fade(x)
	v := fade(y)
	w := fade(z)

	a := p.perm[X] + Y
	aa := p.perm[a] + Z
	ab := p.perm[a+1] + Z
	b := p.perm[X+1] + Y
	ba := p.perm[b] + Z
	bb := p.perm[b+1] + Z

	return lerp(w, lerp(v, lerp(u, grad3D(p.perm[aa], x, y, z),
		grad3D(p.perm[ba], x-1, y, z)),
		lerp(u, grad3D(p.perm[ab], x, y-1, z),
			grad3D(p.perm[bb], x-1, y-1, z))),
		lerp(v, lerp(u, grad3D(p.perm[aa+1], x, y, z-1),
			grad3D(p.perm[ba+1], x-1, y, z-1)),
			lerp(u, grad3D(p.perm[ab+1], x, y-1, z-1),
				grad3D(p.perm[bb+1], x-1, y-1, z-1))))
}

func (p *perlinNoise) noise2D(x, y float64) float64 { return p.noise3D(x, y, 0) }

// octaves sums successively higher-frequency, lower-amplitude samples of
// the same noise field, the standard fractal-Brownian-motion refinement
// the teacher's single-octave Noise2D calls leave to its callers (the
// teacher layers separate noise calls per terrain feature instead; here
// one octave stack produces both an elevation and a moisture field).
func (p *perlinNoise) octaves(x, y float64, count int, persistence float64) float64 {
	var total, amplitude, maxAmplitude float64
	amplitude = 1
	frequency := 1.0
	for i := 0; i < count; i++ {
		total += p.noise2D(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxAmplitude
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(t, a, b float64) float64 { return a + t*(b-a) }

func grad3D(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// prng is the minimal interface perlinNoise needs from math/rand.Rand,
// kept narrow so the generator does not import math/rand directly and
// instead takes whatever seeded source its caller already built.
type prng interface {
	Intn(n int) int
}

// Generator produces terrain chunks by banding two independent octaved
// Perlin noise fields — elevation and moisture — into the eleven
// TerrainKind values, grounded on the teacher's layered terrain passes
// (sea floor, floating islands, coral outcrops in systems/terrain.go)
// but replacing its rendering-geometry output with the core's discrete
// per-tile TerrainKind grid.
type Generator struct {
	elevation *perlinNoise
	moisture  *perlinNoise
	scale     float64
}

// NewGenerator builds a deterministic terrain generator from a seed. The
// same seed always produces the same terrain, satisfying spec.md §8's
// determinism requirement for anything that feeds simulation state.
func NewGenerator(rng prng) *Generator {
	return &Generator{
		// Drawing both permutation tables from the same seeded source,
		// one after the other, keeps the whole generator deterministic
		// from a single upstream seed while still giving elevation and
		// moisture independent-looking fields.
		elevation: newPerlinNoise(rng),
		moisture:  newPerlinNoise(rng),
		scale:     0.05,
	}
}

// GenerateChunk produces one fully-populated chunk at coord. Elevation
// bands select water/beach/highland/mountain; within the mid-elevation
// band, moisture further splits grass/forest/swamp/desert, mirroring the
// teacher's practice of composing multiple independent noise samples per
// tile rather than a single lookup table.
func (g *Generator) GenerateChunk(coord ChunkCoord, seed int64) *Chunk {
	c := NewChunk(coord, Grass, seed)
	origin := coord.origin()
	for ly := int32(0); ly < ChunkSize; ly++ {
		for lx := int32(0); lx < ChunkSize; lx++ {
			t := Tile{X: origin.X + lx, Y: origin.Y + ly}
			elev := g.elevation.octaves(float64(t.X)*g.scale, float64(t.Y)*g.scale, 4, 0.5)
			moist := g.moisture.octaves(float64(t.X)*g.scale+1000, float64(t.Y)*g.scale+1000, 3, 0.5)
			c.Set(t, bandTerrain(elev, moist))
		}
	}
	c.ClearDirty()
	return c
}

// bandTerrain maps an (elevation, moisture) pair, both roughly in
// [-1, 1], to a single terrain kind.
func bandTerrain(elev, moist float64) TerrainKind {
	switch {
	case elev < -0.45:
		return DeepWater
	case elev < -0.2:
		return ShallowWater
	case elev < -0.1:
		return Sand
	case elev > 0.55:
		return Snow
	case elev > 0.4:
		return Mountain
	case elev > 0.25:
		return Stone
	}

	switch {
	case moist < -0.3:
		return Desert
	case moist < 0.0:
		return Dirt
	case moist < 0.35:
		return Grass
	case moist < 0.6:
		return Forest
	default:
		return Swamp
	}
}

// GenerateRadius fills every chunk within a square radius of the origin
// chunk into m, the minimal "populate a playable area" helper a headless
// entry point needs before spawning a population (spec.md §6 World
// input: an externally supplied, already-generated map).
func GenerateRadius(m *Map, g *Generator, radius int32) {
	for cy := -radius; cy <= radius; cy++ {
		for cx := -radius; cx <= radius; cx++ {
			coord := ChunkCoord{X: cx, Y: cy}
			m.PutChunk(g.GenerateChunk(coord, m.Seed()))
		}
	}
}
