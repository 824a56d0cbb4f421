package pathing

import (
	"testing"

	"github.com/briarlock/ecotick/worldmap"
)

func openMap(w, h int32) *worldmap.Map {
	m := worldmap.NewMap(1)
	for cy := int32(0); cy*worldmap.ChunkSize < h+worldmap.ChunkSize; cy++ {
		for cx := int32(0); cx*worldmap.ChunkSize < w+worldmap.ChunkSize; cx++ {
			m.PutChunk(worldmap.NewChunk(worldmap.ChunkCoord{X: cx, Y: cy}, worldmap.Grass, 1))
		}
	}
	return m
}

func TestAStarStraightLine(t *testing.T) {
	m := openMap(20, 20)
	g := NewGrid(m, false)
	a := NewAStar(g, 0)

	res := a.Find(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 5, Y: 0})
	if !res.Ok() {
		t.Fatalf("expected success, got failure %v", res.Failure)
	}
	if len(res.Path) != 5 {
		t.Fatalf("expected path length 5, got %d: %v", len(res.Path), res.Path)
	}
	if res.Path[len(res.Path)-1] != (worldmap.Tile{X: 5, Y: 0}) {
		t.Fatalf("path should end at goal, got %v", res.Path[len(res.Path)-1])
	}
	for i := 1; i < len(res.Path); i++ {
		if res.Path[i].ManhattanDistance(res.Path[i-1]) != 1 {
			t.Fatalf("non-adjacent step between %v and %v", res.Path[i-1], res.Path[i])
		}
	}
}

func TestAStarAdjacentGoalLengthOne(t *testing.T) {
	m := openMap(10, 10)
	g := NewGrid(m, false)
	a := NewAStar(g, 0)

	res := a.Find(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 1, Y: 0})
	if !res.Ok() || len(res.Path) != 1 {
		t.Fatalf("expected single-step path, got %+v", res)
	}
}

func TestAStarInvalidEndpoints(t *testing.T) {
	m := worldmap.NewMap(1)
	m.PutChunk(worldmap.NewChunk(worldmap.ChunkCoord{0, 0}, worldmap.Grass, 1))
	g := NewGrid(m, false)
	a := NewAStar(g, 0)

	res := a.Find(worldmap.Tile{X: 100, Y: 100}, worldmap.Tile{X: 5, Y: 5})
	if res.Failure != InvalidStart {
		t.Fatalf("expected InvalidStart, got %v", res.Failure)
	}

	res = a.Find(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 100, Y: 100})
	if res.Failure != InvalidGoal {
		t.Fatalf("expected InvalidGoal, got %v", res.Failure)
	}
}

func TestAStarUnreachable(t *testing.T) {
	m := worldmap.NewMap(1)
	c := worldmap.NewChunk(worldmap.ChunkCoord{0, 0}, worldmap.Grass, 1)
	for y := int32(0); y < worldmap.ChunkSize; y++ {
		c.Set(worldmap.Tile{X: 5, Y: y}, worldmap.DeepWater)
	}
	m.PutChunk(c)
	g := NewGrid(m, false)
	a := NewAStar(g, 0)

	res := a.Find(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 10, Y: 0})
	if res.Failure != Unreachable {
		t.Fatalf("expected Unreachable behind a full wall, got %+v", res)
	}
}

func TestAStarStepLimitTimeout(t *testing.T) {
	m := openMap(200, 200)
	g := NewGrid(m, false)
	a := NewAStar(g, 5)

	res := a.Find(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 190, Y: 190})
	if res.Failure != Timeout {
		t.Fatalf("expected Timeout with a tiny step limit, got %+v", res)
	}
}

func TestAStarReuseAcrossCalls(t *testing.T) {
	m := openMap(20, 20)
	g := NewGrid(m, false)
	a := NewAStar(g, 0)

	r1 := a.Find(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 3, Y: 0})
	r2 := a.Find(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 0, Y: 3})
	if !r1.Ok() || !r2.Ok() {
		t.Fatalf("expected both reused searches to succeed: %+v %+v", r1, r2)
	}
	if len(r1.Path) != 3 || len(r2.Path) != 3 {
		t.Fatalf("unexpected path lengths: %d %d", len(r1.Path), len(r2.Path))
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewCache(4, 10)
	key := CacheKey{From: worldmap.Tile{0, 0}, To: worldmap.Tile{5, 0}}
	c.Put(key, Result{Cost: 5}, 0)

	if _, ok := c.Get(key, 5); !ok {
		t.Fatal("expected cache hit within TTL")
	}
	if _, ok := c.Get(key, 11); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2, 1000)
	k1 := CacheKey{From: worldmap.Tile{0, 0}, To: worldmap.Tile{1, 0}}
	k2 := CacheKey{From: worldmap.Tile{0, 0}, To: worldmap.Tile{2, 0}}
	k3 := CacheKey{From: worldmap.Tile{0, 0}, To: worldmap.Tile{3, 0}}

	c.Put(k1, Result{}, 0)
	c.Put(k2, Result{}, 0)
	c.Put(k3, Result{}, 0)

	if c.Len() != 2 {
		t.Fatalf("expected capacity-bounded length 2, got %d", c.Len())
	}
	if _, ok := c.Get(k1, 0); ok {
		t.Fatal("expected oldest entry evicted")
	}
}
