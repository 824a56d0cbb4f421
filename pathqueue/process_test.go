package pathqueue

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/pathing"
	"github.com/briarlock/ecotick/worldmap"
)

func openMap(size int32) *worldmap.Map {
	m := worldmap.NewMap(1)
	chunks := (size / worldmap.ChunkSize) + 1
	for cy := int32(0); cy <= chunks; cy++ {
		for cx := int32(0); cx <= chunks; cx++ {
			m.PutChunk(worldmap.NewChunk(worldmap.ChunkCoord{X: cx, Y: cy}, worldmap.Grass, 1))
		}
	}
	return m
}

func TestProcessorResolvesRequests(t *testing.T) {
	w := ecs.NewWorld()
	e := newTestEntity(w)

	m := openMap(20)
	grid := pathing.NewGrid(m, false)
	astar := pathing.NewAStar(grid, 0)
	cache := pathing.NewCache(16, 200)
	q := NewQueue(100, 0, nil)
	proc := NewProcessor(q, astar, cache, 40)

	id := q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{5, 0}, Normal, ReasonWander, 0)
	processed := proc.Run(0)
	if processed != 1 {
		t.Fatalf("expected 1 request processed, got %d", processed)
	}

	result, ok := q.GetResult(id)
	if !ok {
		t.Fatal("expected a stored result for the processed request")
	}
	if !result.Ok() || len(result.Path) != 5 {
		t.Fatalf("expected a 5-step path, got %+v", result)
	}
}

func TestProcessorUsesCacheOnSecondRequest(t *testing.T) {
	w := ecs.NewWorld()
	e := newTestEntity(w)

	m := openMap(20)
	grid := pathing.NewGrid(m, false)
	astar := pathing.NewAStar(grid, 0)
	cache := pathing.NewCache(16, 200)
	q := NewQueue(100, 0, nil)
	proc := NewProcessor(q, astar, cache, 40)

	id1 := q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{5, 0}, Normal, ReasonWander, 0)
	proc.Run(0)
	q.GetResult(id1)

	id2 := q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{5, 0}, Normal, ReasonWander, 1)
	proc.Run(1)
	result, ok := q.GetResult(id2)
	if !ok || !result.Ok() {
		t.Fatalf("expected cached result to resolve successfully, got %+v ok=%v", result, ok)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected a single cache entry reused, got %d", cache.Len())
	}
}

func TestProcessorRespectsBudget(t *testing.T) {
	w := ecs.NewWorld()
	e := newTestEntity(w)

	m := openMap(30)
	grid := pathing.NewGrid(m, false)
	astar := pathing.NewAStar(grid, 0)
	cache := pathing.NewCache(64, 200)
	q := NewQueue(100, 0, nil)
	proc := NewProcessor(q, astar, cache, 2)

	for i := 0; i < 5; i++ {
		q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{int32(i + 1), 0}, Normal, ReasonWander, 0)
	}
	processed := proc.Run(0)
	if processed != 2 {
		t.Fatalf("expected budget of 2 to bound processing, got %d", processed)
	}
}
