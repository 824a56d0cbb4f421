package pathqueue

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/pathing"
	"github.com/briarlock/ecotick/worldmap"
)

func newTestEntity(w *ecs.World) ecs.Entity {
	mapper := components.NewCoreMapper(w)
	return mapper.NewEntity(
		&components.TilePosition{},
		&components.SpeciesInfo{},
		&components.Stats{},
		&components.FearState{},
		&components.Movement{},
		&components.MovementProfile{},
		&components.ActionState{},
	)
}

func TestRequestDedup(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue(100, 0, nil)
	e := newTestEntity(w)

	id1 := q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{5, 0}, Normal, ReasonWander, 0)
	id2 := q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{5, 0}, Normal, ReasonWander, 0)
	if id1 != id2 {
		t.Fatalf("expected duplicate request to return the same id, got %d and %d", id1, id2)
	}
}

func TestDrainPriorityOrder(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue(100, 0, nil)
	e := newTestEntity(w)

	q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{1, 0}, Lazy, ReasonWander, 0)
	q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{2, 0}, Urgent, ReasonFlee, 0)
	q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{3, 0}, Normal, ReasonMovingToWater, 0)

	drained := q.Drain(3)
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained requests, got %d", len(drained))
	}
	if drained[0].Priority != Urgent || drained[1].Priority != Normal || drained[2].Priority != Lazy {
		t.Fatalf("expected Urgent, Normal, Lazy order, got %v %v %v",
			drained[0].Priority, drained[1].Priority, drained[2].Priority)
	}
}

func TestDrainRespectsBudget(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue(100, 0, nil)
	e := newTestEntity(w)
	for i := 0; i < 5; i++ {
		q.Request(e, worldmap.Tile{0, 0}, worldmap.Tile{int32(i + 1), 0}, Normal, ReasonWander, 0)
	}
	drained := q.Drain(2)
	if len(drained) != 2 {
		t.Fatalf("expected budget of 2 to cap drain, got %d", len(drained))
	}
	if u, n, l := q.Depths(); n != 3 || u != 0 || l != 0 {
		t.Fatalf("expected 3 remaining normal requests, got u=%d n=%d l=%d", u, n, l)
	}
}

func TestStoreResultClearsDedup(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue(100, 0, nil)
	e := newTestEntity(w)
	from, to := worldmap.Tile{0, 0}, worldmap.Tile{5, 0}

	id := q.Request(e, from, to, Normal, ReasonWander, 0)
	q.StoreResult(id, e, from, to, pathing.Result{}, 0)

	idAgain := q.Request(e, from, to, Normal, ReasonWander, 1)
	if idAgain == id {
		t.Fatal("expected a fresh request id once the previous result was stored and dedup cleared")
	}
}

func TestEvictAged(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue(10, 0, nil)
	e := newTestEntity(w)
	from, to := worldmap.Tile{0, 0}, worldmap.Tile{5, 0}

	id := q.Request(e, from, to, Normal, ReasonWander, 0)
	q.StoreResult(id, e, from, to, pathing.Result{}, 0)

	q.EvictAged(5)
	if _, ok := q.GetResult(id); !ok {
		t.Fatal("expected result to still be present within max age")
	}

	id2 := q.Request(e, from, to, Normal, ReasonWander, 0)
	q.StoreResult(id2, e, from, to, pathing.Result{}, 0)
	q.EvictAged(20)
	if _, ok := q.GetResult(id2); ok {
		t.Fatal("expected result evicted once older than max age")
	}
}
