package spatial

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

func TestMaintenanceInsertAndMove(t *testing.T) {
	w := ecs.NewWorld()
	idx := NewIndex()
	m := NewMaintenance(w, idx, 50, 100, 10)

	e := newTestEntity(w)
	m.Insert(e, worldmap.Tile{X: 0, Y: 0}, traits.Herbivore)
	if len(idx.Bucket(worldmap.ChunkCoord{0, 0})) != 1 {
		t.Fatal("expected entity inserted into chunk (0,0)")
	}

	m.Move(e, worldmap.Tile{X: 20, Y: 0}, traits.Herbivore)
	if len(idx.Bucket(worldmap.ChunkCoord{0, 0})) != 0 {
		t.Fatal("expected entity removed from old chunk after move")
	}
	if len(idx.Bucket(worldmap.ChunkCoord{1, 0})) != 1 {
		t.Fatal("expected entity present in new chunk after move")
	}
}

func TestMaintenanceMoveNoopSameTile(t *testing.T) {
	w := ecs.NewWorld()
	idx := NewIndex()
	m := NewMaintenance(w, idx, 50, 100, 10)

	e := newTestEntity(w)
	m.Insert(e, worldmap.Tile{X: 3, Y: 3}, traits.Herbivore)
	m.Move(e, worldmap.Tile{X: 3, Y: 3}, traits.Herbivore)

	if len(idx.Bucket(worldmap.ChunkCoord{0, 0})) != 1 {
		t.Fatal("expected a no-op move to leave the bucket untouched")
	}
}

func TestMaintenanceRemove(t *testing.T) {
	w := ecs.NewWorld()
	idx := NewIndex()
	m := NewMaintenance(w, idx, 50, 100, 10)

	e := newTestEntity(w)
	m.Insert(e, worldmap.Tile{X: 1, Y: 1}, traits.Predator)
	m.Remove(e)

	if _, ok := m.TrackedTile(e); ok {
		t.Fatal("expected entity untracked after remove")
	}
	if len(idx.Bucket(worldmap.ChunkCoord{0, 0})) != 0 {
		t.Fatal("expected bucket emptied after remove")
	}
}

func TestReparentBudget(t *testing.T) {
	w := ecs.NewWorld()
	idx := NewIndex()
	m := NewMaintenance(w, idx, 2, 100, 10)

	var moved []ecs.Entity
	for i := 0; i < 5; i++ {
		e := newTestEntity(w)
		m.Insert(e, worldmap.Tile{X: int32(i), Y: 0}, traits.Herbivore)
		moved = append(moved, e)
	}

	n := m.Reparent(moved)
	if n != 2 {
		t.Fatalf("expected reparent budget of 2 to cap processed count, got %d", n)
	}
}

func TestRemoveStaleRespectsInterval(t *testing.T) {
	w := ecs.NewWorld()
	idx := NewIndex()
	m := NewMaintenance(w, idx, 50, 100, 10)

	e := newTestEntity(w)
	m.Insert(e, worldmap.Tile{X: 0, Y: 0}, traits.Herbivore)
	w.RemoveEntity(e)

	removed := m.RemoveStale(w, 3)
	if removed != 0 {
		t.Fatalf("expected no-op off the removal interval, got %d removed", removed)
	}
	removed = m.RemoveStale(w, 10)
	if removed != 1 {
		t.Fatalf("expected one stale entity removed on the interval tick, got %d", removed)
	}
}
