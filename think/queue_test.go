package think

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
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

func TestPushDedup(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue()
	e := newTestEntity(w)

	if !q.Push(e, ReasonIdle, Low, 0) {
		t.Fatal("expected first push to succeed")
	}
	if q.Push(e, ReasonIdle, Low, 1) {
		t.Fatal("expected duplicate (entity,reason) push to be rejected")
	}
}

func TestDrainPriorityOrder(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue()
	e := newTestEntity(w)

	q.Push(e, ReasonIdle, Low, 0)
	q.Push(e, ReasonFearTriggered, Urgent, 0)
	q.Push(e, ReasonActionCompleted, Normal, 0)

	drained := q.Drain(3)
	if len(drained) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(drained))
	}
	if drained[0].Priority != Urgent || drained[1].Priority != Normal || drained[2].Priority != Low {
		t.Fatalf("expected Urgent,Normal,Low order, got %v", drained)
	}
}

func TestDrainClearsDedup(t *testing.T) {
	w := ecs.NewWorld()
	q := NewQueue()
	e := newTestEntity(w)

	q.Push(e, ReasonIdle, Low, 0)
	q.Drain(10)
	if !q.Push(e, ReasonIdle, Low, 5) {
		t.Fatal("expected push to succeed again after drain cleared the dedup entry")
	}
}
