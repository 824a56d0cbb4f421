package think

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		HungerCritical: 0.8, HungerModerate: 0.5,
		ThirstCritical: 0.8, ThirstModerate: 0.5,
		EnergyCritical: 0.1, EnergyLow: 0.3,
		IdleTicks: 50, IdleCheckPeriod: 20,
	}
}

func TestFearTriggerFiresOnTransition(t *testing.T) {
	w := ecs.NewWorld()
	em := NewEmitter(defaultThresholds())
	q := NewQueue()
	e := newTestEntity(w)

	em.CheckFear(q, e, components.FearState{Fearful: false}, 0)
	if u, _, _ := q.Depths(); u != 0 {
		t.Fatal("expected no urgent entry while not fearful")
	}
	em.CheckFear(q, e, components.FearState{Fearful: true}, 1)
	if u, _, _ := q.Depths(); u != 1 {
		t.Fatalf("expected one urgent FearTriggered entry, got %d", u)
	}
	// Staying fearful should not re-fire.
	em.CheckFear(q, e, components.FearState{Fearful: true}, 2)
	q.Drain(10)
	em.CheckFear(q, e, components.FearState{Fearful: true}, 3)
	if u, _, _ := q.Depths(); u != 0 {
		t.Fatal("expected no re-fire while fear state unchanged")
	}
}

func TestHungerCriticalVsModerate(t *testing.T) {
	w := ecs.NewWorld()
	em := NewEmitter(defaultThresholds())
	q := NewQueue()
	e := newTestEntity(w)

	em.CheckStats(q, e, components.Stats{Hunger: 0.6}, 0)
	u, n, _ := q.Depths()
	if n != 1 || u != 0 {
		t.Fatalf("expected moderate hunger to push Normal, got u=%d n=%d", u, n)
	}

	q.Drain(10)
	em.CheckStats(q, e, components.Stats{Hunger: 0.9}, 1)
	u, _, _ = q.Depths()
	if u != 1 {
		t.Fatalf("expected critical hunger to push Urgent, got u=%d", u)
	}
}

func TestEnergyInvertedThresholds(t *testing.T) {
	w := ecs.NewWorld()
	em := NewEmitter(defaultThresholds())
	q := NewQueue()
	e := newTestEntity(w)

	em.CheckStats(q, e, components.Stats{Energy: 0.05}, 0)
	u, _, _ := q.Depths()
	if u != 1 {
		t.Fatalf("expected energy at 0.05 (below 0.1 critical) to push Urgent, got u=%d", u)
	}
}

func TestIdleRespectsCheckPeriodAndThreshold(t *testing.T) {
	w := ecs.NewWorld()
	em := NewEmitter(defaultThresholds())
	q := NewQueue()
	e := newTestEntity(w)

	tile := [2]int32{0, 0}
	em.CheckIdle(q, e, tile, 0) // establishes baseline
	em.CheckIdle(q, e, tile, 20)
	em.CheckIdle(q, e, tile, 40)
	if _, _, l := q.Depths(); l != 0 {
		t.Fatalf("expected no idle trigger before 50 ticks stationary, got %d", l)
	}
	em.CheckIdle(q, e, tile, 60)
	if _, _, l := q.Depths(); l != 1 {
		t.Fatalf("expected idle trigger once stationary for >= 50 ticks, got %d", l)
	}
}
