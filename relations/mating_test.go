package relations

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/worldmap"
)

func TestMatingEstablishAndPartnerOf(t *testing.T) {
	w := ecs.NewWorld()
	m := NewMating(w)
	a, b := newTestEntity(w), newTestEntity(w)
	meet := worldmap.Tile{X: 5, Y: 5}

	m.Establish(a, b, meet, 10, 30)

	mate, ok := m.PartnerOf(a)
	if !ok || mate.Partner != b || mate.MeetingTile != meet {
		t.Fatalf("expected a courting b at %v, got %+v %v", meet, mate, ok)
	}
	target, ok := m.CourtedBy(b)
	if !ok || target.Partner != a {
		t.Fatalf("expected b courted by a, got %+v %v", target, ok)
	}
}

func TestMatingCleanupStaleOnDeadline(t *testing.T) {
	w := ecs.NewWorld()
	m := NewMating(w)
	a, b := newTestEntity(w), newTestEntity(w)
	m.Establish(a, b, worldmap.Tile{}, 0, 10)

	m.CleanupStale(w, []ecs.Entity{a}, 11)

	if _, ok := m.PartnerOf(a); ok {
		t.Fatal("expected mating pair cleared past deadline")
	}
	if _, ok := m.CourtedBy(b); ok {
		t.Fatal("expected courted side cleared past deadline")
	}
}

func TestMatingCleanupStaleOnPartnerDespawn(t *testing.T) {
	w := ecs.NewWorld()
	m := NewMating(w)
	a, b := newTestEntity(w), newTestEntity(w)
	m.Establish(a, b, worldmap.Tile{}, 0, 1000)

	w.RemoveEntity(b)
	m.CleanupStale(w, []ecs.Entity{a}, 1)

	if _, ok := m.PartnerOf(a); ok {
		t.Fatal("expected mating pair cleared after partner despawn")
	}
}

func TestMidpointTile(t *testing.T) {
	got := MidpointTile(worldmap.Tile{X: 0, Y: 0}, worldmap.Tile{X: 4, Y: 10})
	want := worldmap.Tile{X: 2, Y: 5}
	if got != want {
		t.Fatalf("expected midpoint %v, got %v", want, got)
	}
}
