package vegetation

import (
	"testing"

	"github.com/briarlock/ecotick/worldmap"
)

func TestGrazeReducesBiomass(t *testing.T) {
	g := NewGrid(100, 10, 4, 50)
	tile := worldmap.Tile{X: 1, Y: 1}

	remaining := g.Graze(tile, 30, 0)
	if remaining != 70 {
		t.Fatalf("expected biomass 70 after grazing 30 of 100, got %v", remaining)
	}
}

func TestGrazeSchedulesRegrowthWhenDepleted(t *testing.T) {
	g := NewGrid(100, 10, 4, 50)
	tile := worldmap.Tile{X: 1, Y: 1}

	g.Graze(tile, 95, 0)
	if g.cells[tile].Biomass >= 10 {
		t.Fatalf("expected biomass below depletion threshold, got %v", g.cells[tile].Biomass)
	}
	if !g.cells[tile].Depleted {
		t.Fatal("expected cell marked depleted")
	}
	if g.scheduler.Len() != 1 {
		t.Fatalf("expected one scheduled regrowth event, got %d", g.scheduler.Len())
	}
}

func TestProcessRegrowthAdvancesAndReschedules(t *testing.T) {
	g := NewGrid(20, 10, 4, 5)
	tile := worldmap.Tile{X: 0, Y: 0}
	g.Graze(tile, 15, 0) // biomass=5, depleted, event at tick 5

	fired := g.ProcessRegrowth(5)
	if fired != 1 {
		t.Fatalf("expected one event fired, got %d", fired)
	}
	if g.Biomass(tile) != 9 {
		t.Fatalf("expected biomass 9 after one increment, got %v", g.Biomass(tile))
	}
	if g.scheduler.Len() != 1 {
		t.Fatalf("expected rescheduled event since still below capacity, got %d pending", g.scheduler.Len())
	}
}

func TestProcessRegrowthIdempotentSameTick(t *testing.T) {
	g := NewGrid(20, 10, 4, 5)
	tile := worldmap.Tile{X: 0, Y: 0}
	g.Graze(tile, 15, 0)

	g.ProcessRegrowth(5)
	before := g.Biomass(tile)
	fired := g.ProcessRegrowth(5)
	if fired != 0 {
		t.Fatalf("expected no events to fire twice in the same tick, got %d", fired)
	}
	if g.Biomass(tile) != before {
		t.Fatalf("expected biomass unchanged on redundant call, got %v vs %v", g.Biomass(tile), before)
	}
}

func TestProcessRegrowthMarksInertAtCapacity(t *testing.T) {
	g := NewGrid(10, 5, 4, 1)
	tile := worldmap.Tile{X: 0, Y: 0}
	g.Graze(tile, 9, 0) // biomass=1, below threshold 5

	g.ProcessRegrowth(1) // 1 -> 5, still below 10, reschedule
	g.ProcessRegrowth(2) // 5 -> 9
	g.ProcessRegrowth(3) // 9 -> 10 (capped), inert

	if g.Biomass(tile) != 10 {
		t.Fatalf("expected biomass capped at capacity 10, got %v", g.Biomass(tile))
	}
	if g.cells[tile].Depleted {
		t.Fatal("expected cell no longer depleted once back at capacity")
	}
	if g.scheduler.Len() != 0 {
		t.Fatalf("expected no further scheduled events once inert, got %d", g.scheduler.Len())
	}
}

func TestFindBestCellPrefersHigherUtility(t *testing.T) {
	g := NewGrid(100, 10, 4, 50)
	near := worldmap.Tile{X: 1, Y: 0}
	far := worldmap.Tile{X: 5, Y: 0}
	g.Graze(near, 50, 0) // biomass 50, close
	g.Graze(far, 5, 0)   // biomass 95, far

	best, _, ok := g.FindBestCell(worldmap.Tile{0, 0}, 10)
	if !ok {
		t.Fatal("expected a best cell to be found")
	}
	if best != far {
		t.Fatalf("expected far cell with higher biomass to win despite distance penalty, got %v", best)
	}
}

func TestSampleBiomassFiltersMin(t *testing.T) {
	g := NewGrid(100, 10, 4, 50)
	low := worldmap.Tile{X: 1, Y: 0}
	high := worldmap.Tile{X: 2, Y: 0}
	g.Graze(low, 90, 0)
	g.Graze(high, 10, 0)

	results := g.SampleBiomass(worldmap.Tile{0, 0}, 10, 50)
	if len(results) != 1 || results[0] != high {
		t.Fatalf("expected only the high-biomass cell, got %v", results)
	}
}

func TestUnallocatedCellReadsFullCapacity(t *testing.T) {
	g := NewGrid(50, 10, 4, 50)
	if g.Biomass(worldmap.Tile{99, 99}) != 50 {
		t.Fatal("expected unallocated cell to read as full capacity")
	}
}
