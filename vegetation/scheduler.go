package vegetation

import (
	"container/heap"

	"github.com/briarlock/ecotick/worldmap"
)

// dueEvent is a single scheduled regrowth event, keyed by the tick it
// fires on.
type dueEvent struct {
	tick  uint64
	tile  worldmap.Tile
	index int
}

type eventHeap []*dueEvent

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].tick < h[j].tick }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *eventHeap) Push(x any) {
	e := x.(*dueEvent)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventScheduler is a due-tick min-heap of pending regrowth events
// (spec.md §4.8: "Regrowth events are stored in an event scheduler
// keyed by due tick").
type EventScheduler struct {
	heap eventHeap
}

// NewEventScheduler builds an empty scheduler.
func NewEventScheduler() *EventScheduler {
	s := &EventScheduler{}
	heap.Init(&s.heap)
	return s
}

// Schedule queues a regrowth event for tile at the given tick.
func (s *EventScheduler) Schedule(tick uint64, tile worldmap.Tile) {
	heap.Push(&s.heap, &dueEvent{tick: tick, tile: tile})
}

// PopDue removes and returns all tiles whose event tick is <= now. Each
// event is consumed exactly once, so a second call at the same now
// returns nothing further (spec.md §8 Regrowth idempotence).
func (s *EventScheduler) PopDue(now uint64) []worldmap.Tile {
	var due []worldmap.Tile
	for s.heap.Len() > 0 && s.heap[0].tick <= now {
		e := heap.Pop(&s.heap).(*dueEvent)
		due = append(due, e.tile)
	}
	return due
}

// Len returns the number of pending events.
func (s *EventScheduler) Len() int { return s.heap.Len() }
