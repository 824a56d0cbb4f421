package pathqueue

import (
	"github.com/briarlock/ecotick/pathing"
)

// Processor drains the queue once per tick, invokes A* for each
// request, and stores results — the pathfinding-queue processing
// system of spec.md §4.4.
type Processor struct {
	queue  *Queue
	astar  *pathing.AStar
	cache  *pathing.Cache
	budget int
}

// NewProcessor wires a queue to an A* planner and path cache.
func NewProcessor(queue *Queue, astar *pathing.AStar, cache *pathing.Cache, budget int) *Processor {
	if budget <= 0 {
		budget = 40
	}
	return &Processor{queue: queue, astar: astar, cache: cache, budget: budget}
}

// Run drains up to the per-tick budget, resolving each request from
// the path cache when possible and falling back to a fresh A* search,
// storing every result and evicting aged ones (spec.md §4.4).
func (p *Processor) Run(tick uint64) int {
	requests := p.queue.Drain(p.budget)
	for _, req := range requests {
		key := pathing.CacheKey{From: req.From, To: req.To}
		result, ok := p.cache.Get(key, tick)
		if !ok {
			result = p.astar.Find(req.From, req.To)
			p.cache.Put(key, result, tick)
		}
		p.queue.StoreResult(req.ID, req.Entity, req.From, req.To, result, tick)
	}
	p.queue.EvictAged(tick)
	p.queue.LogObservability(tick, len(requests))
	return len(requests)
}
