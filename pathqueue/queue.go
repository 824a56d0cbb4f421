// Package pathqueue implements the three-priority pathfinding request
// queue drained once per tick by the pathfinding processing system
// (spec.md §4.4).
package pathqueue

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/pathing"
	"github.com/briarlock/ecotick/worldmap"
)

// Priority is the closed set of request priority classes, declared in
// drain order.
type Priority int

const (
	Urgent Priority = iota
	Normal
	Lazy
)

func (p Priority) String() string {
	switch p {
	case Urgent:
		return "urgent"
	case Normal:
		return "normal"
	default:
		return "lazy"
	}
}

// Reason records why a path was requested, for observability and for
// the Movement Executor / actions to interpret the result.
type Reason string

const (
	ReasonWander          Reason = "wander"
	ReasonMovingToWater   Reason = "moving_to_water"
	ReasonMovingToFood    Reason = "moving_to_food"
	ReasonHuntChase       Reason = "hunt_chase"
	ReasonMateMeeting     Reason = "mate_meeting"
	ReasonFlee            Reason = "flee"
)

// RequestID uniquely identifies a path request.
type RequestID uint64

// Request is a single pending path computation.
type Request struct {
	ID       RequestID
	Entity   ecs.Entity
	From, To worldmap.Tile
	Priority Priority
	Reason   Reason
	Tick     uint64
}

type dedupKey struct {
	Entity   ecs.Entity
	From, To worldmap.Tile
}

// Queue is the three-class FIFO pathfinding request queue with
// dedup-by-(entity,from,to) and an age-bounded result store (spec.md
// §4.4).
type Queue struct {
	classes   [3][]Request
	dedup     map[dedupKey]RequestID
	results   map[RequestID]pathing.Result
	resultAge map[RequestID]uint64
	nextID    RequestID

	resultMaxAge uint64
	logInterval  int
	log          *slog.Logger
}

// NewQueue builds an empty pathfinding queue.
func NewQueue(resultMaxAge uint64, logInterval int, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		dedup:        make(map[dedupKey]RequestID),
		results:      make(map[RequestID]pathing.Result),
		resultAge:    make(map[RequestID]uint64),
		resultMaxAge: resultMaxAge,
		logInterval:  logInterval,
		log:          log,
	}
}

// Request enqueues a path request, returning the existing request id
// if an identical (entity,from,to) request is already pending (spec.md
// §4.4 dedup).
func (q *Queue) Request(entity ecs.Entity, from, to worldmap.Tile, priority Priority, reason Reason, tick uint64) RequestID {
	key := dedupKey{Entity: entity, From: from, To: to}
	if id, ok := q.dedup[key]; ok {
		return id
	}
	q.nextID++
	id := q.nextID
	req := Request{ID: id, Entity: entity, From: from, To: to, Priority: priority, Reason: reason, Tick: tick}
	q.classes[priority] = append(q.classes[priority], req)
	q.dedup[key] = id
	return id
}

// Drain pops up to budget requests, Urgent first, then Normal, then
// Lazy (spec.md §4.4).
func (q *Queue) Drain(budget int) []Request {
	var out []Request
	for class := Urgent; class <= Lazy && len(out) < budget; class++ {
		bucket := q.classes[class]
		take := budget - len(out)
		if take > len(bucket) {
			take = len(bucket)
		}
		out = append(out, bucket[:take]...)
		q.classes[class] = bucket[take:]
	}
	return out
}

// StoreResult stores a request's outcome and clears its dedup entry, so
// a future identical request is re-evaluated rather than returning a
// stale id (spec.md §4.4: "clears the dedup entry after result is
// stored").
func (q *Queue) StoreResult(id RequestID, entity ecs.Entity, from, to worldmap.Tile, result pathing.Result, tick uint64) {
	q.results[id] = result
	q.resultAge[id] = tick
	delete(q.dedup, dedupKey{Entity: entity, From: from, To: to})
}

// GetResult fetches and removes a stored result, if present.
func (q *Queue) GetResult(id RequestID) (pathing.Result, bool) {
	r, ok := q.results[id]
	if ok {
		delete(q.results, id)
		delete(q.resultAge, id)
	}
	return r, ok
}

// EvictAged drops stored results older than resultMaxAge ticks, to
// bound memory when a consumer never fetches a result (spec.md §4.4).
func (q *Queue) EvictAged(now uint64) int {
	evicted := 0
	for id, age := range q.resultAge {
		if now-age > q.resultMaxAge {
			delete(q.results, id)
			delete(q.resultAge, id)
			evicted++
		}
	}
	return evicted
}

// Depths returns the current pending count for each priority class.
func (q *Queue) Depths() (urgent, normal, lazy int) {
	return len(q.classes[Urgent]), len(q.classes[Normal]), len(q.classes[Lazy])
}

// LogObservability logs queue depths every logInterval ticks, if
// configured (spec.md §4.4 Observability).
func (q *Queue) LogObservability(tick uint64, processed int) {
	if q.logInterval <= 0 || tick%uint64(q.logInterval) != 0 {
		return
	}
	u, n, l := q.Depths()
	q.log.Info("pathqueue depths", "tick", tick, "urgent", u, "normal", n, "lazy", l, "processed", processed)
}
