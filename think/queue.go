// Package think implements the think queue and its reactive trigger
// emitters (spec.md §4.6).
package think

import "github.com/mlange-42/ark/ecs"

// Priority is the three-level think priority, declared in drain order.
type Priority int

const (
	Urgent Priority = iota
	Normal
	Low
)

// Reason is the closed set of think triggers (spec.md §4.6).
type Reason string

const (
	ReasonFearTriggered   Reason = "fear_triggered"
	ReasonHungerCritical  Reason = "hunger_critical"
	ReasonHungerModerate  Reason = "hunger_moderate"
	ReasonThirstCritical  Reason = "thirst_critical"
	ReasonThirstModerate  Reason = "thirst_moderate"
	ReasonEnergyCritical  Reason = "energy_critical"
	ReasonEnergyLow       Reason = "energy_low"
	ReasonActionCompleted Reason = "action_completed"
	ReasonIdle            Reason = "idle"
)

type dedupKey struct {
	Entity ecs.Entity
	Reason Reason
}

// Entry is a single queued think request.
type Entry struct {
	Entity   ecs.Entity
	Reason   Reason
	Priority Priority
	Tick     uint64
}

// Queue is the three-priority think queue with per-(entity,reason)
// dedup (spec.md §4.6, §8 Queue dedup).
type Queue struct {
	classes [3][]Entry
	seen    map[dedupKey]bool
}

// NewQueue builds an empty think queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[dedupKey]bool)}
}

// Push enqueues a think request unless an identical (entity,reason)
// entry is already pending.
func (q *Queue) Push(entity ecs.Entity, reason Reason, priority Priority, tick uint64) bool {
	key := dedupKey{Entity: entity, Reason: reason}
	if q.seen[key] {
		return false
	}
	q.seen[key] = true
	q.classes[priority] = append(q.classes[priority], Entry{Entity: entity, Reason: reason, Priority: priority, Tick: tick})
	return true
}

// Drain pops up to budget entries, Urgent first then Normal then Low,
// clearing their dedup entries (spec.md §4.6 Drain order).
func (q *Queue) Drain(budget int) []Entry {
	var out []Entry
	for class := Urgent; class <= Low && len(out) < budget; class++ {
		bucket := q.classes[class]
		take := budget - len(out)
		if take > len(bucket) {
			take = len(bucket)
		}
		for _, e := range bucket[:take] {
			delete(q.seen, dedupKey{Entity: e.Entity, Reason: e.Reason})
		}
		out = append(out, bucket[:take]...)
		q.classes[class] = bucket[take:]
	}
	return out
}

// Depths returns the pending count per priority class.
func (q *Queue) Depths() (urgent, normal, low int) {
	return len(q.classes[Urgent]), len(q.classes[Normal]), len(q.classes[Low])
}
