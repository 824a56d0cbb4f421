package relations

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
)

// Lineage tracks ParentOf/ChildOf and cleans up on parent despawn.
type Lineage struct {
	parentMap *ecs.Map[components.ParentOf]
	childMap  *ecs.Map[components.ChildOf]
}

// NewLineage builds the parent-child relationship registry.
func NewLineage(w *ecs.World) *Lineage {
	return &Lineage{
		parentMap: ecs.NewMap[components.ParentOf](w),
		childMap:  ecs.NewMap[components.ChildOf](w),
	}
}

// RecordBirth links a newborn to its parent, creating the parent's
// ParentOf component if this is its first child.
func (l *Lineage) RecordBirth(parent, child ecs.Entity, tick uint64) {
	l.childMap.Add(child, &components.ChildOf{Parent: parent, BornTick: tick})
	if l.parentMap.Has(parent) {
		po := l.parentMap.Get(parent)
		po.Children = append(po.Children, child)
		return
	}
	l.parentMap.Add(parent, &components.ParentOf{Children: []ecs.Entity{child}, FirstBirthTick: tick})
}

// CleanupStale removes ChildOf components whose parent has despawned:
// the child remains, now adopted by no parent (spec.md §4.9).
func (l *Lineage) CleanupStale(w *ecs.World, children []ecs.Entity) {
	for _, c := range children {
		if !l.childMap.Has(c) {
			continue
		}
		if !w.Alive(l.childMap.Get(c).Parent) {
			l.childMap.Remove(c)
		}
	}
}

// ParentOf returns the parent of an entity, if tracked.
func (l *Lineage) ParentOf(e ecs.Entity) (ecs.Entity, bool) {
	if !l.childMap.Has(e) {
		return ecs.Entity{}, false
	}
	return l.childMap.Get(e).Parent, true
}
