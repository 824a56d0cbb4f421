package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

// ActiveHunter marks a predator currently pursuing prey (spec.md §4.9).
type ActiveHunter struct {
	Prey      ecs.Entity
	SinceTick uint64
}

// HuntingTarget marks prey currently being hunted, the symmetric
// counterpart to ActiveHunter.
type HuntingTarget struct {
	Hunter    ecs.Entity
	SinceTick uint64
}

// ActiveMate marks an entity courting a partner, with a shared meeting
// tile (spec.md §4.9).
type ActiveMate struct {
	Partner      ecs.Entity
	MeetingTile  worldmap.Tile
	SinceTick    uint64
	DeadlineTick uint64
}

// MatingTarget is the symmetric counterpart to ActiveMate.
type MatingTarget struct {
	Partner      ecs.Entity
	MeetingTile  worldmap.Tile
	SinceTick    uint64
	DeadlineTick uint64
}

// GroupLeader marks the founding member of a formed group.
type GroupLeader struct {
	GroupType   traits.GroupType
	Members     []ecs.Entity
	FormedTick  uint64
}

// GroupMember marks a non-leader group participant.
type GroupMember struct {
	Leader    ecs.Entity
	GroupType traits.GroupType
}

// ParentOf records an entity's children (spec.md §4.9).
type ParentOf struct {
	Children       []ecs.Entity
	FirstBirthTick uint64
}

// ChildOf records an entity's parent and birth tick. When the parent
// despawns, this component is removed rather than kept pointing at a
// dead entity (spec.md §4.9: "children remain, adopted by 'no parent'").
type ChildOf struct {
	Parent   ecs.Entity
	BornTick uint64
}
