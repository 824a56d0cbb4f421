package pathing

import (
	"container/heap"

	"github.com/briarlock/ecotick/worldmap"
)

// FailureReason is the closed set of A* failure kinds (spec.md §4.3).
type FailureReason int

const (
	NoFailure FailureReason = iota
	Unreachable
	Timeout
	InvalidStart
	InvalidGoal
)

func (f FailureReason) String() string {
	switch f {
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case InvalidStart:
		return "invalid_start"
	case InvalidGoal:
		return "invalid_goal"
	default:
		return "none"
	}
}

// Result is the outcome of an A* search. On success, Path holds the
// sequence of tiles from start (exclusive) to goal (inclusive) and
// Failure is NoFailure.
type Result struct {
	Path    []worldmap.Tile
	Cost    int
	Failure FailureReason
}

// Ok reports whether the search succeeded.
func (r Result) Ok() bool { return r.Failure == NoFailure }

// node is a single open-set entry. insertOrder breaks heap ties so
// equal-f, equal-h nodes resolve deterministically in insertion order
// (spec.md §4.3: "ties broken by lower h then lower insertion counter").
type node struct {
	tile        worldmap.Tile
	f, g, h     int
	insertOrder int
	index       int
}

type openHeap []*node

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	return h[i].insertOrder < h[j].insertOrder
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// AStar is a reusable A* planner. Its internal maps are cleared and
// reused across calls to avoid per-search allocation churn, mirroring
// the teacher's planner reuse pattern.
type AStar struct {
	grid      *Grid
	stepLimit int

	openIndex map[worldmap.Tile]*node
	closed    map[worldmap.Tile]bool
	cameFrom  map[worldmap.Tile]worldmap.Tile
	gScore    map[worldmap.Tile]int
}

// NewAStar builds a planner over grid with the given search step limit
// (default 5000 per spec.md §4.3; 0 or negative means use the default).
func NewAStar(grid *Grid, stepLimit int) *AStar {
	if stepLimit <= 0 {
		stepLimit = 5000
	}
	return &AStar{
		grid:      grid,
		stepLimit: stepLimit,
		openIndex: make(map[worldmap.Tile]*node),
		closed:    make(map[worldmap.Tile]bool),
		cameFrom:  make(map[worldmap.Tile]worldmap.Tile),
		gScore:    make(map[worldmap.Tile]int),
	}
}

// heuristic returns the admissible distance estimate between a and b:
// Manhattan for 4-connected movement, octile for 8-connected.
func (a *AStar) heuristic(from, to worldmap.Tile) int {
	dx, dy := absI32(from.X-to.X), absI32(from.Y-to.Y)
	if !a.grid.connect8 {
		return int(dx + dy)
	}
	if dx > dy {
		return int((dx-dy)*1 + dy*1)
	}
	return int((dy-dx)*1 + dx*1)
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func (a *AStar) reset() {
	for k := range a.openIndex {
		delete(a.openIndex, k)
	}
	for k := range a.closed {
		delete(a.closed, k)
	}
	for k := range a.cameFrom {
		delete(a.cameFrom, k)
	}
	for k := range a.gScore {
		delete(a.gScore, k)
	}
}

// Find searches for a path from start to goal. Start is excluded from
// the returned path; goal is included.
func (a *AStar) Find(start, goal worldmap.Tile) Result {
	if !a.grid.Passable(start) {
		return Result{Failure: InvalidStart}
	}
	if !a.grid.Passable(goal) {
		return Result{Failure: InvalidGoal}
	}
	if start == goal {
		return Result{Path: nil, Cost: 0}
	}

	a.reset()
	oh := &openHeap{}
	heap.Init(oh)

	startNode := &node{tile: start, g: 0, h: a.heuristic(start, goal), insertOrder: 0}
	startNode.f = startNode.g + startNode.h
	heap.Push(oh, startNode)
	a.openIndex[start] = startNode
	a.gScore[start] = 0

	insertCounter := 1
	steps := 0

	for oh.Len() > 0 {
		steps++
		if steps > a.stepLimit {
			return Result{Failure: Timeout}
		}

		current := heap.Pop(oh).(*node)
		delete(a.openIndex, current.tile)
		if current.tile == goal {
			return a.reconstruct(current.tile, current.g)
		}
		a.closed[current.tile] = true

		for _, n := range a.grid.Neighbors(current.tile) {
			if a.closed[n] {
				continue
			}
			tentativeG := current.g + a.grid.StepCost(current.tile, n)
			if existingG, ok := a.gScore[n]; ok && tentativeG >= existingG {
				continue
			}
			a.gScore[n] = tentativeG
			a.cameFrom[n] = current.tile
			h := a.heuristic(n, goal)
			if existing, ok := a.openIndex[n]; ok {
				existing.g = tentativeG
				existing.f = tentativeG + h
				existing.insertOrder = insertCounter
				insertCounter++
				heap.Fix(oh, existing.index)
				continue
			}
			nn := &node{tile: n, g: tentativeG, h: h, f: tentativeG + h, insertOrder: insertCounter}
			insertCounter++
			heap.Push(oh, nn)
			a.openIndex[n] = nn
		}
	}
	return Result{Failure: Unreachable}
}

func (a *AStar) reconstruct(goal worldmap.Tile, cost int) Result {
	var path []worldmap.Tile
	cur := goal
	for {
		prev, ok := a.cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, cur)
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return Result{Path: path, Cost: cost}
}
