package planner

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/relations"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/think"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/vegetation"
	"github.com/briarlock/ecotick/worldmap"
)

// Planner turns drained think.Entry values into an ActionState
// transition by assembling Inputs from live subsystem state and
// running Score/Select (spec.md §4.6). It owns no action-execution
// logic itself; that lives in Executor, matching the teacher's split
// between decision systems and actuation systems (systems/behavior.go
// vs systems/movement.go).
type Planner struct {
	ecsWorld *ecs.World

	actMap   *ecs.Map1[components.ActionState]
	statsMap *ecs.Map1[components.Stats]
	fearMap  *ecs.Map1[components.FearState]
	specMap  *ecs.Map1[components.SpeciesInfo]
	posMap   *ecs.Map1[components.TilePosition]

	index   *spatial.Index
	veg     *vegetation.Grid
	terrain *worldmap.Map
	groups  *relations.Groups
	mating  *relations.Mating

	executor *Executor

	searchRadius    int32
	fleeThreshold   float32
	fleeBaseUtility float32
}

// Config bundles the planner's tunable inputs (spec.md §9 defaults).
type Config struct {
	SearchRadius    int32
	FleeThreshold   float32
	FleeBaseUtility float32
}

// New builds a Planner over an ark world and its collaborating
// subsystems.
func New(w *ecs.World, index *spatial.Index, veg *vegetation.Grid, world *worldmap.Map, groups *relations.Groups, mating *relations.Mating, executor *Executor, cfg Config) *Planner {
	return &Planner{
		ecsWorld:        w,
		actMap:          ecs.NewMap1[components.ActionState](w),
		statsMap:        ecs.NewMap1[components.Stats](w),
		fearMap:         ecs.NewMap1[components.FearState](w),
		specMap:         ecs.NewMap1[components.SpeciesInfo](w),
		posMap:          ecs.NewMap1[components.TilePosition](w),
		index:           index,
		veg:             veg,
		terrain:         world,
		groups:          groups,
		mating:          mating,
		executor:        executor,
		searchRadius:    cfg.SearchRadius,
		fleeThreshold:   cfg.FleeThreshold,
		fleeBaseUtility: cfg.FleeBaseUtility,
	}
}

// Process plans each entity named by a drained batch of think entries,
// deduplicating repeated entities within the same tick (spec.md §4.6:
// a batch may contain several reasons for the same entity).
func (p *Planner) Process(entries []think.Entry, tick uint64) {
	planned := make(map[ecs.Entity]bool, len(entries))
	for _, entry := range entries {
		if planned[entry.Entity] {
			continue
		}
		planned[entry.Entity] = true
		p.Plan(entry.Entity, tick)
	}
}

// Plan scores every candidate action for e and preempts its current
// action if the selection changed or the prior action concluded
// (spec.md §4.6).
func (p *Planner) Plan(e ecs.Entity, tick uint64) {
	if !p.ecsWorld.Alive(e) {
		return
	}
	spec := p.specMap.Get(e)
	caps := traits.CapabilitiesOf(spec.Class)
	stats := *p.statsMap.Get(e)
	fear := *p.fearMap.Get(e)
	tile := p.posMap.Get(e).Tile

	herbivore := traits.Herbivore
	hasPreyNear := caps.Has(traits.CanHunt) && len(p.index.EntitiesInRadius(tile, p.searchRadius, &herbivore)) > 0
	hasWaterNear := p.hasWaterNear(tile)
	hasFoodNear := caps.Has(traits.CanGraze) && len(p.veg.SampleBiomass(tile, p.searchRadius, 0.1)) > 0
	hasPartnerNear := p.hasPartnerNear(e, tile, spec.Class)

	hunt, grazeRest, flee := p.groups.BonusesFor(e)

	in := Inputs{
		Stats:           stats,
		Fear:            fear,
		CanGraze:        caps.Has(traits.CanGraze),
		CanDrink:        caps.Has(traits.CanDrink),
		CanHunt:         caps.Has(traits.CanHunt),
		CanFlee:         caps.Has(traits.CanFlee),
		HasPreyNear:     hasPreyNear,
		HasWaterNear:    hasWaterNear,
		HasFoodNear:     hasFoodNear,
		HasPartnerNear:  hasPartnerNear,
		PredatorsNear:   fear.Predators > 0,
		FleeThreshold:   p.fleeThreshold,
		FleeBaseUtility: p.fleeBaseUtility,
		Bonuses:         Bonuses{Hunt: hunt, GrazeRest: grazeRest, Flee: flee},
		CurrentAction:   p.actMap.Get(e).Current,
	}

	scores := Score(in)
	selected := Select(scores, e)

	as := p.actMap.Get(e)
	concluded := as.Phase == components.PhaseSuccess || as.Phase == components.PhaseFailure
	if selected != as.Current || concluded {
		p.executor.Begin(e, selected)
	}
}

func (p *Planner) hasWaterNear(tile worldmap.Tile) bool {
	for dy := -p.searchRadius; dy <= p.searchRadius; dy++ {
		for dx := -p.searchRadius; dx <= p.searchRadius; dx++ {
			if p.terrain.TerrainAt(tile.Add(dx, dy)) == worldmap.ShallowWater {
				return true
			}
		}
	}
	return false
}

func (p *Planner) hasPartnerNear(e ecs.Entity, tile worldmap.Tile, class traits.Class) bool {
	candidates := p.index.EntitiesInRadius(tile, p.searchRadius, &class)
	for _, occ := range candidates {
		if occ.Entity == e {
			continue
		}
		if _, busy := p.mating.PartnerOf(occ.Entity); busy {
			continue
		}
		if _, busy := p.mating.CourtedBy(occ.Entity); busy {
			continue
		}
		return true
	}
	return false
}
