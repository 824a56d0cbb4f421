// Package engine composes the tick scheduler and every simulation
// subsystem into one root World, mirroring the teacher's Game struct
// (game/game.go) as the composition root but trimmed of rendering,
// input, and neural-brain fields (spec.md §2 System Overview, §4.1
// Tick Scheduler).
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/briarlock/ecotick/components"
	"github.com/briarlock/ecotick/config"
	"github.com/briarlock/ecotick/fear"
	"github.com/briarlock/ecotick/movement"
	"github.com/briarlock/ecotick/pathing"
	"github.com/briarlock/ecotick/pathqueue"
	"github.com/briarlock/ecotick/planner"
	"github.com/briarlock/ecotick/relations"
	"github.com/briarlock/ecotick/spatial"
	"github.com/briarlock/ecotick/telemetry"
	"github.com/briarlock/ecotick/think"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/vegetation"
	"github.com/briarlock/ecotick/worldmap"
)

// groupSweep is one (group type, formation class) pair the group
// formation pass sweeps every tick; derived once from the loaded
// species config rather than hard-coded, since the species roster is
// data, not code (spec.md §4.9).
type groupSweep struct {
	groupType traits.GroupType
	class     traits.Class
}

// World is the root simulation object: an ark world plus every
// collaborating subsystem, driven by Step (spec.md §2).
type World struct {
	ecsWorld *ecs.World
	cfg      *config.Config
	terrain  *worldmap.Map

	core   *components.CoreMapper
	filter *components.CoreFilter

	index *spatial.Index
	maint *spatial.Maintenance
	veg   *vegetation.Grid

	pgrid     *pathing.Grid
	astar     *pathing.AStar
	cache     *pathing.Cache
	pathQueue *pathqueue.Queue
	pathProc  *pathqueue.Processor

	thinkQueue *think.Queue
	triggers   *think.Emitter

	hunting *relations.Hunting
	mating  *relations.Mating
	lineage *relations.Lineage
	groups  *relations.Groups
	sweeps  []groupSweep

	fearSys  *fear.System
	executor *planner.Executor
	brain    *planner.Planner
	moveExec *movement.Executor

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	health    *telemetry.HealthChecker
	out       *telemetry.OutputManager

	posMap   *ecs.Map1[components.TilePosition]
	specMap  *ecs.Map1[components.SpeciesInfo]
	statsMap *ecs.Map1[components.Stats]
	fearMap  *ecs.Map1[components.FearState]
	movMap   *ecs.Map1[components.Movement]
	profMap  *ecs.Map1[components.MovementProfile]
	actMap   *ecs.Map1[components.ActionState]

	rng *rand.Rand

	tick        uint64
	speed       float64
	speedAccum  float64
	paused      bool
	pendingDone []ecs.Entity // entities whose action concluded last tick (spec.md §4.6 ActionCompleted trigger)

	log *slog.Logger
}

// New builds the composition root over a loaded config and an
// externally supplied terrain map (spec.md §6 World input). outDir
// enables CSV/YAML output when non-empty; pass "" to run without
// persisted output.
func New(cfg *config.Config, terrain *worldmap.Map, outDir string, seed int64) (*World, error) {
	w := ecs.NewWorld()

	index := spatial.NewIndex()
	maint := spatial.NewMaintenance(w, index, cfg.Spatial.ReparentBudget, cfg.Spatial.RemovalBudget, cfg.Spatial.RemovalInterval)
	veg := vegetation.NewGrid(cfg.Vegetation.Capacity, cfg.Vegetation.DepletionThreshold, cfg.Vegetation.RegrowthIncrement, cfg.Vegetation.RegrowthDelayTicks)

	pgrid := pathing.NewGrid(terrain, cfg.Pathing.Connectivity8)
	astar := pathing.NewAStar(pgrid, cfg.Pathing.StepLimit)
	cache := pathing.NewCache(cfg.Pathing.CacheCapacity, uint64(cfg.Pathing.CacheTTLTicks))
	pathQueue := pathqueue.NewQueue(uint64(cfg.PathQueue.ResultMaxAge), cfg.PathQueue.LogInterval, slog.Default())
	pathProc := pathqueue.NewProcessor(pathQueue, astar, cache, cfg.PathQueue.Budget)

	thinkQueue := think.NewQueue()
	triggers := think.NewEmitter(think.Thresholds{
		HungerCritical:  cfg.Think.HungerCritical,
		HungerModerate:  cfg.Think.HungerModerate,
		ThirstCritical:  cfg.Think.ThirstCritical,
		ThirstModerate:  cfg.Think.ThirstModerate,
		EnergyCritical:  cfg.Think.EnergyCritical,
		EnergyLow:       cfg.Think.EnergyLow,
		IdleTicks:       cfg.Think.IdleTicks,
		IdleCheckPeriod: cfg.Think.IdleCheckPeriod,
	})

	hunting := relations.NewHunting(w)
	mating := relations.NewMating(w)
	lineage := relations.NewLineage(w)
	groups := relations.NewGroups(w, index, cfg.Groups.CheckIntervalTicks)

	fearSys := fear.New(w, index, fear.Config{
		DetectionRadius: int32(cfg.Fear.DetectionRadius),
		StimulusPerPred: cfg.Fear.StimulusPerPred,
		DecayPerTick:    cfg.Fear.DecayPerTick,
		FleeThreshold:   cfg.Fear.FleeThreshold,
	})

	tunables, perSpecies := planner.TunablesFromConfig(cfg)
	tunables.FleeDistance = int32(cfg.Fear.FleeTargetRadius)
	for s, t := range perSpecies {
		t.FleeDistance = tunables.FleeDistance
		perSpecies[s] = t
	}
	executor := planner.NewExecutor(w, pathQueue, hunting, mating, index, veg, terrain, tunables, perSpecies, seed)

	// searchRadius reuses the fear detection radius as the general
	// "nearby" query radius for water/food/prey/partner lookups: spec.md
	// never names a distinct planner search radius, and fear detection
	// is already the core's "how far can this entity sense" tunable.
	brain := planner.New(w, index, veg, terrain, groups, mating, executor, planner.Config{
		SearchRadius:    int32(cfg.Fear.DetectionRadius),
		FleeThreshold:   cfg.Fear.FleeThreshold,
		FleeBaseUtility: cfg.Think.FleeBaseUtility,
	})

	moveExec := movement.NewExecutor(w, terrain, maint, defaultMaxStuckAttempts)

	perf := telemetry.NewPerfCollector(cfg.Scheduler.MetricsRingSize)
	collector := telemetry.NewCollector(cfg.Telemetry.WindowTicks)
	health := telemetry.NewHealthChecker(cfg.Health)

	var out *telemetry.OutputManager
	if outDir != "" {
		var err error
		out, err = telemetry.NewOutputManager(outDir)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		if err := out.WriteConfig(cfg); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	sweeps := groupSweepsFromConfig(cfg)

	world := &World{
		ecsWorld:   w,
		cfg:        cfg,
		terrain:    terrain,
		core:       components.NewCoreMapper(w),
		filter:     components.NewCoreFilter(w),
		index:      index,
		maint:      maint,
		veg:        veg,
		pgrid:      pgrid,
		astar:      astar,
		cache:      cache,
		pathQueue:  pathQueue,
		pathProc:   pathProc,
		thinkQueue: thinkQueue,
		triggers:   triggers,
		hunting:    hunting,
		mating:     mating,
		lineage:    lineage,
		groups:     groups,
		sweeps:     sweeps,
		fearSys:    fearSys,
		executor:   executor,
		brain:      brain,
		moveExec:   moveExec,
		perf:       perf,
		collector:  collector,
		health:     health,
		out:        out,
		posMap:     ecs.NewMap1[components.TilePosition](w),
		specMap:    ecs.NewMap1[components.SpeciesInfo](w),
		statsMap:   ecs.NewMap1[components.Stats](w),
		fearMap:    ecs.NewMap1[components.FearState](w),
		movMap:     ecs.NewMap1[components.Movement](w),
		profMap:    ecs.NewMap1[components.MovementProfile](w),
		actMap:     ecs.NewMap1[components.ActionState](w),
		rng:        rand.New(rand.NewSource(seed)),
		speed:      1.0,
		log:        slog.Default(),
	}
	return world, nil
}

const defaultMaxStuckAttempts = 3

// groupSweepsFromConfig derives the distinct (group type, class) pairs
// the group formation pass must sweep each tick from the loaded species
// roster (spec.md §4.9).
func groupSweepsFromConfig(cfg *config.Config) []groupSweep {
	seen := make(map[groupSweep]bool)
	var out []groupSweep
	for name, sc := range cfg.Species {
		if !sc.Group.Enabled {
			continue
		}
		species, ok := traits.ParseSpecies(name)
		if !ok {
			continue
		}
		gt := traits.ParseGroupType(sc.Group.GroupType)
		if gt == traits.NoGroup {
			continue
		}
		sw := groupSweep{groupType: gt, class: traits.ClassOf(species)}
		if !seen[sw] {
			seen[sw] = true
			out = append(out, sw)
		}
	}
	return out
}

// Close flushes and closes any open output files.
func (w *World) Close() error {
	return w.out.Close()
}
