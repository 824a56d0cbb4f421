// Command ecotick runs the headless simulation core: it loads
// configuration, generates (or would otherwise receive) a terrain map,
// spawns an initial population, and drives the tick scheduler to
// completion or indefinitely, periodically logging status the way the
// teacher's own -headless flag does (pthm-soup main.go NewGameHeadless
// / the -log/-perf/-max-ticks flags), minus anything that needs a
// window: spec.md §1 places rendering and viewer clients out of scope
// for the core.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briarlock/ecotick/config"
	"github.com/briarlock/ecotick/engine"
	"github.com/briarlock/ecotick/traits"
	"github.com/briarlock/ecotick/worldmap"
)

var (
	configPath  = flag.String("config", "", "Path to a YAML config file overlaying the embedded defaults")
	outDir      = flag.String("out", "", "Directory to write telemetry/perf/alert CSVs (disabled if empty)")
	seed        = flag.Int64("seed", 42069, "World generation and simulation RNG seed")
	mapRadius   = flag.Int("map-radius", 4, "Chunks generated in each direction from the origin (16 tiles/chunk)")
	speed       = flag.Float64("speed", 1.0, "Initial tick-rate speed multiplier (0.5/1/2/3)")
	logInterval = flag.Int("log", 100, "Log a population/tick summary every N ticks (0 disables)")
	maxTicks    = flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = run forever)")
	population  = flag.String("population", "rabbit=20,deer=10,wolf=4,fox=4,raccoon=6,bear=2", "Comma-separated species=count initial spawn list")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		slog.Error("ecotick: fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	terrain := worldmap.NewMap(*seed)
	gen := worldmap.NewGenerator(rand.New(rand.NewSource(*seed)))
	worldmap.GenerateRadius(terrain, gen, int32(*mapRadius))

	w, err := engine.New(cfg, terrain, *outDir, *seed)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}
	defer w.Close()

	if err := spawnPopulation(w, *population); err != nil {
		return fmt.Errorf("spawning initial population: %w", err)
	}

	w.SetSpeed(*speed)

	tickDuration := time.Duration(float64(time.Second) / 10.0)
	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()

	for range ticker.C {
		w.Step()

		if *logInterval > 0 && w.Tick()%uint64(*logInterval) == 0 {
			status := w.SchedulerStatus()
			slog.Info("tick_summary",
				"tick", status.Tick,
				"population", w.Population(),
				"tps", int(status.Perf.TicksPerSecond),
				"paused", status.Paused,
			)
		}

		if *maxTicks > 0 && w.Tick() >= *maxTicks {
			return nil
		}
	}
	return nil
}

// spawnPopulation parses a "species=count,species=count" list and
// spawns each group at random passable tiles (engine.SpawnRandomPopulation).
func spawnPopulation(w *engine.World, spec string) error {
	groups, err := parsePopulation(spec)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if _, err := w.SpawnRandomPopulation(g.species, g.count); err != nil {
			return fmt.Errorf("spawning %s: %w", g.species, err)
		}
	}
	return nil
}

type speciesCount struct {
	species traits.Species
	count   int
}

func parsePopulation(spec string) ([]speciesCount, error) {
	var out []speciesCount
	if spec == "" {
		return out, nil
	}
	for _, part := range strings.Split(spec, ",") {
		name, countStr, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid population entry %q, expected species=count", part)
		}
		species, ok := traits.ParseSpecies(name)
		if !ok {
			return nil, fmt.Errorf("unknown species %q", name)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("invalid count %q for species %q: %w", countStr, name, err)
		}
		out = append(out, speciesCount{species: species, count: count})
	}
	return out, nil
}
