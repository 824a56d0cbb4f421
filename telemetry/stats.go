package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/briarlock/ecotick/traits"
)

// WindowStats holds aggregated population/action/performance statistics
// for one telemetry window (spec.md §4.11, §6).
type WindowStats struct {
	WindowStartTick uint64 `csv:"-"`
	WindowEndTick   uint64 `csv:"window_end"`

	PopulationTotal int                      `csv:"population"`
	PopulationBy    map[traits.Species]int   `csv:"-"`

	Deaths          int                      `csv:"deaths"`
	DeathsBySpecies map[traits.Species]int   `csv:"-"`

	ActionsCompleted int            `csv:"actions_completed"`
	ActionCounts     map[string]int `csv:"-"`

	PathsCompleted int `csv:"paths_completed"`
	PathsFailed    int `csv:"paths_failed"`

	AvgTickUS      int64   `csv:"avg_tick_us"`
	TicksPerSecond float64 `csv:"ticks_per_sec"`

	QueueDepths map[string]int `csv:"-"`
}

// Percentile returns the p-th percentile (p in [0,1]) of an unsorted
// slice of samples, via gonum's quantile with the empirical CDF
// interpolation the teacher's stats helpers used a hand-rolled version
// of.
func Percentile(samples []float64, p float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// DistributionStats reports mean, standard deviation, and the p10/p50/p90
// percentiles of a sample set (e.g. per-species stat distributions for
// health monitoring).
func DistributionStats(samples []float64) (mean, stdDev, p10, p50, p90 float64) {
	n := len(samples)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}
	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	mean, stdDev = stat.MeanStdDev(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, stdDev, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Int("population", s.PopulationTotal),
		slog.Int("deaths", s.Deaths),
		slog.Int("actions_completed", s.ActionsCompleted),
		slog.Int("paths_completed", s.PathsCompleted),
		slog.Int("paths_failed", s.PathsFailed),
		slog.Int64("avg_tick_us", s.AvgTickUS),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	)
}

// LogStats logs the window stats using slog, including the per-species
// and per-action breakdowns the flat CSV row omits.
func (s WindowStats) LogStats() {
	bySpecies := make(map[string]int, len(s.PopulationBy))
	for sp, n := range s.PopulationBy {
		bySpecies[sp.String()] = n
	}
	slog.Info("telemetry",
		"window_end", s.WindowEndTick,
		"population", s.PopulationTotal,
		"population_by_species", bySpecies,
		"deaths", s.Deaths,
		"actions_completed", s.ActionsCompleted,
		"action_counts", s.ActionCounts,
		"paths_completed", s.PathsCompleted,
		"paths_failed", s.PathsFailed,
		"avg_tick_us", s.AvgTickUS,
		"ticks_per_sec", s.TicksPerSecond,
		"queue_depths", s.QueueDepths,
	)
}
