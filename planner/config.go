package planner

import (
	"github.com/briarlock/ecotick/config"
	"github.com/briarlock/ecotick/traits"
)

// TunablesFromConfig builds the shared defaults plus a per-species
// overlay map from the loaded configuration, for use as NewExecutor's
// tunables/perSpecies arguments (spec.md §3 Behavior config, §9
// defaults).
func TunablesFromConfig(cfg *config.Config) (Tunables, map[traits.Species]Tunables) {
	base := DefaultTunables()
	base.MaxRetries = cfg.Think.MaxActionRetries

	perSpecies := make(map[traits.Species]Tunables, len(cfg.Species))
	for name, sc := range cfg.Species {
		species, ok := traits.ParseSpecies(name)
		if !ok {
			continue
		}
		perSpecies[species] = base.WithSpecies(SpeciesOverrides{
			WanderRadius:  int32(sc.WanderRadius),
			GrazeAmount:   sc.GrazeAmount,
			DrinkAmount:   sc.DrinkAmount,
			RestIncrement: sc.RestRate,
			HuntRange:     int32(sc.HuntStrikeRange),
			HuntDamage:    sc.HuntDamage,
			MateDeadline:  uint64(sc.MateDeadlineTicks),
		})
	}
	return base, perSpecies
}
