// Package scoring compares parsed replay phases against reference
// build benchmarks and turns the deviations into a graded score.
package scoring

import (
	"math"
	"sort"

	"sc2-coach/internal/domain"
)

// ComparePhase measures how one phase of a game deviated from its
// benchmark. It is a pure function: zero-value snapshots and
// benchmarks are legal inputs, and repeated calls with the same
// arguments produce identical output, including slice order.
func ComparePhase(phase domain.Phase, snap domain.PhaseSnapshot, bench domain.PhaseBenchmark) domain.PhaseDiff {
	diff := domain.PhaseDiff{
		Phase:              phase,
		WorkerDiff:         snap.WorkerCount - bench.WorkerCount,
		BaseDiff:           snap.BaseCount - bench.BaseCount,
		GasBuildingDiff:    snap.GasBuildingCount - bench.GasBuildingCount,
		ArmySupplyDiff:     snap.ArmySupply - bench.ArmySupply,
		SupplyBlockPenalty: supplyBlockPenalty(snap.SupplyBlockCount, snap.SupplyBlockSeconds),
	}

	// A unit is missing only when it was never produced at all.
	// Producing fewer than the build wanted shows up in the supply
	// diff instead.
	for unit := range bench.KeyUnits {
		if snap.UnitsProduced[unit] <= 0 {
			diff.MissingUnits = append(diff.MissingUnits, unit)
		}
	}
	for unit, count := range snap.UnitsProduced {
		if count > 0 {
			if _, ok := bench.KeyUnits[unit]; !ok {
				diff.ExtraUnits = append(diff.ExtraUnits, unit)
			}
		}
	}

	built := builtStructures(snap)
	keyBuildings := toSet(bench.KeyBuildings)
	for _, name := range bench.KeyBuildings {
		if !built[name] {
			diff.MissingBuildings = append(diff.MissingBuildings, name)
		}
	}
	for name := range built {
		if !keyBuildings[name] {
			diff.ExtraBuildings = append(diff.ExtraBuildings, name)
		}
	}

	// An upgrade still researching counts as satisfied; the player
	// committed the resources even if it finished after the phase cut.
	haveUpgrades := toSet(snap.UpgradesCompleted)
	for _, name := range snap.UpgradesInProgress {
		haveUpgrades[name] = true
	}
	keyUpgrades := toSet(bench.KeyUpgrades)
	for _, name := range bench.KeyUpgrades {
		if !haveUpgrades[name] {
			diff.MissingUpgrades = append(diff.MissingUpgrades, name)
		}
	}
	for _, name := range snap.UpgradesCompleted {
		if !keyUpgrades[name] {
			diff.ExtraUpgrades = append(diff.ExtraUpgrades, name)
		}
	}

	sort.Strings(diff.MissingUnits)
	sort.Strings(diff.ExtraUnits)
	sort.Strings(diff.MissingBuildings)
	sort.Strings(diff.ExtraBuildings)
	sort.Strings(diff.MissingUpgrades)
	sort.Strings(diff.ExtraUpgrades)

	return diff
}

// AllPhaseDiffs compares every game phase against the build. The
// result always has one entry per phase in chronological order, never
// in map iteration order. Phases absent from either side are compared
// as zero values.
func AllPhaseDiffs(phases map[domain.Phase]domain.PhaseSnapshot, build domain.ReferenceBuild) []domain.PhaseDiff {
	order := domain.PhaseOrder()
	diffs := make([]domain.PhaseDiff, 0, len(order))
	for _, phase := range order {
		diffs = append(diffs, ComparePhase(phase, phases[phase], build.Phases[phase]))
	}
	return diffs
}

// supplyBlockPenalty converts time spent supply blocked into score
// points: a flat cost per block plus a cost per blocked second,
// clamped to [0, 100]. No blocks means no penalty.
func supplyBlockPenalty(count int, seconds float64) float64 {
	if count <= 0 && seconds <= 0 {
		return 0
	}
	penalty := float64(count)*SupplyBlockFlatPenalty + seconds*SupplyBlockPerSecondPenalty
	return math.Max(MinScore, math.Min(MaxScore, penalty))
}

// builtStructures returns every structure standing or in production,
// tech and production buildings alike.
func builtStructures(snap domain.PhaseSnapshot) map[string]bool {
	set := make(map[string]bool, len(snap.ProductionBuildings)+len(snap.TechBuildings))
	for name, count := range snap.ProductionBuildings {
		if count > 0 {
			set[name] = true
		}
	}
	for _, name := range snap.TechBuildings {
		set[name] = true
	}
	return set
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
