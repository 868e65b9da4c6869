package scoring

import (
	"math"

	"sc2-coach/internal/domain"
)

// ComputeExecutionScore grades a full game against a reference build.
// The total is a weighted blend of four components, each on a 0-100
// scale. A game that matches the build exactly in every phase scores
// 100.
func ComputeExecutionScore(phases map[domain.Phase]domain.PhaseSnapshot, build domain.ReferenceBuild) domain.ExecutionScore {
	diffs := AllPhaseDiffs(phases, build)

	economy := economyScore(diffs)
	army := armyScore(diffs, build)
	tech := techScore(diffs)
	efficiency := efficiencyScore(diffs)

	total := clampScore(economy*WeightEconomy +
		army*WeightArmy +
		tech*WeightTech +
		efficiency*WeightEfficiency)

	return domain.ExecutionScore{
		Total:      total,
		Economy:    economy,
		Army:       army,
		Tech:       tech,
		Efficiency: efficiency,
		Grade:      GradeForScore(total),
	}
}

// === Component 1: Economy (30%) ===
// Worker, base and gas deficits per phase, weighted toward the early
// game. Being ahead of the benchmark is never penalized.
func economyScore(diffs []domain.PhaseDiff) float64 {
	score := 0.0
	for _, d := range diffs {
		phaseScore := MaxScore -
			deficit(d.WorkerDiff)*WorkerDeficitPenalty -
			deficit(d.BaseDiff)*BaseDeficitPenalty -
			deficit(d.GasBuildingDiff)*GasDeficitPenalty
		score += clampScore(phaseScore) * economyPhaseWeight(d.Phase)
	}
	return clampScore(score)
}

// === Component 2: Army (30%) ===
// Supply shortfall and missing key units, scaled by what the build
// expected in each phase. A phase with no army expectations scores
// full marks.
func armyScore(diffs []domain.PhaseDiff, build domain.ReferenceBuild) float64 {
	score := 0.0
	for _, d := range diffs {
		bench := build.Phases[d.Phase]

		supplyPart := MaxScore
		if bench.ArmySupply > 0 {
			shortfall := deficit(d.ArmySupplyDiff) / float64(bench.ArmySupply)
			supplyPart = MaxScore * (1 - math.Min(1, shortfall))
		}

		unitPart := MaxScore
		if len(bench.KeyUnits) > 0 {
			missing := float64(len(d.MissingUnits)) / float64(len(bench.KeyUnits))
			unitPart = MaxScore * (1 - missing)
		}

		score += supplyPart*ArmySupplyWeight + unitPart*ArmyKeyUnitWeight
	}
	return clampScore(score / float64(len(diffs)))
}

// === Component 3: Tech (20%) ===
// Flat penalties per missing key building or upgrade, averaged across
// phases.
func techScore(diffs []domain.PhaseDiff) float64 {
	score := 0.0
	for _, d := range diffs {
		phaseScore := MaxScore -
			float64(len(d.MissingBuildings))*MissingBuildingPenalty -
			float64(len(d.MissingUpgrades))*MissingUpgradePenalty
		score += clampScore(phaseScore)
	}
	return clampScore(score / float64(len(diffs)))
}

// === Component 4: Efficiency (20%) ===
// What remains after the average supply-block penalty across phases.
func efficiencyScore(diffs []domain.PhaseDiff) float64 {
	penalty := 0.0
	for _, d := range diffs {
		penalty += d.SupplyBlockPenalty
	}
	return clampScore(MaxScore - penalty/float64(len(diffs)))
}

func economyPhaseWeight(phase domain.Phase) float64 {
	switch phase {
	case domain.PhaseOpening:
		return EconomyWeightOpening
	case domain.PhaseEarly:
		return EconomyWeightEarly
	case domain.PhaseMid:
		return EconomyWeightMid
	case domain.PhaseLate:
		return EconomyWeightLate
	}
	return 0
}

// deficit is how far behind the benchmark a signed diff is; being
// ahead contributes nothing.
func deficit(d int) float64 {
	if d < 0 {
		return float64(-d)
	}
	return 0
}

func clampScore(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}
