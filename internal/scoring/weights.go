package scoring

// Component weights for the overall execution score. Must sum to 1.0.
const (
	WeightEconomy    = 0.30
	WeightArmy       = 0.30
	WeightTech       = 0.20
	WeightEfficiency = 0.20
)

// Per-phase weights inside the economy component. A worker deficit in
// the opening compounds for the rest of the game, so earlier phases
// count for more. Must sum to 1.0.
const (
	EconomyWeightOpening = 0.35
	EconomyWeightEarly   = 0.30
	EconomyWeightMid     = 0.20
	EconomyWeightLate    = 0.15
)

// Economy penalties, in score points per missing item at phase end.
const (
	WorkerDeficitPenalty = 4.0
	BaseDeficitPenalty   = 12.0
	GasDeficitPenalty    = 6.0
)

// Army component split: matching the benchmark's army supply versus
// producing the units the build is named after.
const (
	ArmySupplyWeight  = 0.6
	ArmyKeyUnitWeight = 0.4
)

// Tech penalties, in score points per item the build called for that
// never appeared.
const (
	MissingBuildingPenalty = 25.0
	MissingUpgradePenalty  = 15.0
)

// Supply block penalty scaling. Each block costs a flat amount plus
// an amount per second spent blocked.
const (
	SupplyBlockFlatPenalty      = 8.0
	SupplyBlockPerSecondPenalty = 0.5
)

// Grade cutoffs, inclusive lower bounds on the total score.
const (
	GradeCutoffS = 95.0
	GradeCutoffA = 85.0
	GradeCutoffB = 75.0
	GradeCutoffC = 65.0
	GradeCutoffD = 50.0
)

// Score bounds. Every component and the total are clamped here.
const (
	MinScore = 0.0
	MaxScore = 100.0
)
