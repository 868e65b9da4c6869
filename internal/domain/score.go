package domain

// PhaseDiff is the comparison of one phase snapshot against its
// benchmark. Count diffs are signed: negative means behind the
// benchmark, positive means ahead.
type PhaseDiff struct {
	Phase              Phase    `json:"phase"`
	WorkerDiff         int      `json:"worker_diff"`
	BaseDiff           int      `json:"base_diff"`
	GasBuildingDiff    int      `json:"gas_building_diff"`
	ArmySupplyDiff     int      `json:"army_supply_diff"`
	MissingUnits       []string `json:"missing_units"`
	ExtraUnits         []string `json:"extra_units"`
	MissingBuildings   []string `json:"missing_buildings"`
	ExtraBuildings     []string `json:"extra_buildings"`
	MissingUpgrades    []string `json:"missing_upgrades"`
	ExtraUpgrades      []string `json:"extra_upgrades"`
	SupplyBlockPenalty float64  `json:"supply_block_penalty"`
}

type ExecutionScore struct {
	Total      float64 `json:"total"`
	Economy    float64 `json:"economy"`
	Army       float64 `json:"army"`
	Tech       float64 `json:"tech"`
	Efficiency float64 `json:"efficiency"`
	Grade      Grade   `json:"grade"`
}

type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)
