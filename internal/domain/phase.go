package domain

type Phase string

const (
	PhaseOpening Phase = "opening"
	PhaseEarly   Phase = "early"
	PhaseMid     Phase = "mid"
	PhaseLate    Phase = "late"
)

// PhaseOrder returns the chronological game phases. Every per-phase
// aggregate in the system is emitted in this order.
func PhaseOrder() [4]Phase {
	return [4]Phase{PhaseOpening, PhaseEarly, PhaseMid, PhaseLate}
}

// PhaseSnapshot is the observed state of one player at the end of a
// game phase, as extracted from a parsed replay.
type PhaseSnapshot struct {
	WorkerCount         int            `json:"worker_count"`
	BaseCount           int            `json:"base_count"`
	GasBuildingCount    int            `json:"gas_building_count"`
	ArmySupply          int            `json:"army_supply"`
	UnitsProduced       map[string]int `json:"units_produced"`
	ProductionBuildings map[string]int `json:"production_buildings"`
	TechBuildings       []string       `json:"tech_buildings"`
	UpgradesCompleted   []string       `json:"upgrades_completed"`
	UpgradesInProgress  []string       `json:"upgrades_in_progress"`
	SupplyBlockCount    int            `json:"supply_block_count"`
	SupplyBlockSeconds  float64        `json:"supply_block_seconds"`
}

// PhaseBenchmark is what a reference build expects at the end of a
// phase. Key lists name the units/buildings/upgrades the build is
// built around, not everything a player might produce.
type PhaseBenchmark struct {
	WorkerCount      int            `json:"worker_count"`
	BaseCount        int            `json:"base_count"`
	GasBuildingCount int            `json:"gas_building_count"`
	ArmySupply       int            `json:"army_supply"`
	KeyUnits         map[string]int `json:"key_units"`
	KeyBuildings     []string       `json:"key_buildings"`
	KeyUpgrades      []string       `json:"key_upgrades"`
}

type ReferenceBuild struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Race        string                   `json:"race"`
	Matchup     string                   `json:"matchup"`
	Fingerprint string                   `json:"fingerprint"`
	Description string                   `json:"description"`
	Phases      map[Phase]PhaseBenchmark `json:"phases"`
}
