package scoring

import (
	"reflect"
	"testing"

	"sc2-coach/internal/domain"
)

func TestComparePhaseCounts(t *testing.T) {
	tests := []struct {
		name       string
		snap       domain.PhaseSnapshot
		bench      domain.PhaseBenchmark
		wantWorker int
		wantBase   int
		wantGas    int
		wantSupply int
	}{
		{
			name:       "behind on workers",
			snap:       domain.PhaseSnapshot{WorkerCount: 15},
			bench:      domain.PhaseBenchmark{WorkerCount: 19},
			wantWorker: -4,
		},
		{
			name:       "ahead of the benchmark",
			snap:       domain.PhaseSnapshot{WorkerCount: 24, BaseCount: 3},
			bench:      domain.PhaseBenchmark{WorkerCount: 19, BaseCount: 2},
			wantWorker: 5,
			wantBase:   1,
		},
		{
			name:       "gas and army supply",
			snap:       domain.PhaseSnapshot{GasBuildingCount: 1, ArmySupply: 20},
			bench:      domain.PhaseBenchmark{GasBuildingCount: 2, ArmySupply: 35},
			wantGas:    -1,
			wantSupply: -15,
		},
		{
			name: "zero value inputs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComparePhase(domain.PhaseOpening, tt.snap, tt.bench)
			if got.WorkerDiff != tt.wantWorker {
				t.Errorf("WorkerDiff = %d, want %d", got.WorkerDiff, tt.wantWorker)
			}
			if got.BaseDiff != tt.wantBase {
				t.Errorf("BaseDiff = %d, want %d", got.BaseDiff, tt.wantBase)
			}
			if got.GasBuildingDiff != tt.wantGas {
				t.Errorf("GasBuildingDiff = %d, want %d", got.GasBuildingDiff, tt.wantGas)
			}
			if got.ArmySupplyDiff != tt.wantSupply {
				t.Errorf("ArmySupplyDiff = %d, want %d", got.ArmySupplyDiff, tt.wantSupply)
			}
			if got.Phase != domain.PhaseOpening {
				t.Errorf("Phase = %q, want %q", got.Phase, domain.PhaseOpening)
			}
		})
	}
}

func TestComparePhaseUnits(t *testing.T) {
	bench := domain.PhaseBenchmark{
		KeyUnits: map[string]int{"Marine": 16, "Medivac": 2},
	}

	tests := []struct {
		name        string
		produced    map[string]int
		wantMissing []string
		wantExtra   []string
	}{
		{
			name:        "nothing produced",
			produced:    nil,
			wantMissing: []string{"Marine", "Medivac"},
		},
		{
			name:     "low count is a diff not a missing unit",
			produced: map[string]int{"Marine": 4, "Medivac": 1},
		},
		{
			name:        "zero count counts as never produced",
			produced:    map[string]int{"Marine": 0, "Medivac": 2},
			wantMissing: []string{"Marine"},
		},
		{
			name:      "off-build units are extra",
			produced:  map[string]int{"Marine": 16, "Medivac": 2, "Hellion": 4},
			wantExtra: []string{"Hellion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComparePhase(domain.PhaseEarly, domain.PhaseSnapshot{UnitsProduced: tt.produced}, bench)
			if !reflect.DeepEqual(got.MissingUnits, tt.wantMissing) {
				t.Errorf("MissingUnits = %v, want %v", got.MissingUnits, tt.wantMissing)
			}
			if !reflect.DeepEqual(got.ExtraUnits, tt.wantExtra) {
				t.Errorf("ExtraUnits = %v, want %v", got.ExtraUnits, tt.wantExtra)
			}
		})
	}
}

func TestComparePhaseBuildings(t *testing.T) {
	bench := domain.PhaseBenchmark{
		KeyBuildings: []string{"Barracks", "EngineeringBay", "Factory"},
	}

	tests := []struct {
		name        string
		snap        domain.PhaseSnapshot
		wantMissing []string
		wantExtra   []string
	}{
		{
			name: "production and tech structures both satisfy",
			snap: domain.PhaseSnapshot{
				ProductionBuildings: map[string]int{"Barracks": 3, "Factory": 1},
				TechBuildings:       []string{"EngineeringBay"},
			},
		},
		{
			name: "unbuilt key buildings are missing",
			snap: domain.PhaseSnapshot{
				ProductionBuildings: map[string]int{"Barracks": 1},
			},
			wantMissing: []string{"EngineeringBay", "Factory"},
		},
		{
			name: "zero count does not satisfy",
			snap: domain.PhaseSnapshot{
				ProductionBuildings: map[string]int{"Barracks": 0, "Factory": 1},
				TechBuildings:       []string{"EngineeringBay"},
			},
			wantMissing: []string{"Barracks"},
		},
		{
			name: "off-build structures are extra",
			snap: domain.PhaseSnapshot{
				ProductionBuildings: map[string]int{"Barracks": 1, "Factory": 1},
				TechBuildings:       []string{"EngineeringBay", "GhostAcademy"},
			},
			wantExtra: []string{"GhostAcademy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComparePhase(domain.PhaseMid, tt.snap, bench)
			if !reflect.DeepEqual(got.MissingBuildings, tt.wantMissing) {
				t.Errorf("MissingBuildings = %v, want %v", got.MissingBuildings, tt.wantMissing)
			}
			if !reflect.DeepEqual(got.ExtraBuildings, tt.wantExtra) {
				t.Errorf("ExtraBuildings = %v, want %v", got.ExtraBuildings, tt.wantExtra)
			}
		})
	}
}

func TestComparePhaseUpgrades(t *testing.T) {
	bench := domain.PhaseBenchmark{
		KeyUpgrades: []string{"CombatShield", "Stimpack"},
	}

	tests := []struct {
		name        string
		completed   []string
		inProgress  []string
		wantMissing []string
		wantExtra   []string
	}{
		{
			name:      "completed upgrades satisfy",
			completed: []string{"Stimpack", "CombatShield"},
		},
		{
			name:       "in-progress upgrades satisfy",
			completed:  []string{"Stimpack"},
			inProgress: []string{"CombatShield"},
		},
		{
			name:        "absent upgrades are missing",
			wantMissing: []string{"CombatShield", "Stimpack"},
		},
		{
			name:      "off-build completed upgrades are extra",
			completed: []string{"CombatShield", "ConcussiveShells", "Stimpack"},
			wantExtra: []string{"ConcussiveShells"},
		},
		{
			name:       "in-progress upgrades are never extra",
			completed:  []string{"CombatShield", "Stimpack"},
			inProgress: []string{"ConcussiveShells"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := domain.PhaseSnapshot{
				UpgradesCompleted:  tt.completed,
				UpgradesInProgress: tt.inProgress,
			}
			got := ComparePhase(domain.PhaseLate, snap, bench)
			if !reflect.DeepEqual(got.MissingUpgrades, tt.wantMissing) {
				t.Errorf("MissingUpgrades = %v, want %v", got.MissingUpgrades, tt.wantMissing)
			}
			if !reflect.DeepEqual(got.ExtraUpgrades, tt.wantExtra) {
				t.Errorf("ExtraUpgrades = %v, want %v", got.ExtraUpgrades, tt.wantExtra)
			}
		})
	}
}

func TestSupplyBlockPenalty(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		seconds float64
		want    float64
	}{
		{"no blocks no penalty", 0, 0, 0},
		{"two blocks thirty seconds", 2, 30, 31},
		{"more blocks cost more", 3, 30, 39},
		{"clamped at one hundred", 20, 300, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := supplyBlockPenalty(tt.count, tt.seconds)
			if got != tt.want {
				t.Errorf("supplyBlockPenalty(%d, %v) = %v, want %v", tt.count, tt.seconds, got, tt.want)
			}
		})
	}
}

func TestComparePhaseDeterministic(t *testing.T) {
	snap := domain.PhaseSnapshot{
		WorkerCount:         31,
		BaseCount:           2,
		UnitsProduced:       map[string]int{"Marine": 12, "Marauder": 4, "Hellion": 2, "Reaper": 1},
		ProductionBuildings: map[string]int{"Barracks": 3, "Factory": 1, "Starport": 1},
		TechBuildings:       []string{"EngineeringBay", "GhostAcademy"},
		UpgradesCompleted:   []string{"Stimpack", "ConcussiveShells"},
		SupplyBlockCount:    1,
		SupplyBlockSeconds:  12,
	}
	bench := domain.PhaseBenchmark{
		WorkerCount:  38,
		BaseCount:    2,
		KeyUnits:     map[string]int{"Marine": 16, "Medivac": 2, "Marauder": 4},
		KeyBuildings: []string{"Barracks", "Factory", "Starport", "EngineeringBay"},
		KeyUpgrades:  []string{"Stimpack", "CombatShield"},
	}

	first := ComparePhase(domain.PhaseEarly, snap, bench)
	for i := 0; i < 20; i++ {
		if got := ComparePhase(domain.PhaseEarly, snap, bench); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %+v, want %+v", i, got, first)
		}
	}
}

func TestAllPhaseDiffsOrder(t *testing.T) {
	build := testBuild()
	wantOrder := []domain.Phase{domain.PhaseOpening, domain.PhaseEarly, domain.PhaseMid, domain.PhaseLate}

	diffs := AllPhaseDiffs(matchingPhases(build), build)
	if len(diffs) != len(wantOrder) {
		t.Fatalf("got %d diffs, want %d", len(diffs), len(wantOrder))
	}
	for i, want := range wantOrder {
		if diffs[i].Phase != want {
			t.Errorf("diffs[%d].Phase = %q, want %q", i, diffs[i].Phase, want)
		}
	}
}

func TestAllPhaseDiffsMissingPhases(t *testing.T) {
	build := testBuild()

	// No snapshots at all: every phase compares as a zero value.
	diffs := AllPhaseDiffs(nil, build)
	if len(diffs) != 4 {
		t.Fatalf("got %d diffs, want 4", len(diffs))
	}
	opening := build.Phases[domain.PhaseOpening]
	if diffs[0].WorkerDiff != -opening.WorkerCount {
		t.Errorf("WorkerDiff = %d, want %d", diffs[0].WorkerDiff, -opening.WorkerCount)
	}
	if len(diffs[0].MissingUnits) != len(opening.KeyUnits) {
		t.Errorf("MissingUnits = %v, want all %d key units", diffs[0].MissingUnits, len(opening.KeyUnits))
	}

	// A build without a late benchmark compares that phase against a
	// zero value: nothing can be missing.
	delete(build.Phases, domain.PhaseLate)
	diffs = AllPhaseDiffs(matchingPhases(testBuild()), build)
	if len(diffs) != 4 {
		t.Fatalf("got %d diffs, want 4", len(diffs))
	}
	late := diffs[3]
	if late.MissingUnits != nil || late.MissingBuildings != nil || late.MissingUpgrades != nil {
		t.Errorf("late diff reported missing items against an absent benchmark: %+v", late)
	}
	if late.WorkerDiff <= 0 {
		t.Errorf("WorkerDiff = %d, want positive against an empty benchmark", late.WorkerDiff)
	}
}
