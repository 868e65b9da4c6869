package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"sc2-coach/internal/config"
	"sc2-coach/internal/database"
	"sc2-coach/internal/domain"

	"github.com/rs/zerolog"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleReplay(userID string, playedAt time.Time) *domain.Replay {
	return &domain.Replay{
		UserID:          userID,
		PlayerName:      "Uploader",
		Race:            "Terran",
		Matchup:         "TvZ",
		MapName:         "Tokamak LE",
		DurationSeconds: 840,
		Won:             true,
		PlayedAt:        playedAt,
		Phases: map[domain.Phase]domain.PhaseSnapshot{
			domain.PhaseOpening: {
				WorkerCount:   19,
				BaseCount:     1,
				ArmySupply:    4,
				UnitsProduced: map[string]int{"Marine": 2, "Reaper": 1},
			},
			domain.PhaseEarly: {
				WorkerCount:        37,
				BaseCount:          2,
				SupplyBlockCount:   1,
				SupplyBlockSeconds: 12.5,
			},
		},
	}
}

func TestReplayRepositoryUpsertGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewReplayRepository(db, zerolog.Nop())
	ctx := context.Background()

	want := sampleReplay("user-1", time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC))
	if err := repo.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if want.ID == "" {
		t.Fatal("Upsert() did not assign an ID")
	}

	got, err := repo.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.UserID != want.UserID || got.PlayerName != want.PlayerName || got.Race != want.Race {
		t.Errorf("Get() identity = %s/%s/%s, want %s/%s/%s",
			got.UserID, got.PlayerName, got.Race, want.UserID, want.PlayerName, want.Race)
	}
	if got.Matchup != want.Matchup || got.MapName != want.MapName {
		t.Errorf("Get() game = %s on %s, want %s on %s", got.Matchup, got.MapName, want.Matchup, want.MapName)
	}
	if got.DurationSeconds != want.DurationSeconds || got.Won != want.Won {
		t.Errorf("Get() duration/won = %d/%v, want %d/%v", got.DurationSeconds, got.Won, want.DurationSeconds, want.Won)
	}
	if !got.PlayedAt.Equal(want.PlayedAt) {
		t.Errorf("Get() played_at = %v, want %v", got.PlayedAt, want.PlayedAt)
	}
	if !reflect.DeepEqual(got.Phases, want.Phases) {
		t.Errorf("Get() phases = %+v, want %+v", got.Phases, want.Phases)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("Get() timestamps not set")
	}
}

func TestReplayRepositoryUpsertOverwrites(t *testing.T) {
	db := newTestDB(t)
	repo := NewReplayRepository(db, zerolog.Nop())
	ctx := context.Background()

	replay := sampleReplay("user-1", time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC))
	if err := repo.Upsert(ctx, replay); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	replay.MapName = "Alcyone LE"
	replay.Won = false
	if err := repo.Upsert(ctx, replay); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, replay.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.MapName != "Alcyone LE" || got.Won {
		t.Errorf("Get() after overwrite = %s/%v, want Alcyone LE/false", got.MapName, got.Won)
	}

	count, err := repo.CountByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountByUser() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByUser() = %d after double upsert, want 1", count)
	}
}

func TestReplayRepositoryGetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewReplayRepository(db, zerolog.Nop())

	_, err := repo.Get(context.Background(), "no-such-id")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Get() error = %v, want sql.ErrNoRows", err)
	}
}

func TestReplayRepositoryListByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewReplayRepository(db, zerolog.Nop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []*domain.Replay{
		sampleReplay("user-1", base),
		sampleReplay("user-1", base.AddDate(0, 0, 5)),
		sampleReplay("user-1", base.AddDate(0, 0, 10)),
		sampleReplay("user-2", base.AddDate(0, 0, 7)),
	}
	seed[1].Matchup = "TvT"
	for _, r := range seed {
		if err := repo.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	tests := []struct {
		name    string
		userID  string
		since   time.Time
		matchup string
		limit   int
		wantLen int
	}{
		{name: "all for user", userID: "user-1", wantLen: 3},
		{name: "cutoff filters older", userID: "user-1", since: base.AddDate(0, 0, 3), wantLen: 2},
		{name: "matchup filter", userID: "user-1", matchup: "TvT", wantLen: 1},
		{name: "limit truncates", userID: "user-1", limit: 2, wantLen: 2},
		{name: "other user isolated", userID: "user-2", wantLen: 1},
		{name: "unknown user", userID: "user-3", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListByUser(ctx, tt.userID, tt.since, tt.matchup, tt.limit)
			if err != nil {
				t.Fatalf("ListByUser() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("ListByUser() returned %d replays, want %d", len(got), tt.wantLen)
			}
			for i := 1; i < len(got); i++ {
				if got[i].PlayedAt.After(got[i-1].PlayedAt) {
					t.Errorf("ListByUser() not newest first: %v before %v", got[i-1].PlayedAt, got[i].PlayedAt)
				}
			}
		})
	}
}

func TestReplayRepositoryListIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewReplayRepository(db, zerolog.Nop())
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var wantIDs []string
	for i := 0; i < 3; i++ {
		r := sampleReplay("user-1", base.AddDate(0, 0, i))
		if err := repo.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		wantIDs = append(wantIDs, r.ID)
	}
	other := sampleReplay("user-2", base)
	if err := repo.Upsert(ctx, other); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.ListIDs(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	if len(got) != len(wantIDs) {
		t.Fatalf("ListIDs() returned %d ids, want %d", len(got), len(wantIDs))
	}
	seen := make(map[string]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range wantIDs {
		if !seen[id] {
			t.Errorf("ListIDs() missing id %s", id)
		}
	}
	if seen[other.ID] {
		t.Errorf("ListIDs() leaked another user's id %s", other.ID)
	}
}
