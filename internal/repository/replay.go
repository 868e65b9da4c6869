package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sc2-coach/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type ReplayRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewReplayRepository(sqlDB *sql.DB, logger zerolog.Logger) *ReplayRepository {
	return &ReplayRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Upsert stores a replay, assigning an ID when none is set. Phase
// snapshots are kept as a JSON column; they are only ever read back
// whole.
func (r *ReplayRepository) Upsert(ctx context.Context, replay *domain.Replay) error {
	if replay.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		replay.ID = id
	}

	now := time.Now()
	if replay.CreatedAt.IsZero() {
		replay.CreatedAt = now
	}
	replay.UpdatedAt = now

	phasesJSON, err := json.Marshal(replay.Phases)
	if err != nil {
		return fmt.Errorf("failed to marshal phases: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO replays (id, user_id, player_name, race, matchup, map_name, duration_seconds, won, played_at, phases, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			player_name = excluded.player_name,
			race = excluded.race,
			matchup = excluded.matchup,
			map_name = excluded.map_name,
			duration_seconds = excluded.duration_seconds,
			won = excluded.won,
			played_at = excluded.played_at,
			phases = excluded.phases,
			updated_at = excluded.updated_at
	`, replay.ID, replay.UserID, replay.PlayerName, replay.Race, replay.Matchup, replay.MapName,
		replay.DurationSeconds, replay.Won, replay.PlayedAt, string(phasesJSON), replay.CreatedAt, replay.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("replay_id", replay.ID).Msg("failed to upsert replay")
		return fmt.Errorf("failed to upsert replay %s: %w", replay.ID, err)
	}

	return nil
}

func (r *ReplayRepository) Get(ctx context.Context, id string) (*domain.Replay, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, player_name, race, matchup, map_name, duration_seconds, won, played_at, phases, created_at, updated_at
		FROM replays WHERE id = ?
	`, id)

	return scanReplay(row)
}

// ListByUser returns a user's replays newest first. A zero since time
// means no lower bound, an empty matchup means no matchup filter, and
// a non-positive limit means no limit.
func (r *ReplayRepository) ListByUser(ctx context.Context, userID string, since time.Time, matchup string, limit int) ([]domain.Replay, error) {
	query := `
		SELECT id, user_id, player_name, race, matchup, map_name, duration_seconds, won, played_at, phases, created_at, updated_at
		FROM replays WHERE user_id = ?`
	args := []any{userID}

	if !since.IsZero() {
		query += ` AND played_at >= ?`
		args = append(args, since)
	}
	if matchup != "" {
		query += ` AND matchup = ?`
		args = append(args, matchup)
	}
	query += ` ORDER BY played_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replays []domain.Replay
	for rows.Next() {
		replay, err := scanReplay(rows)
		if err != nil {
			return nil, err
		}
		replays = append(replays, *replay)
	}
	return replays, rows.Err()
}

// ListIDs returns every replay ID stored for a user. This is the
// input to cache version hashing, so it must cover the full set
// regardless of period or matchup filters.
func (r *ReplayRepository) ListIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM replays WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ReplayRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM replays WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReplay(row rowScanner) (*domain.Replay, error) {
	var replay domain.Replay
	var phasesJSON string

	err := row.Scan(
		&replay.ID,
		&replay.UserID,
		&replay.PlayerName,
		&replay.Race,
		&replay.Matchup,
		&replay.MapName,
		&replay.DurationSeconds,
		&replay.Won,
		&replay.PlayedAt,
		&phasesJSON,
		&replay.CreatedAt,
		&replay.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phasesJSON != "" {
		if err := json.Unmarshal([]byte(phasesJSON), &replay.Phases); err != nil {
			return nil, fmt.Errorf("failed to unmarshal phases for replay %s: %w", replay.ID, err)
		}
	}
	return &replay, nil
}
