package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"sc2-coach/internal/domain"

	"github.com/rs/zerolog"
)

// CacheRepository persists cached aggregation results in SQLite. It
// backs the cache manager's Store interface: a missing row comes back
// as a nil record, and user-level clears run as one transaction so the
// three cache tables never disagree about a user.
type CacheRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCacheRepository(sqlDB *sql.DB, logger zerolog.Logger) *CacheRepository {
	return &CacheRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *CacheRepository) GetTimeSeries(ctx context.Context, key string) (*domain.CachedTimeSeries, error) {
	var rec domain.CachedTimeSeries
	var payload string

	err := r.db.QueryRowContext(ctx, `
		SELECT cache_key, user_id, period, matchup, payload, replay_count, version_hash, schema_version, cached_at
		FROM timeseries_cache WHERE cache_key = ?
	`, key).Scan(
		&rec.CacheKey,
		&rec.UserID,
		&rec.Period,
		&rec.Matchup,
		&payload,
		&rec.ReplayCount,
		&rec.VersionHash,
		&rec.SchemaVersion,
		&rec.CachedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(payload), &rec.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached payload for %s: %w", key, err)
	}
	return &rec, nil
}

func (r *CacheRepository) PutTimeSeries(ctx context.Context, rec domain.CachedTimeSeries) error {
	payload, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal cached payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO timeseries_cache (cache_key, user_id, period, matchup, payload, replay_count, version_hash, schema_version, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			user_id = excluded.user_id,
			period = excluded.period,
			matchup = excluded.matchup,
			payload = excluded.payload,
			replay_count = excluded.replay_count,
			version_hash = excluded.version_hash,
			schema_version = excluded.schema_version,
			cached_at = excluded.cached_at
	`, rec.CacheKey, rec.UserID, rec.Period, rec.Matchup, string(payload),
		rec.ReplayCount, rec.VersionHash, rec.SchemaVersion, rec.CachedAt)
	return err
}

func (r *CacheRepository) GetReplayIndex(ctx context.Context, userID string) (*domain.CachedReplayIndex, error) {
	var rec domain.CachedReplayIndex
	var idsJSON string

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, replay_ids, replay_count, version_hash, updated_at
		FROM replay_index_cache WHERE user_id = ?
	`, userID).Scan(
		&rec.UserID,
		&idsJSON,
		&rec.ReplayCount,
		&rec.VersionHash,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(idsJSON), &rec.ReplayIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal replay index for %s: %w", userID, err)
	}
	return &rec, nil
}

func (r *CacheRepository) PutReplayIndex(ctx context.Context, rec domain.CachedReplayIndex) error {
	idsJSON, err := json.Marshal(rec.ReplayIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal replay index: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO replay_index_cache (user_id, replay_ids, replay_count, version_hash, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			replay_ids = excluded.replay_ids,
			replay_count = excluded.replay_count,
			version_hash = excluded.version_hash,
			updated_at = excluded.updated_at
	`, rec.UserID, string(idsJSON), rec.ReplayCount, rec.VersionHash, rec.UpdatedAt)
	return err
}

func (r *CacheRepository) GetMetadata(ctx context.Context, userID string) (*domain.CacheMetadata, error) {
	var rec domain.CacheMetadata

	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, schema_version, replay_count, last_saved_at
		FROM cache_metadata WHERE user_id = ?
	`, userID).Scan(
		&rec.UserID,
		&rec.SchemaVersion,
		&rec.ReplayCount,
		&rec.LastSavedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *CacheRepository) PutMetadata(ctx context.Context, rec domain.CacheMetadata) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_metadata (user_id, schema_version, replay_count, last_saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			schema_version = excluded.schema_version,
			replay_count = excluded.replay_count,
			last_saved_at = excluded.last_saved_at
	`, rec.UserID, rec.SchemaVersion, rec.ReplayCount, rec.LastSavedAt)
	return err
}

// ClearUser removes a user's rows from all three cache tables in one
// transaction.
func (r *CacheRepository) ClearUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM timeseries_cache WHERE user_id = ?`,
		`DELETE FROM replay_index_cache WHERE user_id = ?`,
		`DELETE FROM cache_metadata WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, userID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *CacheRepository) ClearAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM timeseries_cache`,
		`DELETE FROM replay_index_cache`,
		`DELETE FROM cache_metadata`,
	} {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return tx.Commit()
}
