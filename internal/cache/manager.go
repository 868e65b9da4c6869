package cache

import (
	"context"
	"sync"
	"time"

	"sc2-coach/internal/constants"
	"sc2-coach/internal/domain"

	"github.com/rs/zerolog"
)

// ComputeFunc produces a fresh aggregate when the cache cannot serve
// one. It must be correct standalone; the cache only decides whether
// it runs.
type ComputeFunc func(ctx context.Context) (domain.TimeSeriesData, error)

// LoadResult carries the aggregate plus where it came from and how
// long a recompute took. ComputeDuration is zero on cache hits.
type LoadResult struct {
	Data            domain.TimeSeriesData
	FromCache       bool
	ComputeDuration time.Duration
}

// Manager fronts a Store with validity checks and asynchronous
// write-back. A nil store disables caching: every load recomputes and
// nothing persists. Store failures never propagate; they degrade to
// misses and warning logs.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewManager(store Store, ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = constants.TimeSeriesCacheTTL
	}
	return &Manager{store: store, ttl: ttl, logger: logger}
}

// IsValid reports whether the record under key can still be served:
// it must exist, carry the current schema version, match the version
// hash of currentReplayIDs, and be younger than the TTL.
func (m *Manager) IsValid(ctx context.Context, key string, currentReplayIDs []string) bool {
	if m.store == nil {
		return false
	}
	rec, err := m.store.GetTimeSeries(ctx, key)
	if err != nil {
		m.logger.Warn().Err(err).Str("cache_key", key).Msg("cache read failed, treating as miss")
		return false
	}
	if rec == nil {
		return false
	}
	return m.isValidRecord(rec, VersionHash(currentReplayIDs))
}

func (m *Manager) isValidRecord(rec *domain.CachedTimeSeries, wantHash string) bool {
	if rec.SchemaVersion != constants.CacheSchemaVersion {
		return false
	}
	if rec.VersionHash != wantHash {
		return false
	}
	return time.Since(rec.CachedAt) <= m.ttl
}

// LoadTimeSeries returns the aggregate for (userID, period, matchup),
// serving the stored copy when it is still valid for replayIDs. On a
// miss the compute function runs synchronously and its result returns
// immediately; persisting happens in the background and failures
// there only log. Two concurrent misses for the same key both
// recompute and the later write-back wins.
func (m *Manager) LoadTimeSeries(ctx context.Context, userID string, period domain.Period, matchup string, replayIDs []string, compute ComputeFunc) (LoadResult, error) {
	key := Key(userID, period, matchup)
	wantHash := VersionHash(replayIDs)

	if m.store != nil {
		rec, err := m.store.GetTimeSeries(ctx, key)
		if err != nil {
			m.logger.Warn().Err(err).Str("cache_key", key).Msg("cache read failed, recomputing")
		} else if rec != nil && m.isValidRecord(rec, wantHash) {
			m.logger.Debug().Str("cache_key", key).Msg("cache hit")
			return LoadResult{Data: rec.Data, FromCache: true}, nil
		}
	}

	start := time.Now()
	data, err := compute(ctx)
	if err != nil {
		return LoadResult{}, err
	}
	elapsed := time.Since(start)

	m.logger.Debug().
		Str("cache_key", key).
		Int("replay_count", len(replayIDs)).
		Int64("compute_ms", elapsed.Milliseconds()).
		Msg("cache miss, recomputed")

	if m.store != nil {
		now := time.Now()
		rec := domain.CachedTimeSeries{
			CacheKey:      key,
			UserID:        userID,
			Period:        string(period),
			Matchup:       matchupSegment(matchup),
			Data:          data,
			ReplayCount:   len(replayIDs),
			VersionHash:   wantHash,
			SchemaVersion: constants.CacheSchemaVersion,
			CachedAt:      now,
		}
		index := domain.CachedReplayIndex{
			UserID:      userID,
			ReplayIDs:   append([]string(nil), replayIDs...),
			ReplayCount: len(replayIDs),
			VersionHash: wantHash,
			UpdatedAt:   now,
		}
		m.wg.Add(1)
		go m.persist(rec, index)
	}

	return LoadResult{Data: data, ComputeDuration: elapsed}, nil
}

// persist is the write-back after a miss. It runs on its own context:
// the request that triggered the recompute may be gone before these
// writes land.
func (m *Manager) persist(rec domain.CachedTimeSeries, index domain.CachedReplayIndex) {
	defer m.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), constants.CacheWriteTimeout)
	defer cancel()

	if err := m.store.PutTimeSeries(ctx, rec); err != nil {
		m.logger.Warn().Err(err).Str("cache_key", rec.CacheKey).Msg("failed to persist cached time series")
		return
	}
	if err := m.store.PutReplayIndex(ctx, index); err != nil {
		m.logger.Warn().Err(err).Str("user_id", index.UserID).Msg("failed to persist replay index")
		return
	}
	meta := domain.CacheMetadata{
		UserID:        rec.UserID,
		SchemaVersion: rec.SchemaVersion,
		ReplayCount:   rec.ReplayCount,
		LastSavedAt:   time.Now(),
	}
	if err := m.store.PutMetadata(ctx, meta); err != nil {
		m.logger.Warn().Err(err).Str("user_id", rec.UserID).Msg("failed to persist cache metadata")
	}
}

// HasReplayIndexChanged reports whether the user's replay set differs
// from the one recorded at the last write-back. An absent index, like
// a failing store, counts as changed.
func (m *Manager) HasReplayIndexChanged(ctx context.Context, userID string, currentReplayIDs []string) bool {
	if m.store == nil {
		return true
	}
	index, err := m.store.GetReplayIndex(ctx, userID)
	if err != nil {
		m.logger.Warn().Err(err).Str("user_id", userID).Msg("replay index read failed")
		return true
	}
	if index == nil {
		return true
	}
	return index.VersionHash != VersionHash(currentReplayIDs)
}

// Metadata returns the cache bookkeeping row for a user, or nil when
// none exists or the store is unavailable.
func (m *Manager) Metadata(ctx context.Context, userID string) *domain.CacheMetadata {
	if m.store == nil {
		return nil
	}
	meta, err := m.store.GetMetadata(ctx, userID)
	if err != nil {
		m.logger.Warn().Err(err).Str("user_id", userID).Msg("cache metadata read failed")
		return nil
	}
	return meta
}

// ClearUser drops every cached record for one user. Failures log and
// are swallowed: clearing the cache must never take the caller down.
func (m *Manager) ClearUser(ctx context.Context, userID string) {
	if m.store == nil {
		return
	}
	if err := m.store.ClearUser(ctx, userID); err != nil {
		m.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear user cache")
		return
	}
	m.logger.Info().Str("user_id", userID).Msg("user cache cleared")
}

// ClearAll drops the entire cache, every user. Used for global resets
// such as a payload schema migration.
func (m *Manager) ClearAll(ctx context.Context) {
	if m.store == nil {
		return
	}
	if err := m.store.ClearAll(ctx); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear cache")
		return
	}
	m.logger.Info().Msg("cache cleared")
}

// Flush blocks until every pending background write has finished.
// Wired into shutdown so a recompute just before exit still lands;
// tests use it to make write-backs deterministic.
func (m *Manager) Flush() {
	m.wg.Wait()
}
