package cache

import (
	"context"

	"sc2-coach/internal/domain"
)

// Store is the persistence boundary for cached results. Three
// collections live behind it: time-series payloads keyed by cache
// key, one replay index per user, and one metadata row per user.
// Absence is reported as a nil record, not an error; errors mean the
// store itself failed.
type Store interface {
	GetTimeSeries(ctx context.Context, key string) (*domain.CachedTimeSeries, error)
	PutTimeSeries(ctx context.Context, rec domain.CachedTimeSeries) error

	GetReplayIndex(ctx context.Context, userID string) (*domain.CachedReplayIndex, error)
	PutReplayIndex(ctx context.Context, rec domain.CachedReplayIndex) error

	GetMetadata(ctx context.Context, userID string) (*domain.CacheMetadata, error)
	PutMetadata(ctx context.Context, rec domain.CacheMetadata) error

	// ClearUser removes every record for one user from all three
	// collections in a single atomic step: all rows go or none do.
	ClearUser(ctx context.Context, userID string) error
	ClearAll(ctx context.Context) error
}
