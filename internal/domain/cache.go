package domain

import "time"

// CachedTimeSeries is one memoized aggregation result, keyed by
// user + period + matchup filter.
type CachedTimeSeries struct {
	CacheKey      string
	UserID        string
	Period        string
	Matchup       string // literal "all" when unfiltered
	Data          TimeSeriesData
	ReplayCount   int
	VersionHash   string
	SchemaVersion int
	CachedAt      time.Time
}

// CachedReplayIndex is the per-user snapshot of known replay IDs,
// kept so a change in the underlying set can be detected without
// loading any cached payload.
type CachedReplayIndex struct {
	UserID      string
	ReplayIDs   []string
	ReplayCount int
	VersionHash string
	UpdatedAt   time.Time
}

type CacheMetadata struct {
	UserID        string    `json:"user_id"`
	SchemaVersion int       `json:"schema_version"`
	ReplayCount   int       `json:"replay_count"`
	LastSavedAt   time.Time `json:"last_saved_at"`
}
