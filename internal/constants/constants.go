package constants

import "time"

const (
	// TimeSeriesCacheTTL bounds how long a memoized aggregate may be
	// served even when the replay set is unchanged.
	TimeSeriesCacheTTL = 24 * time.Hour

	// CacheSchemaVersion is stamped into every cache record; bump it
	// whenever the cached payload shape changes so stale rows stop
	// validating.
	CacheSchemaVersion = 1

	CacheWriteTimeout = 10 * time.Second
)

const (
	// Replay parsing regularly takes tens of seconds for long games.
	ParserAPITimeout = 60 * time.Second
	DatabaseTimeout  = 5 * time.Second
	RequestTimeout   = 30 * time.Second
	UploadTimeout    = 90 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxUploadBytes    = 8 << 20 // .SC2Replay files are well under 8MB
	RecentReplayLimit = 25
)
