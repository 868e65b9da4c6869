package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sc2-coach/internal/cache"
	"sc2-coach/internal/constants"
	"sc2-coach/internal/domain"
	"sc2-coach/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type StatsService struct {
	repo   *repository.ReplayRepository
	cache  *cache.Manager
	logger zerolog.Logger
}

func NewStatsService(repo *repository.ReplayRepository, cacheMgr *cache.Manager, logger zerolog.Logger) *StatsService {
	return &StatsService{repo: repo, cache: cacheMgr, logger: logger}
}

// TimeSeriesResult wraps the aggregate with cache provenance so the
// handler can expose whether the response was served or recomputed.
type TimeSeriesResult struct {
	Data      domain.TimeSeriesData `json:"data"`
	FromCache bool                  `json:"from_cache"`
	ComputeMS int64                 `json:"compute_ms"`
}

// Dashboard bundles everything the overview page needs in one call.
type Dashboard struct {
	TimeSeries    TimeSeriesResult      `json:"time_series"`
	RecentReplays []domain.Replay       `json:"recent_replays"`
	CacheMetadata *domain.CacheMetadata `json:"cache_metadata,omitempty"`
}

// TimeSeries returns per-day aggregates for a user's replays over the
// period, optionally filtered to one matchup. Results come from the
// cache when the user's replay set has not changed.
func (s *StatsService) TimeSeries(ctx context.Context, userID string, period domain.Period, matchup string) (*TimeSeriesResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	ids, err := s.repo.ListIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replay ids: %w", err)
	}

	result, err := s.cache.LoadTimeSeries(ctx, userID, period, matchup, ids, func(ctx context.Context) (domain.TimeSeriesData, error) {
		var since time.Time
		if cutoff, ok := period.Cutoff(time.Now()); ok {
			since = cutoff
		}
		replays, err := s.repo.ListByUser(ctx, userID, since, matchup, 0)
		if err != nil {
			return domain.TimeSeriesData{}, err
		}
		return buildTimeSeries(replays), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load time series: %w", err)
	}

	return &TimeSeriesResult{
		Data:      result.Data,
		FromCache: result.FromCache,
		ComputeMS: result.ComputeDuration.Milliseconds(),
	}, nil
}

// Dashboard fetches the time series and the recent replay list in
// parallel.
func (s *StatsService) Dashboard(ctx context.Context, userID string, period domain.Period, matchup string) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	var series *TimeSeriesResult
	var recent []domain.Replay

	g.Go(func() error {
		var err error
		series, err = s.TimeSeries(gCtx, userID, period, matchup)
		return err
	})

	g.Go(func() error {
		var err error
		recent, err = s.repo.ListByUser(gCtx, userID, time.Time{}, "", constants.RecentReplayLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to build dashboard")
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	return &Dashboard{
		TimeSeries:    *series,
		RecentReplays: recent,
		CacheMetadata: s.cache.Metadata(ctx, userID),
	}, nil
}

// ClearCache drops a user's cached aggregates. The underlying replays
// are untouched; the next stats request recomputes.
func (s *StatsService) ClearCache(ctx context.Context, userID string) {
	s.cache.ClearUser(ctx, userID)
}

// ClearAllCaches drops every user's cached aggregates.
func (s *StatsService) ClearAllCaches(ctx context.Context) {
	s.cache.ClearAll(ctx)
}

// buildTimeSeries buckets replays into UTC days and aggregates each
// bucket. Days without games are omitted rather than zero-filled, and
// points come back in date order.
func buildTimeSeries(replays []domain.Replay) domain.TimeSeriesData {
	type bucket struct {
		games       int
		wins        int
		durationSum int
		blocksSum   int
	}

	buckets := make(map[string]*bucket)
	for _, r := range replays {
		day := r.PlayedAt.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.games++
		if r.Won {
			b.wins++
		}
		b.durationSum += r.DurationSeconds
		b.blocksSum += totalSupplyBlocks(r)
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	data := domain.TimeSeriesData{}
	for _, day := range days {
		b := buckets[day]
		data.Points = append(data.Points, domain.TimeSeriesPoint{
			Date:            day,
			Games:           b.games,
			Wins:            b.wins,
			WinRate:         float64(b.wins) / float64(b.games) * 100,
			AvgGameLength:   float64(b.durationSum) / float64(b.games),
			AvgSupplyBlocks: float64(b.blocksSum) / float64(b.games),
		})
		data.TotalGames += b.games
		data.TotalWins += b.wins
	}

	if data.TotalGames > 0 {
		data.WinRate = float64(data.TotalWins) / float64(data.TotalGames) * 100
	}
	return data
}

func totalSupplyBlocks(r domain.Replay) int {
	total := 0
	for _, snap := range r.Phases {
		total += snap.SupplyBlockCount
	}
	return total
}
