package fx

import (
	"sc2-coach/internal/api"
	"sc2-coach/internal/benchmark"
	"sc2-coach/internal/cache"
	"sc2-coach/internal/config"
	"sc2-coach/internal/database"
	"sc2-coach/internal/logger"
	"sc2-coach/internal/repository"
	"sc2-coach/internal/server"
	"sc2-coach/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideCacheManager(repo *repository.CacheRepository, cfg *config.Config, log zerolog.Logger) *cache.Manager {
	return cache.NewManager(repo, cfg.CacheTTL, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(benchmark.NewCatalog),
	// repos
	fx.Provide(repository.NewReplayRepository),
	fx.Provide(repository.NewCacheRepository),
	fx.Provide(ProvideCacheManager),
	// api client
	fx.Provide(api.NewSC2ReaderClient),
	// svc
	fx.Provide(service.NewReplayService),
	fx.Provide(service.NewStatsService),
	// server
	fx.Provide(server.NewServer),
)
