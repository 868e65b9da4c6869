package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sc2-coach/internal/api"
	"sc2-coach/internal/benchmark"
	"sc2-coach/internal/constants"
	"sc2-coach/internal/domain"
	"sc2-coach/internal/repository"
	"sc2-coach/internal/scoring"

	"github.com/rs/zerolog"
)

var (
	ErrReplayNotFound   = errors.New("replay not found")
	ErrNoReferenceBuild = errors.New("no reference build for matchup")
)

type ReplayService struct {
	parser  *api.SC2ReaderClient
	repo    *repository.ReplayRepository
	catalog *benchmark.Catalog
	logger  zerolog.Logger
}

func NewReplayService(parser *api.SC2ReaderClient, repo *repository.ReplayRepository, catalog *benchmark.Catalog, logger zerolog.Logger) *ReplayService {
	return &ReplayService{parser: parser, repo: repo, catalog: catalog, logger: logger}
}

// ScoreReport is the scored comparison of one replay against one
// reference build.
type ScoreReport struct {
	ReplayID         string                `json:"replay_id"`
	BuildID          string                `json:"build_id"`
	BuildName        string                `json:"build_name"`
	Matchup          string                `json:"matchup"`
	Score            domain.ExecutionScore `json:"score"`
	GradeDescription string                `json:"grade_description"`
	PhaseDiffs       []domain.PhaseDiff    `json:"phase_diffs"`
}

// Upload sends a raw replay to the parser sidecar and stores the
// uploader's parsed game. The uploader is located by the replay
// fingerprint; when the fingerprint matches none of the parsed
// players the first player is taken instead.
func (s *ReplayService) Upload(ctx context.Context, userID, filename string, data []byte) (*domain.Replay, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.UploadTimeout)
	defer cancel()

	if len(data) == 0 {
		return nil, fmt.Errorf("empty replay file")
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("filename", filename).
		Int("size_bytes", len(data)).
		Msg("analyzing uploaded replay")

	analysis, err := s.parser.AnalyzeReplay(ctx, filename, data)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("filename", filename).Msg("replay analysis failed")
		return nil, fmt.Errorf("failed to analyze replay: %w", err)
	}
	if len(analysis.Players) == 0 {
		return nil, fmt.Errorf("no players in replay analysis")
	}

	player := findPlayer(analysis.Players, analysis.Fingerprint.PlayerName)
	if player == nil {
		s.logger.Warn().
			Str("player_name", analysis.Fingerprint.PlayerName).
			Msg("fingerprint player not in analysis, using first player")
		player = &analysis.Players[0]
	}

	playedAt := analysis.Fingerprint.Metadata.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	replay := &domain.Replay{
		UserID:          userID,
		PlayerName:      player.PlayerName,
		Race:            analysis.Fingerprint.Race,
		Matchup:         analysis.Fingerprint.Matchup,
		MapName:         analysis.Fingerprint.Metadata.Map,
		DurationSeconds: analysis.Fingerprint.Metadata.DurationSeconds,
		Won:             player.Result == "Win",
		PlayedAt:        playedAt,
		Phases:          player.Phases,
	}

	if err := s.repo.Upsert(ctx, replay); err != nil {
		return nil, fmt.Errorf("failed to store replay: %w", err)
	}

	s.logger.Info().
		Str("replay_id", replay.ID).
		Str("user_id", userID).
		Str("matchup", replay.Matchup).
		Str("map", replay.MapName).
		Bool("won", replay.Won).
		Msg("replay stored")

	return replay, nil
}

// Score grades a stored replay against a reference build. An empty
// buildID picks the catalog default for the replay's matchup.
func (s *ReplayService) Score(ctx context.Context, replayID, buildID string) (*ScoreReport, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	replay, err := s.repo.Get(ctx, replayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrReplayNotFound, replayID)
		}
		return nil, fmt.Errorf("failed to load replay: %w", err)
	}

	var build domain.ReferenceBuild
	var ok bool
	if buildID != "" {
		build, ok = s.catalog.ByID(buildID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown build %q", ErrNoReferenceBuild, buildID)
		}
	} else {
		build, ok = s.catalog.DefaultFor(replay.Matchup)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoReferenceBuild, replay.Matchup)
		}
	}

	score := scoring.ComputeExecutionScore(replay.Phases, build)
	diffs := scoring.AllPhaseDiffs(replay.Phases, build)

	s.logger.Info().
		Str("replay_id", replayID).
		Str("build_id", build.ID).
		Float64("total", score.Total).
		Str("grade", string(score.Grade)).
		Msg("replay scored")

	return &ScoreReport{
		ReplayID:         replay.ID,
		BuildID:          build.ID,
		BuildName:        build.Name,
		Matchup:          replay.Matchup,
		Score:            score,
		GradeDescription: scoring.GradeDescription(score.Grade),
		PhaseDiffs:       diffs,
	}, nil
}

// Recent returns a user's latest replays, newest first.
func (s *ReplayService) Recent(ctx context.Context, userID string, limit int) ([]domain.Replay, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 || limit > constants.RecentReplayLimit {
		limit = constants.RecentReplayLimit
	}
	return s.repo.ListByUser(ctx, userID, time.Time{}, "", limit)
}

func findPlayer(players []api.PlayerAnalysis, name string) *api.PlayerAnalysis {
	for i := range players {
		if players[i].PlayerName == name {
			return &players[i]
		}
	}
	return nil
}
