package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"sc2-coach/internal/api"
	"sc2-coach/internal/benchmark"
	"sc2-coach/internal/constants"
	"sc2-coach/internal/domain"
	"sc2-coach/internal/service"

	"github.com/rs/zerolog"
)

type Server struct {
	replaySvc *service.ReplayService
	statsSvc  *service.StatsService
	catalog   *benchmark.Catalog
	parser    *api.SC2ReaderClient
	db        *sql.DB
}

func NewServer(replaySvc *service.ReplayService, statsSvc *service.StatsService, catalog *benchmark.Catalog, parser *api.SC2ReaderClient, sqlDB *sql.DB) *Server {
	return &Server{
		replaySvc: replaySvc,
		statsSvc:  statsSvc,
		catalog:   catalog,
		parser:    parser,
		db:        sqlDB,
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/replays", s.handleReplays)
	mux.HandleFunc("/api/replays/score", s.handleScore)
	mux.HandleFunc("/api/builds", s.handleBuilds)
	mux.HandleFunc("/api/stats/timeseries", s.handleTimeSeries)
	mux.HandleFunc("/api/stats/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/cache/clear", s.handleCacheClear)
	mux.HandleFunc("/api/health", s.handleHealth)
}

func (s *Server) handleReplays(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleUpload(w, r)
	case http.MethodGet:
		s.handleListReplays(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	fmt.Println("[BENCH] UploadReplay")
	start := time.Now()
	defer func() {
		fmt.Printf("[BENCH] UploadReplay END %d ms\n", time.Since(start).Milliseconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to read uploaded file")
		writeError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}

	replay, err := s.replaySvc.Upload(r.Context(), userID, header.Filename, data)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("upload failed")
		writeError(w, http.StatusBadGateway, "failed to analyze replay")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"replay":  replay,
	})
}

func (s *Server) handleListReplays(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	replays, err := s.replaySvc.Recent(r.Context(), userID, limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("failed to list replays")
		writeError(w, http.StatusInternalServerError, "failed to list replays")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"replays": replays,
		"count":   len(replays),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	replayID := r.URL.Query().Get("replay_id")
	if replayID == "" {
		writeError(w, http.StatusBadRequest, "replay_id is required")
		return
	}
	buildID := r.URL.Query().Get("build_id")

	report, err := s.replaySvc.Score(r.Context(), replayID, buildID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReplayNotFound):
			writeError(w, http.StatusNotFound, "replay not found")
		case errors.Is(err, service.ErrNoReferenceBuild):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Str("replay_id", replayID).Msg("scoring failed")
			writeError(w, http.StatusInternalServerError, "failed to score replay")
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	race := r.URL.Query().Get("race")
	matchup := r.URL.Query().Get("matchup")
	builds := s.catalog.Filter(race, matchup)

	writeJSON(w, http.StatusOK, map[string]any{
		"builds": builds,
		"count":  len(builds),
	})
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	period, err := domain.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	matchup := r.URL.Query().Get("matchup")

	result, err := s.statsSvc.TimeSeries(r.Context(), userID, period, matchup)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("timeseries failed")
		writeError(w, http.StatusInternalServerError, "failed to load time series")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	period, err := domain.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	matchup := r.URL.Query().Get("matchup")

	dashboard, err := s.statsSvc.Dashboard(r.Context(), userID, period, matchup)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("dashboard failed")
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := r.FormValue("user_id")
	all := r.FormValue("all") == "true"

	switch {
	case userID != "":
		s.statsSvc.ClearCache(r.Context(), userID)
	case all:
		s.statsSvc.ClearAllCaches(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "user_id or all=true is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.db.PingContext(ctx); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
		checks["database"] = map[string]any{"status": "unhealthy", "error": err.Error()}
	} else {
		checks["database"] = map[string]any{"status": "healthy"}
	}

	if err := s.parser.Health(ctx); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
		checks["sc2reader"] = map[string]any{"status": "unhealthy", "error": err.Error()}
	} else {
		checks["sc2reader"] = map[string]any{"status": "healthy"}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":       status,
		"timestamp":    time.Now().Unix(),
		"checks":       checks,
		"parser_stats": s.parser.GetRequestStats(),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
