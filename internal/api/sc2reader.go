package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"sc2-coach/internal/config"
	"sc2-coach/internal/constants"
	"sc2-coach/internal/domain"

	"github.com/valyala/fasthttp"
)

// SC2ReaderClient talks to the replay parser sidecar. The sidecar
// accepts a raw .SC2Replay upload and returns per-player phase
// snapshots plus the replay fingerprint.
type SC2ReaderClient struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client

	statsMu sync.RWMutex
	stats   RequestStats
}

// RequestStats is a running tally of sidecar calls, exposed on the
// health endpoint.
type RequestStats struct {
	Requests    int           `json:"requests"`
	Failures    int           `json:"failures"`
	LastLatency time.Duration `json:"last_latency_ms"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func NewSC2ReaderClient(cfg *config.Config) *SC2ReaderClient {
	return &SC2ReaderClient{
		baseURL: strings.TrimRight(cfg.ParserURL, "/"),
		apiKey:  cfg.ParserAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ParserAPITimeout,
			WriteTimeout:        30 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *SC2ReaderClient) GetRequestStats() RequestStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

func (c *SC2ReaderClient) recordRequest(start time.Time, failed bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	c.stats.Requests++
	if failed {
		c.stats.Failures++
	}
	c.stats.LastLatency = time.Since(start)
	c.stats.UpdatedAt = time.Now()
}

// AnalyzeReplay uploads a replay file for parsing. The sidecar does
// the heavy lifting; expect calls to take tens of seconds for long
// games, so the caller's context should allow for that.
func (c *SC2ReaderClient) AnalyzeReplay(ctx context.Context, filename string, data []byte) (*AnalyzeResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/api/analyze")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(writer.FormDataContentType())
	req.Header.Set("X-API-Key", c.apiKey)
	req.SetBody(body.Bytes())

	start := time.Now()
	err = c.do(ctx, req, resp)
	c.recordRequest(start, err != nil || resp.StatusCode() != fasthttp.StatusOK)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("sc2reader error: %d: %s", resp.StatusCode(), truncate(resp.Body(), 200))
	}

	var result AnalyzeResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode sc2reader response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("sc2reader rejected replay: %s", result.Error)
	}
	return &result, nil
}

// Health pings the sidecar.
func (c *SC2ReaderClient) Health(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/api/health")
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-API-Key", c.apiKey)

	start := time.Now()
	err := c.do(ctx, req, resp)
	c.recordRequest(start, err != nil || resp.StatusCode() != fasthttp.StatusOK)
	if err != nil {
		return err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("sc2reader error: %d", resp.StatusCode())
	}
	return nil
}

func (c *SC2ReaderClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	deadline, ok := ctx.Deadline()
	if ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	return c.client.Do(req, resp)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

type AnalyzeResponse struct {
	Success     bool             `json:"success"`
	Fingerprint Fingerprint      `json:"fingerprint"`
	Players     []PlayerAnalysis `json:"players"`
	Error       string           `json:"error,omitempty"`
}

// Fingerprint identifies the uploaded game from the uploader's point
// of view: their name, race, and the matchup with their race first.
type Fingerprint struct {
	PlayerName string         `json:"player_name"`
	Race       string         `json:"race"`
	Matchup    string         `json:"matchup"`
	Metadata   ReplayMetadata `json:"metadata"`
}

type ReplayMetadata struct {
	Map             string    `json:"map"`
	DurationSeconds int       `json:"duration_seconds"`
	PlayedAt        time.Time `json:"played_at"`
}

type PlayerAnalysis struct {
	PlayerName string                                `json:"player_name"`
	Race       string                                `json:"race"`
	Result     string                                `json:"result"` // "Win" or "Loss"
	Phases     map[domain.Phase]domain.PhaseSnapshot `json:"phases"`
}
