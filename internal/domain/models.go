package domain

import (
	"fmt"
	"time"
)

type Replay struct {
	ID              string                  `json:"id"` // nanoid
	UserID          string                  `json:"user_id"`
	PlayerName      string                  `json:"player_name"`
	Race            string                  `json:"race"`
	Matchup         string                  `json:"matchup"` // e.g. "TvZ", player race first
	MapName         string                  `json:"map_name"`
	DurationSeconds int                     `json:"duration_seconds"`
	Won             bool                    `json:"won"`
	PlayedAt        time.Time               `json:"played_at"`
	Phases          map[Phase]PhaseSnapshot `json:"phases"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

type Period string

const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
	PeriodAll    Period = "all"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Period7Days, Period30Days, Period90Days, PeriodAll:
		return Period(s), nil
	case "":
		return PeriodAll, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Cutoff returns the earliest played-at time included in the period.
// The second return is false for PeriodAll, which has no lower bound.
func (p Period) Cutoff(now time.Time) (time.Time, bool) {
	switch p {
	case Period7Days:
		return now.AddDate(0, 0, -7), true
	case Period30Days:
		return now.AddDate(0, 0, -30), true
	case Period90Days:
		return now.AddDate(0, 0, -90), true
	}
	return time.Time{}, false
}

type TimeSeriesPoint struct {
	Date            string  `json:"date"` // UTC day, YYYY-MM-DD
	Games           int     `json:"games"`
	Wins            int     `json:"wins"`
	WinRate         float64 `json:"win_rate"`
	AvgGameLength   float64 `json:"avg_game_length_seconds"`
	AvgSupplyBlocks float64 `json:"avg_supply_blocks"`
}

type TimeSeriesData struct {
	Points     []TimeSeriesPoint `json:"points"`
	TotalGames int               `json:"total_games"`
	TotalWins  int               `json:"total_wins"`
	WinRate    float64           `json:"win_rate"`
}
