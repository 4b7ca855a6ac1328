package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	EngineWSURL   string
	EngineBaseURL string
	OverlayURL    string

	RedisURL    string
	DatabaseURL string

	PlayerColor string

	PlayerElo   int
	OpponentElo int
	MultiPV     int

	SampleDelay time.Duration

	OpeningOverrideDir string

	ReplayMoves    []string
	ReplayInterval time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		PlayerColor:    "w",
		PlayerElo:      1500,
		OpponentElo:    1500,
		MultiPV:        5,
		SampleDelay:    150 * time.Millisecond,
		ReplayInterval: time.Second,
	}

	cfg.EngineWSURL = strings.TrimSpace(os.Getenv("ENGINE_WS_URL"))
	cfg.EngineBaseURL = strings.TrimSpace(os.Getenv("ENGINE_BASE_URL"))
	cfg.OverlayURL = strings.TrimSpace(os.Getenv("OVERLAY_BASE_URL"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("PLAYER_COLOR"))); v == "w" || v == "b" {
		cfg.PlayerColor = v
	}
	if v := strings.TrimSpace(os.Getenv("PLAYER_ELO")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PlayerElo = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("OPPONENT_ELO")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OpponentElo = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ASSIST_MULTIPV")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MultiPV = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ASSIST_SAMPLE_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SampleDelay = time.Duration(n) * time.Millisecond
		}
	}

	cfg.OpeningOverrideDir = strings.TrimSpace(os.Getenv("OPENING_OVERRIDE_DIR"))

	if v := strings.TrimSpace(os.Getenv("REPLAY_MOVES")); v != "" {
		for _, p := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			s := strings.TrimSpace(p)
			if s != "" {
				cfg.ReplayMoves = append(cfg.ReplayMoves, strings.ToLower(s))
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("REPLAY_INTERVAL_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReplayInterval = time.Duration(n) * time.Millisecond
		}
	}

	if cfg.EngineWSURL == "" {
		return nil, errors.New("ENGINE_WS_URL is required")
	}

	return cfg, nil
}
