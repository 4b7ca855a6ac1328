package accuracy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/minsu-kwon/boardsense/internal/board"
)

// Report is the archive row for one finished game.
type Report struct {
	GameID       string
	PlayerColor  board.Color
	OpeningName  string
	OpeningECO   string
	Timeline     []string
	PlayerMean   float64
	OpponentMean float64
	Counts       map[Classification]int
	StartedAt    time.Time
	EndedAt      time.Time
}

// Repository archives finished-game accuracy reports in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveReport upserts one finished-game report keyed by game id.
func (r *Repository) SaveReport(ctx context.Context, rep *Report) error {
	if r == nil || r.db == nil || rep == nil {
		return nil
	}

	timelineRaw, _ := json.Marshal(rep.Timeline)
	countsRaw, _ := json.Marshal(rep.Counts)
	duration := rep.EndedAt.Sub(rep.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO game_reports (
        game_id, player_color, opening_name, opening_eco,
        moves_uci, player_mean, opponent_mean, classification_counts,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
      ) ON CONFLICT (game_id) DO UPDATE SET
        player_color=EXCLUDED.player_color,
        opening_name=EXCLUDED.opening_name,
        opening_eco=EXCLUDED.opening_eco,
        moves_uci=EXCLUDED.moves_uci,
        player_mean=EXCLUDED.player_mean,
        opponent_mean=EXCLUDED.opponent_mean,
        classification_counts=EXCLUDED.classification_counts,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		rep.GameID,
		string(rep.PlayerColor),
		strings.TrimSpace(rep.OpeningName),
		strings.TrimSpace(rep.OpeningECO),
		string(timelineRaw),
		rep.PlayerMean,
		rep.OpponentMean,
		string(countsRaw),
		rep.StartedAt,
		rep.EndedAt,
		duration,
	)
	return err
}
