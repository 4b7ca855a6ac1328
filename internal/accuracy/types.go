package accuracy

import (
	"strings"

	"github.com/minsu-kwon/boardsense/internal/board"
)

// Classification is the per-move quality bucket, best to worst.
type Classification string

const (
	Brilliant  Classification = "brilliant"
	Great      Classification = "great"
	Best       Classification = "best"
	Excellent  Classification = "excellent"
	Good       Classification = "good"
	Book       Classification = "book"
	Inaccuracy Classification = "inaccuracy"
	Mistake    Classification = "mistake"
	Blunder    Classification = "blunder"
)

// Classifications lists every bucket in rank order.
var Classifications = []Classification{
	Brilliant, Great, Best, Excellent, Good, Book, Inaccuracy, Mistake, Blunder,
}

func (c Classification) Valid() bool {
	for _, known := range Classifications {
		if c == known {
			return true
		}
	}
	return false
}

// ParseClassification normalises an engine-provided bucket name.
func ParseClassification(s string) (Classification, bool) {
	c := Classification(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c, true
	}
	return "", false
}

// Ply is one move's classification. Immutable once inserted into a cache;
// the ply index is its unique key.
type Ply struct {
	PlyIndex       int            `json:"ply_index"`
	Side           board.Color    `json:"side"`
	PlayedMove     string         `json:"played_move"`
	BestMove       string         `json:"best_move"`
	EvalBefore     int            `json:"eval_before"`
	EvalAfter      int            `json:"eval_after"`
	LossCP         int            `json:"loss_cp"`
	Accuracy       float64        `json:"accuracy"`
	Classification Classification `json:"classification"`
}

// Summary is an on-demand aggregate over a (possibly side-filtered) set of
// plies. Mean is meaningless when Plies is zero.
type Summary struct {
	Plies  int
	Mean   float64
	Counts map[Classification]int
}

// Trend compares two successive accepted aggregates.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
	TrendNone Trend = "none"
)
