package feedback

import (
	"fmt"

	"github.com/minsu-kwon/boardsense/internal/analysis"
	"github.com/minsu-kwon/boardsense/internal/board"
)

// Label classifies how the played move relates to the suggestion list.
type Label string

const (
	LabelMatched  Label = "matched"
	LabelUnlisted Label = "unlisted"
)

// Feedback describes one played move against the analysis that preceded it.
// Rank and LossCP are only meaningful for matched moves.
type Feedback struct {
	Label      Label
	PlayedMove string
	Side       board.Color
	Rank       int
	LossCP     int
	Message    string
}

// Compose compares a just-played UCI move against the snapshot's suggestion
// list. Matching is an exact string comparison, promotion letter included.
// Loss is measured against the rank-1 suggestion and oriented to the mover:
// white loses when the picked score is below the best, black when above.
// Descriptive only; the snapshot is never touched.
func Compose(snap *analysis.Snapshot, played string, side board.Color) Feedback {
	fb := Feedback{Label: LabelUnlisted, PlayedMove: played, Side: side}
	if snap == nil || len(snap.Suggestions) == 0 {
		fb.Message = fmt.Sprintf("%s is not among the analyzed moves", played)
		return fb
	}

	best := snap.Suggestions[0]
	for _, sug := range snap.Suggestions {
		if sug.Move != played {
			continue
		}
		loss := best.ScoreCP - sug.ScoreCP
		if side == board.Black {
			loss = sug.ScoreCP - best.ScoreCP
		}
		if loss < 0 {
			loss = 0
		}
		fb.Label = LabelMatched
		fb.Rank = sug.Rank
		fb.LossCP = loss
		fb.Message = describeMatch(sug.Rank, loss)
		return fb
	}

	fb.Message = fmt.Sprintf("%s is not among the analyzed moves", played)
	return fb
}

func describeMatch(rank, loss int) string {
	if rank == 1 {
		return "best move"
	}
	return fmt.Sprintf("rank %d, %d cp behind the best move", rank, loss)
}
