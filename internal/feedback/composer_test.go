package feedback

import (
	"testing"

	"github.com/minsu-kwon/boardsense/internal/analysis"
	"github.com/minsu-kwon/boardsense/internal/board"
)

func whiteSnapshot() *analysis.Snapshot {
	return &analysis.Snapshot{
		Ply:        2,
		SideToMove: board.White,
		Suggestions: []analysis.Suggestion{
			{Rank: 1, Move: "g1f3", ScoreCP: 40},
			{Rank: 2, Move: "f1c4", ScoreCP: 25},
			{Rank: 3, Move: "b1c3", ScoreCP: 10},
		},
	}
}

func TestCompose_BestMoveHasZeroLoss(t *testing.T) {
	fb := Compose(whiteSnapshot(), "g1f3", board.White)
	if fb.Label != LabelMatched || fb.Rank != 1 || fb.LossCP != 0 {
		t.Fatalf("got %+v, want matched rank 1 loss 0", fb)
	}
}

func TestCompose_LowerRankCarriesLoss(t *testing.T) {
	fb := Compose(whiteSnapshot(), "b1c3", board.White)
	if fb.Label != LabelMatched || fb.Rank != 3 {
		t.Fatalf("got %+v, want matched rank 3", fb)
	}
	if fb.LossCP != 30 {
		t.Fatalf("LossCP = %d, want 30", fb.LossCP)
	}
}

func TestCompose_BlackLossIsOrientedToMover(t *testing.T) {
	// Scores are from white's point of view, so for black a higher picked
	// score is the loss.
	snap := &analysis.Snapshot{
		Ply:        3,
		SideToMove: board.Black,
		Suggestions: []analysis.Suggestion{
			{Rank: 1, Move: "e7e5", ScoreCP: -20},
			{Rank: 2, Move: "c7c5", ScoreCP: 15},
		},
	}
	fb := Compose(snap, "c7c5", board.Black)
	if fb.LossCP != 35 {
		t.Fatalf("LossCP = %d, want 35", fb.LossCP)
	}
}

func TestCompose_LossNeverNegative(t *testing.T) {
	snap := &analysis.Snapshot{
		Suggestions: []analysis.Suggestion{
			{Rank: 1, Move: "g1f3", ScoreCP: 10},
			{Rank: 2, Move: "d2d4", ScoreCP: 30},
		},
	}
	fb := Compose(snap, "d2d4", board.White)
	if fb.LossCP != 0 {
		t.Fatalf("LossCP = %d, want clamped to 0", fb.LossCP)
	}
}

func TestCompose_UnlistedMove(t *testing.T) {
	fb := Compose(whiteSnapshot(), "a2a3", board.White)
	if fb.Label != LabelUnlisted {
		t.Fatalf("label = %s, want unlisted", fb.Label)
	}
	if fb.Rank != 0 || fb.LossCP != 0 {
		t.Fatalf("unlisted feedback must carry no rank or loss: %+v", fb)
	}
}

func TestCompose_PromotionLetterMustMatchExactly(t *testing.T) {
	snap := &analysis.Snapshot{
		Suggestions: []analysis.Suggestion{
			{Rank: 1, Move: "a7a8q", ScoreCP: 500},
		},
	}
	if fb := Compose(snap, "a7a8n", board.White); fb.Label != LabelUnlisted {
		t.Fatalf("underpromotion matched the queening suggestion: %+v", fb)
	}
	if fb := Compose(snap, "a7a8q", board.White); fb.Label != LabelMatched {
		t.Fatalf("exact promotion move did not match: %+v", fb)
	}
}

func TestCompose_NilSnapshot(t *testing.T) {
	fb := Compose(nil, "e2e4", board.White)
	if fb.Label != LabelUnlisted {
		t.Fatalf("label = %s, want unlisted", fb.Label)
	}
}
