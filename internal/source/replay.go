package source

import (
	"context"
	"fmt"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/minsu-kwon/boardsense/internal/board"
)

// ReplaySource plays a fixed UCI move list through a real game and emits the
// placement after each move, paced by a fixed interval. It stands in for the
// live page watcher during development and in tests.
type ReplaySource struct {
	moves    []string
	interval time.Duration
	ch       chan Sample
}

func NewReplaySource(moves []string, interval time.Duration) *ReplaySource {
	if interval <= 0 {
		interval = time.Second
	}
	return &ReplaySource{
		moves:    append([]string(nil), moves...),
		interval: interval,
		ch:       make(chan Sample, 1),
	}
}

func (r *ReplaySource) Samples() <-chan Sample {
	return r.ch
}

// Run emits the start position, then one sample per move until the list or
// the context ends.
func (r *ReplaySource) Run(ctx context.Context) error {
	defer close(r.ch)

	game := nchess.NewGame()
	notation := nchess.UCINotation{}

	if err := r.emit(ctx, game); err != nil {
		return err
	}
	for i, mv := range r.moves {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
		if err := game.PushNotationMove(mv, notation, nil); err != nil {
			return fmt.Errorf("replay move %q at ply %d: %w", mv, i, err)
		}
		if err := r.emit(ctx, game); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReplaySource) emit(ctx context.Context, game *nchess.Game) error {
	sample := Sample{
		Placement: placementFrom(game),
		At:        time.Now(),
	}
	turn := colorFrom(game.Position().Turn())
	sample.Turn = &turn

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r.ch <- sample:
		return nil
	}
}

func placementFrom(game *nchess.Game) board.Placement {
	placement := make(board.Placement)
	for sq, piece := range game.Position().Board().SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		placement[board.Square(sq.String())] = board.Piece{
			Color: colorFrom(piece.Color()),
			Type:  typeFrom(piece.Type()),
		}
	}
	return placement
}

func colorFrom(c nchess.Color) board.Color {
	if c == nchess.Black {
		return board.Black
	}
	return board.White
}

func typeFrom(t nchess.PieceType) board.PieceType {
	switch t {
	case nchess.King:
		return board.King
	case nchess.Queen:
		return board.Queen
	case nchess.Rook:
		return board.Rook
	case nchess.Bishop:
		return board.Bishop
	case nchess.Knight:
		return board.Knight
	default:
		return board.Pawn
	}
}
