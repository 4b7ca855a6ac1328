package board

import "testing"

func applyMoves(t *testing.T, p Placement, steps ...func(Placement)) Placement {
	t.Helper()
	out := p.Clone()
	for _, step := range steps {
		step(out)
	}
	return out
}

func move(from, to Square) func(Placement) {
	return func(p Placement) {
		pc := p[from]
		delete(p, from)
		p[to] = pc
	}
}

func remove(sq Square) func(Placement) {
	return func(p Placement) { delete(p, sq) }
}

func place(sq Square, pc Piece) func(Placement) {
	return func(p Placement) { p[sq] = pc }
}

func TestInferMove_SimplePawnPush(t *testing.T) {
	before := StartingPlacement()
	after := applyMoves(t, before, move("e2", "e4"))

	mv := InferMove(before, after)
	if mv == nil {
		t.Fatalf("expected a move, got nil")
	}
	if mv.From != "e2" || mv.To != "e4" || mv.MovedColor != White {
		t.Fatalf("unexpected inference: %+v", mv)
	}
	if mv.UCI() != "e2e4" {
		t.Fatalf("uci: %q", mv.UCI())
	}
}

func TestInferMove_CaptureFromIsMoverOrigin(t *testing.T) {
	before := StartingPlacement()
	before = applyMoves(t, before, move("e2", "e4"), move("d7", "d5"))
	after := applyMoves(t, before, remove("d5"), move("e4", "d5"))

	mv := InferMove(before, after)
	if mv == nil {
		t.Fatalf("expected a move, got nil")
	}
	if mv.From != "e4" {
		t.Fatalf("capture must report the mover's origin, got from=%s", mv.From)
	}
	if mv.To != "d5" || mv.MovedColor != White {
		t.Fatalf("unexpected inference: %+v", mv)
	}
}

func TestInferMove_CastlingReportsKingOnly(t *testing.T) {
	before := StartingPlacement()
	before = applyMoves(t, before, remove("f1"), remove("g1"))
	after := applyMoves(t, before, move("e1", "g1"), move("h1", "f1"))

	mv := InferMove(before, after)
	if mv == nil {
		t.Fatalf("expected a move, got nil")
	}
	if mv.From != "e1" || mv.To != "g1" {
		t.Fatalf("castling should surface the king move, got %s%s", mv.From, mv.To)
	}
}

func TestInferMove_QueensideCastling(t *testing.T) {
	before := StartingPlacement()
	before = applyMoves(t, before, remove("b8"), remove("c8"), remove("d8"))
	after := applyMoves(t, before, move("e8", "c8"), move("a8", "d8"))

	mv := InferMove(before, after)
	if mv == nil {
		t.Fatalf("expected a move, got nil")
	}
	if mv.From != "e8" || mv.To != "c8" || mv.MovedColor != Black {
		t.Fatalf("unexpected inference: %+v", mv)
	}
}

func TestInferMove_EnPassant(t *testing.T) {
	before := StartingPlacement()
	before = applyMoves(t, before, move("e2", "e5"), move("d7", "d5"))
	after := applyMoves(t, before, move("e5", "d6"), remove("d5"))

	mv := InferMove(before, after)
	if mv == nil {
		t.Fatalf("expected a move, got nil")
	}
	if mv.From != "e5" || mv.To != "d6" || mv.MovedColor != White {
		t.Fatalf("unexpected inference: %+v", mv)
	}
}

func TestInferMove_Promotion(t *testing.T) {
	before := Placement{
		"a7": {Color: White, Type: Pawn},
		"e1": {Color: White, Type: King},
		"e8": {Color: Black, Type: King},
	}
	after := applyMoves(t, before, remove("a7"), place("a8", Piece{Color: White, Type: Queen}))

	mv := InferMove(before, after)
	if mv == nil {
		t.Fatalf("expected a move, got nil")
	}
	if mv.From != "a7" || mv.To != "a8" || mv.Promotion != Queen {
		t.Fatalf("unexpected inference: %+v", mv)
	}
	if mv.UCI() != "a7a8q" {
		t.Fatalf("uci: %q", mv.UCI())
	}
}

func TestInferMove_NoChangeReturnsNil(t *testing.T) {
	p := StartingPlacement()
	if mv := InferMove(p, p.Clone()); mv != nil {
		t.Fatalf("identical placements must infer nil, got %+v", mv)
	}
}

func TestInferMove_GlitchDiffReturnsNil(t *testing.T) {
	before := StartingPlacement()
	// Three unrelated pieces vanish at once, as seen during animation storms.
	after := applyMoves(t, before, remove("a1"), remove("d2"), remove("g7"))

	if mv := InferMove(before, after); mv != nil {
		t.Fatalf("unexplainable diff must infer nil, got %+v", mv)
	}
}

func TestInferMove_MoveWithVanishedPieceReturnsNil(t *testing.T) {
	before := StartingPlacement()
	// A real pawn push overlaps with a sprite dropout on another square.
	after := applyMoves(t, before, move("e2", "e4"), remove("b1"))

	if mv := InferMove(before, after); mv != nil {
		t.Fatalf("partially explained diff must infer nil, got %+v", mv)
	}
}

func TestInferMove_TwoSimultaneousMovesReturnsNil(t *testing.T) {
	before := StartingPlacement()
	after := applyMoves(t, before, move("e2", "e4"), move("e7", "e5"))

	if mv := InferMove(before, after); mv != nil {
		t.Fatalf("two overlapping moves must infer nil, got %+v", mv)
	}
}
