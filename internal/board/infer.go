package board

// InferMove diffs two full placements into a single best-effort move. A nil
// result means the diff could not be explained by one move; callers must treat
// that as "uncertain", never as "no move occurred".
//
// Castling is reported as the king's relocation only; the rook's matching move
// is recognised but not surfaced. En passant and similar anomalies, where the
// moved piece has no identity match on its target square, fall back to pairing
// a newly occupied square against a newly vacated one.
func InferMove(before, after Placement) *InferredMove {
	changed := make(map[Square]struct{})
	for sq, pc := range before {
		if after[sq] != pc {
			changed[sq] = struct{}{}
		}
	}
	for sq, pc := range after {
		if before[sq] != pc {
			changed[sq] = struct{}{}
		}
	}
	if len(changed) == 0 {
		return nil
	}

	squares := sortedSquares(changed)

	var froms, tos []Square
	for _, sq := range squares {
		if _, occupied := before[sq]; occupied {
			if after[sq] != before[sq] {
				froms = append(froms, sq)
			}
		}
		if pc, occupied := after[sq]; occupied {
			if before[sq] != pc {
				tos = append(tos, sq)
			}
		}
	}

	if mv := pairByIdentity(before, after, froms, tos, changed); mv != nil {
		return mv
	}
	return pairByVacancy(before, after, froms, tos, changed)
}

// pairByIdentity finds a (from,to) pair where the piece that left "from" is
// the piece now standing on "to". King pairings are tried first so that a
// castling diff reports the king's move rather than the rook's.
func pairByIdentity(before, after Placement, froms, tos []Square, changed map[Square]struct{}) *InferredMove {
	try := func(kingsOnly bool) *InferredMove {
		for _, from := range froms {
			mover := before[from]
			if kingsOnly != (mover.Type == King) {
				continue
			}
			for _, to := range tos {
				if to == from {
					continue
				}
				landed := after[to]
				if landed.Color != mover.Color {
					continue
				}
				var promotion PieceType
				switch {
				case landed.Type == mover.Type:
					// plain move or capture
				case mover.Type == Pawn && isPromotionRank(to, mover.Color):
					promotion = landed.Type
				default:
					continue
				}
				mv := &InferredMove{From: from, To: to, Promotion: promotion, MovedColor: mover.Color}
				if explainsDiff(before, after, mv, changed) {
					return mv
				}
			}
		}
		return nil
	}
	if mv := try(true); mv != nil {
		return mv
	}
	return try(false)
}

// pairByVacancy handles diffs with no identity match: a square that gained an
// occupant out of nowhere against a square whose occupant vanished without
// reappearing. Used for en passant-shaped anomalies. Requires the pairing to
// be unique, otherwise the diff stays unexplained.
func pairByVacancy(before, after Placement, froms, tos []Square, changed map[Square]struct{}) *InferredMove {
	var gained []Square
	for _, sq := range tos {
		if _, was := before[sq]; !was {
			gained = append(gained, sq)
		}
	}
	var lost []Square
	for _, sq := range froms {
		if _, still := after[sq]; !still {
			if !reappearsElsewhere(before[sq], before, after, changed) {
				lost = append(lost, sq)
			}
		}
	}
	if len(gained) != 1 {
		return nil
	}
	to := gained[0]
	landed := after[to]

	var from Square
	matched := 0
	for _, sq := range lost {
		if before[sq].Color != landed.Color {
			continue
		}
		from = sq
		matched++
	}
	if matched != 1 {
		return nil
	}
	var promotion PieceType
	if before[from].Type == Pawn && landed.Type != Pawn && isPromotionRank(to, landed.Color) {
		promotion = landed.Type
	}
	mv := &InferredMove{From: from, To: to, Promotion: promotion, MovedColor: landed.Color}
	if !explainsDiff(before, after, mv, changed) {
		return nil
	}
	return mv
}

// explainsDiff checks that no changed square is left unaccounted for by the
// candidate move. Two remainders are tolerated: a same-color rook shuffle
// alongside a king move (castling) and a vanished enemy pawn alongside a pawn
// landing on a previously empty square (en passant).
func explainsDiff(before, after Placement, mv *InferredMove, changed map[Square]struct{}) bool {
	rest := make(map[Square]struct{})
	for sq := range changed {
		if sq == mv.From || sq == mv.To {
			continue
		}
		rest[sq] = struct{}{}
	}
	if len(rest) == 0 {
		return true
	}
	mover := before[mv.From]
	if mover.Type == Pawn && len(rest) == 1 {
		var victim Square
		for sq := range rest {
			victim = sq
		}
		_, toWasOccupied := before[mv.To]
		bp, hadPiece := before[victim]
		_, stillThere := after[victim]
		return !toWasOccupied && hadPiece && !stillThere &&
			bp == (Piece{Color: mv.MovedColor.Opposite(), Type: Pawn})
	}
	if mover.Type != King || len(rest) != 2 {
		return false
	}
	var vacated, landed Square
	var sawVacated, sawLanded bool
	for sq := range rest {
		bp, wasThere := before[sq]
		ap, isThere := after[sq]
		switch {
		case wasThere && !isThere && bp == (Piece{Color: mv.MovedColor, Type: Rook}):
			vacated, sawVacated = sq, true
		case isThere && !wasThere && ap == (Piece{Color: mv.MovedColor, Type: Rook}):
			landed, sawLanded = sq, true
		default:
			return false
		}
	}
	return sawVacated && sawLanded && vacated != landed
}

func reappearsElsewhere(pc Piece, before, after Placement, changed map[Square]struct{}) bool {
	for sq := range changed {
		if ap, ok := after[sq]; ok && ap == pc {
			if bp, was := before[sq]; !was || bp != pc {
				return true
			}
		}
	}
	return false
}

func isPromotionRank(sq Square, c Color) bool {
	if c == White {
		return sq.Rank() == 7
	}
	return sq.Rank() == 0
}
