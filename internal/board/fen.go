package board

import (
	"strconv"
	"strings"
)

// EncodeFEN builds a FEN-shaped position string from a placement and side to
// move.
//
// Castling rights are a deliberate heuristic: a side keeps a right whenever
// its king stands on the home square and the matching corner rook is present
// in the current placement. No move history is tracked, so a king or rook
// that left home and returned regains its rights. The consuming engine
// tolerates this. En passant is always "-" and the halfmove/fullmove counters
// are fixed placeholders for the same reason.
func EncodeFEN(placement Placement, side Color) string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc, ok := placement[SquareAt(file, rank)]
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteByte(pc.FENChar())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}

	b.WriteByte(' ')
	b.WriteString(string(side))
	b.WriteByte(' ')
	b.WriteString(castlingField(placement))
	b.WriteString(" - 0 1")
	return b.String()
}

func castlingField(placement Placement) string {
	var rights strings.Builder
	if placement["e1"] == (Piece{Color: White, Type: King}) {
		if placement["h1"] == (Piece{Color: White, Type: Rook}) {
			rights.WriteByte('K')
		}
		if placement["a1"] == (Piece{Color: White, Type: Rook}) {
			rights.WriteByte('Q')
		}
	}
	if placement["e8"] == (Piece{Color: Black, Type: King}) {
		if placement["h8"] == (Piece{Color: Black, Type: Rook}) {
			rights.WriteByte('k')
		}
		if placement["a8"] == (Piece{Color: Black, Type: Rook}) {
			rights.WriteByte('q')
		}
	}
	if rights.Len() == 0 {
		return "-"
	}
	return rights.String()
}
