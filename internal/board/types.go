package board

import (
	"sort"
	"strings"
	"time"
)

// Color identifies a side using FEN tokens.
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool { return c == White || c == Black }

// ParseColor accepts "w"/"b" and the long forms used by page scrapers.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return White, true
	case "b", "black":
		return Black, true
	default:
		return "", false
	}
}

// PieceType is the lowercase FEN letter of a piece kind.
type PieceType byte

const (
	Pawn   PieceType = 'p'
	Knight PieceType = 'n'
	Bishop PieceType = 'b'
	Rook   PieceType = 'r'
	Queen  PieceType = 'q'
	King   PieceType = 'k'
)

// Piece is one occupant of a square.
type Piece struct {
	Color Color
	Type  PieceType
}

// FENChar returns the single-letter FEN encoding, uppercase for white.
func (p Piece) FENChar() byte {
	if p.Color == White {
		return byte(p.Type) - 'a' + 'A'
	}
	return byte(p.Type)
}

// Square is algebraic notation, "a1".."h8".
type Square string

func (s Square) Valid() bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

func (s Square) File() int { return int(s[0] - 'a') }
func (s Square) Rank() int { return int(s[1] - '1') }

// SquareAt builds a square from zero-based file and rank indices.
func SquareAt(file, rank int) Square {
	return Square([]byte{byte('a' + file), byte('1' + rank)})
}

// Placement is a full-board occupancy map. At most one piece per square is
// guaranteed structurally.
type Placement map[Square]Piece

func (p Placement) Clone() Placement {
	out := make(Placement, len(p))
	for sq, pc := range p {
		out[sq] = pc
	}
	return out
}

func (p Placement) Equal(other Placement) bool {
	if len(p) != len(other) {
		return false
	}
	for sq, pc := range p {
		if other[sq] != pc {
			return false
		}
	}
	return true
}

// sortedSquares returns squares in a1..h8 scan order for deterministic diffs.
func sortedSquares(set map[Square]struct{}) []Square {
	out := make([]Square, 0, len(set))
	for sq := range set {
		out = append(out, sq)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank() != out[j].Rank() {
			return out[i].Rank() < out[j].Rank()
		}
		return out[i].File() < out[j].File()
	})
	return out
}

// StartingPlacement returns the standard initial position.
func StartingPlacement() Placement {
	p := make(Placement, 32)
	back := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := 0; f < 8; f++ {
		p[SquareAt(f, 0)] = Piece{Color: White, Type: back[f]}
		p[SquareAt(f, 1)] = Piece{Color: White, Type: Pawn}
		p[SquareAt(f, 6)] = Piece{Color: Black, Type: Pawn}
		p[SquareAt(f, 7)] = Piece{Color: Black, Type: back[f]}
	}
	return p
}

// Snapshot is one sampled position. Immutable once produced.
type Snapshot struct {
	Placement  Placement
	SideToMove Color
	Ply        int
	Timestamp  time.Time
}

// InferredMove is the best-effort result of diffing two placements.
type InferredMove struct {
	From       Square
	To         Square
	Promotion  PieceType // zero when no promotion
	MovedColor Color
}

// UCI renders the move as from+to+optional promotion letter.
func (m InferredMove) UCI() string {
	s := string(m.From) + string(m.To)
	if m.Promotion != 0 {
		s += string(rune(m.Promotion))
	}
	return s
}
