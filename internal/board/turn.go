package board

// TurnSignals carries everything the page could tell us about whose turn it
// is. Every field except Previous is optional; host pages expose different
// subsets depending on game type (timed, bot, correspondence).
type TurnSignals struct {
	// Indicator is an explicit side-bound signal such as an active clock.
	// When present it is trusted unconditionally, even against parity.
	Indicator *Color
	// MoveCount is an independently sourced total move count.
	MoveCount *int
	// JustMoved is the color InferMove reported as having moved.
	JustMoved *Color
	// Previous is the side resolved on the prior sample, if any.
	Previous *Color
}

// ResolveTurn walks the signal chain in strict priority order and returns the
// first answer. With no signal at all it retains the previous side, defaulting
// to white only on the very first sample of a game.
func ResolveTurn(sig TurnSignals) Color {
	if sig.Indicator != nil && sig.Indicator.Valid() {
		return *sig.Indicator
	}
	if sig.MoveCount != nil && *sig.MoveCount >= 0 {
		if *sig.MoveCount%2 == 0 {
			return White
		}
		return Black
	}
	if sig.JustMoved != nil && sig.JustMoved.Valid() {
		return sig.JustMoved.Opposite()
	}
	if sig.Previous != nil && sig.Previous.Valid() {
		return *sig.Previous
	}
	return White
}
