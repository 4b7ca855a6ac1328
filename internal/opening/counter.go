package opening

import "errors"

var (
	ErrNoCounterPending = errors.New("opening: no counter choice pending")
	ErrUnknownCounter   = errors.New("opening: unknown counter line")
)

// CounterState names the phases of the counter-opening flow for one game.
type CounterState string

const (
	CounterNone     CounterState = "none"
	CounterDetected CounterState = "detected"
	CounterAwaiting CounterState = "awaiting-counter-choice"
	CounterSelected CounterState = "selected"
	CounterDeclined CounterState = "declined"
)

// CounterTracker drives the counter-opening flow: once an opponent opening is
// recognized and it is the player's turn to respond, the tracker asks for a
// counter line at most once per game. A selection or a decline is final until
// Reset.
type CounterTracker struct {
	state    CounterState
	detected *Record
	chosen   *CounterLine
}

func NewCounterTracker() *CounterTracker {
	return &CounterTracker{state: CounterNone}
}

// Observe feeds the latest match into the tracker. responding reports whether
// the player is about to move against the detected opening. The returned
// state is the state after the observation.
func (t *CounterTracker) Observe(match *MatchResult, responding bool) CounterState {
	if t.state == CounterSelected || t.state == CounterDeclined {
		return t.state
	}
	if match == nil || match.Record == nil {
		return t.state
	}
	t.detected = match.Record
	if t.state == CounterNone {
		t.state = CounterDetected
	}
	if t.state == CounterDetected && responding && len(t.detected.Counters) > 0 {
		t.state = CounterAwaiting
	}
	return t.state
}

// Select picks a counter line by name while a choice is pending.
func (t *CounterTracker) Select(name string) (*CounterLine, error) {
	if t.state != CounterAwaiting {
		return nil, ErrNoCounterPending
	}
	for i := range t.detected.Counters {
		if t.detected.Counters[i].Name == name {
			t.chosen = &t.detected.Counters[i]
			t.state = CounterSelected
			return t.chosen, nil
		}
	}
	return nil, ErrUnknownCounter
}

// Decline dismisses a pending choice for the rest of the game.
func (t *CounterTracker) Decline() error {
	if t.state != CounterAwaiting {
		return ErrNoCounterPending
	}
	t.state = CounterDeclined
	return nil
}

// SuggestedMove returns the next move of the chosen line after the timeline,
// or "" when no line is chosen, the line has ended, or the game left it.
func (t *CounterTracker) SuggestedMove(timeline []string) string {
	if t.chosen == nil || len(timeline) >= len(t.chosen.Line) {
		return ""
	}
	for i, mv := range timeline {
		if t.chosen.Line[i] != mv {
			return ""
		}
	}
	return t.chosen.Line[len(timeline)]
}

// Options lists the counter lines on offer while a choice is pending.
func (t *CounterTracker) Options() []CounterLine {
	if t.state != CounterAwaiting {
		return nil
	}
	return t.detected.Counters
}

func (t *CounterTracker) State() CounterState { return t.state }

func (t *CounterTracker) Detected() *Record { return t.detected }

func (t *CounterTracker) Chosen() *CounterLine { return t.chosen }

// Reset returns the tracker to its initial state for a new game.
func (t *CounterTracker) Reset() {
	t.state = CounterNone
	t.detected = nil
	t.chosen = nil
}
