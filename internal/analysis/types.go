package analysis

import (
	"github.com/minsu-kwon/boardsense/internal/accuracy"
	"github.com/minsu-kwon/boardsense/internal/board"
)

// Suggestion is one engine-ranked candidate move. Score is centipawns from
// the engine's point of view; Mate, when set, supersedes it.
type Suggestion struct {
	Rank    int      `json:"rank"`
	Move    string   `json:"move"`
	ScoreCP int      `json:"scoreCp"`
	Mate    *int     `json:"mate,omitempty"`
	PV      []string `json:"pv,omitempty"`
	Flags   []string `json:"flags,omitempty"`
	Safety  string   `json:"safety,omitempty"`
	Label   string   `json:"label,omitempty"`
}

// Snapshot is the latest accepted analysis result, bound to one ply. It is
// replaced wholesale on acceptance and never merged field by field.
type Snapshot struct {
	RequestID   string
	Ply         int
	SideToMove  board.Color
	Suggestions []Suggestion
	ChosenIndex int
	Accuracy    []accuracy.Ply
}

// Clone returns a frozen copy safe to hand to readers while the active
// snapshot may be replaced underneath them.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Suggestions = make([]Suggestion, len(s.Suggestions))
	copy(out.Suggestions, s.Suggestions)
	for i := range out.Suggestions {
		sug := &out.Suggestions[i]
		sug.PV = append([]string(nil), sug.PV...)
		sug.Flags = append([]string(nil), sug.Flags...)
		if sug.Mate != nil {
			m := *sug.Mate
			sug.Mate = &m
		}
	}
	out.Accuracy = append([]accuracy.Ply(nil), s.Accuracy...)
	return &out
}

// Best returns the rank-1 suggestion, or nil when the list is empty.
func (s *Snapshot) Best() *Suggestion {
	if s == nil || len(s.Suggestions) == 0 {
		return nil
	}
	return &s.Suggestions[0]
}

// Chosen returns the suggestion at the displayed selection index.
func (s *Snapshot) Chosen() *Suggestion {
	if s == nil || len(s.Suggestions) == 0 {
		return nil
	}
	if s.ChosenIndex < 0 || s.ChosenIndex >= len(s.Suggestions) {
		return &s.Suggestions[0]
	}
	return &s.Suggestions[s.ChosenIndex]
}
