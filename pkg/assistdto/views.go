package assistdto

import "time"

// Frozen view types handed to rendering and opening-UI collaborators. They
// carry copies only; consumers never see live core state.

// SuggestionView is one engine candidate as shown to the user.
type SuggestionView struct {
	Rank    int      `json:"rank"`
	MoveUCI string   `json:"moveUci"`
	ScoreCP int      `json:"scoreCp"`
	Mate    *int     `json:"mate,omitempty"`
	PV      []string `json:"pv,omitempty"`
	Label   string   `json:"label,omitempty"`
	Safety  string   `json:"safety,omitempty"`
}

// AnalysisView is the active suggestion list for one ply.
type AnalysisView struct {
	Ply         int              `json:"ply"`
	SideToMove  string           `json:"sideToMove"`
	Suggestions []SuggestionView `json:"suggestions"`
	ChosenIndex int              `json:"chosenIndex"`
}

// FeedbackView describes the quality of the last played move.
type FeedbackView struct {
	Label      string `json:"label"`
	PlayedMove string `json:"playedMove"`
	Rank       int    `json:"rank,omitempty"`
	LossCP     int    `json:"lossCp,omitempty"`
	Message    string `json:"message"`
}

// AccuracyView is the running aggregate for one side.
type AccuracyView struct {
	Mean   float64        `json:"mean"`
	Plies  int            `json:"plies"`
	Counts map[string]int `json:"counts"`
	Trend  string         `json:"trend"`
}

// OpeningView reports the detected opening and the counter-opening flow.
type OpeningView struct {
	Name          string   `json:"name"`
	ECO           string   `json:"eco,omitempty"`
	MatchedPly    int      `json:"matchedPly"`
	Exact         bool     `json:"exact"`
	CounterState  string   `json:"counterState"`
	CounterLines  []string `json:"counterLines,omitempty"`
	SuggestedMove string   `json:"suggestedMove,omitempty"`
}

// StateView is the full payload pushed to the rendering collaborator.
type StateView struct {
	GameID   string        `json:"gameId"`
	Timeline []string      `json:"timeline"`
	FEN      string        `json:"fen"`
	Analysis *AnalysisView `json:"analysis,omitempty"`
	Feedback *FeedbackView `json:"feedback,omitempty"`
	Accuracy *AccuracyView `json:"accuracy,omitempty"`
	Opening  *OpeningView  `json:"opening,omitempty"`
	At       time.Time     `json:"at"`
}

// Notice is a non-blocking message for the user, such as a transport failure.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
