package analysis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minsu-kwon/boardsense/internal/accuracy"
)

// Engine socket message types. Every frame in either direction carries a
// "type" discriminator; inbound frames are decoded into a closed union and
// validated before the rest of the system sees them.

var (
	ErrUnknownMessageType = errors.New("analysis: unknown message type")
	ErrMalformedMessage   = errors.New("analysis: malformed message")
)

// Settings travels with every analyze request.
type Settings struct {
	MultiPV     int `json:"multiPv"`
	PlayerElo   int `json:"playerElo"`
	OpponentElo int `json:"opponentElo"`
}

// AnalyzeRequest asks the engine for suggestions on one position.
type AnalyzeRequest struct {
	Type        string   `json:"type"` // always "analyze"
	RequestID   string   `json:"requestId"`
	Ply         int      `json:"ply"`
	MoveHistory []string `json:"moveHistory"`
	FEN         string   `json:"fen"`
	Settings    Settings `json:"settings"`
}

// PingRequest keeps the socket alive.
type PingRequest struct {
	Type string `json:"type"` // always "ping"
}

// Inbound is the closed set of frames the engine may send.
type Inbound interface {
	inbound()
}

// ResultMessage carries one completed analysis for the echoed ply.
type ResultMessage struct {
	RequestID   string         `json:"requestId"`
	Ply         int            `json:"ply"`
	Suggestions []Suggestion   `json:"suggestions"`
	ChosenIndex int            `json:"chosenIndex"`
	Accuracy    []accuracy.Ply `json:"accuracyPerPly"`
}

// ErrorMessage reports a failed request.
type ErrorMessage struct {
	RequestID string `json:"requestId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// PongMessage answers a ping.
type PongMessage struct{}

func (*ResultMessage) inbound() {}
func (*ErrorMessage) inbound()  {}
func (*PongMessage) inbound()   {}

type inboundEnvelope struct {
	Type string `json:"type"`
}

// DecodeInbound parses and validates one inbound frame.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch env.Type {
	case "analysis_result":
		var msg ResultMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if err := msg.validate(); err != nil {
			return nil, err
		}
		return &msg, nil
	case "error":
		var msg ErrorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &msg, nil
	case "pong":
		return &PongMessage{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

func (m *ResultMessage) validate() error {
	if m.RequestID == "" {
		return fmt.Errorf("%w: result without requestId", ErrMalformedMessage)
	}
	if m.Ply < 0 {
		return fmt.Errorf("%w: negative ply %d", ErrMalformedMessage, m.Ply)
	}
	for i, s := range m.Suggestions {
		if s.Move == "" {
			return fmt.Errorf("%w: suggestion %d without move", ErrMalformedMessage, i)
		}
	}
	return nil
}
