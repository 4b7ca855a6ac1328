package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minsu-kwon/boardsense/internal/board"
	"github.com/minsu-kwon/boardsense/internal/obslog"
)

// Status of the correlator's current logical request.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusAwaiting Status = "awaiting"
)

// Correlator issues tagged analysis requests and owns the active result
// snapshot. A new request supersedes the previous one logically but never
// cancels it in flight; a response is accepted only when its echoed ply
// still equals the ply current at arrival. All methods are called from the
// session loop, which serializes access.
type Correlator struct {
	transport Transport
	settings  Settings

	status     Status
	currentPly int
	requestID  string
	active     *Snapshot
}

func NewCorrelator(transport Transport, settings Settings) *Correlator {
	return &Correlator{
		transport: transport,
		settings:  settings,
		status:    StatusIdle,
	}
}

// Request issues one analysis request for the position at ply. A transport
// error reverts the correlator to idle; the next position change is the only
// retry trigger.
func (c *Correlator) Request(ctx context.Context, ply int, side board.Color, timeline []string, fen string) error {
	id := uuid.NewString()
	c.requestID = id
	c.currentPly = ply
	c.status = StatusAwaiting

	req := &AnalyzeRequest{
		RequestID:   id,
		Ply:         ply,
		MoveHistory: append([]string(nil), timeline...),
		FEN:         fen,
		Settings:    c.settings,
	}
	if err := c.transport.Send(ctx, req); err != nil {
		c.status = StatusIdle
		obslog.L().Warn("analysis_request_failed",
			zap.String("request_id", id),
			zap.Int("ply", ply),
			zap.Error(err))
		return fmt.Errorf("send analysis request: %w", err)
	}

	obslog.L().Debug("analysis_request_sent",
		zap.String("request_id", id),
		zap.Int("ply", ply),
		zap.String("side", string(side)))
	return nil
}

// HandleResult applies one engine result. Returns the new active snapshot
// when accepted, nil when the result was stale and dropped.
func (c *Correlator) HandleResult(msg *ResultMessage, side board.Color) *Snapshot {
	if msg.Ply != c.currentPly {
		obslog.L().Debug("analysis_result_stale",
			zap.String("request_id", msg.RequestID),
			zap.Int("echoed_ply", msg.Ply),
			zap.Int("current_ply", c.currentPly))
		return nil
	}

	chosen := msg.ChosenIndex
	if n := len(msg.Suggestions); n == 0 {
		chosen = 0
	} else {
		if chosen < 0 {
			chosen = 0
		}
		if chosen >= n {
			chosen = n - 1
		}
	}

	snap := &Snapshot{
		RequestID:   msg.RequestID,
		Ply:         msg.Ply,
		SideToMove:  side,
		Suggestions: msg.Suggestions,
		ChosenIndex: chosen,
		Accuracy:    msg.Accuracy,
	}
	c.active = snap
	c.status = StatusIdle

	obslog.L().Debug("analysis_result_accepted",
		zap.String("request_id", msg.RequestID),
		zap.Int("ply", msg.Ply),
		zap.Int("suggestions", len(msg.Suggestions)))
	return snap.Clone()
}

// HandleError reverts to idle. The failure is surfaced by the caller as a
// non-blocking notice; nothing is retried here.
func (c *Correlator) HandleError(msg *ErrorMessage) {
	c.status = StatusIdle
	obslog.L().Warn("analysis_error",
		zap.String("request_id", msg.RequestID),
		zap.String("code", msg.Code),
		zap.String("message", msg.Message))
}

// Select moves the displayed selection index, clamped to the suggestion list.
func (c *Correlator) Select(index int) {
	if c.active == nil || len(c.active.Suggestions) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(c.active.Suggestions) {
		index = len(c.active.Suggestions) - 1
	}
	c.active.ChosenIndex = index
}

// Active returns a frozen copy of the active snapshot, or nil.
func (c *Correlator) Active() *Snapshot {
	return c.active.Clone()
}

func (c *Correlator) Status() Status {
	return c.status
}

func (c *Correlator) CurrentPly() int {
	return c.currentPly
}

// Reset clears all request state for a new game.
func (c *Correlator) Reset() {
	c.status = StatusIdle
	c.currentPly = 0
	c.requestID = ""
	c.active = nil
}
