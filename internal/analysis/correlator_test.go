package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/minsu-kwon/boardsense/internal/board"
)

type fakeTransport struct {
	sent []*AnalyzeRequest
	err  error
}

func (f *fakeTransport) Send(_ context.Context, req *AnalyzeRequest) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

func testSettings() Settings {
	return Settings{MultiPV: 5, PlayerElo: 1500, OpponentElo: 1500}
}

func resultFor(t *testing.T, ply int, moves ...string) *ResultMessage {
	t.Helper()
	msg := &ResultMessage{RequestID: "r", Ply: ply}
	for i, mv := range moves {
		msg.Suggestions = append(msg.Suggestions, Suggestion{Rank: i + 1, Move: mv, ScoreCP: 30 - 10*i})
	}
	return msg
}

func TestRequest_TagsEachRequestUniquely(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	if err := c.Request(context.Background(), 1, board.Black, []string{"e2e4"}, "fen"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if err := c.Request(context.Background(), 2, board.White, []string{"e2e4", "e7e5"}, "fen"); err != nil {
		t.Fatalf("Request: %v", err)
	}

	if len(tr.sent) != 2 {
		t.Fatalf("sent %d requests, want 2", len(tr.sent))
	}
	if tr.sent[0].RequestID == tr.sent[1].RequestID {
		t.Fatal("request ids must be fresh per request")
	}
	if tr.sent[0].Type != "analyze" || tr.sent[1].Ply != 2 {
		t.Fatalf("unexpected wire fields: %+v", tr.sent)
	}
	if c.Status() != StatusAwaiting {
		t.Fatalf("status = %s, want awaiting", c.Status())
	}
}

func TestHandleResult_StaleByOnePlyIsDropped(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	_ = c.Request(context.Background(), 4, board.White, nil, "fen")
	_ = c.Request(context.Background(), 5, board.Black, nil, "fen")

	if snap := c.HandleResult(resultFor(t, 4, "d2d4"), board.White); snap != nil {
		t.Fatal("result for a superseded ply must be dropped")
	}
	if c.Active() != nil {
		t.Fatal("dropped result must not touch the active snapshot")
	}

	snap := c.HandleResult(resultFor(t, 5, "g8f6"), board.Black)
	if snap == nil || snap.Ply != 5 {
		t.Fatalf("fresh result not accepted: %+v", snap)
	}
}

func TestHandleResult_ReplacesSnapshotWholesale(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	_ = c.Request(context.Background(), 1, board.Black, nil, "fen")
	first := c.HandleResult(resultFor(t, 1, "e7e5", "c7c5", "e7e6"), board.Black)
	if first == nil || len(first.Suggestions) != 3 {
		t.Fatalf("first result not accepted: %+v", first)
	}

	_ = c.Request(context.Background(), 2, board.White, nil, "fen")
	second := c.HandleResult(resultFor(t, 2, "g1f3"), board.White)
	if second == nil {
		t.Fatal("second result not accepted")
	}
	active := c.Active()
	if len(active.Suggestions) != 1 || active.Suggestions[0].Move != "g1f3" {
		t.Fatalf("snapshot was merged, not replaced: %+v", active.Suggestions)
	}
}

func TestHandleResult_ClampsChosenIndex(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	_ = c.Request(context.Background(), 1, board.Black, nil, "fen")
	msg := resultFor(t, 1, "e7e5", "c7c5")
	msg.ChosenIndex = 7
	snap := c.HandleResult(msg, board.Black)
	if snap == nil || snap.ChosenIndex != 1 {
		t.Fatalf("chosen index not clamped: %+v", snap)
	}

	_ = c.Request(context.Background(), 2, board.White, nil, "fen")
	msg = resultFor(t, 2, "g1f3")
	msg.ChosenIndex = -3
	snap = c.HandleResult(msg, board.White)
	if snap == nil || snap.ChosenIndex != 0 {
		t.Fatalf("negative chosen index not clamped: %+v", snap)
	}
}

func TestRequest_TransportErrorRevertsToIdle(t *testing.T) {
	tr := &fakeTransport{err: errors.New("socket closed")}
	c := NewCorrelator(tr, testSettings())

	if err := c.Request(context.Background(), 1, board.Black, nil, "fen"); err == nil {
		t.Fatal("expected transport error")
	}
	if c.Status() != StatusIdle {
		t.Fatalf("status = %s, want idle after transport error", c.Status())
	}
}

func TestHandleError_RevertsToIdle(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	_ = c.Request(context.Background(), 1, board.Black, nil, "fen")
	c.HandleError(&ErrorMessage{RequestID: "x", Code: "engine_busy", Message: "try later"})
	if c.Status() != StatusIdle {
		t.Fatalf("status = %s, want idle", c.Status())
	}
}

func TestActive_ReturnsFrozenCopy(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	_ = c.Request(context.Background(), 1, board.Black, nil, "fen")
	_ = c.HandleResult(resultFor(t, 1, "e7e5", "c7c5"), board.Black)

	view := c.Active()
	view.Suggestions[0].Move = "mutated"
	if c.Active().Suggestions[0].Move != "e7e5" {
		t.Fatal("reader mutation leaked into the active snapshot")
	}
}

func TestSelect_ClampsToSuggestionRange(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	_ = c.Request(context.Background(), 1, board.Black, nil, "fen")
	_ = c.HandleResult(resultFor(t, 1, "e7e5", "c7c5", "e7e6"), board.Black)

	c.Select(10)
	if got := c.Active().ChosenIndex; got != 2 {
		t.Fatalf("ChosenIndex = %d, want 2", got)
	}
	c.Select(-1)
	if got := c.Active().ChosenIndex; got != 0 {
		t.Fatalf("ChosenIndex = %d, want 0", got)
	}
}

func TestReset_ClearsRequestState(t *testing.T) {
	tr := &fakeTransport{}
	c := NewCorrelator(tr, testSettings())

	_ = c.Request(context.Background(), 3, board.Black, nil, "fen")
	_ = c.HandleResult(resultFor(t, 3, "e7e5"), board.Black)

	c.Reset()
	if c.Active() != nil || c.Status() != StatusIdle || c.CurrentPly() != 0 {
		t.Fatal("Reset left state behind")
	}
}
