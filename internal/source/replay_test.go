package source

import (
	"context"
	"testing"
	"time"

	"github.com/minsu-kwon/boardsense/internal/board"
)

func collect(t *testing.T, r *ReplaySource, want int) []Sample {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	samples := make([]Sample, 0, want)
	for s := range r.Samples() {
		samples = append(samples, s)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(samples) != want {
		t.Fatalf("got %d samples, want %d", len(samples), want)
	}
	return samples
}

func TestReplay_EmitsStartThenEachMove(t *testing.T) {
	r := NewReplaySource([]string{"e2e4", "e7e5"}, time.Millisecond)
	samples := collect(t, r, 3)

	if !samples[0].Placement.Equal(board.StartingPlacement()) {
		t.Fatal("first sample is not the start position")
	}
	if samples[0].Turn == nil || *samples[0].Turn != board.White {
		t.Fatalf("start turn = %v, want white", samples[0].Turn)
	}

	after := samples[1].Placement
	if _, occupied := after["e2"]; occupied {
		t.Fatal("e2 still occupied after 1.e4")
	}
	if p, ok := after["e4"]; !ok || p.Type != board.Pawn || p.Color != board.White {
		t.Fatalf("e4 = %+v, want white pawn", p)
	}
	if *samples[1].Turn != board.Black {
		t.Fatalf("turn after 1.e4 = %v, want black", *samples[1].Turn)
	}
}

func TestReplay_IllegalMoveFails(t *testing.T) {
	r := NewReplaySource([]string{"e2e5"}, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	for range r.Samples() {
	}
	if err := <-errCh; err == nil {
		t.Fatal("expected error for illegal move")
	}
}
