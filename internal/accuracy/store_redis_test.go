package accuracy

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/minsu-kwon/boardsense/internal/board"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(rdb)
}

func TestStoreMerge_FirstWriteWinsAcrossRedelivery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []Ply{
		{PlyIndex: 0, Side: board.White, PlayedMove: "e2e4", Accuracy: 100, Classification: Best},
		{PlyIndex: 1, Side: board.Black, PlayedMove: "e7e5", Accuracy: 92, Classification: Excellent},
	}
	n, err := s.Merge(ctx, "g1", entries)
	if err != nil || n != 2 {
		t.Fatalf("Merge: n=%d err=%v", n, err)
	}

	// Redeliver with a conflicting classification for ply 1.
	conflict := []Ply{{PlyIndex: 1, Side: board.Black, PlayedMove: "e7e5", Accuracy: 5, Classification: Blunder}}
	n, err = s.Merge(ctx, "g1", conflict)
	if err != nil || n != 0 {
		t.Fatalf("redelivery must insert nothing: n=%d err=%v", n, err)
	}

	loaded, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(loaded))
	}
	if loaded[1].Classification != Excellent || loaded[1].Accuracy != 92 {
		t.Fatalf("first write lost on redelivery: %+v", loaded[1])
	}
}

func TestStoreLoad_OrderedByPly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []Ply{
		{PlyIndex: 3, Side: board.Black, Accuracy: 60, Classification: Mistake},
		{PlyIndex: 0, Side: board.White, Accuracy: 100, Classification: Best},
		{PlyIndex: 2, Side: board.White, Accuracy: 95, Classification: Good},
	}
	if _, err := s.Merge(ctx, "g2", entries); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	loaded, err := s.Load(ctx, "g2")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 1; i < len(loaded); i++ {
		if loaded[i-1].PlyIndex >= loaded[i].PlyIndex {
			t.Fatalf("entries not ordered: %+v", loaded)
		}
	}
}

func TestStoreDrop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Merge(ctx, "g3", samplePlies()); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if err := s.Drop(ctx, "g3"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	loaded, err := s.Load(ctx, "g3")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("entries survived drop: %v", loaded)
	}
}
