package accuracy

import (
	"sort"
	"sync"

	"github.com/minsu-kwon/boardsense/internal/board"
)

// Cache accumulates per-move classifications for one game. Entries are keyed
// by ply index and the first write wins, so re-delivered analysis payloads
// merge idempotently and never reclassify a move. The cache lives for one
// game and is reset only on new-game detection.
type Cache struct {
	mu       sync.RWMutex
	plies    map[int]Ply
	lastMean *float64
}

func NewCache() *Cache {
	return &Cache{plies: make(map[int]Ply)}
}

// Merge inserts entries whose ply index is not yet present and reports how
// many were inserted. Duplicates are ignored by design, without error.
func (c *Cache) Merge(entries []Ply) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	inserted := 0
	for _, e := range entries {
		if e.PlyIndex < 0 || !e.Classification.Valid() {
			continue
		}
		if _, exists := c.plies[e.PlyIndex]; exists {
			continue
		}
		c.plies[e.PlyIndex] = e
		inserted++
	}
	return inserted
}

// Len reports the number of distinct plies recorded.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.plies)
}

// Plies returns a copy of the recorded entries in ply order.
func (c *Cache) Plies() []Ply {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Ply, 0, len(c.plies))
	for _, e := range c.plies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlyIndex < out[j].PlyIndex })
	return out
}

// Aggregate recomputes the mean accuracy and classification counts by a full
// scan of the (optionally side-filtered) plies. Nothing is cached
// incrementally, so the result is always consistent with the entries.
func (c *Cache) Aggregate(side *board.Color) Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Summary{Counts: make(map[Classification]int)}
	total := 0.0
	for _, e := range c.plies {
		if side != nil && e.Side != *side {
			continue
		}
		s.Plies++
		total += e.Accuracy
		s.Counts[e.Classification]++
	}
	if s.Plies > 0 {
		s.Mean = total / float64(s.Plies)
	}
	return s
}

// AcceptAggregate records a newly accepted aggregate and returns its trend
// against the previously accepted one. An empty aggregate or a missing prior
// yields TrendNone.
func (c *Cache) AcceptAggregate(s Summary) Trend {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.Plies == 0 {
		return TrendNone
	}
	prev := c.lastMean
	mean := s.Mean
	c.lastMean = &mean
	if prev == nil {
		return TrendNone
	}
	switch {
	case mean > *prev:
		return TrendUp
	case mean < *prev:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Reset clears all entries and trend history for a new game.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plies = make(map[int]Ply)
	c.lastMean = nil
}
