package accuracy

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlGame = 24 * time.Hour

// Store mirrors per-game classification entries in Redis, where external
// consumers can read them while a game is live. HSETNX gives the same
// first-write-wins semantics as the in-memory cache.
type Store struct{ rdb *redis.Client }

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) keyGame(gameID string) string { return "acc:game:" + strings.TrimSpace(gameID) }

// Merge writes entries that do not yet exist for their ply index and reports
// how many were inserted.
func (s *Store) Merge(ctx context.Context, gameID string, entries []Ply) (int, error) {
	if s == nil || s.rdb == nil || strings.TrimSpace(gameID) == "" {
		return 0, nil
	}
	key := s.keyGame(gameID)
	inserted := 0
	for _, e := range entries {
		if e.PlyIndex < 0 || !e.Classification.Valid() {
			continue
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return inserted, err
		}
		ok, err := s.rdb.HSetNX(ctx, key, strconv.Itoa(e.PlyIndex), raw).Result()
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	_ = s.rdb.Expire(ctx, key, ttlGame).Err()
	return inserted, nil
}

// Load returns all persisted entries for the game in ply order.
func (s *Store) Load(ctx context.Context, gameID string) ([]Ply, error) {
	if s == nil || s.rdb == nil || strings.TrimSpace(gameID) == "" {
		return nil, nil
	}
	raw, err := s.rdb.HGetAll(ctx, s.keyGame(gameID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Ply, 0, len(raw))
	for _, v := range raw {
		var e Ply
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlyIndex < out[j].PlyIndex })
	return out, nil
}

// Drop removes the persisted entries for a finished game.
func (s *Store) Drop(ctx context.Context, gameID string) error {
	if s == nil || s.rdb == nil || strings.TrimSpace(gameID) == "" {
		return nil
	}
	return s.rdb.Del(ctx, s.keyGame(gameID)).Err()
}
