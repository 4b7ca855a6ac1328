package opening

// minPartialPly is the shortest shared prefix a still-incomplete record may
// claim. A single shared first move is too weak a signal to surface.
const minPartialPly = 2

// Matcher resolves a move timeline against the library by longest shared
// prefix. Ties go to the record that appears first in the table.
type Matcher struct {
	lib *Library
}

func NewMatcher(lib *Library) *Matcher {
	return &Matcher{lib: lib}
}

// Match returns the best record for the timeline, or nil when nothing
// qualifies. A record whose whole prefix is contained in the timeline is an
// exact match at any length; a record longer than the timeline only counts
// once at least minPartialPly moves agree.
func (m *Matcher) Match(timeline []string) *MatchResult {
	if len(timeline) == 0 {
		return nil
	}

	var best *MatchResult
	records := m.lib.Records()
	for i := range records {
		rec := &records[i]
		n := len(rec.Moves)
		if len(timeline) < n {
			n = len(timeline)
		}
		agreed := 0
		for agreed < n && timeline[agreed] == rec.Moves[agreed] {
			agreed++
		}
		if agreed < n {
			// Diverged before either side ran out
			continue
		}
		exact := len(rec.Moves) <= len(timeline)
		if !exact && agreed < minPartialPly {
			continue
		}
		if best == nil || agreed > best.MatchedPly {
			best = &MatchResult{Record: rec, MatchedPly: agreed, Exact: exact}
		}
	}
	return best
}
