package opening

// Record is one static reference opening. Loaded once, read-only afterwards.
type Record struct {
	Name     string        `yaml:"name"`
	ECO      string        `yaml:"eco"`
	Moves    []string      `yaml:"moves"`
	Counters []CounterLine `yaml:"counters"`
}

// CounterLine is a proposed counter-opening: a full line from the start
// position that extends the parent record's move prefix.
type CounterLine struct {
	Name string   `yaml:"name"`
	ECO  string   `yaml:"eco"`
	Line []string `yaml:"line"`
}

// MatchResult reports the best library match for a timeline.
type MatchResult struct {
	Record     *Record
	MatchedPly int
	// Exact is true when the record's whole prefix is inside the timeline,
	// false for an in-progress (partial) match.
	Exact bool
}
