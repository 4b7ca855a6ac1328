package opening

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	chesslib "github.com/corentings/chess/v2"
	ecolib "github.com/corentings/chess/v2/opening"
	yaml "gopkg.in/yaml.v3"
)

//go:embed openings.yaml
var defaultFiles embed.FS

// Library holds the static opening table. Records are validated against the
// rules of chess at load time; lookup order is the order records appear in
// the source files, which matchers rely on for tie-breaking.
type Library struct {
	records []Record
	byName  map[string]int
}

type libraryFile struct {
	Openings []Record `yaml:"openings"`
}

// NewLibrary loads the embedded opening table and then applies overrides from
// dir if provided. An override record with the name of an embedded record
// replaces it in place; new names are appended in file order.
func NewLibrary(overrideDir string) (*Library, error) {
	lib := &Library{byName: make(map[string]int)}

	raw, err := fs.ReadFile(defaultFiles, "openings.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded openings: %w", err)
	}
	if err := lib.applyYAML(raw, "openings.yaml"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideDir) != "" {
		if err := lib.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func (l *Library) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read opening override dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// Guard against the same name arriving from two override files
	seen := make(map[string]string)
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		var parsed libraryFile
		if err := yaml.Unmarshal(b, &parsed); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		for _, rec := range parsed.Openings {
			if prev, ok := seen[rec.Name]; ok {
				return fmt.Errorf("duplicate opening %q in %s and %s", rec.Name, prev, name)
			}
			seen[rec.Name] = name
		}
		if err := l.apply(parsed.Openings, name); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) applyYAML(b []byte, src string) error {
	var parsed libraryFile
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return fmt.Errorf("parse %s: %w", src, err)
	}
	return l.apply(parsed.Openings, src)
}

func (l *Library) apply(records []Record, src string) error {
	ecoBook := ecolib.NewBookECO()
	for _, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			return fmt.Errorf("%s: opening with empty name", src)
		}
		if len(rec.Moves) == 0 {
			return fmt.Errorf("%s: opening %q has no moves", src, rec.Name)
		}
		if err := validateRecord(&rec, ecoBook); err != nil {
			return fmt.Errorf("%s: opening %q: %w", src, rec.Name, err)
		}
		if idx, ok := l.byName[rec.Name]; ok {
			l.records[idx] = rec
			continue
		}
		l.byName[rec.Name] = len(l.records)
		l.records = append(l.records, rec)
	}
	return nil
}

// validateRecord replays the record's move prefix and every counter line from
// the start position, and fills a missing ECO code from the reference book.
func validateRecord(rec *Record, ecoBook *ecolib.BookECO) error {
	game, err := replayLine(rec.Moves)
	if err != nil {
		return err
	}
	if rec.ECO == "" {
		if eco := ecoBook.Find(game.Moves()); eco != nil {
			rec.ECO = eco.Code()
		}
	}
	for i := range rec.Counters {
		counter := &rec.Counters[i]
		if len(counter.Line) <= len(rec.Moves) {
			return fmt.Errorf("counter %q does not extend the opening line", counter.Name)
		}
		for j, mv := range rec.Moves {
			if counter.Line[j] != mv {
				return fmt.Errorf("counter %q diverges from the opening line at ply %d", counter.Name, j)
			}
		}
		cg, err := replayLine(counter.Line)
		if err != nil {
			return fmt.Errorf("counter %q: %w", counter.Name, err)
		}
		if counter.ECO == "" {
			if eco := ecoBook.Find(cg.Moves()); eco != nil {
				counter.ECO = eco.Code()
			}
		}
	}
	return nil
}

func replayLine(moves []string) (*chesslib.Game, error) {
	game := chesslib.NewGame()
	notation := chesslib.UCINotation{}
	for i, mv := range moves {
		if err := game.PushNotationMove(mv, notation, nil); err != nil {
			return nil, fmt.Errorf("illegal move %q at ply %d: %w", mv, i, err)
		}
	}
	return game, nil
}

// Records returns the table in lookup order. Callers must not mutate it.
func (l *Library) Records() []Record {
	return l.records
}

// Find returns the record with the given name, or nil.
func (l *Library) Find(name string) *Record {
	idx, ok := l.byName[name]
	if !ok {
		return nil
	}
	return &l.records[idx]
}

// Len reports the number of loaded records.
func (l *Library) Len() int {
	return len(l.records)
}
