package landuse

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Table maps spelling variants of land-use labels to canonical categories.
// The table is versioned configuration: source matrices are known to carry
// multiple spellings of the same category (e.g. two renderings of
// "Commercial-Residential"), and the mapping that collapses them is policy,
// not code.
type Table struct {
	Version  string            `yaml:"version"`
	Synonyms map[string]string `yaml:"synonyms"`

	// folded is a case-insensitive view of Synonyms, built at load time.
	folded map[string]string
}

// LoadTable reads a synonym table from a YAML file. A missing path returns
// an empty table so a run without synonym configuration still normalizes
// whitespace and casing consistently.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return &Table{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Errorf("landuse: synonym table %s not found", path)
		}
		return nil, eris.Wrap(err, "landuse: read synonym table")
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "landuse: parse synonym table")
	}
	t.index()
	return &t, nil
}

// NewTable builds a table from an in-memory mapping. Used by tests and by
// callers that assemble configuration programmatically.
func NewTable(version string, synonyms map[string]string) *Table {
	t := &Table{Version: version, Synonyms: synonyms}
	t.index()
	return t
}

func (t *Table) index() {
	t.folded = make(map[string]string, len(t.Synonyms))
	for variant, canonical := range t.Synonyms {
		key := strings.ToLower(string(Clean(variant)))
		t.folded[key] = string(Clean(canonical))
	}
}

// Canonical normalizes a raw label to its canonical category: whitespace is
// collapsed, then the synonym mapping is applied case-insensitively. Labels
// with no synonym entry pass through cleaned but otherwise unchanged.
func (t *Table) Canonical(raw string) Category {
	cleaned := Clean(raw)
	if t == nil || len(t.folded) == 0 {
		return cleaned
	}
	if canonical, ok := t.folded[strings.ToLower(string(cleaned))]; ok {
		return Category(canonical)
	}
	return cleaned
}
