// Package matrix implements the compatibility matrix model: a validated,
// immutable, symmetric lookup table of policy-authored scores between land-use
// categories. The matrix is the sole source of domain logic for a run; a
// distinct matrix version is a distinct policy regime.
package matrix

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
)

// Score bounds of the five-point rubric. Every defined cell must fall inside
// this closed range.
const (
	MinScore = 1
	MaxScore = 5
)

// Validation and lookup failures. Matrix-level errors are fatal to a run;
// ErrUnknownCategory and ErrPairUndefined are surfaced per edge by the
// resolver and never default to a numeric score.
var (
	ErrNotSquare       = errors.New("matrix: table is not square")
	ErrDuplicateLabel  = errors.New("matrix: duplicate category label")
	ErrAsymmetric      = errors.New("matrix: asymmetric beyond tolerance")
	ErrOutOfRange      = errors.New("matrix: score outside 1..5")
	ErrUnknownCategory = errors.New("matrix: unknown category")
	ErrPairUndefined   = errors.New("matrix: pair marked not applicable")
)

// undefined marks an explicitly authored "not applicable" cell. Pairs with
// this value contribute no score and shrink the aggregation denominator.
const undefined = 0

// Options configures matrix construction.
type Options struct {
	// Synonyms normalizes axis labels before validation. Nil means
	// whitespace cleanup only.
	Synonyms *landuse.Table
	// SymmetryTolerance is the maximum allowed |score(A,B)-score(B,A)|.
	// Within tolerance the lower of the two values is kept (conservative
	// for an audit that surfaces conflict); beyond it construction fails.
	SymmetryTolerance int
	// NAMarkers are cell values treated as explicit "not applicable".
	NAMarkers []string
	// Source names the origin of the table for the provenance tag.
	Source string
}

// Matrix is an immutable symmetric score table over canonical categories.
type Matrix struct {
	categories []landuse.Category
	index      map[landuse.Category]int
	scores     [][]int
	version    string
}

// New validates a raw table and builds a Matrix. labels are the axis labels
// in table order (both axes must carry the same labels); cells[i][j] is the
// raw value for (labels[i], labels[j]).
func New(labels []string, cells [][]string, opts Options) (*Matrix, error) {
	n := len(labels)
	if n == 0 {
		return nil, eris.Wrap(ErrNotSquare, "empty table")
	}
	if len(cells) != n {
		return nil, eris.Wrapf(ErrNotSquare, "%d labels but %d rows", n, len(cells))
	}
	for i, row := range cells {
		if len(row) != n {
			return nil, eris.Wrapf(ErrNotSquare, "row %d has %d cells, want %d", i, len(row), n)
		}
	}

	categories := make([]landuse.Category, n)
	index := make(map[landuse.Category]int, n)
	for i, raw := range labels {
		c := opts.Synonyms.Canonical(raw)
		if c.IsEmpty() {
			return nil, eris.Wrapf(ErrDuplicateLabel, "blank label at position %d", i)
		}
		if _, ok := index[c]; ok {
			return nil, eris.Wrapf(ErrDuplicateLabel, "%q (after normalization)", c)
		}
		categories[i] = c
		index[c] = i
	}

	na := make(map[string]bool, len(opts.NAMarkers))
	for _, m := range opts.NAMarkers {
		na[strings.ToLower(strings.TrimSpace(m))] = true
	}

	scores := make([][]int, n)
	for i := range scores {
		scores[i] = make([]int, n)
		for j := range scores[i] {
			v, err := parseCell(cells[i][j], na)
			if err != nil {
				return nil, eris.Wrapf(err, "cell (%s, %s)", categories[i], categories[j])
			}
			scores[i][j] = v
		}
	}

	// Symmetry check, including the diagonal's trivial case. Within
	// tolerance both cells are collapsed to the lower value so Lookup is
	// symmetric by construction.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := scores[i][j], scores[j][i]
			if (a == undefined) != (b == undefined) {
				return nil, eris.Wrapf(ErrAsymmetric, "(%s, %s): one side not applicable", categories[i], categories[j])
			}
			if a == undefined {
				continue
			}
			diff := a - b
			if diff < 0 {
				diff = -diff
			}
			if diff > opts.SymmetryTolerance {
				return nil, eris.Wrapf(ErrAsymmetric, "(%s, %s): %d vs %d", categories[i], categories[j], a, b)
			}
			if b < a {
				scores[i][j] = b
			} else {
				scores[j][i] = a
			}
		}
	}

	m := &Matrix{categories: categories, index: index, scores: scores}
	m.version = m.fingerprint(opts.Source)
	return m, nil
}

func parseCell(raw string, na map[string]bool) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" || na[strings.ToLower(s)] {
		return undefined, nil
	}
	// Strict integer parse: a fractional or suffixed value like "3.5" or
	// "3x" is an authoring error, never truncated to a valid score.
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Wrapf(ErrOutOfRange, "non-integer value %q", raw)
	}
	if v < MinScore || v > MaxScore {
		return 0, eris.Wrapf(ErrOutOfRange, "value %d", v)
	}
	return v, nil
}

// fingerprint derives the provenance tag: a short digest of the normalized
// table plus its source name. Identical policy content yields an identical
// tag regardless of axis ordering in the file.
func (m *Matrix) fingerprint(source string) string {
	ordered := make([]string, 0, len(m.categories)*len(m.categories))
	for _, a := range m.sortedCategories() {
		for _, b := range m.sortedCategories() {
			ordered = append(ordered, fmt.Sprintf("%s|%s|%d", a, b, m.scores[m.index[a]][m.index[b]]))
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(ordered, "\n")))
	tag := hex.EncodeToString(sum[:])[:12]
	if source == "" {
		return tag
	}
	return source + "@" + tag
}

func (m *Matrix) sortedCategories() []landuse.Category {
	out := make([]landuse.Category, len(m.categories))
	copy(out, m.categories)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup returns the score for a category pair. Both categories must already
// be canonical. An unknown category fails with ErrUnknownCategory naming the
// offending label; an explicitly not-applicable pair fails with
// ErrPairUndefined. Neither case ever defaults to a score.
func (m *Matrix) Lookup(a, b landuse.Category) (int, error) {
	i, ok := m.index[a]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownCategory, "%q", a)
	}
	j, ok := m.index[b]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownCategory, "%q", b)
	}
	s := m.scores[i][j]
	if s == undefined {
		return 0, eris.Wrapf(ErrPairUndefined, "(%s, %s)", a, b)
	}
	return s, nil
}

// Has reports whether a canonical category is present on the matrix axes.
func (m *Matrix) Has(c landuse.Category) bool {
	_, ok := m.index[c]
	return ok
}

// Categories returns the axis labels in lexical order.
func (m *Matrix) Categories() []landuse.Category { return m.sortedCategories() }

// Size returns the number of categories on each axis.
func (m *Matrix) Size() int { return len(m.categories) }

// Version returns the provenance tag recorded on every run that uses this
// matrix.
func (m *Matrix) Version() string { return m.version }
