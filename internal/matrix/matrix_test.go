package matrix

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
)

func testMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := New(
		[]string{"Residential", "Industrial", "Green Space"},
		[][]string{
			{"5", "1", "4"},
			{"1", "5", "4"},
			{"4", "4", "5"},
		},
		Options{Source: "test.csv"},
	)
	require.NoError(t, err)
	return m
}

func TestLookupSymmetry(t *testing.T) {
	m := testMatrix(t)
	for _, a := range m.Categories() {
		for _, b := range m.Categories() {
			ab, errAB := m.Lookup(a, b)
			ba, errBA := m.Lookup(b, a)
			require.NoError(t, errAB)
			require.NoError(t, errBA)
			assert.Equal(t, ab, ba, "lookup(%s,%s) vs lookup(%s,%s)", a, b, b, a)
		}
	}
}

func TestLookupValues(t *testing.T) {
	m := testMatrix(t)

	score, err := m.Lookup("Residential", "Industrial")
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	score, err = m.Lookup("Industrial", "Green Space")
	require.NoError(t, err)
	assert.Equal(t, 4, score)

	// Diagonal is authored, not assumed.
	score, err = m.Lookup("Residential", "Residential")
	require.NoError(t, err)
	assert.Equal(t, 5, score)
}

func TestLookupUnknownCategory(t *testing.T) {
	m := testMatrix(t)
	_, err := m.Lookup("Residential", "Airport")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownCategory))
	assert.Contains(t, err.Error(), "Airport")
}

func TestNotApplicableCell(t *testing.T) {
	m, err := New(
		[]string{"A", "B"},
		[][]string{
			{"5", "NA"},
			{"NA", "5"},
		},
		Options{NAMarkers: []string{"NA"}},
	)
	require.NoError(t, err)

	_, err = m.Lookup("A", "B")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrPairUndefined))
}

func TestNewNotSquare(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		cells  [][]string
	}{
		{name: "missing row", labels: []string{"A", "B"}, cells: [][]string{{"5", "3"}}},
		{name: "short row", labels: []string{"A", "B"}, cells: [][]string{{"5", "3"}, {"3"}}},
		{name: "empty", labels: nil, cells: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.labels, tt.cells, Options{})
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrNotSquare))
		})
	}
}

func TestNewAsymmetric(t *testing.T) {
	_, err := New(
		[]string{"A", "B"},
		[][]string{
			{"5", "1"},
			{"4", "5"},
		},
		Options{},
	)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrAsymmetric))
}

func TestNewAsymmetricWithinTolerance(t *testing.T) {
	m, err := New(
		[]string{"A", "B"},
		[][]string{
			{"5", "3"},
			{"2", "5"},
		},
		Options{SymmetryTolerance: 1},
	)
	require.NoError(t, err)

	// The lower of the two authored values wins.
	score, err := m.Lookup("A", "B")
	require.NoError(t, err)
	assert.Equal(t, 2, score)
	score, err = m.Lookup("B", "A")
	require.NoError(t, err)
	assert.Equal(t, 2, score)
}

func TestNewOutOfRange(t *testing.T) {
	for _, bad := range []string{"0", "6", "-1", "high", "3.5", "3x", "2 3"} {
		t.Run(bad, func(t *testing.T) {
			_, err := New(
				[]string{"A", "B"},
				[][]string{
					{"5", bad},
					{bad, "5"},
				},
				Options{},
			)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrOutOfRange))
		})
	}
}

func TestNewSynonymCollision(t *testing.T) {
	syn := landuse.NewTable("v1", map[string]string{
		"Commercial - Residential": "Commercial-Residential",
	})
	_, err := New(
		[]string{"Commercial-Residential", "Commercial - Residential"},
		[][]string{
			{"5", "5"},
			{"5", "5"},
		},
		Options{Synonyms: syn},
	)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicateLabel))
}

func TestVersionStableAcrossAxisOrder(t *testing.T) {
	a, err := New(
		[]string{"A", "B"},
		[][]string{{"5", "2"}, {"2", "5"}},
		Options{Source: "m.csv"},
	)
	require.NoError(t, err)

	b, err := New(
		[]string{"B", "A"},
		[][]string{{"5", "2"}, {"2", "5"}},
		Options{Source: "m.csv"},
	)
	require.NoError(t, err)

	assert.Equal(t, a.Version(), b.Version())
}

func TestVersionChangesWithPolicy(t *testing.T) {
	a, err := New([]string{"A", "B"}, [][]string{{"5", "2"}, {"2", "5"}}, Options{Source: "m.csv"})
	require.NoError(t, err)
	b, err := New([]string{"A", "B"}, [][]string{{"5", "3"}, {"3", "5"}}, Options{Source: "m.csv"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), b.Version())
}
