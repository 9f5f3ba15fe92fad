package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/glassbox-planner/compat-cli/internal/adjacency"
	"github.com/glassbox-planner/compat-cli/internal/engine"
	"github.com/glassbox-planner/compat-cli/internal/matrix"
	"github.com/glassbox-planner/compat-cli/internal/parcel"
	"github.com/glassbox-planner/compat-cli/internal/report"
	"github.com/glassbox-planner/compat-cli/internal/scoring"
)

func testSquare(x, y, size float64) *geom.Polygon {
	p := geom.NewPolygon(geom.XY)
	p.MustSetCoords([][]geom.Coord{{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}})
	return p
}

func testEngineResult(t *testing.T) *engine.Result {
	t.Helper()
	m, err := matrix.New(
		[]string{"Residential", "Industrial"},
		[][]string{
			{"5", "1"},
			{"1", "5"},
		},
		matrix.Options{Source: "test.csv"},
	)
	require.NoError(t, err)

	parcels := []parcel.Parcel{
		{ID: "P1", Category: "Residential", Geometry: testSquare(0, 0, 10)},
		{ID: "P2", Category: "Industrial", Geometry: testSquare(10, 0, 10)},
		{ID: "P3", Category: "Residential", Geometry: testSquare(1000, 0, 10)},
	}

	res, err := engine.Run(context.Background(), parcels, m, engine.Config{
		Adjacency: adjacency.Definition{Distance: 0},
		Policy:    scoring.PolicyMinimum,
		Rounding:  report.RoundingFloor,
	})
	require.NoError(t, err)
	return res
}

// The enriched output's score attribute is named compat_score; downstream
// tooling keys on it, so the name is a contract.
func TestWriteScoredGeoJSONAttributeNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScoredGeoJSON(&buf, testEngineResult(t)))

	var fc struct {
		Features []struct {
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	require.Len(t, fc.Features, 3)

	byID := map[string]map[string]any{}
	for _, f := range fc.Features {
		byID[f.ID] = f.Properties
	}

	p1 := byID["P1"]
	require.Contains(t, p1, "compat_score")
	require.Contains(t, p1, "compat_bucket")
	require.Contains(t, p1, "compat_label")
	assert.Equal(t, 1.0, p1["compat_score"])
	assert.Equal(t, 1.0, p1["compat_bucket"]) // JSON numbers decode as float64
	assert.Equal(t, "Fully Incompatible", p1["compat_label"])
	assert.NotContains(t, p1, "compatibility_score")

	// Isolated parcel: score present but null, bucket 0.
	p3 := byID["P3"]
	require.Contains(t, p3, "compat_score")
	assert.Nil(t, p3["compat_score"])
	assert.Equal(t, 0.0, p3["compat_bucket"])
}
