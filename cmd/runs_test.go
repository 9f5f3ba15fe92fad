package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glassbox-planner/compat-cli/internal/model"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("12345678-abcd-efgh"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatRunsList(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:     "aaaaaaaa-1111-2222",
			Status: model.RunStatusCompleted,
			Params: model.RunParams{Policy: "minimum"},
			Result: &model.RunResult{
				TotalParcels: 120,
				Scored:       115,
				Flagged:      2,
			},
			CreatedAt: created,
			UpdatedAt: created.Add(3 * time.Second),
		},
		{
			ID:        "bbbbbbbb-3333-4444",
			Status:    model.RunStatusFailed,
			Params:    model.RunParams{Policy: "weighted"},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "aaaaaaaa")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "120")
	assert.Contains(t, out, "minimum")
	assert.Contains(t, out, "2026-03-01 09:30")

	// Failed run with no result shows placeholders.
	assert.Contains(t, out, "bbbbbbbb")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "-")
}
