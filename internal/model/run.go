// Package model defines the audit run records shared by the engine, the
// store, and the CLI.
package model

import (
	"time"

	"github.com/glassbox-planner/compat-cli/internal/report"
)

// RunStatus tracks the lifecycle of an audit run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunParams records every policy knob that shaped a run. A distinct matrix
// version is a distinct policy regime; results are only comparable across
// runs with identical params.
type RunParams struct {
	ParcelSource      string  `json:"parcel_source"`
	MatrixSource      string  `json:"matrix_source"`
	MatrixVersion     string  `json:"matrix_version"`
	SynonymVersion    string  `json:"synonym_version,omitempty"`
	AdjacencyDistance float64 `json:"adjacency_distance"`
	Policy            string  `json:"policy"`
	Percentile        float64 `json:"percentile,omitempty"`
	Rounding          string  `json:"rounding"`
}

// FlaggedParcel is one parcel excluded from scoring, individually enumerable
// for audit.
type FlaggedParcel struct {
	ParcelID string `json:"parcel_id"`
	Reason   string `json:"reason"`
}

// RunResult summarizes a completed run.
type RunResult struct {
	TotalParcels   int                      `json:"total_parcels"`
	Scored         int                      `json:"scored"`
	NoData         int                      `json:"no_data"`
	Flagged        int                      `json:"flagged"`
	EdgeCount      int                      `json:"edge_count"`
	City           report.CitySummary       `json:"city"`
	ByCategory     []report.CategorySummary `json:"by_category"`
	FlaggedParcels []FlaggedParcel          `json:"flagged_parcels,omitempty"`
	DurationMS     int64                    `json:"duration_ms"`
}

// Run is one audit run record.
type Run struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Params    RunParams  `json:"params"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
