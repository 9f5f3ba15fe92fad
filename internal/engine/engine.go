// Package engine orchestrates a full audit run: build the adjacency index,
// resolve every edge against the matrix, aggregate per parcel, classify, and
// summarize. Scoring is data-parallel per parcel; the matrix and index are
// built once and read-only for the remainder of the run, so no locking is
// involved.
package engine

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glassbox-planner/compat-cli/internal/adjacency"
	"github.com/glassbox-planner/compat-cli/internal/matrix"
	"github.com/glassbox-planner/compat-cli/internal/model"
	"github.com/glassbox-planner/compat-cli/internal/parcel"
	"github.com/glassbox-planner/compat-cli/internal/report"
	"github.com/glassbox-planner/compat-cli/internal/scoring"
)

// Config holds the engine's policy knobs. Every value is explicit
// configuration surfaced in the run record.
type Config struct {
	Adjacency  adjacency.Definition
	Policy     scoring.Policy
	Percentile float64
	Rounding   report.Rounding
	// Workers bounds scoring parallelism; 0 means GOMAXPROCS.
	Workers int
}

// ParcelResult is the scored outcome for one parcel.
type ParcelResult struct {
	Parcel         parcel.Parcel
	Score          scoring.Score
	Bucket         report.Bucket
	DefinedEdges   int
	UndefinedEdges int
	// Flag is non-empty when the parcel was excluded from scoring
	// (invalid geometry, or its own category has no matrix entry).
	Flag string
}

// Result is the complete output of one run. Parcels are sorted by ID so
// identical inputs produce byte-identical output.
type Result struct {
	Parcels    []ParcelResult
	City       report.CitySummary
	ByCategory []report.CategorySummary
	Flagged    []model.FlaggedParcel
	EdgeCount  int
	Duration   time.Duration
}

// Run executes the audit over an in-memory parcel set and validated matrix.
// Per-parcel problems are recovered locally (the parcel is flagged); only
// configuration errors abort the run.
func Run(ctx context.Context, parcels []parcel.Parcel, m *matrix.Matrix, cfg Config) (*Result, error) {
	start := time.Now()

	agg, err := scoring.NewAggregator(cfg.Policy, cfg.Percentile)
	if err != nil {
		return nil, err
	}
	classifier, err := report.NewClassifier(cfg.Rounding)
	if err != nil {
		return nil, err
	}

	zap.L().Info("building adjacency index",
		zap.Int("parcels", len(parcels)),
		zap.Float64("distance", cfg.Adjacency.Distance),
	)
	idx, flaggedGeom, err := adjacency.Build(parcels, cfg.Adjacency)
	if err != nil {
		return nil, eris.Wrap(err, "engine: build adjacency index")
	}

	resolver := scoring.NewResolver(m)
	byID := make(map[string]parcel.Parcel, len(parcels))
	for _, p := range parcels {
		byID[p.ID] = p
	}
	geomFlag := make(map[string]string, len(flaggedGeom))
	for _, f := range flaggedGeom {
		geomFlag[f.ParcelID] = f.Reason
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]ParcelResult, len(parcels))
	var edgeCount int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	edgeCounts := make([]int, len(parcels))
	for i := range parcels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scoreParcel(parcels[i], idx, resolver, agg, classifier, geomFlag, byID)
			edgeCounts[i] = results[i].DefinedEdges + results[i].UndefinedEdges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "engine: score parcels")
	}
	for _, c := range edgeCounts {
		edgeCount += int64(c)
	}

	sort.Slice(results, func(a, b int) bool { return results[a].Parcel.ID < results[b].Parcel.ID })

	outcomes := make([]report.ParcelOutcome, len(results))
	var flagged []model.FlaggedParcel
	for i, r := range results {
		outcomes[i] = report.ParcelOutcome{
			ParcelID: r.Parcel.ID,
			Category: r.Parcel.Category,
			Bucket:   r.Bucket,
		}
		if r.Flag != "" {
			flagged = append(flagged, model.FlaggedParcel{ParcelID: r.Parcel.ID, Reason: r.Flag})
		}
	}

	res := &Result{
		Parcels:    results,
		City:       report.SummarizeCity(outcomes),
		ByCategory: report.SummarizeByCategory(outcomes),
		Flagged:    flagged,
		// Each undirected adjacency pair is seen from both sides.
		EdgeCount: int(edgeCount) / 2,
		Duration:  time.Since(start),
	}

	zap.L().Info("run complete",
		zap.Int("parcels", len(results)),
		zap.Int("scored", res.City.Scored),
		zap.Int("no_data", res.City.NoData),
		zap.Int("flagged", len(flagged)),
		zap.Int("edges", res.EdgeCount),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func scoreParcel(
	p parcel.Parcel,
	idx *adjacency.Index,
	resolver *scoring.Resolver,
	agg *scoring.Aggregator,
	classifier *report.Classifier,
	geomFlag map[string]string,
	byID map[string]parcel.Parcel,
) ParcelResult {
	if reason, bad := geomFlag[p.ID]; bad {
		return ParcelResult{
			Parcel: p,
			Score:  scoring.Score{NoData: true},
			Bucket: report.BucketNoData,
			Flag:   reason,
		}
	}

	r := ParcelResult{Parcel: p}
	if !resolver.Known(p.Category) {
		// The parcel's own category has no policy entry: every edge is
		// undefined, and the parcel is flagged rather than silently scored.
		r.Flag = "unknown category " + p.Category.String()
	}

	var defined []scoring.EdgeScore
	for _, e := range idx.NeighborsOf(p.ID) {
		neighbor, ok := byID[e.NeighborID]
		if !ok {
			continue
		}
		score, ok := resolver.Resolve(p.Category, neighbor.Category)
		if !ok {
			r.UndefinedEdges++
			continue
		}
		defined = append(defined, scoring.EdgeScore{Score: score, Weight: e.Weight})
	}

	r.DefinedEdges = len(defined)
	r.Score = agg.Aggregate(defined)
	r.Bucket = classifier.Classify(r.Score)
	return r
}

// ToRunResult converts a Result into the persisted run record form.
func (r *Result) ToRunResult() *model.RunResult {
	return &model.RunResult{
		TotalParcels:   len(r.Parcels),
		Scored:         r.City.Scored,
		NoData:         r.City.NoData,
		Flagged:        len(r.Flagged),
		EdgeCount:      r.EdgeCount,
		City:           r.City,
		ByCategory:     r.ByCategory,
		FlaggedParcels: r.Flagged,
		DurationMS:     r.Duration.Milliseconds(),
	}
}
