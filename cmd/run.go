package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glassbox-planner/compat-cli/internal/adjacency"
	"github.com/glassbox-planner/compat-cli/internal/engine"
	"github.com/glassbox-planner/compat-cli/internal/model"
	"github.com/glassbox-planner/compat-cli/internal/parcel"
	"github.com/glassbox-planner/compat-cli/internal/report"
	"github.com/glassbox-planner/compat-cli/internal/scoring"
)

var (
	runParcels  string
	runMatrix   string
	runDistance float64
	runPolicy   string
	runOut      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a compatibility audit over a parcel dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		applyRunFlags(cmd)
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		syn, err := loadSynonyms()
		if err != nil {
			return err
		}
		m, err := loadMatrix(syn)
		if err != nil {
			return err
		}
		parcels, err := loadParcels(syn)
		if err != nil {
			return err
		}

		zap.L().Info("inputs loaded",
			zap.Int("parcels", len(parcels)),
			zap.Int("categories", m.Size()),
			zap.String("matrix_version", m.Version()),
		)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		params := model.RunParams{
			ParcelSource:      cfg.Parcels.Path,
			MatrixSource:      cfg.Matrix.Path,
			MatrixVersion:     m.Version(),
			SynonymVersion:    syn.Version,
			AdjacencyDistance: cfg.Adjacency.Distance,
			Policy:            cfg.Scoring.Policy,
			Percentile:        cfg.Scoring.Percentile,
			Rounding:          cfg.Scoring.Rounding,
		}
		run, err := st.CreateRun(ctx, params)
		if err != nil {
			return err
		}

		res, err := engine.Run(ctx, parcels, m, engine.Config{
			Adjacency:  adjacency.Definition{Distance: cfg.Adjacency.Distance},
			Policy:     scoring.Policy(cfg.Scoring.Policy),
			Percentile: cfg.Scoring.Percentile,
			Rounding:   report.Rounding(cfg.Scoring.Rounding),
			Workers:    cfg.Scoring.Workers,
		})
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return eris.Wrap(err, "audit run")
		}

		if err := writeArtifacts(cfg.Output.Dir, res); err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return err
		}

		result := res.ToRunResult()
		if err := st.CompleteRun(ctx, run.ID, result); err != nil {
			return err
		}

		zap.L().Info("audit complete",
			zap.String("run_id", run.ID),
			zap.String("out", cfg.Output.Dir),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func applyRunFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("parcels") {
		cfg.Parcels.Path = runParcels
	}
	if cmd.Flags().Changed("matrix") {
		cfg.Matrix.Path = runMatrix
	}
	if cmd.Flags().Changed("distance") {
		cfg.Adjacency.Distance = runDistance
	}
	if cmd.Flags().Changed("policy") {
		cfg.Scoring.Policy = runPolicy
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = runOut
	}
}

// writeArtifacts writes the enriched GeoJSON and both summary CSVs.
func writeArtifacts(dir string, res *engine.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}

	f, err := os.Create(filepath.Join(dir, "parcels_scored.geojson"))
	if err != nil {
		return eris.Wrap(err, "create parcels_scored.geojson")
	}
	if err := writeScoredGeoJSON(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "close parcels_scored.geojson")
	}

	cityFile, err := os.Create(filepath.Join(dir, "city_summary.csv"))
	if err != nil {
		return eris.Wrap(err, "create city_summary.csv")
	}
	defer cityFile.Close() //nolint:errcheck
	if err := report.WriteCitySummaryCSV(cityFile, res.City); err != nil {
		return err
	}

	catFile, err := os.Create(filepath.Join(dir, "category_breakdown.csv"))
	if err != nil {
		return eris.Wrap(err, "create category_breakdown.csv")
	}
	defer catFile.Close() //nolint:errcheck
	return report.WriteCategoryBreakdownCSV(catFile, res.ByCategory)
}

// writeScoredGeoJSON writes the input parcels back out with the per-parcel
// score, bucket, and flag attached as properties.
func writeScoredGeoJSON(w io.Writer, res *engine.Result) error {
	byID := make(map[string]engine.ParcelResult, len(res.Parcels))
	parcels := make([]parcel.Parcel, len(res.Parcels))
	for i, r := range res.Parcels {
		byID[r.Parcel.ID] = r
		parcels[i] = r.Parcel
	}

	return parcel.WriteGeoJSON(w, parcels, func(p parcel.Parcel) map[string]any {
		r := byID[p.ID]
		props := map[string]any{
			"compat_bucket":   int(r.Bucket),
			"compat_label":    r.Bucket.Label(),
			"defined_edges":   r.DefinedEdges,
			"undefined_edges": r.UndefinedEdges,
		}
		if r.Score.NoData {
			props["compat_score"] = nil
		} else {
			props["compat_score"] = r.Score.Value
		}
		if r.Flag != "" {
			props["compat_flag"] = r.Flag
		}
		return props
	})
}

func init() {
	runCmd.Flags().StringVar(&runParcels, "parcels", "", "parcel dataset path (.shp or .geojson)")
	runCmd.Flags().StringVar(&runMatrix, "matrix", "", "compatibility matrix path (.csv or .xlsx)")
	runCmd.Flags().Float64Var(&runDistance, "distance", 0, "adjacency distance in dataset units (0 = touching)")
	runCmd.Flags().StringVar(&runPolicy, "policy", "", "aggregation policy (minimum, average, weighted, percentile)")
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory")
	rootCmd.AddCommand(runCmd)
}
