package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
	"github.com/glassbox-planner/compat-cli/internal/matrix"
	"github.com/glassbox-planner/compat-cli/internal/parcel"
	"github.com/glassbox-planner/compat-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, cfg.Store.Pool)
}

func loadSynonyms() (*landuse.Table, error) {
	return landuse.LoadTable(cfg.Synonyms.Path)
}

func loadMatrix(syn *landuse.Table) (*matrix.Matrix, error) {
	return matrix.Load(cfg.Matrix.Path, matrix.LoadOptions{
		Options: matrix.Options{
			Synonyms:          syn,
			SymmetryTolerance: cfg.Matrix.SymmetryTolerance,
			NAMarkers:         cfg.Matrix.NAMarkers,
			Source:            filepath.Base(cfg.Matrix.Path),
		},
		Charset: cfg.Matrix.Charset,
		Sheet:   cfg.Matrix.Sheet,
	})
}

func loadParcels(syn *landuse.Table) ([]parcel.Parcel, error) {
	path := cfg.Parcels.Path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return parcel.LoadShapefile(path, cfg.Parcels.LandUseColumn, cfg.Parcels.IDColumn, syn)
	case ".geojson", ".json":
		return parcel.LoadGeoJSON(path, cfg.Parcels.LandUseColumn, cfg.Parcels.IDColumn, syn)
	default:
		return nil, eris.Errorf("unsupported parcel format: %s", path)
	}
}
