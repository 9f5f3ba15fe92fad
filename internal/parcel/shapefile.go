package parcel

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
)

// LoadShapefile reads parcels from a shapefile. landUseColumn names the DBF
// attribute holding the land-use label; idColumn names the identifier
// attribute and may be empty, in which case sequential identifiers are
// assigned. Records with missing or unsupported shapes are kept with nil
// geometry so downstream flagging can enumerate them.
func LoadShapefile(path, landUseColumn, idColumn string, syn *landuse.Table) ([]Parcel, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	fieldNames := make([]string, 0, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
		fieldNames = append(fieldNames, name)
	}

	useIdx, ok := fieldIdx[strings.ToLower(landUseColumn)]
	if !ok {
		return nil, eris.Errorf("parcel: land use column %q not found (available: %s)",
			landUseColumn, strings.Join(fieldNames, ", "))
	}
	idIdx := -1
	if idColumn != "" {
		idIdx, ok = fieldIdx[strings.ToLower(idColumn)]
		if !ok {
			return nil, eris.Errorf("parcel: id column %q not found", idColumn)
		}
	}

	var parcels []Parcel
	var unshaped int
	record := 0
	for reader.Next() {
		_, shape := reader.Shape()

		id := fmt.Sprintf("P%06d", record)
		if idIdx >= 0 {
			if v := attr(reader, idIdx); v != "" {
				id = v
			}
		}

		attrs := make(map[string]any, len(fields))
		for i, name := range fieldNames {
			if v := attr(reader, i); v != "" {
				attrs[name] = v
			}
		}

		g := shapeToGeom(shape)
		if g == nil {
			unshaped++
		}

		parcels = append(parcels, Parcel{
			ID:         id,
			Category:   syn.Canonical(attr(reader, useIdx)),
			Geometry:   g,
			Attributes: attrs,
		})
		record++
	}

	if unshaped > 0 {
		zap.L().Warn("parcel: records without usable shapes kept for flagging",
			zap.String("path", path),
			zap.Int("count", unshaped),
		)
	}

	return parcels, nil
}

func attr(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// shapeToGeom converts a shapefile polygon to a go-geom multipolygon.
// Non-polygonal shapes return nil; parcels are areal by definition.
func shapeToGeom(shape shp.Shape) geom.T {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("parcel: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("parcel: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
