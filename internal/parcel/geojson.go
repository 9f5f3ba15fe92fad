package parcel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/glassbox-planner/compat-cli/internal/landuse"
)

// LoadGeoJSON reads parcels from a GeoJSON FeatureCollection. landUseProperty
// names the feature property holding the land-use label; idProperty may be
// empty, in which case the feature ID or a sequential identifier is used.
func LoadGeoJSON(path, landUseProperty, idProperty string, syn *landuse.Table) ([]Parcel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parcel: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "parcel: parse geojson")
	}

	parcels := make([]Parcel, 0, len(fc.Features))
	for i, feat := range fc.Features {
		props := feat.Properties
		if props == nil {
			props = map[string]any{}
		}

		id := feat.ID
		if idProperty != "" {
			if v, ok := props[idProperty]; ok {
				id = fmt.Sprintf("%v", v)
			}
		}
		if id == "" {
			id = fmt.Sprintf("P%06d", i)
		}

		var rawUse string
		if v, ok := props[landUseProperty]; ok {
			rawUse = fmt.Sprintf("%v", v)
		}

		parcels = append(parcels, Parcel{
			ID:         id,
			Category:   syn.Canonical(rawUse),
			Geometry:   feat.Geometry,
			Attributes: props,
		})
	}

	return parcels, nil
}

// WriteGeoJSON writes parcels as a GeoJSON FeatureCollection in the input's
// collection format, with extra per-parcel output attributes merged in via
// the enrich callback. Input attributes are passed through unchanged.
func WriteGeoJSON(w io.Writer, parcels []Parcel, enrich func(Parcel) map[string]any) error {
	features := make([]*geojson.Feature, 0, len(parcels))
	for _, p := range parcels {
		props := make(map[string]any, len(p.Attributes)+4)
		for k, v := range p.Attributes {
			props[k] = v
		}
		if enrich != nil {
			for k, v := range enrich(p) {
				props[k] = v
			}
		}
		g := p.Geometry
		if g == nil {
			// Flagged parcels without usable geometry still appear in the
			// output so they are enumerable, with an empty polygon.
			g = geom.NewPolygon(geom.XY)
		}
		features = append(features, &geojson.Feature{
			ID:         p.ID,
			Geometry:   g,
			Properties: props,
		})
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(&geojson.FeatureCollection{Features: features}); err != nil {
		return eris.Wrap(err, "parcel: encode geojson")
	}
	return nil
}
