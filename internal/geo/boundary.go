package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// Boundary is an administrative region outline used to clip the search grid,
// e.g. a canton polygon. Grid points outside the boundary are never queried.
type Boundary struct {
	polygons []*geom.Polygon
}

// LoadBoundary reads a boundary polygon from a .geojson/.json or .shp file.
func LoadBoundary(path string) (*Boundary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return loadGeoJSON(path)
	case ".shp":
		return loadShapefile(path)
	default:
		return nil, eris.Errorf("geo: unsupported boundary format %q", filepath.Ext(path))
	}
}

func loadGeoJSON(path string) (*Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read boundary %s", path)
	}

	var geoms []geom.T

	// Try the three shapes exports come in: a FeatureCollection, a single
	// Feature, and a bare geometry.
	var fc geojson.FeatureCollection
	var feature geojson.Feature
	switch {
	case json.Unmarshal(data, &fc) == nil && len(fc.Features) > 0:
		for _, f := range fc.Features {
			if f.Geometry != nil {
				geoms = append(geoms, f.Geometry)
			}
		}
	case json.Unmarshal(data, &feature) == nil && feature.Geometry != nil:
		geoms = append(geoms, feature.Geometry)
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, eris.Wrapf(err, "geo: parse boundary %s", path)
		}
		geoms = append(geoms, g)
	}

	b := &Boundary{}
	for _, g := range geoms {
		b.addGeometry(g)
	}
	if len(b.polygons) == 0 {
		return nil, eris.Errorf("geo: boundary %s contains no polygons", path)
	}

	zap.L().Debug("loaded boundary", zap.String("path", path), zap.Int("polygons", len(b.polygons)))
	return b, nil
}

func (b *Boundary) addGeometry(g geom.T) {
	switch t := g.(type) {
	case *geom.Polygon:
		b.polygons = append(b.polygons, t)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			b.polygons = append(b.polygons, t.Polygon(i))
		}
	}
}

// loadShapefile reads all polygon shapes from an ESRI shapefile. Parts of a
// shapefile polygon are treated as independent rings; ring winding is not
// inspected, every part counts as an exterior ring.
func loadShapefile(path string) (*Boundary, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	b := &Boundary{}
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		for part := 0; part < len(poly.Parts); part++ {
			start := int(poly.Parts[part])
			end := len(poly.Points)
			if part+1 < len(poly.Parts) {
				end = int(poly.Parts[part+1])
			}
			ring := make([]geom.Coord, 0, end-start)
			for _, pt := range poly.Points[start:end] {
				ring = append(ring, geom.Coord{pt.X, pt.Y})
			}
			if len(ring) < 4 {
				continue
			}
			gp := geom.NewPolygon(geom.XY)
			if _, err := gp.SetCoords([][]geom.Coord{ring}); err != nil {
				return nil, eris.Wrapf(err, "geo: build ring from shapefile %s", path)
			}
			b.polygons = append(b.polygons, gp)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "geo: read shapefile %s", path)
	}
	if len(b.polygons) == 0 {
		return nil, eris.Errorf("geo: shapefile %s contains no polygons", path)
	}

	zap.L().Debug("loaded boundary", zap.String("path", path), zap.Int("polygons", len(b.polygons)))
	return b, nil
}

// Contains reports whether the coordinate lies inside the boundary. A point
// inside a hole of a polygon does not count as contained.
func (b *Boundary) Contains(lat, lng float64) bool {
	p := geom.Coord{lng, lat}
	for _, poly := range b.polygons {
		if poly.NumLinearRings() == 0 {
			continue
		}
		exterior := poly.LinearRing(0)
		if !xy.IsPointInRing(exterior.Layout(), p, exterior.FlatCoords()) {
			continue
		}
		inHole := false
		for i := 1; i < poly.NumLinearRings(); i++ {
			hole := poly.LinearRing(i)
			if xy.IsPointInRing(hole.Layout(), p, hole.FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}
