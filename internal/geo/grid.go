// Package geo provides the search grid and region boundary handling for the
// canvass. A grid is a row-major lattice of sample coordinates covering a
// bounding box, with east-west spacing corrected for longitude flattening.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// KMPerDegree is the approximate length of one degree of latitude in
// kilometers at mid-latitudes.
const KMPerDegree = 111.0

// Point is a single sample coordinate at which a provider query is issued.
type Point struct {
	Lat float64
	Lng float64
}

// Bounds is a bounding box given by its southwest and northeast corners.
type Bounds struct {
	SWLat float64 `yaml:"sw_lat" json:"sw_lat" mapstructure:"sw_lat"`
	SWLng float64 `yaml:"sw_lng" json:"sw_lng" mapstructure:"sw_lng"`
	NELat float64 `yaml:"ne_lat" json:"ne_lat" mapstructure:"ne_lat"`
	NELng float64 `yaml:"ne_lng" json:"ne_lng" mapstructure:"ne_lng"`
}

// Validate reports whether the bounds describe a non-degenerate box.
func (b Bounds) Validate() error {
	if b.SWLat == 0 && b.SWLng == 0 && b.NELat == 0 && b.NELng == 0 {
		return eris.New("geo: bounds are unset")
	}
	if b.NELat < b.SWLat {
		return eris.Errorf("geo: ne_lat %.4f is south of sw_lat %.4f", b.NELat, b.SWLat)
	}
	if b.NELng < b.SWLng {
		return eris.Errorf("geo: ne_lng %.4f is west of sw_lng %.4f", b.NELng, b.SWLng)
	}
	if b.SWLat < -90 || b.NELat > 90 || b.SWLng < -180 || b.NELng > 180 {
		return eris.New("geo: bounds outside valid coordinate range")
	}
	return nil
}

// KMToLat converts a distance in kilometers to a latitude delta.
func KMToLat(km float64) float64 {
	return km / KMPerDegree
}

// KMToLng converts a distance in kilometers to a longitude delta at the
// given latitude. The east-west length of a degree shrinks with
// cos(latitude), so grid cells stay roughly square on the ground.
func KMToLng(km, lat float64) float64 {
	return km / (KMPerDegree * math.Cos(lat*math.Pi/180.0))
}

// Grid generates the sample points covering bounds with the given step
// distance. Rows run south to north, points within a row west to east. Both
// loop conditions are inclusive, so the final row and column may sit on or
// slightly past the northeast corner; coverage has no gap at the boundary.
// Callers must not depend on ordering, only on full coverage.
func Grid(bounds Bounds, stepKM float64) ([]Point, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if stepKM <= 0 {
		return nil, eris.Errorf("geo: grid step must be positive, got %.2f", stepKM)
	}

	var points []Point
	latStep := KMToLat(stepKM)
	for lat := bounds.SWLat; lat <= bounds.NELat; lat += latStep {
		lngStep := KMToLng(stepKM, lat)
		for lng := bounds.SWLng; lng <= bounds.NELng; lng += lngStep {
			points = append(points, Point{Lat: lat, Lng: lng})
		}
	}
	return points, nil
}

// Clip removes grid points that fall outside the boundary polygon. A nil
// boundary keeps every point.
func Clip(points []Point, boundary *Boundary) []Point {
	if boundary == nil {
		return points
	}
	kept := points[:0:0]
	for _, p := range points {
		if boundary.Contains(p.Lat, p.Lng) {
			kept = append(kept, p)
		}
	}
	return kept
}
