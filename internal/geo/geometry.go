// Package geo holds the geometry helpers and the lon/lat to pixel projection
// used by the loader and the renderer.
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// CloseRing returns the ring with its first point repeated at the end.
// Rings that are already closed are returned unchanged.
func CloseRing(r orb.Ring) orb.Ring {
	if len(r) == 0 || r.Closed() {
		return r
	}
	return append(r[:len(r):len(r)], r[0])
}

// IsOuter reports whether a shapefile ring is a shell. Shapefile shells are clockwise, holes counter-clockwise.
func IsOuter(r orb.Ring) bool {
	return r.Orientation() == orb.CW
}

// LabelPoint returns the area weighted centroid of all parts, which is where a country label is anchored.
// Geometry without area falls back to the center of its bound.
func LabelPoint(mp orb.MultiPolygon) orb.Point {
	c, area := planar.CentroidArea(mp)
	if area == 0 && len(mp) > 0 {
		return mp.Bound().Center()
	}
	return c
}

// Area returns the planar area in square degrees with holes subtracted.
func Area(mp orb.MultiPolygon) float64 {
	return planar.Area(mp)
}

// Drawable reports whether the geometry has a shell with at least three vertices.
func Drawable(mp orb.MultiPolygon) bool {
	for _, p := range mp {
		if len(p) > 0 && len(p[0]) >= 3 {
			return true
		}
	}
	return false
}
