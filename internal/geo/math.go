package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/umahmood/haversine"
)

// Projection maps lon/lat degrees onto a pixel canvas using a plate carrée
// projection with equal aspect, centered inside the canvas.
type Projection struct {
	Bounds  orb.Bound
	Scale   float64 // pixels per degree
	OffsetX float64
	OffsetY float64
}

// NewProjection fits bounds into a width x height canvas, keeping margin pixels free on every side.
func NewProjection(b orb.Bound, width, height, margin float64) Projection {
	availW := math.Max(width-2*margin, 1)
	availH := math.Max(height-2*margin, 1)

	bw, bh := b.Right()-b.Left(), b.Top()-b.Bottom()
	scale := math.Min(availW/bw, availH/bh)

	return Projection{
		Bounds:  b,
		Scale:   scale,
		OffsetX: (width - bw*scale) / 2,
		OffsetY: (height - bh*scale) / 2,
	}
}

// ToPixel converts lon/lat to canvas coordinates. Y grows downwards.
func (p Projection) ToPixel(pt orb.Point) (x, y float64) {
	x = p.OffsetX + (pt.Lon()-p.Bounds.Left())*p.Scale
	y = p.OffsetY + (p.Bounds.Top()-pt.Lat())*p.Scale
	return x, y
}

// Frame returns the pixel rectangle covered by the projected bounds.
func (p Projection) Frame() (x, y, w, h float64) {
	w = (p.Bounds.Right() - p.Bounds.Left()) * p.Scale
	h = (p.Bounds.Top() - p.Bounds.Bottom()) * p.Scale
	return p.OffsetX, p.OffsetY, w, h
}

// DistanceKm returns the great circle distance between two lon/lat points.
func DistanceKm(a, b orb.Point) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat(), Lon: a.Lon()},
		haversine.Coord{Lat: b.Lat(), Lon: b.Lon()},
	)
	return km
}

// RoundScale rounds a distance to a readable scale bar label value:
// hundreds above 100 km, tens below.
func RoundScale(km float64) float64 {
	if km >= 100 {
		return math.Round(km/100) * 100
	}
	return math.Round(km/10) * 10
}
