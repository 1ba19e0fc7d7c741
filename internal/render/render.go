// Package render draws classified countries onto raster images.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/woozymasta/ssamap/internal/classify"
	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/geo"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// Label modes.
const (
	LabelsAll         = "all"
	LabelsHighlighted = "highlighted"
	LabelsNone        = "none"
)

// Layout is the figure geometry shared by all maps.
type Layout struct {
	Bounds   orb.Bound
	WidthIn  float64
	HeightIn float64
	DPI      float64
}

// LayoutFromConfig builds the layout from render settings.
func LayoutFromConfig(r config.Render) Layout {
	return Layout{Bounds: r.Bounds.Bounds(), WidthIn: r.WidthIn, HeightIn: r.HeightIn, DPI: r.DPI}
}

// Pixels returns the canvas size.
func (l Layout) Pixels() (int, int) {
	return int(math.Round(l.WidthIn * l.DPI)), int(math.Round(l.HeightIn * l.DPI))
}

// pt converts typographic points to pixels.
func (l Layout) pt(v float64) float64 { return v * l.DPI / 72 }

// Scale bar placement, lon/lat.
var (
	scaleBarStart = orb.Point{30, -33}
	scaleBarEnd   = orb.Point{40, -33}
)

// Render draws the records onto a new image.
// Highlighted records are painted after the others so their borders stay on top.
func Render(records []classify.Record, layout Layout, m config.Map, legend Legend) (image.Image, error) {
	w, h := layout.Pixels()
	if w <= 0 || h <= 0 {
		return nil, errors.New("canvas size must be positive")
	}
	if b := layout.Bounds; b.IsEmpty() || b.Right() <= b.Left() || b.Top() <= b.Bottom() {
		return nil, errors.New("bounds must not be empty")
	}

	fc, err := newFaces(layout.DPI)
	if err != nil {
		return nil, err
	}
	defer fc.close()

	dc := gg.NewContext(w, h)
	r := &renderer{dc: dc, layout: layout, faces: fc, m: m}
	r.proj = geo.NewProjection(layout.Bounds, float64(w), float64(h), layout.pt(18))

	r.background()

	fx, fy, fw, fh := r.proj.Frame()
	dc.DrawRectangle(fx, fy, fw, fh)
	dc.Clip()

	if m.Grid {
		r.grid()
	}

	drawn := 0
	for _, pass := range []bool{false, true} {
		for _, rec := range records {
			if rec.IsHighlighted != pass {
				continue
			}
			if r.country(rec) {
				drawn++
			}
		}
	}

	if err := r.labels(records); err != nil {
		return nil, err
	}

	dc.ResetClip()

	if m.ScaleBar {
		if err := r.scaleBar(); err != nil {
			return nil, err
		}
	}
	if m.Frame {
		r.frame()
	}
	if !legend.IsEmpty() {
		if err := r.legend(legend); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("map", m.Name).
		Int("width", w).
		Int("height", h).
		Int("countries", drawn).
		Msg("Map rendered")

	return dc.Image(), nil
}

type renderer struct {
	dc     *gg.Context
	faces  *faces
	m      config.Map
	proj   geo.Projection
	layout Layout
}

func (r *renderer) background() {
	if !r.m.Transparent {
		r.dc.SetHexColor(orDefault(r.m.Background, "#ffffff"))
		r.dc.Clear()
	}

	if r.m.Ocean != "" {
		fx, fy, fw, fh := r.proj.Frame()
		r.dc.DrawRectangle(fx, fy, fw, fh)
		r.dc.SetHexColor(r.m.Ocean)
		r.dc.Fill()
	}
}

func (r *renderer) grid() {
	b := r.layout.Bounds
	dc := r.dc

	dc.Push()
	defer dc.Pop()

	dc.SetRGBA(0.5, 0.5, 0.5, 0.3)
	dc.SetLineWidth(r.layout.pt(0.8))
	dc.SetDash(r.layout.pt(3), r.layout.pt(3))

	for lon := math.Ceil(b.Left()/10) * 10; lon <= b.Right(); lon += 10 {
		x1, y1 := r.proj.ToPixel(orb.Point{lon, b.Bottom()})
		x2, y2 := r.proj.ToPixel(orb.Point{lon, b.Top()})
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
	for lat := math.Ceil(b.Bottom()/10) * 10; lat <= b.Top(); lat += 10 {
		x1, y1 := r.proj.ToPixel(orb.Point{b.Left(), lat})
		x2, y2 := r.proj.ToPixel(orb.Point{b.Right(), lat})
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
}

// country fills and outlines one record. It reports whether anything was drawn.
func (r *renderer) country(rec classify.Record) bool {
	if !geo.Drawable(rec.Geometry) || !rec.Geometry.Bound().Intersects(r.layout.Bounds) {
		return false
	}

	dc := r.dc
	dc.SetFillRule(gg.FillRuleEvenOdd)

	for _, poly := range rec.Geometry {
		dc.ClearPath()
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			dc.NewSubPath()
			for i, p := range ring {
				x, y := r.proj.ToPixel(p)
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.ClosePath()
		}

		if rec.Style.Fill != "" {
			dc.SetHexColor(rec.Style.Fill)
			dc.FillPreserve()
		}
		if rec.Style.Border != "" && rec.Style.BorderWidth > 0 {
			dc.SetHexColor(rec.Style.Border)
			dc.SetLineWidth(r.layout.pt(rec.Style.BorderWidth))
			dc.Stroke()
		}
		dc.ClearPath()
	}

	return true
}

func (r *renderer) labels(records []classify.Record) error {
	if r.m.Labels == "" || r.m.Labels == LabelsNone {
		return nil
	}

	for _, rec := range records {
		if r.m.Labels == LabelsHighlighted && !rec.IsHighlighted {
			continue
		}
		if !geo.Drawable(rec.Geometry) || rec.Name == "" {
			continue
		}

		size, isBold, color := 7.0, false, orDefault(r.m.LabelColor, "#343a40")
		if rec.IsHighlighted {
			size, isBold, color = 10.0, true, orDefault(r.m.HighlightLabelColor, "#000000")
		}

		face, err := r.faces.face(size, isBold)
		if err != nil {
			return err
		}
		r.dc.SetFontFace(face)

		x, y := r.proj.ToPixel(geo.LabelPoint(rec.Geometry))

		if r.m.LabelHalo {
			r.halo(rec.Name, x, y, r.layout.pt(1))
		}

		r.dc.SetHexColor(color)
		r.dc.DrawStringAnchored(rec.Name, x, y, 0.5, 0.5)
	}

	return nil
}

// halo draws a faint outline behind a label.
func (r *renderer) halo(s string, x, y, radius float64) {
	r.dc.SetHexColor("#33333322")
	for _, d := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {1, 1}, {-1, 1}, {1, -1}} {
		r.dc.DrawStringAnchored(s, x+d[0]*radius, y+d[1]*radius, 0.5, 0.5)
	}
}

func (r *renderer) scaleBar() error {
	km := geo.RoundScale(geo.DistanceKm(scaleBarStart, scaleBarEnd))

	x1, y1 := r.proj.ToPixel(scaleBarStart)
	x2, y2 := r.proj.ToPixel(scaleBarEnd)

	dc := r.dc
	dc.SetHexColor("#000000")
	dc.SetLineWidth(r.layout.pt(2))
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	face, err := r.faces.face(8, false)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	lx, ly := r.proj.ToPixel(orb.Point{(scaleBarStart.Lon() + scaleBarEnd.Lon()) / 2, scaleBarStart.Lat() - 1})
	dc.DrawStringAnchored(fmt.Sprintf("%.0f km (approx.)", km), lx, ly, 0.5, 0.5)

	return nil
}

func (r *renderer) frame() {
	fx, fy, fw, fh := r.proj.Frame()
	r.dc.DrawRectangle(fx, fy, fw, fh)
	r.dc.SetHexColor("#cccccc")
	r.dc.SetLineWidth(r.layout.pt(0.5))
	r.dc.Stroke()
}

// legend draws the legend box in the lower right corner of the map frame.
func (r *renderer) legend(l Legend) error {
	titleFace, err := r.faces.face(10, true)
	if err != nil {
		return err
	}
	entryFace, err := r.faces.face(9, false)
	if err != nil {
		return err
	}

	pad := r.layout.pt(6)
	patchW, patchH := r.layout.pt(18), r.layout.pt(9)
	gap := r.layout.pt(4)
	dc := r.dc

	dc.SetFontFace(entryFace)
	lineH := math.Max(patchH, float64(entryFace.Metrics().Height.Round())) + gap
	maxW := 0.0
	for _, e := range l.Entries {
		w, _ := dc.MeasureString(e.Label)
		maxW = math.Max(maxW, patchW+gap+w)
	}

	titleH := 0.0
	if l.Title != "" {
		dc.SetFontFace(titleFace)
		w, _ := dc.MeasureString(l.Title)
		maxW = math.Max(maxW, w)
		titleH = float64(titleFace.Metrics().Height.Round()) + gap
	}

	boxW := maxW + 2*pad
	boxH := titleH + float64(len(l.Entries))*lineH + 2*pad - gap

	fx, fy, fw, fh := r.proj.Frame()
	bx := fx + fw - boxW - pad
	by := fy + fh - boxH - pad

	dc.DrawRoundedRectangle(bx, by, boxW, boxH, r.layout.pt(3))
	dc.SetRGBA(1, 1, 1, 0.9)
	dc.FillPreserve()
	dc.SetHexColor("#dddddd")
	dc.SetLineWidth(r.layout.pt(0.8))
	dc.Stroke()

	y := by + pad
	if l.Title != "" {
		dc.SetFontFace(titleFace)
		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(l.Title, bx+boxW/2, y+titleH/2-gap/2, 0.5, 0.5)
		y += titleH
	}

	dc.SetFontFace(entryFace)
	for _, e := range l.Entries {
		cy := y + (lineH-gap)/2

		dc.DrawRectangle(bx+pad, cy-patchH/2, patchW, patchH)
		dc.SetHexColor(e.Color)
		dc.FillPreserve()
		dc.SetHexColor("#999999")
		dc.SetLineWidth(r.layout.pt(0.5))
		dc.Stroke()

		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(e.Label, bx+pad+patchW+gap, cy, 0, 0.5)
		y += lineH
	}

	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
