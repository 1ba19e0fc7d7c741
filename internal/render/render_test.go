package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/ssamap/internal/classify"
	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/dataset"
	"github.com/woozymasta/ssamap/internal/geo"
	"github.com/woozymasta/ssamap/internal/style"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() Layout {
	l := LayoutFromConfig(config.Default().Render)
	l.DPI = 20
	return l
}

func boxRecord(name, iso string, x0, y0, x1, y1 float64, highlighted bool, st style.Style) classify.Record {
	ring := orb.Ring{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}, {x0, y0}}
	return classify.Record{
		CountryRecord: dataset.CountryRecord{Name: name, ISO: iso, Geometry: orb.MultiPolygon{{ring}}},
		ISO:           iso,
		IsSubSaharan:  true,
		IsHighlighted: highlighted,
		Style:         st,
	}
}

func pixelAt(t *testing.T, img image.Image, layout Layout, p orb.Point) color.RGBA {
	t.Helper()

	w, h := layout.Pixels()
	proj := geo.NewProjection(layout.Bounds, float64(w), float64(h), layout.pt(18))
	x, y := proj.ToPixel(p)

	r, g, b, a := img.At(int(x), int(y)).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestLayoutPixels(t *testing.T) {
	w, h := LayoutFromConfig(config.Default().Render).Pixels()
	assert.Equal(t, 4200, w)
	assert.Equal(t, 4800, h)
}

func TestRenderFillsCountries(t *testing.T) {
	layout := testLayout()
	records := []classify.Record{
		boxRecord("Kenya", "KEN", 34, -4, 41, 5, true, style.Style{Fill: "#3a86ff"}),
		boxRecord("Nigeria", "NGA", 3, 4, 14, 13, false, style.Style{Fill: "#fffcf2"}),
	}
	m := config.Map{Name: "test", Labels: LabelsNone, Background: "#f8f9fa"}

	img, err := Render(records, layout, m, Legend{})
	require.NoError(t, err)

	w, h := layout.Pixels()
	assert.Equal(t, image.Rect(0, 0, w, h), img.Bounds())

	assert.Equal(t, color.RGBA{0x3a, 0x86, 0xff, 0xff}, pixelAt(t, img, layout, orb.Point{37.5, 0.5}))
	assert.Equal(t, color.RGBA{0xff, 0xfc, 0xf2, 0xff}, pixelAt(t, img, layout, orb.Point{8.5, 8.5}))
	assert.Equal(t, color.RGBA{0xf8, 0xf9, 0xfa, 0xff}, pixelAt(t, img, layout, orb.Point{-10, -30}))
}

func TestRenderHighlightedDrawnOnTop(t *testing.T) {
	layout := testLayout()
	// overlapping boxes, highlighted listed first
	records := []classify.Record{
		boxRecord("Top", "TOP", 0, 0, 10, 10, true, style.Style{Fill: "#ff0000"}),
		boxRecord("Bottom", "BOT", 0, 0, 10, 10, false, style.Style{Fill: "#00ff00"}),
	}

	img, err := Render(records, layout, config.Map{Labels: LabelsNone}, Legend{})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, pixelAt(t, img, layout, orb.Point{5, 5}))
}

func TestRenderTransparentBackground(t *testing.T) {
	layout := testLayout()
	img, err := Render(nil, layout, config.Map{Transparent: true}, Legend{})
	require.NoError(t, err)

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
}

func TestRenderFullDecorations(t *testing.T) {
	layout := testLayout()
	cfg := config.Default()
	m := cfg.Maps[0]
	p, err := cfg.Palette(m.Palette)
	require.NoError(t, err)

	records := []classify.Record{
		boxRecord("Kenya", "KEN", 34, -4, 41, 5, true, p.Style(true, true, "KEN")),
		boxRecord("Nigeria", "NGA", 3, 4, 14, 13, false, p.Style(true, false, "NGA")),
	}

	img, err := Render(records, layout, m, BuildLegend(m, p, cfg.Classification.Targets))
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestRenderRejectsBadLayout(t *testing.T) {
	layout := testLayout()
	layout.DPI = 0
	_, err := Render(nil, layout, config.Map{}, Legend{})
	assert.Error(t, err)

	layout = testLayout()
	layout.Bounds = orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{10, 10}}
	_, err = Render(nil, layout, config.Map{}, Legend{})
	assert.Error(t, err)
}

func TestBuildLegend(t *testing.T) {
	cfg := config.Default()
	targets := cfg.Classification.Targets

	classes := BuildLegend(cfg.Maps[0], style.Builtin()[style.Academic], targets)
	assert.Equal(t, "Country Classification", classes.Title)
	assert.Equal(t, []LegendEntry{
		{Color: "#3a86ff", Label: "DRC, Kenya, South Africa, Somalia"},
		{Color: "#fffcf2", Label: "Other Sub-Saharan Countries"},
	}, classes.Entries)

	focus := BuildLegend(cfg.Maps[2], style.Builtin()[style.Focus], targets)
	assert.Equal(t, "Countries of Interest", focus.Title)
	require.Len(t, focus.Entries, 4)
	assert.Equal(t, LegendEntry{Color: "#1e3799", Label: "Democratic Republic of the Congo"}, focus.Entries[0])
	assert.Equal(t, LegendEntry{Color: "#3867d6", Label: "Somalia"}, focus.Entries[3])

	assert.True(t, BuildLegend(cfg.Maps[1], style.Builtin()[style.Base], targets).IsEmpty())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	png := filepath.Join(dir, "out", "map.png")
	webpPath := filepath.Join(dir, "map.webp")
	require.NoError(t, Save(img, png, webpPath))

	for _, p := range []string{png, webpPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	err := Save(img, filepath.Join(dir, "map.gif"), filepath.Join(dir, "ok.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
	assert.FileExists(t, filepath.Join(dir, "ok.png"))
}
