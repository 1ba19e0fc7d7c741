package processor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/woozymasta/ssamap/internal/config"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type country struct {
	name, iso, continent string
	x0, y0, x1, y1       float64
}

var fixtureCountries = []country{
	{"Kenya", "KEN", "Africa", 34, -4, 41, 5},
	{"South Africa", "ZAF", "Africa", 17, -34, 32, -23},
	{"Dem. Rep. Congo", "COD", "Africa", 12, -13, 31, 5},
	{"Somalia", "SOM", "Africa", 41, -1, 51, 11},
	{"Nigeria", "NGA", "Africa", 3, 4, 14, 13},
	{"Algeria", "DZA", "Africa", -8, 19, 12, 37},
	{"France", "-99", "Europe", -4, 43, 8, 51},
}

// shapefileArchive writes the fixture countries as a shapefile and zips its parts.
func shapefileArchive(t *testing.T, stem string) []byte {
	t.Helper()

	dir := t.TempDir()
	w, err := shp.Create(filepath.Join(dir, stem+".shp"), shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{
		shp.StringField("NAME", 40),
		shp.StringField("ISO_A3", 3),
		shp.StringField("CONTINENT", 20),
	})

	for _, c := range fixtureCountries {
		pl := shp.NewPolyLine([][]shp.Point{{
			{X: c.x0, Y: c.y0}, {X: c.x0, Y: c.y1}, {X: c.x1, Y: c.y1}, {X: c.x1, Y: c.y0}, {X: c.x0, Y: c.y0},
		}})
		p := shp.Polygon(*pl)
		n := int(w.Write(&p))
		w.WriteAttribute(n, 0, c.name)
		w.WriteAttribute(n, 1, c.iso)
		w.WriteAttribute(n, 2, c.continent)
	}
	w.Close()

	// go-shp names the attribute table "<stem>dbf"
	if _, err := os.Stat(filepath.Join(dir, stem+"dbf")); err == nil {
		require.NoError(t, os.Rename(filepath.Join(dir, stem+"dbf"), filepath.Join(dir, stem+".dbf")))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		data, err := os.ReadFile(filepath.Join(dir, stem+ext))
		require.NoError(t, err)
		f, err := zw.Create(stem + ext)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func testConfig(t *testing.T, url string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Source.URL = url
	cfg.Source.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Render.OutDir = filepath.Join(t.TempDir(), "out")
	cfg.Render.DPI = 15
	cfg.Render.GeoJSON = "subsaharan_africa.geojson"
	cfg.Supplementary = []config.Territory{{
		Name: "Comoros", ISO: "COM", Continent: "Africa",
		Ring: [][2]float64{{43.2, -11.4}, {43.5, -11.4}, {43.5, -11.9}, {43.2, -11.9}},
	}}
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	archive := shapefileArchive(t, config.Default().Source.Stem)

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, Run(context.Background(), srv.Client(), cfg, Options{Compact: true}))

	for _, name := range []string{
		"subsaharan_africa_academic_map.png",
		"subsaharan_africa_base.png",
		"subsaharan_africa_highlighted.png",
		"migration_flows.drawio",
		"subsaharan_africa.geojson",
	} {
		assert.FileExists(t, filepath.Join(cfg.Render.OutDir, name))
	}

	data, err := os.ReadFile(filepath.Join(cfg.Render.OutDir, "subsaharan_africa.geojson"))
	require.NoError(t, err)

	var fc struct {
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	highlighted := map[string]bool{}
	fills := map[string]interface{}{}
	var all []string
	for _, f := range fc.Features {
		name := f.Properties["name"].(string)
		all = append(all, name)
		highlighted[name] = f.Properties["highlighted"].(bool)
		fills[name] = f.Properties["fill"]
		assert.Contains(t, f.Properties, "stroke", name)
		assert.Contains(t, f.Properties, "stroke-width", name)
	}
	assert.Equal(t, []string{"Kenya", "South Africa", "Dem. Rep. Congo", "Somalia", "Nigeria", "Comoros"}, all)
	assert.Equal(t, map[string]bool{
		"Kenya": true, "South Africa": true, "Dem. Rep. Congo": true, "Somalia": true,
		"Nigeria": false, "Comoros": false,
	}, highlighted)
	assert.Equal(t, map[string]interface{}{
		"Kenya": "#4b7bec", "South Africa": "#0abde3", "Dem. Rep. Congo": "#1e3799", "Somalia": "#3867d6",
		"Nigeria": "#f2f2f2", "Comoros": "#f2f2f2",
	}, fills)

	// second run reuses the cached dataset
	require.NoError(t, Run(context.Background(), srv.Client(), cfg, Options{Only: []string{"base"}}))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestRunFailsOnDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	err := Run(context.Background(), srv.Client(), testConfig(t, srv.URL), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 410")
}

func TestRenderMapsUnknownPalette(t *testing.T) {
	cfg := config.Default()
	cfg.Maps = []config.Map{{Name: "broken", Palette: "neon"}}

	err := RenderMaps(nil, cfg, nil)
	assert.Error(t, err)
}

func TestExportDrawioDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Drawio.Enabled = false
	cfg.Render.OutDir = t.TempDir()

	require.NoError(t, ExportDrawio(cfg, false, time.Now()))
	assert.NoFileExists(t, filepath.Join(cfg.Render.OutDir, cfg.Drawio.Output))
}

func TestSupplementary(t *testing.T) {
	recs := Supplementary([]config.Territory{{
		Name: "Comoros", ISO: "com", Continent: "Africa",
		Ring: [][2]float64{{0, 0}, {1, 0}, {1, 1}},
	}})
	require.Len(t, recs, 1)
	assert.Equal(t, "COM", recs[0].ISO)
	require.Len(t, recs[0].Geometry, 1)
	assert.True(t, recs[0].Geometry[0][0].Closed())
	assert.Len(t, recs[0].Geometry[0][0], 4)
}

func TestDrawioImageRendered(t *testing.T) {
	cfg := config.Default()

	assert.True(t, drawioImageRendered(cfg, nil))
	assert.True(t, drawioImageRendered(cfg, []string{"highlighted"}))
	assert.False(t, drawioImageRendered(cfg, []string{"base"}))

	cfg.Drawio.Image = "satellite.png"
	assert.True(t, drawioImageRendered(cfg, []string{"base"}), "images no map writes are external")
}

func TestRunSkipsDrawioWithoutItsImage(t *testing.T) {
	archive := shapefileArchive(t, config.Default().Source.Stem)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, Run(context.Background(), srv.Client(), cfg, Options{Only: []string{"base"}}))

	assert.FileExists(t, filepath.Join(cfg.Render.OutDir, "subsaharan_africa_base.png"))
	assert.NoFileExists(t, filepath.Join(cfg.Render.OutDir, "subsaharan_africa_highlighted.png"))
	assert.NoFileExists(t, filepath.Join(cfg.Render.OutDir, cfg.Drawio.Output))
}
