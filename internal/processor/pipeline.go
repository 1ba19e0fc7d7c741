// Package processor runs the map generation pipeline.
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/woozymasta/ssamap/internal/classify"
	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/dataset"
	"github.com/woozymasta/ssamap/internal/drawio"
	"github.com/woozymasta/ssamap/internal/geo"
	"github.com/woozymasta/ssamap/internal/render"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// Options are run-time switches that do not belong in the config file.
type Options struct {
	Only    []string // map names to render, all when empty
	Force   bool     // re-download the dataset
	Compact bool     // minify the drawio document
	NoMaps  bool     // skip rendering, useful with a GeoJSON export only
}

// LoadDataset acquires the shapefile, loads it and appends supplementary territories.
func LoadDataset(ctx context.Context, client dataset.Doer, cfg *config.Config, force bool) (*dataset.Dataset, error) {
	src := dataset.Source{URL: cfg.Source.URL, DataDir: cfg.Source.DataDir, Stem: cfg.Source.Stem}

	path, err := dataset.Acquire(ctx, client, src, force)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	if n := ds.Append(Supplementary(cfg.Supplementary)...); n > 0 {
		log.Info().Int("count", n).Msg("Supplementary territories added")
	}

	return ds, nil
}

// Supplementary converts configured territories into dataset records.
func Supplementary(territories []config.Territory) []dataset.CountryRecord {
	out := make([]dataset.CountryRecord, 0, len(territories))
	for _, t := range territories {
		ring := make(orb.Ring, 0, len(t.Ring)+1)
		for _, p := range t.Ring {
			ring = append(ring, orb.Point{p[0], p[1]})
		}
		out = append(out, dataset.CountryRecord{
			Name:      t.Name,
			ISO:       dataset.NormalizeISO(t.ISO),
			Continent: t.Continent,
			Geometry:  orb.MultiPolygon{{geo.CloseRing(ring)}},
		})
	}
	return out
}

// Classify runs the classification and reports focus countries that were not found.
func Classify(ds *dataset.Dataset, cfg *config.Config) (*classify.Result, error) {
	res, err := classify.Run(ds, cfg.Classification)
	if err != nil {
		return nil, err
	}

	for _, t := range classify.MissingTargets(res, cfg.Classification.Targets) {
		log.Warn().
			Str("country", t.Name).
			Str("iso", t.ISO).
			Msg("Focus country not found in dataset, skipping")
	}

	hl := res.Highlighted()
	names := make([]string, 0, len(hl))
	for _, r := range hl {
		names = append(names, r.Name)
	}

	log.Info().
		Str("strategy", res.Strategy).
		Bool("degraded", res.Degraded).
		Int("subsaharan", len(res.SubSaharan())).
		Strs("highlighted", names).
		Msg("Countries classified")

	return res, nil
}

// RenderMaps draws and saves every configured map selected by only.
func RenderMaps(res *classify.Result, cfg *config.Config, only []string) error {
	layout := render.LayoutFromConfig(cfg.Render)

	for _, m := range cfg.Maps {
		if len(only) > 0 && !slices.Contains(only, m.Name) {
			log.Debug().Str("map", m.Name).Msg("Map not selected, skipping")
			continue
		}

		palette, err := cfg.Palette(m.Palette)
		if err != nil {
			return fmt.Errorf("map %s: %w", m.Name, err)
		}

		records := res.Styled(palette)
		legend := render.BuildLegend(m, palette, cfg.Classification.Targets)

		img, err := render.Render(records, layout, m, legend)
		if err != nil {
			return fmt.Errorf("render %s: %w", m.Name, err)
		}

		paths := make([]string, 0, len(m.Outputs))
		for _, out := range m.Outputs {
			paths = append(paths, outPath(cfg, out))
		}

		if err := render.Save(img, paths...); err != nil {
			return fmt.Errorf("save %s: %w", m.Name, err)
		}
	}

	return nil
}

// ExportGeoJSON writes the Sub-Saharan records styled with the configured palette.
func ExportGeoJSON(res *classify.Result, cfg *config.Config) error {
	palette, err := cfg.Palette(cfg.Render.GeoJSONPalette)
	if err != nil {
		return fmt.Errorf("geojson: %w", err)
	}

	path := outPath(cfg, cfg.Render.GeoJSON)
	if err := SaveGeoJSON(path, FeatureCollection(res.Styled(palette))); err != nil {
		return fmt.Errorf("geojson: %w", err)
	}

	log.Info().
		Str("path", path).
		Str("palette", cfg.Render.GeoJSONPalette).
		Msg("GeoJSON saved")

	return nil
}

// drawioImageRendered reports whether the image the diagram embeds is produced
// by a map selected for this run. Images no map produces are assumed to exist.
func drawioImageRendered(cfg *config.Config, only []string) bool {
	if len(only) == 0 {
		return true
	}

	image := filepath.Base(cfg.Drawio.Image)
	for _, m := range cfg.Maps {
		for _, out := range m.Outputs {
			if filepath.Base(out) == image {
				return slices.Contains(only, m.Name)
			}
		}
	}

	return true
}

// ExportDrawio writes the diagram document when enabled.
func ExportDrawio(cfg *config.Config, compact bool, now time.Time) error {
	if !cfg.Drawio.Enabled {
		return nil
	}

	doc, err := drawio.Build(drawio.FromConfig(cfg.Drawio, now))
	if err != nil {
		return err
	}

	return drawio.Write(doc, outPath(cfg, cfg.Drawio.Output), compact)
}

// Run executes the whole pipeline: acquisition, classification, rendering and export.
func Run(ctx context.Context, client dataset.Doer, cfg *config.Config, opts Options) error {
	ds, err := LoadDataset(ctx, client, cfg, opts.Force)
	if err != nil {
		return err
	}

	res, err := Classify(ds, cfg)
	if err != nil {
		return err
	}

	if cfg.Render.GeoJSON != "" {
		if err := ExportGeoJSON(res, cfg); err != nil {
			return err
		}
	}

	if opts.NoMaps {
		return nil
	}

	if err := RenderMaps(res, cfg, opts.Only); err != nil {
		return err
	}

	if cfg.Drawio.Enabled && !drawioImageRendered(cfg, opts.Only) {
		log.Warn().
			Str("image", cfg.Drawio.Image).
			Strs("maps", opts.Only).
			Msg("Diagram image is not rendered by the selected maps, skipping draw.io export")
		return nil
	}

	return ExportDrawio(cfg, opts.Compact, time.Now())
}

func outPath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) || cfg.Render.OutDir == "" {
		return name
	}
	return filepath.Join(cfg.Render.OutDir, name)
}
