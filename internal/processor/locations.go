package processor

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/woozymasta/ssamap/internal/classify"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// FeatureCollection converts classified records into GeoJSON features.
// Presentation properties are set only for styled records.
func FeatureCollection(records []classify.Record) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, r := range records {
		f := geojson.NewFeature(r.Geometry)
		f.Properties["name"] = r.Name
		f.Properties["iso_a3"] = r.ISO
		f.Properties["subsaharan"] = r.IsSubSaharan
		f.Properties["highlighted"] = r.IsHighlighted
		f.Properties["supplementary"] = r.Supplementary

		if r.Target != "" {
			f.Properties["target"] = r.Target
		}
		if r.Style.Fill != "" {
			f.Properties["fill"] = r.Style.Fill
			f.Properties["stroke"] = r.Style.Border
			f.Properties["stroke-width"] = r.Style.BorderWidth
		}

		fc.Append(f)
	}

	return fc
}

// SaveGeoJSON marshals the feature collection and writes it to disk.
func SaveGeoJSON(path string, fc *geojson.FeatureCollection) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	_, err = f.Write(data)
	return err
}
