// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/woozymasta/ssamap/internal/style"

	"github.com/hashicorp/go-multierror"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Palettes       map[string]style.Palette `yaml:"palettes,omitempty"`
	Source         Source                   `yaml:"source"`
	Classification Classification           `yaml:"classification"`
	Supplementary  []Territory              `yaml:"supplementary,omitempty"`
	Render         Render                   `yaml:"render"`
	Maps           []Map                    `yaml:"maps"`
	Drawio         Drawio                   `yaml:"drawio"`
}

// Source describes where the country boundary dataset comes from.
type Source struct {
	URL     string        `yaml:"url"`
	DataDir string        `yaml:"data_dir"`
	Stem    string        `yaml:"stem"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Classification holds the attribute names and code lists used to select countries.
type Classification struct {
	ContinentValue   string    `yaml:"continent_value"`
	ContinentColumns []string  `yaml:"continent_columns"`
	ISOColumns       []string  `yaml:"iso_columns"`
	NameColumn       string    `yaml:"name_column"`
	AfricanISO       []string  `yaml:"african_iso"`
	NorthAfrica      []Country `yaml:"north_africa"`
	Targets          []Target  `yaml:"targets"`
	AllowUnfiltered  bool      `yaml:"allow_unfiltered,omitempty"`
}

// Country is an ISO-3 code with its dataset name.
type Country struct {
	ISO  string `yaml:"iso"`
	Name string `yaml:"name"`
}

// Target is a focus country with every name spelling seen across dataset releases.
type Target struct {
	Name     string   `yaml:"name"`
	ISO      string   `yaml:"iso"`
	Short    string   `yaml:"short,omitempty"`
	Variants []string `yaml:"variants"`
}

// Territory is a synthetic record for a territory missing from the dataset.
type Territory struct {
	Name      string       `yaml:"name"`
	ISO       string       `yaml:"iso"`
	Continent string       `yaml:"continent"`
	Ring      [][2]float64 `yaml:"ring"` // [lon, lat]
}

// Render holds presentation constants shared by all maps.
type Render struct {
	Bounds   BBox    `yaml:"bounds"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	DPI      float64 `yaml:"dpi"`
	OutDir   string  `yaml:"out_dir"`
	GeoJSON  string  `yaml:"geojson,omitempty"` // optional classified dataset export

	// GeoJSONPalette provides the fill and stroke properties of the export.
	GeoJSONPalette string `yaml:"geojson_palette,omitempty"`
}

// BBox is the visible lon/lat window.
type BBox struct {
	MinLon float64 `yaml:"min_lon"`
	MinLat float64 `yaml:"min_lat"`
	MaxLon float64 `yaml:"max_lon"`
	MaxLat float64 `yaml:"max_lat"`
}

// Bounds converts the window to an orb bound.
func (b BBox) Bounds() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
}

// Map describes one rendered image.
type Map struct {
	Name        string   `yaml:"name"`
	Palette     string   `yaml:"palette"`
	Outputs     []string `yaml:"outputs"`
	Labels      string   `yaml:"labels,omitempty"` // all, highlighted, none
	LegendTitle string   `yaml:"legend_title,omitempty"`
	Legend      string   `yaml:"legend,omitempty"` // classes, targets, none
	Background  string   `yaml:"background,omitempty"`
	Ocean       string   `yaml:"ocean,omitempty"`
	Transparent bool     `yaml:"transparent,omitempty"`
	Grid        bool     `yaml:"grid,omitempty"`
	ScaleBar    bool     `yaml:"scale_bar,omitempty"`
	Frame       bool     `yaml:"frame,omitempty"`
	LabelHalo   bool     `yaml:"label_halo,omitempty"`

	LabelColor          string `yaml:"label_color,omitempty"`
	HighlightLabelColor string `yaml:"highlight_label_color,omitempty"`
}

// Drawio configures the diagram export.
type Drawio struct {
	Output  string   `yaml:"output"`
	Image   string   `yaml:"image"`
	Anchors []Anchor `yaml:"anchors"`
	Flows   []Flow   `yaml:"flows"`
	Enabled bool     `yaml:"enabled"`
}

// Anchor is an invisible reference point placed over the map image.
type Anchor struct {
	ID string  `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

// Flow is a directed arrow between two anchors.
type Flow struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Color  string `yaml:"color"`
	Legend string `yaml:"legend,omitempty"`
	Exit   string `yaml:"exit,omitempty"` // right, left, bottom, top
}

// Load reads and parses the YAML configuration file from the specified path.
// Keys absent from the file keep their built-in defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Palette resolves a palette by name, config entries take precedence over built-ins.
func (c *Config) Palette(name string) (style.Palette, error) {
	if p, ok := c.Palettes[name]; ok {
		return p, nil
	}
	if p, ok := style.Builtin()[name]; ok {
		return p, nil
	}
	return style.Palette{}, fmt.Errorf("unknown palette %q", name)
}

// Validate checks values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Source.URL == "" {
		result = multierror.Append(result, errors.New("source.url is empty"))
	}
	if c.Source.Stem == "" {
		result = multierror.Append(result, errors.New("source.stem is empty"))
	}

	b := c.Render.Bounds
	if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
		result = multierror.Append(result, fmt.Errorf("render.bounds is empty: %+v", b))
	}
	if c.Render.DPI <= 0 || c.Render.WidthIn <= 0 || c.Render.HeightIn <= 0 {
		result = multierror.Append(result, errors.New("render size and dpi must be positive"))
	}

	for _, t := range c.Classification.Targets {
		if t.ISO == "" && len(t.Variants) == 0 {
			result = multierror.Append(result, fmt.Errorf("target %q has neither iso nor name variants", t.Name))
		}
	}

	for _, m := range c.Maps {
		if _, err := c.Palette(m.Palette); err != nil {
			result = multierror.Append(result, fmt.Errorf("map %q: %w", m.Name, err))
		}
	}

	if c.Render.GeoJSON != "" {
		if _, err := c.Palette(c.Render.GeoJSONPalette); err != nil {
			result = multierror.Append(result, fmt.Errorf("render.geojson_palette: %w", err))
		}
	}

	for _, s := range c.Supplementary {
		if len(s.Ring) < 3 {
			result = multierror.Append(result, fmt.Errorf("supplementary %q needs at least 3 ring points", s.Name))
		}
	}

	return result.ErrorOrNil()
}
