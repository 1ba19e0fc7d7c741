package config

import "time"

// NaturalEarthURL is the Natural Earth 1:110m admin-0 countries archive.
const NaturalEarthURL = "https://naciscdn.org/naturalearth/110m/cultural/ne_110m_admin_0_countries.zip"

// africanISO lists the 54 African ISO-3 codes used when no continent attribute exists.
var africanISO = []string{
	"DZA", "AGO", "BEN", "BWA", "BFA", "BDI", "CMR", "CPV", "CAF", "TCD", "COM",
	"COG", "COD", "DJI", "EGY", "GNQ", "ERI", "ETH", "GAB", "GMB", "GHA", "GIN",
	"GNB", "CIV", "KEN", "LSO", "LBR", "LBY", "MDG", "MWI", "MLI", "MRT", "MUS",
	"MAR", "MOZ", "NAM", "NER", "NGA", "RWA", "STP", "SEN", "SYC", "SLE", "SOM",
	"ZAF", "SSD", "SDN", "SWZ", "TZA", "TGO", "TUN", "UGA", "ZMB", "ZWE",
}

// Default returns the configuration reproducing the stock maps.
func Default() *Config {
	return &Config{
		Source: Source{
			URL:     NaturalEarthURL,
			DataDir: "data",
			Stem:    "ne_110m_admin_0_countries",
			Timeout: 60 * time.Second,
		},
		Classification: Classification{
			ContinentValue:   "Africa",
			ContinentColumns: []string{"CONTINENT", "continent", "REGION_UN"},
			ISOColumns:       []string{"ISO_A3", "ADM0_A3"},
			NameColumn:       "NAME",
			AfricanISO:       append([]string(nil), africanISO...),
			NorthAfrica: []Country{
				{ISO: "DZA", Name: "Algeria"},
				{ISO: "EGY", Name: "Egypt"},
				{ISO: "LBY", Name: "Libya"},
				{ISO: "MAR", Name: "Morocco"},
				{ISO: "TUN", Name: "Tunisia"},
			},
			Targets: []Target{
				{
					Name:  "Democratic Republic of the Congo",
					ISO:   "COD",
					Short: "DRC",
					Variants: []string{
						"Democratic Republic of the Congo",
						"Dem. Rep. Congo",
						"Congo, Dem. Rep.",
						"DRC",
						"Congo, the Democratic Republic of the",
						"Congo (Democratic Republic of the)",
					},
				},
				{
					Name:     "Kenya",
					ISO:      "KEN",
					Variants: []string{"Kenya", "Republic of Kenya"},
				},
				{
					Name:     "South Africa",
					ISO:      "ZAF",
					Variants: []string{"South Africa", "Republic of South Africa", "S. Africa"},
				},
				{
					Name:     "Somalia",
					ISO:      "SOM",
					Variants: []string{"Somalia", "Federal Republic of Somalia"},
				},
			},
		},
		Render: Render{
			Bounds:   BBox{MinLon: -18, MinLat: -35, MaxLon: 52, MaxLat: 15},
			WidthIn:  14,
			HeightIn: 16,
			DPI:      300,
			OutDir:   ".",

			GeoJSONPalette: "focus",
		},
		Maps: []Map{
			{
				Name:        "academic",
				Palette:     "academic",
				Outputs:     []string{"subsaharan_africa_academic_map.png"},
				Labels:      "all",
				Legend:      "classes",
				LegendTitle: "Country Classification",
				Background:  "#f8f9fa",
				Ocean:       "#e9f5fa",
				Grid:        true,
				ScaleBar:    true,
				Frame:       true,
				LabelHalo:   true,

				LabelColor:          "#343a40",
				HighlightLabelColor: "#ffffff",
			},
			{
				Name:        "base",
				Palette:     "base",
				Outputs:     []string{"subsaharan_africa_base.png"},
				Labels:      "none",
				Legend:      "none",
				Transparent: true,
			},
			{
				Name:        "highlighted",
				Palette:     "focus",
				Outputs:     []string{"subsaharan_africa_highlighted.png"},
				Labels:      "highlighted",
				Legend:      "targets",
				LegendTitle: "Countries of Interest",
				Background:  "#ffffff",

				HighlightLabelColor: "#000000",
			},
		},
		Drawio: Drawio{
			Enabled: true,
			Output:  "migration_flows.drawio",
			Image:   "subsaharan_africa_highlighted.png",
			Anchors: []Anchor{
				{ID: "drc_center", X: 400, Y: 370},
				{ID: "kenya_center", X: 580, Y: 380},
				{ID: "somalia_center", X: 650, Y: 350},
				{ID: "sa_center", X: 530, Y: 650},
			},
			Flows: []Flow{
				{From: "drc_center", To: "kenya_center", Color: "#1e3799", Legend: "DRC Migration", Exit: "right"},
				{From: "drc_center", To: "sa_center", Color: "#1e3799", Exit: "bottom"},
				{From: "somalia_center", To: "kenya_center", Color: "#3867d6", Legend: "Somalia Migration", Exit: "left"},
				{From: "somalia_center", To: "sa_center", Color: "#3867d6", Exit: "bottom"},
			},
		},
	}
}
