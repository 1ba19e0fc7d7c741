package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/woozymasta/ssamap/internal/classify"
	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/dataset"
	"github.com/woozymasta/ssamap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input           string `short:"i" long:"in"      description:"Input shapefile path (.shp)" required:"true"`
	Output          string `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
	Format          string `short:"f" long:"format"  description:"Output format" choice:"json" choice:"yaml" default:"json"`
	ConfigFile      string `short:"c" long:"config"  description:"Configuration file with classification settings"`
	Palette         string `short:"p" long:"palette" description:"Palette used for fill properties" default:"focus"`
	AllAfrica       bool   `short:"a" long:"all"     description:"Include North African countries (flagged subsaharan=false)"`
	AllowUnfiltered bool   `long:"allow-unfiltered"  description:"Use every country when no attribute identifies African countries"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// stdout may carry the document, keep library logs quiet
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if opts.AllowUnfiltered {
		cfg.Classification.AllowUnfiltered = true
	}

	palette, err := cfg.Palette(opts.Palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ds, err := dataset.Load(opts.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading shapefile: %v\n", err)
		os.Exit(1)
	}
	ds.Append(processor.Supplementary(cfg.Supplementary)...)

	res, err := classify.Run(ds, cfg.Classification)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error classifying countries: %v\n", err)
		os.Exit(1)
	}

	records := res.Styled(palette)
	if opts.AllAfrica {
		records = res.Records
		for i := range records {
			records[i].Style = palette.Style(records[i].IsSubSaharan, records[i].IsHighlighted, records[i].ISO)
		}
	}

	fc := processor.FeatureCollection(records)

	// marshal, YAML is derived from the GeoJSON document so geometries keep their type member
	outputData, err := json.MarshalIndent(fc, "", "  ")
	if err == nil && opts.Format == "yaml" {
		var doc interface{}
		if err = json.Unmarshal(outputData, &doc); err == nil {
			outputData, err = yaml.Marshal(doc)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d countries to %s (format: %s)\n", len(fc.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
