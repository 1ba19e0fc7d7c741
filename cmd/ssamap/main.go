package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/logger"
	"github.com/woozymasta/ssamap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile      string   `short:"c" long:"config"           env:"CONFIG_FILE"  description:"Path to configuration file, built-in defaults when empty"`
	DataDir         string   `short:"d" long:"data-dir"         env:"DATA_DIR"     description:"Dataset cache directory (overrides config)"`
	OutDir          string   `short:"o" long:"out-dir"          env:"OUT_DIR"      description:"Output directory (overrides config)"`
	GeoJSON         string   `short:"g" long:"geojson"          env:"GEOJSON_OUT"  description:"Also write the classified countries as GeoJSON to this file"`
	Only            []string `short:"m" long:"map"              env:"MAP_NAMES" env-delim:"," description:"Render only the named maps"`
	DPI             float64  `short:"r" long:"dpi"              env:"DPI"          description:"Output resolution (overrides config)"`
	Force           bool     `short:"f" long:"force"            description:"Re-download the dataset even when cached"`
	AllowUnfiltered bool     `long:"allow-unfiltered"           description:"Use every country when no attribute identifies African countries"`
	Compact         bool     `long:"compact"                    description:"Minify the draw.io document"`
	NoDrawio        bool     `long:"no-drawio"                  description:"Skip the draw.io export"`
	NoMaps          bool     `long:"no-maps"                    description:"Skip map rendering"`
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

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.DataDir != "" {
		cfg.Source.DataDir = opts.DataDir
	}
	if opts.OutDir != "" {
		cfg.Render.OutDir = opts.OutDir
	}
	if opts.GeoJSON != "" {
		cfg.Render.GeoJSON = opts.GeoJSON
	}
	if opts.DPI > 0 {
		cfg.Render.DPI = opts.DPI
	}
	if opts.AllowUnfiltered {
		cfg.Classification.AllowUnfiltered = true
	}
	if opts.NoDrawio {
		cfg.Drawio.Enabled = false
	}

	if err := os.MkdirAll(cfg.Render.OutDir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Render.OutDir).Msg("Failed to create output directory")
	}

	client := &http.Client{Timeout: cfg.Source.Timeout}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().
		Int("maps_total", len(cfg.Maps)).
		Strs("maps_selected", opts.Only).
		Float64("dpi", cfg.Render.DPI).
		Str("out_dir", cfg.Render.OutDir).
		Msg("Starting map generation")

	err = processor.Run(ctx, client, cfg, processor.Options{
		Only:    opts.Only,
		Force:   opts.Force,
		Compact: opts.Compact,
		NoMaps:  opts.NoMaps,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Map generation failed")
	}

	log.Info().Msg("Map generation finished successfully")
}
