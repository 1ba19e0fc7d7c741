package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/woozymasta/ssamap/internal/config"
	"github.com/woozymasta/ssamap/internal/logger"
	"github.com/woozymasta/ssamap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"   env:"CONFIG_FILE"      description:"Path to configuration file, built-in defaults when empty"`
	OutDir     string        `short:"o" long:"out-dir"  env:"OUT_DIR"          description:"Directory with rendered maps (overrides config)"`
	Addr       string        `short:"a" long:"addr"     env:"LISTEN_ADDRESS"   description:"Address to listen on" default:"127.0.0.1"`
	Port       int           `short:"p" long:"port"     env:"LISTEN_PORT"      description:"Port to listen on"    default:"8080"`
	Shutdown   time.Duration `long:"shutdown-timeout"   env:"SHUTDOWN_TIMEOUT" description:"Grace period for in-flight requests" default:"5s"`
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

	if opts.OutDir != "" {
		cfg.Render.OutDir = opts.OutDir
	}

	srvCtx := server.NewServerContext(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/maps", srvCtx.HandleMapsList)
	mux.HandleFunc("/maps/", srvCtx.HandleArtifact)
	mux.HandleFunc("/", srvCtx.HandleIndex)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Addr, opts.Port),
		Handler:           server.RequestLogger(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.Shutdown)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Int("artifacts_loaded", len(srvCtx.Artifacts)).
		Str("out_dir", cfg.Render.OutDir).
		Msg("Preview server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Preview server stopped")
}
