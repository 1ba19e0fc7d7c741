package server

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/woozymasta/ssamap/internal/config"

	"github.com/rs/zerolog/log"
)

// Artifact is one rendered output available for preview.
type Artifact struct {
	Modified time.Time `json:"modified"`
	Name     string    `json:"name"`
	File     string    `json:"file"`
	Kind     string    `json:"kind"`
	Size     int64     `json:"size"`
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	OutDir    string
	Artifacts []Artifact
	Files     map[string]Artifact
	IndexHTML []byte
}

// NewServerContext scans the output directory for the artifacts the configuration produces.
// Outputs that were not rendered yet are skipped.
func NewServerContext(cfg *config.Config) *ServerContext {
	outDir := cfg.Render.OutDir
	log.Info().Str("out_dir", outDir).Int("config_maps_count", len(cfg.Maps)).Msg("Initializing server context")

	type candidate struct{ name, file, kind string }
	var candidates []candidate

	for _, m := range cfg.Maps {
		for _, out := range m.Outputs {
			candidates = append(candidates, candidate{name: m.Name, file: filepath.Base(out), kind: "map"})
		}
	}
	if cfg.Drawio.Enabled && cfg.Drawio.Output != "" {
		candidates = append(candidates, candidate{name: "drawio", file: filepath.Base(cfg.Drawio.Output), kind: "diagram"})
	}
	if cfg.Render.GeoJSON != "" {
		candidates = append(candidates, candidate{name: "geojson", file: filepath.Base(cfg.Render.GeoJSON), kind: "geojson"})
	}

	s := &ServerContext{OutDir: outDir, Files: make(map[string]Artifact)}

	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(outDir, c.file))
		if err != nil || info.IsDir() {
			log.Trace().
				Str("name", c.name).
				Str("file", c.file).
				Msg("Artifact skipped: file not found")
			continue
		}

		a := Artifact{
			Name:     c.name,
			File:     c.file,
			Kind:     c.kind,
			Size:     info.Size(),
			Modified: info.ModTime(),
		}
		s.Artifacts = append(s.Artifacts, a)
		s.Files[a.File] = a

		log.Debug().
			Str("name", a.Name).
			Str("file", a.File).
			Msg("Artifact found and added to context")
	}

	sort.SliceStable(s.Artifacts, func(i, j int) bool {
		if s.Artifacts[i].Kind != s.Artifacts[j].Kind {
			return s.Artifacts[i].Kind < s.Artifacts[j].Kind
		}
		return s.Artifacts[i].Name < s.Artifacts[j].Name
	})

	index, err := renderIndex(s.Artifacts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build index page")
	}
	s.IndexHTML = index

	log.Info().
		Int("artifacts_count", len(s.Artifacts)).
		Msg("Server context initialized successfully")

	return s
}
