package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/fogleman/gg"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
)

// Save writes the image to every path, choosing the encoder by extension.
// All paths are attempted; failures are collected.
func Save(img image.Image, paths ...string) error {
	var result *multierror.Error

	for _, path := range paths {
		if err := saveOne(img, path); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
			continue
		}
		log.Info().Str("path", path).Msg("Map saved")
	}

	return result.ErrorOrNil()
}

func saveOne(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return gg.SavePNG(path, img)

	case ".webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()

	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}
}
