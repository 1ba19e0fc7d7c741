package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontsOnce sync.Once
	fontsErr  error
	regular   *opentype.Font
	bold      *opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

// faces caches font faces per size for one render.
type faces struct {
	cache map[faceKey]font.Face
	dpi   float64
}

type faceKey struct {
	size float64
	bold bool
}

func newFaces(dpi float64) (*faces, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	return &faces{dpi: dpi, cache: make(map[faceKey]font.Face)}, nil
}

// face returns a face of the given size in points.
func (f *faces) face(size float64, isBold bool) (font.Face, error) {
	key := faceKey{size: size, bold: isBold}
	if fc, ok := f.cache[key]; ok {
		return fc, nil
	}

	src := regular
	if isBold {
		src = bold
	}

	fc, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     f.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}

	f.cache[key] = fc
	return fc, nil
}

func (f *faces) close() {
	for _, fc := range f.cache {
		_ = fc.Close()
	}
}
