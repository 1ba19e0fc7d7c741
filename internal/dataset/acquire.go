package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source describes the remote archive and its local cache location.
type Source struct {
	URL     string
	DataDir string
	Stem    string // file name without extension, shared by the archive and the shapefile
}

// ShapefilePath returns the cached .shp path.
func (s Source) ShapefilePath() string {
	return filepath.Join(s.DataDir, s.Stem+".shp")
}

// shapefileParts are the files a shapefile cannot be read without.
var shapefileParts = []string{".shp", ".shx", ".dbf"}

// missingParts lists the shapefile parts absent from the data directory.
func (s Source) missingParts() []string {
	var missing []string
	for _, ext := range shapefileParts {
		info, err := os.Stat(filepath.Join(s.DataDir, s.Stem+ext))
		if err != nil || info.IsDir() || info.Size() == 0 {
			missing = append(missing, s.Stem+ext)
		}
	}
	return missing
}

// ArchivePath returns the cached .zip path.
func (s Source) ArchivePath() string {
	return filepath.Join(s.DataDir, s.Stem+".zip")
}

// Acquire makes sure the shapefile exists locally and returns its path.
// When every cached shapefile part is present and force is false, no request is made.
// Otherwise the archive is downloaded once, saved next to the data and extracted.
func Acquire(ctx context.Context, client Doer, src Source, force bool) (string, error) {
	shpPath := src.ShapefilePath()

	if !force {
		missing := src.missingParts()
		if len(missing) == 0 {
			log.Debug().Str("path", shpPath).Msg("Shapefile exists, using cached copy")
			return shpPath, nil
		}
		if len(missing) < len(shapefileParts) {
			log.Warn().Strs("missing", missing).Msg("Cached shapefile is incomplete, downloading again")
		}
	}

	if err := os.MkdirAll(src.DataDir, 0755); err != nil {
		return "", err
	}

	log.Info().Str("url", src.URL).Msg("Downloading Natural Earth data")

	body, err := download(ctx, client, src.URL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", src.URL, err)
	}

	if err := os.WriteFile(src.ArchivePath(), body, 0644); err != nil {
		return "", err
	}

	n, err := extract(body, src.DataDir)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", src.ArchivePath(), err)
	}

	if missing := src.missingParts(); len(missing) > 0 {
		return "", fmt.Errorf("archive did not contain %s", strings.Join(missing, ", "))
	}

	log.Info().
		Int("files", n).
		Str("dir", src.DataDir).
		Msg("Download and extraction complete")

	return shpPath, nil
}

func download(ctx context.Context, client Doer, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// extract unpacks every regular file of the archive into dir.
func extract(data []byte, dir string) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return count, fmt.Errorf("entry %q escapes target directory", f.Name)
		}

		if err := extractFile(f, target); err != nil {
			return count, fmt.Errorf("entry %q: %w", f.Name, err)
		}
		count++
	}

	return count, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
