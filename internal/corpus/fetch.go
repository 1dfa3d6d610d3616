package corpus

import (
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"
)

// TatoebaURL is the Japanese sentence export.
const TatoebaURL = "https://downloads.tatoeba.org/exports/per_language/jpn/jpn_sentences.tsv.bz2"

// Download describes a cached source archive.
type Download struct {
	Path   string
	Cached bool
}

// Fetch downloads url into cacheDir unless a copy is already there.
func Fetch(ctx context.Context, cacheDir, url string) (Download, error) {
	if cacheDir == "" {
		return Download{}, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Download{}, fmt.Errorf("failed to create cache dir: %w", err)
	}
	filename := path.Base(url)
	if filename == "" || filename == "." || filename == "/" {
		return Download{}, fmt.Errorf("cannot derive file name from %q", url)
	}

	destPath := filepath.Join(cacheDir, filename)
	if _, err := os.Stat(destPath); err == nil {
		return Download{Path: destPath, Cached: true}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Download{}, fmt.Errorf("failed to stat cached source: %w", err)
	}

	tmpFile, err := os.CreateTemp(cacheDir, "source-*.part")
	if err != nil {
		return Download{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, url)
	if err != nil {
		return Download{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Download{}, fmt.Errorf("unexpected download status: %s", resp.Status)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return Download{}, fmt.Errorf("failed to download source: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Download{}, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Download{}, fmt.Errorf("failed to move source into cache: %w", err)
	}
	return Download{Path: destPath, Cached: false}, nil
}

// OpenSource opens a TSV source, decompressing .bz2 files on the fly.
func OpenSource(p string) (io.ReadCloser, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(p) != ".bz2" {
		return file, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{bzip2.NewReader(file), file}, nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
