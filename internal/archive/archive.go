// Package archive exports the attempt log as zstd-compressed JSON lines.
package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/verte-zerg/mojido/internal/model"
)

// Ext is the suffix of export files.
const Ext = ".jsonl.zst"

// AttemptSource streams attempt-log rows in id order.
type AttemptSource interface {
	EachAttempt(ctx context.Context, afterID int64, fn func(model.AttemptLog) error) error
}

// Result describes a finished export.
type Result struct {
	ID     string
	Path   string
	Count  int
	LastID int64
}

// Export writes every attempt with id greater than afterID to
// dir/attempts-{uuid}.jsonl.zst. When nothing matches no file is left behind
// and Result.Path is empty.
func Export(ctx context.Context, src AttemptSource, dir string, afterID int64) (Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create export dir: %w", err)
	}
	res := Result{ID: uuid.New().String(), LastID: afterID}
	dest := Path(res.ID, dir)

	file, err := os.Create(dest)
	if err != nil {
		return Result{}, fmt.Errorf("create export: %w", err)
	}
	keep := false
	defer func() {
		_ = file.Close()
		if !keep {
			_ = os.Remove(dest)
		}
	}()

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		return Result{}, fmt.Errorf("create zstd encoder: %w", err)
	}
	enc := json.NewEncoder(encoder)
	err = src.EachAttempt(ctx, afterID, func(a model.AttemptLog) error {
		if err := enc.Encode(a); err != nil {
			return err
		}
		res.Count++
		res.LastID = a.ID
		return nil
	})
	if err != nil {
		_ = encoder.Close()
		return Result{}, fmt.Errorf("write attempts: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return Result{}, fmt.Errorf("finalize compression: %w", err)
	}
	if err := file.Close(); err != nil {
		return Result{}, fmt.Errorf("close export: %w", err)
	}
	if res.Count == 0 {
		return res, nil
	}
	keep = true
	res.Path = dest
	return res, nil
}

// Read decodes an export file, calling fn for each attempt.
func Read(path string, fn func(model.AttemptLog) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only export.
			_ = cerr
		}
	}()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	dec := json.NewDecoder(bufio.NewReader(decoder))
	for {
		var a model.AttemptLog
		if err := dec.Decode(&a); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("decode attempt: %w", err)
		}
		if err := fn(a); err != nil {
			return err
		}
	}
}

// Path returns the export path for an export id.
func Path(id, dir string) string {
	return filepath.Join(dir, "attempts-"+id+Ext)
}
