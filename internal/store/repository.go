// Package store persists the named JSON collections (paises, indicadores,
// poblacion) the engine works on. Every save rewrites a whole collection.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

var (
	// ErrCollectionMissing means the backing file does not exist. Callers
	// continue with an empty collection.
	ErrCollectionMissing = errors.New("collection not found")

	// ErrCollectionMalformed means the backing file is not a JSON array of
	// records. Callers continue with an empty collection.
	ErrCollectionMalformed = errors.New("collection is not valid JSON")
)

// Repository reads and writes collections as "<name>.json" on a billy filesystem.
type Repository struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

func New(fs billy.Filesystem, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{fs: fs, logger: logger}
}

// NewDir returns a Repository rooted at a directory on the local disk.
func NewDir(dir string, logger *slog.Logger) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return New(osfs.New(dir), logger), nil
}

func fileName(name string) string {
	return name + ".json"
}

// Exists reports whether the collection has a backing file.
func (r *Repository) Exists(name string) bool {
	_, err := r.fs.Stat(fileName(name))
	return err == nil
}

// Load decodes a collection. A missing or malformed file yields an empty,
// non-nil slice together with ErrCollectionMissing or ErrCollectionMalformed;
// both are logged here and neither should stop the caller.
func Load[T any](r *Repository, name string) ([]T, error) {
	file := fileName(name)
	data, err := util.ReadFile(r.fs, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("collection file not found, starting empty", "collection", name, "file", file)
			return []T{}, fmt.Errorf("%w: %s", ErrCollectionMissing, file)
		}
		return []T{}, fmt.Errorf("read %s: %w", file, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Error("collection file is not valid JSON, starting empty", "collection", name, "file", file, "error", err)
		return []T{}, fmt.Errorf("%w: %s: %v", ErrCollectionMalformed, file, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save replaces the collection with records. The data is written to a temp
// file next to the target and renamed over it, so readers never observe a
// half-written collection.
func (r *Repository) Save(name string, records any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := r.fs.TempFile(".", "."+name+"-")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if ch, ok := r.fs.(billy.Change); ok {
		_ = ch.Chmod(tmpName, 0o644)
	}
	if err := r.fs.Rename(tmpName, fileName(name)); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", fileName(name), err)
	}

	r.logger.Debug("collection saved", "collection", name, "bytes", buf.Len())
	return nil
}
