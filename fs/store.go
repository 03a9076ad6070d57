// Package fs provides file-based publishing of parsed documents.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/manparse"
)

// Ensure Store implements manparse.DocumentStore at compile time.
var _ manparse.DocumentStore = (*Store)(nil)

// IndexDir is the directory, relative to the output directory, that holds
// the derived index files.
const IndexDir = "index"

// Store implements manparse.DocumentStore with atomic update semantics.
// Files are written to dir.tmp and renamed into dir on Commit. Files already
// present in dir and not rewritten during the run are left in place.
type Store struct {
	dir string

	// Encode, when set, converts a document to the value written to disk.
	Encode func(doc *manparse.Document) any
}

// NewStore creates a new Store publishing to dir.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) tempDir() string {
	return s.dir + ".tmp"
}

// CreateDocument writes doc to <name>.<section>.json in the pending directory.
// Returns EMALFORMED if doc fails validation; Validate restricts names to
// characters that cannot escape the directory.
func (s *Store) CreateDocument(ctx context.Context, doc *manparse.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	var v any = doc
	if s.Encode != nil {
		v = s.Encode(doc)
	}
	return s.writeJSON(doc.Key().Filename(), v)
}

// WriteIndex writes the word, category and complexity indexes to the pending
// index directory.
func (s *Store) WriteIndex(ctx context.Context, idx *manparse.Index) error {
	files := []struct {
		name string
		v    any
	}{
		{"words.json", idx.Words},
		{"categories.json", idx.Categories},
		{"complexity.json", idx.Complexity},
	}
	for _, f := range files {
		if err := s.writeJSON(filepath.Join(IndexDir, f.name), f.v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", rel, err)
	}

	fullPath := filepath.Join(s.tempDir(), rel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, append(data, '\n'), 0644)
}

// Commit moves every pending file into the output directory and removes the
// pending directory. Each file is replaced atomically.
func (s *Store) Commit() error {
	tmp := s.tempDir()
	if _, err := os.Stat(tmp); os.IsNotExist(err) {
		return os.MkdirAll(s.dir, 0755)
	}

	err := filepath.WalkDir(tmp, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(tmp, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(s.dir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		return os.Rename(path, dest)
	})
	if err != nil {
		return err
	}

	return os.RemoveAll(tmp)
}

// Abort discards all pending files.
func (s *Store) Abort() error {
	return os.RemoveAll(s.tempDir())
}
