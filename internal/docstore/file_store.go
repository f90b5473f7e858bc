package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"arna/internal/safeio"
)

// FileStore keeps documents as files under a workspace root. Writes are
// atomic: a failed save never leaves a truncated document behind.
type FileStore struct {
	fs *safeio.SafeFS
}

func NewFileStore(fsys *safeio.SafeFS) *FileStore {
	return &FileStore{fs: fsys}
}

func (s *FileStore) Put(_ context.Context, key string, content []byte) error {
	if s == nil || s.fs == nil {
		return fmt.Errorf("store is nil")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("docstore: key is required")
	}
	_, err := s.fs.WriteFile(key, content)
	return err
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if s == nil || s.fs == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("docstore: key is required")
	}
	raw, err := s.fs.ReadFile(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return raw, err
}

// CanonicalKey is the document's path relative to the workspace root.
func (s *FileStore) CanonicalKey(key string) (string, error) {
	if s == nil || s.fs == nil {
		return "", fmt.Errorf("store is nil")
	}
	return s.fs.Rel(key)
}

// List walks the workspace and returns the relative slash paths of files
// whose path starts with prefix.
func (s *FileStore) List(_ context.Context, prefix string) ([]string, error) {
	if s == nil || s.fs == nil {
		return nil, fmt.Errorf("store is nil")
	}
	prefix = normalizePrefix(prefix)
	root := s.fs.Root()
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
