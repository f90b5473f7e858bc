// Package docstore persists serialized project documents by key. Keys are
// slash-separated relative names such as "projects/calc.yaml".
package docstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Store defines operations for persisting project documents.
type Store interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// KeyCanonicalizer is implemented by stores where several keys can name
// the same document. CanonicalKey returns the one key they share.
type KeyCanonicalizer interface {
	CanonicalKey(key string) (string, error)
}

var ErrNotFound = errors.New("docstore: document not found")

// NormalizeKey trims a key and converts it to a clean slash path.
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return "", fmt.Errorf("docstore: key is required")
	}
	clean := path.Clean(strings.TrimLeft(key, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("docstore: invalid key %q", key)
	}
	return clean, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(strings.ReplaceAll(prefix, "\\", "/"))
	return strings.TrimLeft(prefix, "/")
}
