package blob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs to a directory on disk. Objects are served back by
// the HTTP layer under baseURL, so the returned URLs are stable across restarts.
type LocalStore struct {
	rootDir string
	baseURL string // URL prefix the root directory is served under, e.g. "/files"
}

// NewLocalStore creates a disk-backed blob store.
// PRE: rootDir is writable
// POST: Returns a store whose URLs are baseURL-relative
func NewLocalStore(rootDir, baseURL string) *LocalStore {
	return &LocalStore{
		rootDir: rootDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Put writes the object under <root>/<bucket>/<name> and returns its public URL.
// Object names are sanitized to their final path element to keep writes inside
// the bucket directory.
// PRE: obj.Bucket and obj.Name are non-empty; obj.Data is non-empty
// POST: File written atomically-enough for this use (single rename-free write)
func (s *LocalStore) Put(_ context.Context, obj Object) (StoredObject, error) {
	if obj.Bucket == "" || obj.Name == "" {
		return StoredObject{}, fmt.Errorf("blob bucket and name are required")
	}

	name := filepath.Base(filepath.Clean(obj.Name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return StoredObject{}, fmt.Errorf("invalid blob name %q", obj.Name)
	}

	dir := filepath.Join(s.rootDir, obj.Bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("failed to create blob directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, obj.Data, 0o644); err != nil {
		return StoredObject{}, fmt.Errorf("failed to write blob: %w", err)
	}

	stored := StoredObject{
		Name: name,
		URL:  s.baseURL + "/" + obj.Bucket + "/" + name,
		Size: len(obj.Data),
	}
	slog.Info("blob_stored", "bucket", obj.Bucket, "name", name, "size", stored.Size)
	return stored, nil
}
