// Package blobstore implements the BlobStore capability (§6): content-
// addressed storage for extracted document page images and other large
// binary artifacts too big to keep in Postgres. Local-disk backend is
// grounded on the archive's own on-disk layout conventions used
// throughout original_source (documents live under the meeting's
// archive folder, addressed by a stable key).
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/viewroyal/civicpipe/pkg/config"
)

// Store is the blob storage capability: put/get by key, keys derived
// from content hash so repeated uploads of identical bytes dedupe for
// free.
type Store interface {
	Put(ctx context.Context, data []byte) (key string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// LocalStore stores blobs under a root directory, sharded by the first
// two hex characters of the content hash to keep any one directory from
// growing unbounded.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at cfg.Root, creating the
// directory if it does not exist.
func NewLocalStore(cfg config.BlobStoreConfig) (*LocalStore, error) {
	if cfg.Backend != "local" {
		return nil, fmt.Errorf("blobstore: NewLocalStore called with backend %q", cfg.Backend)
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root %s: %w", cfg.Root, err)
	}
	return &LocalStore{root: cfg.Root}, nil
}

func (s *LocalStore) keyPath(key string) string {
	return filepath.Join(s.root, key[:2], key)
}

// Put writes data and returns its content-addressed key.
func (s *LocalStore) Put(ctx context.Context, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	path := s.keyPath(key)
	if _, err := os.Stat(path); err == nil {
		return key, nil // already stored
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blobstore: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blobstore: write: %w", err)
	}
	return key, nil
}

// Get reads back a previously stored blob by key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if len(key) < 2 {
		return nil, fmt.Errorf("blobstore: invalid key %q", key)
	}
	f, err := os.Open(s.keyPath(key))
	if err != nil {
		return nil, fmt.Errorf("blobstore: open %s: %w", key, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// New dispatches to the backend named in cfg. The "s3" backend is not
// wired in this build: no pack example exercises an S3-compatible
// client, and the archive's document/image volume fits comfortably on
// local disk for a single-municipality deployment.
func New(cfg config.BlobStoreConfig) (Store, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(cfg)
	case "s3":
		return nil, fmt.Errorf("blobstore: s3 backend not implemented in this build")
	default:
		return nil, fmt.Errorf("blobstore: unknown backend %q", cfg.Backend)
	}
}
