// Package memory provides an in-memory storage backend for tests.
package memory

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/openbracket/micro-publish/internal/storage"
)

// Backend is an in-memory implementation of the storage.Backend interface.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend.
func New() *Backend {
	return &Backend{objects: make(map[string][]byte)}
}

// Upload stores contents under path.
func (b *Backend) Upload(ctx context.Context, path string, contents io.Reader) (*storage.StoredFile, error) {
	data, err := io.ReadAll(contents)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = data

	return &storage.StoredFile{PathLower: strings.ToLower(path)}, nil
}

// Get returns the stored contents for path.
func (b *Backend) Get(path string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[path]
	return data, ok
}

// Paths returns all stored paths.
func (b *Backend) Paths() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	paths := make([]string, 0, len(b.objects))
	for p := range b.objects {
		paths = append(paths, p)
	}
	return paths
}
