// Package storage defines the cloud storage backend interface used to
// persist posts and media, with implementations under subpackages
// (dropbox, s3, memory).
package storage

import (
	"context"
	"io"
)

// StoredFile describes a file after a successful upload.
type StoredFile struct {
	// PathLower is the canonical lowercased path of the stored file,
	// as reported by the storage service.
	PathLower string
}

// Backend is the interface for storage backends.
type Backend interface {
	// Upload writes contents to path, overwriting any existing file.
	Upload(ctx context.Context, path string, contents io.Reader) (*StoredFile, error)
}
