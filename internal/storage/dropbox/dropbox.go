// Package dropbox implements the storage.Backend interface on top of the
// Dropbox files API.
package dropbox

import (
	"context"
	"errors"
	"fmt"
	"io"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/openbracket/micro-publish/internal/storage"
)

// Backend is a Dropbox implementation of the storage.Backend interface.
type Backend struct {
	client files.Client
}

// New creates a Dropbox storage backend authenticated with the given
// access token.
func New(accessToken string) (storage.Backend, error) {
	if accessToken == "" {
		return nil, errors.New("dropbox access token is required")
	}

	cfg := sdk.Config{
		Token:    accessToken,
		LogLevel: sdk.LogOff,
	}

	return &Backend{client: files.New(cfg)}, nil
}

// Upload writes contents to path in the app folder. Existing files at the
// same path are overwritten; the Dropbox client does not support
// per-request contexts, so ctx is accepted for interface compatibility
// only.
func (b *Backend) Upload(ctx context.Context, path string, contents io.Reader) (*storage.StoredFile, error) {
	arg := files.NewUploadArg(path)
	arg.Mode = &files.WriteMode{Tagged: sdk.Tagged{Tag: "overwrite"}}

	meta, err := b.client.Upload(arg, contents)
	if err != nil {
		return nil, fmt.Errorf("dropbox upload of %s failed: %w", path, err)
	}

	return &storage.StoredFile{PathLower: meta.PathLower}, nil
}
