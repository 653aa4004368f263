package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/micro-publish/internal/storage"
	"github.com/openbracket/micro-publish/internal/storage/memory"
)

// flakyBackend fails uploads whose path contains a marker substring.
type flakyBackend struct {
	inner *memory.Backend
	fail  string
}

func (f *flakyBackend) Upload(ctx context.Context, path string, contents io.Reader) (*storage.StoredFile, error) {
	if strings.Contains(path, f.fail) {
		return nil, errors.New("simulated upload failure")
	}
	return f.inner.Upload(ctx, path, contents)
}

func photoOpts() Options {
	return Options{
		SiteURL:   "https://x",
		PhotoPath: "/photos/",
		PhotoURI:  "photos",
	}
}

func TestUploadAttachments_NoFiles(t *testing.T) {
	p := testPublisher(photoOpts(), memory.New(), nil)

	urls, selected := p.uploadAttachments(context.Background(), &Document{})
	assert.False(t, selected)
	assert.Empty(t, urls)
	assert.Equal(t, "", p.photoLine(context.Background(), &Document{}))
}

func TestUploadAttachments_PhotoRolePreferred(t *testing.T) {
	store := memory.New()
	p := testPublisher(photoOpts(), store, nil)

	doc := &Document{
		Files: map[string][]Attachment{
			"photo": {{Filename: "sunset.jpg", Buffer: []byte("jpeg")}},
			"file":  {{Filename: "notes.txt", Buffer: []byte("text")}},
		},
	}

	urls, selected := p.uploadAttachments(context.Background(), doc)
	require.True(t, selected)
	assert.Equal(t, []string{"https://x/photos/sunset.jpg"}, urls)

	_, ok := store.Get("/photos/sunset.jpg")
	assert.True(t, ok)
	_, ok = store.Get("/photos/notes.txt")
	assert.False(t, ok)
}

func TestUploadAttachments_FileRoleFallback(t *testing.T) {
	store := memory.New()
	p := testPublisher(photoOpts(), store, nil)

	doc := &Document{
		Files: map[string][]Attachment{
			"file": {{Filename: "notes.txt", Buffer: []byte("text")}},
		},
	}

	urls, selected := p.uploadAttachments(context.Background(), doc)
	require.True(t, selected)
	assert.Equal(t, []string{"https://x/photos/notes.txt"}, urls)
}

func TestUploadAttachments_OneFailureKeepsTheOthers(t *testing.T) {
	store := &flakyBackend{inner: memory.New(), fail: "broken"}
	p := testPublisher(photoOpts(), store, nil)

	doc := &Document{
		Files: map[string][]Attachment{
			"photo": {
				{Filename: "first.jpg", Buffer: []byte("a")},
				{Filename: "broken.jpg", Buffer: []byte("b")},
				{Filename: "third.jpg", Buffer: []byte("c")},
			},
		},
	}

	urls, selected := p.uploadAttachments(context.Background(), doc)
	require.True(t, selected)
	assert.Equal(t, []string{
		"https://x/photos/first.jpg",
		"https://x/photos/third.jpg",
	}, urls)

	line := p.photoLine(context.Background(), doc)
	assert.Equal(t, "photo: https://x/photos/first.jpg, https://x/photos/third.jpg", line)
}

func TestAttachmentName_GenericUploadRenamed(t *testing.T) {
	p := testPublisher(photoOpts(), nil, nil)

	renamed := p.attachmentName("image.jpg")
	assert.Regexp(t, `^img_\d+\.jpg$`, renamed)
	assert.Equal(t, fmt.Sprintf("img_%d.jpg", testClock().UnixMilli()), renamed)

	assert.Equal(t, "sunset.jpg", p.attachmentName("sunset.jpg"))
}
