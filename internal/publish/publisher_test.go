package publish

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/micro-publish/internal/storage"
	"github.com/openbracket/micro-publish/internal/storage/memory"
)

type failingBackend struct{}

func (failingBackend) Upload(ctx context.Context, path string, contents io.Reader) (*storage.StoredFile, error) {
	return nil, errors.New("storage unavailable")
}

func TestPublish_EndToEnd(t *testing.T) {
	store := memory.New()
	p := testPublisher(Options{
		SiteURL:       "https://x",
		PostPath:      "/posts/",
		MicroPostPath: "/micro/",
	}, store, nil)

	doc := &Document{
		Properties: map[string][]Value{
			"name":    {Plain("Hello")},
			"content": {Plain("Hi there")},
		},
	}

	result, err := p.Publish(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "https://x/hello", result.URL)

	data, ok := store.Get("/posts/hello.md")
	require.True(t, ok)
	assert.Contains(t, string(data), "title : Hello")
	assert.Contains(t, string(data), "Hi there\n")
}

func TestPublish_UntitledGoesToMicroPath(t *testing.T) {
	store := memory.New()
	p := testPublisher(Options{
		SiteURL:       "https://x",
		PostPath:      "/posts/",
		MicroPostPath: "/micro/",
	}, store, nil)

	doc := &Document{
		Properties: map[string][]Value{
			"content": {Plain("just a thought")},
		},
		Commands: map[string][]string{"slug": {"thought"}},
	}

	result, err := p.Publish(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "https://x/thought", result.URL)

	_, ok := store.Get("/micro/thought.md")
	assert.True(t, ok)
}

func TestPublish_PieceOrderAndSeparator(t *testing.T) {
	store := memory.New()
	p := testPublisher(Options{
		SiteURL:       "https://x",
		PostPath:      "/posts/",
		MicroPostPath: "/micro/",
	}, store, nil)

	doc := &Document{
		Properties: map[string][]Value{
			"name":    {Plain("Hello")},
			"content": {Plain("body")},
		},
	}

	_, err := p.Publish(context.Background(), doc)
	require.NoError(t, err)

	data, _ := store.Get("/posts/hello.md")
	// Metadata, then the bare syndication separator, then content.
	assert.Equal(t, "title : Hello\n\n\nbody\n", string(data))
}

func TestPublish_FatalOnArtifactUploadFailure(t *testing.T) {
	p := testPublisher(Options{
		SiteURL:       "https://x",
		PostPath:      "/posts/",
		MicroPostPath: "/micro/",
	}, failingBackend{}, nil)

	doc := &Document{
		Properties: map[string][]Value{"name": {Plain("Hello")}},
	}

	result, err := p.Publish(context.Background(), doc)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUploadMedia(t *testing.T) {
	store := memory.New()
	p := testPublisher(Options{
		SiteURL:   "https://x",
		PhotoPath: "/photos/",
		PhotoURI:  "photos",
	}, store, nil)

	doc := &Document{
		Files: map[string][]Attachment{
			"file": {{Filename: "sunset.jpg", Buffer: []byte("jpeg")}},
		},
	}

	urls := p.UploadMedia(context.Background(), doc)
	assert.Equal(t, []string{"https://x/photos/sunset.jpg"}, urls)

	assert.Empty(t, p.UploadMedia(context.Background(), &Document{}))
}
