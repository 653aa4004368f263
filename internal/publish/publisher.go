// Package publish implements the document-to-file pipeline: field
// extraction, metadata synthesis, remote title resolution, attachment
// upload, syndication, and the final artifact upload.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openbracket/micro-publish/internal/storage"
)

// ErrUploadFailed indicates the final artifact upload failed. Auxiliary
// failures (title fetch, attachment uploads, syndication) never surface
// here; they degrade to placeholder values.
var ErrUploadFailed = errors.New("post upload failed")

// Options is the pipeline's read-only configuration.
type Options struct {
	// SiteURL is the public base URL, without a trailing slash.
	SiteURL string

	// PostPath and MicroPostPath are the storage directories for titled
	// and untitled posts.
	PostPath      string
	MicroPostPath string

	// PhotoPath is the storage directory for attachments; PhotoURI the
	// public URI segment they are served from.
	PhotoPath string
	PhotoURI  string

	// SetDate enables the date metadata line.
	SetDate bool

	// DefaultTag is the tags fallback for posts without categories.
	DefaultTag string

	// SyndicationTarget is the identifier a requested syndication target
	// must match for the post to be mirrored.
	SyndicationTarget string
}

// Result is the outcome of a successful publish.
type Result struct {
	URL string
}

// Publisher runs the pipeline. It is stateless across requests; the
// storage backend and collaborators are injected at construction and
// reused.
type Publisher struct {
	opts   Options
	store  storage.Backend
	poster StatusPoster
	titles *TitleResolver
	logger *slog.Logger

	// clock overrides time.Now in tests.
	clock func() time.Time
}

// New creates a Publisher. poster may be nil when syndication is not
// configured.
func New(opts Options, store storage.Backend, poster StatusPoster, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		opts:   opts,
		store:  store,
		poster: poster,
		titles: &TitleResolver{Client: http.DefaultClient},
		logger: logger,
	}
}

// Publish runs the full pipeline for a create request: derive the
// filename and path, assemble the file content, upload the artifact, and
// return its public URL.
func (p *Publisher) Publish(ctx context.Context, doc *Document) (*Result, error) {
	filename := p.Filename(doc)
	path := p.PathFor(doc)
	content := p.fileContent(ctx, doc)

	stored, err := p.store.Upload(ctx, path+filename+".md", strings.NewReader(content))
	if err != nil {
		p.logger.Error("failed to upload post file", "path", path+filename+".md", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	p.logger.Info("post file uploaded", "path", stored.PathLower)
	return &Result{URL: p.opts.SiteURL + "/" + filename}, nil
}

// UploadMedia handles a media-only document: attachments are uploaded
// and their public URLs returned. Failures are soft; an empty slice
// means nothing was uploaded.
func (p *Publisher) UploadMedia(ctx context.Context, doc *Document) []string {
	urls, _ := p.uploadAttachments(ctx, doc)
	return urls
}

// fileContent computes the five content pieces concurrently and joins
// the non-empty ones in fixed order: metadata, title line, photo line,
// syndication, content. Each piece computes into its own slot and
// handles its own failures, so one slow or failing piece never corrupts
// a sibling.
func (p *Publisher) fileContent(ctx context.Context, doc *Document) string {
	var metadata, title, photos, syndication, content string

	var wg sync.WaitGroup
	wg.Add(5)
	go func() { defer wg.Done(); metadata = p.Metadata(doc) }()
	go func() { defer wg.Done(); title = p.titleLine(ctx, doc) }()
	go func() { defer wg.Done(); photos = p.photoLine(ctx, doc) }()
	go func() { defer wg.Done(); syndication = p.syndicationPiece(ctx, doc) }()
	go func() { defer wg.Done(); content = Content(doc) }()
	wg.Wait()

	var pieces []string
	for _, piece := range []string{metadata, title, photos, syndication, content} {
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return strings.Join(pieces, "\n")
}
