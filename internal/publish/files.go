package publish

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
)

// selectAttachments picks the attachments to upload: the photo role when
// populated, else the file role.
func selectAttachments(files map[string][]Attachment) []Attachment {
	if len(files["photo"]) > 0 {
		return files["photo"]
	}
	return files["file"]
}

// uploadAttachments uploads the document's attachments to the photo
// storage path and returns their public URLs in attachment order, plus
// whether any attachments were selected at all. Uploads run
// concurrently; each failure is logged and drops only that file's URL,
// never the others. Every upload settles before return.
func (p *Publisher) uploadAttachments(ctx context.Context, doc *Document) ([]string, bool) {
	atts := selectAttachments(doc.Files)
	if len(atts) == 0 {
		p.logger.Info("no files found to be uploaded")
		return nil, false
	}

	slots := make([]string, len(atts))
	var wg sync.WaitGroup
	for i, att := range atts {
		wg.Add(1)
		go func(i int, att Attachment) {
			defer wg.Done()

			name := p.attachmentName(att.Filename)
			path := p.opts.PhotoPath + name

			stored, err := p.store.Upload(ctx, path, bytes.NewReader(att.Buffer))
			if err != nil {
				p.logger.Error("failed to upload the photos", "file", name, "error", err)
				return
			}

			p.logger.Info("photo uploaded", "path", stored.PathLower)
			slots[i] = p.opts.SiteURL + "/" + p.opts.PhotoURI + "/" + name
		}(i, att)
	}
	wg.Wait()

	urls := make([]string, 0, len(slots))
	for _, u := range slots {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls, true
}

// attachmentName makes generically named uploads unique: clients that
// send files as "image.<ext>" get a timestamped name, everything else is
// preserved verbatim.
func (p *Publisher) attachmentName(name string) string {
	if strings.Contains(name, "image.") {
		return fmt.Sprintf("img_%d%s", p.now().UnixMilli(), name[strings.LastIndex(name, "."):])
	}
	return name
}

// photoLine aggregates uploaded attachment URLs into the photo line of
// the artifact. No selected attachments means no line.
func (p *Publisher) photoLine(ctx context.Context, doc *Document) string {
	urls, selected := p.uploadAttachments(ctx, doc)
	if !selected {
		return ""
	}
	return "photo: " + strings.Join(urls, ", ")
}
