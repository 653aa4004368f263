package publish

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// TitleResolver fetches the HTML title of a linked page.
type TitleResolver struct {
	// Client is the HTTP client used for fetches; http.DefaultClient
	// when nil.
	Client *http.Client
}

// Resolve fetches url and returns the trimmed text of the document's
// head title element.
func (t *TitleResolver) Resolve(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return strings.TrimSpace(titleText(root)), nil
}

// titleText walks the parse tree for the first title element and returns
// its text content.
func titleText(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return b.String()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := titleText(c); title != "" {
			return title
		}
	}
	return ""
}

// titleLine resolves the linked page's title for reply and like posts.
// Resolution is best-effort: failures degrade to a placeholder and never
// abort publication.
func (p *Publisher) titleLine(ctx context.Context, doc *Document) string {
	var url, prefix string
	switch {
	case doc.First("in-reply-to") != "":
		url, prefix = doc.First("in-reply-to"), "in-reply-to-title"
	case doc.First("like-of") != "":
		url, prefix = doc.First("like-of"), "like-of-title"
	default:
		return ""
	}

	title, err := p.titles.Resolve(ctx, url)
	if err != nil {
		p.logger.Warn("failed to load the title", "url", url, "error", err)
		return prefix + " : a post"
	}
	return prefix + " : " + title
}
