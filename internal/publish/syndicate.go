package publish

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// statusLimit is the hard character limit of the remote status API.
const statusLimit = 512

// StatusPoster submits a status update to a social endpoint and returns
// the URL of the created post.
type StatusPoster interface {
	PostStatus(ctx context.Context, status string) (string, error)
}

// syndicationPiece mirrors a condensed copy of the post to the
// configured social endpoint when the request asks for it. When no
// syndication happens (not requested, not configured, or failed) it
// returns the bare "\n" separator; syndication never blocks the primary
// publish.
func (p *Publisher) syndicationPiece(ctx context.Context, doc *Document) string {
	targets := syndicationTargets(doc)
	if p.poster == nil || p.opts.SyndicationTarget == "" || !contains(targets, p.opts.SyndicationTarget) {
		return "\n"
	}

	status := truncate(stripMarkdown(Content(doc)), statusLimit)

	url, err := p.poster.PostStatus(ctx, status)
	if err != nil {
		p.logger.Error("failed to syndicate post", "error", err)
		return "\n"
	}

	p.logger.Info("post syndicated", "url", url)
	return "syndicated-to : " + url + "\n"
}

// syndicationTargets resolves the requested target set: the
// mp-syndicate-to property when present, else the protocol-level
// syndicate-to command.
func syndicationTargets(doc *Document) []string {
	if vals := doc.Values("mp-syndicate-to"); len(vals) > 0 {
		targets := make([]string, 0, len(vals))
		for _, v := range vals {
			targets = append(targets, v.String())
		}
		return targets
	}
	return doc.Commands["syndicate-to"]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// stripMarkdown reduces markdown source to its plain text by walking the
// goldmark AST and keeping only text content, line breaks and code
// lines.
func stripMarkdown(src string) string {
	source := []byte(src)
	root := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Block boundaries become line breaks.
			if n.Type() == ast.TypeBlock && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.URL(source))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			writeCodeLines(&b, source, n)
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

func writeCodeLines(b *strings.Builder, source []byte, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
}
