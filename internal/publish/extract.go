package publish

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Filename derives the artifact filename (without extension) for a
// document. Precedence: protocol-level slug command, mp-slug property,
// kebab-case of the trimmed name, millisecond timestamp. First match
// wins.
func (p *Publisher) Filename(doc *Document) string {
	if s := doc.Command("slug"); s != "" {
		return s
	}
	if s := doc.First("mp-slug"); s != "" {
		return s
	}
	if name := strings.TrimSpace(doc.First("name")); name != "" {
		return slug.Make(name)
	}
	return strconv.FormatInt(p.now().UnixMilli(), 10)
}

// PathFor selects the storage directory: the post path for titled
// documents, the micro-post path otherwise.
func (p *Publisher) PathFor(doc *Document) string {
	if doc.Has("name") && doc.First("name") != "" {
		return p.opts.PostPath
	}
	return p.opts.MicroPostPath
}

// Metadata builds the header block, one "key : value" line per populated
// field, in fixed order: title, date, tags, photo, reply/like. The
// trailing newline is trimmed.
func (p *Publisher) Metadata(doc *Document) string {
	var b strings.Builder

	var titles []string
	for _, v := range doc.Values("name") {
		titles = append(titles, v.String())
	}
	b.WriteString("title : " + strings.Join(titles, "") + "\n")

	if p.opts.SetDate {
		if doc.Has("published") {
			b.WriteString("date : " + doc.First("published") + "\n")
		} else {
			now := p.now()
			b.WriteString(fmt.Sprintf("date : %d-%d-%d %d:%d\n",
				now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute()))
		}
	}

	if doc.Has("category") {
		var tags []string
		for _, v := range doc.Values("category") {
			tags = append(tags, v.String())
		}
		b.WriteString("tags : " + strings.Join(tags, ", ") + "\n")
	} else if p.opts.DefaultTag != "" {
		b.WriteString("tags : " + p.opts.DefaultTag + "\n")
	}

	if photos := doc.Values("photo"); len(photos) > 0 {
		if s := photos[0].Structured; s != nil && s.Value != "" {
			b.WriteString("photo : " + s.Value + "\n")
			b.WriteString("photo-alt : " + s.Alt + "\n")
		} else {
			var urls []string
			for _, v := range photos {
				urls = append(urls, v.String())
			}
			b.WriteString("photo : " + strings.Join(urls, ", ") + "\n")
		}
	}

	if reply := doc.First("in-reply-to"); reply != "" {
		b.WriteString("in-reply-to : " + reply + "\n")
		b.WriteString("is-social : yes\n")
	} else if like := doc.First("like-of"); like != "" {
		b.WriteString("like-of : " + like + "\n")
		b.WriteString("is-social : yes\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// now is replaceable in tests.
func (p *Publisher) now() time.Time {
	if p.clock != nil {
		return p.clock()
	}
	return time.Now()
}
