package publish

import "strings"

// Content extracts the raw content block from the content property.
// Each entry contributes its html form when present, its plain value
// otherwise; empty entries are dropped. A set content property always
// produces a trailing newline.
func Content(doc *Document) string {
	vals := doc.Values("content")
	if len(vals) == 0 {
		return ""
	}

	var parts []string
	for _, v := range vals {
		s := v.Plain
		if v.Structured != nil {
			if v.Structured.HTML != "" {
				s = v.Structured.HTML
			} else {
				s = v.Structured.Value
			}
		}
		if s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, "\n") + "\n"
}
