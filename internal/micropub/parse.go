// Package micropub parses inbound micropub requests into publish
// Documents, verifies bearer tokens against an IndieAuth token endpoint,
// and exposes the protocol's HTTP routes. The publishing pipeline only
// ever sees the parsed Document.
package micropub

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/openbracket/micro-publish/internal/publish"
)

// maxMemory bounds the in-memory portion of multipart parsing.
const maxMemory = 32 << 20

// attachmentRoles are the multipart field names carrying file uploads.
var attachmentRoles = []string{"photo", "file"}

// ParseRequest turns an inbound create or media request into a Document.
// JSON, form-encoded and multipart bodies are accepted, per the micropub
// spec.
func ParseRequest(r *http.Request) (*publish.Document, error) {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("unparseable content type: %w", err)
	}

	switch ct {
	case "application/json":
		return parseJSON(r.Body)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form body: %w", err)
		}
		return parseForm(r.PostForm, nil)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("failed to parse multipart body: %w", err)
		}
		files, err := parseAttachments(r)
		if err != nil {
			return nil, err
		}
		return parseForm(r.MultipartForm.Value, files)
	default:
		return nil, fmt.Errorf("unsupported content type %q", ct)
	}
}

type jsonRequest struct {
	Type       []string                   `json:"type"`
	Properties map[string][]publish.Value `json:"properties"`
}

func parseJSON(body io.Reader) (*publish.Document, error) {
	var req jsonRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode json body: %w", err)
	}

	doc := &publish.Document{
		Type:       req.Type,
		Properties: req.Properties,
		Commands:   map[string][]string{},
	}
	if doc.Properties == nil {
		doc.Properties = map[string][]publish.Value{}
	}
	return doc, nil
}

// parseForm converts form fields into a Document. The h field becomes
// the type, mp-* fields become protocol commands, and everything else a
// property. A trailing [] marks multi-valued fields and is stripped.
func parseForm(form map[string][]string, files map[string][]publish.Attachment) (*publish.Document, error) {
	doc := &publish.Document{
		Properties: map[string][]publish.Value{},
		Commands:   map[string][]string{},
		Files:      files,
	}

	for key, values := range form {
		key = strings.TrimSuffix(key, "[]")
		switch {
		case key == "h":
			if len(values) > 0 {
				doc.Type = []string{"h-" + values[0]}
			}
		case key == "access_token":
			// Credential, not content.
		case strings.HasPrefix(key, "mp-"):
			doc.Commands[strings.TrimPrefix(key, "mp-")] = values
		default:
			vals := make([]publish.Value, 0, len(values))
			for _, v := range values {
				vals = append(vals, publish.Plain(v))
			}
			doc.Properties[key] = vals
		}
	}

	return doc, nil
}

func parseAttachments(r *http.Request) (map[string][]publish.Attachment, error) {
	files := map[string][]publish.Attachment{}

	for _, role := range attachmentRoles {
		for _, field := range []string{role, role + "[]"} {
			for _, header := range r.MultipartForm.File[field] {
				att, err := readAttachment(header)
				if err != nil {
					return nil, err
				}
				files[role] = append(files[role], att)
			}
		}
	}

	if len(files) == 0 {
		return nil, nil
	}
	return files, nil
}

func readAttachment(header *multipart.FileHeader) (publish.Attachment, error) {
	f, err := header.Open()
	if err != nil {
		return publish.Attachment{}, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return publish.Attachment{}, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		// Some clients send parts without a filename.
		name = uuid.NewString()
	}

	return publish.Attachment{Filename: name, Buffer: buf}, nil
}
