package micropub

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_JSON(t *testing.T) {
	body := `{
		"type": ["h-entry"],
		"properties": {
			"name": ["Hello"],
			"content": [{"html": "<p>rich</p>", "value": "plain"}],
			"photo": [{"value": "https://x/a.jpg", "alt": "a sunset"}],
			"category": ["go", "web"],
			"mp-slug": ["hello-post"]
		}
	}`

	r := httptest.NewRequest("POST", "/micropub", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	doc, err := ParseRequest(r)
	require.NoError(t, err)

	assert.Equal(t, []string{"h-entry"}, doc.Type)
	assert.Equal(t, "Hello", doc.First("name"))
	assert.Equal(t, "hello-post", doc.First("mp-slug"))
	assert.Equal(t, []string{"go", "web"}, []string{
		doc.Values("category")[0].String(),
		doc.Values("category")[1].String(),
	})

	content := doc.Values("content")[0]
	require.NotNil(t, content.Structured)
	assert.Equal(t, "<p>rich</p>", content.Structured.HTML)
	assert.Equal(t, "plain", content.Structured.Value)

	photo := doc.Values("photo")[0]
	require.NotNil(t, photo.Structured)
	assert.Equal(t, "a sunset", photo.Structured.Alt)
}

func TestParseRequest_Form(t *testing.T) {
	form := url.Values{
		"h":               {"entry"},
		"name":            {"Hello"},
		"content":         {"Hi there"},
		"category[]":      {"go", "web"},
		"mp-slug":         {"hello-post"},
		"mp-syndicate-to": {"https://mas.to/"},
		"access_token":    {"secret"},
	}

	r := httptest.NewRequest("POST", "/micropub", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	doc, err := ParseRequest(r)
	require.NoError(t, err)

	assert.Equal(t, []string{"h-entry"}, doc.Type)
	assert.Equal(t, "Hello", doc.First("name"))
	assert.Equal(t, "Hi there", doc.First("content"))
	assert.Len(t, doc.Values("category"), 2)
	assert.Equal(t, "hello-post", doc.Command("slug"))
	assert.Equal(t, []string{"https://mas.to/"}, doc.Commands["syndicate-to"])
	assert.False(t, doc.Has("access_token"))
}

func TestParseRequest_Multipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("h", "entry"))
	require.NoError(t, w.WriteField("content", "with a photo"))

	part, err := w.CreateFormFile("photo", "sunset.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := httptest.NewRequest("POST", "/micropub", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())

	doc, err := ParseRequest(r)
	require.NoError(t, err)

	require.Len(t, doc.Files["photo"], 1)
	assert.Equal(t, "sunset.jpg", doc.Files["photo"][0].Filename)
	assert.Equal(t, []byte("jpeg bytes"), doc.Files["photo"][0].Buffer)
	assert.Equal(t, "with a photo", doc.First("content"))
}

func TestParseRequest_UnsupportedContentType(t *testing.T) {
	r := httptest.NewRequest("POST", "/micropub", strings.NewReader("hi"))
	r.Header.Set("Content-Type", "text/plain")

	_, err := ParseRequest(r)
	assert.Error(t, err)
}
