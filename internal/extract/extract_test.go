package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxChars = 50
	return NewService(cfg, nil, nil)
}

func serve(t *testing.T, contentType string, body []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/doc"
}

// buildZip writes name/content pairs in order.
func buildZip(t *testing.T, parts ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 0; i+1 < len(parts); i += 2 {
		w, err := zw.Create(parts[i])
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[i+1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_RawText(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pass through", "  Loops  repeat\nwork. ", "  Loops  repeat\nwork. "},
		{"truncated to cap", strings.Repeat("é", 80), strings.Repeat("é", 50)},
		{"blank uses fallback", " \n\t ", DefaultFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Extract(context.Background(), Text(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_DocumentFormats(t *testing.T) {
	docx := buildZip(t,
		"[Content_Types].xml", `<?xml version="1.0"?><Types/>`,
		"word/document.xml", `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
			`<w:body><w:p><w:r><w:t>Variables</w:t></w:r><w:r><w:t>store values.</w:t></w:r></w:p></w:body></w:document>`,
	)
	pptx := buildZip(t,
		"[Content_Types].xml", `<?xml version="1.0"?><Types/>`,
		"ppt/slides/slide1.xml", `<?xml version="1.0"?><p:sld xmlns:p="p" xmlns:a="a"><a:t>Slide one</a:t></p:sld>`,
		"ppt/slides/slide2.xml", `<?xml version="1.0"?><p:sld xmlns:p="p" xmlns:a="a"><a:t>Slide two</a:t></p:sld>`,
	)
	page := []byte(`<!DOCTYPE html><html><head><title>T</title><style>p{color:red}</style>` +
		`<script>var x = 1;</script></head><body><p>Functions &amp; loops</p></body></html>`)

	tests := []struct {
		name        string
		contentType string
		body        []byte
		want        string
	}{
		{"plain text", "text/plain", []byte("print(1)\n\nprints   one"), "print(1) prints one"},
		{"html", "text/html", page, "T Functions & loops"},
		{"docx", "", docx, "Variables store values."},
		{"pptx", "", pptx, "Slide one Slide two"},
		{"blank document", "text/plain", []byte("   \n  "), DefaultFallback},
		{"broken pdf", "application/pdf", []byte("%PDF-1.4\nnot really a pdf"), DefaultFallback},
		{"unknown binary", "application/octet-stream", []byte{0x00, 0x01, 0x02, 0xff, 0x00}, DefaultFallback},
	}

	s := NewService(DefaultConfig(), nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Extract(context.Background(), Document(serve(t, tt.contentType, tt.body)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_DocumentTruncated(t *testing.T) {
	s := newTestService(t)
	got, err := s.Extract(context.Background(), Document(serve(t, "text/plain", []byte(strings.Repeat("word ", 100)))))
	require.NoError(t, err)
	assert.Equal(t, 50, utf8.RuneCountInString(got))
}

func TestExtract_FetchFailures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer notFound.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	cfg := DefaultConfig()
	cfg.MaxDocumentBytes = 10
	big := serve(t, "text/plain", []byte(strings.Repeat("x", 11)))

	tests := []struct {
		name     string
		location string
		status   int
	}{
		{"http error status", notFound.URL + "/doc.pdf", http.StatusNotFound},
		{"unreachable host", closedURL + "/doc.pdf", 0},
		{"missing file", filepath.Join(t.TempDir(), "missing.txt"), 0},
		{"too large", big, 0},
	}

	s := NewService(cfg, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Extract(context.Background(), Document(tt.location))
			var exErr *ExtractionError
			require.True(t, errors.As(err, &exErr), "got %T: %v", err, err)
			assert.Equal(t, tt.location, exErr.Location)
			assert.Equal(t, tt.status, exErr.StatusCode)
		})
	}
}

func TestExtract_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Lists\n\nLists are ordered."), 0o644))

	s := NewService(DefaultConfig(), nil, nil)
	for _, loc := range []string{path, "file://" + path} {
		got, err := s.Extract(context.Background(), Document(loc))
		require.NoError(t, err)
		assert.Equal(t, "# Lists Lists are ordered.", got)
	}
}

type countingExtractor struct {
	calls atomic.Int32
	err   error
}

func (c *countingExtractor) Extract(_ context.Context, src Source) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return "text of " + src.Payload, nil
}

func TestCachingExtractor(t *testing.T) {
	inner := &countingExtractor{}
	c := NewCachingExtractor(inner, DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Extract(ctx, Document("https://example.com/a.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "text of https://example.com/a.pdf", got)
	}
	assert.EqualValues(t, 1, inner.calls.Load())

	_, _ = c.Extract(ctx, Text("raw"))
	_, _ = c.Extract(ctx, Text("raw"))
	assert.EqualValues(t, 3, inner.calls.Load(), "raw text must not be cached")

	failing := &countingExtractor{err: &ExtractionError{Location: "x", Err: errors.New("down")}}
	c = NewCachingExtractor(failing, DefaultConfig())
	_, err := c.Extract(ctx, Document("x"))
	require.Error(t, err)
	_, err = c.Extract(ctx, Document("x"))
	require.Error(t, err)
	assert.EqualValues(t, 2, failing.calls.Load(), "errors must not be cached")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo wörld", 5))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "nocap", truncate("nocap", 0))
}

func TestExtractHTML_TagsSeparateWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"self closing break", "first<br/>second", "first second"},
		{"void break", "first<br>second", "first second"},
		{"paragraphs", "<p>one</p><p>two</p>", "one two"},
		{"script hidden", "<p>shown</p><script>hidden()</script>", "shown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collapseWhitespace(extractHTML([]byte(tt.in))))
		})
	}
}
