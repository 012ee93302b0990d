package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FetchedDocument is a fetched binary with whatever type hints the transport gave.
type FetchedDocument struct {
	Name        string
	ContentType string
	Data        []byte
}

// Fetcher retrieves a document by location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*FetchedDocument, error)
}

// HTTPFetcher fetches http(s) URLs and local files.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes: cfg.MaxDocumentBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (*FetchedDocument, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return f.fetchHTTP(ctx, location)
		case "file":
			return f.fetchFile(location, u.Path)
		}
	}
	return f.fetchFile(location, location)
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, location string) (*FetchedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &ExtractionError{Location: location, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &ExtractionError{Location: location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &ExtractionError{Location: location, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, &ExtractionError{Location: location, Err: err}
	}

	return &FetchedDocument{
		Name:        filepath.Base(resp.Request.URL.Path),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (f *HTTPFetcher) fetchFile(location, path string) (*FetchedDocument, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Location: location, Err: err}
	}
	defer fh.Close()

	data, err := f.readLimited(fh)
	if err != nil {
		return nil, &ExtractionError{Location: location, Err: err}
	}
	return &FetchedDocument{Name: filepath.Base(path), Data: data}, nil
}

func (f *HTTPFetcher) readLimited(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}

// hasExt reports whether name ends in one of exts, case-insensitively.
func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
