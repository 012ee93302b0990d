// Package extract turns a content source into bounded plain text.
//
// Raw text passes through truncated to the configured cap. Documents are
// fetched and run through a format-specific extractor chosen by sniffing
// the bytes. Extraction degrades rather than fails: a document that
// fetches but yields no usable text is replaced by a fixed placeholder.
// Only fetch-layer failures surface as *ExtractionError.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/quizcraft/internal/envutil"
	"github.com/abhisek/quizcraft/internal/logger"
)

// Kind distinguishes the two content source variants.
type Kind int

const (
	RawText Kind = iota
	DocumentReference
)

func (k Kind) String() string {
	switch k {
	case RawText:
		return "raw_text"
	case DocumentReference:
		return "document"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source is an immutable content source. For RawText, Payload is the text;
// for DocumentReference it is an http(s) URL, a file:// URL or a local path.
type Source struct {
	Kind    Kind
	Payload string
}

func Text(s string) Source { return Source{Kind: RawText, Payload: s} }

func Document(location string) Source { return Source{Kind: DocumentReference, Payload: location} }

// DefaultFallback is the placeholder used when a document yields no text.
const DefaultFallback = "No readable text could be extracted from this document. " +
	"Ask general questions about introductory programming concepts."

type Config struct {
	// MaxChars caps the extracted text, counted in runes.
	MaxChars int

	// FetchTimeout bounds a single document fetch.
	FetchTimeout time.Duration

	// MaxDocumentBytes rejects larger documents at fetch time.
	MaxDocumentBytes int64

	Fallback string

	// CacheTTL is how long extracted document text is kept by
	// CachingExtractor.
	CacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxChars:         30000,
		FetchTimeout:     30 * time.Second,
		MaxDocumentBytes: 20 << 20,
		Fallback:         DefaultFallback,
		CacheTTL:         time.Hour,
	}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.MaxChars = envutil.Int("QUIZCRAFT_EXTRACT_MAX_CHARS", cfg.MaxChars)
	cfg.FetchTimeout = envutil.Duration("QUIZCRAFT_EXTRACT_FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.MaxDocumentBytes = int64(envutil.Int("QUIZCRAFT_EXTRACT_MAX_BYTES", int(cfg.MaxDocumentBytes)))
	cfg.Fallback = envutil.String("QUIZCRAFT_EXTRACT_FALLBACK", cfg.Fallback)
	cfg.CacheTTL = envutil.Duration("QUIZCRAFT_EXTRACT_CACHE_TTL", cfg.CacheTTL)
	return cfg
}

// Extractor turns a Source into plain text.
type Extractor interface {
	Extract(ctx context.Context, src Source) (string, error)
}

// Service is the default Extractor.
type Service struct {
	cfg     Config
	fetcher Fetcher
	log     *logger.Logger
}

// NewService creates an extractor. A nil fetcher uses an HTTPFetcher built
// from cfg.
func NewService(cfg Config, fetcher Fetcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Fallback == "" {
		cfg.Fallback = DefaultFallback
	}
	if fetcher == nil {
		fetcher = NewHTTPFetcher(cfg)
	}
	return &Service{cfg: cfg, fetcher: fetcher, log: log.With("component", "extract")}
}

func (s *Service) Extract(ctx context.Context, src Source) (string, error) {
	switch src.Kind {
	case RawText:
		return s.finish(src.Payload), nil
	case DocumentReference:
		return s.extractDocument(ctx, src.Payload)
	default:
		return "", fmt.Errorf("unknown content source kind %s", src.Kind)
	}
}

func (s *Service) extractDocument(ctx context.Context, location string) (string, error) {
	doc, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		return "", err
	}

	format := detectFormat(doc)
	text, err := extractFormat(format, doc.Data)
	if err != nil {
		s.log.Warn("document extraction failed, using fallback",
			"location", location, "format", format, "error", err)
		return s.cfg.Fallback, nil
	}

	out := s.finish(collapseWhitespace(text))
	s.log.Debug("document extracted", "location", location, "format", format,
		"bytes", len(doc.Data), "chars", utf8.RuneCountInString(out))
	return out, nil
}

// finish applies the blank fallback and the length cap.
func (s *Service) finish(text string) string {
	if strings.TrimSpace(text) == "" {
		return s.cfg.Fallback
	}
	return truncate(text, s.cfg.MaxChars)
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
