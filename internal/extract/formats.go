package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	pdf "github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type format string

const (
	formatPDF     format = "pdf"
	formatDOCX    format = "docx"
	formatPPTX    format = "pptx"
	formatZip     format = "zip"
	formatHTML    format = "html"
	formatText    format = "text"
	formatUnknown format = "unknown"
)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// detectFormat sniffs the bytes first and falls back to the transport's
// content type and the file extension.
func detectFormat(doc *FetchedDocument) format {
	if len(doc.Data) == 0 {
		return formatUnknown
	}

	mt := mimetype.Detect(doc.Data)
	switch {
	case mt.Is("application/pdf"):
		return formatPDF
	case mt.Is(mimeDOCX):
		return formatDOCX
	case mt.Is(mimePPTX):
		return formatPPTX
	case mt.Is("text/html"):
		return formatHTML
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return formatZip
		}
	}

	ct := strings.ToLower(doc.ContentType)
	if strings.HasPrefix(ct, "text/html") || hasExt(doc.Name, ".html", ".htm") {
		return formatHTML
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return formatText
		}
	}
	return formatUnknown
}

func extractFormat(f format, data []byte) (text string, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s parser panic: %v", f, r)
		}
	}()

	switch f {
	case formatPDF:
		return extractPDF(data)
	case formatDOCX:
		return extractDOCX(data)
	case formatPPTX:
		return extractPPTX(data)
	case formatZip:
		kind, err := detectOpenXMLKind(data)
		if err != nil {
			return "", err
		}
		return extractFormat(kind, data)
	case formatHTML:
		return extractHTML(data), nil
	case formatText:
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type")
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}

// detectOpenXMLKind classifies a zip container by its part names.
func detectOpenXMLKind(data []byte) (format, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return formatUnknown, err
	}
	var hasWord, hasPpt bool
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			hasWord = true
		}
		if strings.HasPrefix(f.Name, "ppt/") {
			hasPpt = true
		}
	}
	switch {
	case hasWord && !hasPpt:
		return formatDOCX, nil
	case hasPpt && !hasWord:
		return formatPPTX, nil
	default:
		return formatUnknown, fmt.Errorf("zip does not look like docx or pptx")
	}
}

func extractDOCX(data []byte) (string, error) {
	return extractOpenXML(data, func(name string) bool { return name == "word/document.xml" })
}

func extractPPTX(data []byte) (string, error) {
	return extractOpenXML(data, func(name string) bool {
		return strings.HasPrefix(name, "ppt/slides/") && strings.HasSuffix(name, ".xml")
	})
}

// extractOpenXML gathers the text runs (<w:t>, <a:t>) of the matching parts.
func extractOpenXML(data []byte, want func(name string) bool) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, f := range zr.File {
		if !want(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		writeXMLText(&out, b)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func writeXMLText(out *strings.Builder, b []byte) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "t" {
			continue
		}
		var v string
		if err := dec.DecodeElement(&v, &se); err == nil && v != "" {
			out.WriteString(v)
			out.WriteString(" ")
		}
	}
}

// extractHTML returns the visible text of an HTML document.
func extractHTML(data []byte) string {
	z := html.NewTokenizer(bytes.NewReader(data))
	var out strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if isHiddenTag(atom.Lookup(name)) {
				skip++
			}
			out.WriteString(" ")
		case html.EndTagToken:
			name, _ := z.TagName()
			if isHiddenTag(atom.Lookup(name)) && skip > 0 {
				skip--
			}
			out.WriteString(" ")
		case html.TextToken:
			if skip == 0 {
				out.Write(z.Text())
			}
		}
	}
}

func isHiddenTag(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}
