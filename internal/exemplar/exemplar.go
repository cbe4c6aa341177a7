// Package exemplar turns an example report into plain text that is handed
// to the model as a style reference.
package exemplar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reader extracts the prose of one document format. Paragraphs are
// separated by a blank line.
type Reader interface {
	Read(r io.Reader) (string, error)
}

// SupportedExtensions lists the exemplar formats.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
}

// ForFile returns the reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	case ".pdf":
		return &PDFReader{FallbackPdftotext: true}, nil
	default:
		return nil, fmt.Errorf("unsupported exemplar format: %s", ext)
	}
}

// IsSupported checks a filename's extension.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Parse reads an exemplar from r, choosing the format by filename.
func Parse(r io.Reader, filename string) (string, error) {
	rd, err := ForFile(filename)
	if err != nil {
		return "", err
	}
	text, err := rd.Read(r)
	if err != nil {
		return "", fmt.Errorf("read exemplar %s: %w", filepath.Base(filename), err)
	}
	return text, nil
}

// Load reads the exemplar at path.
func Load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open exemplar: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// joinParagraphs trims each paragraph, drops empty ones and separates the
// rest with a blank line.
func joinParagraphs(paras []string) string {
	kept := paras[:0:0]
	for _, p := range paras {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// spoolTemp copies r to a temp file for libraries that need random access.
// The caller removes the returned path.
func spoolTemp(r io.Reader, pattern string) (path string, size int64, err error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	size, err = io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), size, nil
}
