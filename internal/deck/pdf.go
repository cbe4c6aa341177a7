package deck

import (
	"fmt"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFText returns the plain text of every page, in page order. Pages the
// library cannot read come back empty so positions stay aligned. When the
// library fails outright and fallback is set, pdftotext is tried instead.
func PDFText(path string, fallback bool) ([]string, error) {
	pages, err := libraryText(path)
	if err != nil && fallback {
		pages, err = pdftotext(path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return pages, nil
}

func libraryText(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := reader.NumPage()
	pages := make([]string, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

func pdftotext(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	pages := strings.Split(string(out), "\f")
	// pdftotext terminates every page with a form feed.
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

// SlideFromPage splits page text into a title (first non-blank line) and
// a body (the remaining lines).
func SlideFromPage(text string) Slide {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if t := strings.TrimSpace(line); t != "" {
			return Slide{
				Title: t,
				Body:  strings.TrimSpace(strings.Join(lines[i+1:], "\n")),
			}
		}
	}
	return Slide{}
}

// ReadPDF returns one slide per page of a deck exported as PDF.
func ReadPDF(path string, fallback bool) ([]Slide, error) {
	pages, err := PDFText(path, fallback)
	if err != nil {
		return nil, err
	}
	out := make([]Slide, len(pages))
	for i, p := range pages {
		out[i] = SlideFromPage(p)
	}
	return out, nil
}
