// Package deck extracts slide text and page images from an uploaded deck.
//
// Text comes from a .pptx file or from a deck exported as PDF. Images come
// from a companion PDF (or the deck itself when it is a PDF), one PNG per
// page. Records are aligned by position: slide i gets page i's image.
package deck

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/deckreport/internal/slides"
)

// SupportedDeckExtensions lists accepted deck formats.
var SupportedDeckExtensions = map[string]bool{
	".pptx": true,
	".pdf":  true,
}

// Options configure an Extractor.
type Options struct {
	DPI               int
	Crop              *CropBox
	Workers           int
	FallbackPdftotext bool
}

// Extractor turns deck files into slide records.
type Extractor struct {
	opts Options
	log  *slog.Logger
}

func NewExtractor(opts Options, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{opts: opts, log: log}
}

// ReadText reads slide text from a .pptx or .pdf deck.
func (e *Extractor) ReadText(deckPath string) ([]Slide, error) {
	switch ext := strings.ToLower(filepath.Ext(deckPath)); ext {
	case ".pptx":
		return ReadPPTX(deckPath)
	case ".pdf":
		return ReadPDF(deckPath, e.opts.FallbackPdftotext)
	default:
		return nil, fmt.Errorf("unsupported deck format: %s", ext)
	}
}

// Extract reads deckPath and, when a page source is available, renders its
// pages into imageDir. pagesPath may be empty; a PDF deck is then its own
// page source.
//
// Every record points at imageDir/slide_{n}.png whether or not that page
// was rendered. A page-count mismatch is logged, not fatal: slides without
// a page simply have no image on disk.
func (e *Extractor) Extract(ctx context.Context, deckPath, pagesPath, imageDir string) ([]slides.Record, error) {
	text, err := e.ReadText(deckPath)
	if err != nil {
		return nil, err
	}

	if pagesPath == "" && strings.EqualFold(filepath.Ext(deckPath), ".pdf") {
		pagesPath = deckPath
	}

	pages := 0
	if pagesPath != "" {
		pages, err = RenderPages(ctx, pagesPath, imageDir, RenderOptions{
			DPI:     e.opts.DPI,
			Crop:    e.opts.Crop,
			Workers: e.opts.Workers,
		})
		if err != nil {
			return nil, err
		}
	}

	if pagesPath != "" && pages != len(text) {
		e.log.Warn("deck and page counts differ", "slides", len(text), "pages", pages)
	}

	records := Records(text, imageDir)
	e.log.Info("deck extracted", "slides", len(records), "pages", pages, "crop", cropString(e.opts.Crop))
	return records, nil
}

// Records sanitizes raw slides and assigns image paths under imageDir.
func Records(raw []Slide, imageDir string) []slides.Record {
	out := make([]slides.Record, len(raw))
	for i, s := range raw {
		out[i] = slides.Record{
			Index:     i + 1,
			Title:     slides.Sanitize(strings.TrimSpace(s.Title)),
			Body:      slides.Sanitize(strings.TrimSpace(s.Body)),
			ImagePath: filepath.Join(imageDir, ImageName(i+1)),
		}
	}
	return out
}

func cropString(c *CropBox) string {
	if c == nil {
		return ""
	}
	return c.String()
}
