package assemble

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/deckreport/internal/report"
	"github.com/dgallion1/deckreport/internal/slides"
)

// ImageChecker reports whether a slide image can be embedded.
type ImageChecker interface {
	Exists(path string) bool
}

// FileChecker checks the local filesystem for a regular file.
type FileChecker struct{}

func (FileChecker) Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Assembler lays out reports.
type Assembler struct {
	images ImageChecker
	log    *slog.Logger
}

func NewAssembler(images ImageChecker, log *slog.Logger) *Assembler {
	if images == nil {
		images = FileChecker{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{images: images, log: log}
}

// Caption formats the caption for figure n.
func Caption(n int, title string) string {
	return fmt.Sprintf("Figure %d: %s", n, slides.Normalize(title))
}

// Assemble lays out r in section order. Every level-1 section except the
// first is preceded by a page break. Each member contributes its
// whitespace-normalized body and, when its image exists, the image, a
// numbered caption and a spacer. Figure numbers run 1..n across the whole
// document with no gaps; members without an image take no number.
//
// Assemble only reads r, so calling it twice yields equal documents.
func (a *Assembler) Assemble(r *report.Report) *Document {
	doc := &Document{}
	figure := 1

	for i, sec := range r.Sections {
		if sec.Level == 1 && i > 0 {
			doc.add(Block{Kind: BlockPageBreak})
		}
		doc.add(Block{Kind: BlockHeading, Level: sec.Level, Text: sec.Heading})

		for _, m := range sec.Members {
			doc.add(Block{Kind: BlockParagraph, Text: slides.Normalize(sec.MemberBody(m))})

			if !a.images.Exists(m.ImagePath) {
				a.log.Debug("slide image missing, skipping figure", "slide", m.Index, "path", m.ImagePath)
				continue
			}
			doc.add(Block{Kind: BlockImage, ImagePath: m.ImagePath, Figure: figure})
			doc.add(Block{Kind: BlockCaption, Text: Caption(figure, m.Title), Figure: figure})
			doc.add(Block{Kind: BlockSpacer})
			figure++
		}
	}

	doc.Figures = figure - 1
	return doc
}
