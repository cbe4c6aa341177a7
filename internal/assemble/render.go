package assemble

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fumiama/go-docx"
)

// EMUs per inch in OOXML drawings.
const emuPerInch = 914400

// Style IDs applied to rendered paragraphs. Templates that define them
// control the look; the built-in fallback formatting covers documents
// that do not.
const (
	StyleHeading1 = "Heading1"
	StyleHeading2 = "Heading2"
	StyleCaption  = "Caption"
)

// RenderOptions tune the .docx output.
type RenderOptions struct {
	ImageWidthInches float64 // 4.0 when zero
}

// Renderer writes documents as .docx.
type Renderer struct {
	opts      RenderOptions
	readImage func(string) ([]byte, error)
	log       *slog.Logger
}

func NewRenderer(opts RenderOptions, log *slog.Logger) *Renderer {
	if opts.ImageWidthInches <= 0 {
		opts.ImageWidthInches = 4.0
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{opts: opts, readImage: os.ReadFile, log: log}
}

// Render builds a .docx from doc, starting from a copy of tmpl when it is
// non-nil and from an empty default document otherwise.
func (r *Renderer) Render(doc *Document, tmpl *Template) (*docx.Docx, error) {
	var out *docx.Docx
	if tmpl != nil {
		var err error
		if out, err = tmpl.open(); err != nil {
			return nil, err
		}
	} else {
		out = docx.New().WithDefaultTheme().WithA4Page()
	}

	// Section properties must stay the last body element.
	sect := popSectPr(out)

	for _, b := range doc.Blocks {
		if err := r.renderBlock(out, b); err != nil {
			return nil, err
		}
	}

	if sect != nil {
		out.Document.Body.Items = append(out.Document.Body.Items, sect)
	}
	return out, nil
}

// Write renders doc and writes the .docx bytes to w.
func (r *Renderer) Write(w io.Writer, doc *Document, tmpl *Template) error {
	out, err := r.Render(doc, tmpl)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := out.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode docx: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func (r *Renderer) renderBlock(out *docx.Docx, b Block) error {
	switch b.Kind {
	case BlockHeading:
		style, size := StyleHeading1, "32"
		if b.Level != 1 {
			style, size = StyleHeading2, "26"
		}
		out.AddParagraph().Style(style).AddText(b.Text).Bold().Size(size)
	case BlockParagraph:
		out.AddParagraph().AddText(b.Text)
	case BlockImage:
		return r.renderImage(out, b)
	case BlockCaption:
		out.AddParagraph().Style(StyleCaption).AddText(b.Text).Italic().Size("18")
	case BlockSpacer:
		out.AddParagraph().AddText("\n\n")
	case BlockPageBreak:
		out.AddParagraph().AddPageBreaks()
	default:
		return fmt.Errorf("unknown block kind %v", b.Kind)
	}
	return nil
}

func (r *Renderer) renderImage(out *docx.Docx, b Block) error {
	data, err := r.readImage(b.ImagePath)
	if err != nil {
		return fmt.Errorf("read figure %d: %w", b.Figure, err)
	}
	run, err := out.AddParagraph().AddInlineDrawing(data)
	if err != nil {
		return fmt.Errorf("embed figure %d: %w", b.Figure, err)
	}
	for _, c := range run.Children {
		d, ok := c.(*docx.Drawing)
		if !ok || d.Inline == nil || d.Inline.Extent == nil || d.Inline.Extent.CX == 0 {
			continue
		}
		w := int64(r.opts.ImageWidthInches * emuPerInch)
		h := d.Inline.Extent.CY * w / d.Inline.Extent.CX
		d.Inline.Size(w, h)
	}
	return nil
}

func popSectPr(d *docx.Docx) *docx.SectPr {
	items := d.Document.Body.Items
	if len(items) == 0 {
		return nil
	}
	sect, ok := items[len(items)-1].(*docx.SectPr)
	if !ok {
		return nil
	}
	d.Document.Body.Items = items[:len(items)-1]
	return sect
}
