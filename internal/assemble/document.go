// Package assemble lays a report out as a linear sequence of document
// blocks and renders that sequence to .docx.
package assemble

import "fmt"

// BlockKind identifies one layout element.
type BlockKind int

const (
	BlockHeading BlockKind = iota + 1
	BlockParagraph
	BlockImage
	BlockCaption
	BlockSpacer
	BlockPageBreak
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockImage:
		return "image"
	case BlockCaption:
		return "caption"
	case BlockSpacer:
		return "spacer"
	case BlockPageBreak:
		return "page_break"
	default:
		return fmt.Sprintf("block(%d)", int(k))
	}
}

// Block is one element of the laid-out document. Only the fields relevant
// to Kind are set.
type Block struct {
	Kind      BlockKind
	Level     int    // headings
	Text      string // headings, paragraphs, captions
	ImagePath string // images
	Figure    int    // images and captions
}

// Document is the full block sequence of one report.
type Document struct {
	Blocks  []Block
	Figures int // number of embedded images
}

func (d *Document) add(b Block) {
	d.Blocks = append(d.Blocks, b)
}

// Kinds returns the block kinds in order.
func (d *Document) Kinds() []BlockKind {
	out := make([]BlockKind, len(d.Blocks))
	for i, b := range d.Blocks {
		out[i] = b.Kind
	}
	return out
}

// Captions returns the caption texts in order.
func (d *Document) Captions() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Kind == BlockCaption {
			out = append(out, b.Text)
		}
	}
	return out
}
