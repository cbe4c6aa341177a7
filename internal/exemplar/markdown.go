package exemplar

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader handles Markdown. Headings become their own paragraphs;
// markup is dropped.
type MarkdownReader struct{}

func (MarkdownReader) Read(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var paras []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindThematicBreak, ast.KindHTMLBlock:
			continue
		case ast.KindList:
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				paras = append(paras, blockText(item, src))
			}
		default:
			paras = append(paras, blockText(n, src))
		}
	}
	return joinParagraphs(paras), nil
}

// blockText collects the text of a block node. Raw lines are used for
// code blocks; inline children are walked for everything else.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		default:
			if c.Type() == ast.TypeBlock {
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
			}
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
