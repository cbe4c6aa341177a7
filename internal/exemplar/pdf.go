package exemplar

import (
	"io"
	"os"

	"github.com/dgallion1/deckreport/internal/deck"
)

// PDFReader handles PDF reports. Pages are joined as paragraphs.
type PDFReader struct {
	FallbackPdftotext bool
}

func (p PDFReader) Read(r io.Reader) (string, error) {
	path, _, err := spoolTemp(r, "deckreport-exemplar-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	pages, err := deck.PDFText(path, p.FallbackPdftotext)
	if err != nil {
		return "", err
	}
	return joinParagraphs(pages), nil
}
