package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
)

// Slide is the raw text pulled from one deck page.
type Slide struct {
	Title string
	Body  string
}

type pptxSlide struct {
	CSld struct {
		SpTree struct {
			Shapes []pptxShape `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type pptxShape struct {
	TxBody *pptxTxBody `xml:"txBody"`
}

type pptxTxBody struct {
	Paras []pptxPara `xml:"p"`
}

type pptxPara struct {
	Runs   []pptxRun `xml:"r"`
	Fields []pptxRun `xml:"fld"`
}

type pptxRun struct {
	Text string `xml:"t"`
}

// ReadPPTX returns the slides of a .pptx file in presentation order.
//
// The title is the text of the first top-level text frame with any text.
// Every later frame contributes its paragraphs, one per line, to the body.
func ReadPPTX(path string) ([]Slide, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	defer r.Close()

	files := make(map[int]*zip.File)
	for _, f := range r.File {
		if n := slideNumber(f.Name); n > 0 {
			files[n] = f
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no slides found in pptx")
	}

	nums := make([]int, 0, len(files))
	for n := range files {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]Slide, 0, len(nums))
	for _, n := range nums {
		data, err := readZipFile(files[n])
		if err != nil {
			return nil, fmt.Errorf("read slide %d: %w", n, err)
		}
		s, err := parseSlideXML(data)
		if err != nil {
			return nil, fmt.Errorf("parse slide %d: %w", n, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func parseSlideXML(data []byte) (Slide, error) {
	var doc pptxSlide
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return Slide{}, err
	}

	var s Slide
	var body []string
	for _, sh := range doc.CSld.SpTree.Shapes {
		if sh.TxBody == nil {
			continue
		}
		if s.Title == "" {
			s.Title = strings.TrimSpace(frameText(sh.TxBody))
			continue
		}
		for _, p := range sh.TxBody.Paras {
			body = append(body, paraText(p))
		}
	}
	s.Body = strings.TrimSpace(strings.Join(body, "\n"))
	return s, nil
}

func frameText(tb *pptxTxBody) string {
	lines := make([]string, 0, len(tb.Paras))
	for _, p := range tb.Paras {
		lines = append(lines, paraText(p))
	}
	return strings.Join(lines, "\n")
}

// paraText concatenates runs then fields. Mixed run/field ordering inside
// one paragraph is rare enough in titles and bullets to ignore.
func paraText(p pptxPara) string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	for _, f := range p.Fields {
		b.WriteString(f.Text)
	}
	return b.String()
}

// slideNumber parses "ppt/slides/slide12.xml". Other names return 0.
func slideNumber(name string) int {
	rest, ok := strings.CutPrefix(name, "ppt/slides/slide")
	if !ok {
		return 0
	}
	rest, ok = strings.CutSuffix(rest, ".xml")
	if !ok || rest == "" {
		return 0
	}
	n := 0
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
