package assemble

import (
	"reflect"
	"testing"

	"github.com/dgallion1/deckreport/internal/report"
	"github.com/dgallion1/deckreport/internal/slides"
)

// fakeImages reports every path in the set as present.
type fakeImages map[string]bool

func (f fakeImages) Exists(path string) bool { return f[path] }

func rec(i int, title, body, img string) *slides.Record {
	return &slides.Record{Index: i, Title: title, Body: body, ImagePath: img}
}

func section(level int, heading string, members ...*slides.Record) *report.Section {
	return &report.Section{Level: level, Heading: heading, Key: report.Key(level, heading), Members: members}
}

func TestAssemble_PageBreaksOnlyBeforeLaterLevel1(t *testing.T) {
	r := &report.Report{Sections: []*report.Section{
		section(1, "A"),
		section(2, "B"),
		section(1, "C"),
		section(2, "D"),
	}}

	doc := NewAssembler(fakeImages{}, nil).Assemble(r)
	want := []BlockKind{BlockHeading, BlockHeading, BlockPageBreak, BlockHeading, BlockHeading}
	if got := doc.Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected kinds %v, got %v", want, got)
	}
}

func TestAssemble_FirstSectionLevel2(t *testing.T) {
	r := &report.Report{Sections: []*report.Section{section(2, "Only"), section(1, "Next")}}
	doc := NewAssembler(fakeImages{}, nil).Assemble(r)
	want := []BlockKind{BlockHeading, BlockPageBreak, BlockHeading}
	if got := doc.Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected kinds %v, got %v", want, got)
	}
}

func TestAssemble_FiguresNumberedWithoutGaps(t *testing.T) {
	images := fakeImages{"/img/1.png": true, "/img/3.png": true, "/img/4.png": true}
	r := &report.Report{Sections: []*report.Section{
		section(1, "Intro",
			rec(1, "Overview", "body", "/img/1.png"),
			rec(2, "No picture", "body", "/img/2.png"),
		),
		section(2, "Detail",
			rec(3, "  Flow\n\tcurve ", "body", "/img/3.png"),
			rec(4, "Efficiency", "body", "/img/4.png"),
		),
	}}

	doc := NewAssembler(images, nil).Assemble(r)
	want := []string{"Figure 1: Overview", "Figure 2: Flow curve", "Figure 3: Efficiency"}
	if got := doc.Captions(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected captions %v, got %v", want, got)
	}
	if doc.Figures != 3 {
		t.Errorf("expected 3 figures, got %d", doc.Figures)
	}
}

func TestAssemble_MemberLayout(t *testing.T) {
	images := fakeImages{"/img/1.png": true}
	r := &report.Report{Sections: []*report.Section{
		section(1, "Intro",
			rec(1, "Overview", "line one\n\n  line   two ", "/img/1.png"),
			rec(2, "Text only", "plain", ""),
		),
	}}

	doc := NewAssembler(images, nil).Assemble(r)
	want := []Block{
		{Kind: BlockHeading, Level: 1, Text: "Intro"},
		{Kind: BlockParagraph, Text: "line one line two"},
		{Kind: BlockImage, ImagePath: "/img/1.png", Figure: 1},
		{Kind: BlockCaption, Text: "Figure 1: Overview", Figure: 1},
		{Kind: BlockSpacer},
		{Kind: BlockParagraph, Text: "plain"},
	}
	if !reflect.DeepEqual(doc.Blocks, want) {
		t.Errorf("unexpected layout:\n got %+v\nwant %+v", doc.Blocks, want)
	}
}

func TestAssemble_DetachedSectionsUseSectionText(t *testing.T) {
	s := section(1, "Intro", rec(1, "T", "original body", ""))
	s.Text = "generated text"
	s.Detached = true

	doc := NewAssembler(fakeImages{}, nil).Assemble(&report.Report{Sections: []*report.Section{s}})
	if doc.Blocks[1].Text != "generated text" {
		t.Errorf("expected section text, got %q", doc.Blocks[1].Text)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	images := fakeImages{"/img/1.png": true}
	r := &report.Report{Sections: []*report.Section{
		section(1, "A", rec(1, "One", "x", "/img/1.png")),
		section(1, "B", rec(1, "One", "x", "/img/1.png")),
	}}

	a := NewAssembler(images, nil)
	first := a.Assemble(r)
	second := a.Assemble(r)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical documents from repeated assembly")
	}
	// The same slide in two sections is two figures.
	if first.Figures != 2 {
		t.Errorf("expected 2 figures, got %d", first.Figures)
	}
}

func TestAssemble_EmptyReport(t *testing.T) {
	doc := NewAssembler(nil, nil).Assemble(&report.Report{})
	if len(doc.Blocks) != 0 || doc.Figures != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	if (FileChecker{}).Exists(dir) {
		t.Error("expected directory to be rejected")
	}
	if (FileChecker{}).Exists("") {
		t.Error("expected empty path to be rejected")
	}
	path := writePNG(t, dir, "a.png", 10, 10)
	if !(FileChecker{}).Exists(path) {
		t.Error("expected existing file to be accepted")
	}
}
