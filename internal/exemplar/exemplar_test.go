package exemplar

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestTextReader_Paragraphs(t *testing.T) {
	in := "First line\r\nsecond line\r\n\r\n\n  \nNext paragraph.\n"
	got, err := TextReader{}.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "First line\nsecond line\n\nNext paragraph."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownReader_DropsMarkup(t *testing.T) {
	in := `# Findings

The *survey* found **three** anomalies.

- corrosion at pier 2
- cracked bearing

---

` + "```" + `
raw code
` + "```" + `
`
	got, err := MarkdownReader{}.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Findings",
		"The survey found three anomalies.",
		"corrosion at pier 2",
		"cracked bearing",
		"raw code",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
	if strings.ContainsAny(got, "*#") {
		t.Errorf("expected markup stripped, got:\n%s", got)
	}
	if !strings.HasPrefix(got, "Findings\n\n") {
		t.Errorf("expected heading as its own paragraph, got:\n%s", got)
	}
}

func TestHTMLReader_SkipsChrome(t *testing.T) {
	in := `<html><head><title>T</title><style>p{}</style></head><body>
<nav>Home | About</nav>
<h1>Summary</h1>
<p>The deck covers <b>pump</b> sizing.</p>
<ul><li>Item one</li><li>Item two</li></ul>
<script>var x = 1;</script>
<footer>(c) 2024</footer>
</body></html>`
	got, err := HTMLReader{}.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Summary\n\nThe deck covers pump sizing.\n\nItem one\n\nItem two"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDOCXReader_Paragraphs(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Introduction")
	w.AddParagraph()
	w.AddParagraph().AddText("The bridge was inspected in May.")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	got, err := DOCXReader{}.Read(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Introduction\n\nThe bridge was inspected in May."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.markdown", "d.htm", "e.html", "f.docx", "g.pdf"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if !IsSupported(name) {
			t.Errorf("%s: expected supported", name)
		}
	}
	if _, err := ForFile("report.odt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.txt")
	if err := os.WriteFile(path, []byte("Style sample.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Style sample." {
		t.Errorf("expected %q, got %q", "Style sample.", got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
