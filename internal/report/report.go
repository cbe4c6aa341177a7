// Package report is the ordered section model handed from the section
// builder to the document assembler.
package report

import (
	"strings"

	"github.com/dgallion1/deckreport/internal/slides"
)

// Heading key prefixes, one per level.
const (
	Level1Prefix = "Heading 1: "
	Level2Prefix = "Heading 2: "
)

// Key returns the section key for a heading at the given level.
func Key(level int, heading string) string {
	if level == 1 {
		return Level1Prefix + strings.TrimSpace(heading)
	}
	return Level2Prefix + strings.TrimSpace(heading)
}

// Report is the ordered list of sections. Slice order is document order.
type Report struct {
	Context  string     // Presentation-wide context passed to synthesis
	Sections []*Section
}

// Section is one heading plus the slides grouped under it.
type Section struct {
	Row     int    // 0-based position of the source row
	Level   int    // 1 or 2
	Heading string // Trimmed heading text
	Key     string // "Heading 1: ..." or "Heading 2: ..."
	Text    string // Generated narrative
	Members []*slides.Record

	// Detached sections render Text for every member instead of the
	// member's live body. Set when slide bodies are preserved.
	Detached bool
}

// MemberBody returns the paragraph text to render for member m.
func (s *Section) MemberBody(m *slides.Record) string {
	if s.Detached {
		return s.Text
	}
	return m.Body
}

// Len returns the number of sections.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Sections)
}

// Keys returns section keys in document order.
func (r *Report) Keys() []string {
	keys := make([]string, 0, r.Len())
	for _, s := range r.Sections {
		keys = append(keys, s.Key)
	}
	return keys
}
