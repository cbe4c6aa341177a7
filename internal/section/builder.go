// Package section groups slides into leveled sections and drives one text
// synthesis per section.
package section

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/deckreport/internal/ranges"
	"github.com/dgallion1/deckreport/internal/report"
	"github.com/dgallion1/deckreport/internal/slides"
	"github.com/dgallion1/deckreport/internal/synth"
)

// Row is one line of the section-assignment table.
type Row struct {
	Heading1 string `json:"heading1" yaml:"heading1"`
	Heading2 string `json:"heading2" yaml:"heading2"`
	Slides   string `json:"slides" yaml:"slides"`
}

// Heading resolves the row's level and trimmed heading. Heading 1 wins
// when both are set. ok is false when neither heading is set.
func (r Row) Heading() (level int, heading string, ok bool) {
	if h := strings.TrimSpace(r.Heading1); h != "" {
		return 1, h, true
	}
	if h := strings.TrimSpace(r.Heading2); h != "" {
		return 2, h, true
	}
	return 0, "", false
}

// DuplicatePolicy decides what happens when two rows share a key.
type DuplicatePolicy string

const (
	DuplicatesAllow DuplicatePolicy = "allow"
	DuplicatesError DuplicatePolicy = "error"
)

// ErrDuplicateSection is returned under DuplicatesError.
var ErrDuplicateSection = errors.New("duplicate section heading")

// IndexError reports a slide index outside the deck.
type IndexError struct {
	Row   int // 0-based row position
	Spec  string
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("row %d (%q): slide %d out of range [1, %d]", e.Row+1, e.Spec, e.Index, e.Count)
}

// Options tune the builder.
type Options struct {
	// PreserveBodies keeps slide bodies untouched. Sections then carry
	// their generated text for rendering instead of overwriting members.
	PreserveBodies bool
	Duplicates     DuplicatePolicy
	// Exemplar is an optional style example forwarded to every synthesis.
	Exemplar string
}

// Builder turns rows into a report.
type Builder struct {
	synth synth.Synthesizer
	opts  Options
	log   *slog.Logger
}

func NewBuilder(s synth.Synthesizer, opts Options, log *slog.Logger) *Builder {
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicatesAllow
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{synth: s, opts: opts, log: log}
}

// WithExemplar returns a copy of the builder using exemplar as style hint.
func (b *Builder) WithExemplar(exemplar string) *Builder {
	cp := *b
	cp.opts.Exemplar = exemplar
	return &cp
}

// Build processes rows in order. Each retained row is synthesized once
// from its members' current records and then (unless bodies are
// preserved) overwrites every member body with the generated text, so
// later rows naming the same slide see that text.
//
// All rows are resolved and bounds-checked before the first synthesis, so
// an out-of-range index fails the build without any model call or body
// change. A synthesis failure aborts the remaining rows and puts back the
// bodies earlier rows overwrote. In both cases no report is returned.
func (b *Builder) Build(ctx context.Context, rows []Row, store *slides.Store, presentationContext string) (*report.Report, error) {
	planned, err := b.plan(rows, store)
	if err != nil {
		return nil, err
	}

	// Bodies overwritten by this run, restored if a later row fails.
	prior := make(map[int]string)
	restore := func() {
		for idx, body := range prior {
			store.SetBody(idx, body)
		}
	}

	rep := &report.Report{Context: presentationContext}
	for _, sec := range planned {
		text, err := b.synth.Synthesize(ctx, synth.Request{
			Members:    sec.Members,
			SectionKey: sec.Key,
			Context:    presentationContext,
			Exemplar:   b.opts.Exemplar,
		})
		if err != nil {
			restore()
			return nil, err
		}

		sec.Text = text
		sec.Detached = b.opts.PreserveBodies
		if !b.opts.PreserveBodies {
			for _, m := range sec.Members {
				if _, ok := prior[m.Index]; !ok {
					prior[m.Index] = store.Body(m.Index)
				}
				if err := store.SetBody(m.Index, text); err != nil {
					restore()
					return nil, err
				}
			}
		}
		rep.Sections = append(rep.Sections, sec)
	}

	return rep, nil
}

// plan turns rows into sections without text, in row order.
func (b *Builder) plan(rows []Row, store *slides.Store) ([]*report.Section, error) {
	var planned []*report.Section
	seen := make(map[string]int)

	for i, row := range rows {
		spec := strings.TrimSpace(row.Slides)
		if spec == "" {
			continue
		}
		level, heading, ok := row.Heading()
		if !ok {
			b.log.Warn("row has slides but no heading, skipping", "row", i+1, "slides", spec)
			continue
		}
		key := report.Key(level, heading)

		if prev, dup := seen[key]; dup {
			if b.opts.Duplicates == DuplicatesError {
				return nil, fmt.Errorf("%w: %q in rows %d and %d", ErrDuplicateSection, key, prev+1, i+1)
			}
			b.log.Warn("duplicate section heading", "key", key, "first_row", prev+1, "row", i+1)
		} else {
			seen[key] = i
		}

		indices, err := resolve(i, spec, store.Len(), b.log)
		if err != nil {
			return nil, err
		}
		members := make([]*slides.Record, 0, len(indices))
		for _, idx := range indices {
			rec, err := store.Get(idx)
			if err != nil {
				return nil, &IndexError{Row: i, Spec: spec, Index: idx, Count: store.Len()}
			}
			members = append(members, rec)
		}
		if len(members) == 0 {
			b.log.Warn("row selects no slides", "row", i+1, "slides", spec)
		}

		planned = append(planned, &report.Section{
			Row:     i,
			Level:   level,
			Heading: heading,
			Key:     key,
			Members: members,
		})
	}
	return planned, nil
}

// resolve parses spec and checks every selected index, range bounds
// included, against [1, count] before anything is expanded.
func resolve(row int, spec string, count int, log *slog.Logger) ([]int, error) {
	tokens := ranges.Tokenize(spec)
	if ignored := ranges.Ignored(tokens); len(ignored) > 0 {
		log.Debug("ignoring malformed slide tokens", "row", row+1, "tokens", ignored)
	}
	for _, t := range tokens {
		if t.Empty() {
			continue
		}
		if t.Start < 1 {
			return nil, &IndexError{Row: row, Spec: spec, Index: t.Start, Count: count}
		}
		if t.End > count {
			return nil, &IndexError{Row: row, Spec: spec, Index: max(t.Start, count+1), Count: count}
		}
	}
	return ranges.Expand(tokens), nil
}
