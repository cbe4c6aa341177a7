// Package slides holds the extracted slide records of one deck.
package slides

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Record is one extracted slide, addressed by its 1-based position.
type Record struct {
	Index     int    `json:"index"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ImagePath string `json:"image_path,omitempty"`
}

// Store is an ordered, session-scoped collection of slide records.
//
// Titles and image paths never change after extraction. Bodies are
// overwritten by the section builder, so readers always see the latest
// generated text for a slide.
type Store struct {
	mu      sync.RWMutex
	records []*Record
}

// NewStore builds a store from extracted slides. Indices are reassigned
// from position so they are always 1..n.
func NewStore(records []Record) *Store {
	s := &Store{records: make([]*Record, len(records))}
	for i := range records {
		r := records[i]
		r.Index = i + 1
		s.records[i] = &r
	}
	return s
}

// Len returns the number of slides.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the live record at 1-based index i.
func (s *Store) Get(i int) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 1 || i > len(s.records) {
		return nil, fmt.Errorf("slide %d out of range [1, %d]", i, len(s.records))
	}
	return s.records[i-1], nil
}

// SetBody overwrites the body of the slide at 1-based index i.
func (s *Store) SetBody(i int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 1 || i > len(s.records) {
		return fmt.Errorf("slide %d out of range [1, %d]", i, len(s.records))
	}
	s.records[i-1].Body = body
	return nil
}

// Body returns the current body of the slide at 1-based index i.
func (s *Store) Body(i int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 1 || i > len(s.records) {
		return ""
	}
	return s.records[i-1].Body
}

// Snapshot returns copies of all records, safe to serialize.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = *r
	}
	return out
}

// Sanitize drops non-printable characters. Newlines and tabs survive so
// paragraph structure is kept until the document is rendered.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, s)
}

// Normalize sanitizes s and collapses every whitespace run to a single
// space, trimming both ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(Sanitize(s)), " ")
}
