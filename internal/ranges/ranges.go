// Package ranges parses slide selections such as "1-3,5,7".
//
// Malformed tokens are not errors: they come back tagged KindIgnored from
// Tokenize and are dropped by Parse. A range spanning more than MaxSpan
// indices keeps its bounds but expands to nothing and is reported by
// Ignored.
package ranges

import (
	"sort"
	"strconv"
	"strings"
)

// MaxSpan is the largest number of indices a single range token expands to.
const MaxSpan = 10000

// Kind tags a parsed token.
type Kind int

const (
	KindIgnored Kind = iota
	KindSingle
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindRange:
		return "range"
	default:
		return "ignored"
	}
}

// Token is one comma-separated element of a selection.
// For KindSingle Start == End. A range with Start > End selects nothing.
type Token struct {
	Raw   string
	Kind  Kind
	Start int
	End   int
}

// Empty reports whether the token selects no index.
func (t Token) Empty() bool {
	return t.Kind == KindIgnored || t.Start > t.End
}

// Oversized reports whether a range selects more than MaxSpan indices.
// Both ends are non-negative, so End-Start cannot overflow.
func (t Token) Oversized() bool {
	return t.Kind == KindRange && !t.Empty() && t.End-t.Start >= MaxSpan
}

// Indices expands the token into its indices in ascending order.
func (t Token) Indices() []int {
	if t.Empty() || t.Oversized() {
		return nil
	}
	out := make([]int, 0, t.End-t.Start+1)
	for i := t.Start; i <= t.End; i++ {
		out = append(out, i)
	}
	return out
}

// Tokenize splits spec on commas and classifies every trimmed token.
// Empty tokens (",,") are skipped entirely.
func Tokenize(spec string) []Token {
	var tokens []Token
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		tokens = append(tokens, classify(raw))
	}
	return tokens
}

func classify(raw string) Token {
	tok := Token{Raw: raw, Kind: KindIgnored}
	if strings.Contains(raw, "-") {
		parts := strings.Split(raw, "-")
		if len(parts) != 2 {
			return tok
		}
		start, ok1 := number(parts[0])
		end, ok2 := number(parts[1])
		if !ok1 || !ok2 {
			return tok
		}
		tok.Kind, tok.Start, tok.End = KindRange, start, end
		return tok
	}
	if n, ok := number(raw); ok {
		tok.Kind, tok.Start, tok.End = KindSingle, n, n
	}
	return tok
}

// number accepts only plain decimal digits; signs and spaces inside the
// number make the token malformed.
func number(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parse returns the selected indices sorted ascending without duplicates.
// It never returns nil.
func Parse(spec string) []int {
	return Expand(Tokenize(spec))
}

// Expand merges the indices of tokens into a sorted set.
func Expand(tokens []Token) []int {
	seen := make(map[int]struct{})
	for _, t := range tokens {
		for _, i := range t.Indices() {
			seen[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Ignored returns the raw text of every token Parse would drop, oversized
// ranges included.
func Ignored(tokens []Token) []string {
	var out []string
	for _, t := range tokens {
		if t.Kind == KindIgnored || t.Oversized() {
			out = append(out, t.Raw)
		}
	}
	return out
}
