package tokenizer

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Span is a half-open byte range [Start, End) of one token.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Tokenizer splits text into token spans.
// Implementations must be deterministic and free of side effects.
type Tokenizer interface {
	Tokenize(s string) []Span
}

// Func adapts an ordinary function to the Tokenizer interface.
type Func func(s string) []Span

// Tokenize calls f(s).
func (f Func) Tokenize(s string) []Span {
	return f(s)
}

// Count returns the number of tokens t produces for s.
func Count(t Tokenizer, s string) int {
	if s == "" {
		return 0
	}
	return len(t.Tokenize(s))
}

// Values returns the token strings t produces for s.
func Values(t Tokenizer, s string) []string {
	spans := t.Tokenize(s)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = s[sp.Start:sp.End]
	}
	return out
}

// IsSpace reports whether r separates tokens.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// ContainsSpace reports whether s contains a whitespace rune.
func ContainsSpace(s string) bool {
	return strings.IndexFunc(s, IsSpace) >= 0
}

// OnlySpace reports whether s consists of whitespace runes only.
// The empty string qualifies.
func OnlySpace(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !IsSpace(r) }) < 0
}

// Default inner punctuation and numeric separators.
const (
	DefaultInnerPunctuation  = "'’"
	DefaultNumericSeparators = ",."
)

// Option configures a Pattern tokenizer.
type Option func(*Pattern)

// WithInnerPunctuation sets the characters that join two letter or digit
// runs into one token. An empty string disables joining.
func WithInnerPunctuation(chars string) Option {
	return func(p *Pattern) {
		p.inner = chars
	}
}

// WithNumericSeparators sets the characters that join two digit runs.
func WithNumericSeparators(chars string) Option {
	return func(p *Pattern) {
		p.numeric = chars
	}
}

// Pattern is the default script-aware tokenizer.
type Pattern struct {
	inner   string
	numeric string
}

// New creates a Pattern tokenizer.
func New(opts ...Option) *Pattern {
	p := &Pattern{
		inner:   DefaultInnerPunctuation,
		numeric: DefaultNumericSeparators,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Default is a shared Pattern tokenizer with default settings.
var Default Tokenizer = New()

// Tokenize implements Tokenizer.
func (p *Pattern) Tokenize(s string) []Span {
	var spans []Span
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if IsSpace(r) {
			i += size
			continue
		}
		j := i + size
		for j < len(s) {
			r, size = utf8.DecodeRuneInString(s[j:])
			if IsSpace(r) {
				break
			}
			j += size
		}
		spans = p.segment(s[i:j], i, spans)
		i = j
	}
	return spans
}

type elemKind uint8

const (
	kindOther elemKind = iota
	kindLetter
	kindDigit
	kindSymbol
)

type element struct {
	start, end int
	kind       elemKind
	script     string
	unit       string // the repeated cluster of a symbol run
	lead       rune
}

func (e element) word() bool {
	return e.kind == kindLetter || e.kind == kindDigit
}

// single reports whether a symbol run consists of exactly one cluster.
func (e element) single() bool {
	return e.end-e.start == len(e.unit)
}

// segment tokenizes one whitespace-free segment located at base.
func (p *Pattern) segment(seg string, base int, spans []Span) []Span {
	elems := make([]element, 0, 4)
	script := ""
	g := uniseg.NewGraphemes(seg)
	for g.Next() {
		from, to := g.Positions()
		cluster := seg[from:to]
		lead, _ := utf8.DecodeRuneInString(cluster)

		el := element{start: from, end: to, lead: lead}
		switch {
		case unicode.IsLetter(lead):
			el.kind = kindLetter
			script = scriptOf(lead, script)
			el.script = script
		case unicode.IsDigit(lead):
			el.kind = kindDigit
			script = scriptOf(lead, script)
			el.script = script
		case unicode.IsPunct(lead) || unicode.IsSymbol(lead):
			el.kind = kindSymbol
			el.unit = cluster
		}

		if n := len(elems); n > 0 && extends(elems[n-1], el) {
			elems[n-1].end = to
			continue
		}
		elems = append(elems, el)
	}

	for k := 0; k < len(elems); {
		start, end := elems[k].start, elems[k].end
		last := elems[k]
		k++
		for k+1 < len(elems) && p.bridges(last, elems[k], elems[k+1]) {
			last = elems[k+1]
			end = last.end
			k += 2
		}
		spans = append(spans, Span{Start: base + start, End: base + end})
	}
	return spans
}

func extends(prev, next element) bool {
	if prev.kind != next.kind {
		return false
	}
	switch prev.kind {
	case kindLetter, kindDigit:
		return prev.script == next.script
	case kindSymbol:
		return prev.unit == next.unit
	}
	return false
}

// bridges reports whether mid joins left and right into one token.
func (p *Pattern) bridges(left, mid, right element) bool {
	if mid.kind != kindSymbol || !mid.single() || !left.word() || !right.word() {
		return false
	}
	if strings.ContainsRune(p.inner, mid.lead) {
		return true
	}
	return left.kind == kindDigit && right.kind == kindDigit &&
		strings.ContainsRune(p.numeric, mid.lead)
}

var scriptNames = slices.Sorted(maps.Keys(unicode.Scripts))

// scriptOf returns the Unicode script of r. hint is tried first so runs of
// one script resolve without scanning the table.
func scriptOf(r rune, hint string) string {
	if r < utf8.RuneSelf {
		if unicode.IsLetter(r) {
			return "Latin"
		}
		return "Common"
	}
	if hint != "" {
		if tab, ok := unicode.Scripts[hint]; ok && unicode.Is(tab, r) {
			return hint
		}
	}
	for _, name := range scriptNames {
		if unicode.Is(unicode.Scripts[name], r) {
			return name
		}
	}
	return ""
}
