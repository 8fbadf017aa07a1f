package tokenizer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPatternTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"sentence", "The cat sat.", []string{"The", "cat", "sat", "."}},
		{"empty", "", []string{}},
		{"only space", " \t\n ", []string{}},
		{"contraction", "don't stop", []string{"don't", "stop"}},
		{"curly apostrophe", "it’s", []string{"it’s"}},
		{"thousands", "1,000,000.50 units", []string{"1,000,000.50", "units"}},
		{"separator between letters", "a.b", []string{"a", ".", "b"}},
		{"trailing separator", "end,", []string{"end", ","}},
		{"letters then digits", "abc123", []string{"abc", "123"}},
		{"repeated punctuation", "wait... what?!", []string{"wait", "...", "what", "?", "!"}},
		{"mixed scripts", "helloпривет", []string{"hello", "привет"}},
		{"combining mark stays", "cafe\u0301 ok", []string{"cafe\u0301", "ok"}},
		{"doubled apostrophe", "don''t", []string{"don", "''", "t"}},
		{"leading and trailing space", "  hi  ", []string{"hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Values(New(), tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatternOptions(t *testing.T) {
	p := New(WithInnerPunctuation("-"), WithNumericSeparators(""))
	assert.Equal(t, []string{"well-known", "1", ",", "000", "don", "'", "t"},
		Values(p, "well-known 1,000 don't"))
}

func TestSpansAreAbsolute(t *testing.T) {
	spans := New().Tokenize("  ab cd")
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Start: 2, End: 4}, spans[0])
	assert.Equal(t, Span{Start: 5, End: 7}, spans[1])
	assert.Equal(t, "[5:7)", spans[1].String())
	assert.Equal(t, 2, spans[1].Len())
}

func TestWhitespaceHelpers(t *testing.T) {
	assert.True(t, OnlySpace(""))
	assert.True(t, OnlySpace(" \n\t"))
	assert.False(t, OnlySpace(" x "))
	assert.True(t, ContainsSpace("a b"))
	assert.False(t, ContainsSpace("ab"))
	assert.Equal(t, 0, Count(Default, ""))
	assert.Equal(t, 3, Count(Default, "a, b"))
}

func TestCachedMatchesUnderlying(t *testing.T) {
	calls := 0
	base := Func(func(s string) []Span {
		calls++
		return New().Tokenize(s)
	})
	c := Cached(base, time.Minute)

	first := c.Tokenize("The cat sat.")
	second := c.Tokenize("The cat sat.")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	// Callers own their result.
	second[0] = Span{}
	assert.Equal(t, first, c.Tokenize("The cat sat."))

	long := strings.Repeat("x ", MaxCachedLen)
	c.Tokenize(long)
	c.Tokenize(long)
	assert.Equal(t, 3, calls)
}

// TestTokenizeProperties checks the contract every tokenizer must honor.
func TestTokenizeProperties(t *testing.T) {
	p := New()
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringOf(rapid.SampledFrom([]rune("ab1 ,.'!\nпж\u0301"))).Draw(rt, "text")
		spans := p.Tokenize(s)

		prevEnd := 0
		for _, sp := range spans {
			if sp.Start < prevEnd || sp.End <= sp.Start {
				rt.Fatalf("bad span %v after %d in %q", sp, prevEnd, s)
			}
			if ContainsSpace(s[sp.Start:sp.End]) {
				rt.Fatalf("span %v of %q contains whitespace", sp, s)
			}
			if !OnlySpace(s[prevEnd:sp.Start]) {
				rt.Fatalf("gap %q before %v is not whitespace", s[prevEnd:sp.Start], sp)
			}
			prevEnd = sp.End
		}
		if !OnlySpace(s[prevEnd:]) {
			rt.Fatalf("trailing gap %q is not whitespace", s[prevEnd:])
		}

		// Tokenizing per whitespace-separated field gives the same tokens.
		var perField []string
		for _, f := range strings.FieldsFunc(s, IsSpace) {
			perField = append(perField, Values(p, f)...)
		}
		all := Values(p, s)
		if len(all) == 0 && len(perField) == 0 {
			return
		}
		if strings.Join(all, "|") != strings.Join(perField, "|") {
			rt.Fatalf("segment locality violated for %q: %v vs %v", s, all, perField)
		}
	})
}
