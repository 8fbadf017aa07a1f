package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/tagtext/internal/engine/annotation"
	"github.com/dshills/tagtext/internal/engine/buffer"
)

func mustAnnotate(t *testing.T, s *annotation.Store, typ string, start, size int) *annotation.Annotation {
	t.Helper()
	a, err := annotation.New(typ, start, size)
	require.NoError(t, err)
	require.NoError(t, s.Insert(a))
	return a
}

// change builds a change with placeholder tokens.
func change(index, inserted, removed int) buffer.Change {
	return buffer.Change{
		Index:    index,
		Inserted: make([]*buffer.Token, inserted),
		Removed:  make([]*buffer.Token, removed),
	}
}

func TestDeleteInsideSentence(t *testing.T) {
	b := buffer.NewFromString("The cat sat.")
	store := annotation.NewStore()
	sentence := mustAnnotate(t, store, "sentence", 0, 4)
	p := New(store)

	c, err := b.DeleteChars(5, 2)
	require.NoError(t, err)
	res := p.Apply(c, nil)

	assert.Equal(t, []string{"The", "c", "sat", "."}, b.Values())
	assert.Equal(t, 0, sentence.Start())
	assert.Equal(t, 4, sentence.Size())
	assert.Empty(t, res.Purged)
	require.Len(t, res.Relays, 1)
	assert.Equal(t, 1, res.Relays[0].Change.Index)
	assert.Len(t, res.Relays[0].Change.Removed, 1)
	assert.Len(t, res.Relays[0].Change.Inserted, 1)
}

func TestInsertTokenGrowsSentence(t *testing.T) {
	b := buffer.NewFromString("The cat sat.")
	store := annotation.NewStore()
	sentence := mustAnnotate(t, store, "sentence", 0, 4)
	p := New(store)

	c, err := b.InsertToken(1, "big")
	require.NoError(t, err)
	p.Apply(c, sentence)

	assert.Equal(t, []string{"The", "big", "cat", "sat", "."}, b.Values())
	assert.Equal(t, 0, sentence.Start())
	assert.Equal(t, 5, sentence.Size())
}

func TestClassifyTable(t *testing.T) {
	// The annotation covers [4, 8) in every case.
	tests := []struct {
		name                    string
		index, inserted, removed int
		owned                   bool
		start, size             int
		relay                   bool
	}{
		{"after end", 9, 2, 1, false, 0, 0, false},
		{"replace at end", 8, 2, 1, false, 0, 0, false},
		{"insert at end not owned", 8, 2, 0, false, 0, 0, false},
		{"insert at end owned", 8, 2, 0, true, 0, 2, true},
		{"before start", 1, 3, 1, false, 2, 0, false},
		{"replace ending at start", 2, 1, 2, false, -1, 0, false},
		{"insert at start not owned", 4, 2, 0, false, 2, 0, false},
		{"insert at start owned", 4, 2, 0, true, 0, 2, true},
		{"insert inside", 6, 1, 0, false, 0, 1, true},
		{"delete overlapping start", 2, 0, 3, false, -2, -1, true},
		{"delete inside", 5, 0, 2, false, 0, -2, true},
		{"delete at start", 4, 0, 1, false, 0, -1, true},
		{"replace inside", 5, 3, 2, false, 0, 1, true},
		{"replace exact span", 4, 2, 4, false, 0, -2, true},
		{"replace spans start", 3, 2, 2, false, 1, -1, true},
		{"replace spans end", 6, 3, 4, false, 0, 1, true},
		{"replace at start spanning end", 4, 1, 6, false, 0, -3, true},
		{"replace covers", 3, 2, 6, false, 1, -4, false},
		{"delete everything", 4, 0, 4, false, 0, -4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, relay := Classify(change(tt.index, tt.inserted, tt.removed), 4, 8, tt.owned)
			assert.Equal(t, tt.start, d.Start, "start delta")
			assert.Equal(t, tt.size, d.Size, "size delta")
			assert.Equal(t, tt.relay, relay, "relay")
		})
	}
}

// TestClassifyMatchesReference checks the case table against independent
// boundary mapping for random changes and spans.
func TestClassifyMatchesReference(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		s := rapid.IntRange(0, count-1).Draw(rt, "s")
		e := rapid.IntRange(s+1, count).Draw(rt, "e")
		i := rapid.IntRange(0, count).Draw(rt, "i")
		m := rapid.IntRange(0, count-i).Draw(rt, "m")
		n := rapid.IntRange(0, 5).Draw(rt, "n")
		if n == 0 && m == 0 {
			n = 1
		}
		owned := rapid.Bool().Draw(rt, "owned")

		c := change(i, n, m)
		d, _ := Classify(c, s, e, owned)
		wantStart, wantEnd := Reference(c, s, e, owned)

		gotStart, gotEnd := s+d.Start, e+d.Start+d.Size
		if wantEnd-wantStart <= 0 {
			if gotEnd-gotStart > 0 {
				rt.Fatalf("[%d,%d) with %+v survived as [%d,%d), want purge", s, e, c, gotStart, gotEnd)
			}
			return
		}
		if gotStart != wantStart || gotEnd != wantEnd {
			rt.Fatalf("[%d,%d) i=%d n=%d m=%d owned=%v: got [%d,%d), want [%d,%d)",
				s, e, i, n, m, owned, gotStart, gotEnd, wantStart, wantEnd)
		}
	})
}

// TestApplyInvariants applies random changes to random stores and checks
// every survivor against the reference and that nothing empty survives.
func TestApplyInvariants(t *testing.T) {
	order, err := annotation.ParseNestingOrder("", "p s w")
	require.NoError(t, err)
	typeGen := rapid.SampledFrom([]string{"p", "s", "w", "q"})

	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 15).Draw(rt, "count")
		store := annotation.NewStore(annotation.WithNestingOrder(order))
		var anns []*annotation.Annotation
		for range rapid.IntRange(0, 10).Draw(rt, "annotations") {
			start := rapid.IntRange(0, count-1).Draw(rt, "start")
			size := rapid.IntRange(1, count-start).Draw(rt, "size")
			a, err := annotation.New(typeGen.Draw(rt, "type"), start, size)
			if err != nil {
				rt.Fatal(err)
			}
			if err := store.Insert(a); err != nil {
				rt.Fatal(err)
			}
			anns = append(anns, a)
		}
		var source *annotation.Annotation
		if len(anns) > 0 && rapid.Bool().Draw(rt, "sourced") {
			source = rapid.SampledFrom(anns).Draw(rt, "source")
		}

		i := rapid.IntRange(0, count).Draw(rt, "i")
		m := rapid.IntRange(0, count-i).Draw(rt, "m")
		n := rapid.IntRange(0, 4).Draw(rt, "n")
		if n == 0 && m == 0 {
			m = min(1, count-i)
			if m == 0 {
				n = 1
			}
		}
		c := change(i, n, m)

		p := New(store)
		type want struct{ start, end int }
		expected := make(map[*annotation.Annotation]want, len(anns))
		for _, a := range anns {
			s, e := Reference(c, a.Start(), a.End(), p.owns(a, source))
			expected[a] = want{s, e}
		}

		res := p.Apply(c, source)

		purged := make(map[*annotation.Annotation]bool)
		for _, a := range res.Purged {
			purged[a] = true
		}
		for _, a := range anns {
			w := expected[a]
			if w.end-w.start <= 0 {
				if !purged[a] || a.Attached() {
					rt.Fatalf("%s should have been purged", a)
				}
				continue
			}
			if a.Start() != w.start || a.End() != w.end {
				rt.Fatalf("%s: want [%d,%d)", a, w.start, w.end)
			}
		}
		for _, a := range store.All() {
			if a.Size() <= 0 {
				rt.Fatalf("stored annotation %s is empty", a)
			}
		}
		for _, r := range res.Relays {
			if r.Annotation.Size() <= 0 || !r.Annotation.Attached() {
				rt.Fatalf("relay to purged annotation %s", r.Annotation)
			}
		}
	})
}

func TestOwnership(t *testing.T) {
	order, err := annotation.ParseNestingOrder("", "A B")
	require.NoError(t, err)
	store := annotation.NewStore(annotation.WithNestingOrder(order))
	sentence := mustAnnotate(t, store, "s", 0, 4)
	word := mustAnnotate(t, store, "w", 3, 1)
	next := mustAnnotate(t, store, "s", 4, 2)
	a := mustAnnotate(t, store, "A", 6, 2)
	b := mustAnnotate(t, store, "B", 6, 2)
	p := New(store)

	assert.True(t, p.owns(word, word))
	assert.True(t, p.owns(sentence, word))
	assert.False(t, p.owns(next, word))
	assert.False(t, p.owns(word, sentence))
	assert.False(t, p.owns(sentence, nil))
	assert.True(t, p.owns(a, b), "same span, ranks before")
	assert.False(t, p.owns(b, a), "same span, ranks after")

	// Appending after the word through the word grows it and the sentence,
	// and pushes the next sentence right.
	p.Apply(change(4, 1, 0), word)
	assert.Equal(t, 5, sentence.End())
	assert.Equal(t, 5, word.End())
	assert.Equal(t, 5, next.Start())
	assert.Equal(t, 2, next.Size())
}

func TestBoundaryInsertWithoutSource(t *testing.T) {
	store := annotation.NewStore()
	first := mustAnnotate(t, store, "s", 0, 2)
	second := mustAnnotate(t, store, "s", 2, 2)
	p := New(store)

	res := p.Apply(change(2, 1, 0), nil)
	assert.Equal(t, 2, first.Size())
	assert.Equal(t, 3, second.Start())
	assert.Empty(t, res.Relays)
	require.Len(t, res.Deltas, 1)
	assert.Same(t, second, res.Deltas[0].Annotation)
}

func TestRebaseClipsTokens(t *testing.T) {
	store := annotation.NewStore()
	ann := mustAnnotate(t, store, "s", 2, 3)
	p := New(store)

	c := buffer.Change{
		Index:    1,
		Removed:  []*buffer.Token{{}, {}},
		Inserted: []*buffer.Token{{}},
	}
	res := p.Apply(c, nil)

	assert.Equal(t, 2, ann.Start())
	assert.Equal(t, 2, ann.Size())
	require.Len(t, res.Relays, 1)
	r := res.Relays[0]
	assert.Same(t, ann, r.Annotation)
	assert.Equal(t, 0, r.Change.Index)
	require.Len(t, r.Change.Removed, 1)
	assert.Same(t, c.Removed[1], r.Change.Removed[0])
	assert.Empty(t, r.Change.Inserted)
}

func TestRebaseInside(t *testing.T) {
	ann, err := annotation.New("s", 3, 4)
	require.NoError(t, err)
	c := buffer.Change{
		Index:    5,
		Removed:  []*buffer.Token{{}, {}, {}, {}},
		Inserted: []*buffer.Token{{}},
	}
	r := Rebase(c, ann)
	assert.Equal(t, 2, r.Change.Index)
	assert.Len(t, r.Change.Removed, 2)
	assert.Len(t, r.Change.Inserted, 1)
}

func TestCoveredAnnotationIsPurged(t *testing.T) {
	store := annotation.NewStore()
	inner := mustAnnotate(t, store, "w", 2, 1)
	outer := mustAnnotate(t, store, "s", 0, 5)
	p := New(store)

	res := p.Apply(change(1, 1, 3), nil)
	assert.Equal(t, []*annotation.Annotation{inner}, res.Purged)
	assert.False(t, inner.Attached())
	assert.Equal(t, 3, outer.Size())
	assert.Equal(t, []*annotation.Annotation{outer}, store.All())
}

func TestHistory(t *testing.T) {
	store := annotation.NewStore()
	p := New(store, WithMaxHistory(2))
	assert.Equal(t, Revision(0), p.Revision())

	res := p.Apply(buffer.Change{}, nil)
	assert.Equal(t, Revision(0), res.Revision, "empty changes are not recorded")

	for k := range 3 {
		res = p.Apply(change(k, 1, 0), nil)
	}
	assert.Equal(t, Revision(3), res.Revision)
	assert.Equal(t, Revision(3), p.Revision())
	assert.Equal(t, 2, p.HistoryLen())

	since := p.ChangesSince(1)
	require.Len(t, since, 2)
	assert.Equal(t, Revision(2), since[0].Revision)
	assert.Equal(t, 1, since[0].Change.Index)

	latest := p.Latest(1)
	require.Len(t, latest, 1)
	assert.Equal(t, Revision(3), latest[0].Revision)
	assert.Len(t, p.Latest(10), 2)

	p.ClearHistory()
	assert.Equal(t, 0, p.HistoryLen())
	assert.Empty(t, p.ChangesSince(0))
	assert.Equal(t, Revision(3), p.Revision())
}
