package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestUndoRedoMovesAnnotations(t *testing.T) {
	d := newDoc(t, WithContent("The cat sat."))
	s := annotate(t, d, "sentence", 0, 4)

	_, err := d.InsertToken(1, "big")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Size())
	assert.True(t, d.CanUndo())

	require.NoError(t, d.Undo())
	assert.Equal(t, "The cat sat.", d.Text())
	assert.Equal(t, 4, s.Size())
	assert.True(t, d.CanRedo())

	require.NoError(t, d.Redo())
	assert.Equal(t, "The big cat sat.", d.Text())
	assert.Equal(t, 5, s.Size())
	assert.False(t, d.CanRedo())
}

func TestUndoEmptyHistory(t *testing.T) {
	d := newDoc(t, WithContent("x"))
	assert.True(t, errors.Is(d.Undo(), ErrNothingToUndo))
	assert.True(t, errors.Is(d.Redo(), ErrNothingToRedo))

	_, err := d.ReplaceToken(0, "x")
	require.NoError(t, err)
	assert.False(t, d.CanUndo(), "a no-op edit is not recorded")
}

func TestUndoWhitespaceOnlyEdit(t *testing.T) {
	d := newDoc(t, WithContent("The cat sat."))
	delivered := 0
	d.OnChange(func(Change) { delivered++ })

	c, err := d.SetWhitespaceAfter(0, "   ")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, delivered)
	assert.True(t, d.CanUndo(), "whitespace edits move later offsets and are recorded")

	_, err = d.InsertChars(d.Len(), " Then")
	require.NoError(t, err)
	require.NoError(t, d.Undo())
	require.NoError(t, d.Undo())
	assert.Equal(t, "The cat sat.", d.Text())
	assert.False(t, d.CanUndo())
}

func TestUndoDoesNotRestorePurgedAnnotations(t *testing.T) {
	d := newDoc(t, WithContent("The cat sat."))
	s := annotate(t, d, "sentence", 0, 4)
	w := annotate(t, d, "word", 1, 1)

	_, err := d.RemoveTokens(1, 1)
	require.NoError(t, err)
	assert.False(t, w.Attached())

	require.NoError(t, d.Undo())
	assert.Equal(t, "The cat sat.", d.Text())
	assert.Equal(t, 4, s.Size())
	assert.False(t, w.Attached())
	assert.Equal(t, 1, d.AnnotationCount())
}

func TestGroupUndoesTogether(t *testing.T) {
	d := newDoc(t, WithContent("The cat sat."))
	var changes []Change
	d.OnChange(func(c Change) { changes = append(changes, c) })

	err := d.Group("rewrite", func() error {
		if _, err := d.ReplaceToken(1, "dog"); err != nil {
			return err
		}
		_, err := d.InsertChars(0, "So ")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "So The dog sat.", d.Text())

	changes = nil
	require.NoError(t, d.Undo())
	assert.Equal(t, "The cat sat.", d.Text())
	assert.Len(t, changes, 2, "each reverting edit is announced")
	assert.False(t, d.CanUndo())
}

func TestNewEditClearsRedo(t *testing.T) {
	d := newDoc(t, WithContent("a b"))
	_, err := d.InsertToken(2, "c")
	require.NoError(t, err)
	require.NoError(t, d.Undo())

	_, err = d.RemoveTokens(0, 1)
	require.NoError(t, err)
	assert.False(t, d.CanRedo())

	d.ClearUndo()
	assert.False(t, d.CanUndo())
}

func TestUndoRejected(t *testing.T) {
	d := newDoc(t, WithContent("x"), WithReadOnly())
	assert.True(t, errors.Is(d.Undo(), ErrReadOnly))

	d = newDoc(t, WithContent("a"))
	_, err := d.InsertChars(1, "b")
	require.NoError(t, err)
	var nested error
	d.OnChange(func(Change) { nested = d.Undo() })
	_, err = d.InsertChars(2, "c")
	require.NoError(t, err)
	assert.True(t, errors.Is(nested, ErrEditInProgress))
}

func TestUndoWithNormalization(t *testing.T) {
	d := newDoc(t, WithContent("x"), WithNormalization(norm.NFC))
	_, err := d.InsertChars(1, " cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "x caf\u00e9", d.Text())

	require.NoError(t, d.Undo())
	assert.Equal(t, "x", d.Text())
	require.NoError(t, d.Redo())
	assert.Equal(t, "x caf\u00e9", d.Text())
}
