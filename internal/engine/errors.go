package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/tagtext/internal/engine/annotation"
	"github.com/dshills/tagtext/internal/engine/buffer"
	"github.com/dshills/tagtext/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrOffsetOutOfRange indicates a character offset outside the text.
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange

	// ErrIndexOutOfRange indicates a token index outside the sequence.
	ErrIndexOutOfRange = buffer.ErrIndexOutOfRange

	// ErrReadOnly indicates a write on a read-only document or view.
	ErrReadOnly = errors.New("document is read-only")

	// ErrEditInProgress indicates a write attempted while another write,
	// possibly the one notifying the caller, had not finished.
	ErrEditInProgress = errors.New("edit already in progress")

	// ErrAnnotationGone indicates a view whose annotation has been removed.
	ErrAnnotationGone = errors.New("annotation no longer exists")

	// ErrNotStored indicates an annotation that does not belong to the
	// document.
	ErrNotStored = errors.New("annotation not stored in document")

	// ErrCrossing indicates annotations whose spans cross.
	ErrCrossing = errors.New("annotations cross")

	// ErrNothingToUndo and ErrNothingToRedo indicate an empty history.
	ErrNothingToUndo = history.ErrNothingToUndo
	ErrNothingToRedo = history.ErrNothingToRedo
)

// Crossing is a pair of annotations whose spans overlap without either
// enclosing the other. First starts before Second.
type Crossing struct {
	First  *annotation.Annotation
	Second *annotation.Annotation
}

// CrossingError lists the crossings found by CheckWellFormed.
type CrossingError struct {
	Crossings []Crossing
}

// Error implements error.
func (e *CrossingError) Error() string {
	parts := make([]string, len(e.Crossings))
	for i, c := range e.Crossings {
		parts[i] = fmt.Sprintf("%s/%s", c.First, c.Second)
	}
	return fmt.Sprintf("%d crossing annotation pairs: %s", len(e.Crossings), strings.Join(parts, ", "))
}

// Unwrap returns ErrCrossing.
func (e *CrossingError) Unwrap() error {
	return ErrCrossing
}
