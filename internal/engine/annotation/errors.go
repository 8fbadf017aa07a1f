package annotation

import (
	"errors"

	"github.com/dshills/tagtext/internal/engine/markup"
)

// Errors returned by annotation operations.
var (
	ErrBlankType        = errors.New("annotation type is blank")
	ErrInvalidName      = markup.ErrInvalidName
	ErrInvalidSize      = errors.New("annotation size must be positive")
	ErrOffsetOutOfRange = errors.New("annotation start out of range")
	ErrDuplicate        = errors.New("annotation already stored")
	ErrAttached         = errors.New("annotation belongs to another store")
	ErrNotFound         = errors.New("annotation not found")
	ErrInvalidID        = errors.New("invalid annotation id")
)
