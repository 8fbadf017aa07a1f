package annotation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID identifies an annotation. IDs are 128 random bits; they are unique in
// practice, not by guarantee.
type ID [16]byte

// NewID returns a new random ID. All 128 bits are random, so IDs are not
// valid version 4 UUIDs, though they share the layout.
func NewID() ID {
	var id ID
	_, _ = rand.Read(id[:])
	return id
}

// ParseID parses the 32-digit hex form produced by String. The dashed UUID
// form is accepted too.
func ParseID(s string) (ID, error) {
	if len(s) == 32 {
		var id ID
		if _, err := hex.Decode(id[:], []byte(s)); err != nil {
			return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		return id, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(u), nil
}

// String returns the ID as 32 uppercase hex digits.
func (id ID) String() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id == ID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
