// Package markup provides the XML-facing helpers shared by tokens and
// annotations: QName-shaped name validation and text escaping.
package markup

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidName indicates a type or attribute name that is not a QName.
var ErrInvalidName = errors.New("invalid name")

// ValidName reports whether name has the shape NCName(:NCName)?.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	prefix, local, found := strings.Cut(name, ":")
	if !found {
		return validNCName(name)
	}
	return validNCName(prefix) && validNCName(local)
}

// CheckName returns ErrInvalidName wrapped with the offending name.
func CheckName(name string) error {
	if !ValidName(name) {
		return &NameError{Name: name}
	}
	return nil
}

// NameError reports a rejected name.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return "invalid name " + strconv.Quote(e.Name)
}

// Unwrap returns ErrInvalidName.
func (e *NameError) Unwrap() error {
	return ErrInvalidName
}

func validNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if i == 0 {
			if !isNameStart(r) {
				return false
			}
			continue
		}
		if !isNameChar(r) {
			return false
		}
	}
	return true
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	switch {
	case isNameStart(r), unicode.IsDigit(r):
		return true
	case r == '-', r == '.', r == 0xB7:
		return true
	case unicode.Is(unicode.Mn, r), unicode.Is(unicode.Mc, r):
		return true
	}
	return false
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML special characters with entity references.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape and also resolves decimal and hexadecimal
// character references. Unknown or malformed references are kept verbatim.
func Unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		amp := strings.IndexByte(s, '&')
		if amp < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:amp])
		s = s[amp:]
		semi := strings.IndexByte(s, ';')
		if semi < 0 {
			b.WriteString(s)
			return b.String()
		}
		if r, ok := resolveEntity(s[1:semi]); ok {
			b.WriteRune(r)
		} else {
			b.WriteString(s[:semi+1])
		}
		s = s[semi+1:]
	}
}

func resolveEntity(name string) (rune, bool) {
	switch name {
	case "amp":
		return '&', true
	case "lt":
		return '<', true
	case "gt":
		return '>', true
	case "quot":
		return '"', true
	case "apos":
		return '\'', true
	}
	if !strings.HasPrefix(name, "#") {
		return 0, false
	}
	num := name[1:]
	base := 10
	if strings.HasPrefix(num, "x") || strings.HasPrefix(num, "X") {
		num = num[1:]
		base = 16
	}
	v, err := strconv.ParseUint(num, base, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, false
	}
	return rune(v), true
}
