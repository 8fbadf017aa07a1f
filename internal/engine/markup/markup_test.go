package markup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"sentence", true},
		{"_private", true},
		{"ns:token", true},
		{"pos-tag.v2", true},
		{"ünicode", true},
		{"", false},
		{"1abc", false},
		{"a b", false},
		{"ns:", false},
		{":local", false},
		{"a:b:c", false},
		{"-x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidName(tt.name))
		})
	}
}

func TestCheckName(t *testing.T) {
	require.NoError(t, CheckName("ok"))

	err := CheckName("not ok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidName))
	assert.Contains(t, err.Error(), `"not ok"`)
}

func TestEscapeUnescape(t *testing.T) {
	s := `a < b && "c" > 'd'`
	escaped := Escape(s)
	assert.Equal(t, "a &lt; b &amp;&amp; &quot;c&quot; &gt; &apos;d&apos;", escaped)
	assert.Equal(t, s, Unescape(escaped))
}

func TestUnescapeReferences(t *testing.T) {
	assert.Equal(t, "A€", Unescape("&#65;&#x20AC;"))
	assert.Equal(t, "&bogus; & tail", Unescape("&bogus; & tail"))
	assert.Equal(t, "plain", Unescape("plain"))
	assert.Equal(t, "&#xZZ;", Unescape("&#xZZ;"))
}
