package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/tagtext/internal/config"
	"github.com/dshills/tagtext/internal/engine"
	"github.com/dshills/tagtext/internal/logging"
)

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	return &app{cfg: cfg, logger: logging.NullLogger, tok: cfg.NewTokenizer()}
}

// execute runs the root command with args in dir and returns its output.
func execute(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	if dir != "" {
		t.Chdir(dir)
	}
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--color", "off"))
	err := root.Execute()
	return out.String(), err
}

func TestSentenceBounds(t *testing.T) {
	tests := []struct {
		values []string
		want   [][2]int
	}{
		{nil, nil},
		{[]string{"Hi", "."}, [][2]int{{0, 2}}},
		{[]string{"A", ".", "B", "?!", "C"}, [][2]int{{0, 2}, {2, 4}, {4, 5}}},
		{[]string{"Wait", "...", "ok"}, [][2]int{{0, 2}, {2, 3}}},
		{[]string{".", "."}, [][2]int{{0, 1}, {1, 2}}},
		{[]string{"e.g", "x"}, [][2]int{{0, 2}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sentenceBounds(tt.values), "%q", tt.values)
	}
}

func TestAnnotateSentencesReplacesOld(t *testing.T) {
	a := testApp(t)
	d, err := a.newDocument("The cat sat. The dog ran")
	require.NoError(t, err)

	got, err := annotateSentences(d)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sentence[0:4)", got[0].String())
	assert.Equal(t, "sentence[4:7)", got[1].String())

	_, err = d.InsertChars(d.Len(), "!")
	require.NoError(t, err)
	_, err = annotateSentences(d)
	require.NoError(t, err)
	assert.Len(t, d.Annotations(sentenceType), 2)

	var out bytes.Buffer
	color.NoColor = true
	require.NoError(t, writeSentences(&out, d))
	assert.Equal(t, "sentence[0:4)  The cat sat.\nsentence[4:8)  The dog ran!\n", out.String())
}

func TestApplyDiff(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
	}{
		{"identical", "The cat sat.", "The cat sat."},
		{"insert word", "The cat sat.", "The big cat sat."},
		{"delete inside token", "The cat sat.", "The ct sat."},
		{"replace", "The cat sat.", "A dog sat!"},
		{"from empty", "", "Hello world."},
		{"to empty", "Hello world.", ""},
		{"multibyte", "café au lait", "cafés au lait é"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testApp(t)
			d, err := a.newDocument(tt.old)
			require.NoError(t, err)
			n, err := applyDiff(d, tt.new)
			require.NoError(t, err)
			assert.Equal(t, tt.new, d.Text())
			if tt.old == tt.new {
				assert.Zero(t, n)
			}
		})
	}
}

func TestApplyDiffKeepsSentences(t *testing.T) {
	a := testApp(t)
	d, err := a.newDocument("The cat sat. The dog ran.")
	require.NoError(t, err)
	ss, err := annotateSentences(d)
	require.NoError(t, err)

	_, err = applyDiff(d, "The cat sat. The big dog ran far.")
	require.NoError(t, err)

	assert.Equal(t, "sentence[0:4)", ss[0].String())
	assert.Equal(t, "sentence[4:10)", ss[1].String())
}

func TestApplyDiffProperty(t *testing.T) {
	alphabet := rapid.SampledFrom([]string{"a", "b", "c", " ", ".", "!", "\n"})
	text := rapid.Custom(func(t *rapid.T) string {
		return strings.Join(rapid.SliceOfN(alphabet, 0, 30).Draw(t, "parts"), "")
	})
	rapid.Check(t, func(t *rapid.T) {
		d, err := engine.New(engine.WithLogger(logging.NullLogger), engine.WithContent(text.Draw(t, "old")))
		require.NoError(t, err)
		ss, err := annotateSentences(d)
		require.NoError(t, err)

		want := text.Draw(t, "new")
		_, err = applyDiff(d, want)
		require.NoError(t, err)
		require.Equal(t, want, d.Text())
		for _, s := range ss {
			if s.Attached() {
				require.Greater(t, s.Size(), 0)
				require.LessOrEqual(t, s.End(), d.TokenCount())
			}
		}
	})
}

func TestWriteChange(t *testing.T) {
	color.NoColor = true
	a := testApp(t)
	d, err := a.newDocument("The cat sat.")
	require.NoError(t, err)
	var out bytes.Buffer
	d.OnChange(func(c engine.Change) { writeChange(&out, c) })

	_, err = d.ReplaceToken(1, "dog")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "@1 -cat +dog  ("), out.String())
}

func TestTokenizeOutput(t *testing.T) {
	color.NoColor = true
	a := testApp(t)
	dir := t.TempDir()
	f1 := filepath.Join(dir, "a.txt")
	f2 := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(f1, []byte("Hi there."), 0o644))
	require.NoError(t, os.WriteFile(f2, []byte("<x> & y"), 0o644))

	var out bytes.Buffer
	require.NoError(t, a.tokenize(context.Background(), &out, nil, []string{f1, f2}, false))
	want := "==> " + f1 + " <==\n" +
		"0  [0:2)  Hi\n" +
		"1  [3:8)  there\n" +
		"2  [8:9)  .\n" +
		"==> " + f2 + " <==\n" +
		"0  [0:1)  <\n" +
		"1  [1:2)  x\n" +
		"2  [2:3)  >\n" +
		"3  [4:5)  &\n" +
		"4  [6:7)  y\n"
	assert.Equal(t, want, out.String())

	out.Reset()
	require.NoError(t, a.tokenize(context.Background(), &out, nil, []string{f2}, true))
	assert.Contains(t, out.String(), `<t i="0" start="0" end="1">&lt;</t>`)
	assert.Contains(t, out.String(), `<t i="3" start="4" end="5">&amp;</t>`)
	assert.True(t, strings.HasSuffix(out.String(), "</tokens>\n"))

	err := a.tokenize(context.Background(), &out, nil, []string{filepath.Join(dir, "missing")}, false)
	assert.Error(t, err)
}

func TestTokenizeCommandReadsStdin(t *testing.T) {
	out, err := execute(t, t.TempDir(), "Don't stop.", "tokenize")
	require.NoError(t, err)
	assert.Equal(t, "0  [0:5)    Don't\n1  [6:10)   stop\n2  [10:11)  .\n", out)
}

func TestConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tagtext.toml"),
		[]byte("[document]\nrootType = \"text\"\n[logging]\nlevel = \"info\"\n"), 0o644))

	out, err := execute(t, dir, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "rootType = 'text'")
	assert.Contains(t, out, "level = 'info'")

	t.Setenv("TAGTEXT_LOG_LEVEL", "error")
	out, err = execute(t, dir, "", "config", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "level: error")

	out, err = execute(t, dir, "", "config", "--log-level", "debug", "--normalization", "NFC")
	require.NoError(t, err)
	assert.Contains(t, out, "level = 'debug'")
	assert.Contains(t, out, "normalization = 'NFC'")
}

func TestInvalidSettingsFail(t *testing.T) {
	_, err := execute(t, t.TempDir(), "", "config", "--log-level", "loud")
	assert.ErrorIs(t, err, config.ErrValidationFailed)

	_, err = execute(t, t.TempDir(), "", "config", "--config", "missing.toml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
