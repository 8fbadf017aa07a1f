package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/tagtext/internal/engine"
)

// sentenceType is the annotation type of sentences.
const sentenceType = "sentence"

func newSentencesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sentences [file]",
		Short: "Annotate and print the sentences of a file",
		Long: `Sentences annotates each run of tokens ending in '.', '!' or '?' as a
sentence and prints the annotations. With no file it reads standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := stdinName
			if len(args) == 1 {
				name = args[0]
			}
			text, err := readInput(name, cmd.InOrStdin())
			if err != nil {
				return err
			}
			d, err := a.newDocument(text)
			if err != nil {
				return err
			}
			if _, err := annotateSentences(d); err != nil {
				return err
			}
			return writeSentences(cmd.OutOrStdout(), d)
		},
	}
}

// isTerminator reports whether a token ends a sentence: a run of '.', '!'
// and '?' such as ".", "?!" or "...".
func isTerminator(value string) bool {
	return value != "" && strings.Trim(value, ".!?") == ""
}

// sentenceBounds splits token values into sentences and returns the
// [start, end) token range of each. Trailing tokens without a terminator
// form a final sentence.
func sentenceBounds(values []string) [][2]int {
	var out [][2]int
	start := 0
	for i, v := range values {
		if isTerminator(v) {
			out = append(out, [2]int{start, i + 1})
			start = i + 1
		}
	}
	if start < len(values) {
		out = append(out, [2]int{start, len(values)})
	}
	return out
}

// annotateSentences replaces the document's sentence annotations with a
// fresh segmentation.
func annotateSentences(d *engine.Document) ([]*engine.Annotation, error) {
	for _, a := range d.Annotations(sentenceType) {
		if _, err := d.RemoveAnnotation(a); err != nil {
			return nil, err
		}
	}
	var out []*engine.Annotation
	for _, b := range sentenceBounds(d.Values()) {
		a, err := d.Annotate(sentenceType, b[0], b[1]-b[0])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

var sentenceColor = color.New(color.FgYellow)

// writeSentences prints every sentence annotation with its token span and
// text.
func writeSentences(w io.Writer, d *engine.Document) error {
	for _, a := range d.Annotations(sentenceType) {
		text, err := annotationText(d, a)
		if err != nil {
			return err
		}
		sentenceColor.Fprint(w, a.String())
		fmt.Fprintf(w, "  %s\n", text)
	}
	return nil
}

// annotationText returns the text from an annotation's first token to the
// end of its last.
func annotationText(d *engine.Document, a *engine.Annotation) (string, error) {
	first, err := d.Token(a.Start())
	if err != nil {
		return "", err
	}
	last, err := d.Token(a.End() - 1)
	if err != nil {
		return "", err
	}
	return d.TextRange(first.Start(), last.End())
}
