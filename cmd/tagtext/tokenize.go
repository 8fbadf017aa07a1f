package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/tagtext/internal/engine"
	"github.com/dshills/tagtext/internal/engine/markup"
)

// stdinName stands for standard input in file arguments.
const stdinName = "-"

func newTokenizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [files...]",
		Short: "Print the tokens of each file",
		Long: `Tokenize reads each file into its own document and prints every token
with its index and byte span. With no files it reads standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			xml, _ := cmd.Flags().GetBool("xml")
			return a.tokenize(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), args, xml)
		},
	}
	cmd.Flags().Bool("xml", false, "render tokens as <t> elements")
	return cmd
}

// tokenize renders every file concurrently and writes the results in
// argument order.
func (a *app) tokenize(ctx context.Context, w io.Writer, stdin io.Reader, files []string, xml bool) error {
	if len(files) == 0 {
		files = []string{stdinName}
	}
	out := make([]bytes.Buffer, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := readInput(name, stdin)
			if err != nil {
				return err
			}
			d, err := a.newDocument(text)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if xml {
				writeTokensXML(&out[i], name, d)
			} else {
				writeTokens(&out[i], name, d, len(files) > 1)
			}
			a.logger.Debug("tokenized %s: %d tokens", name, d.TokenCount())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range out {
		if _, err := out[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

func readInput(name string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if name == stdinName {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	headerColor = color.New(color.Bold)
	indexColor  = color.New(color.FgHiBlack)
	spanColor   = color.New(color.FgCyan)
)

// writeTokens prints one token per line as index, span and value, with
// the columns aligned by display width.
func writeTokens(w io.Writer, name string, d *engine.Document, header bool) {
	if header {
		headerColor.Fprintf(w, "==> %s <==\n", name)
	}
	toks := d.Tokens()
	iw := len(strconv.Itoa(len(toks)))
	spans := make([]string, len(toks))
	sw := 0
	for i, t := range toks {
		spans[i] = fmt.Sprintf("[%d:%d)", t.Start(), t.End())
		sw = max(sw, runewidth.StringWidth(spans[i]))
	}
	for i, t := range toks {
		indexColor.Fprint(w, runewidth.FillLeft(strconv.Itoa(i), iw))
		fmt.Fprint(w, "  ")
		spanColor.Fprint(w, runewidth.FillRight(spans[i], sw))
		fmt.Fprintf(w, "  %s\n", t.Value())
	}
}

// writeTokensXML prints the document as a <tokens> element with one <t>
// element per token.
func writeTokensXML(w io.Writer, name string, d *engine.Document) {
	fmt.Fprintf(w, "<tokens src=\"%s\" root=\"%s\">\n", markup.Escape(name), d.RootType())
	for i, t := range d.Tokens() {
		fmt.Fprintf(w, "  <t i=\"%d\" start=\"%d\" end=\"%d\">%s</t>\n", i, t.Start(), t.End(), markup.Escape(t.Value()))
	}
	fmt.Fprintln(w, "</tokens>")
}
