package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dshills/tagtext/internal/engine"
	"github.com/dshills/tagtext/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch file",
		Short: "Follow a file and report how edits move its annotations",
		Long: `Watch keeps a document for file and segments it into sentences. Each
time the file is saved the new revision is diffed against the document, the
differences are applied as character edits, and every token change is
printed followed by the sentence annotations as they now stand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce, _ := cmd.Flags().GetDuration("debounce")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd.OutOrStdout(), args[0], debounce)
		},
	}
	cmd.Flags().Duration("debounce", watcher.DefaultDebounce, "quiet period before a change is processed")
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer, path string, debounce time.Duration) error {
	text, err := readInput(path, nil)
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
	if err := writeSentences(out, d); err != nil {
		return err
	}

	cancel := d.OnChange(func(c engine.Change) {
		writeChange(out, c)
	})
	defer cancel()

	w, err := watcher.New(path, watcher.WithDebounce(debounce))
	if err != nil {
		return err
	}
	defer w.Close()
	a.logger.Info("watching %s", w.Path())

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			a.logger.Warn("watch %s: %v", path, err)
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Op == watcher.OpRemove {
				a.logger.Warn("%s was removed; waiting for it to return", path)
				continue
			}
			text, err := readInput(path, nil)
			if err != nil {
				a.logger.Warn("reading %s: %v", path, err)
				continue
			}
			n, err := applyDiff(d, text)
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			headerColor.Fprintf(out, "--- revision %d (%d edits)\n", d.Revision(), n)
			if err := writeSentences(out, d); err != nil {
				return err
			}
		}
	}
}

// applyDiff turns the difference between the document text and text into
// character edits and applies them front to back. Adjacent deletions and
// insertions become one replacement. It returns the number of edits.
func applyDiff(d *engine.Document, text string) (int, error) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(d.Text(), text, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var (
		offset  int
		removed int
		added   strings.Builder
		edits   int
	)
	flush := func() error {
		if removed == 0 && added.Len() == 0 {
			return nil
		}
		c, err := d.ReplaceChars(offset, removed, added.String())
		if err != nil {
			return fmt.Errorf("applying edit at %d: %w", offset, err)
		}
		edits++
		// Normalization may change the inserted length.
		offset += len(c.Cause.Inserted)
		removed = 0
		added.Reset()
		return nil
	}

	for _, df := range diffs {
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			if err := flush(); err != nil {
				return edits, err
			}
			offset += len(df.Text)
		case diffmatchpatch.DiffDelete:
			removed += len(df.Text)
		case diffmatchpatch.DiffInsert:
			added.WriteString(df.Text)
		}
	}
	return edits, flush()
}

var (
	removedColor = color.New(color.FgRed)
	addedColor   = color.New(color.FgGreen)
)

// writeChange prints a token change as its index, the removed values and
// the inserted values.
func writeChange(w io.Writer, c engine.Change) {
	fmt.Fprintf(w, "@%d", c.Index)
	for _, t := range c.Removed {
		removedColor.Fprintf(w, " -%s", t.Value())
	}
	for _, t := range c.Inserted {
		addedColor.Fprintf(w, " +%s", t.Value())
	}
	fmt.Fprintf(w, "  (%s)\n", c.Cause)
}
