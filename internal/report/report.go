// Package report renders the end-of-run summary as markdown, styled
// for the terminal when one is attached.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/katalorg/katalorg/internal/collection"
)

// Options selects which classification lists appear in the report.
type Options struct {
	ShowMissing bool
	ShowBroken  bool
	ShowOrphans bool
}

// Build formats the run summary for a synchronized collection.
func Build(path string, at time.Time, c *collection.Collection, updated int, opts Options) string {
	var b strings.Builder

	b.WriteString("# Katalorg Report\n\n")
	fmt.Fprintf(&b, "Path:        %s\n", path)
	fmt.Fprintf(&b, "Time:        %s\n", at.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Notes found: %d\n", c.Len())
	fmt.Fprintf(&b, "\nUpdated backlinks in %d files\n", updated)

	if opts.ShowMissing && len(c.NotesWithoutID) > 0 {
		b.WriteString("\n## Notes Without ID\n\n")
		for _, n := range c.NotesWithoutID {
			fmt.Fprintf(&b, "- %s\n", n.Filename())
		}
	}

	if opts.ShowBroken && len(c.BrokenLinks) > 0 {
		b.WriteString("\n## Broken Links\n\n")
		for _, link := range c.BrokenLinks {
			fmt.Fprintf(&b, "- %s\n", link)
		}
	}

	if opts.ShowOrphans && len(c.Orphans) > 0 {
		b.WriteString("\n## Orphans\n\n")
		for _, n := range c.Orphans {
			fmt.Fprintf(&b, "- %s\n", n.LinkTo())
		}
	}

	return b.String()
}

// Render writes the markdown to w, through glamour when w is a
// terminal, verbatim otherwise so output stays grep friendly in
// pipes.
func Render(w io.Writer, markdown string) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dracula"),
			glamour.WithWordWrap(100),
			glamour.WithColorProfile(termenv.ANSI256),
		)
		if err == nil {
			if styled, err := r.Render(markdown); err == nil {
				_, err = io.WriteString(w, styled)
				return err
			}
		}
	}

	_, err := io.WriteString(w, markdown)
	return err
}
