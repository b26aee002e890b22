package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsInteractive reports whether w is a terminal.
func IsInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
// When styled is false, or the renderer cannot be created, the markdown
// is returned unchanged so piped output stays plain.
func NewRenderer(styled bool) func(string) (string, error) {
	plain := func(markdown string) (string, error) { return markdown, nil }
	if !styled {
		return plain
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return plain
	}
	return r.Render
}
