package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"      _            __ _", "#818cf8"},
	{"   __| | ___   ___/ _| | _____      _____", "#a78bfa"},
	{"  / _` |/ _ \\ / __| |_| |/ _ \\ \\ /\\ / / __|", "#c084fc"},
	{" | (_| | (_) | (__|  _| | (_) \\ V  V /\\__ \\", "#e879f9"},
	{"  \\__,_|\\___/ \\___|_| |_|\\___/ \\_/\\_/ |___/", "#f472b6"},
}

// PrintBanner writes the ASCII art banner to w, colored when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
