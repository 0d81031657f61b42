package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the udlcoach banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _   _ ____  _        ____                 _     ", "#34d399"},
		{" | | | |  _ \\| |      / ___|___   __ _  ___| |__  ", "#2dd4bf"},
		{" | | | | | | | |     | |   / _ \\ / _` |/ __| '_ \\ ", "#22d3ee"},
		{" | |_| | |_| | |___  | |__| (_) | (_| | (__| | | |", "#38bdf8"},
		{"  \\___/|____/|_____|  \\____\\___/ \\__,_|\\___|_| |_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  Universal Design for Learning assessment coach").Faint())
	fmt.Fprintln(w)
}
