package tui

import (
	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column at which rendered markdown wraps.
const DefaultWordWrap = 100

// NewRenderer returns a function that renders markdown using glamour.
// If the renderer cannot be built the content is returned unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
