// Package terminal answers the questions output code asks about the
// terminal: is there one, and how wide is it.
package terminal

import (
	"os"

	"golang.org/x/term"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Size returns the width and height of the terminal f is attached to.
// Falls back to defaults if the size cannot be determined.
func Size(f *os.File) (width, height int) {
	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return width, height
}

// Width returns the width of the terminal f is attached to
func Width(f *os.File) int {
	width, _ := Size(f)
	return width
}

// Interactive reports whether f is a terminal that can redraw a line in
// place. A dumb terminal cannot.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) && os.Getenv("TERM") != "dumb"
}
