package tui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"

	"rando/pkg/engine/terminal"
	"rando/pkg/game/renderer"
)

// dynamicGet is used for runtime translation key lookups.
// We use a function variable to avoid go vet's non-constant format string check,
// since we intentionally look up translation keys dynamically from markup.
var dynamicGet = gotext.Get

// TUIRenderer is the terminal renderer. When the output is not a terminal it
// writes plain lines without colors.
type TUIRenderer struct {
	out         io.Writer
	interactive bool
	statusLen   int

	colorHeading     color.Style
	colorPickup      color.Style
	colorProgression color.Style
	colorLocation    color.Style
	colorDenied      color.Style
	colorSuccess     color.Style
	colorSubtle      color.Style

	regexpStringFunctions *regexp.Regexp
}

// New creates a new TUI renderer writing to out
func New(out io.Writer, interactive bool) *TUIRenderer {
	return &TUIRenderer{out: out, interactive: interactive}
}

// Init initializes the TUI renderer (colors, etc.)
func (t *TUIRenderer) Init() {
	t.colorHeading = color.Style{color.FgMagenta, color.OpBold}
	t.colorPickup = color.Style{color.FgMagenta}
	t.colorProgression = color.Style{color.FgGreen, color.OpBold}
	t.colorLocation = color.Style{color.FgBlue}
	t.colorDenied = color.Style{color.FgRed, color.OpBold}
	t.colorSuccess = color.Style{color.FgGreen}
	t.colorSubtle = color.Style{color.FgGray, color.OpBold}

	t.regexpStringFunctions = regexp.MustCompile(`([A-Z]+){([^{}]*)}`)
}

// StyleText applies a style to text
func (t *TUIRenderer) StyleText(text string, style renderer.TextStyle) string {
	if !t.interactive {
		return text
	}
	switch style {
	case renderer.StyleHeading:
		return t.colorHeading.Sprint(text)
	case renderer.StylePickup:
		return t.colorPickup.Sprint(text)
	case renderer.StyleProgression:
		return t.colorProgression.Sprint(text)
	case renderer.StyleLocation:
		return t.colorLocation.Sprint(text)
	case renderer.StyleDenied:
		return t.colorDenied.Sprint(text)
	case renderer.StyleSuccess:
		return t.colorSuccess.Sprint(text)
	case renderer.StyleSubtle:
		return t.colorSubtle.Sprint(text)
	default:
		return text
	}
}

// FormatText formats a message with the markup system:
// GT{KEY} translates, PICKUP, PROG, LOC, DENIED, OK and SUBTLE style their
// operand.
func (t *TUIRenderer) FormatText(msg string, args ...any) string {
	ret := fmt.Sprintf(msg, args...)

	matches := t.regexpStringFunctions.FindAllStringSubmatch(ret, -1)

	for _, match := range matches {
		function := match[1]
		operand := match[2]

		var val string

		switch function {
		case "GT":
			val = dynamicGet(operand)
		case "PICKUP":
			val = t.StyleText(operand, renderer.StylePickup)
		case "PROG":
			val = t.StyleText(operand, renderer.StyleProgression)
		case "LOC":
			val = t.StyleText(operand, renderer.StyleLocation)
		case "DENIED":
			val = t.StyleText(operand, renderer.StyleDenied)
		case "OK":
			val = t.StyleText(operand, renderer.StyleSuccess)
		case "SUBTLE":
			val = t.StyleText(operand, renderer.StyleSubtle)
		default:
			continue
		}

		ret = strings.Replace(ret, match[0], val, 1)
	}

	return ret
}

// ShowMessage displays a message on its own line
func (t *TUIRenderer) ShowMessage(msg string) {
	t.EndStatus()
	fmt.Fprintln(t.out, msg)
}

// ShowStatus redraws the status line in place on a terminal and prints one
// line per status otherwise
func (t *TUIRenderer) ShowStatus(msg string) {
	if !t.interactive {
		fmt.Fprintln(t.out, msg)
		return
	}
	width := t.width() - 1
	if len(msg) > width {
		msg = msg[:width]
	}
	pad := max(t.statusLen-len(msg), 0)
	fmt.Fprint(t.out, "\r"+msg+strings.Repeat(" ", pad))
	t.statusLen = len(msg)
}

// width is the width of the terminal the renderer writes to, or the default
// width when it does not write to a file
func (t *TUIRenderer) width() int {
	if f, ok := t.out.(*os.File); ok {
		return terminal.Width(f)
	}
	return terminal.DefaultWidth
}

// EndStatus moves past the status line, if one is shown
func (t *TUIRenderer) EndStatus() {
	if t.statusLen > 0 {
		fmt.Fprintln(t.out)
		t.statusLen = 0
	}
}
