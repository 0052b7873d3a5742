package renderer

// TextStyle represents different text styling options
type TextStyle int

const (
	StyleNormal TextStyle = iota
	StyleHeading
	StylePickup
	StyleProgression
	StyleLocation
	StyleDenied
	StyleSuccess
	StyleSubtle
)

// Renderer defines the interface for output backends
type Renderer interface {
	// Init initializes the renderer (colors, etc.)
	Init()

	// StyleText applies a style to text and returns the styled string
	StyleText(text string, style TextStyle) string

	// FormatText formats a message with the renderer's markup system
	FormatText(msg string, args ...any) string

	// ShowMessage displays a message on its own line
	ShowMessage(msg string)

	// ShowStatus replaces the current status line
	ShowStatus(msg string)

	// EndStatus ends the status line so that later output starts on a new line
	EndStatus()
}

// Current holds the active renderer instance
var Current Renderer

// SetRenderer sets the active renderer
func SetRenderer(r Renderer) {
	Current = r
}

// Init initializes the current renderer
func Init() {
	if Current != nil {
		Current.Init()
	}
}

// StyleText applies a style to text
func StyleText(text string, style TextStyle) string {
	if Current != nil {
		return Current.StyleText(text, style)
	}
	return text
}

// FormatText formats a message with markup
func FormatText(msg string, args ...any) string {
	if Current != nil {
		return Current.FormatText(msg, args...)
	}
	return msg
}

// ShowMessage formats and displays a message
func ShowMessage(msg string, args ...any) {
	if Current != nil {
		Current.ShowMessage(Current.FormatText(msg, args...))
	}
}

// ShowStatus replaces the status line
func ShowStatus(msg string) {
	if Current != nil {
		Current.ShowStatus(msg)
	}
}

// EndStatus ends the status line
func EndStatus() {
	if Current != nil {
		Current.EndStatus()
	}
}
