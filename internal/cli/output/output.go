// Package output decides how CLI results are written: styled text for a
// terminal, markdown when piped, or an explicit json/csv mode.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/leapstack-labs/gapview/internal/render"
)

// OutputMode is the configured output setting.
type OutputMode string //nolint:revive

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeCSV      OutputMode = "csv"
)

// Mode converts a config value into an OutputMode. Unknown values are auto.
func Mode(s string) OutputMode {
	switch OutputMode(s) {
	case ModeText, ModeMarkdown, ModeJSON, ModeCSV:
		return OutputMode(s)
	case "md":
		return ModeMarkdown
	default:
		return ModeAuto
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Renderer writes command results in the resolved mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
}

// NewRenderer creates a Renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, IsTerminal(out), mode)
}

// NewRendererWithTTY creates a Renderer with an explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	return &Renderer{out: out, errOut: errOut, mode: mode, isTTY: isTTY}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}

// Out returns the result writer.
func (r *Renderer) Out() io.Writer { return r.out }

// Err returns the diagnostics writer.
func (r *Renderer) Err() io.Writer { return r.errOut }

// EffectiveMode resolves auto: text on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto && r.mode != "" {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Format is the table format for the effective mode.
func (r *Renderer) Format() render.Format {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		return render.FormatMarkdown
	case ModeJSON:
		return render.FormatJSON
	case ModeCSV:
		return render.FormatCSV
	default:
		return render.FormatText
	}
}

func (r *Renderer) styled() bool {
	return r.isTTY && r.EffectiveMode() == ModeText
}

// Header writes a title line.
func (r *Renderer) Header(title string) {
	switch {
	case r.EffectiveMode() == ModeMarkdown:
		_, _ = fmt.Fprintf(r.out, "## %s\n\n", title)
	case r.styled():
		_, _ = fmt.Fprintln(r.out, titleStyle.Render(title))
	default:
		_, _ = fmt.Fprintln(r.out, title)
	}
}

// Println writes a plain line.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Muted writes a de-emphasised line.
func (r *Renderer) Muted(s string) {
	if r.styled() {
		s = mutedStyle.Render(s)
	}
	_, _ = fmt.Fprintln(r.out, s)
}

// Success writes a confirmation line.
func (r *Renderer) Success(s string) {
	if r.styled() {
		s = successStyle.Render(s)
	}
	_, _ = fmt.Fprintln(r.out, s)
}

// Warning writes to the diagnostics writer.
func (r *Renderer) Warning(s string) {
	if r.isTTY {
		s = warnStyle.Render(s)
	}
	_, _ = fmt.Fprintln(r.errOut, "Warning: "+s)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes t in the effective format.
func (r *Renderer) Table(t *render.Table) error {
	return t.Render(r.out, r.Format())
}
