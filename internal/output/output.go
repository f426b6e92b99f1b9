// Package output prints styled terminal messages and tables for the aot CLI.
//
// Functions use lipgloss for styling but hide the details from callers.
// Colors follow the configured mode: "auto" colors only when writing to a
// terminal, "always" and "never" force the choice.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color modes accepted by SetColorMode
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultWidth is used when the terminal width cannot be detected.
const DefaultWidth = 80

// Printer writes styled output to one writer.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
	verbose  bool
	color    bool

	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	infoStyle    lipgloss.Style
	stepStyle    lipgloss.Style
	headerStyle  lipgloss.Style
}

// New creates a printer writing to out with the given color mode.
func New(out io.Writer, colorMode string) (*Printer, error) {
	p := &Printer{out: out}
	if err := p.SetColorMode(colorMode); err != nil {
		return nil, err
	}
	return p, nil
}

// SetColorMode switches between auto, always and never.
func (p *Printer) SetColorMode(mode string) error {
	var color bool
	switch mode {
	case ColorAuto, "":
		color = isTerminal(p.out)
	case ColorAlways:
		color = true
	case ColorNever:
		color = false
	default:
		return fmt.Errorf("unsupported color mode '%s' (supported: auto, always, never)", mode)
	}

	r := lipgloss.NewRenderer(p.out)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.color = color
	p.renderer = r
	p.successStyle = r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	p.errorStyle = r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	p.warnStyle = r.NewStyle().Foreground(lipgloss.Color("3"))
	p.infoStyle = r.NewStyle().Foreground(lipgloss.Color("6"))
	p.stepStyle = r.NewStyle().Foreground(lipgloss.Color("240"))
	p.headerStyle = r.NewStyle().Bold(true).Padding(0, 1)
	return nil
}

// Colored reports whether the printer emits color.
func (p *Printer) Colored() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.color
}

// SetVerbose enables or disables Verbose messages.
func (p *Printer) SetVerbose(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verbose = v
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) println(style lipgloss.Style, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, style.Render(msg))
}

// Success prints a completed operation in green.
func (p *Printer) Success(msg string) {
	p.println(p.successStyle, "✓ "+msg)
}

// Error prints a failure in red.
func (p *Printer) Error(msg string) {
	p.println(p.errorStyle, "✗ "+msg)
}

// Warn prints a problem that did not stop the command.
func (p *Printer) Warn(msg string) {
	p.println(p.warnStyle, "! "+msg)
}

// Info prints a status line in cyan.
func (p *Printer) Info(msg string) {
	p.println(p.infoStyle, msg)
}

// Step prints an indented sub-item in gray, e.g. one violation of a report.
func (p *Printer) Step(msg string) {
	p.println(p.stepStyle, "   "+msg)
}

// Verbose prints msg only when verbose mode is on.
func (p *Printer) Verbose(msg string) {
	p.mu.Lock()
	verbose := p.verbose
	p.mu.Unlock()
	if verbose {
		p.println(p.stepStyle, "· "+msg)
	}
}

// Plain prints msg without styling.
func (p *Printer) Plain(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, msg)
}

// Table prints rows under headers with a rounded border. Cells longer than
// maxCell runes are truncated; maxCell <= 0 disables truncation.
func (p *Printer) Table(headers []string, rows [][]string, maxCell int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.stepStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.headerStyle
			}
			return p.renderer.NewStyle().Padding(0, 1)
		})
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = Truncate(cell, maxCell)
		}
		t.Row(cells...)
	}
	fmt.Fprintln(p.out, t.Render())
}

// Width returns the width of the terminal the printer writes to, or
// DefaultWidth when it is not a terminal.
func (p *Printer) Width() int {
	f, ok := p.out.(*os.File)
	if !ok {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Truncate shortens s to limit runes, marking the cut with "...".
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit < 3 {
		return "..."[:limit]
	}
	return string(runes[:limit-3]) + "..."
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var std, _ = New(os.Stdout, ColorAuto)

// Error prints a failure to stdout. See Printer.Error.
func Error(msg string) {
	std.Error(msg)
}
