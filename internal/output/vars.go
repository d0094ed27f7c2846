package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Core styles
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))            // dark green
	success2Style = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))             // green
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))             // red
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // yellow
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))            // blue
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // cyan
	debugStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))           // light grey
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")) // purple
)

var StyleSymbols = map[string]string{
	"pass":    "✓",
	"fail":    "✗",
	"warning": "!",
	"pending": "◉",
	"info":    "ℹ",
	"arrow":   "→",
	"bullet":  "•",
	"dot":     "·",
	"hline":   "━",
}

// Printer writes styled lines to w. PrintError uses a Printer on stdout.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w}
}

var std = NewPrinter(os.Stdout)

func (p *Printer) Println(text string) { fmt.Fprintln(p.w, text) }
func (p *Printer) Blank()              { fmt.Fprintln(p.w) }
func (p *Printer) Success(text string) { p.Println(successStyle.Render(text)) }
func (p *Printer) Error(text string)   { p.Println(errorStyle.Render(text)) }
func (p *Printer) Warning(text string) { p.Println(warningStyle.Render(text)) }
func (p *Printer) Pending(text string) { p.Println(pendingStyle.Render(text)) }
func (p *Printer) Info(text string)    { p.Println(infoStyle.Render(text)) }
func (p *Printer) Debug(text string)   { p.Println(debugStyle.Render(text)) }
func (p *Printer) Header(text string)  { p.Println(headerStyle.Render(text)) }

func PrintError(text string) {
	std.Error(text)
}
