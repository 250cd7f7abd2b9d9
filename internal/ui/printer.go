package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Printer writes styled output. Colors are dropped automatically when the
// writer is not a terminal.
type Printer struct {
	out io.Writer
	r   *lipgloss.Renderer

	title   lipgloss.Style
	accent  lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
	bold    lipgloss.Style
	panel   lipgloss.Style
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:     out,
		r:       r,
		title:   r.NewStyle().Bold(true).Foreground(ColorPrimary),
		accent:  r.NewStyle().Foreground(ColorPrimary),
		dim:     r.NewStyle().Foreground(ColorMuted),
		warn:    r.NewStyle().Foreground(ColorWarning),
		err:     r.NewStyle().Foreground(ColorError),
		success: r.NewStyle().Foreground(ColorSuccess),
		bold:    r.NewStyle().Bold(true),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.out }

func (p *Printer) println(s string) {
	fmt.Fprintln(p.out, s)
}

// Blank prints an empty line.
func (p *Printer) Blank() { p.println("") }

// Rule prints a titled horizontal rule.
func (p *Printer) Rule(title string) {
	p.println(p.ruleLine(title, p.title, p.accent))
}

// SuccessRule prints a rule in the success color.
func (p *Printer) SuccessRule(title string) {
	s := p.r.NewStyle().Bold(true).Foreground(ColorSuccess)
	p.println(p.ruleLine(title, s, p.success))
}

func (p *Printer) ruleLine(title string, titleStyle, lineStyle lipgloss.Style) string {
	label := " " + title + " "
	side := (ruleWidth - lipgloss.Width(label)) / 2
	if side < 2 {
		side = 2
	}
	return lineStyle.Render(strings.Repeat("─", side)) +
		titleStyle.Render(label) +
		lineStyle.Render(strings.Repeat("─", side))
}

// Info prints an accented line.
func (p *Printer) Info(msg string) { p.println(p.accent.Render(msg)) }

// Dim prints a muted line.
func (p *Printer) Dim(msg string) { p.println(p.dim.Render(msg)) }

// Plain prints msg unstyled.
func (p *Printer) Plain(msg string) { p.println(msg) }

// Warning prints a warning line.
func (p *Printer) Warning(msg string) { p.println(p.warn.Render(msg)) }

// Failure prints an error line.
func (p *Printer) Failure(msg string) { p.println(p.err.Render(msg)) }

// Bold prints a bold line.
func (p *Printer) Bold(msg string) { p.println(p.bold.Render(msg)) }

// Check prints a success or failure line with an icon.
func (p *Printer) Check(ok bool, msg string) {
	if ok {
		p.println("  " + p.success.Render(IconSuccess) + " " + msg)
		return
	}
	p.println("  " + p.err.Render(IconError) + " " + msg)
}

// Bullet prints an indented bullet with an optional muted note.
func (p *Printer) Bullet(msg, note string) {
	line := "  " + IconBullet + " " + msg
	if note != "" {
		line += " " + p.warn.Render(note)
	}
	p.println(line)
}

// ─── Tables ──────────────────────────────────────────────────────────────────

// Column alignment for Table.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes a table column.
type Column struct {
	Title string
	Align Align
	// Style colors every cell in the column.
	Style Style
}

// Style names a cell color.
type Style int

const (
	StyleNone Style = iota
	StyleAccent
	StyleWarn
	StyleDim
	StyleError
)

// Table prints rows without borders. highlight marks rows rendered in the
// warning color.
func (p *Printer) Table(cols []Column, rows [][]string, highlight func(row int) bool) {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := p.r.NewStyle().PaddingLeft(2)
			if col < len(cols) && cols[col].Align == AlignRight {
				s = s.Align(lipgloss.Right)
			}
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(ColorPrimary)
			}
			if highlight != nil && highlight(row) {
				return s.Bold(true).Foreground(ColorCoral)
			}
			if col < len(cols) {
				return p.cellStyle(s, cols[col].Style)
			}
			return s
		})

	p.println(t.Render())
}

func (p *Printer) cellStyle(s lipgloss.Style, st Style) lipgloss.Style {
	switch st {
	case StyleAccent:
		return s.Foreground(ColorPrimary)
	case StyleWarn:
		return s.Foreground(ColorWarning)
	case StyleDim:
		return s.Foreground(ColorMuted)
	case StyleError:
		return s.Foreground(ColorError)
	}
	return s
}

// ─── Cleanup progress ────────────────────────────────────────────────────────

// Begin opens the cleaning section.
func (p *Printer) Begin() {
	p.Blank()
	p.Rule("Cleaning")
}

// Section prints a boxed heading for one target.
func (p *Printer) Section(title string) {
	p.Blank()
	p.println(p.panel.Render(p.bold.Render(title)))
}

// Step announces a command about to run.
func (p *Printer) Step(msg string) {
	p.println("  " + p.accent.Render(IconArrow) + " " + msg)
}

// DryRun reports an action that would have happened.
func (p *Printer) DryRun(msg string) {
	p.println("  " + p.dim.Render("dry-run: "+msg))
}

// Warn prints an indented warning.
func (p *Printer) Warn(msg string) {
	p.println("  " + p.warn.Render(IconWarning+"  "+msg))
}

// Error prints an indented error.
func (p *Printer) Error(msg string) {
	p.println("  " + p.err.Render(msg))
}

// Done closes a target section.
func (p *Printer) Done() {
	p.println("  " + p.success.Render(IconSuccess+" Done."))
}
