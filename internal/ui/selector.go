package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is one selectable row in the checklist.
type Choice struct {
	Key   string
	Label string
}

// selectAllLabel is the synthetic last row that selects every choice.
const selectAllLabel = "✓ Select all"

type selectorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k selectorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.Confirm, k.Quit}
}

func (k selectorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Toggle, k.All, k.Confirm, k.Quit},
	}
}

var selectorKeys = selectorKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// SelectorModel is the bubbletea model behind the category checklist.
type SelectorModel struct {
	choices  []Choice
	checked  []bool
	cursor   int
	nudge    bool // confirm pressed with nothing checked
	done     bool
	canceled bool
	help     help.Model
}

// NewSelectorModel creates a checklist over choices, none checked.
func NewSelectorModel(choices []Choice) SelectorModel {
	return SelectorModel{
		choices: choices,
		// One extra slot for the "Select all" row.
		checked: make([]bool, len(choices)+1),
		help:    help.New(),
	}
}

func (m SelectorModel) Init() tea.Cmd {
	return nil
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, selectorKeys.Quit):
			m.canceled = true
			return m, tea.Quit

		case key.Matches(msg, selectorKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, selectorKeys.Down):
			if m.cursor < len(m.checked)-1 {
				m.cursor++
			}

		case key.Matches(msg, selectorKeys.Toggle):
			m.checked[m.cursor] = !m.checked[m.cursor]
			m.nudge = false

		case key.Matches(msg, selectorKeys.All):
			last := len(m.checked) - 1
			m.checked[last] = !m.checked[last]
			m.nudge = false

		case key.Matches(msg, selectorKeys.Confirm):
			if len(m.Selected()) == 0 {
				m.nudge = true
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// Selected returns the checked keys in choice order, or every key when
// "Select all" is checked.
func (m SelectorModel) Selected() []string {
	all := m.checked[len(m.checked)-1]
	var keys []string
	for i, c := range m.choices {
		if all || m.checked[i] {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Canceled reports whether the user quit without confirming.
func (m SelectorModel) Canceled() bool { return m.canceled }

func (m SelectorModel) View() string {
	if m.done || m.canceled {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cursor := lipgloss.NewStyle().Foreground(ColorPrimary)
	muted := lipgloss.NewStyle().Foreground(ColorMuted)
	warn := lipgloss.NewStyle().Foreground(ColorWarning)

	var s strings.Builder
	s.WriteString(title.Render("Select categories to clean"))
	s.WriteString("\n\n")

	for i := range m.checked {
		label := selectAllLabel
		if i < len(m.choices) {
			label = m.choices[i].Label
		}
		box := IconBox
		if m.checked[i] {
			box = IconChecked
		}
		prefix := "  "
		line := fmt.Sprintf("%s %s", box, label)
		if i == m.cursor {
			prefix = cursor.Render(IconCursor) + " "
			line = cursor.Render(line)
		}
		s.WriteString(prefix + line + "\n")
	}

	s.WriteString("\n")
	if m.nudge {
		s.WriteString(warn.Render("No category selected. Use SPACE to mark categories, then ENTER."))
		s.WriteString("\n")
	}
	s.WriteString(muted.Render(m.help.View(selectorKeys)))
	s.WriteString("\n")
	return s.String()
}

// RunSelector shows the checklist and returns the chosen keys. A nil result
// with a nil error means the user canceled.
func RunSelector(choices []Choice, in io.Reader, out io.Writer) ([]string, error) {
	p := tea.NewProgram(NewSelectorModel(choices), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("selector failed: %w", err)
	}
	m, ok := final.(SelectorModel)
	if !ok || m.Canceled() {
		return nil, nil
	}
	return m.Selected(), nil
}
