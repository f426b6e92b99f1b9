// Package explore is an interactive terminal browser for the AOT table
// schema registry.
package explore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aotfits/aot/internal/output"
	"github.com/aotfits/aot/internal/schema"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mandatoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	borderStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// KeyMap holds the explorer key bindings
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// Keys are the default bindings
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show fields"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type view int

const (
	tablesView view = iota
	fieldsView
)

// field table column widths; DESCRIPTION takes what is left
const (
	nameWidth  = 26
	kindWidth  = 8
	unitWidth  = 24
	flagsWidth = 16
)

// Model is the bubbletea model of the explorer
type Model struct {
	registry *schema.Registry
	tables   []schema.TableID
	cursor   int
	view     view
	fields   table.Model
	width    int
	height   int
}

// New creates an explorer over reg showing the tables in canonical order.
func New(reg *schema.Registry) Model {
	return Model{
		registry: reg,
		tables:   reg.CanonicalOrder(),
		width:    output.DefaultWidth,
		height:   24,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the table under the cursor.
func (m Model) Selected() schema.TableID {
	return m.tables[m.cursor]
}

// Showing returns the table whose fields are displayed, if any.
func (m Model) Showing() (schema.TableID, bool) {
	return m.Selected(), m.view == fieldsView
}

// SelectedField returns the name of the highlighted field in the field view.
func (m Model) SelectedField() string {
	if m.view != fieldsView {
		return ""
	}
	row := m.fields.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// Update handles keyboard input and terminal resizes
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == fieldsView {
			m.fields = m.fieldTable()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, Keys.Quit) {
			return m, tea.Quit
		}

		switch m.view {
		case tablesView:
			switch {
			case key.Matches(msg, Keys.Up):
				if m.cursor > 0 {
					m.cursor--
				}
			case key.Matches(msg, Keys.Down):
				if m.cursor < len(m.tables)-1 {
					m.cursor++
				}
			case key.Matches(msg, Keys.Select):
				m.view = fieldsView
				m.fields = m.fieldTable()
			}
			return m, nil

		case fieldsView:
			if key.Matches(msg, Keys.Back) {
				m.view = tablesView
				return m, nil
			}
			var cmd tea.Cmd
			m.fields, cmd = m.fields.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) fieldTable() table.Model {
	descWidth := max(m.width-nameWidth-kindWidth-unitWidth-flagsWidth-12, 20)
	columns := []table.Column{
		{Title: "FIELD", Width: nameWidth},
		{Title: "KIND", Width: kindWidth},
		{Title: "UNIT", Width: unitWidth},
		{Title: "FLAGS", Width: flagsWidth},
		{Title: "DESCRIPTION", Width: descWidth},
	}

	ts, err := m.registry.Lookup(m.Selected())
	var rows []table.Row
	if err == nil {
		for _, f := range ts.Fields() {
			rows = append(rows, table.Row{
				f.Name,
				f.Kind.String(),
				string(f.Unit),
				f.Flags(),
				output.Truncate(f.Summary(), descWidth),
			})
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 5)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("6")).Bold(true)
	t.SetStyles(s)
	return t
}

// View renders the current screen
func (m Model) View() string {
	if m.view == fieldsView {
		return m.renderFields()
	}
	return m.renderTables()
}

func (m Model) renderTables() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("AOT tables") + mutedStyle.Render(fmt.Sprintf("  (%d, canonical order)", len(m.tables))) + "\n\n")

	for i, id := range m.tables {
		var note string
		if sub, ok := m.registry.Subtype(id); ok {
			note = mutedStyle.Render(fmt.Sprintf("  extends %s (TYPE=%s)", sub.Parent, sub.ParentType))
		} else if m.registry.IsMandatoryTable(id) {
			note = mandatoryStyle.Render("  mandatory")
		}

		if m.cursor == i {
			b.WriteString("  " + selectedStyle.Render("> "+id.String()) + note + "\n")
		} else {
			b.WriteString("    " + id.String() + note + "\n")
		}
	}

	b.WriteString("\n" + mutedStyle.Render("    [↑/↓] Navigate    [Enter] Fields    [q] Quit") + "\n")
	return b.String()
}

func (m Model) renderFields() string {
	var b strings.Builder

	id := m.Selected()
	b.WriteString(titleStyle.Render(id.String()))
	if parent, ok := m.registry.Parent(id); ok {
		b.WriteString(mutedStyle.Render("  extends " + parent.String()))
	}
	if children := m.registry.Children(id); len(children) > 0 {
		names := make([]string, len(children))
		for i, c := range children {
			names[i] = c.String()
		}
		b.WriteString(mutedStyle.Render("  extended by " + strings.Join(names, ", ")))
	}
	b.WriteString("\n")

	b.WriteString(borderStyle.Render(m.fields.View()) + "\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] Scroll    [Esc] Back    [q] Quit") + "\n")
	return b.String()
}
