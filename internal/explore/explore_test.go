package explore

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aotfits/aot/internal/schema"
)

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	keyJ     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
)

func update(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m, cmd
}

func TestTableListInCanonicalOrder(t *testing.T) {
	m := New(schema.Default())
	assert.Nil(t, m.Init())
	assert.Equal(t, schema.TimeTable, m.Selected())

	view := m.View()
	assert.Contains(t, view, "> AOT_TIME")
	assert.Contains(t, view, "extends AOT_LOOPS (TYPE=Offload Loop)")

	lines := strings.Split(view, "\n")
	order := schema.Default().CanonicalOrder()
	require.Greater(t, len(lines), len(order)+2)
	for i, id := range order {
		line := lines[i+2]
		assert.Contains(t, line, id.String())
		if i > 0 {
			assert.True(t, strings.HasPrefix(line, "    "+id.String()), line)
		}
	}
}

func TestCursorMovement(t *testing.T) {
	m := New(schema.Default())

	m, _ = update(t, m, keyUp)
	assert.Equal(t, schema.TimeTable, m.Selected(), "cursor stays at the top")

	m, _ = update(t, m, keyDown, keyJ)
	assert.Equal(t, schema.AtmosphericParametersTable, m.Selected())

	for range 30 {
		m, _ = update(t, m, keyDown)
	}
	assert.Equal(t, schema.LoopsOffloadTable, m.Selected(), "cursor stops at the bottom")
}

func TestEnterShowsFields(t *testing.T) {
	m := New(schema.Default())

	m, _ = update(t, m, keyEnter)
	id, showing := m.Showing()
	require.True(t, showing)
	assert.Equal(t, schema.TimeTable, id)
	assert.Equal(t, schema.FieldUID, m.SelectedField())

	m, _ = update(t, m, keyDown)
	assert.Equal(t, "TIMESTAMPS", m.SelectedField())

	view := m.View()
	assert.Contains(t, view, "AOT_TIME")
	assert.Contains(t, view, "TIMESTAMPS")
	assert.Contains(t, view, "[Esc] Back")
}

func TestSecondaryTableShowsParent(t *testing.T) {
	m := New(schema.Default())
	for m.Selected() != schema.LoopsControlTable {
		m, _ = update(t, m, keyDown)
	}

	m, _ = update(t, m, keyEnter)
	assert.Contains(t, m.View(), "extends AOT_LOOPS")
}

func TestParentTableShowsChildren(t *testing.T) {
	m := New(schema.Default())
	for m.Selected() != schema.SourcesTable {
		m, _ = update(t, m, keyDown)
	}

	m, _ = update(t, m, keyEnter)
	assert.Contains(t, m.View(), "extended by AOT_SOURCES_SODIUM_LGS, AOT_SOURCES_RAYLEIGH_LGS")
}

func TestEscReturnsToTableList(t *testing.T) {
	m := New(schema.Default())

	m, _ = update(t, m, keyDown, keyEnter, keyEsc)
	_, showing := m.Showing()
	assert.False(t, showing)
	assert.Equal(t, schema.GeometryTable, m.Selected())
	assert.Empty(t, m.SelectedField())
	assert.Contains(t, m.View(), "> AOT_GEOMETRY")
}

func TestQuit(t *testing.T) {
	for _, msgs := range [][]tea.Msg{{keyQuit}, {keyEnter, keyQuit}} {
		_, cmd := update(t, New(schema.Default()), msgs...)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestWindowResize(t *testing.T) {
	m := New(schema.Default())

	m, cmd := update(t, m, keyEnter, tea.WindowSizeMsg{Width: 200, Height: 50})
	assert.Nil(t, cmd)
	assert.Equal(t, 200, m.width)
	assert.Equal(t, schema.FieldUID, m.SelectedField())
}
