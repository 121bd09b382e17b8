package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m ConfirmModel, keys ...tea.KeyMsg) ConfirmModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ConfirmModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModel(t *testing.T) {
	t.Run("enter defaults to no", func(t *testing.T) {
		m := press(t, NewConfirm("Overwrite?"), tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.IsDone())
		require.False(t, m.IsConfirmed())
	})

	t.Run("move left then enter", func(t *testing.T) {
		m := press(t, NewConfirm("Overwrite?"), tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.IsConfirmed())
	})

	t.Run("quick answers", func(t *testing.T) {
		require.True(t, press(t, NewConfirm("?"), runes("y")).IsConfirmed())
		require.False(t, press(t, NewConfirm("?"), runes("n")).IsConfirmed())
		require.False(t, press(t, NewConfirm("?"), tea.KeyMsg{Type: tea.KeyEsc}).IsConfirmed())
	})

	t.Run("view", func(t *testing.T) {
		m := NewConfirm("Overwrite tree.json?")
		require.Contains(t, m.View(), "Overwrite tree.json?")
		require.Contains(t, m.View(), "> No")

		m = press(t, m, runes("y"))
		require.Empty(t, m.View())
	})
}
