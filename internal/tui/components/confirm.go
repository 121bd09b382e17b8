package components

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jakoblorz/go-treegen/internal/tui"
)

// ConfirmModel is a yes/no prompt. The cursor starts on No so that an
// accidental enter keeps existing files.
type ConfirmModel struct {
	message   string
	yes       bool
	confirmed bool
	done      bool
}

// NewConfirm creates a new confirmation prompt
func NewConfirm(message string) ConfirmModel {
	return ConfirmModel{message: message}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "h":
		m.yes = true
	case "right", "l":
		m.yes = false
	case "tab":
		m.yes = !m.yes
	case "enter", " ":
		return m.finish(m.yes)
	case "y", "Y":
		return m.finish(true)
	case "n", "N", "ctrl+c", "esc", "q":
		return m.finish(false)
	}
	return m, nil
}

func (m ConfirmModel) finish(confirmed bool) (tea.Model, tea.Cmd) {
	m.confirmed = confirmed
	m.done = true
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}

	yes, no := "  Yes", "  No"
	if m.yes {
		yes = tui.SelectedStyle.Render("> Yes")
	} else {
		no = tui.SelectedStyle.Render("> No")
	}

	return fmt.Sprintf("%s\n\n%s  %s\n%s",
		tui.HeaderStyle.Render(m.message),
		yes, no,
		tui.HelpStyle.Render("←→ choose • enter confirm • y/n answer"))
}

// IsConfirmed returns whether the user answered yes
func (m ConfirmModel) IsConfirmed() bool {
	return m.confirmed
}

// IsDone returns whether the user answered at all
func (m ConfirmModel) IsDone() bool {
	return m.done
}

// Confirm runs the prompt on the given terminal streams
func Confirm(message string, in io.Reader, out io.Writer) (bool, error) {
	final, err := tea.NewProgram(NewConfirm(message), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return false, fmt.Errorf("failed to run prompt: %w", err)
	}
	return final.(ConfirmModel).IsConfirmed(), nil
}
