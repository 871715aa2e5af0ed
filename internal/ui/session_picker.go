package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devlg/devlg/internal/errors"
)

// SessionInfo contains information about a stored session for display
// in the picker.
type SessionInfo struct {
	Name string
	User string
	Host string
	Port int
	Tags []string
}

// sessionItem implements list.Item for the Bubbles list component.
type sessionItem struct {
	session SessionInfo
}

func (i sessionItem) Title() string {
	return i.session.Name
}

func (i sessionItem) Description() string {
	parts := []string{
		fmt.Sprintf("%s@%s:%d", i.session.User, i.session.Host, i.session.Port),
	}
	if len(i.session.Tags) > 0 {
		parts = append(parts, "["+strings.Join(i.session.Tags, ", ")+"]")
	}
	return strings.Join(parts, " | ")
}

func (i sessionItem) FilterValue() string {
	// Allow searching by name, host, and tags
	values := []string{i.session.Name, i.session.Host}
	values = append(values, i.session.Tags...)
	return strings.Join(values, " ")
}

// SessionPickerModel is a Bubble Tea model for selecting a session.
type SessionPickerModel struct {
	list     list.Model
	sessions []SessionInfo
	selected *SessionInfo
	quitting bool
	width    int
	height   int
}

// sessionPickerKeyMap defines key bindings for the session picker.
type sessionPickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var sessionPickerKeys = sessionPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "connect"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewSessionPickerModel creates a new session picker model.
func NewSessionPickerModel(sessions []SessionInfo) SessionPickerModel {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionItem{session: s}
	}

	delegate := list.NewDefaultDelegate()
	if ColorsEnabled() {
		delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
			Foreground(lipgloss.Color(string(ColorPrimary))).
			BorderForeground(lipgloss.Color(string(ColorSecondary)))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
			Foreground(lipgloss.Color(string(ColorMuted)))
	}

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select a session"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color(string(ColorPrimary))).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorMuted)))

	return SessionPickerModel{
		list:     l,
		sessions: sessions,
		width:    80,
		height:   15,
	}
}

// Init implements tea.Model.
func (m SessionPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SessionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, sessionPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(sessionItem); ok {
				m.selected = &item.session
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, sessionPickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m SessionPickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the selected session, or nil if cancelled.
func (m SessionPickerModel) Selected() *SessionInfo {
	return m.selected
}

// PickSession displays an interactive session picker and returns the
// selected session. Returns nil if the user cancels (ESC/q/Ctrl+C).
// A multi-candidate pick needs a terminal to run in; a single candidate
// short-circuits without one.
func PickSession(sessions []SessionInfo) (*SessionInfo, error) {
	return pickSessionFrom(sessions, os.Stdin)
}

func pickSessionFrom(sessions []SessionInfo, stdin *os.File) (*SessionInfo, error) {
	if len(sessions) > 1 && !IsTerminal(stdin) {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("%d sessions match but there is no terminal to pick from", len(sessions)),
			"Pass the exact session name, or narrow the match with --tags.")
	}
	return PickSessionWithOutput(sessions, os.Stdout, stdin)
}

// PickSessionWithOutput displays the session picker using custom I/O.
func PickSessionWithOutput(sessions []SessionInfo, output io.Writer, input io.Reader) (*SessionInfo, error) {
	if len(sessions) == 0 {
		return nil, errors.New(errors.ErrConfig, "No sessions to pick from", "Run 'devlg add' to store one.")
	}

	if len(sessions) == 1 {
		// Only one candidate, no need to pick
		return &sessions[0], nil
	}

	model := NewSessionPickerModel(sessions)

	p := tea.NewProgram(
		model,
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Session picker failed", "Try running again or pass the session name directly.")
	}

	if m, ok := finalModel.(SessionPickerModel); ok {
		return m.Selected(), nil
	}

	return nil, nil
}

// IsTerminal returns true if the file descriptor is a terminal.
func IsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
