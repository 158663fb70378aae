package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"commit-analyzer/internal/provider"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrEditCancelled = errors.New("message editing cancelled")

var (
	pickerTitleStyle = lipgloss.NewStyle().MarginLeft(2)
	rowStyle         = lipgloss.NewStyle().PaddingLeft(4)
	currentRowStyle  = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	hintStyle        = lipgloss.NewStyle().Faint(true)
)

// modelItem is one row of the model picker.
type modelItem struct {
	name   string
	detail string
}

func (i modelItem) FilterValue() string { return i.name }

func describeModel(m provider.Model) string {
	switch {
	case m.Size > 0:
		return fmt.Sprintf("%d bytes", m.Size)
	case m.ModifiedAt != "":
		return "modified " + m.ModifiedAt
	default:
		return ""
	}
}

// modelRowDelegate renders one model per line, with the size or
// modification date dimmed beside the name when the provider reports it.
type modelRowDelegate struct{}

func (modelRowDelegate) Height() int                         { return 1 }
func (modelRowDelegate) Spacing() int                        { return 0 }
func (modelRowDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (modelRowDelegate) Render(w io.Writer, l list.Model, index int, li list.Item) {
	row, ok := li.(modelItem)
	if !ok {
		return
	}

	line := row.name
	if row.detail != "" {
		line += "  " + hintStyle.Render(row.detail)
	}
	if index == l.Index() {
		fmt.Fprint(w, currentRowStyle.Render("> "+line))
		return
	}
	fmt.Fprint(w, rowStyle.Render(line))
}

type modelSelectionModel struct {
	list   list.Model
	choice string
}

func newModelSelection(models []provider.Model, defaultModel string) (modelSelectionModel, int) {
	items := make([]list.Item, 0, len(models))
	preselected := 0
	for i, m := range models {
		items = append(items, modelItem{name: m.Name, detail: describeModel(m)})
		if m.Name == defaultModel {
			preselected = i
		}
	}

	l := list.New(items, modelRowDelegate{}, 80, 20)
	l.Title = "Select Model"
	l.Styles.Title = pickerTitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(len(items) > 20)
	l.Select(preselected)

	return modelSelectionModel{list: l}, preselected
}

func (m modelSelectionModel) Init() tea.Cmd { return nil }

func (m modelSelectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetWidth(size.Width)
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch key.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if row, ok := m.list.SelectedItem().(modelItem); ok {
				m.choice = row.name
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelSelectionModel) View() string {
	if m.choice != "" {
		return ""
	}
	return "\n" + m.list.View()
}

// SelectModel shows a full-screen picker. Quitting without a choice keeps
// the highlighted default.
func SelectModel(models []provider.Model, defaultModel string) (string, error) {
	if len(models) == 0 {
		return defaultModel, nil
	}

	picker, preselected := newModelSelection(models, defaultModel)
	final, err := tea.NewProgram(picker, tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("failed to run UI: %w", err)
	}

	if m, ok := final.(modelSelectionModel); ok && m.choice != "" {
		return m.choice, nil
	}
	return models[preselected].Name, nil
}

// messageEditModel edits a possibly multi-line commit message. Enter inserts
// a newline; ctrl+d accepts.
type messageEditModel struct {
	textArea  textarea.Model
	message   string
	done      bool
	cancelled bool
}

func newMessageEdit(initialMessage string) messageEditModel {
	ta := textarea.New()
	ta.Placeholder = "Enter commit message..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(8)
	ta.SetValue(initialMessage)
	ta.Focus()

	return messageEditModel{textArea: ta}
}

func (m messageEditModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m messageEditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.cancelled = true
			m.message = ""
			return m, tea.Quit

		case "ctrl+d":
			m.done = true
			m.message = strings.TrimSpace(m.textArea.Value())
			return m, tea.Quit
		}
	}

	m.textArea, cmd = m.textArea.Update(msg)
	return m, cmd
}

func (m messageEditModel) View() string {
	return fmt.Sprintf(
		"\nEdit commit message:\n\n%s\n\n%s",
		m.textArea.View(),
		hintStyle.Render("(ctrl+d to confirm, esc to cancel)"),
	) + "\n"
}

func EditCommitMessage(initialMessage string) (string, error) {
	p := tea.NewProgram(newMessageEdit(initialMessage), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("failed to run UI: %w", err)
	}

	if m, ok := finalModel.(messageEditModel); ok {
		if m.done && !m.cancelled {
			return m.message, nil
		}
	}

	return "", ErrEditCancelled
}
