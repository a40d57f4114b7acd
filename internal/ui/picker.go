package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotlite/internal/models"
)

// Model is a single-selection list picker.
type Model struct {
	list    list.Model
	keys    keyMap
	help    help.Model
	width   int
	height  int
	choice  list.Item
	aborted bool
}

// newModel builds a picker over pre-wrapped list items.
func newModel(title string, items []list.Item) *Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)

	return &Model{
		list: l,
		keys: newKeyMap(),
		help: help.New(),
	}
}

func (m *Model) Init() tea.Cmd { return nil }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.choice = m.list.SelectedItem()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker list with contextual help.
func (m *Model) View() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n\n%s", m.list.View(), styles.help.Render(helpView))
}

// Aborted reports whether the user quit without choosing.
func (m *Model) Aborted() bool { return m.aborted }

// runPicker runs a model to completion and returns the final state.
func runPicker(m *Model) (*Model, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}

	model, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected picker model %T", final)
	}
	return model, nil
}

// PickResult lets the user choose one search result. Returns nil when
// the picker is aborted.
func PickResult(title string, results []models.SearchResult) (*models.SearchResult, error) {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}

	model, err := runPicker(newModel(title, items))
	if err != nil {
		return nil, err
	}
	if model.aborted || model.choice == nil {
		return nil, nil
	}

	item, ok := model.choice.(resultItem)
	if !ok {
		return nil, fmt.Errorf("unexpected selection %T", model.choice)
	}
	return &item.result, nil
}

// PickDevice lets the user choose a playback device. Returns nil when
// the picker is aborted.
func PickDevice(devices []models.Device) (*models.Device, error) {
	items := make([]list.Item, len(devices))
	for i, d := range devices {
		items[i] = deviceItem{device: d}
	}

	model, err := runPicker(newModel("Playback Devices", items))
	if err != nil {
		return nil, err
	}
	if model.aborted || model.choice == nil {
		return nil, nil
	}

	item, ok := model.choice.(deviceItem)
	if !ok {
		return nil, fmt.Errorf("unexpected selection %T", model.choice)
	}
	return &item.device, nil
}
