package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultsModel shows externally supplied results and offers a retake.
type ResultsModel struct {
	wpm      float64
	accuracy float64
	retake   bool

	width  int
	height int
}

// NewResultsModel constructs a results view.
func NewResultsModel(wpm, accuracy float64) *ResultsModel {
	return &ResultsModel{wpm: wpm, accuracy: accuracy}
}

// Retake reports whether the user asked to take the test again.
func (m *ResultsModel) Retake() bool {
	return m.retake
}

// Init implements tea.Model.
func (m *ResultsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "r":
			m.retake = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *ResultsModel) View() string {
	body := renderResults(m.wpm, m.accuracy, "enter/r: retake the test  q: quit")
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}
