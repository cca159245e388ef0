// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/fasttype/internal/model"
	"github.com/verte-zerg/fasttype/internal/session"
	"github.com/verte-zerg/fasttype/internal/stats"
	"github.com/verte-zerg/fasttype/internal/wordsupply"
)

// ResultStore persists finished tests and feeds the footer.
type ResultStore interface {
	InsertResult(ctx context.Context, res model.ResultStats, words []model.WordStats) (int64, error)
	ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.ResultAggregate, error)
}

type tickMsg struct {
	gen int
}

type batchMsg struct {
	gen   int
	words []string
}

// Model implements the Bubble Tea typing UI. It is the only place the session
// state is mutated.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   session.Options
	supply wordsupply.Supply
	store  ResultStore
	source string
	log    zerolog.Logger

	state     session.State
	gen       int
	startedAt time.Time
	initCmd   tea.Cmd

	width  int
	height int

	lastWPM float64
	lastAcc float64
	hasLast bool
	bestWPM float64
}

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	timerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#73C991"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	extraStyle       = incorrectStyle.Strikethrough(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	resultValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	resultBoxStyle   = lipgloss.NewStyle().
				Padding(1, 3).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs a typing TUI model. Fetches run under ctx and are
// canceled when the model quits. store may be nil.
func NewModel(ctx context.Context, opts session.Options, supply wordsupply.Supply, store ResultStore, source string, log zerolog.Logger) *Model {
	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:    ctx,
		cancel: cancel,
		supply: supply,
		store:  store,
		source: source,
		log:    log,
	}
	state, fx := session.New(opts)
	m.opts = state.Options
	m.initCmd = m.apply(state, fx)
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.initCmd
}

// State returns the current session state.
func (m *Model) State() session.State {
	return m.state
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		cmd := m.apply(m.state.Tick())
		if m.state.Phase == session.Running {
			cmd = tea.Batch(cmd, m.tick())
		}
		return m, cmd
	case batchMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.apply(m.state.Load(msg.words))
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m.quit()
	}
	if m.state.Phase == session.Finished {
		switch msg.String() {
		case "enter", "r":
			return m.restart()
		case "q":
			return m.quit()
		}
		return nil
	}
	switch msg.Type {
	case tea.KeyBackspace:
		return m.apply(m.state.Backspace())
	case tea.KeySpace:
		return m.apply(m.state.Type(' '))
	case tea.KeyRunes:
		cmds := make([]tea.Cmd, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			cmds = append(cmds, m.apply(m.state.Type(r)))
		}
		return tea.Batch(cmds...)
	default:
		return nil
	}
}

// apply installs the next state and turns its effects into commands.
func (m *Model) apply(next session.State, fx session.Effects) tea.Cmd {
	m.state = next
	var cmds []tea.Cmd
	if fx.StartTimer {
		m.startedAt = time.Now()
		cmds = append(cmds, m.tick())
	}
	if fx.FetchBatch {
		cmds = append(cmds, m.fetch())
	}
	if fx.Finished {
		m.finish()
	}
	return tea.Batch(cmds...)
}

func (m *Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) fetch() tea.Cmd {
	ctx, gen, count, supply := m.ctx, m.gen, m.opts.BatchSize, m.supply
	return func() tea.Msg {
		return batchMsg{gen: gen, words: supply.Fetch(ctx, count)}
	}
}

func (m *Model) restart() tea.Cmd {
	m.gen++
	m.startedAt = time.Time{}
	return m.apply(m.state.Restart())
}

func (m *Model) quit() tea.Cmd {
	m.cancel()
	return tea.Quit
}

func (m *Model) finish() {
	score := m.state.Score
	endedAt := time.Now()
	startedAt := m.startedAt
	if startedAt.IsZero() {
		startedAt = endedAt.Add(-time.Duration(score.DurationSec) * time.Second)
	}
	m.log.Info().
		Int("correct", score.Correct).
		Int("attempted", score.Attempted).
		Float64("wpm", score.WPM).
		Float64("accuracy", score.Accuracy).
		Msg("test finished")

	m.lastWPM = score.WPM
	m.lastAcc = score.Accuracy
	m.hasLast = true
	if score.WPM > m.bestWPM {
		m.bestWPM = score.WPM
	}

	if m.store == nil {
		return
	}
	res := model.ResultStats{
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		DurationSec:    score.DurationSec,
		Source:         m.source,
		CorrectWords:   score.Correct,
		AttemptedWords: score.Attempted,
		WPM:            score.WPM,
		Accuracy:       score.Accuracy,
	}
	words := make([]model.WordStats, 0, len(m.state.History))
	for i, w := range m.state.History {
		words = append(words, model.WordStats{
			Position: i,
			Target:   w.Target,
			Typed:    w.Text,
			Correct:  w.Correct,
		})
	}
	// The test context may already be canceled by a quit racing the last tick.
	if _, err := m.store.InsertResult(context.WithoutCancel(m.ctx), res, words); err != nil {
		m.log.Error().Err(err).Msg("failed to save result")
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	results, err := m.store.ListResults(m.ctx, model.HistoryConfig{})
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to load previous results")
		return
	}
	if len(results) == 0 {
		return
	}
	last := results[len(results)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
	m.bestWPM = stats.Summarize(results).BestWPM
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.state.Phase == session.Finished {
		body = renderResults(m.state.Score.WPM, m.state.Score.Accuracy, "enter/r: retake  q: quit")
	} else {
		body = m.renderTest()
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	bodyBlock := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return bodyBlock + "\n" + footerLine
}

func (m *Model) renderTest() string {
	lines := []string{
		titleStyle.Render("fasttype"),
		"",
		timerStyle.Render(fmt.Sprintf("Time left: %d seconds", m.state.SecondsRemaining)),
		"",
	}
	words := m.state.Words()
	switch {
	case len(words) > 0:
		if m.state.Phase == session.Idle {
			lines = append(lines, hintStyle.Render("Start typing the words below:"), "")
		}
		styled := buildStyledRunes(words)
		contentWidth := m.contentWidth()
		content := wrapStyledRunes(styled, contentWidth)
		if contentWidth > 0 {
			content = lipgloss.NewStyle().Width(contentWidth).Render(content)
		}
		lines = append(lines, content)
	case m.state.Fetching:
		lines = append(lines, hintStyle.Render("Loading words..."))
	default:
		lines = append(lines, hintStyle.Render("No words available. Type a word and press space to retry."))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Words %d", len(m.state.History))}
	if m.source != "" {
		segments = append(segments, "Source "+m.source)
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc))
		segments = append(segments, fmt.Sprintf("Best %.1f WPM", m.bestWPM))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func renderResults(wpm, accuracy float64, hint string) string {
	lines := []string{
		titleStyle.Render("Typing Test Results"),
		"",
		"Speed: " + resultValueStyle.Render(fmt.Sprintf("%.2f WPM", wpm)),
		"Accuracy: " + resultValueStyle.Render(fmt.Sprintf("%.2f%%", accuracy)),
	}
	box := resultBoxStyle.Render(strings.Join(lines, "\n"))
	return box + "\n" + hintStyle.Render(hint)
}
