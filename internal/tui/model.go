// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/session"
	statsPkg "github.com/verte-zerg/speedtype/internal/stats"
)

// Store is the persistence used by the typing screen.
type Store interface {
	session.Sink
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error)
	GetWeakChars(ctx context.Context, window int, user, lang string) ([]model.CharAggregate, error)
}

type tickMsg struct {
	id uint64
}

// Model implements the Bubble Tea typing UI. It is also the session's
// scheduler: new timers become tea.Tick commands.
type Model struct {
	config model.Config
	store  Store
	source *generator.Source
	sess   *session.Session
	bar    progress.Model

	pending []tea.Cmd

	width  int
	height int

	input  string
	notice string

	last    model.Result
	hasLast bool
	history []model.Result
	allTime statsPkg.Summary
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle       = incorrectStyle.Copy().Strikethrough(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	cardStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#3A3A3A")).
				Padding(0, 2).
				Align(lipgloss.Center)
)

// NewModel constructs a typing TUI model with an idle session.
func NewModel(cfg model.Config, st Store, source *generator.Source) *Model {
	m := &Model{
		config: cfg,
		store:  st,
		source: source,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	if cfg.FocusWeak {
		if !m.refreshWeakSet() {
			logErrln("no stats available for weak-char focus yet; using normal generator")
		}
	}
	opts := []session.Option{
		session.WithScheduler(m),
		session.WithErrorReporter(m.reportError),
		session.WithCompletion(m.completed),
	}
	if st != nil {
		opts = append(opts, session.WithSink(st))
	}
	m.sess = session.New(cfg, source, opts...)
	m.loadFooterStats()
	return m
}

// Schedule implements session.Scheduler.
func (m *Model) Schedule(t *session.Timer) {
	m.pending = append(m.pending, tickCmd(t))
}

func tickCmd(t *session.Timer) tea.Cmd {
	id := t.ID()
	return tea.Tick(t.Interval(), func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(m.contentWidth(), 60)
		return m, nil
	case tickMsg:
		if m.sess.Tick(msg.id) {
			if t := m.sess.Timer(); t != nil && t.ID() == msg.id {
				return m, tickCmd(t)
			}
		}
		return m, m.flush()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.sess.Close()
			return m, tea.Quit
		case tea.KeyEsc:
			m.reset()
		case tea.KeyEnter:
			m.handleEnter()
		case tea.KeyBackspace, tea.KeyDelete:
			m.handleBackspace()
		case tea.KeySpace:
			m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			m.handleRunes(msg.Runes)
		}
		return m, m.flush()
	default:
		return m, nil
	}
}

func (m *Model) flush() tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

func (m *Model) reset() {
	m.sess.Reset()
	m.input = ""
	m.notice = ""
}

func (m *Model) handleEnter() {
	switch m.sess.State() {
	case session.StateIdle:
		m.sess.Start()
	case session.StateRunning:
		m.sess.End()
	case session.StateComplete:
		m.reset()
	}
}

func (m *Model) handleBackspace() {
	if m.sess.State() == session.StateComplete || m.input == "" {
		return
	}
	runes := []rune(m.input)
	m.submit(string(runes[:len(runes)-1]))
}

func (m *Model) handleRunes(runes []rune) {
	for _, r := range runes {
		if m.sess.State() == session.StateComplete {
			return
		}
		m.submit(m.input + string(r))
	}
}

func (m *Model) submit(value string) {
	m.sess.SubmitKeystroke(value)
	m.input = m.sess.Input()
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if res, ok := m.sess.Result(); ok {
		content = m.renderResult(res)
	} else {
		content = m.renderTest()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderTest() string {
	snap := m.sess.Snapshot()
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("WPM", fmt.Sprintf("%d", snap.WPM)),
		card("Accuracy", fmt.Sprintf("%.0f%%", snap.Accuracy)),
		card("Time", metrics.FormatClock(snap.Elapsed)+" / "+metrics.FormatClock(m.sess.Duration())),
	)

	runes := buildStyledRunes(m.sess.Words(), m.sess.Typed(), snap.WordIndex, m.input)
	words := renderStyledRunes(runes)
	if m.width > 0 {
		words = lipgloss.NewStyle().Width(m.contentWidth()).Render(wrapStyledRunes(runes, m.contentWidth()))
	}

	hint := "start typing or press enter · esc: reset · ctrl+c: quit"
	if snap.State == session.StateRunning {
		hint = "enter: end test · esc: reset · ctrl+c: quit"
	}
	parts := []string{cards, m.bar.ViewAs(snap.Progress / 100), "", words, "", footerStyle.Render(hint)}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) renderResult(res model.Result) string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("WPM", fmt.Sprintf("%d", res.WPM)),
		card("Accuracy", fmt.Sprintf("%.1f%%", res.Accuracy)),
		card("Time", metrics.FormatClock(time.Duration(res.DurationSeconds*float64(time.Second)))),
	)
	detail := fmt.Sprintf("%d/%d words · %d correct · %d errors",
		res.WordsCompleted, res.Words, res.CorrectChars, res.IncorrectChars)
	parts := []string{titleStyle.Render("Test complete"), cards, labelStyle.Render(detail), "", footerStyle.Render("enter: new test · ctrl+c: quit")}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func card(label, value string) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func (m *Model) renderFooter() string {
	var segments []string
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %.1f%%", m.last.WPM, m.last.Accuracy))
	}
	if m.allTime.Sessions > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%% · %d tests",
			m.allTime.AvgWPM, m.allTime.AvgAccuracy, m.allTime.Sessions))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	results, err := m.store.ListResults(context.Background(), model.StatsConfig{User: m.config.User, Lang: m.config.Lang})
	if err != nil {
		logErrf("failed to load result stats: %v\n", err)
		return
	}
	m.history = results
	if len(results) > 0 {
		m.last = results[len(results)-1]
		m.hasLast = true
	}
	m.allTime = statsPkg.Summarize(m.history)
}

func (m *Model) completed(res model.Result) {
	m.last = res
	m.hasLast = true
	m.history = append(m.history, res)
	m.allTime = statsPkg.Summarize(m.history)
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) reportError(err error) {
	m.notice = err.Error()
}

// refreshWeakSet reloads the weak-character bias. It returns false when no
// history is available yet.
func (m *Model) refreshWeakSet() bool {
	if m.store == nil || m.source == nil {
		return false
	}
	aggs, err := m.store.GetWeakChars(context.Background(), m.config.WeakWindow, m.config.User, m.config.Lang)
	if err != nil {
		m.notice = fmt.Sprintf("failed to load weak chars: %v", err)
		return false
	}
	weak := statsPkg.SelectWeakChars(aggs, m.config.WeakTop)
	m.source.SetWeakChars(weak)
	return len(weak) > 0
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
