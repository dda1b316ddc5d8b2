// Package tui provides the Bubble Tea play interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/combodash/internal/input"
	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/progress"
	"github.com/verte-zerg/combodash/internal/session"
)

const (
	tickInterval  = 100 * time.Millisecond
	repeatWindow  = 150 * time.Millisecond
	initialsLimit = 3
	toastLimit    = 3
	padInterval   = 16 * time.Millisecond
)

type tickMsg struct {
	gen int
}

type padMsg struct {
	dir model.Direction
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CCB6E")).Bold(true)
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Underline(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	missStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	bossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	toastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	bigStyle     = lipgloss.NewStyle().Bold(true)
)

// Model implements the Bubble Tea play UI around a session controller.
type Model struct {
	ctrl     *session.Controller
	svc      *progress.Service
	tracker  *progress.Tracker
	bindings input.Bindings
	edge     *input.EdgeFilter
	initials string
	poller   *input.Poller

	width  int
	height int

	// gen invalidates in-flight tick commands after restart or exit so
	// a stale callback cannot touch a superseded session.
	gen      int
	missed   bool
	toasts   []string
	recorded bool

	entering  bool
	entryRank int
	nameInput textinput.Model
	lastLife  model.LifetimeStats
}

// NewModel constructs the play model. The poller may be nil when no
// gamepad backend is available.
func NewModel(ctrl *session.Controller, svc *progress.Service, tracker *progress.Tracker, bindings input.Bindings, initials string, pad input.PadReader, deadzone float64) *Model {
	ti := textinput.New()
	ti.CharLimit = initialsLimit
	ti.Placeholder = "AAA"
	ti.Width = initialsLimit + 1

	m := &Model{
		ctrl:      ctrl,
		svc:       svc,
		tracker:   tracker,
		bindings:  bindings,
		edge:      input.NewEdgeFilter(repeatWindow),
		initials:  initials,
		nameInput: ti,
	}
	if pad != nil {
		m.poller = input.NewPoller(pad, deadzone, padInterval)
		go m.poller.Run()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.poller != nil {
		cmds = append(cmds, m.waitForPad())
	}
	return tea.Batch(cmds...)
}

func (m *Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) waitForPad() tea.Cmd {
	events := m.poller.Events()
	return func() tea.Msg {
		dir, ok := <-events
		if !ok {
			return nil
		}
		return padMsg{dir: dir}
	}
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
		m.applyOutcomes(m.ctrl.Tick(time.Now()))
		if m.ctrl.Phase() == session.PhaseGameOver {
			return m, nil
		}
		return m, m.tickCmd()
	case padMsg:
		m.feedDirection(msg.dir, time.Now())
		return m, m.waitForPad()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, m.quit()
	}

	if m.ctrl.Phase() == session.PhaseGameOver {
		if m.entering {
			return m.handleEntryKey(msg)
		}
		switch msg.String() {
		case "r":
			// The daily challenge allows one attempt per day, so a
			// finished daily run cannot be restarted in place.
			if m.ctrl.Mode() == model.ModeDailyChallenge {
				return m, nil
			}
			m.restart()
			return m, m.tickCmd()
		case "q", "esc":
			return m, m.quit()
		}
		return m, nil
	}

	if dir, ok := m.bindings.Resolve(msg.String()); ok {
		m.feedDirection(dir, time.Now())
	}
	return m, nil
}

func (m *Model) handleEntryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.submitEntry()
		return m, nil
	case tea.KeyEsc:
		m.entering = false
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) quit() tea.Cmd {
	// Bump the generation so any in-flight tick lands dead, and stop
	// the pad poller before the program tears down.
	m.gen++
	if m.poller != nil {
		m.poller.Stop()
	}
	return tea.Quit
}

func (m *Model) restart() {
	m.gen++
	m.missed = false
	m.toasts = nil
	m.recorded = false
	m.entering = false
	m.entryRank = 0
	m.edge.Reset()
	m.nameInput.SetValue("")
	m.ctrl.Restart()
}

func (m *Model) feedDirection(dir model.Direction, now time.Time) {
	if !m.edge.Pass(dir, now) {
		return
	}
	m.applyOutcomes(m.ctrl.HandleDirection(dir))
}

func (m *Model) applyOutcomes(outs []session.Outcome) {
	for _, out := range outs {
		switch out.Kind {
		case session.OutcomeStep:
			m.missed = false
		case session.OutcomeMiss:
			m.missed = true
		case session.OutcomeComboDone:
			m.missed = false
			m.checkLive(out)
		case session.OutcomeGameOver:
			m.finishSession()
		}
	}
}

func (m *Model) checkLive(out session.Outcome) {
	now := time.Now()
	m.tracker.CheckLive(progress.LiveEvent{
		Mode:         m.ctrl.Mode(),
		ElapsedMs:    out.ElapsedMs,
		Streak:       m.ctrl.Streak(),
		SessionScore: m.ctrl.Score(),
		Boss:         out.Boss,
	}, now)
	toasts := m.tracker.PendingToasts()
	m.pushToasts(toasts)
	if len(toasts) > 0 {
		if err := m.svc.SaveTracker(context.Background(), m.tracker); err != nil {
			logErrf("failed to save achievements: %v\n", err)
		}
	}
}

func (m *Model) finishSession() {
	if m.recorded {
		return
	}
	m.recorded = true

	ctx := context.Background()
	now := time.Now()
	sum := m.ctrl.Summary()

	life, err := m.svc.RecordSession(ctx, sum, m.ctrl.Attempts())
	if err != nil {
		logErrf("failed to save session: %v\n", err)
		life = m.lastLife
	}
	m.lastLife = life

	m.tracker.CheckSessionEnd(sum, life, now)
	m.pushToasts(m.tracker.PendingToasts())
	if err := m.svc.SaveTracker(ctx, m.tracker); err != nil {
		logErrf("failed to save achievements: %v\n", err)
	}

	if !m.ctrl.Competitive() {
		return
	}
	board, err := m.svc.LoadBoard(ctx)
	if err != nil {
		logErrf("failed to load leaderboard: %v\n", err)
		return
	}
	if progress.Qualifies(board, m.ctrl.Mode(), sum.TotalScore) {
		m.entryRank = progress.RankFor(board, m.ctrl.Mode(), sum.TotalScore)
		m.entering = true
		m.nameInput.SetValue(m.initials)
		m.nameInput.Focus()
	}
}

func (m *Model) submitEntry() {
	initials := strings.ToUpper(strings.TrimSpace(m.nameInput.Value()))
	if initials == "" {
		initials = "AAA"
	}
	for len(initials) < initialsLimit {
		initials += "A"
	}
	sum := m.ctrl.Summary()
	err := m.svc.AddEntry(context.Background(), m.ctrl.Mode(), model.LeaderboardEntry{
		Initials:   initials,
		Score:      sum.TotalScore,
		BestStreak: sum.BestStreak,
		Date:       time.Now(),
	})
	if err != nil {
		logErrf("failed to save leaderboard entry: %v\n", err)
	}
	m.entering = false
}

func (m *Model) pushToasts(unlocked []progress.Achievement) {
	for _, a := range unlocked {
		m.toasts = append(m.toasts, fmt.Sprintf("Unlocked: %s - %s", a.Name, a.Description))
	}
	if len(m.toasts) > toastLimit {
		m.toasts = m.toasts[len(m.toasts)-toastLimit:]
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.ctrl.Phase() {
	case session.PhaseCountdown:
		content = m.viewCountdown()
	case session.PhasePlaying:
		content = m.viewPlaying()
	default:
		content = m.viewGameOver()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + footer
}

func (m *Model) viewCountdown() string {
	secs := m.ctrl.CountdownLeftMs()/1000 + 1
	lines := []string{
		labelStyle.Render(string(m.ctrl.Mode())),
		bigStyle.Render(fmt.Sprintf("Ready... %d", secs)),
	}
	return strings.Join(lines, "\n\n")
}

func (m *Model) viewPlaying() string {
	seq := m.ctrl.Current()
	name := seq.Name
	if m.ctrl.Boss() {
		name = bossStyle.Render("BOSS  ") + nameStyle.Render(name)
	} else {
		name = nameStyle.Render(name)
	}

	var arrows string
	if m.ctrl.HideSequence() {
		marks := make([]string, len(seq.Sequence))
		for i := range marks {
			marks[i] = pendingStyle.Render("?")
		}
		arrows = strings.Join(marks, " ")
	} else {
		arrows = m.renderArrows(seq.Sequence)
	}

	lines := []string{
		name,
		labelStyle.Render(fmt.Sprintf("%s · %s", seq.Category, seq.Tier)),
		"",
		arrows,
	}
	if len(m.toasts) > 0 {
		lines = append(lines, "", toastStyle.Render(m.toasts[len(m.toasts)-1]))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderArrows(seq []model.Direction) string {
	pos := m.ctrl.MatchPosition()
	parts := make([]string, len(seq))
	for i, dir := range seq {
		// Arrow glyphs are ambiguous-width; pad so the row stays
		// aligned regardless of how the terminal renders them.
		glyph := runewidth.FillRight(dir.Glyph(), 2)
		switch {
		case i < pos:
			parts[i] = doneStyle.Render(glyph)
		case i == pos && m.missed:
			parts[i] = missStyle.Render(glyph)
		case i == pos:
			parts[i] = currentStyle.Render(glyph)
		default:
			parts[i] = pendingStyle.Render(glyph)
		}
	}
	return strings.Join(parts, "")
}

func (m *Model) viewGameOver() string {
	sum := m.ctrl.Summary()
	lines := []string{
		bigStyle.Render("Session over"),
		labelStyle.Render(fmt.Sprintf("%s · %s", sum.Mode, m.ctrl.EndReason())),
		"",
		fmt.Sprintf("Score %d   Best streak %d", sum.TotalScore, sum.BestStreak),
		fmt.Sprintf("Combos %d   Accuracy %.1f%%", sum.Successes, sum.Accuracy),
	}
	if sum.Successes > 0 {
		lines = append(lines, fmt.Sprintf("Avg combo time %dms", sum.AverageSuccessTimeMs))
	}
	for _, toast := range m.toasts {
		lines = append(lines, toastStyle.Render(toast))
	}
	if m.entering {
		lines = append(lines,
			"",
			nameStyle.Render(fmt.Sprintf("Leaderboard rank #%d! Enter initials:", m.entryRank)),
			m.nameInput.View(),
		)
	} else if m.ctrl.Mode() == model.ModeDailyChallenge {
		lines = append(lines, "", labelStyle.Render("come back tomorrow · q quit"))
	} else {
		lines = append(lines, "", labelStyle.Render("r restart · q quit"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{
		fmt.Sprintf("Score %d", m.ctrl.Score()),
		fmt.Sprintf("Streak %d ×%d", m.ctrl.Streak(), m.ctrl.Multiplier()),
	}
	if m.ctrl.Lives() > 0 {
		segments = append(segments, fmt.Sprintf("Lives %d", m.ctrl.Lives()))
	}
	switch m.ctrl.TimerKind() {
	case session.TimerGlobal, session.TimerWindow:
		segments = append(segments, fmt.Sprintf("Time %.1fs", float64(m.ctrl.TimerLeftMs())/1000))
	case session.TimerElapsed:
		segments = append(segments, fmt.Sprintf("Time %.1fs", float64(m.ctrl.ElapsedMs())/1000))
	}
	idx, total := m.ctrl.Progress()
	segments = append(segments, fmt.Sprintf("Combo %d/%d", idx+1, total))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
