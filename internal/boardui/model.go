// Package boardui provides the Bubble Tea stats and leaderboard browser.
package boardui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/progress"
)

const (
	tabOverview = iota
	tabLeaderboards
	tabSessions
	tabAchievements
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	lockedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	unlockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CCB6E"))
)

// Model implements the Bubble Tea stats browser.
type Model struct {
	svc *progress.Service

	life     model.LifetimeStats
	board    progress.Board
	sessions []model.SessionSummary
	tracker  *progress.Tracker
	errMsg   string

	tabs       []string
	activeTab  int
	boardModes []model.Mode
	boardIndex int
	boardTable table.Model
	sessTable  table.Model

	width  int
	height int
}

// NewModel constructs a stats browser model.
func NewModel(svc *progress.Service) *Model {
	m := &Model{
		svc:  svc,
		tabs: []string{"Overview", "Leaderboards", "Sessions", "Achievements"},
	}
	for _, mode := range model.Modes() {
		if progress.Competitive(mode) {
			m.boardModes = append(m.boardModes, mode)
		}
	}
	m.initTables()
	m.refresh()
	return m
}

func (m *Model) initTables() {
	m.boardTable = table.New(table.WithColumns([]table.Column{
		{Title: "#", Width: 3},
		{Title: "Initials", Width: 8},
		{Title: "Score", Width: 8},
		{Title: "Streak", Width: 6},
		{Title: "Date", Width: 10},
	}))
	m.sessTable = table.New(table.WithColumns([]table.Column{
		{Title: "Mode", Width: 18},
		{Title: "Score", Width: 8},
		{Title: "Combos", Width: 6},
		{Title: "Acc", Width: 6},
		{Title: "Streak", Width: 6},
		{Title: "When", Width: 16},
	}))
}

func (m *Model) refresh() {
	ctx := context.Background()
	m.errMsg = ""

	life, err := m.svc.Lifetime(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load stats: %v", err)
		return
	}
	m.life = life

	board, err := m.svc.LoadBoard(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load leaderboard: %v", err)
		return
	}
	m.board = board

	sessions, err := m.svc.Sessions(ctx, 0)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load sessions: %v", err)
		return
	}
	m.sessions = sessions

	tracker, err := m.svc.LoadTracker(ctx)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load achievements: %v", err)
		return
	}
	m.tracker = tracker

	m.renderRows()
}

func (m *Model) renderRows() {
	mode := m.boardModes[m.boardIndex]
	var boardRows []table.Row
	for i, e := range m.board[mode] {
		boardRows = append(boardRows, table.Row{
			fmt.Sprintf("%d", i+1),
			e.Initials,
			fmt.Sprintf("%d", e.Score),
			fmt.Sprintf("%d", e.BestStreak),
			e.Date.Format("2006-01-02"),
		})
	}
	m.boardTable.SetRows(boardRows)

	var sessRows []table.Row
	for _, s := range m.sessions {
		sessRows = append(sessRows, table.Row{
			string(s.Mode),
			fmt.Sprintf("%d", s.TotalScore),
			fmt.Sprintf("%d", s.Successes),
			fmt.Sprintf("%.1f", s.Accuracy),
			fmt.Sprintf("%d", s.BestStreak),
			s.EndedAt.Format("2006-01-02 15:04"),
		})
	}
	m.sessTable.SetRows(sessRows)
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
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "[":
			if m.activeTab == tabLeaderboards {
				m.moveBoard(-1)
			}
			return m, nil
		case "]":
			if m.activeTab == tabLeaderboards {
				m.moveBoard(1)
			}
			return m, nil
		default:
			var cmd tea.Cmd
			switch m.activeTab {
			case tabLeaderboards:
				m.boardTable, cmd = m.boardTable.Update(msg)
			case tabSessions:
				m.sessTable, cmd = m.sessTable.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabLeaderboards {
		m.boardTable.Focus()
	} else {
		m.boardTable.Blur()
	}
	if m.activeTab == tabSessions {
		m.sessTable.Focus()
	} else {
		m.sessTable.Blur()
	}
}

func (m *Model) moveBoard(delta int) {
	m.boardIndex = (m.boardIndex + delta + len(m.boardModes)) % len(m.boardModes)
	m.renderRows()
}

func (m *Model) updateLayout() {
	height := m.height - 6
	if height < 3 {
		height = 3
	}
	m.boardTable.SetHeight(height)
	m.sessTable.SetHeight(height)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	nav := m.renderNav()
	var body string
	switch m.activeTab {
	case tabOverview:
		body = m.renderOverview()
	case tabLeaderboards:
		body = m.renderLeaderboard()
	case tabSessions:
		body = m.sessTable.View()
	case tabAchievements:
		body = m.renderAchievements()
	}
	footer := headerStyle.Render("←/→ tabs · [ ] mode · q quit")
	return strings.Join([]string{nav, body, footer}, "\n")
}

func (m *Model) renderNav() string {
	parts := make([]string, len(m.tabs))
	for i, title := range m.tabs {
		if i == m.activeTab {
			parts[i] = activeNavStyle.Render(title)
		} else {
			parts[i] = inactiveNavStyle.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderOverview() string {
	cards := []string{
		m.card("Sessions", fmt.Sprintf("%d", m.life.Sessions)),
		m.card("Playtime", formatDuration(m.life.PlaytimeMs)),
		m.card("Combos", fmt.Sprintf("%d", m.life.Successes)),
		m.card("Errors", fmt.Sprintf("%d", m.life.Errors)),
		m.card("Best score", fmt.Sprintf("%d", m.life.BestScore)),
		m.card("Best streak", fmt.Sprintf("%d", m.life.BestStreak)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) card(title, value string) string {
	inner := cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(inner)
}

func (m *Model) renderLeaderboard() string {
	mode := m.boardModes[m.boardIndex]
	header := headerStyle.Render(fmt.Sprintf("Leaderboard · %s", mode))
	if len(m.board[mode]) == 0 {
		return header + "\n" + headerStyle.Render("No entries yet.")
	}
	return header + "\n" + m.boardTable.View()
}

func (m *Model) renderAchievements() string {
	var lines []string
	for _, a := range progress.AllAchievements {
		st := m.tracker.States()[a.ID]
		switch {
		case st.Unlocked:
			when := ""
			if st.UnlockedAt != nil {
				when = " · " + st.UnlockedAt.Format("2006-01-02")
			}
			lines = append(lines, unlockedStyle.Render(fmt.Sprintf("✓ %s - %s%s", a.Name, a.Description, when)))
		case a.MaxProgress > 0:
			lines = append(lines, lockedStyle.Render(fmt.Sprintf("  %s - %s (%d/%d)", a.Name, a.Description, st.Progress, a.MaxProgress)))
		default:
			lines = append(lines, lockedStyle.Render(fmt.Sprintf("  %s - %s", a.Name, a.Description)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, min)
	}
	if min > 0 {
		return fmt.Sprintf("%dm %ds", min, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
