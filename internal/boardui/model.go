// Package boardui provides the Bubble Tea leaderboard browser.
package boardui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuivia/internal/leaderboard"
	"github.com/verte-zerg/tuivia/internal/model"
)

var (
	activePageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactivePageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

const emptyMessage = "There are no scores to display."

type eventMsg struct {
	event leaderboard.Event
}

// Model implements the Bubble Tea leaderboard UI.
type Model struct {
	svc       leaderboard.Service
	startPage int

	state   leaderboard.State
	table   table.Model
	spinner spinner.Model
	notice  string

	width  int
	height int
}

// NewModel constructs a leaderboard UI that opens on startPage.
func NewModel(svc leaderboard.Service, startPage int) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle

	if startPage < 1 {
		startPage = 1
	}
	m := &Model{
		svc:       svc,
		startPage: startPage,
		state:     leaderboard.New(),
		spinner:   sp,
	}
	m.table = table.New(
		table.WithColumns(columns()),
		table.WithHeight(model.PageSize+1),
		table.WithFocused(true),
	)
	m.table.SetStyles(tableStyles())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.apply(leaderboard.LoadRequested{Page: m.startPage}))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case eventMsg:
		return m, m.apply(msg.event)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "left", "h":
		return m, m.selectPage(m.state.PrevPage())
	case "right", "l":
		return m, m.selectPage(m.state.NextPage())
	case "home", "g":
		return m, m.selectPage(1)
	case "end", "G":
		return m, m.selectPage(m.state.MaxPage())
	case "r":
		return m, m.apply(leaderboard.LoadRequested{Page: m.state.Page})
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m, m.selectPage(int(key[0] - '0'))
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) selectPage(n int) tea.Cmd {
	if n < 1 || (n == m.state.Page && m.state.Loaded) {
		return nil
	}
	return m.apply(leaderboard.PageSelected{Page: n})
}

func (m *Model) apply(ev leaderboard.Event) tea.Cmd {
	next, effects, err := m.state.Apply(ev)
	if err != nil {
		m.notice = err.Error()
		return nil
	}
	if _, ok := ev.(leaderboard.PageLoaded); ok {
		m.notice = ""
	}
	m.state = next
	m.table.SetRows(buildRows(next))
	m.table.GotoTop()

	var cmds []tea.Cmd
	for _, eff := range effects {
		if n, ok := eff.(leaderboard.Notification); ok {
			log.Printf("notification: %s", n)
			m.notice = n.Message
			continue
		}
		svc := m.svc
		cmds = append(cmds, func() tea.Msg {
			ev := leaderboard.Execute(context.Background(), svc, eff)
			if ev == nil {
				return nil
			}
			return eventMsg{event: ev}
		})
	}
	if last := next.MaxPage(); next.Loaded && last > 0 && next.Page > last {
		log.Printf("page %d past the end, showing page %d", next.Page, last)
		cmds = append(cmds, m.apply(leaderboard.PageSelected{Page: last}))
	}
	return tea.Batch(cmds...)
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: 24},
		{Title: "Score", Width: 6},
	}
}

func buildRows(s leaderboard.State) []table.Row {
	rows := make([]table.Row, 0, len(s.Entries))
	for i, e := range s.Entries {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", s.Rank(i)),
			e.Player,
			fmt.Sprintf("%d", e.Score),
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// View implements tea.Model.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Leaderboard"),
		"",
		m.renderBody(),
	)
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return content + "\n\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBody() string {
	if !m.state.Loaded {
		if m.state.Loading() {
			return m.spinner.View() + " Loading scores"
		}
		return mutedStyle.Render("Press r to load scores.")
	}
	if m.state.Empty() {
		return mutedStyle.Render(emptyMessage)
	}
	var body string
	if len(m.state.Entries) == 0 {
		body = mutedStyle.Render(fmt.Sprintf("Page %d has no entries.", m.state.Page))
	} else {
		body = m.table.View()
	}
	parts := []string{body, "", m.renderPages()}
	if m.state.Loading() {
		parts = append(parts, m.spinner.View()+" Loading scores")
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderPages() string {
	var pages []string
	for ind := range m.state.PageIndicators() {
		label := fmt.Sprintf("%d", ind.Number)
		if ind.IsCurrent {
			pages = append(pages, activePageStyle.Render(label))
		} else {
			pages = append(pages, inactivePageStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, pages...)
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.notice != "" {
		segments = append(segments, noticeStyle.Render(m.notice))
	}
	if m.state.Loaded && !m.state.Empty() {
		segments = append(segments, footerStyle.Render(fmt.Sprintf("%d scores · page %d of %d", m.state.Total, m.state.Page, m.state.MaxPage())))
	}
	segments = append(segments, footerStyle.Render("←/→ page · 1-9 jump · r reload · q quit"))
	return strings.Join(segments, "  ")
}
