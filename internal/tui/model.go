// Package tui provides the Bubble Tea trivia play interface.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuivia/internal/model"
	"github.com/verte-zerg/tuivia/internal/quiz"
)

// Service is the trivia service as seen by the play UI.
type Service interface {
	quiz.Service
	Categories(ctx context.Context) ([]model.Category, error)
}

// Recorder persists finished games. *store.Store satisfies it.
type Recorder interface {
	InsertGame(ctx context.Context, game model.GameRecord, rounds []model.Round) (string, error)
}

type categoriesMsg struct {
	categories []model.Category
	err        error
}

type eventMsg struct {
	event quiz.Event
}

type savedMsg struct {
	err error
}

type detachedGame struct {
	game   model.GameRecord
	rounds []model.Round
}

// Model implements the Bubble Tea play UI.
type Model struct {
	config   model.Config
	svc      Service
	recorder Recorder

	state quiz.State

	categories    []model.Category
	categoriesErr error
	loadingCats   bool
	cursor        int

	input   textinput.Model
	spinner spinner.Model
	notice  string

	startedAt time.Time
	// detached holds games abandoned by a restart while their score was
	// still being submitted, keyed by submission sequence number.
	detached map[uint64]detachedGame

	width  int
	height int
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a play UI. recorder may be nil.
func NewModel(cfg model.Config, svc Service, recorder Recorder) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle

	m := &Model{
		config:   cfg,
		svc:      svc,
		recorder: recorder,
		state:    quiz.New(),
		spinner:  sp,
	}
	m.resetInput("Your name", cfg.Player)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.fetchCategories())
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
	case categoriesMsg:
		m.loadingCats = false
		m.categoriesErr = msg.err
		if msg.err != nil {
			log.Printf("load categories: %v", msg.err)
			return m, nil
		}
		m.categories = msg.categories
		return m, nil
	case eventMsg:
		if ack, ok := msg.event.(quiz.ScoreSubmitted); ok {
			if d, found := m.detached[ack.Seq]; found {
				delete(m.detached, ack.Seq)
				return m, m.recordDetached(d, ack)
			}
		}
		return m, m.apply(msg.event)
	case savedMsg:
		if msg.err != nil {
			log.Printf("save game: %v", msg.err)
			m.notice = "Unable to save game history"
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if msg.Type == tea.KeyCtrlR {
		return m, m.restart()
	}
	switch m.state.Phase {
	case quiz.PhaseIdle:
		if msg.Type == tea.KeyEnter {
			return m, m.submitName()
		}
		return m.updateInput(msg)
	case quiz.PhaseCategorySelect:
		return m, m.handleCategoryKey(msg)
	case quiz.PhasePlaying:
		if msg.Type == tea.KeyEnter {
			guess := m.input.Value()
			m.input.SetValue("")
			return m, m.apply(quiz.GuessSubmitted{Text: guess})
		}
		return m.updateInput(msg)
	case quiz.PhaseAnswerRevealed:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			if m.state.Loading() {
				return m, nil
			}
			return m, m.apply(quiz.Advanced{})
		}
		if msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
	case quiz.PhaseFinished:
		switch msg.String() {
		case "enter", "r":
			return m, m.restart()
		case "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) handleCategoryKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.categories) {
			m.cursor++
		}
	case "r":
		if m.categoriesErr != nil && !m.loadingCats {
			return m.fetchCategories()
		}
	case "q", "esc":
		return tea.Quit
	case "enter":
		if m.state.Loading() {
			return nil
		}
		m.startedAt = time.Now()
		return m.apply(quiz.CategorySelected{Filter: m.filterAt(m.cursor)})
	}
	return nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitName() tea.Cmd {
	cmd := m.apply(quiz.NameSubmitted{Name: m.input.Value()})
	if m.state.Phase == quiz.PhaseCategorySelect {
		m.resetInput("Your answer", "")
	}
	return cmd
}

func (m *Model) restart() tea.Cmd {
	if m.state.Submission == quiz.SubmissionPending {
		if m.detached == nil {
			m.detached = map[uint64]detachedGame{}
		}
		m.detached[m.state.SubmitSeq] = detachedGame{
			game:   m.gameRecord(time.Now()),
			rounds: append([]model.Round(nil), m.state.Rounds...),
		}
	}
	m.notice = ""
	m.cursor = 0
	m.startedAt = time.Time{}
	cmd := m.apply(quiz.Restarted{})
	m.resetInput("Your name", m.config.Player)
	return cmd
}

// apply runs ev through the state machine and turns the resulting effects
// into commands.
func (m *Model) apply(ev quiz.Event) tea.Cmd {
	prev := m.state
	next, effects, err := m.state.Apply(ev)
	if err != nil {
		m.notice = err.Error()
		return nil
	}
	m.state = next
	if _, ok := ev.(quiz.GuessSubmitted); !ok {
		if next.Phase != prev.Phase || next.Submission != prev.Submission {
			m.notice = ""
		}
	}

	var cmds []tea.Cmd
	for _, eff := range effects {
		if n, ok := eff.(quiz.Notification); ok {
			log.Printf("notification: %s", n)
			m.notice = n.Message
			continue
		}
		cmds = append(cmds, m.runEffect(eff))
	}
	if _, ok := ev.(quiz.ScoreSubmitted); ok && prev.Submission == quiz.SubmissionPending && next.Submission != quiz.SubmissionPending {
		cmds = append(cmds, m.recordGame())
	}
	return tea.Batch(cmds...)
}

func (m *Model) runEffect(eff quiz.Effect) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ev := quiz.Execute(context.Background(), svc, eff)
		if ev == nil {
			return nil
		}
		return eventMsg{event: ev}
	}
}

func (m *Model) fetchCategories() tea.Cmd {
	m.loadingCats = true
	m.categoriesErr = nil
	svc := m.svc
	return func() tea.Msg {
		cats, err := svc.Categories(context.Background())
		return categoriesMsg{categories: cats, err: err}
	}
}

func (m *Model) recordGame() tea.Cmd {
	return m.save(m.gameRecord(time.Now()), append([]model.Round(nil), m.state.Rounds...))
}

// recordDetached saves the game left behind by a restart once its
// submission outcome is known.
func (m *Model) recordDetached(d detachedGame, ack quiz.ScoreSubmitted) tea.Cmd {
	d.game.Submitted = ack.Err == nil
	if ack.Err != nil {
		d.game.SubmitError = ack.Err.Error()
	}
	return m.save(d.game, d.rounds)
}

func (m *Model) save(game model.GameRecord, rounds []model.Round) tea.Cmd {
	if m.recorder == nil {
		return nil
	}
	recorder := m.recorder
	return func() tea.Msg {
		_, err := recorder.InsertGame(context.Background(), game, rounds)
		return savedMsg{err: err}
	}
}

func (m *Model) gameRecord(endedAt time.Time) model.GameRecord {
	startedAt := m.startedAt
	if startedAt.IsZero() {
		startedAt = endedAt
	}
	return model.GameRecord{
		Player:      m.state.Player,
		Category:    m.categoryLabel(m.state.Category),
		StartedAt:   startedAt,
		EndedAt:     endedAt,
		Correct:     m.state.Correct,
		Asked:       len(m.state.Rounds),
		Submitted:   m.state.Submission == quiz.SubmissionSucceeded,
		SubmitError: m.state.SubmitError,
	}
}

// filterAt maps a cursor position to a filter. Position 0 is every category.
func (m *Model) filterAt(i int) model.CategoryFilter {
	if i <= 0 || i > len(m.categories) {
		return model.AllCategories()
	}
	return model.SpecificCategory(m.categories[i-1].ID)
}

func (m *Model) categoryLabel(f model.CategoryFilter) string {
	id, ok := f.ID()
	if !ok {
		return f.String()
	}
	for _, c := range m.categories {
		if c.ID == id {
			return c.Label
		}
	}
	return f.String()
}

func (m *Model) resetInput(placeholder, value string) {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "> "
	in.CharLimit = 64
	in.SetValue(value)
	in.Focus()
	m.input = in
}

// View implements tea.Model.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("tuivia"),
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

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderBody() string {
	switch m.state.Phase {
	case quiz.PhaseIdle:
		return textStyle.Render("Enter your name") + "\n\n" + m.input.View()
	case quiz.PhaseCategorySelect:
		return m.renderCategories()
	case quiz.PhasePlaying:
		return m.renderQuestion() + "\n\n" + m.input.View()
	case quiz.PhaseAnswerRevealed:
		return m.renderReveal()
	case quiz.PhaseFinished:
		return m.renderFinished()
	}
	return ""
}

func (m *Model) renderCategories() string {
	var b strings.Builder
	b.WriteString(textStyle.Render(fmt.Sprintf("Hi %s, pick a category", m.state.Player)))
	b.WriteString("\n\n")
	labels := []string{"All categories"}
	for _, c := range m.categories {
		labels = append(labels, c.Label)
	}
	for i, label := range labels {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + label))
		} else {
			b.WriteString(mutedStyle.Render("  " + label))
		}
		b.WriteByte('\n')
	}
	switch {
	case m.state.Loading():
		b.WriteString("\n" + m.spinner.View() + " Loading question")
	case m.loadingCats:
		b.WriteString("\n" + m.spinner.View() + " Loading categories")
	case m.categoriesErr != nil:
		b.WriteString("\n" + noticeStyle.Render("Unable to load categories. Press r to retry."))
	}
	return b.String()
}

func (m *Model) renderQuestion() string {
	q := m.state.Current
	if q == nil {
		return ""
	}
	header := mutedStyle.Render(fmt.Sprintf("Question %d of %d", len(m.state.Asked)+1, model.QuestionsPerSession))
	lines := wrapText(q.Text, m.contentWidth())
	return header + "\n\n" + textStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderReveal() string {
	var b strings.Builder
	b.WriteString(m.renderQuestion())
	b.WriteString("\n\n")
	if m.state.LastCorrect {
		b.WriteString(correctStyle.Render("Correct!"))
	} else {
		b.WriteString(wrongStyle.Render("Incorrect."))
	}
	if q := m.state.Current; q != nil {
		answer := strings.Join(wrapText("The answer was: "+q.Answer, m.contentWidth()), "\n")
		b.WriteString("\n" + textStyle.Render(answer))
	}
	if m.state.Loading() {
		b.WriteString("\n\n" + m.spinner.View() + " Loading question")
	}
	return b.String()
}

func (m *Model) renderFinished() string {
	var b strings.Builder
	b.WriteString(textStyle.Render(fmt.Sprintf("%s, you scored %d out of %d", m.state.Player, m.state.Correct, len(m.state.Rounds))))
	b.WriteString("\n\n")
	for i, r := range m.state.Rounds {
		mark := correctStyle.Render("+")
		if !r.Correct {
			mark = wrongStyle.Render("x")
		}
		question := strings.Join(wrapText(r.Question, max(m.contentWidth()-4, 1)), "\n   ")
		b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, mark, question))
		b.WriteString(mutedStyle.Render(fmt.Sprintf("   %q, answer: %s", r.Guess, r.Answer)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	switch m.state.Submission {
	case quiz.SubmissionPending:
		b.WriteString(m.spinner.View() + " Submitting score")
	case quiz.SubmissionSucceeded:
		b.WriteString(correctStyle.Render("Score submitted to the leaderboard."))
	case quiz.SubmissionFailed:
		b.WriteString(wrongStyle.Render("Score was not submitted."))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.notice != "" {
		segments = append(segments, noticeStyle.Render(m.notice))
	}
	var help string
	switch m.state.Phase {
	case quiz.PhaseIdle:
		help = "enter continue · esc quit"
	case quiz.PhaseCategorySelect:
		help = "↑/↓ choose · enter start · esc quit"
	case quiz.PhasePlaying:
		help = "enter answer · ctrl+r restart · esc quit"
	case quiz.PhaseAnswerRevealed:
		help = "enter next · ctrl+r restart · esc quit"
	case quiz.PhaseFinished:
		help = "enter play again · q quit"
	}
	segments = append(segments, footerStyle.Render(help))
	return strings.Join(segments, "  ")
}
