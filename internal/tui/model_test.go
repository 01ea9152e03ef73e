package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuivia/internal/model"
	"github.com/verte-zerg/tuivia/internal/quiz"
)

type fakeService struct {
	questions []model.Question
	submitErr error
	submitted []int
	catErr    error
}

func (f *fakeService) Categories(context.Context) ([]model.Category, error) {
	if f.catErr != nil {
		return nil, f.catErr
	}
	return []model.Category{{ID: 3, Label: "Science"}}, nil
}

func (f *fakeService) NextQuestion(_ context.Context, previous []int, _ model.CategoryFilter) (*model.Question, error) {
	for _, q := range f.questions {
		seen := false
		for _, id := range previous {
			if id == q.ID {
				seen = true
				break
			}
		}
		if !seen {
			q := q
			return &q, nil
		}
	}
	return nil, nil
}

func (f *fakeService) SubmitScore(_ context.Context, _ string, score int) error {
	f.submitted = append(f.submitted, score)
	return f.submitErr
}

type fakeRecorder struct {
	games  []model.GameRecord
	rounds [][]model.Round
}

func (f *fakeRecorder) InsertGame(_ context.Context, game model.GameRecord, rounds []model.Round) (string, error) {
	f.games = append(f.games, game)
	f.rounds = append(f.rounds, rounds)
	return "id", nil
}

// drain runs cmd and feeds the resulting messages back into m until no
// commands remain.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case eventMsg, categoriesMsg, savedMsg:
			_, more := m.Update(msg)
			queue = append(queue, more)
		}
	}
}

func press(t *testing.T, m *Model, key tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(key)
	drain(t, m, cmd)
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestPlayThroughRecordsGame(t *testing.T) {
	svc := &fakeService{questions: []model.Question{
		{ID: 1, Text: "2+2?", Answer: "four"},
		{ID: 2, Text: "Capital of Australia?", Answer: "Canberra"},
	}}
	rec := &fakeRecorder{}
	m := NewModel(model.Config{Player: "Ada"}, svc, rec)
	drain(t, m, m.fetchCategories())
	if len(m.categories) != 1 {
		t.Fatalf("expected categories to load, got %+v", m.categories)
	}

	press(t, m, enter)
	if m.state.Phase != quiz.PhaseCategorySelect || m.state.Player != "Ada" {
		t.Fatalf("expected category select for Ada, got %s %q", m.state.Phase, m.state.Player)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	press(t, m, enter)
	if m.state.Phase != quiz.PhasePlaying || m.state.Current.ID != 1 {
		t.Fatalf("expected first question, got %s", m.state.Phase)
	}
	if id, _ := m.state.Category.ID(); id != 3 {
		t.Fatalf("expected Science category, got %s", m.state.Category)
	}

	m.input.SetValue("four")
	press(t, m, enter)
	if !m.state.LastCorrect || m.state.Phase != quiz.PhaseAnswerRevealed {
		t.Fatalf("expected correct reveal, got %+v", m.state)
	}
	if !strings.Contains(m.View(), "Correct!") {
		t.Fatalf("expected reveal view, got %s", m.View())
	}

	press(t, m, enter)
	m.input.SetValue("sydney")
	press(t, m, enter)
	press(t, m, enter)

	if m.state.Phase != quiz.PhaseFinished {
		t.Fatalf("expected finished after exhaustion, got %s", m.state.Phase)
	}
	if m.state.Submission != quiz.SubmissionSucceeded {
		t.Fatalf("expected submitted score, got %d", m.state.Submission)
	}
	if len(svc.submitted) != 1 || svc.submitted[0] != 1 {
		t.Fatalf("unexpected submissions: %v", svc.submitted)
	}
	if len(rec.games) != 1 {
		t.Fatalf("expected one recorded game, got %d", len(rec.games))
	}
	game := rec.games[0]
	if game.Category != "Science" || game.Correct != 1 || game.Asked != 2 || !game.Submitted {
		t.Fatalf("unexpected game record: %+v", game)
	}
	if len(rec.rounds[0]) != 2 {
		t.Fatalf("expected two rounds, got %+v", rec.rounds[0])
	}
	if !strings.Contains(m.View(), "you scored 1 out of 2") {
		t.Fatalf("expected final score view, got %s", m.View())
	}

	press(t, m, enter)
	if m.state.Phase != quiz.PhaseIdle || m.input.Value() != "Ada" {
		t.Fatalf("expected restart to idle with prefilled name")
	}
}

func TestSubmitFailureIsRecordedAndShown(t *testing.T) {
	svc := &fakeService{submitErr: errors.New("boom")}
	rec := &fakeRecorder{}
	m := NewModel(model.Config{Player: "Bob"}, svc, rec)

	press(t, m, enter)
	press(t, m, enter)
	if m.state.Phase != quiz.PhaseFinished {
		t.Fatalf("expected immediate finish with no questions, got %s", m.state.Phase)
	}
	if m.state.Submission != quiz.SubmissionFailed {
		t.Fatalf("expected failed submission")
	}
	if !strings.Contains(m.notice, "Your score was not posted") {
		t.Fatalf("expected failure notice, got %q", m.notice)
	}
	if len(rec.games) != 1 || rec.games[0].Submitted || rec.games[0].SubmitError == "" {
		t.Fatalf("unexpected game record: %+v", rec.games)
	}
}

func TestEmptyNameShowsNotice(t *testing.T) {
	m := NewModel(model.Config{}, &fakeService{}, nil)
	press(t, m, enter)
	if m.state.Phase != quiz.PhaseIdle {
		t.Fatalf("expected to stay idle, got %s", m.state.Phase)
	}
	if m.notice == "" {
		t.Fatalf("expected validation notice")
	}
}

func TestCategoryLoadFailureAllowsRetry(t *testing.T) {
	svc := &fakeService{catErr: errors.New("down")}
	m := NewModel(model.Config{Player: "Ada"}, svc, nil)
	drain(t, m, m.fetchCategories())
	press(t, m, enter)
	if !strings.Contains(m.View(), "Press r to retry") {
		t.Fatalf("expected retry hint, got %s", m.View())
	}
	svc.catErr = nil
	press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if len(m.categories) != 1 || m.categoriesErr != nil {
		t.Fatalf("expected categories after retry")
	}
}

// messages runs cmd and returns the messages it produces, expanding batches.
func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, messages(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestRestartWhileSubmittingRecordsFinishedGame(t *testing.T) {
	svc := &fakeService{}
	rec := &fakeRecorder{}
	m := NewModel(model.Config{Player: "Ada"}, svc, rec)
	press(t, m, enter)

	_, cmd := m.Update(enter)
	var submit tea.Cmd
	for _, msg := range messages(cmd) {
		_, submit = m.Update(msg)
	}
	if m.state.Phase != quiz.PhaseFinished || m.state.Submission != quiz.SubmissionPending {
		t.Fatalf("expected pending submission, got %s %d", m.state.Phase, m.state.Submission)
	}

	press(t, m, enter)
	if m.state.Phase != quiz.PhaseIdle {
		t.Fatalf("expected restart to idle, got %s", m.state.Phase)
	}
	if len(rec.games) != 0 {
		t.Fatalf("expected nothing recorded before the submission settles, got %+v", rec.games)
	}

	drain(t, m, submit)
	if len(rec.games) != 1 {
		t.Fatalf("expected one recorded game, got %d", len(rec.games))
	}
	game := rec.games[0]
	if game.Player != "Ada" || game.Category != "ALL" || !game.Submitted || game.SubmitError != "" {
		t.Fatalf("unexpected game record: %+v", game)
	}
	if m.state.Phase != quiz.PhaseIdle || m.state.Submission != quiz.SubmissionNone {
		t.Fatalf("expected new session untouched, got %s %d", m.state.Phase, m.state.Submission)
	}
	if len(m.detached) != 0 {
		t.Fatalf("expected detached game to be cleared")
	}
}
