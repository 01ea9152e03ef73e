package quiz

import (
	"context"

	"github.com/verte-zerg/tuivia/internal/model"
)

// Service is the part of the trivia service a session needs.
type Service interface {
	NextQuestion(ctx context.Context, previous []int, category model.CategoryFilter) (*model.Question, error)
	SubmitScore(ctx context.Context, player string, score int) error
}

// Execute performs a single effect and returns the event that reports its
// outcome. Notifications are not executed and yield nil.
func Execute(ctx context.Context, svc Service, eff Effect) Event {
	switch e := eff.(type) {
	case FetchQuestion:
		q, err := svc.NextQuestion(ctx, e.Previous, e.Category)
		if err != nil {
			return QuestionFailed{Request: e, Err: err}
		}
		return QuestionLoaded{Request: e, Question: q}
	case SubmitScore:
		return ScoreSubmitted{Seq: e.Seq, Err: svc.SubmitScore(ctx, e.Player, e.Score)}
	default:
		return nil
	}
}

// Session drives a State synchronously, running every effect to completion
// before returning.
type Session struct {
	svc   Service
	state State

	// OnNotify receives non-fatal notifications. May be nil.
	OnNotify func(Notification)
}

// NewSession returns an idle session backed by svc.
func NewSession(svc Service) *Session {
	return &Session{svc: svc, state: New()}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	return s.state.clone()
}

// Dispatch applies ev and then every effect it causes. Only validation errors
// are returned; service failures are reported through OnNotify.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	next, queue, err := s.state.Apply(ev)
	if err != nil {
		return err
	}
	s.state = next
	for len(queue) > 0 {
		eff := queue[0]
		queue = queue[1:]
		if n, ok := eff.(Notification); ok {
			if s.OnNotify != nil {
				s.OnNotify(n)
			}
			continue
		}
		result := Execute(ctx, s.svc, eff)
		if result == nil {
			continue
		}
		next, more, err := s.state.Apply(result)
		if err != nil {
			return err
		}
		s.state = next
		queue = append(queue, more...)
	}
	return nil
}

// SubmitPlayerName commits the player name and moves to category choice.
func (s *Session) SubmitPlayerName(name string) error {
	return s.Dispatch(context.Background(), NameSubmitted{Name: name})
}

// SelectCategory picks the category and fetches the first question.
func (s *Session) SelectCategory(ctx context.Context, filter model.CategoryFilter) error {
	return s.Dispatch(ctx, CategorySelected{Filter: filter})
}

// SubmitGuess evaluates text and reports whether it was correct.
func (s *Session) SubmitGuess(text string) (bool, error) {
	if err := s.Dispatch(context.Background(), GuessSubmitted{Text: text}); err != nil {
		return false, err
	}
	return s.state.LastCorrect, nil
}

// Advance moves past a revealed answer, fetching the next question or
// finishing the session.
func (s *Session) Advance(ctx context.Context) error {
	return s.Dispatch(ctx, Advanced{})
}

// Restart discards the session and returns to name entry.
func (s *Session) Restart() {
	// Restarted is valid in every phase.
	_ = s.Dispatch(context.Background(), Restarted{})
}
