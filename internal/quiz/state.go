// Package quiz implements the play-through state machine: name entry,
// category choice, question delivery, answer evaluation, scoring and
// leaderboard submission.
//
// State is a plain value. Apply returns the next state together with the
// side effects the caller must perform; results of those effects come back
// as events. Nothing in this package blocks or talks to the network.
package quiz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/verte-zerg/tuivia/internal/errors"
	"github.com/verte-zerg/tuivia/internal/model"
)

// Phase is the position of a session in its lifecycle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseCategorySelect
	PhasePlaying
	PhaseAnswerRevealed
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCategorySelect:
		return "category-select"
	case PhasePlaying:
		return "playing"
	case PhaseAnswerRevealed:
		return "answer-revealed"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Submission tracks the leaderboard post made on entry to PhaseFinished.
type Submission uint8

const (
	SubmissionNone Submission = iota
	SubmissionPending
	SubmissionSucceeded
	SubmissionFailed
)

// State is the whole of a session.
type State struct {
	Phase    Phase
	Player   string
	Category model.CategoryFilter
	// Asked holds the ids of questions already answered, in asking order.
	// The current question joins it when the next question is fetched.
	Asked   []int
	Current *model.Question
	Correct int
	Ended   bool

	LastGuess   string
	LastCorrect bool
	Rounds      []model.Round

	Submission  Submission
	SubmitError string

	// Seq is the last issued request sequence number; PendingSeq is the fetch
	// still awaited and SubmitSeq the score submission, or zero.
	Seq        uint64
	PendingSeq uint64
	SubmitSeq  uint64
}

// New returns a fresh idle session.
func New() State {
	return State{Phase: PhaseIdle}
}

// Loading reports whether a question fetch is outstanding.
func (s State) Loading() bool {
	return s.PendingSeq != 0
}

// Apply performs one transition. A validation error leaves s unchanged.
func (s State) Apply(ev Event) (State, []Effect, error) {
	switch ev := ev.(type) {
	case Restarted:
		next := New()
		next.Seq = s.Seq
		return next, nil, nil
	case NameSubmitted:
		return s.submitName(ev.Name)
	case CategorySelected:
		return s.selectCategory(ev.Filter)
	case QuestionLoaded:
		return s.questionLoaded(ev)
	case QuestionFailed:
		return s.questionFailed(ev)
	case GuessSubmitted:
		return s.submitGuess(ev.Text)
	case Advanced:
		return s.advance()
	case ScoreSubmitted:
		return s.scoreSubmitted(ev)
	default:
		return s, nil, errors.Validation("unknown event %T", ev)
	}
}

func (s State) submitName(name string) (State, []Effect, error) {
	if s.Phase != PhaseIdle {
		return s, nil, errors.Validation("submit name: session is %s", s.Phase)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s, nil, errors.Validation("player name must not be empty")
	}
	next := s.clone()
	next.Player = name
	next.Phase = PhaseCategorySelect
	return next, nil, nil
}

func (s State) selectCategory(filter model.CategoryFilter) (State, []Effect, error) {
	if s.Phase != PhaseCategorySelect {
		return s, nil, errors.Validation("select category: session is %s", s.Phase)
	}
	if !filter.IsSet() {
		return s, nil, errors.Validation("category not selected")
	}
	next := s.clone()
	fetch := next.issueFetch([]int{}, filter)
	return next, []Effect{fetch}, nil
}

func (s State) questionLoaded(ev QuestionLoaded) (State, []Effect, error) {
	if !s.awaiting(ev.Request.Seq) {
		return s, nil, nil
	}
	next := s.clone()
	next.PendingSeq = 0
	if ev.Question != nil && slices.Contains(ev.Request.Previous, ev.Question.ID) {
		return next, []Effect{Notification{
			Kind:    errors.KindService,
			Message: fmt.Sprintf("Unable to load question: service repeated question %d. Please try again.", ev.Question.ID),
		}}, nil
	}
	next.Category = ev.Request.Category
	next.Asked = slices.Clone(ev.Request.Previous)
	next.LastGuess = ""
	next.LastCorrect = false
	if ev.Question == nil {
		next.Current = nil
		return next.finish()
	}
	q := *ev.Question
	next.Current = &q
	next.Phase = PhasePlaying
	return next, nil, nil
}

func (s State) questionFailed(ev QuestionFailed) (State, []Effect, error) {
	if !s.awaiting(ev.Request.Seq) {
		return s, nil, nil
	}
	next := s.clone()
	next.PendingSeq = 0
	return next, []Effect{notificationFor("Unable to load question. Please try your request again", ev.Err)}, nil
}

func (s State) submitGuess(text string) (State, []Effect, error) {
	if s.Phase != PhasePlaying || s.Current == nil {
		return s, nil, errors.Validation("submit guess: session is %s", s.Phase)
	}
	correct := Evaluate(text, s.Current.Answer)
	next := s.clone()
	next.LastGuess = text
	next.LastCorrect = correct
	if correct {
		next.Correct++
	}
	next.Rounds = append(next.Rounds, model.Round{
		QuestionID: s.Current.ID,
		Question:   s.Current.Text,
		Answer:     s.Current.Answer,
		Guess:      text,
		Correct:    correct,
	})
	next.Phase = PhaseAnswerRevealed
	return next, nil, nil
}

func (s State) advance() (State, []Effect, error) {
	if s.Phase != PhaseAnswerRevealed || s.Current == nil {
		return s, nil, errors.Validation("advance: session is %s", s.Phase)
	}
	next := s.clone()
	if len(s.Asked)+1 >= model.QuestionsPerSession {
		next.Asked = append(next.Asked, s.Current.ID)
		return next.finish()
	}
	previous := append(slices.Clone(s.Asked), s.Current.ID)
	fetch := next.issueFetch(previous, s.Category)
	return next, []Effect{fetch}, nil
}

func (s State) scoreSubmitted(ev ScoreSubmitted) (State, []Effect, error) {
	if s.Submission != SubmissionPending || ev.Seq != s.SubmitSeq {
		return s, nil, nil
	}
	next := s.clone()
	next.SubmitSeq = 0
	if err := ev.Err; err != nil {
		next.Submission = SubmissionFailed
		next.SubmitError = err.Error()
		return next, []Effect{notificationFor("Something went wrong. Your score was not posted to the leaderboard", err)}, nil
	}
	next.Submission = SubmissionSucceeded
	return next, nil, nil
}

// finish enters PhaseFinished. It is reached once per session, so the score
// is submitted exactly once.
func (s State) finish() (State, []Effect, error) {
	s.Ended = true
	s.Phase = PhaseFinished
	s.PendingSeq = 0
	s.Submission = SubmissionPending
	s.Seq++
	s.SubmitSeq = s.Seq
	return s, []Effect{SubmitScore{Seq: s.Seq, Player: s.Player, Score: s.Correct}}, nil
}

func (s *State) issueFetch(previous []int, filter model.CategoryFilter) FetchQuestion {
	s.Seq++
	s.PendingSeq = s.Seq
	return FetchQuestion{Seq: s.Seq, Previous: previous, Category: filter}
}

func (s State) awaiting(seq uint64) bool {
	return s.PendingSeq != 0 && seq == s.PendingSeq
}

func (s State) clone() State {
	next := s
	next.Asked = slices.Clone(s.Asked)
	next.Rounds = slices.Clone(s.Rounds)
	if s.Current != nil {
		q := *s.Current
		next.Current = &q
	}
	return next
}

func notificationFor(message string, err error) Notification {
	n := Notification{Kind: errors.KindOf(err), Message: message}
	if err != nil {
		n.Detail = err.Error()
	}
	return n
}
