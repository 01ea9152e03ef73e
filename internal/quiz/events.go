package quiz

import (
	"github.com/verte-zerg/tuivia/internal/errors"
	"github.com/verte-zerg/tuivia/internal/model"
)

// Event is an input to State.Apply.
type Event interface {
	isEvent()
}

// NameSubmitted commits the player name.
type NameSubmitted struct {
	Name string
}

// CategorySelected picks the category filter and starts the first fetch.
type CategorySelected struct {
	Filter model.CategoryFilter
}

// QuestionLoaded is a successful answer to a FetchQuestion. A nil Question
// means no eligible question is left.
type QuestionLoaded struct {
	Request  FetchQuestion
	Question *model.Question
}

// QuestionFailed is a failed FetchQuestion.
type QuestionFailed struct {
	Request FetchQuestion
	Err     error
}

// GuessSubmitted evaluates a guess against the current question.
type GuessSubmitted struct {
	Text string
}

// Advanced moves past a revealed answer.
type Advanced struct{}

// ScoreSubmitted is the outcome of the SubmitScore effect with the same Seq.
type ScoreSubmitted struct {
	Seq uint64
	Err error
}

// Restarted discards the session.
type Restarted struct{}

func (NameSubmitted) isEvent()    {}
func (CategorySelected) isEvent() {}
func (QuestionLoaded) isEvent()   {}
func (QuestionFailed) isEvent()   {}
func (GuessSubmitted) isEvent()   {}
func (Advanced) isEvent()         {}
func (ScoreSubmitted) isEvent()   {}
func (Restarted) isEvent()        {}

// Effect is work requested by State.Apply.
type Effect interface {
	isEffect()
}

// FetchQuestion asks the service for a question not in Previous.
type FetchQuestion struct {
	Seq      uint64
	Previous []int
	Category model.CategoryFilter
}

// SubmitScore posts the final score to the leaderboard.
type SubmitScore struct {
	Seq    uint64
	Player string
	Score  int
}

// Notification is a non-fatal message for the user. The host decides how to
// show it.
type Notification struct {
	Kind    errors.Kind
	Message string
	Detail  string
}

func (FetchQuestion) isEffect() {}
func (SubmitScore) isEffect()   {}
func (Notification) isEffect()  {}

func (n Notification) String() string {
	if n.Detail == "" {
		return n.Message
	}
	return n.Message + ": " + n.Detail
}
