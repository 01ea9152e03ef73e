package leaderboard

import (
	"context"

	"github.com/verte-zerg/tuivia/internal/errors"
	"github.com/verte-zerg/tuivia/internal/model"
)

// Event is an input to State.Apply.
type Event interface {
	isEvent()
}

// LoadRequested fetches a page without range checks. Used on mount.
type LoadRequested struct {
	Page int
}

// PageSelected fetches a page within 1..MaxPage.
type PageSelected struct {
	Page int
}

// PageLoaded is a successful FetchPage.
type PageLoaded struct {
	Request FetchPage
	Page    model.LeaderboardPage
}

// PageFailed is a failed FetchPage.
type PageFailed struct {
	Request FetchPage
	Err     error
}

func (LoadRequested) isEvent() {}
func (PageSelected) isEvent()  {}
func (PageLoaded) isEvent()    {}
func (PageFailed) isEvent()    {}

// Effect is work requested by State.Apply.
type Effect interface {
	isEffect()
}

// FetchPage asks the service for one page.
type FetchPage struct {
	Seq  uint64
	Page int
}

// Notification is a non-fatal message for the user.
type Notification struct {
	Kind    errors.Kind
	Message string
	Detail  string
}

func (FetchPage) isEffect()    {}
func (Notification) isEffect() {}

func (n Notification) String() string {
	if n.Detail == "" {
		return n.Message
	}
	return n.Message + ": " + n.Detail
}

// Service is the part of the trivia service the browser needs.
type Service interface {
	Leaderboard(ctx context.Context, page int) (model.LeaderboardPage, error)
}

// Execute performs a single effect and returns the event reporting its
// outcome, or nil for notifications.
func Execute(ctx context.Context, svc Service, eff Effect) Event {
	fetch, ok := eff.(FetchPage)
	if !ok {
		return nil
	}
	page, err := svc.Leaderboard(ctx, fetch.Page)
	if err != nil {
		return PageFailed{Request: fetch, Err: err}
	}
	return PageLoaded{Request: fetch, Page: page}
}

// Browser drives a State synchronously.
type Browser struct {
	svc   Service
	state State

	// OnNotify receives non-fatal notifications. May be nil.
	OnNotify func(Notification)
}

// NewBrowser returns a browser positioned on page 1 with nothing loaded.
func NewBrowser(svc Service) *Browser {
	return &Browser{svc: svc, state: New()}
}

// State returns a snapshot of the browser.
func (b *Browser) State() State {
	return b.state.clone()
}

// Load fetches page n.
func (b *Browser) Load(ctx context.Context, n int) error {
	return b.dispatch(ctx, LoadRequested{Page: n})
}

// SelectPage fetches page n, which must be within the known range.
func (b *Browser) SelectPage(ctx context.Context, n int) error {
	return b.dispatch(ctx, PageSelected{Page: n})
}

func (b *Browser) dispatch(ctx context.Context, ev Event) error {
	next, queue, err := b.state.Apply(ev)
	if err != nil {
		return err
	}
	b.state = next
	for len(queue) > 0 {
		eff := queue[0]
		queue = queue[1:]
		if n, ok := eff.(Notification); ok {
			if b.OnNotify != nil {
				b.OnNotify(n)
			}
			continue
		}
		result := Execute(ctx, b.svc, eff)
		if result == nil {
			continue
		}
		next, more, err := b.state.Apply(result)
		if err != nil {
			return err
		}
		b.state = next
		queue = append(queue, more...)
	}
	return nil
}
