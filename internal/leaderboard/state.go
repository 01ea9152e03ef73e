// Package leaderboard implements paginated browsing of the shared leaderboard.
package leaderboard

import (
	"iter"
	"slices"

	"github.com/verte-zerg/tuivia/internal/errors"
	"github.com/verte-zerg/tuivia/internal/model"
)

// State is the page currently shown. Entries always belong to Page.
type State struct {
	Entries []model.LeaderboardEntry
	Page    int
	Total   int
	Loaded  bool

	Seq        uint64
	PendingSeq uint64
}

// PageIndicator describes one entry of the page strip.
type PageIndicator struct {
	Number    int
	IsCurrent bool
}

// New returns the state of a freshly mounted view, positioned on page 1.
func New() State {
	return State{Page: 1}
}

// MaxPage returns the number of pages, zero when there are no entries.
func (s State) MaxPage() int {
	return MaxPage(s.Total)
}

// MaxPage returns ceil(total / PageSize).
func MaxPage(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + model.PageSize - 1) / model.PageSize
}

// Empty reports the "no scores yet" state.
func (s State) Empty() bool {
	return s.Loaded && s.Total == 0
}

// Loading reports whether a page fetch is outstanding.
func (s State) Loading() bool {
	return s.PendingSeq != 0
}

// PageIndicators yields one indicator per page in 1..MaxPage. The sequence is
// computed from s on each iteration.
func (s State) PageIndicators() iter.Seq[PageIndicator] {
	maxPage := s.MaxPage()
	current := s.Page
	return func(yield func(PageIndicator) bool) {
		for n := 1; n <= maxPage; n++ {
			if !yield(PageIndicator{Number: n, IsCurrent: n == current}) {
				return
			}
		}
	}
}

// Rank returns the 1-based overall position of the i-th entry on the page.
func (s State) Rank(i int) int {
	return (s.Page-1)*model.PageSize + i + 1
}

// Apply performs one transition. A validation error leaves s unchanged.
func (s State) Apply(ev Event) (State, []Effect, error) {
	switch ev := ev.(type) {
	case LoadRequested:
		return s.load(ev.Page)
	case PageSelected:
		if ev.Page < 1 || ev.Page > s.MaxPage() {
			return s, nil, errors.Validation("page %d out of range 1..%d", ev.Page, s.MaxPage())
		}
		return s.load(ev.Page)
	case PageLoaded:
		if !s.awaiting(ev.Request.Seq) {
			return s, nil, nil
		}
		next := s.clone()
		next.PendingSeq = 0
		next.Entries = slices.Clone(ev.Page.Entries)
		next.Total = ev.Page.Total
		next.Page = ev.Request.Page
		next.Loaded = true
		return next, nil, nil
	case PageFailed:
		if !s.awaiting(ev.Request.Seq) {
			return s, nil, nil
		}
		next := s.clone()
		next.PendingSeq = 0
		n := Notification{
			Kind:    errors.KindOf(ev.Err),
			Message: "Unable to load scores. Please try your request again",
		}
		if ev.Err != nil {
			n.Detail = ev.Err.Error()
		}
		return next, []Effect{n}, nil
	default:
		return s, nil, errors.Validation("unknown event %T", ev)
	}
}

// NextPage returns the page after the current one, clamped to MaxPage.
func (s State) NextPage() int {
	if s.Page >= s.MaxPage() {
		return s.Page
	}
	return s.Page + 1
}

// PrevPage returns the page before the current one, clamped to 1.
func (s State) PrevPage() int {
	if s.Page <= 1 {
		return 1
	}
	return s.Page - 1
}

func (s State) load(page int) (State, []Effect, error) {
	if page < 1 {
		return s, nil, errors.Validation("page must be >= 1, got %d", page)
	}
	next := s.clone()
	next.Seq++
	next.PendingSeq = next.Seq
	return next, []Effect{FetchPage{Seq: next.Seq, Page: page}}, nil
}

func (s State) awaiting(seq uint64) bool {
	return s.PendingSeq != 0 && seq == s.PendingSeq
}

func (s State) clone() State {
	next := s
	next.Entries = slices.Clone(s.Entries)
	return next
}
