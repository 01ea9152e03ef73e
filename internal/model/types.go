// Package model defines shared data structures.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	// QuestionsPerSession caps how many questions one play-through asks.
	QuestionsPerSession = 5
	// PageSize is the number of leaderboard entries per page.
	PageSize = 10
)

// allCategoriesWire is the quiz_category value that matches every category.
const allCategoriesWire = "ALL"

// Config defines client settings resolved from flags and the config file.
type Config struct {
	ServerURL string
	Timeout   time.Duration
	Player    string
	Page      int
}

// Category is a question category offered by the service.
type Category struct {
	ID    int
	Label string
}

type filterKind uint8

const (
	filterUnset filterKind = iota
	filterAll
	filterSpecific
)

// CategoryFilter selects which questions a session draws from. The zero value
// is unset.
type CategoryFilter struct {
	kind filterKind
	id   int
}

// AllCategories returns the filter matching every category.
func AllCategories() CategoryFilter {
	return CategoryFilter{kind: filterAll}
}

// SpecificCategory returns the filter for a single category id.
func SpecificCategory(id int) CategoryFilter {
	return CategoryFilter{kind: filterSpecific, id: id}
}

// IsSet reports whether the filter was chosen.
func (f CategoryFilter) IsSet() bool {
	return f.kind != filterUnset
}

// IsAll reports whether the filter matches every category.
func (f CategoryFilter) IsAll() bool {
	return f.kind == filterAll
}

// ID returns the category id and whether the filter names one.
func (f CategoryFilter) ID() (int, bool) {
	return f.id, f.kind == filterSpecific
}

func (f CategoryFilter) String() string {
	switch f.kind {
	case filterAll:
		return allCategoriesWire
	case filterSpecific:
		return strconv.Itoa(f.id)
	default:
		return "unset"
	}
}

// MarshalJSON encodes the filter as "ALL" or the numeric id.
func (f CategoryFilter) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case filterAll:
		return json.Marshal(allCategoriesWire)
	case filterSpecific:
		return json.Marshal(f.id)
	default:
		return nil, fmt.Errorf("category filter is unset")
	}
}

// UnmarshalJSON accepts "ALL", a numeric id, or a numeric string id.
func (f *CategoryFilter) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = CategoryFilter{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == allCategoriesWire {
			*f = AllCategories()
			return nil
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid category filter %q", s)
		}
		*f = SpecificCategory(id)
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("invalid category filter: %w", err)
	}
	*f = SpecificCategory(id)
	return nil
}

// Question is a single trivia question. Answer may hold several acceptable
// words separated by spaces.
type Question struct {
	ID         int
	Text       string
	Answer     string
	Category   int
	Difficulty int
}

// LeaderboardEntry is one row of the shared leaderboard.
type LeaderboardEntry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// LeaderboardPage is one page of leaderboard results plus the overall count.
type LeaderboardPage struct {
	Entries []LeaderboardEntry
	Total   int
}

// Round records one answered question of a session.
type Round struct {
	QuestionID int
	Question   string
	Answer     string
	Guess      string
	Correct    bool
}

// GameRecord captures a finished session for local history.
type GameRecord struct {
	ID          string
	Player      string
	Category    string
	StartedAt   time.Time
	EndedAt     time.Time
	Correct     int
	Asked       int
	Submitted   bool
	SubmitError string
}

// HistoryConfig defines filters for the history report.
type HistoryConfig struct {
	Player string
	Last   int
}
