// Package stats contains play history calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/tuivia/internal/model"
	"github.com/verte-zerg/tuivia/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Games      []model.GameRecord
	Played     int
	Submitted  int
	Best       int
	AvgScore   float64
	Accuracy   float64
	Categories []CategoryCount
	// LastRounds holds the rounds of the most recent game.
	LastRounds []model.Round
}

// CategoryCount counts games per category label.
type CategoryCount struct {
	Category string
	Games    int
	Correct  int
	Asked    int
}

// BuildReport loads games matching cfg and aggregates them.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	games, err := st.ListGames(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	report := Summarize(games)
	if len(games) > 0 {
		rounds, err := st.ListRounds(ctx, games[len(games)-1].ID)
		if err != nil {
			return Report{}, err
		}
		report.LastRounds = rounds
	}
	return report, nil
}

// Summarize aggregates games without touching storage.
func Summarize(games []model.GameRecord) Report {
	report := Report{Games: games, Played: len(games)}
	if len(games) == 0 {
		return report
	}
	var correct, asked int
	byCategory := map[string]int{}
	for _, g := range games {
		correct += g.Correct
		asked += g.Asked
		if g.Correct > report.Best {
			report.Best = g.Correct
		}
		if g.Submitted {
			report.Submitted++
		}
		idx, ok := byCategory[g.Category]
		if !ok {
			idx = len(report.Categories)
			byCategory[g.Category] = idx
			report.Categories = append(report.Categories, CategoryCount{Category: g.Category})
		}
		report.Categories[idx].Games++
		report.Categories[idx].Correct += g.Correct
		report.Categories[idx].Asked += g.Asked
	}
	report.AvgScore = float64(correct) / float64(len(games))
	report.Accuracy = Accuracy(correct, asked)
	return report
}
