package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuivia/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListGames(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	players := []string{"Ada", "Bob", "Ada"}
	var ids []string
	for i, player := range players {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		game := model.GameRecord{
			Player:    player,
			Category:  "ALL",
			StartedAt: start,
			EndedAt:   start.Add(30 * time.Second),
			Correct:   i + 1,
			Asked:     5,
			Submitted: i != 1,
		}
		if i == 1 {
			game.SubmitError = "status 500"
		}
		rounds := []model.Round{
			{QuestionID: 10 + i, Question: "2+2?", Answer: "four", Guess: "four", Correct: true},
			{QuestionID: 20 + i, Question: "Capital?", Answer: "Canberra", Guess: "sydney", Correct: false},
		}
		id, err := st.InsertGame(ctx, game, rounds)
		if err != nil {
			t.Fatalf("insert game: %v", err)
		}
		if id == "" {
			t.Fatalf("expected generated id")
		}
		ids = append(ids, id)
	}

	all, err := st.ListGames(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 games, got %d", len(all))
	}
	if all[0].ID != ids[0] || all[2].ID != ids[2] {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[1].Submitted || all[1].SubmitError != "status 500" {
		t.Fatalf("unexpected submission fields: %+v", all[1])
	}
	if !all[0].EndedAt.Equal(time.Unix(30, 0)) {
		t.Fatalf("unexpected ended_at: %v", all[0].EndedAt)
	}

	ada, err := st.ListGames(ctx, model.HistoryConfig{Player: "Ada", Last: 1})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(ada) != 1 || ada[0].ID != ids[2] {
		t.Fatalf("expected latest Ada game, got %+v", ada)
	}

	rounds, err := st.ListRounds(ctx, ids[1])
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(rounds) != 2 || rounds[0].QuestionID != 11 || !rounds[0].Correct || rounds[1].Correct {
		t.Fatalf("unexpected rounds: %+v", rounds)
	}
}

func TestInsertGameKeepsGivenID(t *testing.T) {
	st := openTestStore(t)
	id, err := st.InsertGame(context.Background(), model.GameRecord{ID: "fixed", Player: "Ada"}, nil)
	if err != nil {
		t.Fatalf("insert game: %v", err)
	}
	if id != "fixed" {
		t.Fatalf("expected fixed id, got %s", id)
	}
	if _, err := st.InsertGame(context.Background(), model.GameRecord{ID: "fixed", Player: "Ada"}, nil); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
}
