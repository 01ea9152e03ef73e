package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuivia/internal/config"
	"github.com/verte-zerg/tuivia/internal/model"
)

type fakeService struct {
	questions []model.Question
	submitErr error
	total     int
}

func (f *fakeService) Categories(context.Context) ([]model.Category, error) {
	return []model.Category{{ID: 1, Label: "Science"}, {ID: 2, Label: "Art"}}, nil
}

func (f *fakeService) NextQuestion(_ context.Context, previous []int, _ model.CategoryFilter) (*model.Question, error) {
	if len(previous) >= len(f.questions) {
		return nil, nil
	}
	q := f.questions[len(previous)]
	return &q, nil
}

func (f *fakeService) SubmitScore(context.Context, string, int) error {
	return f.submitErr
}

func (f *fakeService) Leaderboard(_ context.Context, page int) (model.LeaderboardPage, error) {
	var entries []model.LeaderboardEntry
	for i := (page - 1) * model.PageSize; i < min(page*model.PageSize, f.total); i++ {
		entries = append(entries, model.LeaderboardEntry{Player: "p", Score: f.total - i})
	}
	return model.LeaderboardPage{Entries: entries, Total: f.total}, nil
}

type fakeRecorder struct {
	games []model.GameRecord
}

func (f *fakeRecorder) InsertGame(_ context.Context, game model.GameRecord, _ []model.Round) (string, error) {
	f.games = append(f.games, game)
	return "id", nil
}

func TestRunPlainPlaysSession(t *testing.T) {
	svc := &fakeService{questions: []model.Question{
		{ID: 7, Text: "2+2?", Answer: "four"},
		{ID: 8, Text: "Capital of Australia?", Answer: "Canberra"},
	}}
	rec := &fakeRecorder{}
	in := strings.NewReader("\nAda\n1\nfour\nsydney\n")
	var out bytes.Buffer

	if err := runPlain(context.Background(), in, &out, model.Config{}, svc, rec); err != nil {
		t.Fatalf("run plain: %v", err)
	}
	text := out.String()
	for _, want := range []string{"1) Science", "Question 1 of 5: 2+2?", "Correct!", "Incorrect. The answer was: Canberra", "Ada, you scored 1 out of 2", "Score submitted"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if len(rec.games) != 1 || rec.games[0].Category != "Science" || !rec.games[0].Submitted {
		t.Fatalf("unexpected recorded games: %+v", rec.games)
	}
}

func TestRunPlainStopsAtEOF(t *testing.T) {
	rec := &fakeRecorder{}
	var out bytes.Buffer
	if err := runPlain(context.Background(), strings.NewReader(""), &out, model.Config{Player: "Ada"}, &fakeService{}, rec); err != nil {
		t.Fatalf("run plain: %v", err)
	}
	if len(rec.games) != 0 {
		t.Fatalf("expected no game recorded")
	}
}

func TestRunPlainRecordsFailedSubmission(t *testing.T) {
	rec := &fakeRecorder{}
	var out bytes.Buffer
	svc := &fakeService{submitErr: errors.New("boom")}
	if err := runPlain(context.Background(), strings.NewReader("0\n"), &out, model.Config{Player: "Ada"}, svc, rec); err != nil {
		t.Fatalf("run plain: %v", err)
	}
	if !strings.Contains(out.String(), "Your score was not posted") {
		t.Fatalf("expected failure notice, got:\n%s", out.String())
	}
	if len(rec.games) != 1 || rec.games[0].Submitted || rec.games[0].Category != "ALL" {
		t.Fatalf("unexpected recorded games: %+v", rec.games)
	}
}

func TestParseCategoryChoice(t *testing.T) {
	cats := []model.Category{{ID: 9, Label: "History"}}
	if f, err := parseCategoryChoice(" ", cats); err != nil || !f.IsAll() {
		t.Fatalf("expected all categories for empty choice")
	}
	if f, err := parseCategoryChoice("1", cats); err != nil {
		t.Fatalf("parse: %v", err)
	} else if id, ok := f.ID(); !ok || id != 9 {
		t.Fatalf("expected category 9, got %s", f)
	}
	if _, err := parseCategoryChoice("2", cats); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestPrintLeaderboard(t *testing.T) {
	var out bytes.Buffer
	if err := printLeaderboard(context.Background(), &out, &fakeService{total: 12}, 2); err != nil {
		t.Fatalf("print leaderboard: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "  11  p") || !strings.Contains(text, "Pages: 1 [2]") {
		t.Fatalf("unexpected output:\n%s", text)
	}

	out.Reset()
	if err := printLeaderboard(context.Background(), &out, &fakeService{total: 12}, 9); err != nil {
		t.Fatalf("print leaderboard: %v", err)
	}
	if text := out.String(); !strings.Contains(text, "  11  p") || !strings.Contains(text, "Pages: 1 [2]") {
		t.Fatalf("expected last page for out-of-range request:\n%s", text)
	}

	out.Reset()
	if err := printLeaderboard(context.Background(), &out, &fakeService{}, 1); err != nil {
		t.Fatalf("print leaderboard: %v", err)
	}
	if out.String() != "There are no scores to display.\n" {
		t.Fatalf("unexpected empty output: %q", out.String())
	}
}

func TestValidateConfig(t *testing.T) {
	good := model.Config{ServerURL: "http://x", Timeout: time.Second, Page: 1}
	if err := validateConfig(good); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	bad := good
	bad.Page = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected page error")
	}
	bad = good
	bad.Timeout = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Server.URL != nil || cfg.Leaderboard.Page != nil {
		t.Fatalf("expected all values commented out, got %+v", cfg)
	}
}
