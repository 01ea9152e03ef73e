package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuivia/internal/leaderboard"
	"github.com/verte-zerg/tuivia/internal/model"
	"github.com/verte-zerg/tuivia/internal/quiz"
	"github.com/verte-zerg/tuivia/internal/tui"
)

// runPlain plays one session over plain lines of text.
func runPlain(ctx context.Context, in io.Reader, out io.Writer, cfg model.Config, svc tui.Service, rec tui.Recorder) error {
	con := &console{out: out, lines: bufio.NewScanner(in)}
	prompt := con.prompt

	sess := quiz.NewSession(svc)
	sess.OnNotify = func(n quiz.Notification) {
		con.printf("! %s\n", n)
	}

	name := cfg.Player
	for {
		if name == "" {
			var ok bool
			if name, ok = prompt("Your name: "); !ok {
				return con.err
			}
		}
		if err := sess.SubmitPlayerName(name); err != nil {
			con.printf("! %v\n", err)
			name = ""
			continue
		}
		break
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		logErrf("failed to load categories: %v\n", err)
	}
	con.printf("0) All categories\n")
	for i, c := range cats {
		con.printf("%d) %s\n", i+1, c.Label)
	}
	startedAt := time.Now()
	for sess.State().Phase == quiz.PhaseCategorySelect {
		choice, ok := prompt("Category: ")
		if !ok {
			return con.err
		}
		filter, err := parseCategoryChoice(choice, cats)
		if err != nil {
			con.printf("! %v\n", err)
			continue
		}
		startedAt = time.Now()
		if err := sess.SelectCategory(ctx, filter); err != nil {
			con.printf("! %v\n", err)
		}
	}

	for sess.State().Phase != quiz.PhaseFinished {
		state := sess.State()
		switch state.Phase {
		case quiz.PhasePlaying:
			con.printf("\nQuestion %d of %d: %s\n", len(state.Asked)+1, model.QuestionsPerSession, state.Current.Text)
			guess, ok := prompt("> ")
			if !ok {
				return con.err
			}
			correct, err := sess.SubmitGuess(guess)
			if err != nil {
				return err
			}
			if correct {
				con.printf("Correct!\n")
			} else {
				con.printf("Incorrect. The answer was: %s\n", state.Current.Answer)
			}
			if err := sess.Advance(ctx); err != nil {
				return err
			}
		case quiz.PhaseAnswerRevealed:
			if _, ok := prompt("Press enter to retry "); !ok {
				return con.err
			}
			if err := sess.Advance(ctx); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected session phase %s", state.Phase)
		}
	}

	state := sess.State()
	con.printf("\n%s, you scored %d out of %d\n", state.Player, state.Correct, len(state.Rounds))
	if state.Submission == quiz.SubmissionSucceeded {
		con.printf("Score submitted to the leaderboard.\n")
	}

	if rec != nil {
		game := model.GameRecord{
			Player:      state.Player,
			Category:    categoryLabel(state.Category, cats),
			StartedAt:   startedAt,
			EndedAt:     time.Now(),
			Correct:     state.Correct,
			Asked:       len(state.Rounds),
			Submitted:   state.Submission == quiz.SubmissionSucceeded,
			SubmitError: state.SubmitError,
		}
		if _, err := rec.InsertGame(ctx, game, state.Rounds); err != nil {
			logErrf("failed to save game: %v\n", err)
		}
	}
	return con.err
}

type console struct {
	out   io.Writer
	lines *bufio.Scanner
	err   error
}

func (c *console) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.out, format, args...)
}

// prompt prints label and reads one line. It reports false at end of input
// or after a write error.
func (c *console) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if c.err != nil || !c.lines.Scan() {
		return "", false
	}
	return c.lines.Text(), true
}

func parseCategoryChoice(choice string, cats []model.Category) (model.CategoryFilter, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" || strings.EqualFold(choice, "all") {
		return model.AllCategories(), nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 0 || n > len(cats) {
		return model.CategoryFilter{}, fmt.Errorf("choose a number between 0 and %d", len(cats))
	}
	if n == 0 {
		return model.AllCategories(), nil
	}
	return model.SpecificCategory(cats[n-1].ID), nil
}

func categoryLabel(f model.CategoryFilter, cats []model.Category) string {
	if id, ok := f.ID(); ok {
		for _, c := range cats {
			if c.ID == id {
				return c.Label
			}
		}
	}
	return f.String()
}

// printLeaderboard prints a single page using the browser driver.
func printLeaderboard(ctx context.Context, out io.Writer, svc leaderboard.Service, page int) error {
	b := leaderboard.NewBrowser(svc)
	b.OnNotify = func(n leaderboard.Notification) {
		logErrln(n.String())
	}
	if err := b.Load(ctx, page); err != nil {
		return err
	}
	state := b.State()
	if !state.Loaded {
		return fmt.Errorf("failed to load leaderboard")
	}
	if last := state.MaxPage(); last > 0 && state.Page > last {
		if err := b.SelectPage(ctx, last); err != nil {
			return err
		}
		state = b.State()
	}
	if state.Empty() {
		_, err := fmt.Fprintln(out, "There are no scores to display.")
		return err
	}
	for i, e := range state.Entries {
		if _, err := fmt.Fprintf(out, "%4d  %-24s %d\n", state.Rank(i), e.Player, e.Score); err != nil {
			return err
		}
	}
	var pages []string
	for ind := range state.PageIndicators() {
		label := strconv.Itoa(ind.Number)
		if ind.IsCurrent {
			label = "[" + label + "]"
		}
		pages = append(pages, label)
	}
	_, err := fmt.Fprintf(out, "\nPages: %s\n", strings.Join(pages, " "))
	return err
}
