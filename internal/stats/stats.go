package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuivia/internal/model"
)

const sparkChars = " .:-=+*#%@"

const timeLayout = "2006-01-02 15:04"

// Accuracy returns the share of correct answers in [0, 1].
func Accuracy(correct, asked int) float64 {
	if asked <= 0 {
		return 0
	}
	return float64(correct) / float64(asked)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(min(i+1, window))
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderReport prints the history summary, score trend and games table.
// A width of zero means no limit on the sparkline.
func RenderReport(w io.Writer, report Report, width int, useColor bool) error {
	if report.Played == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	p := &printer{w: w}
	p.line("Summary")
	p.printf("Games: %d (%d submitted)\n", report.Played, report.Submitted)
	p.printf("Best score: %d/%d\n", report.Best, model.QuestionsPerSession)
	p.printf("Avg score: %.2f\n", report.AvgScore)
	p.printf("Accuracy: %s\n", colorPct(report.Accuracy, useColor))
	p.line("")

	scores := make([]float64, len(report.Games))
	for i, g := range report.Games {
		scores[i] = float64(g.Correct)
	}
	if width > 0 && len(scores) > width {
		scores = scores[len(scores)-width:]
	}
	p.line("Score trend")
	p.line(Sparkline(MovingAverage(scores, 3)))
	p.line("")

	if len(report.Categories) > 1 {
		p.line("By category")
		cats := append([]CategoryCount(nil), report.Categories...)
		sort.SliceStable(cats, func(i, j int) bool { return cats[i].Games > cats[j].Games })
		rows := make([][]string, 0, len(cats))
		for _, c := range cats {
			rows = append(rows, []string{
				c.Category,
				fmt.Sprintf("%d", c.Games),
				formatPct(Accuracy(c.Correct, c.Asked)),
			})
		}
		p.table([]string{"Category", "Games", "Accuracy"}, rows, map[int]bool{1: true, 2: true})
		p.line("")
	}

	p.line("Games")
	rows := make([][]string, 0, len(report.Games))
	for _, g := range report.Games {
		status := "sent"
		if !g.Submitted {
			status = "not sent"
		}
		rows = append(rows, []string{
			g.EndedAt.Local().Format(timeLayout),
			g.Player,
			g.Category,
			fmt.Sprintf("%d/%d", g.Correct, g.Asked),
			status,
		})
	}
	p.table([]string{"Finished", "Player", "Category", "Score", "Leaderboard"}, rows, map[int]bool{3: true})

	if len(report.LastRounds) > 0 {
		p.line("")
		p.line("Last game")
		for i, r := range report.LastRounds {
			mark := colorMark(r.Correct, useColor)
			p.printf("%d. %s %s -> %q (answer: %s)\n", i+1, mark, r.Question, r.Guess, r.Answer)
		}
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) table(headers []string, rows [][]string, rightAlign map[int]bool) {
	for _, line := range formatTable(headers, rows, rightAlign) {
		p.line(line)
	}
}

func formatPct(acc float64) string {
	return fmt.Sprintf("%.2f%%", acc*100)
}
