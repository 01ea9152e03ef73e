package stats

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	colorGreen          = "\x1b[32m"
	colorRed            = "\x1b[31m"
	colorYellow         = "\x1b[33m"
)

// TerminalWidth returns the width of stdout or a fallback when it is not a TTY.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether ANSI colors should be written to w.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func paint(s, code string, useColor bool) string {
	if !useColor {
		return s
	}
	return code + s + colorReset
}

func colorPct(acc float64, useColor bool) string {
	s := formatPct(acc)
	switch {
	case acc >= 0.8:
		return paint(s, colorGreen, useColor)
	case acc >= 0.4:
		return paint(s, colorYellow, useColor)
	default:
		return paint(s, colorRed, useColor)
	}
}

func colorMark(correct, useColor bool) string {
	if correct {
		return paint("+", colorGreen, useColor)
	}
	return paint("x", colorRed, useColor)
}
