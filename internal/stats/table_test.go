package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Player", "Score", "Games"}
	rows := [][]string{
		{"Ada", "5/5", "12"},
		{"Grace Hopper", "3/5", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Player       Score Games" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Ada            5/5    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Grace Hopper   3/5     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Player", "Score"}, [][]string{{"日本", "1/5"}}, nil)
	if lines[1] != "日本   1/5" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}
