package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Kana", "Accuracy", "Answers"}
	rows := [][]string{
		{"あ", "97.50%", "12"},
		{"きゃ", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Kana Accuracy Answers" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "あ     97.50%      12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "きゃ    8.00%       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableRaggedRows(t *testing.T) {
	lines := formatTable(nil, [][]string{{"a"}, {"bb", "c"}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "a" || lines[1] != "bb c" {
		t.Fatalf("unexpected lines: %q", lines)
	}
	if formatTable(nil, nil, nil) != nil {
		t.Fatalf("expected nil for empty table")
	}
}
