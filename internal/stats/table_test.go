package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Ended", "Hits", "Score"}
	rows := [][]string{
		{"today", "12", "10"},
		{"yesterday", "3", "-1"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Ended     Hits Score" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "today       12    10" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "yesterday    3    -1" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
