package telegram

import (
	"strings"
	"testing"
)

func TestSplitTextShort(t *testing.T) {
	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("got %v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	text := strings.Repeat("line one\n", 5) + "tail"
	got := splitText(text, 30)
	if len(got) < 2 {
		t.Fatalf("expected a split, got %v", got)
	}
	for i, chunk := range got {
		if len([]rune(chunk)) > 30 {
			t.Errorf("chunk %d over limit: %q", i, chunk)
		}
		if strings.HasPrefix(chunk, "\n") || strings.HasSuffix(chunk, "\n") {
			t.Errorf("chunk %d has dangling newline: %q", i, chunk)
		}
	}
	if joined := strings.Join(got, "\n"); !strings.Contains(joined, "tail") {
		t.Errorf("tail lost: %v", got)
	}
}

func TestSplitTextNoNewlines(t *testing.T) {
	text := strings.Repeat("x", 95)
	got := splitText(text, 30)
	total := 0
	for _, c := range got {
		total += len(c)
	}
	if total != 95 {
		t.Errorf("lost characters: %d != 95 in %v", total, got)
	}
}
