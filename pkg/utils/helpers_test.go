package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRandomHexLength(t *testing.T) {
	s := RandomHex(4)
	if len(s) != 8 {
		t.Fatalf("RandomHex(4) length = %d, want 8", len(s))
	}
}

func TestTruncateShortString(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("Truncate should not touch strings under the cap, got %q", got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	s := strings.Repeat("é", 30)
	got := Truncate(s, 20)
	if utf8.RuneCountInString(got) != 20 {
		t.Fatalf("rune count = %d, want 20", utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
}
