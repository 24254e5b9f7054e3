package update

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFirstLineStopsAtNewline(t *testing.T) {
	if got := firstLine("  one\ntwo\nthree  "); got != "one" {
		t.Fatalf("firstLine = %q, want %q", got, "one")
	}
}

func TestFirstLineTruncatesByRuneCount(t *testing.T) {
	got := firstLine(strings.Repeat("ü", 60) + "\nrest")
	if got != strings.Repeat("ü", 48) {
		t.Fatalf("firstLine = %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("firstLine produced invalid utf-8: %q", got)
	}
}
