package tui

import (
	"strings"
	"testing"
)

func TestBuildStyledRunesCursor(t *testing.T) {
	runes := buildStyledRunes([]string{"ab"}, nil, 0, "a")
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected cursor style for second rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	runes := buildStyledRunes([]string{"ab"}, nil, 0, "ax")
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesCommittedAndPendingWords(t *testing.T) {
	runes := buildStyledRunes([]string{"one", "two", "six"}, []string{"on"}, 1, "t")
	// "one" + space + "two" + space + "six"
	if len(runes) != 11 {
		t.Fatalf("expected 11 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("o") || runes[2].s != incorrectStyle.Render("e") {
		t.Fatalf("expected committed word scored against typed value")
	}
	if !runes[3].isSpace {
		t.Fatalf("expected separator space")
	}
	if runes[4].s != correctStyle.Render("t") || runes[6].s != currentWordStyle.Render("o") {
		t.Fatalf("expected current word highlighting")
	}
	if runes[8].s != pendingStyle.Render("s") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesExtraChars(t *testing.T) {
	runes := buildStyledRunes([]string{"go"}, []string{"gone"}, 1, "")
	if len(runes) != 4 {
		t.Fatalf("expected target plus 2 extra runes, got %d", len(runes))
	}
	if runes[2].s != extraStyle.Render("n") || runes[3].s != extraStyle.Render("e") {
		t.Fatalf("expected extra style for over-typed runes")
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	runes := buildStyledRunes([]string{"aaa", "bbb", "ccc"}, nil, -1, "")
	out := wrapStyledRunes(runes, 7)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
}
