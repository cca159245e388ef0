package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fasttype/internal/session"
)

func activeState(t *testing.T, words []string, typed string) session.State {
	t.Helper()
	s, _ := session.New(session.Options{})
	s, _ = s.Load(words)
	for _, r := range typed {
		s, _ = s.Type(r)
	}
	return s
}

func TestBuildStyledRunesCursor(t *testing.T) {
	s := activeState(t, []string{"ab"}, "a")
	runes := buildStyledRunes(s.Words())
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
	s := activeState(t, []string{"ab"}, "ax")
	runes := buildStyledRunes(s.Words())
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesExtraLetters(t *testing.T) {
	s := activeState(t, []string{"ab"}, "abc")
	runes := buildStyledRunes(s.Words())
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[2].s != extraStyle.Render("c") {
		t.Fatalf("expected extra style for overflow rune")
	}
}

func TestBuildStyledRunesWordStates(t *testing.T) {
	s := activeState(t, []string{"one", "two", "six", "ten"}, "one twx s")
	runes := buildStyledRunes(s.Words())
	// "one two six ten"
	if len(runes) != 15 {
		t.Fatalf("expected 15 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for committed word")
	}
	if runes[4].s != incorrectStyle.Render("t") {
		t.Fatalf("expected incorrect style for mistyped word")
	}
	if !runes[3].isSpace || runes[3].s != pendingStyle.Render(" ") {
		t.Fatalf("expected separator space")
	}
	if runes[8].s != correctStyle.Render("s") {
		t.Fatalf("expected typed letter of active word to be correct")
	}
	if runes[9].s != currentWordStyle.Underline(true).Render("i") {
		t.Fatalf("expected cursor on next letter of active word")
	}
	if runes[10].s != currentWordStyle.Render("x") {
		t.Fatalf("expected current word style for untyped letter")
	}
	if runes[12].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for later word")
	}
}

func TestBuildStyledRunesEmptyBatch(t *testing.T) {
	s, _ := session.New(session.Options{})
	if got := buildStyledRunes(s.Words()); len(got) != 0 {
		t.Fatalf("expected no runes for empty batch, got %d", len(got))
	}
}

func plainRunes(text string) []styledRune {
	style := lipgloss.NewStyle()
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		out = append(out, newStyledRune(r, style, r == ' '))
	}
	return out
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	got := wrapStyledRunes(plainRunes("cat dog bird"), 8)
	if got != "cat dog\nbird" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesLongWord(t *testing.T) {
	got := wrapStyledRunes(plainRunes("abcdefgh"), 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesNoWidth(t *testing.T) {
	got := wrapStyledRunes(plainRunes("cat dog"), 0)
	if got != "cat dog" {
		t.Fatalf("unexpected output: %q", got)
	}
}
