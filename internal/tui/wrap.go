// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/fasttype/internal/session"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes colours the words of the current batch. Finished words use
// their judgment, the active word is coloured letter by letter, later words are
// pending. The cursor sits on the next letter to type.
func buildStyledRunes(words []session.WordView) []styledRune {
	out := make([]styledRune, 0, len(words)*6)
	for i, w := range words {
		if i > 0 {
			out = append(out, newStyledRune(' ', pendingStyle, true))
		}
		switch w.State {
		case session.WordActive:
			out = appendActiveWord(out, w)
		case session.WordCorrect:
			out = appendWord(out, w.Text, correctStyle)
		case session.WordIncorrect:
			out = appendWord(out, w.Text, incorrectStyle)
		default:
			out = appendWord(out, w.Text, pendingStyle)
		}
	}
	return out
}

func appendWord(out []styledRune, word string, style lipgloss.Style) []styledRune {
	for _, r := range word {
		out = append(out, newStyledRune(r, style, false))
	}
	return out
}

func appendActiveWord(out []styledRune, w session.WordView) []styledRune {
	typed := len(w.Extra)
	for _, l := range w.Letters {
		if l.State != session.LetterPending {
			typed++
		}
	}
	for i, l := range w.Letters {
		var style lipgloss.Style
		switch l.State {
		case session.LetterCorrect:
			style = correctStyle
		case session.LetterIncorrect:
			style = incorrectStyle
		default:
			style = currentWordStyle
		}
		if i == typed {
			style = style.Underline(true)
		}
		out = append(out, newStyledRune(l.Rune, style, false))
	}
	for _, r := range w.Extra {
		out = append(out, newStyledRune(r, extraStyle, false))
	}
	return out
}

func newStyledRune(r rune, style lipgloss.Style, isSpace bool) styledRune {
	return styledRune{
		s:       style.Render(string(r)),
		width:   runewidth.RuneWidth(r),
		isSpace: isSpace,
	}
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits in width.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
