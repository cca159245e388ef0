package session

// WordState classifies a word of the current batch for display.
type WordState int

// Word states.
const (
	WordPending WordState = iota
	WordActive
	WordCorrect
	WordIncorrect
)

// LetterState classifies a letter of the active word.
type LetterState int

// Letter states.
const (
	LetterPending LetterState = iota
	LetterCorrect
	LetterIncorrect
)

// LetterView is one letter of the active word.
type LetterView struct {
	Rune  rune
	State LetterState
}

// WordView is one word of the current batch as it should be displayed.
// Letters is only set for the active word. Extra holds typed runes past the end
// of the active word.
type WordView struct {
	Text    string
	State   WordState
	Letters []LetterView
	Extra   []rune
}

// Words derives the display state of the current batch.
func (s State) Words() []WordView {
	out := make([]WordView, 0, len(s.Current))
	for i, word := range s.Current {
		view := WordView{Text: word}
		switch {
		case i < s.WordIndex:
			view.State = WordIncorrect
			if h := s.BatchStart + i; h < len(s.History) && s.History[h].Correct {
				view.State = WordCorrect
			}
		case i == s.WordIndex:
			view.State = WordActive
			view.Letters, view.Extra = compareLetters([]rune(word), s.Buffer)
		default:
			view.State = WordPending
		}
		out = append(out, view)
	}
	return out
}

func compareLetters(target, typed []rune) ([]LetterView, []rune) {
	letters := make([]LetterView, len(target))
	for i, r := range target {
		letters[i] = LetterView{Rune: r}
		if i >= len(typed) {
			continue
		}
		if typed[i] == r {
			letters[i].State = LetterCorrect
		} else {
			letters[i].State = LetterIncorrect
		}
	}
	var extra []rune
	if len(typed) > len(target) {
		extra = append(extra, typed[len(target):]...)
	}
	return letters, extra
}
