package wordlist

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxWordLen bounds the runes of a usable test word.
const MaxWordLen = 24

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns the filter applied to local and downloaded words.
// English words are lowercase ASCII; other languages accept any letters.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en", "":
		return filterEnglishASCII
	default:
		return filterLetters
	}
}

func filterEnglishASCII(word string) bool {
	if word == "" || len(word) > MaxWordLen {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

func filterLetters(word string) bool {
	if word == "" || utf8.RuneCountInString(word) > MaxWordLen {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	return true
}
