package wordlist

import (
	"strings"
	"testing"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	if !filter("hello") {
		t.Fatalf("expected hello to pass english filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op", "Hello", strings.Repeat("a", MaxWordLen+1)} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilterOtherLanguages(t *testing.T) {
	filter := FilterForLang("ES")
	for _, word := range []string{"mañana", "Árbol", "straße"} {
		if !filter(word) {
			t.Fatalf("expected %q to pass", word)
		}
	}
	for _, word := range []string{"", "dos palabras", "co-op", "x1"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}
