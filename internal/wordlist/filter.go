// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"fmt"
	"strings"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en":
		return filterEnglishASCII
	default:
		return func(word string) bool { return word != "" && !strings.ContainsRune(word, ' ') }
	}
}

// Apply keeps the words accepted by filter. An empty result is an error
// because a session needs at least one word to draw from.
func Apply(words []string, filter FilterFunc) ([]string, error) {
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if filter(word) {
			kept = append(kept, word)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no usable words after filtering %d entries", len(words))
	}
	return kept, nil
}

func filterEnglishASCII(word string) bool {
	if word == "" {
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
