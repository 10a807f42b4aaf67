package generator

import (
	"strings"
	"testing"
	"unicode"

	"github.com/verte-zerg/speedtype/internal/model"
)

func TestGenerateCountAndVocabulary(t *testing.T) {
	vocab := []string{"one", "two", "three"}
	allowed := map[string]bool{"one": true, "two": true, "three": true}
	words := NewWithSeed(1).Generate(vocab, 50, 0, 0, nil)
	if len(words) != 50 {
		t.Fatalf("expected 50 words, got %d", len(words))
	}
	for _, w := range words {
		if !allowed[w] {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestGenerateAllowsRepeats(t *testing.T) {
	words := NewWithSeed(7).Generate([]string{"only"}, 4, 0, 0, nil)
	if strings.Join(words, " ") != "only only only only" {
		t.Fatalf("expected repeated word, got %v", words)
	}
}

func TestGenerateCoversVocabulary(t *testing.T) {
	vocab := []string{"a", "b", "c", "d"}
	counts := map[string]int{}
	for _, w := range NewWithSeed(42).Generate(vocab, 4000, 0, 0, nil) {
		counts[w]++
	}
	for _, w := range vocab {
		if counts[w] < 800 || counts[w] > 1200 {
			t.Fatalf("word %q drawn %d times, expected roughly uniform", w, counts[w])
		}
	}
}

func TestGenerateCapsAndPunct(t *testing.T) {
	words := NewWithSeed(3).Generate([]string{"word"}, 20, 1, 1, []rune{'.'})
	for _, w := range words {
		if !unicode.IsUpper([]rune(w)[0]) || !strings.HasSuffix(w, ".") {
			t.Fatalf("expected capitalized punctuated word, got %q", w)
		}
	}
}

func TestGenerateWeightedPrefersWeak(t *testing.T) {
	vocab := []string{"zzz", "aaa"}
	weak := map[rune]struct{}{'z': {}}
	counts := map[string]int{}
	for _, w := range NewWithSeed(5).GenerateWeighted(vocab, 1000, 0, 0, nil, weak, 10) {
		counts[w]++
	}
	if counts["zzz"] <= counts["aaa"]*5 {
		t.Fatalf("expected weak word to dominate, got %v", counts)
	}
}

func TestSourceWords(t *testing.T) {
	src := NewSource(NewWithSeed(9), []string{"cat", "dog"}, model.Config{WeakFactor: 2})
	if got := src.Words(5); len(got) != 5 {
		t.Fatalf("expected 5 words, got %d", len(got))
	}
	if got := src.Words(0); got != nil {
		t.Fatalf("expected nil for zero count, got %v", got)
	}
	src.SetWeakChars(map[rune]struct{}{'d': {}})
	if got := src.Words(3); len(got) != 3 {
		t.Fatalf("expected 3 weighted words, got %d", len(got))
	}
}
