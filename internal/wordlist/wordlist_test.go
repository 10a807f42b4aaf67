package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadWordsSkipsBlanksCommentsAndRepeats(t *testing.T) {
	input := "# header\nthe\n\n  be \nthe\nto\n"
	words, err := ReadWords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read words: %v", err)
	}
	if strings.Join(words, ",") != "the,be,to" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestLoadWordsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadWords(path); err == nil {
		t.Fatalf("expected error for empty word list")
	}
}

func TestLoadWordsMissingFile(t *testing.T) {
	if _, err := LoadWords(filepath.Join(t.TempDir(), "missing.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
