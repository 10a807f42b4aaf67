// Package vocab resolves the vocabulary a practice session draws from.
package vocab

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/verte-zerg/speedtype/internal/wordlist"
)

//go:embed words/*.txt
var builtin embed.FS

// Builtin names the source of compiled-in vocabularies.
const Builtin = "builtin"

// BuiltinLanguages lists the compiled-in vocabularies.
func BuiltinLanguages() []string {
	entries, err := builtin.ReadDir("words")
	if err != nil {
		return nil
	}
	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		langs = append(langs, strings.TrimSuffix(entry.Name(), ".txt"))
	}
	sort.Strings(langs)
	return langs
}

// BuiltinWords returns the compiled-in vocabulary for lang.
func BuiltinWords(lang string) ([]string, error) {
	file, err := builtin.Open("words/" + lang + ".txt")
	if err != nil {
		return nil, fmt.Errorf("no built-in vocabulary for %q", lang)
	}
	defer func() {
		_ = file.Close()
	}()
	return wordlist.ReadWords(file)
}

// Load returns the vocabulary and the place it came from. An explicit path
// wins, then an installed list <dir>/<lang>.txt, then the built-in list.
func Load(lang, path, dir string) ([]string, string, error) {
	if path == "" && dir != "" {
		candidate := filepath.Join(dir, lang+".txt")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path == "" {
		words, err := BuiltinWords(lang)
		if err != nil {
			return nil, "", err
		}
		return words, Builtin, nil
	}
	words, err := wordlist.LoadWords(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	words, err = wordlist.Apply(words, wordlist.FilterForLang(lang))
	if err != nil {
		return nil, "", fmt.Errorf("word list %s: %w", path, err)
	}
	return words, path, nil
}

// InstalledLanguages lists <lang>.txt files in dir.
func InstalledLanguages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read wordlist directory: %w", err)
	}
	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".txt"))
	}
	sort.Strings(langs)
	return langs, nil
}
