// Package scoring compares a committed word against its target.
package scoring

// WordScore is the outcome of one committed word.
type WordScore struct {
	Correct   int
	Incorrect int
}

// Total returns the number of scored positions.
func (w WordScore) Total() int {
	return w.Correct + w.Incorrect
}

// CharOutcome records whether one target character was typed correctly.
type CharOutcome struct {
	Char    rune
	Correct bool
}

// Score compares typed to target rune by rune. Every target position that is
// not matched counts as incorrect, and so does every rune typed past the end
// of the target, so Correct+Incorrect == max(len(typed), len(target)).
func Score(typed, target string) WordScore {
	t := []rune(typed)
	want := []rune(target)
	var s WordScore
	for i, r := range want {
		if i < len(t) && t[i] == r {
			s.Correct++
		} else {
			s.Incorrect++
		}
	}
	if len(t) > len(want) {
		s.Incorrect += len(t) - len(want)
	}
	return s
}

// Chars reports the outcome for each target character. Excess typed runes
// have no target character and are not reported.
func Chars(typed, target string) []CharOutcome {
	t := []rune(typed)
	want := []rune(target)
	out := make([]CharOutcome, 0, len(want))
	for i, r := range want {
		out = append(out, CharOutcome{Char: r, Correct: i < len(t) && t[i] == r})
	}
	return out
}
