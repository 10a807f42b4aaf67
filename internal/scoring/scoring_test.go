package scoring

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		typed         string
		target        string
		wantCorrect   int
		wantIncorrect int
	}{
		{name: "exact", typed: "cat", target: "cat", wantCorrect: 3},
		{name: "substitution", typed: "cot", target: "cat", wantCorrect: 2, wantIncorrect: 1},
		{name: "missing trailing char", typed: "ca", target: "cat", wantCorrect: 2, wantIncorrect: 1},
		{name: "excess char", typed: "cats", target: "cat", wantCorrect: 3, wantIncorrect: 1},
		{name: "empty typed", typed: "", target: "cat", wantIncorrect: 3},
		{name: "empty target", typed: "", target: ""},
		{name: "shifted", typed: "act", target: "cat", wantCorrect: 1, wantIncorrect: 2},
		{name: "multibyte", typed: "naïve", target: "naive", wantCorrect: 4, wantIncorrect: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.typed, tt.target)
			if got.Correct != tt.wantCorrect || got.Incorrect != tt.wantIncorrect {
				t.Fatalf("Score(%q, %q) = %+v, want %d/%d", tt.typed, tt.target, got, tt.wantCorrect, tt.wantIncorrect)
			}
		})
	}
}

func TestScoreTotalIsLongerLength(t *testing.T) {
	words := []string{"", "a", "ab", "abc", "xbc", "abcd", "zzzzzz", "b"}
	for _, typed := range words {
		for _, target := range words {
			got := Score(typed, target).Total()
			want := len(typed)
			if len(target) > want {
				want = len(target)
			}
			if got != want {
				t.Fatalf("Score(%q, %q).Total() = %d, want %d", typed, target, got, want)
			}
		}
	}
}

func TestChars(t *testing.T) {
	out := Chars("cots", "cat")
	if len(out) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(out))
	}
	want := []CharOutcome{{'c', true}, {'a', false}, {'t', true}}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("outcome %d = %+v, want %+v", i, out[i], want[i])
		}
	}
}
