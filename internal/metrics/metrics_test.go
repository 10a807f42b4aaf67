package metrics

import (
	"testing"
	"time"
)

func TestWPM(t *testing.T) {
	if got := WPM(50, 60*time.Second); got != 10 {
		t.Fatalf("expected 10 WPM, got %d", got)
	}
	if got := WPM(50, 0); got != 0 {
		t.Fatalf("expected 0 WPM for zero elapsed, got %d", got)
	}
	if got := WPM(27, 30*time.Second); got != 11 {
		t.Fatalf("expected 11 WPM after rounding, got %d", got)
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(0, 0); got != 0 {
		t.Fatalf("expected 0 accuracy without input, got %v", got)
	}
	if got := Accuracy(3, 1); got != 75 {
		t.Fatalf("expected 75, got %v", got)
	}
	if got := Accuracy(9, 0); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestProgressCaps(t *testing.T) {
	if got := Progress(5*time.Second, 10*time.Second); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := Progress(12*time.Second, 10*time.Second); got != 100 {
		t.Fatalf("expected progress capped at 100, got %v", got)
	}
	if got := Progress(time.Second, 0); got != 0 {
		t.Fatalf("expected 0 with no duration, got %v", got)
	}
}

func TestComputeClampsNegativeElapsed(t *testing.T) {
	snap := Compute(10, 0, -time.Second, 10*time.Second)
	if snap.Elapsed != 0 || snap.WPM != 0 || snap.Progress != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", snap.Accuracy)
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "00:00",
		9500 * time.Millisecond: "00:09",
		75 * time.Second:        "01:15",
		-time.Second:            "00:00",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Fatalf("FormatClock(%v) = %q, want %q", in, got, want)
		}
	}
}
