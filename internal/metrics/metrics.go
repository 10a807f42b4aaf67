// Package metrics derives speed and accuracy from cumulative totals.
package metrics

import (
	"fmt"
	"math"
	"time"
)

// CharsPerWord is the standard normalization used for WPM.
const CharsPerWord = 5.0

// Snapshot holds the metrics derived at one point in a session.
type Snapshot struct {
	WPM      int
	Accuracy float64
	Progress float64
	Elapsed  time.Duration
}

// WPM returns round((correct/5) / minutes), or 0 when no time has elapsed.
func WPM(correct int, elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	minutes := elapsed.Seconds() / 60
	return int(math.Round((float64(correct) / CharsPerWord) / minutes))
}

// Accuracy returns the correct share as a percentage, or 0 with no input.
func Accuracy(correct, incorrect int) float64 {
	den := correct + incorrect
	if den <= 0 {
		return 0
	}
	return float64(correct) / float64(den) * 100
}

// Progress returns elapsed as a percentage of duration, capped at 100.
func Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 || elapsed <= 0 {
		return 0
	}
	return math.Min(float64(elapsed)/float64(duration)*100, 100)
}

// Compute derives every metric fresh from the totals.
func Compute(correct, incorrect int, elapsed, duration time.Duration) Snapshot {
	if elapsed < 0 {
		elapsed = 0
	}
	return Snapshot{
		WPM:      WPM(correct, elapsed),
		Accuracy: Accuracy(correct, incorrect),
		Progress: Progress(elapsed, duration),
		Elapsed:  elapsed,
	}
}

// FormatClock renders a duration as MM:SS.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
