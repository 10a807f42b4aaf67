// Package stats contains history statistics and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of results.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	TotalTime   time.Duration
	TotalChars  int
}

// Summarize computes averages and bests across results.
func Summarize(results []model.Result) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}
	var totalWPM, totalAcc float64
	for _, r := range results {
		totalWPM += float64(r.WPM)
		totalAcc += r.Accuracy
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
		s.TotalTime += time.Duration(r.DurationSeconds * float64(time.Second))
		s.TotalChars += r.CharsTyped()
	}
	s.Sessions = len(results)
	s.AvgWPM = totalWPM / float64(len(results))
	s.AvgAccuracy = totalAcc / float64(len(results))
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample stretches or shrinks values to width points.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	step := float64(len(values)) / float64(width)
	for i := range out {
		start := int(float64(i) * step)
		end := int(float64(i+1) * step)
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// CurveSeries returns the per-result WPM and accuracy series smoothed by window.
func CurveSeries(results []model.Result, window int) (wpm, accuracy []float64) {
	wpm = make([]float64, len(results))
	accuracy = make([]float64, len(results))
	for i, r := range results {
		wpm[i] = float64(r.WPM)
		accuracy[i] = r.Accuracy
	}
	return MovingAverage(wpm, window), MovingAverage(accuracy, window)
}

// RenderSummary prints a summary for results.
func RenderSummary(w io.Writer, results []model.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	s := Summarize(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Total Time: %s", metrics.FormatClock(s.TotalTime)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines no wider than width.
func RenderCurves(w io.Writer, results []model.Result, window, width int) error {
	if len(results) == 0 {
		return nil
	}
	wpm, acc := CurveSeries(results, window)
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", window); err != nil {
		return err
	}
	for _, series := range []struct {
		name   string
		values []float64
		unit   string
	}{
		{name: "WPM", values: wpm},
		{name: "Accuracy", values: acc, unit: "%"},
	} {
		lo, hi := minMax(series.values)
		label := fmt.Sprintf("%-8s %6.1f%s-%.1f%s ", series.name, lo, series.unit, hi, series.unit)
		line := Sparkline(Resample(series.values, width-len(label)))
		if _, err := fmt.Fprintf(w, "%s|%s|\n", label, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRows formats results newest first for tables.
func HistoryRows(results []model.Result) ([]string, [][]string) {
	headers := []string{"ID", "Date", "WPM", "Accuracy", "Time", "Words", "Errors"}
	rows := make([][]string, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%.1f%%", r.Accuracy),
			metrics.FormatClock(time.Duration(r.DurationSeconds * float64(time.Second))),
			fmt.Sprintf("%d/%d", r.WordsCompleted, r.Words),
			fmt.Sprintf("%d", r.IncorrectChars),
		})
	}
	return headers, rows
}

// RenderHistoryTable prints results newest first.
func RenderHistoryTable(w io.Writer, results []model.Result) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "History"); err != nil {
		return err
	}
	headers, rows := HistoryRows(results)
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CharRows formats per-character aggregates, lowest accuracy first.
func CharRows(aggs []model.CharAggregate) ([]string, [][]string) {
	sorted := make([]model.CharAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := accuracy(sorted[i]), accuracy(sorted[j])
		if ai == aj {
			return sorted[i].Char < sorted[j].Char
		}
		return ai < aj
	})
	headers := []string{"Char", "Accuracy", "Correct", "Incorrect"}
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, []string{
			agg.Char,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	return headers, rows
}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character (Windowed)"); err != nil {
		return err
	}
	headers, rows := CharRows(aggs)
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
