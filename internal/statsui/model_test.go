package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/speedtype/internal/model"
)

type fakeStore struct {
	results []model.Result
	aggs    []model.CharAggregate
	deleted []int64
	lastCfg model.StatsConfig
}

func (f *fakeStore) ListResults(_ context.Context, cfg model.StatsConfig) ([]model.Result, error) {
	f.lastCfg = cfg
	return f.results, nil
}

func (f *fakeStore) ListCharAggregates(context.Context, []int64) ([]model.CharAggregate, error) {
	return f.aggs, nil
}

func (f *fakeStore) DeleteResult(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	kept := f.results[:0]
	for _, r := range f.results {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.results = kept
	return nil
}

func sampleStore() *fakeStore {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeStore{
		results: []model.Result{
			{ID: 1, WPM: 40, Accuracy: 90, EndedAt: base, DurationSeconds: 10, Words: 5, WordsCompleted: 5},
			{ID: 2, WPM: 60, Accuracy: 95, EndedAt: base.Add(time.Hour), DurationSeconds: 10, Words: 5, WordsCompleted: 4},
		},
		aggs: []model.CharAggregate{{Char: "e", Correct: 8, Incorrect: 2}},
	}
}

func TestOverviewShowsSummary(t *testing.T) {
	m := NewModel(sampleStore(), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Best WPM", "60"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestDeleteSelectedResult(t *testing.T) {
	st := sampleStore()
	m := NewModel(st, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if len(st.deleted) != 1 || st.deleted[0] != 2 {
		t.Fatalf("expected newest result deleted, got %v", st.deleted)
	}
	if len(m.report.Results) != 1 {
		t.Fatalf("expected report refreshed, got %d results", len(m.report.Results))
	}
	if !strings.Contains(m.status, "Deleted result 2") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestApplyFilter(t *testing.T) {
	st := sampleStore()
	m := NewModel(st, model.StatsConfig{CurveWindow: 5})
	m.filterInputs[filterLang].SetValue("en")
	m.filterInputs[filterUser].SetValue("ana")
	m.filterInputs[filterSince].SetValue("2026-01-02")
	m.filterInputs[filterLast].SetValue("7")
	m.filterInputs[filterWindow].SetValue("3")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	if m.cfg.Lang != "en" || m.cfg.User != "ana" || m.cfg.Last != 7 || m.cfg.CurveWindow != 3 || m.cfg.Since == nil {
		t.Fatalf("unexpected config: %+v", m.cfg)
	}

	m.filterInputs[filterWindow].SetValue("0")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for zero window")
	}
	m.filterInputs[filterWindow].SetValue("3")
	m.filterInputs[filterSince].SetValue("yesterday")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for bad date")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{20, 25, 15},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}
