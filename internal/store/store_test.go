package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(model.StoreConfig{DSN: filepath.Join(t.TempDir(), "nested", "speedtype.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleResult(user, lang string, i int) model.Result {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
	return model.Result{
		User:            user,
		Lang:            lang,
		StartedAt:       start,
		EndedAt:         start.Add(10 * time.Second),
		Words:           5,
		WPM:             40 + i,
		Accuracy:        95.5,
		DurationSeconds: 10,
		CorrectChars:    30 + i,
		IncorrectChars:  2,
		WordsCompleted:  5,
	}
}

func TestSaveAndListResults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := st.SaveResult(ctx, sampleResult("ana", "en", i), []model.CharStats{
			{Char: "a", Correct: 3, Incorrect: 1},
		})
		if err != nil {
			t.Fatalf("save result: %v", err)
		}
		ids = append(ids, id)
	}
	if _, err := st.SaveResult(ctx, sampleResult("bo", "de", 9), nil); err != nil {
		t.Fatalf("save result: %v", err)
	}

	results, err := st.ListResults(ctx, model.StatsConfig{User: "ana"})
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.ID != ids[i] {
			t.Fatalf("expected oldest first, got ids %d at %d", r.ID, i)
		}
	}
	first := results[0]
	if first.WPM != 40 || first.Accuracy != 95.5 || first.CorrectChars != 30 || first.WordsCompleted != 5 {
		t.Fatalf("unexpected round trip: %+v", first)
	}
	if !first.StartedAt.Equal(sampleResult("ana", "en", 0).StartedAt) {
		t.Fatalf("unexpected start time: %v", first.StartedAt)
	}

	last, err := st.ListResults(ctx, model.StatsConfig{User: "ana", Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[0].ID != ids[1] || last[1].ID != ids[2] {
		t.Fatalf("unexpected last results: %+v", last)
	}

	since := time.Date(2024, 3, 1, 13, 30, 0, 0, time.UTC)
	recent, err := st.ListResults(ctx, model.StatsConfig{Lang: "en", Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != ids[2] {
		t.Fatalf("unexpected since results: %+v", recent)
	}

	all, err := st.ListResults(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 results, got %d", len(all))
	}
}

func TestCharAggregatesAndWeakChars(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := st.SaveResult(ctx, sampleResult("ana", "en", i), []model.CharStats{
			{Char: "a", Correct: 5, Incorrect: 0},
			{Char: "b", Correct: 4, Incorrect: 1},
		})
		if err != nil {
			t.Fatalf("save result: %v", err)
		}
		ids = append(ids, id)
	}

	aggs, err := st.ListCharAggregates(ctx, ids[1:])
	if err != nil {
		t.Fatalf("char aggregates: %v", err)
	}
	byChar := map[string]model.CharAggregate{}
	for _, agg := range aggs {
		byChar[agg.Char] = agg
	}
	if byChar["a"].Correct != 10 || byChar["b"].Incorrect != 2 {
		t.Fatalf("unexpected aggregates: %+v", byChar)
	}

	weak, err := st.GetWeakChars(ctx, 1, "ana", "en")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	if len(weak) != 2 {
		t.Fatalf("expected 2 chars in window, got %+v", weak)
	}
	for _, agg := range weak {
		if agg.Char == "b" && agg.Incorrect != 1 {
			t.Fatalf("expected window of one result, got %+v", agg)
		}
	}
	none, err := st.GetWeakChars(ctx, 0, "", "")
	if err != nil || none != nil {
		t.Fatalf("expected nil for zero window, got %v, %v", none, err)
	}
	empty, err := st.ListCharAggregates(ctx, nil)
	if err != nil || empty != nil {
		t.Fatalf("expected nil for no ids, got %v, %v", empty, err)
	}
}

func TestDeleteResult(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.SaveResult(ctx, sampleResult("ana", "en", 0), []model.CharStats{{Char: "x", Correct: 1}})
	if err != nil {
		t.Fatalf("save result: %v", err)
	}
	if err := st.DeleteResult(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteResult(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	aggs, err := st.ListCharAggregates(ctx, []int64{id})
	if err != nil {
		t.Fatalf("char aggregates: %v", err)
	}
	if len(aggs) != 0 {
		t.Fatalf("expected char stats removed, got %+v", aggs)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(model.StoreConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
