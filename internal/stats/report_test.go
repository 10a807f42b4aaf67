package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(model.StoreConfig{DSN: filepath.Join(dir, "speedtype.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		result := model.Result{
			User:            "anonymous",
			Lang:            "en",
			StartedAt:       start,
			EndedAt:         start.Add(10 * time.Second),
			Words:           5,
			WPM:             30,
			Accuracy:        90,
			DurationSeconds: 10,
			CorrectChars:    25,
			IncorrectChars:  3,
			WordsCompleted:  5,
		}
		charStats := []model.CharStats{
			{Char: "a", Correct: 5, Incorrect: 0},
			{Char: "b", Correct: 4, Incorrect: 1},
		}
		id, err := st.SaveResult(ctx, result, charStats)
		if err != nil {
			t.Fatalf("save result: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Lang:        "en",
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].ID != ids[1] || report.Results[1].ID != ids[2] {
		t.Fatalf("unexpected result ids: %+v", report.Results)
	}
	if len(report.WindowResultIDs) != 1 || report.WindowResultIDs[0] != ids[2] {
		t.Fatalf("unexpected window ids: %v", report.WindowResultIDs)
	}
	if len(report.CharAggsAll) != 2 || len(report.CharAggsWindow) != 2 {
		t.Fatalf("expected char aggregates, got %+v / %+v", report.CharAggsAll, report.CharAggsWindow)
	}
	for _, agg := range report.CharAggsWindow {
		if agg.Char == "a" && agg.Correct != 5 {
			t.Fatalf("expected window aggregate over one result, got %+v", agg)
		}
	}
}
