package stats

import (
	"context"

	"github.com/verte-zerg/speedtype/internal/model"
)

// Source is the read side of the result store.
type Source interface {
	ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error)
	ListCharAggregates(ctx context.Context, resultIDs []int64) ([]model.CharAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Results         []model.Result
	WindowResultIDs []int64
	CharAggsAll     []model.CharAggregate
	CharAggsWindow  []model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	results, err := src.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	allIDs := resultIDs(results)
	windowIDs := lastResultIDs(results, cfg.CurveWindow)
	charAggsAll, err := src.ListCharAggregates(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	charAggsWindow, err := src.ListCharAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Results:         results,
		WindowResultIDs: windowIDs,
		CharAggsAll:     charAggsAll,
		CharAggsWindow:  charAggsWindow,
	}, nil
}

func resultIDs(results []model.Result) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func lastResultIDs(results []model.Result, window int) []int64 {
	if window <= 0 || len(results) <= window {
		return resultIDs(results)
	}
	return resultIDs(results[len(results)-window:])
}
