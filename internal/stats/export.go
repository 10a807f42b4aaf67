package stats

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/speedtype/internal/model"
)

const (
	historySheet = "History"
	charsSheet   = "Characters"
)

// ExportXLSX writes the history and character stats to a workbook.
func ExportXLSX(path string, results []model.Result, aggs []model.CharAggregate) error {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the in-memory workbook.
			_ = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header := []any{"ID", "User", "Lang", "Started", "Ended", "WPM", "Accuracy", "Duration (s)", "Correct", "Incorrect", "Words Completed", "Words"}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range results {
		row := []any{
			r.ID, r.User, r.Lang,
			r.StartedAt.UTC().Format(time.RFC3339), r.EndedAt.UTC().Format(time.RFC3339),
			r.WPM, r.Accuracy, r.DurationSeconds,
			r.CorrectChars, r.IncorrectChars, r.WordsCompleted, r.Words,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(charsSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	headers, rows := CharRows(aggs)
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(charsSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range rows {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(charsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
