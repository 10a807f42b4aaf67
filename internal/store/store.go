// Package store handles SQL persistence of session results.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver.

	"github.com/verte-zerg/speedtype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a result id does not exist.
var ErrNotFound = errors.New("result not found")

// Store wraps SQL access for session results.
type Store struct {
	db *sqlx.DB
}

type resultRow struct {
	ID              int64   `db:"id"`
	User            string  `db:"user_name"`
	Lang            string  `db:"lang"`
	StartedAt       string  `db:"started_at"`
	EndedAt         string  `db:"ended_at"`
	Words           int     `db:"words"`
	WPM             int     `db:"wpm"`
	Accuracy        float64 `db:"accuracy"`
	DurationSeconds float64 `db:"duration_seconds"`
	CorrectChars    int     `db:"correct_chars"`
	IncorrectChars  int     `db:"incorrect_chars"`
	WordsCompleted  int     `db:"words_completed"`
}

const resultColumns = `id, user_name, lang, started_at, ended_at, words, wpm, accuracy,
	duration_seconds, correct_chars, incorrect_chars, words_completed`

// Open opens or creates the database and applies migrations. An empty driver
// means SQLite, whose DSN is a file path.
func Open(cfg model.StoreConfig) (*Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverSQLite
	}
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, err
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	db, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	idColumn, floatType := "id INTEGER PRIMARY KEY", "REAL"
	if s.db.DriverName() == DriverPostgres {
		idColumn, floatType = "id BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION"
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS results (
			%s,
			user_name TEXT NOT NULL,
			lang TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			words INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy %s NOT NULL,
			duration_seconds %s NOT NULL,
			correct_chars INTEGER NOT NULL,
			incorrect_chars INTEGER NOT NULL,
			words_completed INTEGER NOT NULL
		);`, idColumn, floatType, floatType),
		`CREATE TABLE IF NOT EXISTS result_char_stats (
			result_id BIGINT NOT NULL,
			ch TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			PRIMARY KEY (result_id, ch)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_user ON results(user_name);`,
		`CREATE INDEX IF NOT EXISTS idx_result_char_stats_ch ON result_char_stats(ch);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores a completed session and its per-character stats.
func (s *Store) SaveResult(ctx context.Context, result model.Result, chars []model.CharStats) (id int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	err = tx.QueryRowxContext(ctx, tx.Rebind(
		`INSERT INTO results (user_name, lang, started_at, ended_at, words, wpm, accuracy, duration_seconds, correct_chars, incorrect_chars, words_completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		result.User,
		result.Lang,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.EndedAt.UTC().Format(time.RFC3339Nano),
		result.Words,
		result.WPM,
		result.Accuracy,
		result.DurationSeconds,
		result.CorrectChars,
		result.IncorrectChars,
		result.WordsCompleted,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	if len(chars) > 0 {
		stmt, perr := tx.PreparexContext(ctx, tx.Rebind(
			`INSERT INTO result_char_stats (result_id, ch, correct, incorrect) VALUES (?, ?, ?, ?)`))
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range chars {
			if _, err = stmt.ExecContext(ctx, id, cs.Char, cs.Correct, cs.Incorrect); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListResults returns results filtered by the stats config, oldest first.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.Result, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.User != "" {
		clauses = append(clauses, "user_name = ?")
		args = append(args, cfg.User)
	}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT %s FROM results WHERE %s ORDER BY ended_at DESC, id DESC`,
		resultColumns, strings.Join(clauses, " AND "))
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}

	var rows []resultRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	results := make([]model.Result, len(rows))
	for i, row := range rows {
		res, err := row.toResult()
		if err != nil {
			return nil, err
		}
		results[len(rows)-1-i] = res
	}
	return results, nil
}

// DeleteResult removes a result and its character stats.
func (s *Store) DeleteResult(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM result_char_stats WHERE result_id = ?`), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM results WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	return tx.Commit()
}

// GetWeakChars aggregates character stats over the most recent results.
func (s *Store) GetWeakChars(ctx context.Context, window int, user, lang string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT id FROM results
		WHERE (? = '' OR user_name = ?) AND (? = '' OR lang = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.ch, SUM(cs.correct) AS correct, SUM(cs.incorrect) AS incorrect
	FROM result_char_stats cs
	JOIN recent r ON r.id = cs.result_id
	GROUP BY cs.ch`

	var result []model.CharAggregate
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), user, user, lang, lang, window); err != nil {
		return nil, err
	}
	return result, nil
}

// ListCharAggregates aggregates per-character stats across results.
func (s *Store) ListCharAggregates(ctx context.Context, resultIDs []int64) ([]model.CharAggregate, error) {
	if len(resultIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT ch, SUM(correct) AS correct, SUM(incorrect) AS incorrect
		FROM result_char_stats
		WHERE result_id IN (?)
		GROUP BY ch`, resultIDs)
	if err != nil {
		return nil, err
	}
	var result []model.CharAggregate
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return result, nil
}

func (r resultRow) toResult() (model.Result, error) {
	started, err := time.Parse(time.RFC3339Nano, r.StartedAt)
	if err != nil {
		return model.Result{}, err
	}
	ended, err := time.Parse(time.RFC3339Nano, r.EndedAt)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{
		ID:              r.ID,
		User:            r.User,
		Lang:            r.Lang,
		StartedAt:       started,
		EndedAt:         ended,
		Words:           r.Words,
		WPM:             r.WPM,
		Accuracy:        r.Accuracy,
		DurationSeconds: r.DurationSeconds,
		CorrectChars:    r.CorrectChars,
		IncorrectChars:  r.IncorrectChars,
		WordsCompleted:  r.WordsCompleted,
	}, nil
}
