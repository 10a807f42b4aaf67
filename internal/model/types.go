// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Lang         string
	User         string
	Words        int
	Duration     time.Duration
	Tick         time.Duration
	WordListPath string
	CapsPct      float64
	PunctPct     float64
	PunctSet     string
	FocusWeak    bool
	WeakTop      int
	WeakFactor   float64
	WeakWindow   int
}

// StoreConfig selects the result database.
type StoreConfig struct {
	Driver string
	DSN    string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	User        string
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Result is the finalized snapshot of one completed session.
type Result struct {
	ID              int64     `db:"id" json:"id"`
	User            string    `db:"user_name" json:"user"`
	Lang            string    `db:"lang" json:"lang"`
	StartedAt       time.Time `db:"-" json:"startedAt"`
	EndedAt         time.Time `db:"-" json:"endedAt"`
	Words           int       `db:"words" json:"words"`
	WPM             int       `db:"wpm" json:"wpm"`
	Accuracy        float64   `db:"accuracy" json:"accuracy"`
	DurationSeconds float64   `db:"duration_seconds" json:"durationSeconds"`
	CorrectChars    int       `db:"correct_chars" json:"correctChars"`
	IncorrectChars  int       `db:"incorrect_chars" json:"incorrectChars"`
	WordsCompleted  int       `db:"words_completed" json:"wordsCompleted"`
}

// CharsTyped returns the number of scored characters.
func (r Result) CharsTyped() int {
	return r.CorrectChars + r.IncorrectChars
}

// CharStats stores per-character outcomes for a session.
type CharStats struct {
	Char      string
	Correct   int
	Incorrect int
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char      string `db:"ch"`
	Correct   int    `db:"correct"`
	Incorrect int    `db:"incorrect"`
}
