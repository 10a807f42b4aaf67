// Package session implements the timed typing session: word commits are
// scored, a recurring clock tick refreshes derived metrics, and the session
// ends when its duration elapses or its words run out.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/scoring"
)

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateIdle, StateRunning, StateComplete} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now.
var SystemClock Clock = systemClock{}

// WordSource supplies the target words of a new session.
type WordSource interface {
	Words(count int) []string
}

// Sink persists a finished session. Its outcome never changes the session.
type Sink interface {
	SaveResult(ctx context.Context, result model.Result, chars []model.CharStats) (int64, error)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithScheduler sets where new timers are handed for ticking.
func WithScheduler(sc Scheduler) Option {
	return func(s *Session) { s.sched = sc }
}

// WithSink sets the result persistence collaborator.
func WithSink(sink Sink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithErrorReporter receives collaborator failures.
func WithErrorReporter(fn func(error)) Option {
	return func(s *Session) { s.report = fn }
}

// WithCompletion is called once per completed session.
func WithCompletion(fn func(model.Result)) Option {
	return func(s *Session) { s.onComplete = fn }
}

// Snapshot is the state exposed to a presentation layer.
type Snapshot struct {
	State          State         `json:"state"`
	WPM            int           `json:"wpm"`
	Accuracy       float64       `json:"accuracy"`
	Progress       float64       `json:"progress"`
	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"elapsedTime"`
	WordIndex      int           `json:"currentWordIndex"`
	TotalWords     int           `json:"totalWords"`
	CorrectChars   int           `json:"correctChars"`
	IncorrectChars int           `json:"incorrectChars"`
}

type charCount struct {
	correct   int
	incorrect int
}

// Session is one timed typing attempt. It is not safe for concurrent use;
// keystrokes and ticks must be delivered from the same goroutine.
type Session struct {
	cfg        model.Config
	source     WordSource
	clock      Clock
	sched      Scheduler
	sink       Sink
	report     func(error)
	onComplete func(model.Result)

	state     State
	words     []string
	typed     []string
	input     string
	startedAt time.Time
	elapsed   time.Duration
	correct   int
	incorrect int
	chars     map[rune]*charCount
	live      metrics.Snapshot

	timer    *Timer
	timerSeq uint64
	result   *model.Result
}

// New creates an idle session with a freshly generated word sequence.
func New(cfg model.Config, source WordSource, opts ...Option) *Session {
	s := &Session{
		cfg:    cfg,
		source: source,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

// Start moves an idle session to running. It returns false when the session
// was not idle.
func (s *Session) Start() bool {
	if s.state != StateIdle {
		return false
	}
	s.begin()
	return true
}

// Reset discards all progress and returns to idle with new words.
func (s *Session) Reset() {
	s.stopTimer()
	s.reset()
}

// End completes a running session immediately.
func (s *Session) End() bool {
	if s.state != StateRunning {
		return false
	}
	s.elapsed = s.sinceStart()
	s.recompute()
	s.complete()
	return true
}

// Close cancels the pending tick recurrence. The session must not be used
// afterwards.
func (s *Session) Close() {
	s.stopTimer()
}

// SubmitKeystroke takes the full current value of the input field. A value
// ending in a space commits the word it holds; anything else is the word in
// progress. The first non-empty value starts an idle session.
func (s *Session) SubmitKeystroke(value string) {
	switch s.state {
	case StateComplete:
		return
	case StateIdle:
		if value == "" {
			return
		}
		s.begin()
	}
	if !strings.HasSuffix(value, " ") {
		s.input = value
		return
	}
	s.commit(strings.TrimSpace(value))
}

// Tick applies one clock tick from the timer with the given id. Ticks from a
// stopped or replaced timer, or outside StateRunning, are ignored.
func (s *Session) Tick(timerID uint64) bool {
	if s.state != StateRunning || s.timer == nil || s.timer.ID() != timerID || s.timer.Stopped() {
		return false
	}
	s.elapsed = s.sinceStart()
	s.recompute()
	if s.elapsed >= s.cfg.Duration || s.exhausted() {
		s.complete()
	}
	return true
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Timer returns the active tick handle, or nil when not running.
func (s *Session) Timer() *Timer {
	return s.timer
}

// Words returns the target words.
func (s *Session) Words() []string {
	return append([]string(nil), s.words...)
}

// Typed returns the committed words.
func (s *Session) Typed() []string {
	return append([]string(nil), s.typed...)
}

// Input returns the uncommitted word in progress.
func (s *Session) Input() string {
	return s.input
}

// Duration returns the session time bound.
func (s *Session) Duration() time.Duration {
	return s.cfg.Duration
}

// Snapshot returns the metrics as of the latest tick or commit.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:          s.state,
		WPM:            s.live.WPM,
		Accuracy:       s.live.Accuracy,
		Progress:       s.live.Progress,
		Elapsed:        s.live.Elapsed,
		ElapsedSeconds: s.live.Elapsed.Seconds(),
		WordIndex:      len(s.typed),
		TotalWords:     len(s.words),
		CorrectChars:   s.correct,
		IncorrectChars: s.incorrect,
	}
}

// Result returns the finalized record once the session is complete.
func (s *Session) Result() (model.Result, bool) {
	if s.result == nil {
		return model.Result{}, false
	}
	return *s.result, true
}

func (s *Session) reset() {
	s.state = StateIdle
	s.words = s.source.Words(s.cfg.Words)
	s.typed = nil
	s.input = ""
	s.startedAt = time.Time{}
	s.elapsed = 0
	s.correct = 0
	s.incorrect = 0
	s.chars = map[rune]*charCount{}
	s.result = nil
	s.recompute()
}

func (s *Session) begin() {
	s.state = StateRunning
	s.startedAt = s.clock.Now()
	s.elapsed = 0
	s.timerSeq++
	s.timer = newTimer(s.timerSeq, s.cfg.Tick)
	s.recompute()
	if s.sched != nil {
		s.sched.Schedule(s.timer)
	}
}

func (s *Session) commit(typed string) {
	if s.exhausted() {
		return
	}
	target := s.words[len(s.typed)]
	score := scoring.Score(typed, target)
	s.correct += score.Correct
	s.incorrect += score.Incorrect
	for _, outcome := range scoring.Chars(typed, target) {
		entry, ok := s.chars[outcome.Char]
		if !ok {
			entry = &charCount{}
			s.chars[outcome.Char] = entry
		}
		if outcome.Correct {
			entry.correct++
		} else {
			entry.incorrect++
		}
	}
	s.typed = append(s.typed, typed)
	s.input = ""
	s.elapsed = s.sinceStart()
	s.recompute()
	if s.exhausted() {
		s.complete()
	}
}

func (s *Session) complete() {
	if s.state != StateRunning {
		return
	}
	s.stopTimer()
	s.state = StateComplete
	s.live.Elapsed = s.elapsed

	result := model.Result{
		User:            s.cfg.User,
		Lang:            s.cfg.Lang,
		StartedAt:       s.startedAt,
		EndedAt:         s.startedAt.Add(s.elapsed),
		Words:           len(s.words),
		WPM:             s.live.WPM,
		Accuracy:        s.live.Accuracy,
		DurationSeconds: s.elapsed.Seconds(),
		CorrectChars:    s.correct,
		IncorrectChars:  s.incorrect,
		WordsCompleted:  len(s.typed),
	}
	s.result = &result

	if s.sink != nil {
		id, err := s.sink.SaveResult(context.Background(), result, s.charStats())
		if err != nil {
			s.fail(fmt.Errorf("failed to save result: %w", err))
		} else {
			s.result.ID = id
		}
	}
	if s.onComplete != nil {
		s.onComplete(*s.result)
	}
}

func (s *Session) charStats() []model.CharStats {
	out := make([]model.CharStats, 0, len(s.chars))
	for ch, entry := range s.chars {
		out = append(out, model.CharStats{
			Char:      string(ch),
			Correct:   entry.correct,
			Incorrect: entry.incorrect,
		})
	}
	return out
}

func (s *Session) recompute() {
	s.live = metrics.Compute(s.correct, s.incorrect, s.elapsed, s.cfg.Duration)
}

func (s *Session) exhausted() bool {
	return len(s.typed) >= len(s.words)
}

func (s *Session) sinceStart() time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	d := s.clock.Now().Sub(s.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

func (s *Session) stopTimer() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
}

func (s *Session) fail(err error) {
	if s.report != nil {
		s.report(err)
	}
}
