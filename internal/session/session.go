// Package session tracks one practice session and commits finished sentences.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/mojido/internal/adaptive"
	"github.com/verte-zerg/mojido/internal/mastery"
	"github.com/verte-zerg/mojido/internal/model"
)

// Repository is the persistence a session needs.
type Repository interface {
	LoadProfile(ctx context.Context) (model.UserProfile, error)
	AllMastery(ctx context.Context) ([]model.CharacterMastery, error)
	StartSession(ctx context.Context, token string, at time.Time) (int64, error)
	UpdateSession(ctx context.Context, rec model.SessionRecord) error
	EndSession(ctx context.Context, rec model.SessionRecord, at time.Time) error
	RecordSentenceShown(ctx context.Context, sentenceID string, sessionID int64, difficulty float64, at time.Time) (int64, error)
	LogAttempt(ctx context.Context, a model.AttemptLog) (int64, error)
	CompleteSentence(ctx context.Context, c model.Completion) error
}

// ErrInactive is returned when the session already ended.
var ErrInactive = errors.New("session is not active")

// Session accumulates keystroke timing for the current sentence. It is not
// safe for concurrent use.
type Session struct {
	repo   Repository
	now    func() time.Time
	rec    model.SessionRecord
	active bool
	streak int

	sentenceID string
	historyID  int64
	tokenStart time.Time
	tokenHint  bool
	lastDone   time.Time

	chars     int
	correct   int
	hints     int
	totalMs   int64
	hadErrors bool
	timings   []model.CharTiming
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Start opens a new session row.
func Start(ctx context.Context, repo Repository, opts ...Option) (*Session, error) {
	s := &Session{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	token := uuid.New().String()
	id, err := repo.StartSession(ctx, token, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s.rec = model.SessionRecord{ID: id, Token: token, StartedAt: model.MillisOf(s.now())}
	s.active = true
	return s, nil
}

// Record returns the running session counters.
func (s *Session) Record() model.SessionRecord {
	return s.rec
}

// Streak returns the current run of correct units.
func (s *Session) Streak() int {
	return s.streak
}

// Active reports whether End has not been called yet.
func (s *Session) Active() bool {
	return s.active
}

// SetSentence starts a new sentence, discarding any unfinished one.
func (s *Session) SetSentence(ctx context.Context, sentenceID string, difficulty float64) error {
	if !s.active {
		return ErrInactive
	}
	s.Abandon()
	id, err := s.repo.RecordSentenceShown(ctx, sentenceID, s.rec.ID, difficulty, s.now())
	if err != nil {
		return fmt.Errorf("failed to record sentence: %w", err)
	}
	s.sentenceID = sentenceID
	s.historyID = id
	return nil
}

// BeginToken starts the clock for the current unit. The clock runs from the
// moment the previous unit finished, or from this keystroke for the first
// unit of a sentence. Later calls before the unit is recorded are ignored.
func (s *Session) BeginToken() {
	if !s.tokenStart.IsZero() {
		return
	}
	s.tokenStart = s.lastDone
	if s.tokenStart.IsZero() {
		s.tokenStart = s.now()
	}
}

// SkipToken finishes a typed unit that is not scored, so the next unit's
// clock starts after it.
func (s *Session) SkipToken() {
	s.tokenStart = time.Time{}
	s.tokenHint = false
	s.lastDone = s.now()
}

// MarkHintUsed flags the current unit as answered with help.
func (s *Session) MarkHintUsed() {
	if !s.tokenHint {
		s.tokenHint = true
		s.hints++
	}
}

// HintUsed reports whether the current unit has been flagged.
func (s *Session) HintUsed() bool {
	return s.tokenHint
}

// RecordAttempt records the answer for the current unit and returns the time
// spent on it. typedWrong holds the rejected input when the answer was wrong.
func (s *Session) RecordAttempt(ctx context.Context, unit string, correct bool, typedWrong string) (int64, error) {
	if !s.active {
		return 0, ErrInactive
	}
	var timeMs int64
	var logged *int64
	if !s.tokenStart.IsZero() {
		timeMs = s.now().Sub(s.tokenStart).Milliseconds()
		logged = &timeMs
	}

	s.rec.TotalChars++
	s.chars++
	if correct {
		s.rec.CorrectChars++
		s.correct++
		s.streak++
		s.rec.MaxStreak = max(s.rec.MaxStreak, s.streak)
	} else {
		s.streak = 0
		s.hadErrors = true
	}
	s.totalMs += timeMs
	s.timings = append(s.timings, model.CharTiming{
		Char:     unit,
		TimeMs:   timeMs,
		Correct:  correct,
		HintUsed: s.tokenHint,
	})

	hint := s.tokenHint
	s.tokenHint = false
	s.tokenStart = time.Time{}
	s.lastDone = s.now()

	if s.sentenceID != "" {
		if _, err := s.repo.LogAttempt(ctx, model.AttemptLog{
			SessionID:  s.rec.ID,
			SentenceID: s.sentenceID,
			Char:       unit,
			Correct:    correct,
			TimeMs:     logged,
			HintUsed:   hint,
			TypedWrong: typedWrong,
			CreatedAt:  model.MillisOf(s.now()),
		}); err != nil {
			return timeMs, fmt.Errorf("failed to log attempt: %w", err)
		}
	}
	if err := s.repo.UpdateSession(ctx, s.rec); err != nil {
		return timeMs, fmt.Errorf("failed to update session: %w", err)
	}
	return timeMs, nil
}

// CompleteSentence scores the finished sentence, updates every typed unit and
// the profile, and commits it all at once. ok is false when no sentence is
// in progress.
func (s *Session) CompleteSentence(ctx context.Context) (result model.SentenceResult, ok bool, err error) {
	if !s.active || s.sentenceID == "" {
		return model.SentenceResult{}, false, nil
	}
	now := s.now()

	result = model.SentenceResult{
		SentenceID:   s.sentenceID,
		TotalTimeMs:  s.totalMs,
		HintsUsed:    s.hints,
		TotalChars:   s.chars,
		CorrectChars: s.correct,
		HadErrors:    s.hadErrors,
	}
	if s.chars > 0 {
		result.Accuracy = float64(s.correct) / float64(s.chars)
	}
	if len(s.timings) > 0 {
		result.AvgTimeMs = float64(s.totalMs) / float64(len(s.timings))
	}

	profile, err := s.repo.LoadProfile(ctx)
	if err != nil {
		return model.SentenceResult{}, false, fmt.Errorf("failed to load profile: %w", err)
	}
	rows, err := s.repo.AllMastery(ctx)
	if err != nil {
		return model.SentenceResult{}, false, fmt.Errorf("failed to load mastery: %w", err)
	}
	lookup := adaptive.NewMasteryLookup(rows)

	// Units repeated within the sentence accumulate in typing order.
	var changed []string
	for _, t := range s.timings {
		lookup[t.Char] = mastery.Apply(lookup[t.Char], t, profile.SpeedBaselineMs, now)
		if !contains(changed, t.Char) {
			changed = append(changed, t.Char)
		}
	}
	updated := make([]model.CharacterMastery, 0, len(changed))
	for _, ch := range changed {
		updated = append(updated, lookup[ch])
	}

	next := adaptive.AdjustDifficulty(profile, result).Apply(profile)
	next.SpeedBaselineMs = adaptive.UpdateSpeedBaseline(profile.SpeedBaselineMs, result.AvgTimeMs)
	next.OverallSkill = adaptive.OverallSkill(lookup)
	next.TotalPracticeMs += s.totalMs
	next.CharsTypedTotal += int64(s.chars)

	if err := s.repo.CompleteSentence(ctx, model.Completion{
		HistoryID: s.historyID,
		Result:    result,
		Mastery:   updated,
		Profile:   next,
		Day:       model.DateOf(now),
		At:        now,
	}); err != nil {
		return model.SentenceResult{}, false, fmt.Errorf("failed to complete sentence: %w", err)
	}

	s.resetSentence()
	return result, true, nil
}

// Abandon drops the unfinished sentence without committing any of its timing.
func (s *Session) Abandon() {
	s.resetSentence()
}

// End closes the session and stores its final counters.
func (s *Session) End(ctx context.Context) error {
	if !s.active {
		return nil
	}
	s.Abandon()
	now := s.now()
	if err := s.repo.EndSession(ctx, s.rec, now); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.rec.EndedAt = model.MillisOf(now)
	s.active = false
	return nil
}

func (s *Session) resetSentence() {
	s.sentenceID = ""
	s.historyID = 0
	s.tokenStart = time.Time{}
	s.tokenHint = false
	s.lastDone = time.Time{}
	s.chars = 0
	s.correct = 0
	s.hints = 0
	s.totalMs = 0
	s.hadErrors = false
	s.timings = nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
