// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	CorpusPath string
	Hints      bool
	HintDelay  time.Duration
	Debug      bool
	Seed       int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Level       string
	Due         bool
	Plain       bool
	Last        int
	CurveWindow int
	Units       string
}

// Millis is a Unix timestamp in milliseconds. Zero means unset.
type Millis int64

// MillisOf converts t to epoch milliseconds.
func MillisOf(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time converts m back to a time.Time. Zero maps to the zero time.
func (m Millis) Time() time.Time {
	if m == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m))
}

// IsZero reports whether the timestamp is unset.
func (m Millis) IsZero() bool {
	return m == 0
}

// Level is the discrete mastery level of a phonetic unit.
type Level string

// Mastery levels in ascending order.
const (
	LevelNew       Level = "new"
	LevelLearning  Level = "learning"
	LevelReviewing Level = "reviewing"
	LevelMastered  Level = "mastered"
)

// ParseLevel maps a stored level string to a Level. Unknown values map to new.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelLearning, LevelReviewing, LevelMastered:
		return Level(s)
	default:
		return LevelNew
	}
}

// RecentTimesWindow bounds CharacterMastery.RecentTimes.
const RecentTimesWindow = 10

// CharacterMastery stores the accumulated stats for one kana unit.
type CharacterMastery struct {
	Char         string
	Correct      int
	Incorrect    int
	HintShown    int
	HintUsed     int
	TotalTimeMs  int64
	AttemptCount int
	BestTimeMs   *int64
	RecentTimes  []int64
	MasteryScore float64
	Level        Level
	LastSeen     Millis
	NextReview   Millis
}

// Attempts returns correct plus incorrect answers.
func (c CharacterMastery) Attempts() int {
	return c.Correct + c.Incorrect
}

// Accuracy returns the share of correct answers, 0 when unseen.
func (c CharacterMastery) Accuracy() float64 {
	total := c.Attempts()
	if total == 0 {
		return 0
	}
	return float64(c.Correct) / float64(total)
}

// AvgTimeMs returns the mean timed response, 0 when nothing was timed.
func (c CharacterMastery) AvgTimeMs() float64 {
	if c.AttemptCount == 0 {
		return 0
	}
	return float64(c.TotalTimeMs) / float64(c.AttemptCount)
}

// HintRate returns hints used per hint shown, 0 when never shown.
func (c CharacterMastery) HintRate() float64 {
	if c.HintShown == 0 {
		return 0
	}
	return float64(c.HintUsed) / float64(c.HintShown)
}

// UserProfile is the single learner profile.
type UserProfile struct {
	OverallSkill        float64
	CurrentDifficulty   float64
	SpeedBaselineMs     float64
	ConsecutivePerfect  int
	ConsecutiveStruggle int
	TotalPracticeMs     int64
	CharsTypedTotal     int64
	CreatedAt           Millis
	UpdatedAt           Millis
}

// Profile defaults applied on lazy creation.
const (
	DefaultDifficulty      = 1.0
	DefaultSpeedBaselineMs = 1000.0
)

// DefaultProfile returns a zeroed profile with default difficulty and baseline.
func DefaultProfile() UserProfile {
	return UserProfile{
		CurrentDifficulty: DefaultDifficulty,
		SpeedBaselineMs:   DefaultSpeedBaselineMs,
	}
}

// SentenceToken pairs a displayed surface with its kana reading.
type SentenceToken struct {
	Surface string `json:"surface"`
	Reading string `json:"reading"`
	IsKanji bool   `json:"isKanji"`
}

// Sentence is one practice item from the corpus.
type Sentence struct {
	ID         string          `json:"id"`
	Tokens     []SentenceToken `json:"tokens"`
	Difficulty float64         `json:"difficulty"`
	JLPT       string          `json:"jlpt,omitempty"`
}

// HasKanji reports whether any token needs a reading annotation.
func (s Sentence) HasKanji() bool {
	for _, t := range s.Tokens {
		if t.IsKanji {
			return true
		}
	}
	return false
}

// KanjiCount counts tokens that need a reading annotation.
func (s Sentence) KanjiCount() int {
	n := 0
	for _, t := range s.Tokens {
		if t.IsKanji {
			n++
		}
	}
	return n
}

// Reading concatenates the token readings.
func (s Sentence) Reading() string {
	var out []byte
	for _, t := range s.Tokens {
		out = append(out, t.Reading...)
	}
	return string(out)
}

// Surface concatenates the displayed token surfaces.
func (s Sentence) Surface() string {
	var out []byte
	for _, t := range s.Tokens {
		out = append(out, t.Surface...)
	}
	return string(out)
}

// CharTiming is one typed kana unit within the current sentence.
type CharTiming struct {
	Char     string
	TimeMs   int64
	Correct  bool
	HintUsed bool
}

// SentenceResult summarizes a completed sentence.
type SentenceResult struct {
	SentenceID   string
	Accuracy     float64
	AvgTimeMs    float64
	TotalTimeMs  int64
	HintsUsed    int
	TotalChars   int
	CorrectChars int
	HadErrors    bool
}

// AttemptLog is an append-only analytics record for one typed unit.
type AttemptLog struct {
	ID         int64  `json:"id"`
	SessionID  int64  `json:"session_id"`
	SentenceID string `json:"sentence_id"`
	Char       string `json:"char"`
	Correct    bool   `json:"correct"`
	TimeMs     *int64 `json:"time_ms,omitempty"`
	HintUsed   bool   `json:"hint_used"`
	TypedWrong string `json:"typed_wrong,omitempty"`
	CreatedAt  Millis `json:"created_at"`
}

// SessionRecord captures a practice session row.
type SessionRecord struct {
	ID           int64
	Token        string
	StartedAt    Millis
	EndedAt      Millis
	TotalChars   int
	CorrectChars int
	MaxStreak    int
}

// SentenceHistory records one sentence shown during a session.
type SentenceHistory struct {
	ID          int64
	SentenceID  string
	SessionID   int64
	Difficulty  float64
	ShownAt     Millis
	CompletedAt Millis
	Accuracy    float64
	AvgTimeMs   float64
	HintsUsed   int
}

// DailyActivity counts completed sentences per calendar day.
type DailyActivity struct {
	Date               Date
	SentencesCompleted int
	FirstAt            Millis
}

// Completion is everything persisted when a sentence is finished.
// Stores apply it atomically.
type Completion struct {
	HistoryID int64
	Result    SentenceResult
	Mastery   []CharacterMastery
	Profile   UserProfile
	Day       Date
	At        time.Time
}

// UnitAggregate sums attempt-log rows for one unit.
type UnitAggregate struct {
	Char      string
	Correct   int
	Incorrect int
	TimeSumMs int64
	TimeCount int
}

// Accuracy returns the share of correct attempts, 0 when empty.
func (u UnitAggregate) Accuracy() float64 {
	total := u.Correct + u.Incorrect
	if total == 0 {
		return 0
	}
	return float64(u.Correct) / float64(total)
}

// AvgTimeMs returns the mean timed attempt, 0 when untimed.
func (u UnitAggregate) AvgTimeMs() float64 {
	if u.TimeCount == 0 {
		return 0
	}
	return float64(u.TimeSumMs) / float64(u.TimeCount)
}
