package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
)

// Sentence length bounds in runes.
const (
	MinRunes = 3
	MaxRunes = 30
)

// MaxPunctuation is the most punctuation marks a sentence may carry.
const MaxPunctuation = 4

var errLimit = errors.New("limit reached")

// BuildStats counts what happened to each input row.
type BuildStats struct {
	Read       int
	Kept       int
	Skipped    int
	Duplicates int
}

// Builder turns raw Japanese text into annotated practice sentences.
type Builder struct {
	t *tokenizer.Tokenizer
}

// NewBuilder loads the IPA dictionary.
func NewBuilder() (*Builder, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}
	return &Builder{t: t}, nil
}

// Sentence annotates text with readings. ok is false when the text is too
// short or long, has no kana, contains characters that cannot be typed, or
// has a kanji token without a known reading.
func (b *Builder) Sentence(id, text string) (s model.Sentence, ok bool) {
	text = strings.TrimSpace(norm.NFC.String(text))
	if !Suitable(text) {
		return model.Sentence{}, false
	}

	for _, tok := range b.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		st := model.SentenceToken{Surface: tok.Surface, Reading: tok.Surface}
		if hasKanji(tok.Surface) {
			reading, found := tok.Reading()
			if !found || reading == "" || reading == "*" {
				return model.Sentence{}, false
			}
			st.Reading = kana.ToHiragana(reading)
			st.IsKanji = true
		}
		s.Tokens = append(s.Tokens, st)
	}
	if len(s.Tokens) == 0 {
		return model.Sentence{}, false
	}
	s.ID = id
	s.Difficulty = EstimateDifficulty(s)
	return s, true
}

// Build reads TSV rows and returns the suitable sentences, at most limit when
// limit is positive. Repeated texts are kept once.
func (b *Builder) Build(r io.Reader, limit int) ([]model.Sentence, BuildStats, error) {
	var (
		out   []model.Sentence
		stats BuildStats
		seen  = make(map[string]struct{})
	)
	err := ReadTSV(r, func(id, text string) error {
		stats.Read++
		if _, dup := seen[text]; dup {
			stats.Duplicates++
			return nil
		}
		seen[text] = struct{}{}
		s, ok := b.Sentence(id, text)
		if !ok {
			stats.Skipped++
			return nil
		}
		out = append(out, s)
		stats.Kept++
		if limit > 0 && len(out) >= limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return nil, stats, err
	}
	if len(out) == 0 {
		return nil, stats, fmt.Errorf("no usable sentences found")
	}
	return out, stats, nil
}

// ReadTSV calls fn for each id/text row. Rows with three or more columns use
// the first as id and the last as text, matching the Tatoeba export layout.
func ReadTSV(r io.Reader, fn func(id, text string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		id := strings.TrimSpace(cols[0])
		text := strings.TrimSpace(cols[len(cols)-1])
		if id == "" || text == "" {
			continue
		}
		if err := fn(id, text); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Suitable reports whether text fits the length bounds, contains kana,
// uses only kana, kanji, the prolonged sound mark and Japanese punctuation,
// and has at most MaxPunctuation punctuation marks.
func Suitable(text string) bool {
	n := utf8.RuneCountInString(text)
	if n < MinRunes || n > MaxRunes {
		return false
	}
	hasKana := false
	punct := 0
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			hasKana = true
		case r == 'ー' || unicode.Is(unicode.Han, r):
		case kana.IsPunctuation(string(r)) && !unicode.IsSpace(r):
			punct++
		default:
			return false
		}
	}
	return hasKana && punct <= MaxPunctuation
}

// EstimateDifficulty rates a sentence on the 1-5 scale from its length and
// number of kanji tokens.
func EstimateDifficulty(s model.Sentence) float64 {
	n := utf8.RuneCountInString(s.Surface())
	d := 1.0
	if n > 15 {
		d += 0.5
	}
	if n > 25 {
		d += 0.5
	}
	d += 0.3 * float64(s.KanjiCount())
	d = math.Max(1, math.Min(5, d))
	return math.Round(d*100) / 100
}

func hasKanji(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
