package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
)

func unitsOf(readings ...string) ([]kana.Token, []int) {
	var tokens []kana.Token
	var owners []int
	for j, r := range readings {
		for _, tok := range kana.Tokenize(r) {
			tokens = append(tokens, tok)
			owners = append(owners, j)
		}
	}
	return tokens, owners
}

func TestBuildUnitCellsCursor(t *testing.T) {
	tokens, owners := unitsOf("ねこ", "が")
	states := []unitState{stateCorrect, statePending, statePending}

	cells := buildUnitCells(tokens, owners, states, 1, false)
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	if cells[0].s != correctStyle.Render("ね") {
		t.Fatalf("expected correct style for typed unit")
	}
	if cells[1].s != cursorStyle.Render("こ") {
		t.Fatalf("expected cursor style for current unit")
	}
	if cells[2].s != pendingStyle.Render("が") {
		t.Fatalf("expected pending style for next token")
	}
	if cells[0].breakAfter || !cells[1].breakAfter || !cells[2].breakAfter {
		t.Fatalf("breaks should fall between sentence tokens")
	}
	if cells[0].width != 2 {
		t.Fatalf("kana should be two cells wide, got %d", cells[0].width)
	}
}

func TestBuildUnitCellsMistake(t *testing.T) {
	tokens, owners := unitsOf("ねこ")
	states := []unitState{stateIncorrect, statePending}

	cells := buildUnitCells(tokens, owners, states, 1, true)
	if cells[0].s != incorrectStyle.Render("ね") {
		t.Fatalf("expected incorrect style for missed unit")
	}
	if cells[1].s != incorrectStyle.Underline(true).Render("こ") {
		t.Fatalf("expected underlined incorrect style while the unit is wrong")
	}
}

func TestBuildUnitCellsCurrentToken(t *testing.T) {
	tokens, owners := unitsOf("しゃしん", "を")
	states := make([]unitState, len(tokens))

	cells := buildUnitCells(tokens, owners, states, 0, false)
	if cells[1].s != currentTokenStyle.Render("し") {
		t.Fatalf("expected current token style for the rest of the word")
	}
	if cells[3].s != pendingStyle.Render("を") {
		t.Fatalf("expected pending style outside the current word")
	}
}

func TestBuildTokenCellsFurigana(t *testing.T) {
	sentence := model.Sentence{Tokens: []model.SentenceToken{
		{Surface: "猫", Reading: "ねこ", IsKanji: true},
		{Surface: "が", Reading: "が"},
	}}
	tokens, owners := unitsOf("ねこ", "が")
	states := []unitState{stateCorrect, stateCorrect, statePending}

	cells := buildTokenCells(sentence, owners, states, 2)
	if len(cells) != 2 || len(tokens) != 3 {
		t.Fatalf("unexpected cell count %d", len(cells))
	}
	if cells[0].width != 4 {
		t.Fatalf("kanji cell should widen to its reading, got %d", cells[0].width)
	}
	if cells[0].top != furiganaStyle.Render("ねこ") {
		t.Fatalf("expected furigana above kanji")
	}
	if cells[0].s != correctStyle.Render("猫  ") {
		t.Fatalf("expected padded correct surface, got %q", cells[0].s)
	}
	if cells[1].top != "" || cells[1].s != currentTokenStyle.Render("が") {
		t.Fatalf("unexpected kana token cell %+v", cells[1])
	}
}

func TestTokenState(t *testing.T) {
	owners := []int{0, 0, 1}
	if got := tokenState(owners, []unitState{stateCorrect, stateIncorrect, statePending}, 0); got != stateIncorrect {
		t.Fatalf("any missed unit marks the token, got %d", got)
	}
	if got := tokenState(owners, []unitState{stateCorrect, statePending, statePending}, 0); got != statePending {
		t.Fatalf("unfinished token should be pending, got %d", got)
	}
	if got := tokenState(owners, []unitState{stateCorrect, stateCorrect, stateSkipped}, 1); got != stateCorrect {
		t.Fatalf("skipped punctuation counts as done, got %d", got)
	}
}

func plainCells(words ...string) []styledCell {
	var cells []styledCell
	for _, w := range words {
		runes := []rune(w)
		for i, r := range runes {
			cells = append(cells, styledCell{
				s:          string(r),
				width:      runewidth.RuneWidth(r),
				breakAfter: i == len(runes)-1,
			})
		}
	}
	return cells
}

func TestWrapCellsBreaksBetweenTokens(t *testing.T) {
	got := wrapCells(plainCells("わたし", "は", "がくせい"), 8)
	want := "わたしは\nがくせい"
	if got != want {
		t.Fatalf("unexpected wrap:\n%s", got)
	}
}

func TestWrapCellsSplitsLongToken(t *testing.T) {
	got := wrapCells(plainCells("ありがとうございます"), 8)
	for _, line := range strings.Split(got, "\n") {
		if runewidth.StringWidth(line) > 8 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
	if strings.ReplaceAll(got, "\n", "") != "ありがとうございます" {
		t.Fatalf("wrap lost text: %q", got)
	}
}

func TestWrapCellsAnnotations(t *testing.T) {
	cells := []styledCell{
		{s: "猫  ", top: "ねこ", width: 4, breakAfter: true},
		{s: "が", width: 2, breakAfter: true},
	}
	got := wrapCells(cells, 0)
	if got != "ねこ  \n猫  が" {
		t.Fatalf("unexpected annotated line %q", got)
	}
	if wrapCells(plainCells("あ"), 10) != "あ" {
		t.Fatalf("lines without annotations should not get a blank top line")
	}
}
