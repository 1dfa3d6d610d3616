package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
)

type unitState int

const (
	statePending unitState = iota
	stateCorrect
	stateIncorrect
	stateSkipped
)

// styledCell is one rendered piece of the prompt. top holds an optional
// annotation (furigana) rendered above s with the same display width.
type styledCell struct {
	s          string
	top        string
	width      int
	breakAfter bool
}

// buildUnitCells renders the kana reading one unit per cell. Lines may only
// break between sentence tokens.
func buildUnitCells(tokens []kana.Token, owners []int, states []unitState, cursor int, mistake bool) []styledCell {
	out := make([]styledCell, 0, len(tokens))
	for i, tok := range tokens {
		style := pendingStyle
		switch states[i] {
		case stateCorrect, stateSkipped:
			style = correctStyle
		case stateIncorrect:
			style = incorrectStyle
		default:
			if owners[i] == ownerAt(owners, cursor) {
				style = currentTokenStyle
			}
		}
		if i == cursor {
			if mistake {
				style = incorrectStyle
			}
			style = style.Underline(true)
		}
		out = append(out, styledCell{
			s:          style.Render(tok.Source),
			width:      runewidth.StringWidth(tok.Source),
			breakAfter: i == len(tokens)-1 || owners[i] != owners[i+1],
		})
	}
	return out
}

// buildTokenCells renders the sentence surface one token per cell, with the
// reading above kanji tokens.
func buildTokenCells(sentence model.Sentence, owners []int, states []unitState, cursor int) []styledCell {
	current := ownerAt(owners, cursor)
	out := make([]styledCell, 0, len(sentence.Tokens))
	for j, tok := range sentence.Tokens {
		width := runewidth.StringWidth(tok.Surface)
		if tok.IsKanji {
			width = max(width, runewidth.StringWidth(tok.Reading))
		}
		style := pendingStyle
		switch tokenState(owners, states, j) {
		case stateCorrect:
			style = correctStyle
		case stateIncorrect:
			style = incorrectStyle
		default:
			if j == current {
				style = currentTokenStyle
			}
		}
		cell := styledCell{
			s:          style.Render(runewidth.FillRight(tok.Surface, width)),
			width:      width,
			breakAfter: true,
		}
		if tok.IsKanji {
			cell.top = furiganaStyle.Render(runewidth.FillRight(tok.Reading, width))
		}
		out = append(out, cell)
	}
	return out
}

// tokenState folds the unit states of sentence token j. A token is pending
// until all its units are done and incorrect if any unit was missed.
func tokenState(owners []int, states []unitState, j int) unitState {
	seen := false
	result := stateCorrect
	for i, owner := range owners {
		if owner != j {
			continue
		}
		seen = true
		switch states[i] {
		case statePending:
			return statePending
		case stateIncorrect:
			result = stateIncorrect
		}
	}
	if !seen {
		return stateCorrect
	}
	return result
}

func ownerAt(owners []int, i int) int {
	if i < 0 || i >= len(owners) {
		return -1
	}
	return owners[i]
}

func renderCells(cells []styledCell) string {
	var b strings.Builder
	for _, item := range cells {
		b.WriteString(item.s)
	}
	return b.String()
}

func renderTops(cells []styledCell) (string, bool) {
	var b strings.Builder
	found := false
	for _, item := range cells {
		if item.top == "" {
			b.WriteString(strings.Repeat(" ", item.width))
			continue
		}
		found = true
		b.WriteString(item.top)
	}
	return b.String(), found
}

// wrapCells renders cells into lines no wider than width, preceding each
// line that carries annotations with its annotation line.
func wrapCells(cells []styledCell, width int) string {
	var out []string
	for _, line := range splitCells(cells, width) {
		if top, ok := renderTops(line); ok {
			out = append(out, top)
		}
		out = append(out, renderCells(line))
	}
	return strings.Join(out, "\n")
}

func splitCells(cells []styledCell, width int) [][]styledCell {
	if width <= 0 {
		return [][]styledCell{cells}
	}
	var lines [][]styledCell
	line := make([]styledCell, 0, len(cells))
	lineWidth := 0
	lastBreakIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastBreakIdx >= 0 {
				lines = append(lines, append([]styledCell(nil), line[:lastBreakIdx+1]...))
				line = append([]styledCell{}, line[lastBreakIdx+1:]...)
			} else {
				lines = append(lines, append([]styledCell(nil), line...))
				line = line[:0]
			}
			lineWidth = lineWidthOf(line)
			lastBreakIdx = lastBreakIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.breakAfter {
			lastBreakIdx = len(line) - 1
		}
		i++
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

func lineWidthOf(line []styledCell) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastBreakIndex(line []styledCell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].breakAfter {
			return i
		}
	}
	return -1
}
