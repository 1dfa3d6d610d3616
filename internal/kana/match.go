package kana

import (
	"strings"
	"unicode/utf8"
)

// MatchResult reports how typed input relates to one token.
type MatchResult struct {
	Matched  bool
	Consumed int
	Partial  bool
}

var (
	noMatch      = MatchResult{}
	partialMatch = MatchResult{Partial: true}
)

func matched(n int) MatchResult {
	return MatchResult{Matched: true, Consumed: n}
}

// Match checks input typed for tokens[index].
// A partial result means the input is a valid prefix and more keys are
// expected. Consumed counts the input bytes the token accepted.
func Match(tokens []Token, index int, input string) MatchResult {
	if index < 0 || index >= len(tokens) {
		return noMatch
	}
	tok := tokens[index]
	var next *Token
	if index+1 < len(tokens) {
		next = &tokens[index+1]
	}

	switch {
	case tok.IsSmallTsu:
		return matchSmallTsu(next, input)
	case tok.Kana == nasal:
		return matchNasal(next, input)
	}

	for _, romaji := range tok.Romaji {
		if strings.HasPrefix(romaji, input) {
			if input == romaji {
				return matched(len(romaji))
			}
			return partialMatch
		}
		if strings.HasPrefix(input, romaji) {
			return matched(len(romaji))
		}
	}
	return noMatch
}

// matchSmallTsu accepts the first consonant of the following token's
// spelling, or an explicit xtu/xtsu.
func matchSmallTsu(next *Token, input string) MatchResult {
	if next != nil {
		for _, romaji := range next.Romaji {
			if romaji == "" {
				continue
			}
			lead := leadRune(romaji)
			if strings.HasPrefix(lead+romaji, input) {
				if input == lead {
					return matched(len(lead))
				}
				return partialMatch
			}
		}
	}
	return matchEscape(input)
}

func leadRune(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}

func matchEscape(input string) MatchResult {
	for _, esc := range smallTsuEscapes {
		if strings.HasPrefix(esc, input) {
			if input == esc {
				return matched(len(esc))
			}
			return partialMatch
		}
	}
	return noMatch
}

// matchNasal handles ん, which needs nn when the next unit could otherwise
// be read as part of the same syllable.
func matchNasal(next *Token, input string) MatchResult {
	if next != nil && startsWithBreaker(next.Kana) {
		switch {
		case input == "nn":
			return matched(2)
		case strings.HasPrefix("nn", input):
			return partialMatch
		default:
			return noMatch
		}
	}
	switch {
	case input == "n" || input == "nn":
		return matched(len(input))
	case strings.HasPrefix("nn", input):
		return partialMatch
	default:
		return noMatch
	}
}

func startsWithBreaker(unit string) bool {
	for _, ch := range unit {
		return strings.ContainsRune(nasalBreakers, ch)
	}
	return false
}

// NeedsDoubleN reports whether the ん at tokens[i] must be spelled nn.
func NeedsDoubleN(tokens []Token, i int) bool {
	if i < 0 || i+1 >= len(tokens) || tokens[i].Kana != nasal {
		return false
	}
	return startsWithBreaker(tokens[i+1].Kana)
}

// Romanize spells tokens with their canonical romanization.
// Small tsu doubles the next consonant (xtu when nothing follows) and ん is
// written nn where a single n would be ambiguous.
func Romanize(tokens []Token) string {
	var b strings.Builder
	for i := range tokens {
		b.WriteString(Spell(tokens, i))
	}
	return b.String()
}

// Spell returns the canonical spelling of tokens[i] in context.
func Spell(tokens []Token, i int) string {
	if i < 0 || i >= len(tokens) {
		return ""
	}
	tok := tokens[i]
	switch {
	case tok.IsSmallTsu:
		if i+1 < len(tokens) && len(tokens[i+1].Romaji) > 0 && tokens[i+1].Romaji[0] != "" {
			return leadRune(tokens[i+1].Romaji[0])
		}
		return smallTsuEscapes[0]
	case NeedsDoubleN(tokens, i):
		return "nn"
	case len(tok.Romaji) > 0:
		return tok.Romaji[0]
	default:
		return ""
	}
}
