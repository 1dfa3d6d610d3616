// Package kana tokenizes kana readings and matches romaji input against them.
package kana

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Token is one phonetic unit of a reading.
type Token struct {
	// Kana is the unit folded to hiragana (ー is kept as is).
	Kana string
	// Source is the unit as it appeared in the input.
	Source string
	// Romaji lists accepted spellings, canonical first. Empty for small tsu.
	Romaji []string
	// IsSmallTsu marks っ, whose spelling depends on the next token.
	IsSmallTsu bool
}

// Katakana reports whether the unit was written in katakana.
func (t Token) Katakana() bool {
	return t.Source != t.Kana
}

const (
	katakanaFirst = 0x30a1 // ァ
	katakanaLast  = 0x30f6 // ヶ
	kanaOffset    = 0x60
)

func foldRune(ch rune) rune {
	if ch >= katakanaFirst && ch <= katakanaLast {
		return ch - kanaOffset
	}
	return ch
}

// ToHiragana folds katakana in s to hiragana, leaving ー and non-kana untouched.
func ToHiragana(s string) string {
	return strings.Map(foldRune, s)
}

// Tokenize splits a reading into phonetic units.
// Katakana is folded to hiragana before lookup so one table serves both
// scripts. Punctuation and unknown runes become single tokens spelled as
// themselves.
func Tokenize(text string) []Token {
	src := []rune(norm.NFC.String(text))
	folded := make([]rune, len(src))
	for i, ch := range src {
		folded[i] = foldRune(ch)
	}

	tokens := make([]Token, 0, len(src))
	for i := 0; i < len(folded); {
		if i+1 < len(folded) {
			pair := string(folded[i : i+2])
			if romaji, ok := romaji2[pair]; ok {
				tokens = append(tokens, Token{
					Kana:   pair,
					Source: string(src[i : i+2]),
					Romaji: romaji,
				})
				i += 2
				continue
			}
		}

		unit := string(folded[i])
		tok := Token{Kana: unit, Source: string(src[i])}
		switch romaji, ok := romaji1[unit]; {
		case unit == smallTsu:
			tok.IsSmallTsu = true
		case ok:
			tok.Romaji = romaji
		default:
			tok.Romaji = []string{unit}
		}
		tokens = append(tokens, tok)
		i++
	}
	return tokens
}

// IsPunctuation reports whether text consists only of punctuation or spaces.
// Callers skip such tokens while typing.
func IsPunctuation(text string) bool {
	if text == "" {
		return false
	}
	for _, ch := range text {
		if unicode.IsSpace(ch) {
			continue
		}
		if !strings.ContainsRune(punctuation, ch) {
			return false
		}
	}
	return true
}

// Class groups kana units by typing difficulty.
type Class int

// Unit classes.
const (
	ClassUnknown Class = iota
	ClassPunctuation
	ClassVowel
	ClassBasic
	ClassVoiced
	ClassSmall
)

// Classify returns the class of a single token's folded unit.
// Two-rune digraphs count as small (combination) kana.
func Classify(unit string) Class {
	runes := []rune(unit)
	switch {
	case len(runes) == 0:
		return ClassUnknown
	case len(runes) == 2:
		if _, ok := romaji2[unit]; ok {
			return ClassSmall
		}
		return ClassUnknown
	case len(runes) > 2:
		return ClassUnknown
	}
	ch := runes[0]
	switch {
	case ch == prolongMark || IsPunctuation(unit):
		return ClassPunctuation
	case strings.ContainsRune(vowels, ch):
		return ClassVowel
	case strings.ContainsRune(basicKana, ch):
		return ClassBasic
	case strings.ContainsRune(voicedKana, ch):
		return ClassVoiced
	case strings.ContainsRune(smallKana, ch):
		return ClassSmall
	default:
		return ClassUnknown
	}
}

// Units returns the folded units of a reading that carry typing weight,
// skipping punctuation and the prolonged sound mark.
func Units(reading string) []Token {
	tokens := Tokenize(reading)
	out := tokens[:0:0]
	for _, t := range tokens {
		if Classify(t.Kana) == ClassPunctuation {
			continue
		}
		out = append(out, t)
	}
	return out
}
