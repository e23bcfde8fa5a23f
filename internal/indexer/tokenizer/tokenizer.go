// Package tokenizer provides text tokenisation for the search engine.
// It lower-cases input (unless case-sensitive), strips diacritics (unless
// diacritic-sensitive), splits on non-alphanumeric boundaries, removes
// stop-words, and stems via the Snowball (Porter2) algorithm.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// diacriticFolder strips combining marks after NFD decomposition, turning
// e.g. "café" into "cafe".
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Token represents a single normalised term and its position among the
// tokens that are kept (stop-words and words shorter than two bytes are not
// counted).
type Token struct {
	Term     string
	Position int
}

// Tokenize breaks text into a slice of stemmed Tokens with stop-words
// removed, folding case and diacritics. It is equivalent to
// TokenizeWithOptions(text, false, false).
func Tokenize(text string) []Token {
	return TokenizeWithOptions(text, false, false)
}

// TokenizeWithOptions breaks text into stemmed Tokens, honoring
// caseSensitive and diacriticSensitive the way a ParsedQuery's matching
// query terms must (spec.md §3): when false, the corresponding fold is
// applied before stemming so index-time and query-time normalization agree.
func TokenizeWithOptions(text string, caseSensitive, diacriticSensitive bool) []Token {
	if !caseSensitive {
		text = strings.ToLower(text)
	}
	if !diacriticSensitive {
		if folded, _, err := transform.String(diacriticFolder, text); err == nil {
			text = folded
		}
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words)/2)
	pos := 0
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		lookup := word
		if !caseSensitive {
			lookup = strings.ToLower(word)
		}
		if _, isStop := stopWords[lookup]; isStop {
			continue
		}
		stemmed, err := snowball.Stem(word, "english", !caseSensitive)
		if err != nil || stemmed == "" {
			continue
		}
		tokens = append(tokens, Token{
			Term:     stemmed,
			Position: pos,
		})
		pos++
	}
	return tokens
}
