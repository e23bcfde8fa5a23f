package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Distributed-Search-Analytics-Platform/internal/searcher/textexec"
)

type QueryType int

const (
	QueryAND QueryType = iota
	QueryOR
)

type QueryPlan struct {
	Terms        []string
	Type         QueryType
	ExcludeTerms []string
	RawQuery     string
}

func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		Terms:        make([]string, 0),
		ExcludeTerms: make([]string, 0),
		Type:         QueryAND,
		RawQuery:     query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	words := strings.Fields(query)
	excludeNext := false
	for i := 0; i < len(words); i++ {
		upper := strings.ToUpper(words[i])
		switch upper {
		case "AND":
			plan.Type = QueryAND
			continue
		case "OR":
			plan.Type = QueryOR
			continue
		case "NOT":
			excludeNext = true
			continue
		}
		tokens := tokenizer.Tokenize(words[i])
		if len(tokens) == 0 {
			continue
		}
		term := tokens[0].Term
		if excludeNext {
			plan.ExcludeTerms = append(plan.ExcludeTerms, term)
			excludeNext = false
		} else {
			plan.Terms = append(plan.Terms, term)
		}
	}
	return plan

}

// ParseText parses a MongoDB-$text-style query string into a
// textexec.ParsedQuery: double-quoted spans become phrases, a leading "-"
// on a bare word or a quoted span negates it, and everything else is a
// positive solo term. Quoted phrases collapse to a single term if tokenizing
// their contents yields only one term (matching textexec's phrase-of-one
// simplification).
func ParseText(query string, caseSensitive, diacriticSensitive bool, indexFormatVersion int) (*textexec.ParsedQuery, error) {
	positiveTerms := make(map[string]struct{})
	negatedTerms := make(map[string]struct{})
	var positivePhrases, negatedPhrases []textexec.Phrase

	for _, span := range splitQuerySpans(query) {
		terms := make([]string, 0, len(span.words))
		for _, w := range span.words {
			for _, tok := range tokenizer.Tokenize(w) {
				terms = append(terms, tok.Term)
			}
		}
		if len(terms) == 0 {
			continue
		}
		if len(terms) == 1 {
			if span.negated {
				negatedTerms[terms[0]] = struct{}{}
			} else {
				positiveTerms[terms[0]] = struct{}{}
			}
			continue
		}
		phrase := textexec.Phrase{Terms: terms}
		if span.negated {
			negatedPhrases = append(negatedPhrases, phrase)
		} else {
			positivePhrases = append(positivePhrases, phrase)
			for _, t := range terms {
				positiveTerms[t] = struct{}{}
			}
		}
	}

	return textexec.NewParsedQuery(
		positiveTerms, negatedTerms,
		positivePhrases, negatedPhrases,
		caseSensitive, diacriticSensitive,
		indexFormatVersion, query,
	)
}

// querySpan is one quoted-or-bare unit of a raw query string, with its
// negation flag already resolved.
type querySpan struct {
	words   []string
	negated bool
}

// splitQuerySpans walks query splitting on whitespace, grouping
// double-quoted spans into single entries and recognizing a leading "-" as
// negation for both bare words and quoted phrases.
func splitQuerySpans(query string) []querySpan {
	var spans []querySpan
	runes := []rune(query)
	i := 0
	for i < len(runes) {
		for i < len(runes) && runes[i] == ' ' {
			i++
		}
		if i >= len(runes) {
			break
		}
		negated := false
		if runes[i] == '-' {
			negated = true
			i++
		}
		if i < len(runes) && runes[i] == '"' {
			i++
			start := i
			for i < len(runes) && runes[i] != '"' {
				i++
			}
			phrase := string(runes[start:i])
			if i < len(runes) {
				i++
			}
			spans = append(spans, querySpan{words: strings.Fields(phrase), negated: negated})
			continue
		}
		start := i
		for i < len(runes) && runes[i] != ' ' {
			i++
		}
		word := string(runes[start:i])
		if word == "" {
			continue
		}
		spans = append(spans, querySpan{words: []string{word}, negated: negated})
	}
	return spans
}
