package textexec

import "fmt"

// Phrase is an ordered sequence of terms; its component-term set is what
// TEXT_AND intersects on, while TextMatch re-checks the original order for
// adjacency.
type Phrase struct {
	Terms []string
}

// TermSet returns the phrase's component terms as a set, matching spec.md
// §3's "phrase = set<string> of its component terms".
func (p Phrase) TermSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Terms))
	for _, t := range p.Terms {
		set[t] = struct{}{}
	}
	return set
}

// ParsedQuery is the immutable value object this core consumes, matching
// spec.md §3. It is produced by internal/searcher/parser and never mutated
// after construction.
type ParsedQuery struct {
	PositiveTerms      map[string]struct{}
	NegatedTerms       map[string]struct{}
	PositivePhrases    []Phrase
	NegatedPhrases     []Phrase
	SoloTerms          map[string]struct{}
	CaseSensitive      bool
	DiacriticSensitive bool
	IndexFormatVersion int
	RawQuery           string
}

// BoundsTerms returns the union of all positive terms (spec.md §3:
// "bounds_terms = positive_terms"), used to decide EOF before building scans.
func (q *ParsedQuery) BoundsTerms() map[string]struct{} {
	return q.PositiveTerms
}

// NewParsedQuery builds a ParsedQuery from its constituent parts and checks
// the invariants spec.md §3 lists: solo_terms subset of positive_terms, no
// term in both positive and negated sets, and every phrase non-empty.
func NewParsedQuery(
	positiveTerms, negatedTerms map[string]struct{},
	positivePhrases, negatedPhrases []Phrase,
	caseSensitive, diacriticSensitive bool,
	indexFormatVersion int,
	rawQuery string,
) (*ParsedQuery, error) {
	for _, ph := range positivePhrases {
		if len(ph.Terms) == 0 {
			return nil, fmt.Errorf("%w: empty positive phrase", ErrInvalidQuery)
		}
	}
	for _, ph := range negatedPhrases {
		if len(ph.Terms) == 0 {
			return nil, fmt.Errorf("%w: empty negated phrase", ErrInvalidQuery)
		}
	}
	for t := range positiveTerms {
		if _, clash := negatedTerms[t]; clash {
			return nil, fmt.Errorf("%w: term %q is both positive and negated", ErrInvalidQuery, t)
		}
	}

	phraseTerms := make(map[string]struct{})
	for _, ph := range positivePhrases {
		for t := range ph.TermSet() {
			phraseTerms[t] = struct{}{}
		}
	}
	solo := make(map[string]struct{})
	for t := range positiveTerms {
		if _, inPhrase := phraseTerms[t]; !inPhrase {
			solo[t] = struct{}{}
		}
	}

	return &ParsedQuery{
		PositiveTerms:      positiveTerms,
		NegatedTerms:       negatedTerms,
		PositivePhrases:    positivePhrases,
		NegatedPhrases:     negatedPhrases,
		SoloTerms:          solo,
		CaseSensitive:      caseSensitive,
		DiacriticSensitive: diacriticSensitive,
		IndexFormatVersion: indexFormatVersion,
		RawQuery:           rawQuery,
	}, nil
}
