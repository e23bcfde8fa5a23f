package textexec

import "testing"

// tokenSetter is a Fetch-free stub that attaches tokens directly to members,
// standing in for a real Fetch stage in unit tests of TextMatch alone.
type tokenSetter struct {
	inner  Stage
	ws     *WorkingSet
	tokens map[string][]string
}

func (t *tokenSetter) Advance() (Outcome, WorkingSetID) {
	outcome, id := t.inner.Advance()
	if outcome == Advanced {
		if m := t.ws.Get(id); m != nil {
			m.FetchedTokens = t.tokens[m.RecordID]
			m.HasFetchedTokens = true
		}
	}
	return outcome, id
}
func (t *tokenSetter) IsEOF() bool                  { return t.inner.IsEOF() }
func (t *tokenSetter) Invalidate(recordID string)   { t.inner.Invalidate(recordID) }
func (t *tokenSetter) Stats() Stats                 { return t.inner.Stats() }

func TestTextMatch_DropsNonAdjacentPhrase(t *testing.T) {
	ws := NewWorkingSet(0)
	leaf := NewIndexScan("x", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	withTokens := &tokenSetter{
		inner: leaf,
		ws:    ws,
		tokens: map[string][]string{
			"d1": {"quick", "brown", "fox"},
			"d2": {"quick", "fox", "brown"},
		},
	}
	query := &ParsedQuery{
		PositivePhrases: []Phrase{{Terms: []string{"brown", "fox"}}},
	}
	match := NewTextMatch(withTokens, query, ws)

	got := drainAll(t, ws, match)
	if len(got) != 1 || got[0] != "d1" {
		t.Fatalf("expected only d1 (adjacent phrase), got %v", got)
	}
}

func TestTextMatch_DropsMatchingNegatedPhrase(t *testing.T) {
	ws := NewWorkingSet(0)
	leaf := NewIndexScan("x", NewSliceCursor(postings(pair("d1", 1.0), pair("d2", 1.0))), ws)
	withTokens := &tokenSetter{
		inner: leaf,
		ws:    ws,
		tokens: map[string][]string{
			"d1": {"old", "news"},
			"d2": {"breaking", "news"},
		},
	}
	query := &ParsedQuery{
		NegatedPhrases: []Phrase{{Terms: []string{"breaking", "news"}}},
	}
	match := NewTextMatch(withTokens, query, ws)

	got := drainAll(t, ws, match)
	if len(got) != 1 || got[0] != "d1" {
		t.Fatalf("expected only d1 (d2 matches the negated phrase), got %v", got)
	}
}

func TestContainsPhrase(t *testing.T) {
	cases := []struct {
		tokens []string
		terms  []string
		want   bool
	}{
		{[]string{"a", "b", "c"}, []string{"b", "c"}, true},
		{[]string{"a", "b", "c"}, []string{"c", "b"}, false},
		{[]string{"a", "b"}, []string{"a", "b", "c"}, false},
		{[]string{}, []string{"a"}, false},
	}
	for _, c := range cases {
		if got := containsPhrase(c.tokens, c.terms); got != c.want {
			t.Errorf("containsPhrase(%v, %v) = %v, want %v", c.tokens, c.terms, got, c.want)
		}
	}
}
