package textexec

// TextMatch is the leaf predicate stage (spec.md §4.6). It re-validates a
// fully fetched document against the original ParsedQuery for phrase
// adjacency and negated-phrase exclusion — checks a score-only index cannot
// decide on its own. Solo terms and single-term phrases are already
// guaranteed present by the posting streams that fed the subtree below it;
// TextMatch only needs to confirm multi-term phrase adjacency.
type TextMatch struct {
	inner Stage
	query *ParsedQuery
	ws    *WorkingSet
	eof   bool
	stats Stats
}

// NewTextMatch wraps inner (typically a Fetch-wrapped composed subtree)
// with re-validation against query.
func NewTextMatch(inner Stage, query *ParsedQuery, ws *WorkingSet) *TextMatch {
	return &TextMatch{
		inner: inner,
		query: query,
		ws:    ws,
		stats: Stats{StageType: "TEXT_MATCH", ChildAdvances: make([]int64, 1), SingleChild: true},
	}
}

func (s *TextMatch) Advance() (Outcome, WorkingSetID) {
	if s.eof {
		return Eof, InvalidWorkingSetID
	}
	outcome, id := s.inner.Advance()
	switch outcome {
	case Advanced:
		s.stats.ChildAdvances[0]++
		m := s.ws.Get(id)
		if m == nil || !m.HasRecordID {
			return NeedTime, InvalidWorkingSetID
		}
		if m.HasFetchedTokens && !s.matches(m.FetchedTokens) {
			s.stats.DupsDropped++
			s.ws.Free(id)
			return NeedTime, InvalidWorkingSetID
		}
		return Advanced, id
	case Failure:
		s.eof = true
		return Failure, id
	case Eof:
		s.eof = true
		return Eof, InvalidWorkingSetID
	default:
		return outcome, id
	}
}

// matches reports whether tokens satisfies every positive phrase's
// adjacency requirement and none of every negated phrase's.
func (s *TextMatch) matches(tokens []string) bool {
	for _, ph := range s.query.PositivePhrases {
		if len(ph.Terms) < 2 {
			continue // single-term phrases already guaranteed by the index
		}
		if !containsPhrase(tokens, ph.Terms) {
			return false
		}
	}
	for _, ph := range s.query.NegatedPhrases {
		if len(ph.Terms) < 2 {
			continue
		}
		if containsPhrase(tokens, ph.Terms) {
			return false
		}
	}
	return true
}

// containsPhrase reports whether terms appears as a contiguous
// subsequence of tokens.
func containsPhrase(tokens, terms []string) bool {
	if len(terms) == 0 || len(terms) > len(tokens) {
		return false
	}
	for start := 0; start+len(terms) <= len(tokens); start++ {
		match := true
		for i, t := range terms {
			if tokens[start+i] != t {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (s *TextMatch) IsEOF() bool { return s.eof }

func (s *TextMatch) Invalidate(recordID string) { s.inner.Invalidate(recordID) }

func (s *TextMatch) Stats() Stats { return s.stats }
