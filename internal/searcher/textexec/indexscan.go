package textexec

// IndexScan is the leaf stage wrapping a single TermCursor (spec.md §4.1).
// It has no children and no record table: every posting it reads becomes
// exactly one working-set member, in the cursor's native descending-score
// order.
type IndexScan struct {
	term   string
	cursor TermCursor
	ws     *WorkingSet
	eof    bool
	stats  Stats
}

// NewIndexScan builds a scan over cursor, allocating members from ws.
func NewIndexScan(term string, cursor TermCursor, ws *WorkingSet) *IndexScan {
	return &IndexScan{
		term:   term,
		cursor: cursor,
		ws:     ws,
		stats:  Stats{StageType: "INDEX_SCAN", SingleChild: true, WantTextScore: true},
	}
}

func (s *IndexScan) Advance() (Outcome, WorkingSetID) {
	if s.eof {
		return Eof, InvalidWorkingSetID
	}

	posting, ok, err := s.cursor.Next()
	if err != nil {
		id, m, allocErr := s.ws.Allocate()
		if allocErr != nil {
			stageLogger("INDEX_SCAN").Error("working set exhausted on failure path", "term", s.term, "err", allocErr)
			s.eof = true
			return Failure, InvalidWorkingSetID
		}
		m.Diagnostic = err
		s.eof = true
		return Failure, id
	}
	if !ok {
		s.eof = true
		return Eof, InvalidWorkingSetID
	}

	id, m, err := s.ws.Allocate()
	if err != nil {
		s.eof = true
		return Failure, InvalidWorkingSetID
	}
	m.RecordID = posting.RecordID
	m.HasRecordID = true
	m.KeyBlob = posting.KeyBlob
	m.Computed = posting.Score
	m.HasScore = true

	if len(s.stats.ChildAdvances) == 0 {
		s.stats.ChildAdvances = make([]int64, 1)
	}
	s.stats.ChildAdvances[0]++
	return Advanced, id
}

func (s *IndexScan) IsEOF() bool { return s.eof }

// Invalidate is a no-op: IndexScan holds no record table, only a forward
// cursor over already-produced postings (spec.md §7.2).
func (s *IndexScan) Invalidate(recordID string) {}

func (s *IndexScan) Stats() Stats { return s.stats }
