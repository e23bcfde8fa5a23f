package textexec

// Or is the non-scoring union stage (spec.md §4.2): round-robins its
// children, forwarding each child's record the first time it is seen and
// silently dropping duplicates. Used as the positive union of the
// non-scoring path (the inner stage TEXT_NIN filters, see builder.go) where
// no score is needed.
type Or struct {
	children []Stage
	ws       *WorkingSet
	seen     map[string]struct{}
	next     int
	eof      bool
	stats    Stats
}

// NewOr builds a union over children. children must be non-empty.
func NewOr(children []Stage, ws *WorkingSet) *Or {
	return &Or{
		children: children,
		ws:       ws,
		seen:     make(map[string]struct{}),
		stats: Stats{
			StageType:     "OR",
			ChildAdvances: make([]int64, len(children)),
		},
	}
}

func (s *Or) Advance() (Outcome, WorkingSetID) {
	if s.eof {
		return Eof, InvalidWorkingSetID
	}
	if len(s.children) == 0 {
		s.eof = true
		return Eof, InvalidWorkingSetID
	}

	allEOF := true
	for i := range s.children {
		idx := (s.next + i) % len(s.children)
		child := s.children[idx]
		if child.IsEOF() {
			continue
		}
		allEOF = false

		outcome, id := child.Advance()
		s.next = (idx + 1) % len(s.children)

		switch outcome {
		case Advanced:
			s.stats.ChildAdvances[idx]++
			m := s.ws.Get(id)
			if m == nil || !m.HasRecordID {
				return NeedTime, InvalidWorkingSetID
			}
			s.stats.DupsTested++
			if _, dup := s.seen[m.RecordID]; dup {
				s.stats.DupsDropped++
				s.ws.Free(id)
				return NeedTime, InvalidWorkingSetID
			}
			s.seen[m.RecordID] = struct{}{}
			return Advanced, id
		case Failure:
			s.eof = true
			return Failure, id
		case NeedTime, NeedYield:
			return NeedTime, InvalidWorkingSetID
		case Eof:
			continue
		}
	}
	if allEOF {
		s.eof = true
		return Eof, InvalidWorkingSetID
	}
	return NeedTime, InvalidWorkingSetID
}

func (s *Or) IsEOF() bool { return s.eof }

func (s *Or) Invalidate(recordID string) {
	delete(s.seen, recordID)
	for _, c := range s.children {
		c.Invalidate(recordID)
	}
}

func (s *Or) Stats() Stats { return s.stats }
